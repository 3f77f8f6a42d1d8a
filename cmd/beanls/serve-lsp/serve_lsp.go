package serve_lsp

import (
	"context"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/debug"
	"github.com/walteh/beanls/pkg/lsp"
	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/syntax/lexical"
)

type Handler struct {
	debug      bool
	color      bool
	configFile string
	version    string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin and stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging, including every rpc message")
	cmd.Flags().BoolVar(&me.color, "color", false, "colorize the log output on stderr")
	cmd.Flags().StringVar(&me.configFile, "config", "", "settings file to use instead of the one in the workspace root")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.TraceLevel
	}

	// stdout carries the protocol
	zerolog.SetGlobalLevel(level)
	logger := debug.NewLogger(os.Stderr, debug.LoggerOpts{Level: level, Color: me.color})
	ctx = logger.WithContext(ctx)

	opts := &jrpc2.ServerOptions{}
	if me.debug {
		opts.RPCLog = protocol.NewZerologRPCLogger(logger)
	}

	serverOpts := []lsp.ServerOpt{lsp.WithVersion(me.version)}
	if me.configFile != "" {
		serverOpts = append(serverOpts, lsp.WithConfigFile(me.configFile))
	}

	server := lsp.NewServer(lexical.NewProvider(), serverOpts...)

	instance := server.BuildServerInstance(ctx, opts)

	if err := instance.StartAndWait(ctx, os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
