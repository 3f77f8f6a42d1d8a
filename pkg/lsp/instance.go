package lsp

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/lsp/protocol"
)

// ServerInstance is a Server bound to a jrpc2 server.
type ServerInstance struct {
	server   *Server
	instance *jrpc2.Server
}

// BuildServerInstance wires s into a jrpc2 server. Handlers run one at a time
// and the server may push diagnostics and log messages to the editor.
func (s *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions) *ServerInstance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	opts.Concurrency = 1

	instance, callback := protocol.NewServerServer(ctx, s, opts)
	s.SetCallbackClient(protocol.ClientDispatcher(callback))

	if s.exit == nil {
		s.exit = instance.Stop
	}

	return &ServerInstance{server: s, instance: instance}
}

func (si *ServerInstance) Server() *Server {
	return si.server
}

// Start serves over ch without blocking.
func (si *ServerInstance) Start(ch channel.Channel) {
	si.instance.Start(ch)
}

// Wait blocks until the connection ends.
func (si *ServerInstance) Wait() error {
	return si.instance.Wait()
}

// StartAndWait serves LSP-framed messages over r and w until the connection
// ends or the editor sends exit.
func (si *ServerInstance) StartAndWait(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	zerolog.Ctx(ctx).Info().Msg("language server listening")

	si.Start(channel.LSP(r, w))

	if err := si.Wait(); err != nil {
		return errors.Errorf("serving language server: %w", err)
	}
	return nil
}
