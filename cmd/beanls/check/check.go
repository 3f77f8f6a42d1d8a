// Package check runs the ledger validator once from the command line and
// prints what the language server would have published.
package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/config"
	"github.com/walteh/beanls/pkg/debug"
	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/validator"
)

// ErrProblems is returned when the validator reported at least one entry.
var ErrProblems = errors.Base("ledger has problems")

type Handler struct {
	root       string
	configFile string
	command    string
	args       []string
	timeout    time.Duration
	color      bool
	verbose    bool

	fs  afero.Fs
	out io.Writer
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "check [journal]",
		Short: "validate a ledger and print its diagnostics",
		Args:  cobra.MaximumNArgs(1),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&me.root, "root", "", "workspace root, defaults to the current directory")
	cmd.Flags().StringVar(&me.configFile, "config", "", "settings file to use instead of the one in the workspace root")
	cmd.Flags().StringVar(&me.command, "validator", "", "validator command, overrides the settings file")
	cmd.Flags().StringArrayVar(&me.args, "arg", nil, "argument placed before the journal path, may be repeated")
	cmd.Flags().DurationVar(&me.timeout, "timeout", 0, "kill the validator after this long")
	cmd.Flags().BoolVar(&me.color, "color", false, "colorize the output")
	cmd.Flags().BoolVar(&me.verbose, "verbose", false, "log validator runs to stderr")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		journal := ""
		if len(args) == 1 {
			journal = args[0]
		}
		return me.Run(cmd.Context(), journal)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, journal string) error {
	level := zerolog.WarnLevel
	if me.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	// fatih/color turns itself off when stdout is not a terminal
	color.NoColor = !me.color
	logger := debug.NewLogger(os.Stderr, debug.LoggerOpts{Level: level, Color: me.color})
	ctx = logger.WithContext(ctx)

	root, err := me.workspaceRoot()
	if err != nil {
		return err
	}

	settings, err := me.settings(ctx, root)
	if err != nil {
		return err
	}

	if journal == "" {
		journal = settings.JournalPath(root)
	} else if !filepath.IsAbs(journal) {
		journal = filepath.Join(root, journal)
	}

	timeout := me.timeout
	if timeout == 0 {
		if timeout, err = settings.ValidatorTimeout(); err != nil {
			return err
		}
	}

	runner := validator.NewRunner(settings.ValidatorCommand(),
		validator.WithArgs(settings.ValidatorArgs()...),
		validator.WithTimeout(timeout),
		validator.WithDir(root),
	)

	res := runner.Run(ctx, journal)
	if res.Err != nil {
		return errors.Errorf("checking %s: %w", journal, res.Err)
	}

	group := diagnostic.GroupEntries(res.Output)
	me.print(root, group)

	if group.Count() > 0 {
		return errors.WithMessagef(ErrProblems, "%d problems in %d files", group.Count(), group.Len())
	}
	return nil
}

func (me *Handler) workspaceRoot() (string, error) {
	if me.root != "" {
		return filepath.Abs(me.root)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

func (me *Handler) settings(ctx context.Context, root string) (*config.Settings, error) {
	var settings *config.Settings
	var err error

	if me.configFile != "" {
		settings, err = config.LoadFile(me.fs, me.configFile)
	} else {
		settings, _, err = config.Load(ctx, me.fs, root)
	}
	if err != nil {
		return nil, errors.Errorf("loading settings: %w", err)
	}

	return settings.Overlay(&config.InitializationOptions{
		ValidatorCommand: me.command,
		ValidatorArgs:    me.args,
	}), nil
}

func (me *Handler) print(root string, group *diagnostic.Group) {
	bold := color.New(color.Bold)
	severities := map[diagnostic.Severity]*color.Color{
		diagnostic.SeverityError:   color.New(color.FgRed, color.Bold),
		diagnostic.SeverityWarning: color.New(color.FgYellow),
	}

	for _, file := range group.Files() {
		name := file
		if rel, err := filepath.Rel(root, file); err == nil && filepath.IsLocal(rel) {
			name = rel
		}

		for _, d := range group.Get(file) {
			sev := d.Severity.String()
			loc := fmt.Sprintf("%s:%d", name, d.Range.Start.Line+1)
			if me.color {
				if c, ok := severities[d.Severity]; ok {
					sev = c.Sprint(sev)
				}
				loc = bold.Sprint(loc)
			}
			fmt.Fprintf(me.out, "%s: %s: %s\n", loc, sev, d.Message)
		}
	}
}
