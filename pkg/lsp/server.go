package lsp

import (
	"context"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/walteh/beanls/pkg/config"
	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/semtok"
	"github.com/walteh/beanls/pkg/syntax"
	"github.com/walteh/beanls/pkg/validator"
)

const LanguageID = "beancount"

// Server represents an LSP server instance
type Server struct {
	id      string
	version string

	documents *DocumentManager
	provider  syntax.Provider

	// settings sources
	fs         afero.Fs
	configFile string
	fixed      *config.Settings

	// LSP client for notifications
	callbackClient protocol.Client

	mu        sync.RWMutex
	root      string
	settings  *config.Settings
	encoder   *semtok.Encoder
	runner    *validator.Runner
	publisher *diagnostic.Publisher
	shutdown  bool

	runs sync.WaitGroup
	exit func()
}

var _ protocol.Server = (*Server)(nil)

type ServerOpt func(*Server)

// WithFs sets the filesystem settings files are read from.
func WithFs(fs afero.Fs) ServerOpt {
	return func(s *Server) {
		s.fs = fs
	}
}

// WithConfigFile reads settings from path instead of looking in the workspace
// root.
func WithConfigFile(path string) ServerOpt {
	return func(s *Server) {
		s.configFile = path
	}
}

// WithSettings skips settings files altogether.
func WithSettings(settings *config.Settings) ServerOpt {
	return func(s *Server) {
		s.fixed = settings
	}
}

func WithCallbackClient(client protocol.Client) ServerOpt {
	return func(s *Server) {
		s.callbackClient = client
	}
}

// WithExit is called when the editor sends exit.
func WithExit(fn func()) ServerOpt {
	return func(s *Server) {
		s.exit = fn
	}
}

func WithVersion(version string) ServerOpt {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer builds a server around the syntax tree provider. Until initialize
// arrives the server uses default settings and the full token legend.
func NewServer(provider syntax.Provider, opts ...ServerOpt) *Server {
	s := &Server{
		id:        xid.New().String(),
		documents: NewDocumentManager(),
		provider:  provider,
		fs:        afero.NewOsFs(),
		settings:  config.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fixed != nil {
		s.settings = s.fixed
	}

	s.configure("", s.settings, semtok.FullLegend(), semtok.DefaultRules())
	return s
}

func (s *Server) SetCallbackClient(client protocol.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbackClient = client
}

func (s *Server) client() protocol.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callbackClient
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

// Settings returns the settings of the current session.
func (s *Server) Settings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Server) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Server) Encoder() *semtok.Encoder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoder
}

// Wait blocks until every validator run started so far has been published.
func (s *Server) Wait() {
	s.runs.Wait()
}

func (s *Server) configure(root string, settings *config.Settings, legend *semtok.Legend, rules semtok.RuleTable) {
	timeout, _ := settings.ValidatorTimeout()

	runnerOpts := []validator.RunnerOpt{
		validator.WithArgs(settings.ValidatorArgs()...),
		validator.WithTimeout(timeout),
	}
	if root != "" {
		runnerOpts = append(runnerOpts, validator.WithDir(root))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.root = root
	s.settings = settings
	s.encoder = semtok.NewEncoder(s.provider, s.documents, rules, legend, semtok.NewCache())
	s.runner = validator.NewRunner(settings.ValidatorCommand(), runnerOpts...)
	s.publisher = diagnostic.NewPublisher(&publishBridge{server: s}, diagnostic.WithClearStale(settings.ClearStale()))
}

func (s *Server) Shutdown(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("shutdown requested")

	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("exit requested")
	if s.exit != nil {
		s.exit()
	}
	return nil
}

// logToClient logs msg and forwards it to the editor as window/logMessage.
func (s *Server) logToClient(ctx context.Context, level zerolog.Level, msg string) {
	zerolog.Ctx(ctx).WithLevel(level).Msg(msg)

	client := s.client()
	if client == nil {
		return
	}
	err := client.LogMessage(ctx, &protocol.LogMessageParams{
		Type:    protocol.MessageTypeFromLevel(level),
		Message: msg,
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("sending log message to client")
	}
}
