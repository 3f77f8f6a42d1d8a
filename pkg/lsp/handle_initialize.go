package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/walteh/beanls/pkg/config"
	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/semtok"
)

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)

	root := workspaceRoot(params)
	logger.Debug().Str("server_id", s.id).Str("root", root).Msg("initializing server")

	settings := s.loadSettings(ctx, root)

	if len(params.InitializationOptions) > 0 {
		var opts config.InitializationOptions
		if err := json.Unmarshal(params.InitializationOptions, &opts); err != nil {
			s.logToClient(ctx, zerolog.WarnLevel, fmt.Sprintf("ignoring malformed initializationOptions: %v", err))
		} else {
			settings = settings.Overlay(&opts)
		}
	}

	rules, err := settings.Rules()
	if err != nil {
		s.logToClient(ctx, zerolog.WarnLevel, fmt.Sprintf("using default semantic token rules: %v", err))
		rules = semtok.DefaultRules()
	}

	caps := params.Capabilities.TextDocument.SemanticTokens
	legend := semtok.Negotiate(nil, nil)
	if caps != nil {
		legend = semtok.Negotiate(caps.TokenTypes, caps.TokenModifiers)
	}
	logger.Debug().
		Strs("token_types", legend.CategoryNames()).
		Strs("token_modifiers", legend.ModifierNames()).
		Msg("negotiated semantic token legend")

	s.configure(root, settings, legend, rules)

	result := &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.Incremental,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: "beanls", Version: s.version},
	}

	if caps != nil {
		result.Capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     protocol.NonNilSlice(legend.CategoryNames()),
				TokenModifiers: protocol.NonNilSlice(legend.ModifierNames()),
			},
			Full:  &protocol.SemanticTokensFullOptions{Delta: true},
			Range: true,
		}
	}

	return result, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	settings := s.Settings()
	zerolog.Ctx(ctx).Info().
		Str("root", s.Root()).
		Str("journal", settings.JournalPath(s.Root())).
		Str("validator", settings.ValidatorCommand()).
		Msg("server initialized")
	return nil
}

// loadSettings never fails: a broken settings file is reported to the editor
// and the defaults are used instead.
func (s *Server) loadSettings(ctx context.Context, root string) *config.Settings {
	if s.fixed != nil {
		return s.fixed
	}

	if s.configFile != "" {
		settings, err := config.LoadFile(s.fs, s.configFile)
		if err != nil {
			s.logToClient(ctx, zerolog.ErrorLevel, fmt.Sprintf("loading settings: %v", err))
			return config.Default()
		}
		return settings
	}

	if root == "" {
		return config.Default()
	}

	settings, path, err := config.Load(ctx, s.fs, root)
	if err != nil {
		s.logToClient(ctx, zerolog.ErrorLevel, fmt.Sprintf("loading settings from %s: %v", path, err))
		return config.Default()
	}
	return settings
}

// workspaceRoot prefers the first workspace folder, then rootUri, then the
// deprecated rootPath.
func workspaceRoot(params *protocol.InitializeParams) string {
	switch {
	case len(params.WorkspaceFolders) > 0:
		return diagnostic.URIPath(string(params.WorkspaceFolders[0].URI))
	case params.RootURI != "":
		return diagnostic.URIPath(string(params.RootURI))
	default:
		return params.RootPath
	}
}
