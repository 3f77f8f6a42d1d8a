package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/syntax"
)

// isLedger decides whether the server tracks a document at all.
func (s *Server) isLedger(uri string, languageID string) bool {
	if languageID == LanguageID {
		return true
	}
	return s.Settings().IsLedgerFile(s.Root(), diagnostic.URIPath(uri))
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	logger := zerolog.Ctx(ctx).With().Str("uri", uri).Logger()

	if !s.isLedger(uri, params.TextDocument.LanguageID) {
		logger.Debug().Str("language_id", params.TextDocument.LanguageID).Msg("ignoring non-ledger document")
		return nil
	}

	s.documents.Store(&Document{
		URI:        uri,
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	})
	logger.Debug().Int32("version", params.TextDocument.Version).Msg("document opened")

	if sync, ok := s.provider.(syntax.DocumentSync); ok {
		if err := sync.Open(ctx, uri, params.TextDocument.Text); err != nil {
			return errors.Errorf("parsing opened document: %w", err)
		}
	}
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	logger := zerolog.Ctx(ctx).With().Str("uri", uri).Logger()

	if _, ok := s.documents.Get(uri); !ok {
		logger.Debug().Msg("change for untracked document")
		return nil
	}

	doc, edits, err := s.documents.Apply(uri, params.TextDocument.Version, params.ContentChanges)
	if err != nil {
		return errors.Errorf("applying changes: %w", err)
	}
	logger.Debug().Int32("version", doc.Version).Int("changes", len(edits)).Msg("document changed")

	if sync, ok := s.provider.(syntax.DocumentSync); ok {
		if err := sync.Change(ctx, uri, doc.Content, edits); err != nil {
			return errors.Errorf("reparsing changed document: %w", err)
		}
	}
	return nil
}

// DidSave validates the whole ledger, not just the saved document, since any
// included file may affect any other.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	logger := zerolog.Ctx(ctx).With().Str("uri", uri).Logger()

	if _, ok := s.documents.Get(uri); !ok && !s.isLedger(uri, "") {
		logger.Debug().Msg("save of non-ledger document")
		return nil
	}

	logger.Debug().Msg("document saved")
	s.validate(ctx)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	zerolog.Ctx(ctx).Debug().Str("uri", uri).Msg("document closed")

	s.documents.Delete(uri)
	s.Encoder().Forget(uri)
	if sync, ok := s.provider.(syntax.DocumentSync); ok {
		sync.Close(ctx, uri)
	}
	return nil
}
