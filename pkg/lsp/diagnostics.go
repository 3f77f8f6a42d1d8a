package lsp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/lsp/protocol"
)

// publishBridge delivers diagnostic groups through whatever callback client
// the server has at the time of publishing.
type publishBridge struct {
	server *Server
}

var _ diagnostic.Client = (*publishBridge)(nil)

func (b *publishBridge) PublishDiagnostics(ctx context.Context, uri string, diagnostics []diagnostic.Diagnostic) error {
	client := b.server.client()
	if client == nil {
		zerolog.Ctx(ctx).Warn().Str("uri", uri).Msg("no callback client, skipping publish diagnostics")
		return nil
	}

	out := make([]protocol.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toPosition(d.Range.Start),
				End:   toPosition(d.Range.End),
			},
			Severity: protocol.DiagnosticSeverity(d.Severity),
			Source:   d.Source,
			Message:  d.Message,
		})
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: out,
	}
	if doc, ok := b.server.documents.Get(uri); ok {
		params.Version = doc.Version
	}

	return client.PublishDiagnostics(ctx, params)
}

// validate starts one validator run over the journal and publishes its result
// when it completes. It does not wait for the run.
func (s *Server) validate(ctx context.Context) {
	s.mu.RLock()
	if s.shutdown {
		s.mu.RUnlock()
		zerolog.Ctx(ctx).Debug().Msg("server is shutting down, not validating")
		return
	}
	root := s.root
	journal := s.settings.JournalPath(root)
	runner := s.runner
	publisher := s.publisher
	s.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	results := runner.Start(ctx, journal)

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		res := <-results
		if res.Err != nil {
			s.logToClient(ctx, zerolog.ErrorLevel, fmt.Sprintf("validator run %s failed: %v", res.RunID, res.Err))
			return
		}

		if err := publisher.Publish(ctx, res, root); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("run_id", res.RunID).Msg("publishing diagnostics")
		}
	}()
}
