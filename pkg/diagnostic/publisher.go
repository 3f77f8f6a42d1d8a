package diagnostic

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/validator"
)

// Client delivers the full diagnostic list of one document to the editor.
type Client interface {
	PublishDiagnostics(ctx context.Context, uri string, diagnostics []Diagnostic) error
}

// Publisher sends one publish call per file for each validator run. Every
// call carries the file's complete list, replacing whatever the editor showed
// before.
type Publisher struct {
	client     Client
	clearStale bool

	mu       sync.Mutex
	lastSeq  uint64
	previous []string
}

type PublisherOpt func(*Publisher)

// WithClearStale controls whether files that had diagnostics in the previous
// run but none in the current one get an empty list.
func WithClearStale(enabled bool) PublisherOpt {
	return func(p *Publisher) {
		p.clearStale = enabled
	}
}

func NewPublisher(client Client, opts ...PublisherOpt) *Publisher {
	p := &Publisher{client: client, clearStale: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish groups a validator result under root and delivers it. A failed run
// publishes nothing and leaves earlier diagnostics in place.
func (p *Publisher) Publish(ctx context.Context, res validator.Result, root string) error {
	if res.Err != nil {
		zerolog.Ctx(ctx).Debug().Str("run_id", res.RunID).Msg("skipping publish for failed validator run")
		return nil
	}
	return p.PublishGroup(ctx, res.Seq, GroupEntries(res.Output).Relative(root))
}

// PublishGroup delivers g. Groups from a run older than the newest one already
// delivered are discarded; a seq of zero is always delivered.
func (p *Publisher) PublishGroup(ctx context.Context, seq uint64, g *Group) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != 0 && seq < p.lastSeq {
		zerolog.Ctx(ctx).Debug().Uint64("run_seq", seq).Uint64("newest_seq", p.lastSeq).Msg("discarding diagnostics from an older validator run")
		return nil
	}
	if seq > p.lastSeq {
		p.lastSeq = seq
	}

	var merr *multierror.Error

	current := make(map[string]bool, g.Len())
	for _, file := range g.Files() {
		current[file] = true
		if err := p.client.PublishDiagnostics(ctx, file, g.Get(file)); err != nil {
			merr = multierror.Append(merr, errors.Errorf("publishing diagnostics for %s: %w", file, err))
		}
	}

	if p.clearStale {
		for _, file := range p.previous {
			if current[file] {
				continue
			}
			if err := p.client.PublishDiagnostics(ctx, file, []Diagnostic{}); err != nil {
				merr = multierror.Append(merr, errors.Errorf("clearing diagnostics for %s: %w", file, err))
			}
		}
	}

	p.previous = g.Files()

	zerolog.Ctx(ctx).Debug().Int("files", g.Len()).Int("diagnostics", g.Count()).Msg("published diagnostics")

	return merr.ErrorOrNil()
}
