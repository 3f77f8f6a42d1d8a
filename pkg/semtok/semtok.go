package semtok

import (
	"context"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/walteh/beanls/pkg/syntax"
)

// Documents gives the encoder the current text of a document, which it needs
// to convert the provider's byte columns into UTF-16 columns.
type Documents interface {
	Text(uri string) (string, bool)
}

// Encoder produces token streams for documents and keeps the cache current.
type Encoder struct {
	provider syntax.Provider
	docs     Documents
	rules    RuleTable
	legend   *Legend
	cache    *Cache
	newID    func() string
}

type EncoderOpt func(*Encoder)

// WithResultIDs replaces the result id generator.
func WithResultIDs(gen func() string) EncoderOpt {
	return func(e *Encoder) {
		e.newID = gen
	}
}

func NewEncoder(provider syntax.Provider, docs Documents, rules RuleTable, legend *Legend, cache *Cache, opts ...EncoderOpt) *Encoder {
	e := &Encoder{
		provider: provider,
		docs:     docs,
		rules:    rules,
		legend:   legend,
		cache:    cache,
		newID:    func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Encoder) Legend() *Legend {
	return e.legend
}

func (e *Encoder) Cache() *Cache {
	return e.cache
}

// Tokens classifies the current tree of uri. A document without a tree has no
// tokens.
func (e *Encoder) Tokens(ctx context.Context, uri string) []Token {
	tree, ok := e.provider.Tree(ctx, uri)
	if !ok || tree == nil {
		zerolog.Ctx(ctx).Debug().Str("uri", uri).Msg("no syntax tree, nothing to classify")
		return []Token{}
	}

	var text string
	var haveText bool
	if e.docs != nil {
		text, haveText = e.docs.Text(uri)
	}

	v := newVisitor(e.rules, e.legend, text, haveText)
	v.visitTree(ctx, tree)
	return v.getTokens()
}

// Full encodes the whole document under a fresh result id and caches it.
func (e *Encoder) Full(ctx context.Context, uri string) *Stream {
	tokens := e.Tokens(ctx, uri)
	s := &Stream{
		ResultID: e.newID(),
		Tokens:   tokens,
		Data:     EncodeData(tokens, e.legend),
	}
	e.cache.Put(uri, s)

	zerolog.Ctx(ctx).Debug().Str("uri", uri).Str("result_id", s.ResultID).Int("token_count", len(tokens)).Msg("encoded full token stream")
	return s
}

// Delta encodes the document and diffs it against the stream previously sent
// as previousResultID. An unknown or stale id yields a full stream instead.
func (e *Encoder) Delta(ctx context.Context, uri string, previousResultID string) *DeltaResult {
	prev, ok := e.cache.Get(uri, previousResultID)
	current := e.Full(ctx, uri)

	if !ok {
		zerolog.Ctx(ctx).Debug().Str("uri", uri).Str("previous_result_id", previousResultID).Msg("no cached stream for previous result id, sending full stream")
		return &DeltaResult{ResultID: current.ResultID, Full: current}
	}

	edits := DiffData(prev.Data, current.Data)
	zerolog.Ctx(ctx).Debug().Str("uri", uri).Int("edit_count", len(edits)).Msg("encoded token delta")

	return &DeltaResult{ResultID: current.ResultID, Edits: edits}
}

// Range encodes only the tokens starting on lines [startLine, endLine]. The
// cache is left untouched since range results carry no result id.
func (e *Encoder) Range(ctx context.Context, uri string, startLine, endLine int) *Stream {
	all := e.Tokens(ctx, uri)
	tokens := make([]Token, 0, len(all))
	for _, tok := range all {
		if tok.Line >= startLine && tok.Line <= endLine {
			tokens = append(tokens, tok)
		}
	}
	return &Stream{Tokens: tokens, Data: EncodeData(tokens, e.legend)}
}

// Forget drops the cached stream of a closed document.
func (e *Encoder) Forget(uri string) {
	e.cache.Forget(uri)
}
