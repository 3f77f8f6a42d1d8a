package lsp

import (
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/semtok"
	"github.com/walteh/beanls/pkg/syntax"
)

// Document represents a text document with its metadata
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Content    string
}

// DocumentManager holds the text of every open document, keyed by the URI the
// editor used.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

var _ semtok.Documents = (*DocumentManager)(nil)

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
	}
}

func (m *DocumentManager) Get(uri string) (*Document, bool) {
	content, ok := m.store.Load(uri)
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

func (m *DocumentManager) Store(doc *Document) {
	m.store.Store(doc.URI, doc)
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(uri)
}

func (m *DocumentManager) Text(uri string) (string, bool) {
	doc, ok := m.Get(uri)
	if !ok {
		return "", false
	}
	return doc.Content, true
}

// Apply applies the editor's content changes to the stored document in order
// and returns the same changes as byte-coordinate edits for the provider.
func (m *DocumentManager) Apply(uri string, version int32, changes []protocol.TextDocumentContentChangeEvent) (*Document, []syntax.Edit, error) {
	doc, ok := m.Get(uri)
	if !ok {
		return nil, nil, errors.Errorf("document not open: %s", uri)
	}

	content := doc.Content
	edits := make([]syntax.Edit, 0, len(changes))
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			edits = append(edits, syntax.Edit{Text: change.Text})
			continue
		}

		var edit syntax.Edit
		content, edit = replaceRange(content, *change.Range, change.Text)
		edits = append(edits, edit)
	}

	updated := &Document{
		URI:        doc.URI,
		LanguageID: doc.LanguageID,
		Version:    version,
		Content:    content,
	}
	m.Store(updated)

	return updated, edits, nil
}

func replaceRange(content string, rng protocol.Range, text string) (string, syntax.Edit) {
	ix := position.NewIndex(content)

	start := ix.BytePoint(toPlace(rng.Start))
	end := ix.BytePoint(toPlace(rng.End))
	startOff, endOff := ix.Offset(start), ix.Offset(end)
	if endOff < startOff {
		start, end = end, start
		startOff, endOff = endOff, startOff
	}
	// keep the edit consistent with the clamped offsets
	start, end = ix.Point(startOff), ix.Point(endOff)

	return content[:startOff] + text + content[endOff:], syntax.Edit{
		Range: &syntax.EditRange{Start: start, End: end},
		Text:  text,
	}
}

func toPlace(p protocol.Position) position.Place {
	return position.Place{Line: int(p.Line), Character: int(p.Character)}
}

func toPosition(p position.Place) protocol.Position {
	return protocol.Position{Line: uint32(max(p.Line, 0)), Character: uint32(max(p.Character, 0))}
}
