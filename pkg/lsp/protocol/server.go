package protocol

import (
	"context"

	"github.com/creachadair/jrpc2/handler"
)

// Server is the editor-facing surface of the language server.
type Server interface {
	Initialize(ctx context.Context, params *InitializeParams) (*InitializeResult, error)
	Initialized(ctx context.Context, params *InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	DidOpen(ctx context.Context, params *DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *DidChangeTextDocumentParams) error
	DidSave(ctx context.Context, params *DidSaveTextDocumentParams) error
	DidClose(ctx context.Context, params *DidCloseTextDocumentParams) error

	SemanticTokensFull(ctx context.Context, params *SemanticTokensParams) (*SemanticTokens, error)
	// SemanticTokensFullDelta returns either *SemanticTokens or *SemanticTokensDelta.
	SemanticTokensFullDelta(ctx context.Context, params *SemanticTokensDeltaParams) (interface{}, error)
	SemanticTokensRange(ctx context.Context, params *SemanticTokensRangeParams) (*SemanticTokens, error)
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"initialize":  createHandler(server.Initialize),
		"initialized": createEmptyResultHandler(server.Initialized),
		"shutdown":    createEmptyHandler(server.Shutdown),
		"exit":        createEmptyHandler(server.Exit),

		"textDocument/didOpen":   createEmptyResultHandler(server.DidOpen),
		"textDocument/didChange": createEmptyResultHandler(server.DidChange),
		"textDocument/didSave":   createEmptyResultHandler(server.DidSave),
		"textDocument/didClose":  createEmptyResultHandler(server.DidClose),

		"textDocument/semanticTokens/full":       createHandler(server.SemanticTokensFull),
		"textDocument/semanticTokens/full/delta": createHandler(server.SemanticTokensFullDelta),
		"textDocument/semanticTokens/range":      createHandler(server.SemanticTokensRange),

		"$/cancelRequest": createEmptyResultHandler(func(context.Context, *CancelParams) error { return nil }),
		"$/setTrace":      createEmptyResultHandler(func(context.Context, *struct{}) error { return nil }),
	}
}
