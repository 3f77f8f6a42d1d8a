package protocol

import "context"

// Client is what the server may push to the editor.
type Client interface {
	PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error
	LogMessage(ctx context.Context, params *LogMessageParams) error
}

type clientDispatcher struct {
	sender Callbacker
}

// ClientDispatcher sends Client notifications through sender, usually the
// CallbackClient returned by NewServerServer.
func ClientDispatcher(sender Callbacker) Client {
	return &clientDispatcher{sender: sender}
}

func (c *clientDispatcher) PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error {
	return createNotify(ctx, c.sender, "textDocument/publishDiagnostics", params)
}

func (c *clientDispatcher) LogMessage(ctx context.Context, params *LogMessageParams) error {
	return createNotify(ctx, c.sender, "window/logMessage", params)
}
