package protocol

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
)

// CallbackRPCLogger is an RPC logger that also wants to see the messages the
// server pushes to the editor.
type CallbackRPCLogger interface {
	LogCallbackRequestRaw(ctx context.Context, method string, params any)
	LogCallbackResponse(ctx context.Context, res *jrpc2.Response)
}

type MultiRPCLogger struct {
	mu      sync.Mutex
	loggers []jrpc2.RPCLogger
}

var (
	_ jrpc2.RPCLogger   = (*MultiRPCLogger)(nil)
	_ CallbackRPCLogger = (*MultiRPCLogger)(nil)
)

func NewMultiRPCLogger(loggers ...jrpc2.RPCLogger) *MultiRPCLogger {
	return &MultiRPCLogger{loggers: loggers}
}

func (m *MultiRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogRequest(ctx, req)
	}
}

func (m *MultiRPCLogger) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogResponse(ctx, resp)
	}
}

func (m *MultiRPCLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		if cl, ok := logger.(CallbackRPCLogger); ok {
			cl.LogCallbackRequestRaw(ctx, method, params)
		}
	}
}

func (m *MultiRPCLogger) LogCallbackResponse(ctx context.Context, res *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		if cl, ok := logger.(CallbackRPCLogger); ok {
			cl.LogCallbackResponse(ctx, res)
		}
	}
}

func (m *MultiRPCLogger) AddLogger(logger jrpc2.RPCLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, logger)
}

const maxLoggedPayload = 1000

// ZerologRPCLogger writes every message on the wire to a zerolog logger at
// trace level. Payloads longer than a kilobyte are replaced by their size.
type ZerologRPCLogger struct {
	logger zerolog.Logger
}

var (
	_ jrpc2.RPCLogger   = (*ZerologRPCLogger)(nil)
	_ CallbackRPCLogger = (*ZerologRPCLogger)(nil)
)

func NewZerologRPCLogger(logger zerolog.Logger) *ZerologRPCLogger {
	return &ZerologRPCLogger{logger: logger}
}

func (l *ZerologRPCLogger) LogRequest(_ context.Context, req *jrpc2.Request) {
	l.logger.Trace().
		Str("direction", "incoming").
		Str("rpc_method", req.Method()).
		Str("rpc_id", req.ID()).
		RawJSON("params", payload(req.ParamString())).
		Msg("lsp request")
}

func (l *ZerologRPCLogger) LogResponse(_ context.Context, res *jrpc2.Response) {
	ev := l.logger.Trace().
		Str("direction", "outgoing").
		Str("rpc_id", res.ID())
	if res.Error() != nil {
		ev = ev.Str("rpc_error", res.Error().Error())
	} else {
		ev = ev.RawJSON("result", payload(res.ResultString()))
	}
	ev.Msg("lsp response")
}

func (l *ZerologRPCLogger) LogCallbackRequestRaw(_ context.Context, method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(`null`)
	}
	l.logger.Trace().
		Str("direction", "push").
		Str("rpc_method", method).
		RawJSON("params", payload(string(raw))).
		Msg("lsp push")
}

func (l *ZerologRPCLogger) LogCallbackResponse(_ context.Context, res *jrpc2.Response) {
	l.logger.Trace().
		Str("direction", "push").
		Str("rpc_id", res.ID()).
		RawJSON("result", payload(res.ResultString())).
		Msg("lsp push response")
}

func payload(s string) []byte {
	if s == "" {
		return []byte(`null`)
	}
	if len(s) > maxLoggedPayload {
		b, _ := json.Marshal(map[string]int{"suppressed_bytes": len(s)})
		return b
	}
	return []byte(s)
}

func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	ctx = zerolog.Ctx(ctx).With().Str("rpc_method", req.Method()).Str("rpc_id", req.ID()).Logger().WithContext(ctx)
	return ctx
}

// MessageTypeFromLevel converts a zerolog level to an LSP MessageType.
func MessageTypeFromLevel(level zerolog.Level) MessageType {
	switch {
	case level >= zerolog.ErrorLevel && level <= zerolog.PanicLevel:
		return Error
	case level == zerolog.WarnLevel:
		return Warning
	case level == zerolog.InfoLevel:
		return Info
	case level == zerolog.DebugLevel:
		return Debug
	default:
		return Log
	}
}
