package protocol_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/beanls/pkg/lsp/protocol"
)

// stubServer answers initialize and echoes every opened document back as a
// log message.
type stubServer struct {
	protocol.Server

	client protocol.Client
}

func (s *stubServer) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{Name: "stub", Version: params.ClientInfo.Name},
	}, nil
}

func (s *stubServer) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	return s.client.LogMessage(ctx, &protocol.LogMessageParams{
		Type:    protocol.Info,
		Message: string(params.TextDocument.URI),
	})
}

func startStub(t *testing.T, opts *jrpc2.ServerOptions) (*jrpc2.Client, <-chan *jrpc2.Request) {
	t.Helper()

	stub := &stubServer{}
	srv, callback := protocol.NewServerServer(context.Background(), stub, opts)
	stub.client = protocol.ClientDispatcher(callback)

	cch, sch := channel.Direct()
	srv.Start(sch)

	pushes := make(chan *jrpc2.Request, 8)
	client := jrpc2.NewClient(cch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			pushes <- req
		},
	})
	t.Cleanup(func() {
		client.Close()
		srv.Stop()
	})
	return client, pushes
}

func TestServerServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	tracker := protocol.NewRPCTracker()
	client, pushes := startStub(t, &jrpc2.ServerOptions{RPCLog: tracker})

	var res protocol.InitializeResult
	require.NoError(t, protocol.Call(ctx, client, "initialize", &protocol.InitializeParams{
		ClientInfo: &protocol.ClientInfo{Name: "nvim"},
	}, &res))
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, "stub", res.ServerInfo.Name)
	assert.Equal(t, "nvim", res.ServerInfo.Version)

	require.NoError(t, client.Notify(ctx, "textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///a.bean"},
	}))

	select {
	case req := <-pushes:
		assert.Equal(t, "window/logMessage", req.Method())
		var params protocol.LogMessageParams
		require.NoError(t, req.UnmarshalParams(&params))
		assert.Equal(t, protocol.Info, params.Type)
		assert.Equal(t, "file:///a.bean", params.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for push")
	}

	msgs, ok := tracker.WaitForMessages(1, time.Second, func(msg protocol.RPCMessage) bool {
		return msg.IsPush()
	})
	require.True(t, ok)
	assert.Equal(t, "window/logMessage", msgs[0].Method)
	assert.JSONEq(t, `{"type":3,"message":"file:///a.bean"}`, string(msgs[0].Push))

	responses := tracker.MessagesLike(func(msg protocol.RPCMessage) bool {
		return msg.Response != nil
	})
	require.Len(t, responses, 1)
	assert.Equal(t, "initialize", responses[0].Method)
}

func TestServerServerIgnoresCancelAndTrace(t *testing.T) {
	ctx := context.Background()
	client, _ := startStub(t, nil)

	require.NoError(t, client.Notify(ctx, "$/cancelRequest", &protocol.CancelParams{ID: 1}))
	require.NoError(t, client.Notify(ctx, "$/setTrace", map[string]string{"value": "off"}))

	// the connection is still usable afterwards
	var res protocol.InitializeResult
	require.NoError(t, protocol.Call(ctx, client, "initialize", &protocol.InitializeParams{ClientInfo: &protocol.ClientInfo{}}, &res))
}

func TestUnknownMethod(t *testing.T) {
	client, _ := startStub(t, nil)

	_, err := client.Call(context.Background(), "textDocument/hover", map[string]any{})
	require.Error(t, err)

	var rpcErr *jrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, jrpc2.MethodNotFound, rpcErr.Code)
}

func TestMessageTypeFromLevel(t *testing.T) {
	tests := []struct {
		name  string
		level zerolog.Level
		want  protocol.MessageType
	}{
		{name: "error", level: zerolog.ErrorLevel, want: protocol.Error},
		{name: "fatal", level: zerolog.FatalLevel, want: protocol.Error},
		{name: "warn", level: zerolog.WarnLevel, want: protocol.Warning},
		{name: "info", level: zerolog.InfoLevel, want: protocol.Info},
		{name: "debug", level: zerolog.DebugLevel, want: protocol.Debug},
		{name: "trace", level: zerolog.TraceLevel, want: protocol.Log},
		{name: "no_level", level: zerolog.NoLevel, want: protocol.Log},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, protocol.MessageTypeFromLevel(tt.level))
		})
	}
}

func TestZerologRPCLogger(t *testing.T) {
	ctx := context.Background()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := protocol.NewZerologRPCLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	logger.LogCallbackRequestRaw(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{URI: "file:///a.bean"})
	logger.LogCallbackRequestRaw(ctx, "window/logMessage", &protocol.LogMessageParams{Message: strings.Repeat("x", 2000)})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "push", first["direction"])
	assert.Equal(t, "textDocument/publishDiagnostics", first["rpc_method"])
	assert.Equal(t, "file:///a.bean", first["params"].(map[string]any)["uri"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	suppressed := second["params"].(map[string]any)["suppressed_bytes"]
	assert.Greater(t, suppressed, float64(2000))
}

func TestMultiRPCLogger(t *testing.T) {
	ctx := context.Background()

	a := protocol.NewRPCTracker()
	b := protocol.NewRPCTracker()
	multi := protocol.NewMultiRPCLogger(a)
	multi.AddLogger(b)

	multi.LogCallbackRequestRaw(ctx, "window/logMessage", &protocol.LogMessageParams{Message: "hi"})

	for _, tracker := range []*protocol.RPCTracker{a, b} {
		msgs := tracker.Messages()
		require.Len(t, msgs, 1)
		assert.True(t, msgs[0].IsPush())
		assert.Equal(t, "window/logMessage", msgs[0].Method)
	}
}

func TestRPCTrackerWaitTimesOut(t *testing.T) {
	tracker := protocol.NewRPCTracker()
	tracker.Track(protocol.RPCMessage{Method: "initialize"})

	msgs, ok := tracker.WaitForMessages(2, 50*time.Millisecond, func(msg protocol.RPCMessage) bool {
		return msg.Method == "initialize"
	})
	assert.False(t, ok)
	assert.Len(t, msgs, 1)
}

func TestRPCTrackerSubscribe(t *testing.T) {
	tracker := protocol.NewRPCTracker()
	ch, unsubscribe := tracker.Subscribe(1)
	defer unsubscribe()

	tracker.Track(protocol.RPCMessage{Method: "shutdown"})

	select {
	case msg := <-ch:
		assert.Equal(t, "shutdown", msg.Method)
		assert.False(t, msg.Time.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}
