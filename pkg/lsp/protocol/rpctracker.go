package protocol

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
)

// RPCMessage is one message seen by an RPCTracker.
type RPCMessage struct {
	Method   string
	Request  *jrpc2.Request  // incoming request, if any
	Response *jrpc2.Response // outgoing response, if any
	Push     json.RawMessage // params of a server push, if any
	Time     time.Time
}

// IsPush reports whether the server sent msg unprompted.
func (m RPCMessage) IsPush() bool {
	return m.Push != nil
}

// RPCTracker records the traffic of a server for tests.
type RPCTracker struct {
	mu sync.RWMutex

	messages     []RPCMessage
	subs         map[chan<- RPCMessage]struct{}
	knownMethods map[string]string
}

var (
	_ jrpc2.RPCLogger   = (*RPCTracker)(nil)
	_ CallbackRPCLogger = (*RPCTracker)(nil)
)

func NewRPCTracker() *RPCTracker {
	return &RPCTracker{
		messages:     make([]RPCMessage, 0),
		subs:         make(map[chan<- RPCMessage]struct{}),
		knownMethods: make(map[string]string),
	}
}

func (t *RPCTracker) LogRequest(_ context.Context, req *jrpc2.Request) {
	t.addKnownMethod(req.ID(), req.Method())
	t.Track(RPCMessage{
		Method:  req.Method(),
		Request: req,
	})
}

func (t *RPCTracker) LogResponse(_ context.Context, resp *jrpc2.Response) {
	t.Track(RPCMessage{
		Method:   t.knownMethod(resp.ID()),
		Response: resp,
	})
}

func (t *RPCTracker) LogCallbackRequestRaw(_ context.Context, method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = json.RawMessage(`null`)
	}
	t.Track(RPCMessage{
		Method: method,
		Push:   raw,
	})
}

func (t *RPCTracker) LogCallbackResponse(context.Context, *jrpc2.Response) {}

func (t *RPCTracker) addKnownMethod(id string, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.knownMethods[id] = name
}

func (t *RPCTracker) knownMethod(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.knownMethods[id]
}

// Subscribe streams messages tracked from now on. Call the returned function
// to unsubscribe.
func (t *RPCTracker) Subscribe(bufSize int) (<-chan RPCMessage, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan RPCMessage, bufSize)
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
		close(ch)
	}
}

func (t *RPCTracker) Track(msg RPCMessage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Time = time.Now()
	t.messages = append(t.messages, msg)

	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (t *RPCTracker) Messages() []RPCMessage {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]RPCMessage{}, t.messages...)
}

func (t *RPCTracker) MessagesLike(predicate func(RPCMessage) bool) []RPCMessage {
	msgs := t.Messages()
	return slices.DeleteFunc(msgs, func(msg RPCMessage) bool {
		return !predicate(msg)
	})
}

// WaitForMessages waits until count messages match predicate or timeout
// passes, returning what matched.
func (t *RPCTracker) WaitForMessages(count int, timeout time.Duration, predicate func(RPCMessage) bool) ([]RPCMessage, bool) {
	ch := make(chan RPCMessage, 64)

	t.mu.Lock()
	result := slices.DeleteFunc(append([]RPCMessage{}, t.messages...), func(msg RPCMessage) bool {
		return !predicate(msg)
	})
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
	}()

	if len(result) >= count {
		return result, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-ch:
			if predicate(msg) {
				result = append(result, msg)
			}
			if len(result) >= count {
				return result, true
			}
		case <-timer.C:
			return result, false
		}
	}
}
