// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protocol

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
)

var (
	RequestCancelledError = &jrpc2.Error{Code: -32800, Message: "JSON RPC cancelled"}
)

// CallbackClient pushes server-initiated messages over the server's own
// connection, reporting them to the RPC logger when it asks for callbacks.
type CallbackClient struct {
	serverOpts *jrpc2.ServerOptions
	client     *jrpc2.Server
}

func (c *CallbackClient) Notify(ctx context.Context, method string, params any) error {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	if err := c.client.Notify(ctx, method, params); err != nil {
		return err
	}

	return nil
}

func (c *CallbackClient) Callback(ctx context.Context, method string, params any) (*jrpc2.Response, error) {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	res, err := c.client.Callback(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackResponse(ctx, res)
	}

	return res, nil
}

func NewCallbackClient(server *jrpc2.Server, serverOpts *jrpc2.ServerOptions) *CallbackClient {
	return &CallbackClient{client: server, serverOpts: serverOpts}
}

// NewServerServer wires server's methods into a jrpc2 server that may push
// notifications back to the editor. The server is not started.
func NewServerServer(ctx context.Context, server Server, opts *jrpc2.ServerOptions) (*jrpc2.Server, *CallbackClient) {
	methods := buildServerDispatchMap(server)
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	opts.AllowPush = true

	if opts.NewContext == nil {
		opts.NewContext = func() context.Context {
			return ctx
		}
	}

	result := jrpc2.NewServer(methods, opts)

	return result, NewCallbackClient(result, opts)
}

func Call(ctx context.Context, client *jrpc2.Client, method string, params interface{}, result interface{}) error {
	rsp, err := client.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if result != nil {
		return rsp.UnmarshalResult(result)
	}
	return nil
}

func NonNilSlice[T any](x []T) []T {
	if x == nil {
		return []T{}
	}
	return x
}

func newParseError(err error) *jrpc2.Error {
	return &jrpc2.Error{
		Code:    -32700, // Parse error
		Message: err.Error(),
	}
}

func createHandler[T any, O any](method func(ctx context.Context, params *T) (O, error)) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}
		if ctx.Err() != nil {
			return nil, RequestCancelledError
		}
		result, err := method(ctx, &params)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

func createEmptyResultHandler[T any](method func(ctx context.Context, params *T) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}
		return nil, method(ctx, &params)
	})
}

func createEmptyHandler(method func(ctx context.Context) error) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		ctx = ApplyRequestToZerolog(ctx, r)
		return nil, method(ctx)
	})
}

type Callbacker interface {
	Callback(ctx context.Context, method string, params interface{}) (*jrpc2.Response, error)
	Notify(ctx context.Context, method string, params interface{}) error
}

func createNotify[I any](ctx context.Context, client Callbacker, method string, params *I) error {
	return client.Notify(ctx, method, params)
}
