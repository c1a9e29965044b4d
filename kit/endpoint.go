// Package kit holds the transport-agnostic endpoint abstractions shared by
// the canvasqa command surface: endpoints, middleware chaining, context
// accessors, and the MCP tool adapter.
package kit

import "context"

// Endpoint is one command handler, independent of transport.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour (audit, logging).
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first middleware is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
