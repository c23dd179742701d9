package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, connId string, input T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type Validator interface {
	Struct(i any) error
}

type route struct {
	decode  func(payload json.RawMessage) (any, error)
	handler HandlerFunc[any]
}

type WSRouter struct {
	routes      map[string]route
	middlewares []Middleware
	validate    Validator
}

func New(validate Validator) *WSRouter {
	return &WSRouter{
		routes:   make(map[string]route),
		validate: validate,
	}
}

// Use appends middlewares. They wrap handlers registered afterwards as well as
// before, in the order given.
func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Handle registers a typed handler. The payload is decoded into T and
// validated before any middleware runs.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = route{
		decode: func(payload json.RawMessage) (any, error) {
			var input T
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &input); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
				}
			}

			if r.validate != nil {
				if err := r.validate.Struct(input); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
				}
			}

			return input, nil
		},
		handler: func(ctx context.Context, connId string, input any) error {
			return handler(ctx, connId, input.(T))
		},
	}
}

// Dispatch routes one raw frame. The message type is available to
// middlewares through GetMessageTypeFromCtx.
func (r *WSRouter) Dispatch(ctx context.Context, connId string, data []byte) error {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)

	rt, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	input, err := rt.decode(msg.Payload)
	if err != nil {
		return err
	}

	handler := rt.handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	return handler(ctx, connId, input)
}
