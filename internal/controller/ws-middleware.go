package controller

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, connId string, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, connId, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, connId string, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload", payload)

			start := time.Now()

			err := next(ctx, connId, payload)

			c.logger.DebugContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"goroutines", runtime.NumGoroutine(),
			)

			return err
		}
	}
}

// errorWSMw reports a denied host action to the sender only. Every other
// failure, such as a missing room or member, is dropped.
func (c controller) errorWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, connId string, payload any) error {
			err := next(ctx, connId, payload)
			if err == nil {
				return nil
			}

			if errors.Is(err, room.ErrPermissionDenied) {
				c.connRepo.SendToConn(connId, room.EventError, room.ErrorPayload{
					Message: room.ErrPermissionDenied.Error(),
				})
				c.logger.InfoContext(ctx, "permission denied", "error", err)
				return nil
			}

			c.logger.DebugContext(ctx, "message dropped", "error", err)
			return nil
		}
	}
}
