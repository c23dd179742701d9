package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

func (c controller) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connId := uuid.NewString()
	// disconnect must still run once the request context is cancelled
	ctx := ctxlogger.AppendCtx(context.WithoutCancel(r.Context()), slog.String("conn_id", connId))

	if err := c.connRepo.Add(connId, conn); err != nil {
		c.logger.WarnContext(ctx, "failed to add connection", "error", err)
		conn.Close()
		return
	}
	c.logger.InfoContext(ctx, "connection opened", "remote_addr", r.RemoteAddr)
	defer c.disconnect(ctx, connId)

	pongWait := c.pongWait()
	conn.SetReadLimit(c.cfg.ReadLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.InfoContext(ctx, "connection read failed", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := c.loop.Do(ctx, func() { c.dispatch(ctx, connId, data) }); err != nil {
			c.logger.WarnContext(ctx, "event loop rejected message", "error", err)
			return
		}
	}
}

// dispatch runs on the event loop.
func (c controller) dispatch(ctx context.Context, connId string, data []byte) {
	if err := c.wsmux.Dispatch(ctx, connId, data); err != nil {
		c.logger.DebugContext(ctx, "message dropped", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, connId string) {
	if err := c.loop.Do(ctx, func() {
		resp, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{ConnId: connId})
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to disconnect member", "error", err)
			return
		}
		if len(resp.LeftRoomIds) > 0 {
			c.logger.DebugContext(ctx, "member disconnected", "left_rooms", resp.LeftRoomIds)
		}
	}); err != nil {
		c.logger.WarnContext(ctx, "event loop rejected disconnect", "error", err)
	}

	if err := c.connRepo.Remove(connId); err != nil {
		c.logger.DebugContext(ctx, "failed to remove connection", "error", err)
	}
	c.logger.InfoContext(ctx, "connection closed")
}
