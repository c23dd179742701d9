package inmemory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/repository/connection"
)

type client struct {
	id        string
	conn      connection.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn connection.Conn, bufferSize int) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// trySend never blocks. A full queue drops the frame.
func (c *client) trySend(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *client) writePump(writeTimeout, pingPeriod time.Duration, logger *slog.Logger) {
	var tick <-chan time.Time
	if pingPeriod > 0 {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame, writeTimeout); err != nil {
				logger.Info("failed to write frame", "conn_id", c.id, "error", err)
				return
			}
		case <-tick:
			if err := c.write(websocket.PingMessage, nil, writeTimeout); err != nil {
				logger.Info("failed to write ping", "conn_id", c.id, "error", err)
				return
			}
		}
	}
}

func (c *client) write(messageType int, data []byte, writeTimeout time.Duration) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return c.conn.WriteMessage(messageType, data)
}
