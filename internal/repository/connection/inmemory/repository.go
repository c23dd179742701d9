package inmemory

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"golang.org/x/exp/maps"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingPeriod   time.Duration
}

// repo owns live connections and the room groups they are subscribed to.
// Every send is fire-and-forget.
type repo struct {
	clients map[string]*client
	// room id -> connection ids
	groups map[string]map[string]struct{}
	cfg    Config
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewRepo(cfg *Config, logger *slog.Logger) *repo {
	return &repo{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]struct{}),
		cfg:     *cfg,
		logger:  logger,
	}
}

// Add registers the connection and starts its write pump.
func (r *repo) Add(connId string, conn connection.Conn) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connId]; ok {
		r.logger.Info(funcName, "conn_id", connId, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	c := newClient(connId, conn, r.cfg.SendBuffer)
	r.clients[connId] = c
	go c.writePump(r.cfg.WriteTimeout, r.cfg.PingPeriod, r.logger)

	r.logger.Debug(funcName, "conn_id", connId, "result", "OK")
	return nil
}

// Remove drops the connection from every group and stops its write pump,
// which closes the underlying conn.
func (r *repo) Remove(connId string) error {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connId]
	if !ok {
		r.logger.Debug(funcName, "conn_id", connId, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.clients, connId)
	for roomId, group := range r.groups {
		delete(group, connId)
		if len(group) == 0 {
			delete(r.groups, roomId)
		}
	}
	c.close()

	r.logger.Debug(funcName, "conn_id", connId, "result", "OK")
	return nil
}

// CloseAll sends a close frame to every connection. Entries stay registered
// until their read loop calls Remove.
func (r *repo) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		c.close()
	}
	r.logger.Info("connection.inmemory.CloseAll", "connections", len(r.clients))
}

func (r *repo) JoinGroup(connId, roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connId]; !ok {
		return
	}

	group, ok := r.groups[roomId]
	if !ok {
		group = make(map[string]struct{})
		r.groups[roomId] = group
	}
	group[connId] = struct{}{}
}

func (r *repo) LeaveGroup(connId, roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[roomId]
	if !ok {
		return
	}

	delete(group, connId)
	if len(group) == 0 {
		delete(r.groups, roomId)
	}
}

// GetGroupConnIds returns the connection ids subscribed to the room, sorted.
func (r *repo) GetGroupConnIds(roomId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connIds := maps.Keys(r.groups[roomId])
	slices.Sort(connIds)

	return connIds
}

func (r *repo) SendToConn(connId, eventType string, payload any) {
	frame, ok := r.encode(eventType, payload)
	if !ok {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[connId]
	if !ok {
		r.logger.Debug("connection.inmemory.SendToConn", "conn_id", connId, "error", connection.ErrNotFound)
		return
	}
	r.deliver(c, eventType, frame)
}

func (r *repo) SendToGroupExcept(roomId, exceptConnId, eventType string, payload any) {
	r.sendToGroup(roomId, exceptConnId, eventType, payload)
}

func (r *repo) SendToGroupAll(roomId, eventType string, payload any) {
	r.sendToGroup(roomId, "", eventType, payload)
}

func (r *repo) sendToGroup(roomId, exceptConnId, eventType string, payload any) {
	frame, ok := r.encode(eventType, payload)
	if !ok {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for connId := range r.groups[roomId] {
		if connId == exceptConnId {
			continue
		}
		if c, ok := r.clients[connId]; ok {
			r.deliver(c, eventType, frame)
		}
	}
}

func (r *repo) deliver(c *client, eventType string, frame []byte) {
	if !c.trySend(frame) {
		r.logger.Warn("dropped frame", "conn_id", c.id, "type", eventType)
	}
}

func (r *repo) encode(eventType string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(&Output{
		Type:    eventType,
		Payload: payload,
	})
	if err != nil {
		r.logger.Warn("failed to marshal output", "type", eventType, "error", err)
		return nil, false
	}

	return frame, true
}
