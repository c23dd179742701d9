package inmemory

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	"golang.org/x/exp/maps"
)

// repo is the room registry. Rooms are created lazily and must be dropped with
// RemoveIfEmpty as soon as their last member leaves.
type repo struct {
	rooms map[string]*domain.Room
	// connection id -> ids of rooms that connection is a member of
	memberRooms map[string]map[string]struct{}
	roomOpts    []domain.Option
	logger      *slog.Logger
	mu          sync.RWMutex
}

func NewRepo(logger *slog.Logger, roomOpts ...domain.Option) *repo {
	return &repo{
		rooms:       make(map[string]*domain.Room),
		memberRooms: make(map[string]map[string]struct{}),
		roomOpts:    roomOpts,
		logger:      logger,
	}
}

func (r *repo) GetOrCreate(roomId string) (*domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rooms[roomId]; ok {
		return existing, false
	}

	created := domain.NewRoom(roomId, r.roomOpts...)
	r.rooms[roomId] = created
	r.logger.Debug("room.inmemory.GetOrCreate", "room_id", roomId, "result", "created")

	return created, true
}

func (r *repo) Find(roomId string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return found, nil
}

// RemoveIfEmpty reports whether the room was deleted.
func (r *repo) RemoveIfEmpty(roomId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	found, ok := r.rooms[roomId]
	if !ok || !found.IsEmpty() {
		return false
	}

	delete(r.rooms, roomId)
	r.logger.Debug("room.inmemory.RemoveIfEmpty", "room_id", roomId, "result", "deleted")

	return true
}

func (r *repo) TrackMember(connId, roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomIds, ok := r.memberRooms[connId]
	if !ok {
		roomIds = make(map[string]struct{})
		r.memberRooms[connId] = roomIds
	}
	roomIds[roomId] = struct{}{}
}

func (r *repo) UntrackMember(connId, roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomIds, ok := r.memberRooms[connId]
	if !ok {
		return
	}

	delete(roomIds, roomId)
	if len(roomIds) == 0 {
		delete(r.memberRooms, connId)
	}
}

// GetRoomIds returns the rooms the connection belongs to, sorted.
func (r *repo) GetRoomIds(connId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomIds := maps.Keys(r.memberRooms[connId])
	slices.Sort(roomIds)

	return roomIds
}

func (r *repo) GetAllRoomIds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomIds := maps.Keys(r.rooms)
	slices.Sort(roomIds)

	return roomIds
}
