package room

import (
	"errors"
	"log/slog"

	"github.com/sharetube/watchparty/internal/domain"
)

var (
	ErrPermissionDenied = errors.New("only the host can change the video")
	ErrMemberNotFound   = errors.New("member not found")
	ErrRoomNotFound     = errors.New("room not found")
)

// outbound event types
const (
	EventRoomState       = "room-state"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventVideoUrlChanged = "video-url-changed"
	EventVideoPlay       = "video-play"
	EventVideoPause      = "video-pause"
	EventVideoSeek       = "video-seek"
	EventChatMessage     = "chat-message"
	EventUserMicToggle   = "user-mic-toggle"
	EventError           = "error"
)

type iRoomRepo interface {
	GetOrCreate(roomId string) (*domain.Room, bool)
	Find(roomId string) (*domain.Room, error)
	RemoveIfEmpty(roomId string) bool
	TrackMember(connId, roomId string)
	UntrackMember(connId, roomId string)
	GetRoomIds(connId string) []string
	GetAllRoomIds() []string
}

// iSender is the transport. Every call is fire-and-forget.
type iSender interface {
	JoinGroup(connId, roomId string)
	LeaveGroup(connId, roomId string)
	SendToConn(connId, eventType string, payload any)
	SendToGroupExcept(roomId, exceptConnId, eventType string, payload any)
	SendToGroupAll(roomId, eventType string, payload any)
}

// iRoomObserver is told about room creation and deletion. Implementations
// must not block.
type iRoomObserver interface {
	RoomCreated(roomId string)
	RoomDeleted(roomId string)
}

type noopObserver struct{}

func (noopObserver) RoomCreated(string) {}
func (noopObserver) RoomDeleted(string) {}

type service struct {
	roomRepo iRoomRepo
	sender   iSender
	observer iRoomObserver
	logger   *slog.Logger
}

type Option func(*service)

func WithObserver(observer iRoomObserver) Option {
	return func(s *service) {
		s.observer = observer
	}
}

// NewService expects every call to run on a single goroutine (see
// pkg/eventloop); rooms are not locked.
func NewService(roomRepo iRoomRepo, sender iSender, logger *slog.Logger, opts ...Option) *service {
	s := &service{
		roomRepo: roomRepo,
		sender:   sender,
		observer: noopObserver{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
