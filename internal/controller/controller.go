package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/signal"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	ChangeVideoUrl(context.Context, *room.ChangeVideoUrlParams) (domain.VideoState, error)
	Play(context.Context, *room.UpdatePlaybackParams) (domain.VideoState, error)
	Pause(context.Context, *room.UpdatePlaybackParams) (domain.VideoState, error)
	Seek(context.Context, *room.UpdatePlaybackParams) (domain.VideoState, error)
	SendChatMessage(context.Context, *room.SendChatMessageParams) (domain.ChatMessage, error)
	ToggleMic(context.Context, *room.ToggleMicParams) error
	GetRoomSummary(ctx context.Context, roomId string) (room.RoomSummary, error)
}

type iSignalService interface {
	Relay(context.Context, *signal.RelayParams) error
	StopScreenShare(context.Context, *signal.StopScreenShareParams) error
}

type iConnRepo interface {
	Add(connId string, conn connection.Conn) error
	Remove(connId string) error
	SendToConn(connId, eventType string, payload any)
}

type iEventLoop interface {
	Do(ctx context.Context, fn func()) error
}

type iVideoDataClient interface {
	Get(ctx context.Context, videoUrl string) (*ytvideodata.VideoData, error)
}

// RoomLocator resolves rooms hosted by other instances.
type RoomLocator interface {
	InstanceId() string
	Lookup(ctx context.Context, roomId string) (string, error)
}

type Config struct {
	InstanceId string
	StaticDir  string
	ReadLimit  int64
	PingPeriod time.Duration
}

type Option func(*controller)

func WithRoomLocator(roomLocator RoomLocator) Option {
	return func(c *controller) {
		c.roomLocator = roomLocator
	}
}

type controller struct {
	roomService   iRoomService
	signalService iSignalService
	connRepo      iConnRepo
	loop          iEventLoop
	videoData     iVideoDataClient
	roomLocator   RoomLocator
	upgrader      websocket.Upgrader
	wsmux         *wsrouter.WSRouter
	cfg           Config
	logger        *slog.Logger
}

func NewController(
	cfg *Config,
	roomService iRoomService,
	signalService iSignalService,
	connRepo iConnRepo,
	loop iEventLoop,
	videoData iVideoDataClient,
	logger *slog.Logger,
	opts ...Option,
) *controller {
	c := &controller{
		roomService:   roomService,
		signalService: signalService,
		connRepo:      connRepo,
		loop:          loop,
		videoData:     videoData,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		cfg:    *cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wsmux = c.getWSRouter(validator.NewValidator())

	return c
}
