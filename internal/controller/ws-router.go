package controller

import (
	"github.com/sharetube/watchparty/internal/service/signal"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter(validate wsrouter.Validator) *wsrouter.WSRouter {
	mux := wsrouter.New(validate)
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.errorWSMw())

	// room
	wsrouter.Handle(mux, "join-room", c.handleJoinRoom)
	wsrouter.Handle(mux, "leave-room", c.handleLeaveRoom)

	// player
	wsrouter.Handle(mux, "video-url-change", c.handleVideoUrlChange)
	wsrouter.Handle(mux, "video-play", c.handleVideoPlay)
	wsrouter.Handle(mux, "video-pause", c.handleVideoPause)
	wsrouter.Handle(mux, "video-seek", c.handleVideoSeek)

	// chat and voice
	wsrouter.Handle(mux, "chat-message", c.handleChatMessage)
	wsrouter.Handle(mux, "toggle-mic", c.handleToggleMic)

	// signaling
	wsrouter.Handle(mux, signal.EventWebrtcOffer, c.handleOffer)
	wsrouter.Handle(mux, signal.EventWebrtcAnswer, c.handleAnswer)
	wsrouter.Handle(mux, signal.EventWebrtcIceCandidate, c.handleIceCandidate)
	wsrouter.Handle(mux, signal.EventScreenShareOffer, c.handleOffer)
	wsrouter.Handle(mux, signal.EventScreenShareAnswer, c.handleAnswer)
	wsrouter.Handle(mux, signal.EventScreenShareIceCandidate, c.handleIceCandidate)
	wsrouter.Handle(mux, signal.EventScreenShareStopped, c.handleScreenShareStopped)

	return mux
}
