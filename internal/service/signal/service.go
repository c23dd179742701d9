package signal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

var ErrSelfTarget = errors.New("signal target is the sender")

// relayed event types, the outbound type equals the inbound one
const (
	EventWebrtcOffer             = "webrtc-offer"
	EventWebrtcAnswer            = "webrtc-answer"
	EventWebrtcIceCandidate      = "webrtc-ice-candidate"
	EventScreenShareOffer        = "screen-share-offer"
	EventScreenShareAnswer       = "screen-share-answer"
	EventScreenShareIceCandidate = "screen-share-ice-candidate"
	EventScreenShareStopped      = "screen-share-stopped"
)

type iSender interface {
	SendToConn(connId, eventType string, payload any)
	SendToGroupExcept(roomId, exceptConnId, eventType string, payload any)
}

type service struct {
	sender iSender
	logger *slog.Logger
}

// NewService returns a stateless relay. It does not check room membership,
// only members learn each other's connection ids.
func NewService(sender iSender, logger *slog.Logger) *service {
	return &service{
		sender: sender,
		logger: logger,
	}
}

type RelayParams struct {
	EventType string
	SenderId  string
	To        string
	// payload field name, one of offer, answer, candidate
	Field string
	Data  json.RawMessage
}

// Relay forwards {from, <field>: data} to the target connection. Unknown
// targets are dropped by the transport.
func (s service) Relay(ctx context.Context, params *RelayParams) error {
	if params.To == params.SenderId {
		return ErrSelfTarget
	}

	s.sender.SendToConn(params.To, params.EventType, map[string]any{
		"from":       params.SenderId,
		params.Field: params.Data,
	})

	s.logger.DebugContext(ctx, "signal relayed", "event", params.EventType, "to", params.To)

	return nil
}

type StopScreenShareParams struct {
	SenderId string
	RoomId   string
}

type ScreenShareStoppedPayload struct {
	From string `json:"from"`
}

func (s service) StopScreenShare(ctx context.Context, params *StopScreenShareParams) error {
	s.sender.SendToGroupExcept(params.RoomId, params.SenderId, EventScreenShareStopped, ScreenShareStoppedPayload{
		From: params.SenderId,
	})

	return nil
}
