package room

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
)

type SendChatMessageParams struct {
	SenderId string
	RoomId   string
	Text     string
}

func (s service) SendChatMessage(ctx context.Context, params *SendChatMessageParams) (domain.ChatMessage, error) {
	room, err := s.findRoom(params.RoomId)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	msg, err := room.PostMessage(params.SenderId, params.Text)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %s", ErrMemberNotFound, params.SenderId)
	}

	s.sender.SendToGroupAll(params.RoomId, EventChatMessage, msg)

	return msg, nil
}

type ToggleMicParams struct {
	SenderId string
	RoomId   string
	Muted    bool
}

func (s service) ToggleMic(ctx context.Context, params *ToggleMicParams) error {
	room, err := s.findRoom(params.RoomId)
	if err != nil {
		return err
	}

	if err := room.SetMicMuted(params.SenderId, params.Muted); err != nil {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, params.SenderId)
	}

	s.sender.SendToGroupAll(params.RoomId, EventUserMicToggle, MicTogglePayload{
		UserId: params.SenderId,
		Muted:  params.Muted,
	})

	return nil
}
