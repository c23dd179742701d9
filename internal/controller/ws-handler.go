package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/signal"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type JoinRoomInput struct {
	RoomId   string `json:"roomId" validate:"required,max=128"`
	Username string `json:"username" validate:"required,max=64"`
}

func (c controller) handleJoinRoom(ctx context.Context, connId string, input JoinRoomInput) error {
	if _, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId:   connId,
		RoomId:   input.RoomId,
		Username: input.Username,
	}); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

type LeaveRoomInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c controller) handleLeaveRoom(ctx context.Context, connId string, input LeaveRoomInput) error {
	if _, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: connId,
		RoomId: input.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

type VideoUrlChangeInput struct {
	RoomId string `json:"roomId" validate:"required"`
	Url    string `json:"url" validate:"required,max=2048"`
}

func (c controller) handleVideoUrlChange(ctx context.Context, connId string, input VideoUrlChangeInput) error {
	if _, err := c.roomService.ChangeVideoUrl(ctx, &room.ChangeVideoUrlParams{
		SenderId: connId,
		RoomId:   input.RoomId,
		Url:      input.Url,
	}); err != nil {
		return fmt.Errorf("failed to change video url: %w", err)
	}

	return nil
}

type PlaybackInput struct {
	RoomId      string   `json:"roomId" validate:"required"`
	CurrentTime *float64 `json:"currentTime" validate:"required,min=0"`
}

func (input PlaybackInput) params(connId string) *room.UpdatePlaybackParams {
	return &room.UpdatePlaybackParams{
		SenderId:    connId,
		RoomId:      input.RoomId,
		CurrentTime: *input.CurrentTime,
	}
}

func (c controller) handleVideoPlay(ctx context.Context, connId string, input PlaybackInput) error {
	if _, err := c.roomService.Play(ctx, input.params(connId)); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	return nil
}

func (c controller) handleVideoPause(ctx context.Context, connId string, input PlaybackInput) error {
	if _, err := c.roomService.Pause(ctx, input.params(connId)); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return nil
}

func (c controller) handleVideoSeek(ctx context.Context, connId string, input PlaybackInput) error {
	if _, err := c.roomService.Seek(ctx, input.params(connId)); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

type ChatMessageInput struct {
	RoomId  string `json:"roomId" validate:"required"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (c controller) handleChatMessage(ctx context.Context, connId string, input ChatMessageInput) error {
	if _, err := c.roomService.SendChatMessage(ctx, &room.SendChatMessageParams{
		SenderId: connId,
		RoomId:   input.RoomId,
		Text:     input.Message,
	}); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	return nil
}

type ToggleMicInput struct {
	RoomId string `json:"roomId" validate:"required"`
	Muted  *bool  `json:"muted" validate:"required"`
}

func (c controller) handleToggleMic(ctx context.Context, connId string, input ToggleMicInput) error {
	if err := c.roomService.ToggleMic(ctx, &room.ToggleMicParams{
		SenderId: connId,
		RoomId:   input.RoomId,
		Muted:    *input.Muted,
	}); err != nil {
		return fmt.Errorf("failed to toggle mic: %w", err)
	}

	return nil
}

// roomId is accepted but not checked, the relay is keyed by connection id only
type OfferInput struct {
	RoomId string          `json:"roomId"`
	To     string          `json:"to" validate:"required"`
	Offer  json.RawMessage `json:"offer" validate:"required"`
}

func (c controller) handleOffer(ctx context.Context, connId string, input OfferInput) error {
	return c.relay(ctx, connId, input.To, "offer", input.Offer)
}

type AnswerInput struct {
	RoomId string          `json:"roomId"`
	To     string          `json:"to" validate:"required"`
	Answer json.RawMessage `json:"answer" validate:"required"`
}

func (c controller) handleAnswer(ctx context.Context, connId string, input AnswerInput) error {
	return c.relay(ctx, connId, input.To, "answer", input.Answer)
}

type IceCandidateInput struct {
	RoomId    string          `json:"roomId"`
	To        string          `json:"to" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

func (c controller) handleIceCandidate(ctx context.Context, connId string, input IceCandidateInput) error {
	return c.relay(ctx, connId, input.To, "candidate", input.Candidate)
}

func (c controller) relay(ctx context.Context, connId, to, field string, data json.RawMessage) error {
	if err := c.signalService.Relay(ctx, &signal.RelayParams{
		EventType: wsrouter.GetMessageTypeFromCtx(ctx),
		SenderId:  connId,
		To:        to,
		Field:     field,
		Data:      data,
	}); err != nil {
		return fmt.Errorf("failed to relay signal: %w", err)
	}

	return nil
}

type ScreenShareStoppedInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c controller) handleScreenShareStopped(ctx context.Context, connId string, input ScreenShareStoppedInput) error {
	if err := c.signalService.StopScreenShare(ctx, &signal.StopScreenShareParams{
		SenderId: connId,
		RoomId:   input.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to stop screen share: %w", err)
	}
	c.logger.InfoContext(ctx, "screen share stopped", "room_id", input.RoomId)

	return nil
}
