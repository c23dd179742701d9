package room

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
)

type ChangeVideoUrlParams struct {
	SenderId string
	RoomId   string
	Url      string
}

func (s service) ChangeVideoUrl(ctx context.Context, params *ChangeVideoUrlParams) (domain.VideoState, error) {
	room, err := s.findRoom(params.RoomId)
	if err != nil {
		return domain.VideoState{}, err
	}

	if err := s.checkIfMemberHost(room, params.SenderId); err != nil {
		return domain.VideoState{}, err
	}

	videoState := room.SetVideoUrl(params.Url)
	s.sender.SendToGroupAll(params.RoomId, EventVideoUrlChanged, videoState)

	s.logger.InfoContext(ctx, "video url changed", "room_id", params.RoomId, "url", params.Url)

	return videoState, nil
}

type UpdatePlaybackParams struct {
	SenderId    string
	RoomId      string
	CurrentTime float64
}

func (s service) Play(ctx context.Context, params *UpdatePlaybackParams) (domain.VideoState, error) {
	return s.updatePlayback(params, EventVideoPlay, (*domain.Room).ApplyPlay)
}

func (s service) Pause(ctx context.Context, params *UpdatePlaybackParams) (domain.VideoState, error) {
	return s.updatePlayback(params, EventVideoPause, (*domain.Room).ApplyPause)
}

func (s service) Seek(ctx context.Context, params *UpdatePlaybackParams) (domain.VideoState, error) {
	return s.updatePlayback(params, EventVideoSeek, (*domain.Room).ApplySeek)
}

// any member may drive playback; the sender already knows the new state
func (s service) updatePlayback(
	params *UpdatePlaybackParams,
	eventType string,
	apply func(*domain.Room, float64) domain.VideoState,
) (domain.VideoState, error) {
	room, err := s.findMemberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return domain.VideoState{}, err
	}

	videoState := apply(room, params.CurrentTime)
	s.sender.SendToGroupExcept(params.RoomId, params.SenderId, eventType, PlaybackPayload{
		CurrentTime: params.CurrentTime,
	})

	return videoState, nil
}
