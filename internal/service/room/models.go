package room

import "github.com/sharetube/watchparty/internal/domain"

type RoomState struct {
	VideoState domain.VideoState    `json:"videoState"`
	Users      []domain.Member      `json:"users"`
	Messages   []domain.ChatMessage `json:"messages"`
	UserId     string               `json:"userId"`
}

type PlaybackPayload struct {
	CurrentTime float64 `json:"currentTime"`
}

type MicTogglePayload struct {
	UserId string `json:"userId"`
	Muted  bool   `json:"muted"`
}

type UserLeftPayload struct {
	UserId string `json:"userId"`
	// nil once the room is empty
	NewHost *string `json:"newHost"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type RoomSummary struct {
	Id           string            `json:"id"`
	HostId       string            `json:"host_id"`
	MembersCount int               `json:"members"`
	VideoState   domain.VideoState `json:"video_state"`
}
