package domain

import "time"

type VideoState struct {
	Url         string  `json:"url"`
	Playing     bool    `json:"playing"`
	CurrentTime float64 `json:"currentTime"`
	// unix millis
	LastUpdate int64 `json:"lastUpdate"`
}

func NewVideoState(now time.Time) VideoState {
	return VideoState{
		Url:         "",
		Playing:     false,
		CurrentTime: 0,
		LastUpdate:  now.UnixMilli(),
	}
}
