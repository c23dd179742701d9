package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watchparty/internal/repository/locator"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/rest"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

type localRoomResponse struct {
	room.RoomSummary
	Instance string `json:"instance"`
}

type remoteRoomResponse struct {
	Id       string `json:"id"`
	Instance string `json:"instance"`
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomId := chi.URLParam(r, "room-id")

	var (
		summary room.RoomSummary
		err     error
	)
	if loopErr := c.loop.Do(ctx, func() {
		summary, err = c.roomService.GetRoomSummary(ctx, roomId)
	}); loopErr != nil {
		c.logger.WarnContext(ctx, "event loop rejected room lookup", "error", loopErr)
		rest.WriteJSON(w, http.StatusServiceUnavailable, rest.Envelope{"error": "unavailable"})
		return
	}

	if err == nil {
		rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": localRoomResponse{
			RoomSummary: summary,
			Instance:    c.cfg.InstanceId,
		}})
		return
	}
	if !errors.Is(err, room.ErrRoomNotFound) {
		c.logger.ErrorContext(ctx, "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	if c.roomLocator != nil {
		instanceId, err := c.roomLocator.Lookup(ctx, roomId)
		if err == nil && instanceId != c.cfg.InstanceId {
			rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": remoteRoomResponse{
				Id:       roomId,
				Instance: instanceId,
			}})
			return
		}
		if err != nil && !errors.Is(err, locator.ErrNotLocated) {
			c.logger.WarnContext(ctx, "failed to lookup room", "room_id", roomId, "error", err)
		}
	}

	rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
}

func (c controller) getVideoMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoUrl := r.URL.Query().Get("url")
	if videoUrl == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "url is required"})
		return
	}

	videoData, err := c.videoData.Get(ctx, videoUrl)
	if err != nil {
		switch {
		case errors.Is(err, ytvideodata.ErrInvalidUrl):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		case errors.Is(err, ytvideodata.ErrVideoNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
		default:
			c.logger.WarnContext(ctx, "failed to get video data", "url", videoUrl, "error", err)
			rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": "video data unavailable"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": videoData})
}
