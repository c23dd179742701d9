package room

import (
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	roomRepo "github.com/sharetube/watchparty/internal/repository/room"
)

func (s service) findRoom(roomId string) (*domain.Room, error) {
	room, err := s.roomRepo.Find(roomId)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomId)
		}

		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return room, nil
}

func (s service) findMemberRoom(roomId, memberId string) (*domain.Room, error) {
	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(memberId) {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberId)
	}

	return room, nil
}

func (s service) checkIfMemberHost(room *domain.Room, memberId string) error {
	member, err := room.GetMember(memberId)
	if err != nil || !member.IsHost {
		return ErrPermissionDenied
	}

	return nil
}

func (s service) getRoomState(room *domain.Room, userId string) RoomState {
	return RoomState{
		VideoState: room.VideoState(),
		Users:      room.Members(),
		Messages:   room.Messages(),
		UserId:     userId,
	}
}
