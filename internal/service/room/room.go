package room

import (
	"context"
	"errors"

	"github.com/sharetube/watchparty/internal/domain"
)

type JoinRoomParams struct {
	ConnId   string
	RoomId   string
	Username string
}

type JoinRoomResponse struct {
	JoinedMember  domain.Member
	IsRoomCreated bool
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, created := s.roomRepo.GetOrCreate(params.RoomId)
	if created {
		s.logger.InfoContext(ctx, "room created", "room_id", params.RoomId)
		s.observer.RoomCreated(params.RoomId)
	}

	s.sender.JoinGroup(params.ConnId, params.RoomId)
	joinedMember := room.AddMember(params.ConnId, params.Username)
	s.roomRepo.TrackMember(params.ConnId, params.RoomId)

	s.sender.SendToConn(params.ConnId, EventRoomState, s.getRoomState(room, params.ConnId))
	s.sender.SendToGroupExcept(params.RoomId, params.ConnId, EventUserJoined, joinedMember)

	s.logger.InfoContext(ctx, "member joined room",
		"room_id", params.RoomId,
		"username", joinedMember.Username,
		"is_host", joinedMember.IsHost,
		"members", room.MembersCount(),
	)

	return JoinRoomResponse{
		JoinedMember:  joinedMember,
		IsRoomCreated: created,
	}, nil
}

type LeaveRoomParams struct {
	ConnId string
	RoomId string
}

type LeaveRoomResponse struct {
	LeftMember    domain.Member
	IsRoomDeleted bool
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	room, err := s.findMemberRoom(params.RoomId, params.ConnId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	return s.removeMember(ctx, room, params.ConnId)
}

type DisconnectMemberParams struct {
	ConnId string
}

type DisconnectMemberResponse struct {
	LeftRoomIds    []string
	DeletedRoomIds []string
}

// DisconnectMember removes the connection from every room it is a member of.
// Calling it again for the same connection is a no-op.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	resp := DisconnectMemberResponse{
		LeftRoomIds:    make([]string, 0),
		DeletedRoomIds: make([]string, 0),
	}

	for _, roomId := range s.roomRepo.GetRoomIds(params.ConnId) {
		room, err := s.findMemberRoom(roomId, params.ConnId)
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrMemberNotFound) {
				s.roomRepo.UntrackMember(params.ConnId, roomId)
				continue
			}

			return resp, err
		}

		leaveResp, err := s.removeMember(ctx, room, params.ConnId)
		if err != nil {
			return resp, err
		}

		resp.LeftRoomIds = append(resp.LeftRoomIds, roomId)
		if leaveResp.IsRoomDeleted {
			resp.DeletedRoomIds = append(resp.DeletedRoomIds, roomId)
		}
	}

	return resp, nil
}

func (s service) removeMember(ctx context.Context, room *domain.Room, connId string) (LeaveRoomResponse, error) {
	leftMember, err := room.RemoveMember(connId)
	if err != nil {
		return LeaveRoomResponse{}, ErrMemberNotFound
	}
	s.roomRepo.UntrackMember(connId, room.Id())
	s.sender.LeaveGroup(connId, room.Id())

	var newHost *string
	if hostId := room.HostId(); hostId != "" {
		newHost = &hostId
	}
	s.sender.SendToGroupExcept(room.Id(), connId, EventUserLeft, UserLeftPayload{
		UserId:  connId,
		NewHost: newHost,
	})

	s.logger.InfoContext(ctx, "member left room",
		"room_id", room.Id(),
		"username", leftMember.Username,
		"new_host", room.HostId(),
		"members", room.MembersCount(),
	)

	isRoomDeleted := s.roomRepo.RemoveIfEmpty(room.Id())
	if isRoomDeleted {
		s.logger.InfoContext(ctx, "room deleted", "room_id", room.Id())
		s.observer.RoomDeleted(room.Id())
	}

	return LeaveRoomResponse{
		LeftMember:    leftMember,
		IsRoomDeleted: isRoomDeleted,
	}, nil
}

func (s service) GetRoomSummary(ctx context.Context, roomId string) (RoomSummary, error) {
	room, err := s.findRoom(roomId)
	if err != nil {
		return RoomSummary{}, err
	}

	return RoomSummary{
		Id:           room.Id(),
		HostId:       room.HostId(),
		MembersCount: room.MembersCount(),
		VideoState:   room.VideoState(),
	}, nil
}

func (s service) GetRoomIds(_ context.Context) []string {
	return s.roomRepo.GetAllRoomIds()
}
