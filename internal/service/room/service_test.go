package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	To      string
	Type    string
	Payload any
}

// recordingSender keeps group membership like the real transport and
// records every delivered event per connection.
type recordingSender struct {
	groups map[string][]string
	sent   []sentEvent
	mu     sync.Mutex
}

func newRecordingSender() *recordingSender {
	return &recordingSender{groups: make(map[string][]string)}
}

func (s *recordingSender) JoinGroup(connId, roomId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.groups[roomId] {
		if id == connId {
			return
		}
	}
	s.groups[roomId] = append(s.groups[roomId], connId)
}

func (s *recordingSender) LeaveGroup(connId, roomId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.groups[roomId]
	for i, id := range ids {
		if id == connId {
			s.groups[roomId] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}

func (s *recordingSender) SendToConn(connId, eventType string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, sentEvent{To: connId, Type: eventType, Payload: payload})
}

func (s *recordingSender) SendToGroupExcept(roomId, exceptConnId, eventType string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.groups[roomId] {
		if id != exceptConnId {
			s.sent = append(s.sent, sentEvent{To: id, Type: eventType, Payload: payload})
		}
	}
}

func (s *recordingSender) SendToGroupAll(roomId, eventType string, payload any) {
	s.SendToGroupExcept(roomId, "", eventType, payload)
}

func (s *recordingSender) received(connId, eventType string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]any, 0)
	for _, e := range s.sent {
		if e.To == connId && e.Type == eventType {
			res = append(res, e.Payload)
		}
	}

	return res
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = nil
}

type recordingObserver struct {
	created []string
	deleted []string
}

func (o *recordingObserver) RoomCreated(roomId string) { o.created = append(o.created, roomId) }
func (o *recordingObserver) RoomDeleted(roomId string) { o.deleted = append(o.deleted, roomId) }

type testEnv struct {
	service  *service
	roomRepo iRoomRepo
	sender   *recordingSender
	observer *recordingObserver
}

func newTestEnv() testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roomRepo := inmemory.NewRepo(logger)
	sender := newRecordingSender()
	observer := &recordingObserver{}

	return testEnv{
		service:  NewService(roomRepo, sender, logger, WithObserver(observer)),
		roomRepo: roomRepo,
		sender:   sender,
		observer: observer,
	}
}

func (e testEnv) join(t *testing.T, connId, roomId, username string) JoinRoomResponse {
	t.Helper()

	resp, err := e.service.JoinRoom(context.Background(), &JoinRoomParams{
		ConnId:   connId,
		RoomId:   roomId,
		Username: username,
	})
	require.NoError(t, err)

	return resp
}

func TestJoinRoom(t *testing.T) {
	env := newTestEnv()

	resp := env.join(t, "A", "r1", "alice")
	assert.True(t, resp.IsRoomCreated)
	assert.True(t, resp.JoinedMember.IsHost)
	assert.Equal(t, []string{"r1"}, env.observer.created)

	states := env.sender.received("A", EventRoomState)
	require.Len(t, states, 1)
	state := states[0].(RoomState)
	assert.Equal(t, "A", state.UserId)
	assert.Len(t, state.Users, 1)
	assert.Empty(t, state.Messages)
	assert.NotNil(t, state.Messages)
	assert.Empty(t, state.VideoState.Url)

	resp = env.join(t, "B", "r1", "bob")
	assert.False(t, resp.IsRoomCreated)
	assert.False(t, resp.JoinedMember.IsHost)

	joined := env.sender.received("A", EventUserJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "B", joined[0].(domain.Member).Id)
	assert.Empty(t, env.sender.received("B", EventUserJoined), "joiner must not get its own user-joined")

	states = env.sender.received("B", EventRoomState)
	require.Len(t, states, 1)
	state = states[0].(RoomState)
	assert.Equal(t, "B", state.UserId)
	require.Len(t, state.Users, 2)
	assert.Equal(t, "A", state.Users[0].Id)
}

func TestChangeVideoUrlByNonHost(t *testing.T) {
	env := newTestEnv()
	env.join(t, "A", "r1", "alice")
	env.join(t, "B", "r1", "bob")
	env.sender.reset()

	_, err := env.service.ChangeVideoUrl(context.Background(), &ChangeVideoUrlParams{
		SenderId: "B",
		RoomId:   "r1",
		Url:      "x",
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	assert.Empty(t, env.sender.sent, "no event may be broadcast")

	summary, err := env.service.GetRoomSummary(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, summary.VideoState.Url)
}

func TestChangeVideoUrlByStranger(t *testing.T) {
	env := newTestEnv()
	env.join(t, "A", "r1", "alice")

	_, err := env.service.ChangeVideoUrl(context.Background(), &ChangeVideoUrlParams{
		SenderId: "Z",
		RoomId:   "r1",
		Url:      "x",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMissingRoomIsReported(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.service.ChangeVideoUrl(ctx, &ChangeVideoUrlParams{SenderId: "A", RoomId: "nope", Url: "x"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = env.service.Play(ctx, &UpdatePlaybackParams{SenderId: "A", RoomId: "nope", CurrentTime: 1})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = env.service.SendChatMessage(ctx, &SendChatMessageParams{SenderId: "A", RoomId: "nope", Text: "hi"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	err = env.service.ToggleMic(ctx, &ToggleMicParams{SenderId: "A", RoomId: "nope", Muted: true})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = env.service.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "A", RoomId: "nope"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.Empty(t, env.sender.sent)
	assert.Empty(t, env.service.GetRoomIds(ctx), "lookups must not create rooms")
}

func TestMissingMemberIsReported(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.join(t, "A", "r1", "alice")
	env.sender.reset()

	_, err := env.service.Seek(ctx, &UpdatePlaybackParams{SenderId: "Z", RoomId: "r1", CurrentTime: 1})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.service.SendChatMessage(ctx, &SendChatMessageParams{SenderId: "Z", RoomId: "r1", Text: "hi"})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	err = env.service.ToggleMic(ctx, &ToggleMicParams{SenderId: "Z", RoomId: "r1", Muted: true})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	assert.Empty(t, env.sender.sent)
}

func TestChatHistoryBound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.join(t, "A", "r1", "alice")

	for i := range 130 {
		_, err := env.service.SendChatMessage(ctx, &SendChatMessageParams{
			SenderId: "A",
			RoomId:   "r1",
			Text:     fmt.Sprintf("msg %d", i),
		})
		require.NoError(t, err)
	}
	assert.Len(t, env.sender.received("A", EventChatMessage), 130, "sender receives its own messages")

	env.join(t, "B", "r1", "bob")
	states := env.sender.received("B", EventRoomState)
	require.Len(t, states, 1)
	messages := states[0].(RoomState).Messages
	require.Len(t, messages, domain.DefaultHistoryLimit)
	assert.Equal(t, "msg 30", messages[0].Text)
	assert.Equal(t, "msg 129", messages[len(messages)-1].Text)
	assert.Equal(t, "alice", messages[0].Username)
}

func TestToggleMic(t *testing.T) {
	env := newTestEnv()
	env.join(t, "A", "r1", "alice")
	env.join(t, "B", "r1", "bob")

	err := env.service.ToggleMic(context.Background(), &ToggleMicParams{SenderId: "B", RoomId: "r1", Muted: true})
	require.NoError(t, err)

	for _, connId := range []string{"A", "B"} {
		toggles := env.sender.received(connId, EventUserMicToggle)
		require.Len(t, toggles, 1, connId)
		assert.Equal(t, MicTogglePayload{UserId: "B", Muted: true}, toggles[0])
	}
}

func TestLeaveRoom(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.join(t, "A", "r1", "alice")
	env.join(t, "B", "r1", "bob")

	resp, err := env.service.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "A", RoomId: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.LeftMember.Username)
	assert.False(t, resp.IsRoomDeleted)

	left := env.sender.received("B", EventUserLeft)
	require.Len(t, left, 1)
	payload := left[0].(UserLeftPayload)
	assert.Equal(t, "A", payload.UserId)
	require.NotNil(t, payload.NewHost)
	assert.Equal(t, "B", *payload.NewHost)

	assert.Empty(t, env.roomRepo.GetRoomIds("A"))

	_, err = env.service.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "A", RoomId: "r1"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDisconnectMultiRoom(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.join(t, "A", "r1", "alice")
	env.join(t, "A", "r2", "alice")
	env.join(t, "B", "r2", "bob")

	resp, err := env.service.DisconnectMember(ctx, &DisconnectMemberParams{ConnId: "A"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, resp.LeftRoomIds)
	assert.Equal(t, []string{"r1"}, resp.DeletedRoomIds)
	assert.Equal(t, []string{"r1"}, env.observer.deleted)

	assert.Equal(t, []string{"r2"}, env.service.GetRoomIds(ctx))
	summary, err := env.service.GetRoomSummary(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "B", summary.HostId)
	assert.Equal(t, 1, summary.MembersCount)

	env.sender.reset()
	resp, err = env.service.DisconnectMember(ctx, &DisconnectMemberParams{ConnId: "A"})
	require.NoError(t, err)
	assert.Empty(t, resp.LeftRoomIds)
	assert.Empty(t, env.sender.sent, "second disconnect is a no-op")
}

func TestWatchPartyScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.join(t, "A", "r1", "alice")
	env.join(t, "B", "r1", "bob")

	_, err := env.service.ChangeVideoUrl(ctx, &ChangeVideoUrlParams{SenderId: "A", RoomId: "r1", Url: "x"})
	require.NoError(t, err)
	for _, connId := range []string{"A", "B"} {
		changed := env.sender.received(connId, EventVideoUrlChanged)
		require.Len(t, changed, 1, connId)
		state := changed[0].(domain.VideoState)
		assert.Equal(t, "x", state.Url)
		assert.False(t, state.Playing)
		assert.Zero(t, state.CurrentTime)
	}

	state, err := env.service.Play(ctx, &UpdatePlaybackParams{SenderId: "B", RoomId: "r1", CurrentTime: 5})
	require.NoError(t, err)
	assert.True(t, state.Playing)
	assert.Equal(t, []any{PlaybackPayload{CurrentTime: 5}}, env.sender.received("A", EventVideoPlay))
	assert.Empty(t, env.sender.received("B", EventVideoPlay), "sender is excluded")

	_, err = env.service.DisconnectMember(ctx, &DisconnectMemberParams{ConnId: "A"})
	require.NoError(t, err)
	left := env.sender.received("B", EventUserLeft)
	require.Len(t, left, 1)
	payload := left[0].(UserLeftPayload)
	assert.Equal(t, "A", payload.UserId)
	require.NotNil(t, payload.NewHost)
	assert.Equal(t, "B", *payload.NewHost)

	summary, err := env.service.GetRoomSummary(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "B", summary.HostId)

	resp, err := env.service.DisconnectMember(ctx, &DisconnectMemberParams{ConnId: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, resp.DeletedRoomIds)

	_, err = env.service.GetRoomSummary(ctx, "r1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, env.service.GetRoomIds(ctx))
}
