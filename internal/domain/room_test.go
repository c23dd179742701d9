package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	return int(f) % n
}

var testNow = time.Date(2024, 5, 17, 21, 4, 5, 0, time.UTC)

func newTestRoom(opts ...Option) *Room {
	opts = append([]Option{WithRandom(fixedRandom(0)), WithClock(func() time.Time { return testNow })}, opts...)
	return NewRoom("r1", opts...)
}

func assertSingleHost(t *testing.T, room *Room) {
	t.Helper()
	if room.IsEmpty() {
		assert.Empty(t, room.HostId(), "empty room must have no host")
		return
	}

	hosts := 0
	for _, m := range room.Members() {
		if m.IsHost {
			hosts++
			assert.Equal(t, room.HostId(), m.Id, "isHost must match hostId")
		}
	}
	assert.Equal(t, 1, hosts, "exactly one host expected")
	assert.True(t, room.HasMember(room.HostId()), "host must be a member")
}

func TestNewRoom(t *testing.T) {
	room := newTestRoom()

	assert.Equal(t, "r1", room.Id())
	assert.True(t, room.IsEmpty())
	assert.Empty(t, room.HostId())
	assert.Empty(t, room.Messages())
	assert.Equal(t, VideoState{LastUpdate: testNow.UnixMilli()}, room.VideoState())
}

func TestAddMember(t *testing.T) {
	room := newTestRoom(WithRandom(fixedRandom(3)))

	a := room.AddMember("a", "alice")
	assert.True(t, a.IsHost, "first member must be host")
	assert.False(t, a.MicMuted)
	assert.Equal(t, AvatarColors[3], a.Avatar)
	assert.Equal(t, "a", room.HostId())

	b := room.AddMember("b", "bob")
	assert.False(t, b.IsHost)
	assert.Equal(t, "a", room.HostId())
	assertSingleHost(t, room)
	assert.Equal(t, []string{"a", "b"}, memberIds(room))
}

func TestAddMemberTwiceKeepsPositionAndHost(t *testing.T) {
	room := newTestRoom()
	room.AddMember("a", "alice")
	room.AddMember("b", "bob")

	again := room.AddMember("a", "alice2")
	assert.True(t, again.IsHost)
	assert.Equal(t, []string{"a", "b"}, memberIds(room))

	member, err := room.GetMember("a")
	require.NoError(t, err)
	assert.Equal(t, "alice2", member.Username)
	assertSingleHost(t, room)
}

func TestRemoveMemberElectsLongestTenured(t *testing.T) {
	room := newTestRoom()
	room.AddMember("a", "alice")
	room.AddMember("b", "bob")
	room.AddMember("c", "carol")

	removed, err := room.RemoveMember("a")
	require.NoError(t, err)
	assert.Equal(t, "alice", removed.Username)
	assert.Equal(t, "b", room.HostId())
	assertSingleHost(t, room)

	_, err = room.RemoveMember("c")
	require.NoError(t, err)
	assert.Equal(t, "b", room.HostId(), "removing a non-host keeps the host")
	assertSingleHost(t, room)

	_, err = room.RemoveMember("b")
	require.NoError(t, err)
	assert.True(t, room.IsEmpty())
	assert.Empty(t, room.HostId())
}

func TestRemoveMemberNotFound(t *testing.T) {
	room := newTestRoom()
	room.AddMember("a", "alice")

	_, err := room.RemoveMember("x")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.Equal(t, "a", room.HostId())
}

func TestChurnKeepsSingleHost(t *testing.T) {
	room := newTestRoom()
	for i := 0; i < 20; i++ {
		room.AddMember(fmt.Sprintf("m%d", i), "user")
		assertSingleHost(t, room)
		if i%3 == 2 {
			_, err := room.RemoveMember(room.HostId())
			require.NoError(t, err)
			assertSingleHost(t, room)
		}
	}
}

func TestSetVideoUrl(t *testing.T) {
	room := newTestRoom()
	room.ApplyPlay(42)

	state := room.SetVideoUrl("https://youtu.be/x")
	assert.Equal(t, VideoState{
		Url:         "https://youtu.be/x",
		Playing:     false,
		CurrentTime: 0,
		LastUpdate:  testNow.UnixMilli(),
	}, state)
	assert.Equal(t, state, room.VideoState())
}

func TestPlayback(t *testing.T) {
	now := testNow
	room := newTestRoom(WithClock(func() time.Time { return now }))

	now = now.Add(time.Second)
	state := room.ApplyPlay(5)
	assert.True(t, state.Playing)
	assert.Equal(t, 5.0, state.CurrentTime)
	assert.Equal(t, now.UnixMilli(), state.LastUpdate)

	state = room.ApplySeek(30)
	assert.True(t, state.Playing, "seek keeps playing flag")
	assert.Equal(t, 30.0, state.CurrentTime)

	state = room.ApplyPause(31.5)
	assert.False(t, state.Playing)
	assert.Equal(t, 31.5, state.CurrentTime)

	state = room.ApplySeek(10)
	assert.False(t, state.Playing, "seek keeps paused flag")
}

func TestPostMessage(t *testing.T) {
	room := newTestRoom(WithRandom(fixedRandom(1)))
	room.AddMember("a", "alice")

	msg, err := room.PostMessage("a", "hello")
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{
		Id:        testNow.UnixMilli(),
		Username:  "alice",
		Text:      "hello",
		Timestamp: "21:04",
		Avatar:    AvatarColors[1],
	}, msg)
	assert.Equal(t, []ChatMessage{msg}, room.Messages())

	_, err = room.PostMessage("x", "hello")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.Len(t, room.Messages(), 1)
}

func TestHistoryBound(t *testing.T) {
	room := newTestRoom()
	for i := 0; i < 250; i++ {
		room.AppendMessage(ChatMessage{Id: int64(i)})
	}

	messages := room.Messages()
	require.Len(t, messages, DefaultHistoryLimit)
	for i, msg := range messages {
		assert.Equal(t, int64(150+i), msg.Id)
	}
}

func TestHistoryCustomLimit(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Append(ChatMessage{Id: int64(i)})
		assert.LessOrEqual(t, h.Length(), 3)
	}
	assert.Equal(t, []ChatMessage{{Id: 3}, {Id: 4}, {Id: 5}}, h.AsList())

	assert.Equal(t, DefaultHistoryLimit, NewHistory(0).Limit())
}

func TestSetMicMuted(t *testing.T) {
	room := newTestRoom()
	room.AddMember("a", "alice")

	require.NoError(t, room.SetMicMuted("a", true))
	member, err := room.GetMember("a")
	require.NoError(t, err)
	assert.True(t, member.MicMuted)

	assert.ErrorIs(t, room.SetMicMuted("x", true), ErrMemberNotFound)
}

func memberIds(room *Room) []string {
	ids := make([]string, 0, room.MembersCount())
	for _, m := range room.Members() {
		ids = append(ids, m.Id)
	}
	return ids
}
