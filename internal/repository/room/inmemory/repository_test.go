package inmemory

import (
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	r := NewRepo(slog.Default())

	created, isNew := r.GetOrCreate("r1")
	require.NotNil(t, created)
	assert.True(t, isNew)
	assert.Equal(t, "r1", created.Id())
	assert.Empty(t, created.Messages())

	again, isNew := r.GetOrCreate("r1")
	assert.False(t, isNew)
	assert.Same(t, created, again)
}

func TestFind(t *testing.T) {
	r := NewRepo(slog.Default())

	_, err := r.Find("missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	created, _ := r.GetOrCreate("r1")
	found, err := r.Find("r1")
	require.NoError(t, err)
	assert.Same(t, created, found)
}

func TestRemoveIfEmpty(t *testing.T) {
	r := NewRepo(slog.Default())
	created, _ := r.GetOrCreate("r1")
	created.AddMember("a", "alice")

	assert.False(t, r.RemoveIfEmpty("r1"), "nonempty room must stay")
	_, err := r.Find("r1")
	require.NoError(t, err)

	_, err = created.RemoveMember("a")
	require.NoError(t, err)
	assert.True(t, r.RemoveIfEmpty("r1"))
	assert.False(t, r.RemoveIfEmpty("r1"), "second call is a no-op")
	assert.False(t, r.RemoveIfEmpty("never-existed"))

	_, err = r.Find("r1")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
	assert.Empty(t, r.GetAllRoomIds())
}

func TestMemberRoomsIndex(t *testing.T) {
	r := NewRepo(slog.Default())

	assert.Empty(t, r.GetRoomIds("a"))

	r.TrackMember("a", "r2")
	r.TrackMember("a", "r1")
	r.TrackMember("a", "r1")
	r.TrackMember("b", "r1")
	assert.Equal(t, []string{"r1", "r2"}, r.GetRoomIds("a"))
	assert.Equal(t, []string{"r1"}, r.GetRoomIds("b"))

	r.UntrackMember("a", "r1")
	assert.Equal(t, []string{"r2"}, r.GetRoomIds("a"))
	r.UntrackMember("a", "r2")
	r.UntrackMember("a", "r2")
	assert.Empty(t, r.GetRoomIds("a"))
}
