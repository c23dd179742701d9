package domain

import (
	"math/rand/v2"
	"time"
)

const chatTimeLayout = "15:04"

// Random picks avatar colours. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

type Option func(*Room)

func WithRandom(r Random) Option {
	return func(room *Room) {
		room.random = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(room *Room) {
		room.now = now
	}
}

func WithHistoryLimit(limit int) Option {
	return func(room *Room) {
		room.history = NewHistory(limit)
	}
}

// Room is the authoritative state of one watch session. It is not safe for
// concurrent use; callers serialize access.
type Room struct {
	id      string
	hostId  string
	members *Members
	video   VideoState
	history *History
	random  Random
	now     func() time.Time
}

func NewRoom(id string, opts ...Option) *Room {
	room := &Room{
		id:      id,
		members: NewMembers(),
		history: NewHistory(DefaultHistoryLimit),
		random:  globalRandom{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(room)
	}
	room.video = NewVideoState(room.now())

	return room
}

func (r Room) Id() string {
	return r.id
}

// HostId is empty when the room has no members.
func (r Room) HostId() string {
	return r.hostId
}

func (r Room) IsEmpty() bool {
	return r.members.Length() == 0
}

func (r Room) MembersCount() int {
	return r.members.Length()
}

func (r Room) HasMember(id string) bool {
	return r.members.Has(id)
}

func (r Room) GetMember(id string) (Member, error) {
	return r.members.GetById(id)
}

func (r Room) Members() []Member {
	return r.members.AsList()
}

func (r Room) Messages() []ChatMessage {
	return r.history.AsList()
}

func (r Room) VideoState() VideoState {
	return r.video
}

func (r *Room) AddMember(connId, username string) Member {
	if r.hostId == "" {
		r.hostId = connId
	}

	member := Member{
		Id:       connId,
		Username: username,
		IsHost:   r.hostId == connId,
		MicMuted: false,
		Avatar:   r.pickAvatar(),
	}
	r.members.Set(member)

	return member
}

// RemoveMember deletes the member and, if it was the host, promotes the
// longest-tenured survivor in the same step.
func (r *Room) RemoveMember(connId string) (Member, error) {
	removed, err := r.members.RemoveById(connId)
	if err != nil {
		return Member{}, err
	}

	if r.hostId != connId {
		return removed, nil
	}

	next, ok := r.members.First()
	if !ok {
		r.hostId = ""
		return removed, nil
	}

	r.hostId = next.Id
	_ = r.members.update(next.Id, func(m *Member) {
		m.IsHost = true
	})

	return removed, nil
}

func (r *Room) SetVideoUrl(url string) VideoState {
	r.video.Url = url
	r.video.CurrentTime = 0
	r.video.Playing = false
	r.video.LastUpdate = r.now().UnixMilli()

	return r.video
}

func (r *Room) ApplyPlay(currentTime float64) VideoState {
	r.video.Playing = true
	return r.applyTime(currentTime)
}

func (r *Room) ApplyPause(currentTime float64) VideoState {
	r.video.Playing = false
	return r.applyTime(currentTime)
}

func (r *Room) ApplySeek(currentTime float64) VideoState {
	return r.applyTime(currentTime)
}

func (r *Room) applyTime(currentTime float64) VideoState {
	r.video.CurrentTime = currentTime
	r.video.LastUpdate = r.now().UnixMilli()

	return r.video
}

func (r *Room) AppendMessage(msg ChatMessage) {
	r.history.Append(msg)
}

// PostMessage builds a chat message from the sender's current profile and
// appends it to the history.
func (r *Room) PostMessage(senderId, text string) (ChatMessage, error) {
	sender, err := r.members.GetById(senderId)
	if err != nil {
		return ChatMessage{}, err
	}

	now := r.now()
	msg := ChatMessage{
		Id:        now.UnixMilli(),
		Username:  sender.Username,
		Text:      text,
		Timestamp: now.Format(chatTimeLayout),
		Avatar:    sender.Avatar,
	}
	r.AppendMessage(msg)

	return msg, nil
}

func (r *Room) SetMicMuted(connId string, muted bool) error {
	return r.members.update(connId, func(m *Member) {
		m.MicMuted = muted
	})
}

func (r Room) pickAvatar() string {
	return AvatarColors[r.random.IntN(len(AvatarColors))]
}
