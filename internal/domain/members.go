package domain

import (
	"errors"
)

var ErrMemberNotFound = errors.New("member not found")

// AvatarColors is the palette a member's avatar colour is picked from on join.
var AvatarColors = []string{"#7289da", "#43b581", "#faa61a", "#f04747", "#9b59b6"}

type Member struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
	MicMuted bool   `json:"micMuted"`
	Avatar   string `json:"avatar"`
}

// Members keeps members in insertion order. Re-adding an existing id replaces
// the record without moving it.
type Members struct {
	order []string
	byId  map[string]*Member
}

func NewMembers() *Members {
	return &Members{
		order: make([]string, 0),
		byId:  make(map[string]*Member),
	}
}

func (m Members) Length() int {
	return len(m.order)
}

func (m Members) Has(id string) bool {
	_, ok := m.byId[id]
	return ok
}

func (m Members) GetById(id string) (Member, error) {
	member, ok := m.byId[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}

	return *member, nil
}

func (m Members) AsList() []Member {
	list := make([]Member, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, *m.byId[id])
	}

	return list
}

// First returns the longest-tenured member.
func (m Members) First() (Member, bool) {
	if len(m.order) == 0 {
		return Member{}, false
	}

	return *m.byId[m.order[0]], true
}

func (m *Members) Set(member Member) {
	if _, ok := m.byId[member.Id]; !ok {
		m.order = append(m.order, member.Id)
	}

	m.byId[member.Id] = &member
}

func (m *Members) RemoveById(id string) (Member, error) {
	member, ok := m.byId[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}

	delete(m.byId, id)
	for i, memberId := range m.order {
		if memberId == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return *member, nil
}

func (m *Members) update(id string, fn func(*Member)) error {
	member, ok := m.byId[id]
	if !ok {
		return ErrMemberNotFound
	}

	fn(member)
	return nil
}
