package domain

const DefaultHistoryLimit = 100

type ChatMessage struct {
	Id        int64  `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

// History is a chat log bounded to the most recent limit messages.
type History struct {
	list  []ChatMessage
	limit int
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	return &History{
		list:  make([]ChatMessage, 0),
		limit: limit,
	}
}

func (h History) Length() int {
	return len(h.list)
}

func (h History) Limit() int {
	return h.limit
}

func (h History) AsList() []ChatMessage {
	list := make([]ChatMessage, len(h.list))
	copy(list, h.list)
	return list
}

func (h *History) Append(msg ChatMessage) {
	h.list = append(h.list, msg)
	if over := len(h.list) - h.limit; over > 0 {
		// shift in place, capacity stays at limit+1
		n := copy(h.list, h.list[over:])
		clear(h.list[n:])
		h.list = h.list[:n]
	}
}
