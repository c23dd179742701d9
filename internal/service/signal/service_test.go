package signal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	To      string
	Except  string
	RoomId  string
	Type    string
	Payload any
}

type fakeSender struct {
	sent []sent
}

func (f *fakeSender) SendToConn(connId, eventType string, payload any) {
	f.sent = append(f.sent, sent{To: connId, Type: eventType, Payload: payload})
}

func (f *fakeSender) SendToGroupExcept(roomId, exceptConnId, eventType string, payload any) {
	f.sent = append(f.sent, sent{RoomId: roomId, Except: exceptConnId, Type: eventType, Payload: payload})
}

func newTestService() (*service, *fakeSender) {
	sender := &fakeSender{}
	return NewService(sender, slog.New(slog.NewTextHandler(io.Discard, nil))), sender
}

func TestRelay(t *testing.T) {
	s, sender := newTestService()

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	err := s.Relay(context.Background(), &RelayParams{
		EventType: EventWebrtcOffer,
		SenderId:  "A",
		To:        "B",
		Field:     "offer",
		Data:      offer,
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "B", sender.sent[0].To)
	assert.Equal(t, EventWebrtcOffer, sender.sent[0].Type)

	encoded, err := json.Marshal(sender.sent[0].Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"A","offer":{"type":"offer","sdp":"v=0"}}`, string(encoded))
}

func TestRelayToSelf(t *testing.T) {
	s, sender := newTestService()

	err := s.Relay(context.Background(), &RelayParams{
		EventType: EventScreenShareIceCandidate,
		SenderId:  "A",
		To:        "A",
		Field:     "candidate",
		Data:      json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, ErrSelfTarget)
	assert.Empty(t, sender.sent)
}

func TestStopScreenShare(t *testing.T) {
	s, sender := newTestService()

	err := s.StopScreenShare(context.Background(), &StopScreenShareParams{SenderId: "A", RoomId: "r1"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, sent{
		RoomId:  "r1",
		Except:  "A",
		Type:    EventScreenShareStopped,
		Payload: ScreenShareStoppedPayload{From: "A"},
	}, sender.sent[0])
}
