package websocket

import (
	"livechat/domain"
	"livechat/domain/event"
	"livechat/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	req := require.New(t)

	t.Run("Join", func(t *testing.T) {
		frame, err := DecodeFrame([]byte(`{"event":"join","data":"Alice"}`))
		req.NoError(err)
		req.Equal(event.JoinName, frame.Event)
		identity, err := DecodeIdentity(frame.Data)
		req.NoError(err)
		req.Equal("Alice", identity)
	})

	t.Run("Send message", func(t *testing.T) {
		frame, err := DecodeFrame([]byte(`{"event":"send-message","data":{"to":"Bob","msg":"hi"}}`))
		req.NoError(err)
		payload, err := DecodeSendMessage(frame.Data)
		req.NoError(err)
		req.Equal(SendMessagePayload{To: "Bob", Msg: "hi"}, payload)
	})

	t.Run("Typing without payload", func(t *testing.T) {
		frame, err := DecodeFrame([]byte(`{"event":"typing"}`))
		req.NoError(err)
		req.Equal(event.TypingName, frame.Event)
		req.Empty(frame.Data)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeFrame([]byte(`not json`))
		req.ErrorIs(err, errors.ErrInvalidFrame)

		_, err = DecodeFrame([]byte(`{"data":"Alice"}`))
		req.ErrorIs(err, errors.ErrInvalidFrame)
	})

	t.Run("Join with a non string identity", func(t *testing.T) {
		_, err := DecodeIdentity([]byte(`{"name":"Alice"}`))
		req.ErrorIs(err, errors.ErrInvalidFrame)
	})

	t.Run("Join with an empty identity is refused", func(t *testing.T) {
		_, err := DecodeIdentity([]byte(`""`))
		req.ErrorIs(err, errors.ErrInvalidFrame)
	})

	t.Run("Join keeps any other identity untouched", func(t *testing.T) {
		identity, err := DecodeIdentity([]byte(`"  ünïcode 42 "`))
		req.NoError(err)
		req.Equal("  ünïcode 42 ", identity)
	})
}

func TestEncodeEvent(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:        uuid.New(),
		Sender:    "Alice",
		Recipient: "Bob",
		Body:      "<b>hi</b> & bye",
		CreatedAt: time.Date(2024, 5, 1, 19, 5, 0, 0, time.UTC),
	}

	cases := []struct {
		name     string
		event    event.DomainEvent
		expected string
	}{
		{"user joined", event.UserJoined{Identity: "Alice", OnlineCount: 2},
			`{"event":"user-joined","data":{"identity":"Alice","onlineCount":2}}`},
		{"user left", event.UserLeft{Identity: "Bob", OnlineCount: 1},
			`{"event":"user-left","data":{"identity":"Bob","onlineCount":1}}`},
		{"receive message", event.MessageReceived{Message: message, Time: "7:05 PM"},
			`{"event":"receive-message","data":{"from":"Alice","to":"Bob","msg":"<b>hi</b> & bye","time":"7:05 PM"}}`},
		{"receive message without sender", event.MessageReceived{Message: domain.Message{Recipient: "Bob", Body: "hi"}, Time: "7:05 PM"},
			`{"event":"receive-message","data":{"to":"Bob","msg":"hi","time":"7:05 PM"}}`},
		{"user typing", event.UserTyping{Identity: "Alice"},
			`{"event":"user-typing","data":"Alice"}`},
		{"anonymous typing", event.UserTyping{},
			`{"event":"user-typing"}`},
		{"user stop typing", event.UserStopTyping{},
			`{"event":"user-stop-typing"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw, err := EncodeEvent(c.event)
			req.NoError(err)
			req.JSONEq(c.expected, string(raw))
			req.Contains(string(raw), `"event":"`+c.event.Name()+`"`)
		})
	}
}
