package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"livechat/domain/event"
	"livechat/errors"
)

// Frame is the JSON envelope of every websocket text message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	To  string `json:"to"`
	Msg string `json:"msg"`
}

type PresencePayload struct {
	Identity    string `json:"identity"`
	OnlineCount int    `json:"onlineCount"`
}

type ReceiveMessagePayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Msg  string `json:"msg"`
	Time string `json:"time"`
}

// DecodeFrame parses an inbound text message. The payload is decoded later, per event.
func DecodeFrame(raw []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", errors.ErrInvalidFrame, err)
	}
	if frame.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", errors.ErrInvalidFrame)
	}
	return frame, nil
}

// DecodeIdentity reads the join payload, a bare JSON string.
// Any non-empty string is accepted as is. The empty string is refused:
// it is what an unidentified connection carries.
func DecodeIdentity(data json.RawMessage) (string, error) {
	var identity string
	if err := json.Unmarshal(data, &identity); err != nil {
		return "", fmt.Errorf("%w: identity must be a string: %w", errors.ErrInvalidFrame, err)
	}
	if identity == "" {
		return "", fmt.Errorf("%w: empty identity", errors.ErrInvalidFrame)
	}
	return identity, nil
}

func DecodeSendMessage(data json.RawMessage) (SendMessagePayload, error) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return SendMessagePayload{}, fmt.Errorf("%w: %w", errors.ErrInvalidFrame, err)
	}
	return payload, nil
}

// EncodeEvent renders an outbound event as a frame.
// HTML is not escaped so message bodies travel as typed.
func EncodeEvent(e event.DomainEvent) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case event.UserJoined:
		data = PresencePayload{Identity: string(evt.Identity), OnlineCount: evt.OnlineCount}
	case event.UserLeft:
		data = PresencePayload{Identity: string(evt.Identity), OnlineCount: evt.OnlineCount}
	case event.MessageReceived:
		data = ReceiveMessagePayload{
			From: string(evt.Message.Sender),
			To:   evt.Message.Recipient,
			Msg:  evt.Message.Body,
			Time: evt.Time,
		}
	case event.UserTyping:
		if !evt.Identity.IsAbsent() {
			data = string(evt.Identity)
		}
	case event.UserStopTyping:
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, e.Name())
	}

	frame := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: e.Name(), Data: data}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frame); err != nil {
		return nil, err
	}
	// Encode appends a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
