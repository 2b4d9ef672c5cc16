package event

import (
	"livechat/domain"
)

// Names of the events exchanged with clients.
const (
	JoinName           = "join"
	SendMessageName    = "send-message"
	TypingName         = "typing"
	StopTypingName     = "stop-typing"
	UserJoinedName     = "user-joined"
	UserLeftName       = "user-left"
	ReceiveMessageName = "receive-message"
	UserTypingName     = "user-typing"
	UserStopTypingName = "user-stop-typing"
)

// DomainEvent is a notification pushed to connected clients.
type DomainEvent interface {
	Name() string
}

type UserJoined struct {
	Identity    domain.Identity
	OnlineCount int
}

func (UserJoined) Name() string { return UserJoinedName }

type UserLeft struct {
	Identity    domain.Identity
	OnlineCount int
}

func (UserLeft) Name() string { return UserLeftName }

// MessageReceived carries the full message so sinks can persist it,
// plus the display time computed once by the router.
type MessageReceived struct {
	Message domain.Message
	Time    string
}

func (MessageReceived) Name() string { return ReceiveMessageName }

type UserTyping struct {
	Identity domain.Identity
}

func (UserTyping) Name() string { return UserTypingName }

type UserStopTyping struct{}

func (UserStopTyping) Name() string { return UserStopTypingName }
