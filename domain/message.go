// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once created by the router.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message.
// Recipient is informative only: every message is delivered to everyone.
type Message struct {
	ID        uuid.UUID // unique identifier
	Sender    Identity
	Recipient string
	Body      string
	CreatedAt time.Time
}

// DisplayTimeLayout renders hour:minute with AM/PM, e.g. "9:05 PM".
const DisplayTimeLayout = "3:04 PM"

// DisplayTime formats the creation time in the given location.
func (m Message) DisplayTime(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return m.CreatedAt.In(loc).Format(DisplayTimeLayout)
}
