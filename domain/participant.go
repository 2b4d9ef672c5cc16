// Package domain contains core concepts of the chat system.
// This file defines connections and the identities attached to them.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID is the opaque identifier of one live transport session.
type ConnectionID string

// Identity is the display name a connection claims when joining.
// The empty Identity means the connection never joined.
type Identity string

func (i Identity) IsAbsent() bool {
	return i == ""
}
