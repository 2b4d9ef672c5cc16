package runtime

import (
	"context"
	"livechat/domain"
	"livechat/domain/event"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(_ context.Context, _ event.DomainEvent) error {
	return nil
}

func newConnectionID() domain.ConnectionID {
	return domain.ConnectionID(uuid.NewString())
}

func TestRegistry_Connect_Does_Not_Count_Online(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()

	// When a connection opens without joining
	registry.Connect(connectionID, Sink{})

	// Then it is registered but not online
	req.Equal(1, registry.Size())
	req.Equal(0, registry.OnlineCount())
	_, ok := registry.Lookup(connectionID)
	req.False(ok)
	req.Len(registry.Recipients(), 1)
}

func TestRegistry_Join_Attaches_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := newConnectionID()
	bob := newConnectionID()
	registry.Connect(alice, Sink{name: "alice"})
	registry.Connect(bob, Sink{name: "bob"})

	count, ok := registry.Join(alice, "Alice")
	req.True(ok)
	req.Equal(1, count)

	count, ok = registry.Join(bob, "Bob")
	req.True(ok)
	req.Equal(2, count)

	identity, ok := registry.Lookup(alice)
	req.True(ok)
	req.Equal(domain.Identity("Alice"), identity)
}

func TestRegistry_Join_Twice_Overwrites_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()
	registry.Connect(connectionID, Sink{})

	_, _ = registry.Join(connectionID, "Alice")
	count, ok := registry.Join(connectionID, "Alicia")

	// Then the latest identity wins and the count is unchanged
	req.True(ok)
	req.Equal(1, count)
	identity, _ := registry.Lookup(connectionID)
	req.Equal(domain.Identity("Alicia"), identity)
}

func TestRegistry_Join_Unknown_Connection_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	count, ok := registry.Join(newConnectionID(), "Ghost")

	req.False(ok)
	req.Equal(0, count)
	req.Equal(0, registry.Size())
}

func TestRegistry_Leave_Joined_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := newConnectionID()
	bob := newConnectionID()
	registry.Connect(alice, Sink{})
	registry.Connect(bob, Sink{})
	_, _ = registry.Join(alice, "Alice")
	_, _ = registry.Join(bob, "Bob")

	identity, attached, count := registry.Leave(bob)

	req.True(attached)
	req.Equal(domain.Identity("Bob"), identity)
	req.Equal(1, count)
	req.Equal(1, registry.Size())
}

func TestRegistry_Leave_Unidentified_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()
	registry.Connect(connectionID, Sink{})

	identity, attached, count := registry.Leave(connectionID)

	req.False(attached)
	req.True(identity.IsAbsent())
	req.Equal(0, count)
	req.Equal(0, registry.Size())
}

func TestRegistry_Leave_Unknown_Connection_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := newConnectionID()
	registry.Connect(alice, Sink{})
	_, _ = registry.Join(alice, "Alice")

	_, attached, count := registry.Leave(newConnectionID())

	req.False(attached)
	req.Equal(1, count)
	req.Equal(1, registry.Size())
}

func TestRegistry_OnlineCount_Never_Exceeds_Size(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	ids := make([]domain.ConnectionID, 0, 10)
	for i := 0; i < 10; i++ {
		id := newConnectionID()
		ids = append(ids, id)
		registry.Connect(id, Sink{})
		if i%2 == 0 {
			_, _ = registry.Join(id, domain.Identity(uuid.NewString()))
		}
		req.LessOrEqual(registry.OnlineCount(), registry.Size())
	}
	req.Equal(5, registry.OnlineCount())

	for _, id := range ids {
		registry.Leave(id)
		req.LessOrEqual(registry.OnlineCount(), registry.Size())
	}
	req.Equal(0, registry.Size())
}
