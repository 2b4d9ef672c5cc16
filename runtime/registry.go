package runtime

import (
	"livechat/contract"
	"livechat/domain"
	"sync"

	"github.com/samber/lo"
)

var _ contract.IRegistry = (*Registry)(nil)

type connection struct {
	sink     contract.EventSink
	identity domain.Identity
}

// Registry maps every open connection to its delivery sink and, once joined, its identity.
// It is the only shared mutable state of the engine: mutations come from the event loop,
// reads may come from anywhere.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]*connection
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]*connection),
	}
}

// Connect creates an unidentified entry for a freshly opened connection.
func (r *Registry) Connect(connectionID domain.ConnectionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[connectionID] = &connection{sink: sink}
}

// Join attaches an identity to the connection, overwriting any previous one.
// It returns the online count after the mutation, and false when the connection
// is unknown (already disconnected), in which case nothing changes.
func (r *Registry) Join(connectionID domain.ConnectionID, identity domain.Identity) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[connectionID]
	if !ok {
		return r.onlineCount(), false
	}
	conn.identity = identity
	return r.onlineCount(), true
}

// Leave removes the connection and returns the identity it had joined with.
// attached is false when the connection never joined or is unknown.
func (r *Registry) Leave(connectionID domain.ConnectionID) (identity domain.Identity, attached bool, onlineCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[connectionID]
	if !ok {
		return "", false, r.onlineCount()
	}
	delete(r.connections, connectionID)
	return conn.identity, !conn.identity.IsAbsent(), r.onlineCount()
}

func (r *Registry) Lookup(connectionID domain.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[connectionID]
	if !ok || conn.identity.IsAbsent() {
		return "", false
	}
	return conn.identity, true
}

func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineCount()
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Recipients returns a snapshot of every open connection, identified or not.
func (r *Registry) Recipients() []contract.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.connections, func(id domain.ConnectionID, conn *connection) contract.Recipient {
		return contract.Recipient{ConnectionID: id, Sink: conn.sink}
	})
}

// onlineCount must be called with the lock held.
func (r *Registry) onlineCount() int {
	return lo.CountBy(lo.Values(r.connections), func(conn *connection) bool {
		return !conn.identity.IsAbsent()
	})
}
