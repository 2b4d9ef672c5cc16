package runtime

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"log/slog"
)

// PresenceBroadcaster announces joins and leaves with the live online count.
type PresenceBroadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewPresenceBroadcaster(log *slog.Logger, registry contract.IRegistry) PresenceBroadcaster {
	return PresenceBroadcaster{log: log, registry: registry}
}

// Joined is sent to every connection, the joiner included.
func (p PresenceBroadcaster) Joined(ctx context.Context, identity domain.Identity, onlineCount int) {
	p.log.Info("User joined", "identity", identity, "online_count", onlineCount)
	toAll(ctx, p.log, p.registry, event.UserJoined{Identity: identity, OnlineCount: onlineCount})
}

// Left is sent to the remaining connections, the leaver being already gone from the registry.
func (p PresenceBroadcaster) Left(ctx context.Context, identity domain.Identity, onlineCount int) {
	p.log.Info("User left", "identity", identity, "online_count", onlineCount)
	toAll(ctx, p.log, p.registry, event.UserLeft{Identity: identity, OnlineCount: onlineCount})
}
