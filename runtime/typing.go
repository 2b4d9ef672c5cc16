package runtime

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"log/slog"
)

// TypingRelay forwards typing signals to everyone but the typist. Nothing is stored.
type TypingRelay struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewTypingRelay(log *slog.Logger, registry contract.IRegistry) TypingRelay {
	return TypingRelay{log: log, registry: registry}
}

func (t TypingRelay) Typing(ctx context.Context, connectionID domain.ConnectionID) {
	identity, _ := t.registry.Lookup(connectionID)
	toAllExcept(ctx, t.log, t.registry, event.UserTyping{Identity: identity}, connectionID)
}

func (t TypingRelay) StopTyping(ctx context.Context, connectionID domain.ConnectionID) {
	toAllExcept(ctx, t.log, t.registry, event.UserStopTyping{}, connectionID)
}
