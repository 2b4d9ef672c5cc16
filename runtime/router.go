package runtime

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MessageRouter stamps incoming messages, hands them to persistence and
// broadcasts them to every connection, the sender included.
type MessageRouter struct {
	log      *slog.Logger
	registry contract.IRegistry
	persist  func(ctx context.Context, e event.MessageReceived)
	location *time.Location
	now      func() time.Time
}

func NewMessageRouter(log *slog.Logger, registry contract.IRegistry,
	persist func(ctx context.Context, e event.MessageReceived),
	location *time.Location, now func() time.Time) MessageRouter {
	if now == nil {
		now = time.Now
	}
	return MessageRouter{log: log, registry: registry, persist: persist, location: location, now: now}
}

// Route never waits for the durable write: persist is expected to return immediately.
func (r MessageRouter) Route(ctx context.Context, cmd domain.SendMessageCommand) {
	// An unidentified sender is accepted with an empty identity
	from, _ := r.registry.Lookup(cmd.ConnectionID)

	message := domain.Message{
		ID:        uuid.New(),
		Sender:    from,
		Recipient: cmd.To,
		Body:      cmd.Body,
		CreatedAt: r.now().UTC(),
	}
	evt := event.MessageReceived{
		Message: message,
		Time:    message.DisplayTime(r.location),
	}

	r.persist(ctx, evt)
	toAll(ctx, r.log, r.registry, evt)
}
