package runtime

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"log/slog"
)

// toAll delivers the event to every open connection.
func toAll(ctx context.Context, log *slog.Logger, registry contract.IRegistry, e event.DomainEvent) {
	deliver(ctx, log, registry.Recipients(), e, "")
}

// toAllExcept delivers the event to every open connection but the sender.
func toAllExcept(ctx context.Context, log *slog.Logger, registry contract.IRegistry,
	e event.DomainEvent, sender domain.ConnectionID) {
	deliver(ctx, log, registry.Recipients(), e, sender)
}

// deliver never stops on a failing sink: one dead client must not starve the others.
func deliver(ctx context.Context, log *slog.Logger, recipients []contract.Recipient,
	e event.DomainEvent, skip domain.ConnectionID) {
	for _, recipient := range recipients {
		if skip != "" && recipient.ConnectionID == skip {
			continue
		}
		if err := recipient.Sink.Consume(ctx, e); err != nil {
			log.Debug("Delivery failed",
				"connection_id", recipient.ConnectionID,
				"event", e.Name(),
				"error", err)
		}
	}
}
