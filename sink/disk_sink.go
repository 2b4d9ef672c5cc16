package sink

import (
	"context"
	"fmt"
	"livechat/contract"
	"livechat/domain/event"
	"livechat/repositories"
	"log/slog"
)

var _ contract.EventSink = DiskSink{}

// DiskSink turns message events into durable store records.
// Presence and typing events are not persisted.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		if err := d.repository.StoreMessage(toDiskMessage(evt)); err != nil {
			return fmt.Errorf("unable to store message %s: %w", evt.Message.ID, err)
		}
		return nil
	default:
		d.log.Debug(fmt.Sprintf("Not persisted event : %s", e.Name()))
		return nil
	}
}

func toDiskMessage(evt event.MessageReceived) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:        evt.Message.ID,
		From:      string(evt.Message.Sender),
		To:        evt.Message.Recipient,
		Msg:       evt.Message.Body,
		CreatedAt: evt.Message.CreatedAt.UTC(),
	}
}
