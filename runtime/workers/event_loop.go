package workers

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"log/slog"
)

// Ensure *EventLoopWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*EventLoopWorker)(nil)

// EventLoopWorker applies commands one at a time, each to completion,
// in the order they were enqueued. Only one instance must run per command channel.
type EventLoopWorker struct {
	handler  contract.CommandHandler
	commands chan domain.Command
	log      *slog.Logger
}

func NewEventLoopWorker(handler contract.CommandHandler, commands chan domain.Command, log *slog.Logger) *EventLoopWorker {
	return &EventLoopWorker{handler: handler, commands: commands, log: log}
}

func (w *EventLoopWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping event loop")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.handler.Handle(ctx, cmd)
		}
	}
}
