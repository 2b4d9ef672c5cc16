// Package runtime owns the connection registry and the single event loop
// applying connection commands to completion, one after the other.
package runtime

import (
	"context"
	"fmt"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"livechat/errors"
	"livechat/repositories"
	"livechat/runtime/workers"
	"livechat/sink"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.CommandHandler = (*Orchestrator)(nil)

type Options struct {
	BufferSize           int
	MetricInterval       time.Duration
	LowCapacityThreshold int
	Location             *time.Location
	// Clock defaults to time.Now
	Clock func() time.Time
}

// connectCommand registers a freshly opened connection with its delivery sink.
// It only exists on the event loop side: the transport calls Orchestrator.Connect.
type connectCommand struct {
	connectionID domain.ConnectionID
	sink         contract.EventSink
}

func (c connectCommand) Connection() domain.ConnectionID { return c.connectionID }

type Orchestrator struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	registry          contract.IRegistry
	messageRepository repositories.IMessageRepository
	diskSink          contract.EventSink
	presence          PresenceBroadcaster
	router            MessageRouter
	typing            TypingRelay
	commands          chan domain.Command
	opts              Options
	persisting        sync.WaitGroup
	// gate guards closed and started. enqueuing counts senders that passed it.
	gate      sync.RWMutex
	closed    bool
	started   bool
	enqueuing sync.WaitGroup
	stopped   chan struct{}
	loopDone  chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	messageRepository repositories.IMessageRepository, opts Options) *Orchestrator {
	o := &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		registry:          registry,
		messageRepository: messageRepository,
		diskSink:          sink.NewDiskSink(messageRepository, log),
		presence:          NewPresenceBroadcaster(log, registry),
		typing:            NewTypingRelay(log, registry),
		commands:          make(chan domain.Command, opts.BufferSize),
		opts:              opts,
		stopped:           make(chan struct{}),
		loopDone:          make(chan struct{}),
	}
	o.router = NewMessageRouter(log, registry, o.persist, opts.Location, opts.Clock)
	return o
}

// Start registers the supervised workers, then blocks until the supervisor returns.
// Once the loop is gone, new commands are refused and the ones already accepted
// are applied before Start returns.
func (o *Orchestrator) Start(ctx context.Context) {
	o.gate.Lock()
	if o.closed {
		o.gate.Unlock()
		return
	}
	o.started = true
	o.gate.Unlock()
	defer close(o.loopDone)

	o.supervisor.Add(workers.NewEventLoopWorker(o, o.commands, o.log))
	if o.opts.MetricInterval > 0 {
		o.supervisor.Add(workers.NewChannelCapacityWorker(o.log,
			[]workers.NamedChannel{{Name: "commands", Channel: o.commands}},
			o.opts.MetricInterval, o.opts.LowCapacityThreshold))
		o.supervisor.Add(workers.NewHeartbeatWorker(o.log, o.opts.MetricInterval, o.presenceStats))
	}
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)

	o.closeGate()
	o.drain(context.WithoutCancel(ctx))
}

// closeGate refuses every later enqueue. Safe to call many times.
func (o *Orchestrator) closeGate() {
	o.gate.Lock()
	defer o.gate.Unlock()
	if !o.closed {
		o.closed = true
		close(o.stopped)
	}
}

// drain applies the commands accepted before the gate closed.
// Senders still blocked on a full channel either land here or see stopped.
func (o *Orchestrator) drain(ctx context.Context) {
	settled := make(chan struct{})
	go func() {
		o.enqueuing.Wait()
		close(settled)
	}()

	drained := 0
	apply := func(cmd domain.Command) {
		o.Handle(ctx, cmd)
		drained++
	}
	for waiting := true; waiting; {
		select {
		case cmd := <-o.commands:
			apply(cmd)
		case <-settled:
			waiting = false
		}
	}
	for {
		select {
		case cmd := <-o.commands:
			apply(cmd)
		default:
			if drained > 0 {
				o.log.Info("Applied pending commands after the event loop stopped", "count", drained)
			}
			return
		}
	}
}

func (o *Orchestrator) presenceStats() (int, int) {
	return o.registry.Size(), o.registry.OnlineCount()
}

// Connect registers a new connection and returns its id.
// The sink receives every notification addressed to this connection.
func (o *Orchestrator) Connect(ctx context.Context, eventSink contract.EventSink) (domain.ConnectionID, error) {
	connectionID := domain.ConnectionID(uuid.NewString())
	if err := o.enqueue(ctx, connectCommand{connectionID: connectionID, sink: eventSink}); err != nil {
		return "", err
	}
	return connectionID, nil
}

func (o *Orchestrator) Join(ctx context.Context, connectionID domain.ConnectionID, identity domain.Identity) error {
	return o.enqueue(ctx, domain.JoinCommand{ConnectionID: connectionID, Identity: identity})
}

func (o *Orchestrator) SendMessage(ctx context.Context, connectionID domain.ConnectionID, to, body string) error {
	return o.enqueue(ctx, domain.SendMessageCommand{ConnectionID: connectionID, To: to, Body: body})
}

func (o *Orchestrator) Typing(ctx context.Context, connectionID domain.ConnectionID) error {
	return o.enqueue(ctx, domain.TypingCommand{ConnectionID: connectionID})
}

func (o *Orchestrator) StopTyping(ctx context.Context, connectionID domain.ConnectionID) error {
	return o.enqueue(ctx, domain.StopTypingCommand{ConnectionID: connectionID})
}

func (o *Orchestrator) Disconnect(ctx context.Context, connectionID domain.ConnectionID) error {
	return o.enqueue(ctx, domain.DisconnectCommand{ConnectionID: connectionID})
}

// enqueue blocks until the command is accepted. Commands are never dropped:
// an accepted command is applied even if the loop stops right after.
func (o *Orchestrator) enqueue(ctx context.Context, cmd domain.Command) error {
	o.gate.RLock()
	if o.closed {
		o.gate.RUnlock()
		return errors.ErrOrchestratorStopped
	}
	o.enqueuing.Add(1)
	o.gate.RUnlock()
	defer o.enqueuing.Done()

	select {
	case o.commands <- cmd:
		return nil
	case <-o.stopped:
		return errors.ErrOrchestratorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle applies one command to completion. It is called by the event loop only.
func (o *Orchestrator) Handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case connectCommand:
		o.registry.Connect(c.connectionID, c.sink)
		o.log.Debug("Connection opened", "connection_id", c.connectionID)
	case domain.JoinCommand:
		onlineCount, ok := o.registry.Join(c.ConnectionID, c.Identity)
		if !ok {
			o.log.Debug("Join from unknown connection", "connection_id", c.ConnectionID)
			return
		}
		o.presence.Joined(ctx, c.Identity, onlineCount)
	case domain.SendMessageCommand:
		o.router.Route(ctx, c)
	case domain.TypingCommand:
		o.typing.Typing(ctx, c.ConnectionID)
	case domain.StopTypingCommand:
		o.typing.StopTyping(ctx, c.ConnectionID)
	case domain.DisconnectCommand:
		identity, attached, onlineCount := o.registry.Leave(c.ConnectionID)
		o.log.Debug("Connection closed", "connection_id", c.ConnectionID)
		if attached {
			o.presence.Left(ctx, identity, onlineCount)
		}
	default:
		o.log.Warn(fmt.Sprintf("Unsupported command %T", cmd), "connection_id", cmd.Connection())
	}
}

// persist writes the message in its own goroutine and returns at once.
// Failures are logged, never retried and never reported to the sender.
func (o *Orchestrator) persist(ctx context.Context, e event.MessageReceived) {
	o.persisting.Add(1)
	go func() {
		defer o.persisting.Done()
		if err := o.diskSink.Consume(context.WithoutCancel(ctx), e); err != nil {
			o.log.Error("Message persistence failed",
				"message_id", e.Message.ID,
				"identity", e.Message.Sender,
				"error", err)
		}
	}()
}

// GetMessages reads the stored history, newest first.
func (o *Orchestrator) GetMessages(query domain.HistoryQuery) ([]domain.Message, *string, error) {
	messages, cursor, err := o.messageRepository.GetMessages(repositories.NewMessageQuery(query))
	if err != nil {
		return nil, nil, err
	}
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return item.ToMessage()
	}), cursor, nil
}

func (o *Orchestrator) OnlineCount() int {
	return o.registry.OnlineCount()
}

// Stop refuses new commands, cancels the workers, waits for the loop to apply
// what was already accepted, then waits for in-flight writes.
func (o *Orchestrator) Stop() {
	o.closeGate()
	o.supervisor.Stop()

	o.gate.RLock()
	started := o.started
	o.gate.RUnlock()
	if started {
		<-o.loopDone
	}
	o.persisting.Wait()
}
