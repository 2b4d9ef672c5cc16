//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"livechat/domain"
	"livechat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives notifications addressed to one connection, or to the store.
// Consume must not block the caller for long: it runs on the event loop.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// CommandHandler applies one command to completion.
type CommandHandler interface {
	Handle(ctx context.Context, cmd domain.Command)
}

// Recipient is a registry snapshot entry.
type Recipient struct {
	ConnectionID domain.ConnectionID
	Sink         EventSink
}

type IRegistry interface {
	Connect(connectionID domain.ConnectionID, sink EventSink)
	Join(connectionID domain.ConnectionID, identity domain.Identity) (int, bool)
	Leave(connectionID domain.ConnectionID) (domain.Identity, bool, int)
	Lookup(connectionID domain.ConnectionID) (domain.Identity, bool)
	OnlineCount() int
	Size() int
	Recipients() []Recipient
}
