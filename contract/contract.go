//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

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

// Outbound is the sending half of a live connection.
// Implementations must accept concurrent Send calls.
type Outbound interface {
	Send(ctx context.Context, payload any) error
	Close() error
}

// Connection is a live socket: the dispatcher reads frames from it
// and registers its outbound half for deliveries.
type Connection interface {
	Outbound
	Receive(ctx context.Context) ([]byte, error)
}

type IRegistry interface {
	Register(username string, outbound Outbound)
	Unregister(username string)
	Release(username string, outbound Outbound) bool
	Lookup(username string) (Outbound, bool)
	Count() int
	Close()
}
