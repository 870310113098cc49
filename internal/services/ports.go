package services

import (
	"context"
	"errors"

	"moneypaz/internal/core"
)

// ErrStateNotFound is returned by a StatePersister when nothing is stored
// under the requested key.
var ErrStateNotFound = errors.New("state not found")

// StatePersister stores the serialized finance state under a key.
type StatePersister interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ChangeNotifier publishes state transitions to interested parties.
type ChangeNotifier interface {
	Notify(ctx context.Context, event core.ChangeEvent) error
}

// NotifierFunc adapts a function to ChangeNotifier.
type NotifierFunc func(ctx context.Context, event core.ChangeEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event core.ChangeEvent) error {
	return f(ctx, event)
}
