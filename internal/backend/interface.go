package backend

import (
	"context"

	"moneypaz/internal/services"
	"moneypaz/internal/storage"
)

// Persister is a state persister that can report its health.
type Persister interface {
	services.StatePersister
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains everything a FinanceStore needs plus the admin
// store when the backend has one.
type BackendResult struct {
	Persister Persister
	// Notifier is nil when change events are disabled.
	Notifier services.ChangeNotifier
	// Admin is nil for the memory backend.
	Admin   *storage.SQLiteRepository
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	StateKey string
	UserID   string

	// SQLite specific
	SQLiteDBPath string

	// Change events, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory backend specific: a JSON snapshot in this directory seeds the store
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
