package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"moneypaz/internal/amqp"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
	"moneypaz/internal/storage"
	"moneypaz/internal/storage/memory"
)

// SeedFileName is the snapshot the memory backend loads from its data directory.
const SeedFileName = "state.json"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachNotifier(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, storage.WithLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Persister: sqliteRepo,
		Admin:     sqliteRepo,
		Cleanup:   sqliteRepo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}
	key := config.StateKey
	if key == "" {
		key = services.DefaultStateKey
	}

	seed := filepath.Join(dataDir, SeedFileName)
	store, err := memory.NewFromFile(key, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", seed)

	return &BackendResult{Persister: store}, nil
}

// attachNotifier connects the AMQP publisher when configured. A broker that
// cannot be reached leaves the backend without notifications.
func (f *DefaultFactory) attachNotifier(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue,
		amqp.WithUserID(config.UserID),
		amqp.WithLogger(f.logger))
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Notifier = client
	prev := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AMQP client: %w", err))
		}
		if prev != nil {
			errs = append(errs, prev())
		}
		return errors.Join(errs...)
	}
}

// OpenStore builds the FinanceStore for a backend. The notifier is attached
// only when the backend has one.
func (r *BackendResult) OpenStore(ctx context.Context, config Config, opts ...services.Option) *services.FinanceStore {
	base := []services.Option{services.WithStateKey(config.StateKey), services.WithIOTimeout(5 * time.Second)}
	if r.Notifier != nil {
		base = append(base, services.WithNotifier(r.Notifier))
	}
	return services.NewFinanceStore(ctx, r.Persister, append(base, opts...)...)
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
