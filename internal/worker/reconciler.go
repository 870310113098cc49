package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
)

// ReconcilerConfig holds configuration for the reconciler
type ReconcilerConfig struct {
	// PollInterval is how often the persisted state is re-read (default: 5m)
	PollInterval time.Duration

	// StateKey is the key the finance state is stored under
	StateKey string

	// UserID owns the mirrored movements
	UserID string
}

// DefaultReconcilerConfig returns sensible defaults
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		PollInterval: 5 * time.Minute,
		StateKey:     services.DefaultStateKey,
	}
}

// SnapshotMirror replaces all mirrored movements of a user at once.
type SnapshotMirror interface {
	UpsertProfile(ctx context.Context, p core.Profile) error
	ReplaceUserMovements(ctx context.Context, userID string, movements []core.Movement) error
}

// Reconciler periodically copies the persisted finance state into the admin
// store. It is the backup path for change events lost in transit.
type Reconciler struct {
	source services.StatePersister
	admin  SnapshotMirror
	config ReconcilerConfig
	logger *log.Logger

	// Lifecycle management
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastRev  string
	lastSync time.Time
}

func NewReconciler(source services.StatePersister, admin SnapshotMirror, config ReconcilerConfig, logger *log.Logger) *Reconciler {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultReconcilerConfig().PollInterval
	}
	if config.StateKey == "" {
		config.StateKey = services.DefaultStateKey
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Reconciler{
		source: source,
		admin:  admin,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the reconcile loop. Returns an error if already running.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("reconciler is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.runLoop(ctx)

	r.logger.InfoContext(ctx, "Reconciler started",
		"poll_interval", r.config.PollInterval.String(),
		log.FieldStateKey, r.config.StateKey)
	return nil
}

// Stop gracefully stops the reconciler and waits for the current pass.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		r.logger.InfoContext(ctx, "Reconciler stopped gracefully")
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "Reconciler stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

// IsRunning returns whether the reconciler is currently running
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastSync returns when the admin store was last brought up to date.
func (r *Reconciler) LastSync() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSync
}

func (r *Reconciler) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	if err := r.RunOnce(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Reconcile pass failed",
			log.NewFields().WithOperation(log.OpMirror).WithError(err).ToSlice()...)
	}
}

// RunOnce mirrors the persisted state once. Unchanged documents are skipped.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	if r.config.UserID == "" {
		return ErrNoUser
	}
	data, err := r.source.Get(ctx, r.config.StateKey)
	if errors.Is(err, services.ErrStateNotFound) {
		r.logger.DebugContext(ctx, "No persisted state to reconcile", log.FieldStateKey, r.config.StateKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	digest := string(data)
	r.mu.Lock()
	unchanged := digest == r.lastRev
	r.mu.Unlock()
	if unchanged {
		return nil
	}

	st, err := services.DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if err := r.admin.UpsertProfile(ctx, core.Profile{UserID: r.config.UserID, DisplayName: st.UserName}); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	if err := r.admin.ReplaceUserMovements(ctx, r.config.UserID, st.Movements); err != nil {
		return fmt.Errorf("replace movements: %w", err)
	}

	r.mu.Lock()
	r.lastRev = digest
	r.lastSync = time.Now()
	r.mu.Unlock()
	r.logger.InfoContext(ctx, "Admin store reconciled",
		log.FieldUserID, r.config.UserID, "movements", len(st.Movements))
	return nil
}
