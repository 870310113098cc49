package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
)

const (
	// DefaultStateKey is the key the finance state is persisted under.
	DefaultStateKey = "moneypaz-finance-store"

	defaultIOTimeout = 5 * time.Second
)

// FinanceStore owns the finance state. Mutations run one at a time and each
// one completes its save and notification attempts before the next starts.
// Reads see a consistent snapshot.
//
// Slices inside the held state are never modified in place: every mutation
// builds new ones, so a snapshot taken under the read lock stays valid.
type FinanceStore struct {
	mu       sync.RWMutex
	state    core.FinanceState
	revision uint64

	persister StatePersister
	notifier  ChangeNotifier
	key       string
	now       func() time.Time
	loc       *time.Location
	newID     func() string
	logger    *log.Logger
	ioTimeout time.Duration
}

// Option configures a FinanceStore.
type Option func(*FinanceStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *FinanceStore) { s.now = now }
}

// WithLocation sets the location that defines local days and months.
func WithLocation(loc *time.Location) Option {
	return func(s *FinanceStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNotifier sets where change events are published.
func WithNotifier(n ChangeNotifier) Option {
	return func(s *FinanceStore) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *FinanceStore) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithStateKey overrides DefaultStateKey.
func WithStateKey(key string) Option {
	return func(s *FinanceStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDGenerator replaces the UUID generator used for movement ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *FinanceStore) { s.newID = gen }
}

// WithIOTimeout bounds every persistence and notification call.
func WithIOTimeout(d time.Duration) Option {
	return func(s *FinanceStore) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}

// NewFinanceStore builds a store and loads the persisted state. Load problems
// never fail construction: the store starts from the zero state instead.
func NewFinanceStore(ctx context.Context, persister StatePersister, opts ...Option) *FinanceStore {
	s := &FinanceStore{
		state:     core.ZeroState(),
		persister: persister,
		key:       DefaultStateKey,
		now:       time.Now,
		loc:       time.Local,
		newID:     uuid.NewString,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentStore),
		ioTimeout: defaultIOTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.load(ctx)
	return s
}

func (s *FinanceStore) load(ctx context.Context) core.FinanceState {
	if s.persister == nil {
		s.logger.WarnContext(ctx, "No persister configured, state will not survive restarts")
		return core.ZeroState()
	}
	ioCtx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	data, err := s.persister.Get(ioCtx, s.key)
	if errors.Is(err, ErrStateNotFound) {
		s.logger.InfoContext(ctx, "No saved state, starting fresh", log.FieldStateKey, s.key)
		return core.ZeroState()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read saved state, starting fresh",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return core.ZeroState()
	}
	st, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Saved state is malformed, starting fresh",
			log.NewFields().WithOperation(log.OpMigrate).WithError(err).ToSlice()...)
		return core.ZeroState()
	}
	s.logger.InfoContext(ctx, "Loaded saved state",
		log.FieldStateKey, s.key,
		"movements", len(st.Movements),
		"custom_categories", len(st.CustomCategories))
	return st
}

// Now returns the store's current time.
func (s *FinanceStore) Now() time.Time {
	return s.now()
}

// Location returns the location that defines local days and months.
func (s *FinanceStore) Location() *time.Location {
	return s.loc
}

// Revision counts completed mutations since the store was built.
func (s *FinanceStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// State returns a deep copy of the current state.
func (s *FinanceStore) State() core.FinanceState {
	st, _ := s.Snapshot()
	return st.Clone()
}

// Snapshot returns the current state together with its revision. The slices
// are shared with the store and must not be modified.
func (s *FinanceStore) Snapshot() (core.FinanceState, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.revision
}

// SetInitialBalance replaces the initial balance.
func (s *FinanceStore) SetInitialBalance(ctx context.Context, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.InitialBalance = amount
	s.commit(ctx, next, core.ChangeEvent{Event: core.EventBalanceSet})
}

// SetUserName replaces the display name verbatim.
func (s *FinanceStore) SetUserName(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.UserName = name
	s.commit(ctx, next, core.ChangeEvent{Event: core.EventUserNameSet, UserName: name})
}

// NewMovement holds the caller supplied fields of a movement.
type NewMovement struct {
	Type        core.MovementType
	Amount      decimal.Decimal
	Category    string
	Description string
	Concept     string
	IsRecurring bool
}

// AddMovement records a movement at the head of the list and returns it.
// Arguments are stored as given; validation belongs to the caller.
func (s *FinanceStore) AddMovement(ctx context.Context, in NewMovement) core.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	m := core.Movement{
		ID:          s.newID(),
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    core.ResolveCategory(in.Category),
		Description: in.Description,
		Concept:     strings.TrimSpace(in.Concept),
		IsRecurring: in.IsRecurring,
		Date:        core.FormatMovementDate(now),
		Timestamp:   now.UnixMilli(),
	}

	next := s.state
	next.Movements = make([]core.Movement, 0, len(s.state.Movements)+1)
	next.Movements = append(next.Movements, m)
	next.Movements = append(next.Movements, s.state.Movements...)
	if m.Concept != "" {
		if c := core.NormalizeConcept(m.Concept); !s.state.HasConcept(c) {
			next.UsedConcepts = append(append([]string{}, s.state.UsedConcepts...), c)
		}
	}

	s.logger.DebugContext(ctx, "Adding movement",
		log.NewFields().WithMovement(m.ID, m.Type.String(), m.Amount.String(), m.Category.ID, m.IsRecurring).ToSlice()...)
	ev := m
	s.commit(ctx, next, core.ChangeEvent{Event: core.EventMovementAdded, Movement: &ev})
	return m
}

// DeleteMovement removes the movement with the given id. It reports whether
// anything was removed; an unknown id changes nothing and is not saved.
func (s *FinanceStore) DeleteMovement(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, found := s.state.FindMovement(id)
	if !found {
		return false
	}
	next := s.state
	next.Movements = make([]core.Movement, 0, len(s.state.Movements)-1)
	for _, m := range s.state.Movements {
		if m.ID != id {
			next.Movements = append(next.Movements, m)
		}
	}
	s.commit(ctx, next, core.ChangeEvent{Event: core.EventMovementDeleted, Movement: &removed})
	return true
}

// AddCustomCategory stores a trimmed, lower-cased category name and returns
// it. A name already present is returned without being stored twice, and a
// blank name is ignored.
func (s *FinanceStore) AddCustomCategory(ctx context.Context, name string) string {
	id := core.NormalizeCategoryName(name)
	if id == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.HasCustomCategory(id) {
		return id
	}
	c := core.NewCustomCategory(id)
	next := s.state
	next.CustomCategories = append(append([]core.Category{}, s.state.CustomCategories...), c)
	s.commit(ctx, next, core.ChangeEvent{Event: core.EventCategoryAdded, Category: &c})
	return id
}

// ResetAll replaces the state with the zero state. There is no undo.
func (s *FinanceStore) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "Resetting finance state", log.FieldOperation, log.OpReset)
	s.commit(ctx, core.ZeroState(), core.ChangeEvent{Event: core.EventStateReset})
}

// commit installs next, then saves and notifies. Both side effects are best
// effort: failures are logged and the new state stays in place.
// The caller holds the write lock, so readers wait on the save and the
// notification; each is bounded by the io timeout.
func (s *FinanceStore) commit(ctx context.Context, next core.FinanceState, ev core.ChangeEvent) {
	next.Version = core.SnapshotVersion
	s.state = next
	s.revision++

	ioCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()

	s.save(ioCtx, next)

	ev.Revision = s.revision
	ev.Timestamp = s.now().UTC()
	s.notify(ioCtx, ev)
}

func (s *FinanceStore) save(ctx context.Context, st core.FinanceState) {
	if s.persister == nil {
		return
	}
	data, err := EncodeSnapshot(st)
	if err == nil {
		err = s.persister.Put(ctx, s.key, data)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save finance state",
			log.NewFields().
				WithComponent(log.ComponentStorage).
				WithOperation(log.OpSave).
				WithRevision(s.revision).
				WithError(err).
				ToSlice()...)
	}
}

func (s *FinanceStore) notify(ctx context.Context, ev core.ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.NewFields().
				WithOperation(log.OpNotify).
				WithRevision(ev.Revision).
				WithError(err).
				ToSlice()...)
		return
	}
	s.logger.DebugContext(ctx, "Published change event", log.FieldEvent, string(ev.Event), log.FieldRevision, ev.Revision)
}
