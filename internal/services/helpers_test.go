package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
)

var testLoc = time.FixedZone("CEST", 2*3600)

// testNow is Sunday 18 October 2026, 12:00 local.
var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, testLoc)

type fakePersister struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	putErr error
	puts   int
}

func newFakePersister() *fakePersister {
	return &fakePersister{data: map[string][]byte{}}
}

func (p *fakePersister) Get(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	v, ok := p.data[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), v...), nil
}

func (p *fakePersister) Put(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts++
	if p.putErr != nil {
		return p.putErr
	}
	p.data[key] = append([]byte(nil), value...)
	return nil
}

func (p *fakePersister) putCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.puts
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []core.ChangeEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev core.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) all() []core.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.ChangeEvent(nil), n.events...)
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("mov-%d", n)
	}
}

type storeFixture struct {
	store     *FinanceStore
	persister *fakePersister
	notifier  *recordingNotifier
	clock     *testClock
	logs      *bytes.Buffer
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	return newStoreFixtureWith(t, newFakePersister())
}

func newStoreFixtureWith(t *testing.T, p *fakePersister) *storeFixture {
	t.Helper()
	f := &storeFixture{
		persister: p,
		notifier:  &recordingNotifier{},
		clock:     &testClock{now: testNow},
		logs:      &bytes.Buffer{},
	}
	logger := log.New(log.Config{Output: f.logs, Level: slog.LevelDebug})
	f.store = NewFinanceStore(context.Background(), p,
		WithClock(f.clock.Now),
		WithLocation(testLoc),
		WithNotifier(f.notifier),
		WithLogger(logger),
		WithIDGenerator(sequentialIDs()),
	)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mov builds a movement at a local wall-clock time in testLoc.
func mov(id string, typ core.MovementType, amount, category string, at time.Time) core.Movement {
	return core.Movement{
		ID:          id,
		Type:        typ,
		Amount:      dec(amount),
		Category:    core.ResolveCategory(category),
		Description: core.ResolveCategory(category).Label(),
		Date:        core.FormatMovementDate(at),
		Timestamp:   at.UnixMilli(),
	}
}

func stateWith(movements ...core.Movement) core.FinanceState {
	s := core.ZeroState()
	s.Movements = movements
	return s
}

func bg() context.Context {
	return context.Background()
}
