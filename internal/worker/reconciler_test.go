package worker

import (
	"context"
	"testing"
	"time"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
	storemem "moneypaz/internal/storage/memory"
)

func seededStore(t *testing.T, names ...string) *storemem.Store {
	t.Helper()
	st := core.ZeroState()
	st.UserName = "Ana"
	for _, id := range names {
		st.Movements = append(st.Movements, testMovement(id))
	}
	data, err := services.EncodeSnapshot(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	store := storemem.New()
	if err := store.Put(context.Background(), services.DefaultStateKey, data); err != nil {
		t.Fatalf("put: %v", err)
	}
	return store
}

func TestDefaultReconcilerConfig(t *testing.T) {
	config := DefaultReconcilerConfig()
	if config.PollInterval != 5*time.Minute {
		t.Errorf("expected PollInterval 5m, got %v", config.PollInterval)
	}
	if config.StateKey != services.DefaultStateKey {
		t.Errorf("unexpected state key %q", config.StateKey)
	}
}

func TestReconciler_RunOnce(t *testing.T) {
	admin := newFakeAdmin()
	r := NewReconciler(seededStore(t, "a", "b", "c"), admin, ReconcilerConfig{UserID: "u1"}, log.Discard())
	ctx := context.Background()

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if admin.count("u1") != 3 || admin.profiles["u1"].DisplayName != "Ana" {
		t.Fatalf("unexpected admin state: %d movements, profile %+v", admin.count("u1"), admin.profiles["u1"])
	}
	if r.LastSync().IsZero() {
		t.Error("LastSync should be set")
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if admin.replaced != 1 {
		t.Errorf("unchanged state should be skipped, replaced %d times", admin.replaced)
	}
}

func TestReconciler_MissingStateAndUser(t *testing.T) {
	admin := newFakeAdmin()
	r := NewReconciler(storemem.New(), admin, ReconcilerConfig{UserID: "u1"}, log.Discard())
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("missing state should not fail: %v", err)
	}
	if admin.replaced != 0 {
		t.Error("nothing should be replaced")
	}

	r = NewReconciler(storemem.New(), admin, ReconcilerConfig{}, log.Discard())
	if err := r.RunOnce(context.Background()); err != ErrNoUser {
		t.Errorf("expected ErrNoUser, got %v", err)
	}
}

func TestReconciler_Lifecycle(t *testing.T) {
	admin := newFakeAdmin()
	config := ReconcilerConfig{PollInterval: time.Hour, UserID: "u1"}
	r := NewReconciler(seededStore(t, "a"), admin, config, log.Discard())
	ctx := context.Background()

	if r.IsRunning() {
		t.Fatal("reconciler should not be running initially")
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stopping an idle reconciler: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Error("expected error when starting twice")
	}

	deadline := time.Now().Add(2 * time.Second)
	for admin.count("u1") != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if admin.count("u1") != 1 {
		t.Fatal("first pass should run immediately on start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.IsRunning() {
		t.Error("reconciler should be stopped")
	}
}
