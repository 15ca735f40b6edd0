package redis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raedalotaibi/mashary-backend/pkg/config"
)

type fakeLockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{data: map[string]string{}}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Eval(_ context.Context, _ string, keys []string, args ...any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(keys) == 1 && len(args) == 1 && f.data[keys[0]] == args[0].(string) {
		delete(f.data, keys[0])
		return int64(1), nil
	}
	return int64(0), nil
}

func (f *fakeLockStore) LockKey(scope, id string) string {
	return strings.Join([]string{"mashary", "lock", scope, id}, ":")
}

func TestLockAcquireAndRelease(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewLock(store, config.DraftLockConfig{TTL: time.Second, WaitRetry: time.Millisecond, WaitMax: 0})
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	release, err := lock.Acquire(context.Background(), "project", "p1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if _, err := lock.Acquire(context.Background(), "project", "p1"); err != ErrLockHeld {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	release()

	release2, err := lock.Acquire(context.Background(), "project", "p1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestLockScopesAreIndependent(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewLock(store, config.DraftLockConfig{TTL: time.Second, WaitRetry: time.Millisecond, WaitMax: 0})
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	releaseA, err := lock.Acquire(context.Background(), "project", "a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	releaseB, err := lock.Acquire(context.Background(), "project", "b")
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	defer releaseB()
}

func TestLockStaleTokenDoesNotReleaseNewOwner(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewLock(store, config.DraftLockConfig{TTL: time.Second, WaitRetry: time.Millisecond, WaitMax: 0})
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	releaseOld, err := lock.Acquire(context.Background(), "project", "p1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Simulate TTL expiry followed by a new owner.
	store.mu.Lock()
	delete(store.data, store.LockKey("project", "p1"))
	store.mu.Unlock()

	releaseNew, err := lock.Acquire(context.Background(), "project", "p1")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}

	releaseOld()

	// New owner's lock must still be present.
	if _, err := lock.Acquire(context.Background(), "project", "p1"); err != ErrLockHeld {
		t.Fatalf("stale release freed the new owner's lock: %v", err)
	}
	releaseNew()
}
