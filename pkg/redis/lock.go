package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/pkg/config"
)

// ErrLockHeld is returned when the lock is owned by another caller and the
// configured wait budget is exhausted.
var ErrLockHeld = errors.New("lock is held")

// unlockScript releases a lock only when the caller still owns it, so an
// expired-and-reacquired lock is never deleted by the old owner.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	LockKey(scope, id string) string
}

// Lock is a best-effort distributed mutex built on SET NX with a TTL.
type Lock struct {
	store lockStore
	cfg   config.DraftLockConfig
}

// NewLock builds a lock helper bound to the given store.
func NewLock(store lockStore, cfg config.DraftLockConfig) (*Lock, error) {
	if store == nil {
		return nil, errors.New("lock store is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Second
	}
	if cfg.WaitRetry <= 0 {
		cfg.WaitRetry = 50 * time.Millisecond
	}
	return &Lock{store: store, cfg: cfg}, nil
}

// Acquire takes the lock for scope/id, retrying within the wait budget.
// It returns a release func that must be called once the critical section is
// done; releasing a lock that already expired is a no-op.
func (l *Lock) Acquire(ctx context.Context, scope, id string) (func(), error) {
	key := l.store.LockKey(scope, id)
	token := uuid.NewString()
	deadline := time.Now().Add(l.cfg.WaitMax)

	for {
		ok, err := l.store.SetNX(ctx, key, token, l.cfg.TTL)
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				_, _ = l.store.Eval(context.Background(), unlockScript, []string{key}, token)
			}
			return release, nil
		}
		if l.cfg.WaitMax <= 0 || time.Now().After(deadline) {
			return nil, ErrLockHeld
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.cfg.WaitRetry):
		}
	}
}
