package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgredis "github.com/jobboard/cms/internal/pkg/redis"
)

// ErrAlreadyRunning is returned when another run holds the lock.
var ErrAlreadyRunning = errors.New("ingestion is already running")

const lockKey = "ingestion"

// RunLock serialises runs within the process and, when Redis is configured,
// across instances.
type RunLock struct {
	mu    sync.Mutex
	redis *pkgredis.Client
	ttl   time.Duration
}

func NewRunLock(rdb *pkgredis.Client, ttl time.Duration) *RunLock {
	return &RunLock{redis: rdb, ttl: ttl}
}

// Acquire never blocks. The returned func releases both locks.
func (l *RunLock) Acquire(ctx context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	if l.redis == nil {
		return l.mu.Unlock, nil
	}

	held, err := l.redis.Lock(ctx, lockKey, l.ttl)
	if err != nil {
		l.mu.Unlock()
		if errors.Is(err, pkgredis.ErrLockHeld) {
			return nil, ErrAlreadyRunning
		}
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = held.Release(ctx)
		l.mu.Unlock()
	}, nil
}
