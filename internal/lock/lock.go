// Package lock serializes seat assignment per table and day so two intakes cannot
// both take the last free slot on a table.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another intake currently owns the table+day lock.
var ErrLockHeld = errors.New("table lock held")

// TableLocker acquires short-lived exclusive locks on a table for one day.
type TableLocker interface {
	Acquire(ctx context.Context, tableID, date string, ttl time.Duration) (Release, error)
}

// Release frees a lock. Releasing an expired or stolen lock is a no-op.
type Release func(ctx context.Context) error

// Key returns the lock key for a table on a day.
func Key(tableID, date string) string {
	return "seat-lock:" + tableID + ":" + date
}

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements TableLocker with SET NX PX.
type RedisLocker struct {
	client redis.Cmdable
}

// NewRedisLocker wraps a go-redis client.
func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, tableID, date string, ttl time.Duration) (Release, error) {
	key := Key(tableID, date)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}

// MemoryLocker implements TableLocker inside one process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryLease
	now  func() time.Time
	seq  uint64
}

type memoryLease struct {
	id      uint64
	expires time.Time
}

// NewMemoryLocker returns an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryLease), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, tableID, date string, ttl time.Duration) (Release, error) {
	key := Key(tableID, date)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expires) {
		return nil, ErrLockHeld
	}
	l.seq++
	id := l.seq
	l.held[key] = memoryLease{id: id, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if lease, ok := l.held[key]; ok && lease.id == id {
			delete(l.held, key)
		}
		return nil
	}, nil
}
