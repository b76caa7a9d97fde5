// Package guard holds short-lived locks that stop the same mutation from
// running twice at once (double-click create, double delete).
package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every lock key.
const KeyPrefix = "clientdesk:mutation:"

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out leases. Acquire returns ok=false when someone else holds
// key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}

// RedisLocker implements Locker with SET NX PX and an owner token, so a
// lease that outlived its TTL cannot release a newer holder's lock.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, KeyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{rdb: l.rdb, key: KeyPrefix + key, token: token}, true, nil
}

type redisLease struct {
	rdb   *redis.Client
	key   string
	token string
	once  sync.Once
}

func (l *redisLease) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		err = releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
		if errors.Is(err, redis.Nil) {
			err = nil
		}
	})
	return err
}

// MemoryLocker is the single-process Locker used without Redis.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryHold
	seq  uint64
	now  func() time.Time
}

type memoryHold struct {
	token   uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryHold), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, false, nil
	}
	l.seq++
	h := memoryHold{token: l.seq, expires: now.Add(ttl)}
	l.held[key] = h
	return &memoryLease{locker: l, key: key, token: h.token}, true, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  uint64
}

func (l *memoryLease) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	if h, ok := l.locker.held[l.key]; ok && h.token == l.token {
		delete(l.locker.held, l.key)
	}
	return nil
}
