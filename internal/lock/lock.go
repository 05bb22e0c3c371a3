// Package lock serializes negotiation updates per tenant. Continue-calls
// are read-modify-write over position and history; two concurrent messages
// for the same tenant must not race each other into a lost update.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TenantLocker grants exclusive access to one tenant's negotiation.
// Acquire blocks until the lock is held or the context expires; the
// returned function releases it.
type TenantLocker interface {
	Acquire(ctx context.Context, tenantEmail string) (release func(), err error)
}

const acquirePollInterval = 50 * time.Millisecond

// releaseScript deletes the lock only if this holder still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a cross-instance locker on Redis SET NX with a TTL
// guard against crashed holders.
func NewRedisLocker(client *redis.Client, ttl time.Duration) TenantLocker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context, tenantEmail string) (func(), error) {
	key := "leaseline:tenant_lock:" + tenantEmail
	token := newToken()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring tenant lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquiring tenant lock: %w", ctx.Err())
		case <-time.After(acquirePollInterval):
		}
	}

	return func() {
		// Release on a fresh context: the request context may already be
		// cancelled by the time the caller unwinds.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Result()
	}, nil
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type localLocker struct {
	mu      sync.Mutex
	tenants map[string]*localLock
}

// localLock is a channel-based mutex so waiting can be abandoned when the
// context expires. refs counts holders plus waiters; the entry is dropped
// when it reaches zero, keeping the map bounded by live negotiations.
type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker builds an in-process locker for single-instance
// deployments where Redis is not configured.
func NewLocalLocker() TenantLocker {
	return &localLocker{tenants: make(map[string]*localLock)}
}

func (l *localLocker) Acquire(ctx context.Context, tenantEmail string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.tenants[tenantEmail]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.tenants[tenantEmail] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(tenantEmail, lk)
		return nil, fmt.Errorf("acquiring tenant lock: %w", ctx.Err())
	}

	return func() {
		<-lk.ch
		l.unref(tenantEmail, lk)
	}, nil
}

func (l *localLocker) unref(tenantEmail string, lk *localLock) {
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.tenants, tenantEmail)
	}
	l.mu.Unlock()
}
