package memory

import (
	"context"
	"sync"
	"time"

	"github.com/email-login-otp/internal/domain"
)

type cooldownShard struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
}

// CooldownTracker is a sharded, concurrency-safe domain.CooldownTracker.
type CooldownTracker struct {
	shards [shardCount]cooldownShard
}

func NewCooldownTracker() *CooldownTracker {
	t := &CooldownTracker{}
	for i := range t.shards {
		t.shards[i].lastSent = make(map[string]time.Time)
	}
	return t
}

// TryReserve records now as the last issuance for identity when the cooldown has elapsed.
func (t *CooldownTracker) TryReserve(_ context.Context, identity string, now time.Time, cooldown time.Duration) (bool, error) {
	sh := &t.shards[shardIndex(identity)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if !domain.CooldownElapsed(sh.lastSent[identity], now, cooldown) {
		return false, nil
	}
	sh.lastSent[identity] = now
	return true, nil
}

// EvictIdle drops identities whose last issuance is older than cutoff.
func (t *CooldownTracker) EvictIdle(cutoff time.Time) int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		for k, last := range sh.lastSent {
			if last.Before(cutoff) {
				delete(sh.lastSent, k)
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// Len returns the number of tracked identities.
func (t *CooldownTracker) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		n += len(sh.lastSent)
		sh.mu.Unlock()
	}
	return n
}
