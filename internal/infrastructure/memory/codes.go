package memory

import (
	"context"
	"sync"
	"time"

	"github.com/email-login-otp/internal/domain"
)

type codeShard struct {
	mu      sync.Mutex
	records map[string]domain.CodeRecord
}

// CodeStore is a sharded, concurrency-safe domain.CodeStore.
type CodeStore struct {
	shards [shardCount]codeShard
}

func NewCodeStore() *CodeStore {
	s := &CodeStore{}
	for i := range s.shards {
		s.shards[i].records = make(map[string]domain.CodeRecord)
	}
	return s
}

func (s *CodeStore) shard(identity string) *codeShard {
	return &s.shards[shardIndex(identity)]
}

// Put installs or replaces the record for identity.
func (s *CodeStore) Put(_ context.Context, identity, code string, expiresAt time.Time) error {
	sh := s.shard(identity)
	sh.mu.Lock()
	sh.records[identity] = domain.CodeRecord{Identity: identity, Code: code, ExpiresAt: expiresAt}
	sh.mu.Unlock()
	return nil
}

// TakeIfValid removes the record for identity, if any, and classifies it.
func (s *CodeStore) TakeIfValid(_ context.Context, identity, candidate string, now time.Time) (domain.Outcome, error) {
	sh := s.shard(identity)
	sh.mu.Lock()
	rec, ok := sh.records[identity]
	if ok {
		delete(sh.records, identity)
	}
	sh.mu.Unlock()

	if !ok {
		return domain.OutcomeNoRecord, nil
	}
	return domain.Classify(&rec, candidate, now), nil
}

// EvictExpired drops records that expired before cutoff and returns how many were removed.
func (s *CodeStore) EvictExpired(cutoff time.Time) int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, rec := range sh.records {
			if rec.ExpiresAt.Before(cutoff) {
				delete(sh.records, k)
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// Len returns the number of pending records.
func (s *CodeStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.records)
		sh.mu.Unlock()
	}
	return n
}
