package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/email-login-otp/internal/domain"
	"github.com/redis/go-redis/v9"
)

type storedCode struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"` // unix millis
}

// CodeStore keeps one JSON-encoded code per identity.
// GETDEL makes the read-and-remove of TakeIfValid a single server-side step.
type CodeStore struct {
	client redis.UniversalClient
	prefix string
	keyTTL time.Duration
}

// NewCodeStore returns a store whose keys live for codeTTL plus retention,
// so late verifications still observe "expired" instead of "not found".
func NewCodeStore(client redis.UniversalClient, prefix string, codeTTL, retention time.Duration) *CodeStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &CodeStore{client: client, prefix: prefix, keyTTL: codeTTL + retention}
}

func (s *CodeStore) Put(ctx context.Context, identity, code string, expiresAt time.Time) error {
	raw, err := json.Marshal(storedCode{Code: code, ExpiresAt: expiresAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshal code record: %w", err)
	}
	if err := s.client.Set(ctx, key(s.prefix, "code", identity), raw, s.keyTTL).Err(); err != nil {
		return fmt.Errorf("redis set code: %w", err)
	}
	return nil
}

func (s *CodeStore) TakeIfValid(ctx context.Context, identity, candidate string, now time.Time) (domain.Outcome, error) {
	raw, err := s.client.GetDel(ctx, key(s.prefix, "code", identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.OutcomeNoRecord, nil
	}
	if err != nil {
		return domain.OutcomeNoRecord, fmt.Errorf("redis getdel code: %w", err)
	}
	var sc storedCode
	if err := json.Unmarshal(raw, &sc); err != nil {
		return domain.OutcomeNoRecord, fmt.Errorf("unmarshal code record: %w", err)
	}
	rec := &domain.CodeRecord{Identity: identity, Code: sc.Code, ExpiresAt: time.UnixMilli(sc.ExpiresAt)}
	return domain.Classify(rec, candidate, now), nil
}
