package domain

import (
	"context"
	"crypto/subtle"
	"time"
)

const (
	// CodeDigits is the fixed width of every issued code.
	CodeDigits = 6
	// DefaultCodeTTL is how long an issued code stays verifiable.
	DefaultCodeTTL = 300 * time.Second
	// DefaultCooldown is the minimum interval between two issuances for one identity.
	DefaultCooldown = 60 * time.Second
)

// CodeRecord is the single pending code of an identity.
// Re-issuance replaces it wholesale; any verification attempt consumes it.
type CodeRecord struct {
	Identity  string
	Code      string
	ExpiresAt time.Time
}

// CooldownRecord tracks the last successful issuance of an identity.
type CooldownRecord struct {
	Identity     string
	LastIssuedAt time.Time
}

// Outcome classifies a TakeIfValid call.
type Outcome int

const (
	OutcomeNoRecord Outcome = iota
	OutcomeExpired
	OutcomeMismatch
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeSuccess:
		return "success"
	default:
		return "no_record"
	}
}

// Classify decides the outcome for a record that has already been removed from its store.
// A nil record means there was nothing to take.
func Classify(rec *CodeRecord, candidate string, now time.Time) Outcome {
	if rec == nil {
		return OutcomeNoRecord
	}
	if now.After(rec.ExpiresAt) {
		return OutcomeExpired
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(candidate)) != 1 {
		return OutcomeMismatch
	}
	return OutcomeSuccess
}

// CooldownElapsed reports whether an issuance at now is allowed after one at last.
// A zero last means the identity was never issued a code.
func CooldownElapsed(last, now time.Time, cooldown time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= cooldown
}

// CodeStore keeps at most one CodeRecord per identity.
// TakeIfValid must read, remove and classify as one atomic step per identity.
type CodeStore interface {
	Put(ctx context.Context, identity, code string, expiresAt time.Time) error
	TakeIfValid(ctx context.Context, identity, candidate string, now time.Time) (Outcome, error)
}

// CooldownTracker gates issuance per identity.
// TryReserve must check and update lastIssuedAt as one atomic step per identity.
type CooldownTracker interface {
	TryReserve(ctx context.Context, identity string, now time.Time, cooldown time.Duration) (bool, error)
}
