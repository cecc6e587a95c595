package login

import (
	"context"
	"fmt"
	"time"

	"github.com/email-login-otp/internal/domain"
)

// Verifier consumes a pending code and reports why a login attempt failed.
type Verifier struct {
	codes domain.CodeStore
}

func NewVerifier(codes domain.CodeStore) *Verifier {
	return &Verifier{codes: codes}
}

// VerifyCode returns nil only when candidate matched an unexpired code.
// Any attempt against an existing record consumes it.
func (v *Verifier) VerifyCode(ctx context.Context, identity, candidate string, now time.Time) error {
	outcome, err := v.codes.TakeIfValid(ctx, identity, candidate, now)
	if err != nil {
		return fmt.Errorf("take code: %w", err)
	}
	switch outcome {
	case domain.OutcomeSuccess:
		return nil
	case domain.OutcomeExpired:
		return domain.ErrCodeExpired
	case domain.OutcomeMismatch:
		return domain.ErrCodeInvalid
	default:
		return domain.ErrCodeNotFound
	}
}
