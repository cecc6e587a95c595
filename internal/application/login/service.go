package login

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/email-login-otp/internal/domain"
	"github.com/email-login-otp/internal/pkg/clock"
	"github.com/email-login-otp/internal/pkg/id"
	"github.com/email-login-otp/internal/pkg/validate"
)

// Input errors, distinguishable from each other and from domain.ErrBadRequest.
var (
	ErrInvalidEmail = fmt.Errorf("invalid email: %w", domain.ErrBadRequest)
	ErrMissingCode  = fmt.Errorf("missing code: %w", domain.ErrBadRequest)
)

type SendCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code" validate:"required"`
}

// LoginResult is returned after a successful verification. Bearer is empty
// when no token signer is configured.
type LoginResult struct {
	Bearer  string
	Session *domain.Session
}

// TokenSigner issues session tokens for verified identities.
type TokenSigner interface {
	Sign(email, sessionID string, issuedAt time.Time) (string, error)
	Expiry() time.Duration
}

type Service interface {
	SendCode(ctx context.Context, req SendCodeRequest) (*IssuedCode, error)
	VerifyCode(ctx context.Context, req VerifyCodeRequest) (*LoginResult, error)
}

type service struct {
	issuer   *Issuer
	verifier *Verifier
	signer   TokenSigner
	clock    clock.Clocker
}

// NewService wires the login flow. signer may be nil.
func NewService(issuer *Issuer, verifier *Verifier, signer TokenSigner, clk clock.Clocker) Service {
	if clk == nil {
		clk = clock.New()
	}
	return &service{issuer: issuer, verifier: verifier, signer: signer, clock: clk}
}

func (s *service) SendCode(ctx context.Context, req SendCodeRequest) (*IssuedCode, error) {
	identity, err := identityOf(req.Email)
	if err != nil {
		return nil, err
	}
	issued, err := s.issuer.RequestCode(ctx, identity, s.clock.Now())
	if err != nil {
		return nil, err
	}
	slog.Info("login code issued", "email", identity, "delivery", issued.Delivery.Channel)
	return issued, nil
}

func (s *service) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*LoginResult, error) {
	identity, err := identityOf(req.Email)
	if err != nil {
		return nil, err
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCode, err)
	}

	now := s.clock.Now()
	if err := s.verifier.VerifyCode(ctx, identity, req.Code, now); err != nil {
		return nil, err
	}

	sess := &domain.Session{
		SessionID: id.New(),
		Identity:  identity,
		CreatedAt: now.UTC(),
	}
	res := &LoginResult{Session: sess}
	if s.signer == nil {
		return res, nil
	}
	bearer, err := s.signer.Sign(identity, sess.SessionID, now)
	if err != nil {
		// The code is already consumed; the login stands without a token.
		slog.Warn("failed to sign session token", "email", identity, "err", err)
		return res, nil
	}
	sess.ExpiresAt = now.Add(s.signer.Expiry()).UTC()
	res.Bearer = bearer
	return res, nil
}

func identityOf(email string) (string, error) {
	identity := validate.NormalizeEmail(email)
	if !validate.Email(identity) {
		return "", ErrInvalidEmail
	}
	return identity, nil
}
