package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/email-login-otp/internal/domain"
	pkgtoken "github.com/email-login-otp/internal/pkg/token"
)

// Delivery reports how an issued code reached, or failed to reach, the identity.
// Reason is the notifier's own message, suitable for showing to the client.
type Delivery struct {
	Channel string
	Reason  string
	Err     error
}

// IssuedCode is the result of a successful RequestCode.
type IssuedCode struct {
	Code      string
	ExpiresAt time.Time
	TTL       time.Duration
	Cooldown  time.Duration
	Delivery  Delivery
}

// Issuer gates, generates, stores and dispatches login codes.
type Issuer struct {
	codes     domain.CodeStore
	cooldowns domain.CooldownTracker
	notifier  Notifier
	fallback  *ConsoleNotifier
	ttl       time.Duration
	cooldown  time.Duration
	generate  func() (string, error)
}

// NewIssuer wires an Issuer. A nil notifier sends every code to the console.
// Non-positive windows fall back to the package defaults.
func NewIssuer(codes domain.CodeStore, cooldowns domain.CooldownTracker, notifier Notifier, ttl, cooldown time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = domain.DefaultCodeTTL
	}
	if cooldown <= 0 {
		cooldown = domain.DefaultCooldown
	}
	fallback := NewConsoleNotifier(nil)
	if notifier == nil {
		notifier = fallback
	}
	return &Issuer{
		codes:     codes,
		cooldowns: cooldowns,
		notifier:  notifier,
		fallback:  fallback,
		ttl:       ttl,
		cooldown:  cooldown,
		generate:  func() (string, error) { return pkgtoken.NewNumericCode(domain.CodeDigits) },
	}
}

// RequestCode issues a fresh code for identity unless the cooldown window is
// still open. Delivery problems are reported in the result, never as an error.
func (i *Issuer) RequestCode(ctx context.Context, identity string, now time.Time) (*IssuedCode, error) {
	ok, err := i.cooldowns.TryReserve(ctx, identity, now, i.cooldown)
	if err != nil {
		return nil, fmt.Errorf("reserve cooldown: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("code requested too soon: %w", domain.ErrCooldown)
	}

	code, err := i.generate()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(i.ttl)
	if err := i.codes.Put(ctx, identity, code, expiresAt); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	return &IssuedCode{
		Code:      code,
		ExpiresAt: expiresAt,
		TTL:       i.ttl,
		Cooldown:  i.cooldown,
		Delivery:  i.deliver(ctx, identity, code),
	}, nil
}

func (i *Issuer) deliver(ctx context.Context, identity, code string) Delivery {
	err := i.notifier.Deliver(ctx, identity, code)
	if err == nil {
		return Delivery{Channel: channelOf(i.notifier)}
	}
	slog.Warn("login code delivery failed, using console", "email", identity, "err", err)
	_ = i.fallback.Deliver(ctx, identity, code)
	return Delivery{
		Channel: ChannelConsole,
		Reason:  err.Error(),
		Err:     fmt.Errorf("%w: %w", domain.ErrDelivery, err),
	}
}
