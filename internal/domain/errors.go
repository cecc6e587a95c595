package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCooldown is returned when a code was issued for the identity less than
	// one cooldown window ago.
	ErrCooldown = errors.New("cooldown")
	// ErrCodeNotFound covers never-issued, replaced and already-consumed codes.
	ErrCodeNotFound = errors.New("code not found")
	ErrCodeExpired  = errors.New("code expired")
	ErrCodeInvalid  = errors.New("code invalid")

	// ErrDelivery marks a failed notification. It never invalidates the stored code.
	ErrDelivery = errors.New("delivery failed")
)
