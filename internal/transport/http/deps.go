package http

import (
	"github.com/email-login-otp/internal/application/login"
	"github.com/email-login-otp/internal/domain"
	jwtinfra "github.com/email-login-otp/internal/infrastructure/jwt"
	"github.com/email-login-otp/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Codes     domain.CodeStore
	Cooldowns domain.CooldownTracker
	// Notifier may be nil, in which case codes only reach the console.
	Notifier    login.Notifier
	JWTProvider *jwtinfra.Provider
	Clock       clock.Clocker
}
