package http

import (
	"net/http"

	"github.com/email-login-otp/internal/application/login"
	"github.com/email-login-otp/internal/config"
	"github.com/email-login-otp/internal/transport/http/handler"
	appmiddleware "github.com/email-login-otp/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var (
		authMw = appmiddleware.Unavailable
		signer login.TokenSigner
	)
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
		signer = deps.JWTProvider
	}

	issuer := login.NewIssuer(deps.Codes, deps.Cooldowns, deps.Notifier, cfg.CodeTTL, cfg.CodeCooldown)
	verifier := login.NewVerifier(deps.Codes)
	loginSvc := login.NewService(issuer, verifier, signer, deps.Clock)

	healthH := handler.NewHealthHandler()
	loginH := handler.NewLoginHandler(loginSvc, cfg.CodeCooldown, cfg.ExposeDebugCode)
	sessionH := handler.NewSessionHandler()

	r.Get("/", handler.Index)
	r.Post("/send", loginH.Send)
	r.Post("/verify", loginH.Verify)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/sessions/me", sessionH.GetCurrent)
		})
	})

	return r
}
