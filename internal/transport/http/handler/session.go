package handler

import (
	"net/http"

	"github.com/email-login-otp/internal/domain"
	"github.com/email-login-otp/internal/transport/http/middleware"
)

// SessionHandler echoes the session carried by a bearer token.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess := &domain.Session{
		SessionID: claims.SessionID,
		Identity:  claims.Email,
	}
	if claims.IssuedAt != nil {
		sess.CreatedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.UTC()
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Success: true, Session: sess})
}
