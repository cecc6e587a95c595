package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/email-login-otp/internal/application/login"
	"github.com/email-login-otp/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SendEnvelope wraps code issuance responses.
type SendEnvelope struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	CooldownSeconds int    `json:"cooldown_seconds,omitempty"`
	CodeTTLSeconds  int    `json:"code_ttl_seconds,omitempty"`
	Delivery        string `json:"delivery,omitempty"`
	DebugCode       string `json:"debug_code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// AuthEnvelope wraps verification responses.
type AuthEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Bearer  string          `json:"Bearer,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Success bool            `json:"success"`
	Session *domain.Session `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

// httpError maps service errors onto status codes and client messages.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, login.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid email")
	case errors.Is(err, login.ErrMissingCode):
		writeError(w, http.StatusBadRequest, "missing code")
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusBadRequest, "code not found")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusBadRequest, "code expired")
	case errors.Is(err, domain.ErrCodeInvalid):
		writeError(w, http.StatusBadRequest, "code invalid")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad request")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		slog.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
