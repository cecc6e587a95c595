package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/email-login-otp/internal/application/login"
	"github.com/email-login-otp/internal/domain"
)

// maxBodyBytes bounds /send and /verify payloads.
const maxBodyBytes = 1 << 12

// LoginHandler serves the code issuance and verification endpoints.
type LoginHandler struct {
	svc             login.Service
	cooldown        time.Duration
	exposeDebugCode bool
}

func NewLoginHandler(svc login.Service, cooldown time.Duration, exposeDebugCode bool) *LoginHandler {
	return &LoginHandler{svc: svc, cooldown: cooldown, exposeDebugCode: exposeDebugCode}
}

func (h *LoginHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req login.SendCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	issued, err := h.svc.SendCode(r.Context(), req)
	if errors.Is(err, domain.ErrCooldown) {
		writeJSON(w, http.StatusTooManyRequests, SendEnvelope{
			Message:         "cooldown",
			CooldownSeconds: int(h.cooldown / time.Second),
		})
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}

	resp := SendEnvelope{
		Success:         true,
		CooldownSeconds: int(issued.Cooldown / time.Second),
		CodeTTLSeconds:  int(issued.TTL / time.Second),
		Delivery:        issued.Delivery.Channel,
	}
	if issued.Delivery.Err != nil {
		resp.Error = issued.Delivery.Reason
	}
	if issued.Delivery.Channel == login.ChannelConsole && h.exposeDebugCode {
		resp.DebugCode = issued.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoginHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req login.VerifyCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyCode(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "login ok",
		Bearer:  res.Bearer,
		Session: res.Session,
	})
}

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid json")
	return false
}
