package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-cix-vault/models"
)

type startSessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// startSession stores the tokens issued by the identity provider and sets
// the session cookie that later requests resolve their credential from.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var tokens models.OpenIDTokens
	if err := h.decodeBody(w, r, &tokens); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.services.TokenService.StartSession(r.Context(), tokens)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, r, startSessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.Tokens.ExpiresAt,
	}, http.StatusCreated)
}
