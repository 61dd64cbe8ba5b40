package http

import (
	"net/http"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/service"
)

const (
	// sessionCookieName carries the server-side session id.
	sessionCookieName = "sid"

	// legacyTokenCookieName carries a raw OpenID access token.
	legacyTokenCookieName = "openid_access_token"
)

// withSecurityContext resolves the request's bearer credential and
// establishes it for the rest of the request. A request without one is
// not rejected here: only operations that reach the cipher service need it.
func (h *Handler) withSecurityContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := service.CredentialRequest{AuthorizationHeader: r.Header.Get("Authorization")}
		if c, err := r.Cookie(sessionCookieName); err == nil {
			req.SessionID = c.Value
		}
		if c, err := r.Cookie(legacyTokenCookieName); err == nil {
			req.CookieToken = c.Value
		}

		sc := h.services.TokenService.ResolveCredential(r.Context(), req)
		logger.FromRequest(r).Debug().Str("credential_source", string(sc.Source)).Msg("security context established")

		next.ServeHTTP(w, r.WithContext(secctx.WithSecurityContext(r.Context(), sc)))
	})
}
