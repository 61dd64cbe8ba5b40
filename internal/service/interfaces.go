package service

import (
	"context"

	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/servicemock/service_mock.go -package=servicemock

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// CredentialRequest carries the inbound inputs a credential may come from.
type CredentialRequest struct {
	// AuthorizationHeader is the raw Authorization header value.
	AuthorizationHeader string

	// SessionID is the server-side session id from the session cookie.
	SessionID string

	// CookieToken is the access token from the legacy token cookie.
	CookieToken string
}

// TokenService resolves the bearer credential of a request and keeps
// session tokens fresh.
type TokenService interface {
	// ResolveCredential picks the request's access token from, in order,
	// the Authorization header, the session (refreshed when near expiry),
	// and the legacy cookie. It never fails; an unresolved credential is
	// reported as [secctx.SourceNone].
	ResolveCredential(ctx context.Context, req CredentialRequest) secctx.SecurityContext

	// RefreshSessionIfNeeded refreshes the session's tokens when the access
	// token is within the refresh skew of its expiry. refreshed is false
	// when nothing had to be done.
	RefreshSessionIfNeeded(ctx context.Context, session models.Session) (token string, refreshed bool, err error)

	// StartSession stores tokens obtained by the login flow in a new
	// session and returns it.
	StartSession(ctx context.Context, tokens models.OpenIDTokens) (models.Session, error)
}

// TokenRefresher exchanges a refresh token at the identity provider.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.OpenIDTokens, error)
}
