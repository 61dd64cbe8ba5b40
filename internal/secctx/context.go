// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package secctx

import "context"

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

var securityContextKey = contextKey("securityContext")

// TokenSource records where the request's access token came from.
type TokenSource string

const (
	SourceNone             TokenSource = "none"
	SourceAuthHeader       TokenSource = "auth_header"
	SourceSession          TokenSource = "session"
	SourceSessionRefreshed TokenSource = "session_refreshed"
	SourceCookie           TokenSource = "cookie"
)

// SecurityContext is the ambient, request-scoped security state. It is
// created once at the request boundary and never modified afterwards.
type SecurityContext struct {
	// AccessToken is the bearer credential forwarded to downstream services.
	AccessToken string

	// Source tells which input the token was resolved from.
	Source TokenSource
}

// WithSecurityContext returns a copy of ctx carrying sc. A value set on a
// derived context shadows the parent's value for that context only.
func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey, sc)
}

// FromContext returns the security context attached to ctx.
//
// ok is false when no security context was established, for example in a
// background task not derived from a request.
func FromContext(ctx context.Context) (SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey).(SecurityContext)
	return sc, ok
}

// RunWithContext runs fn with sc established for its full extent. Anything
// fn starts with the context it receives observes sc.
func RunWithContext(ctx context.Context, sc SecurityContext, fn func(ctx context.Context) error) error {
	return fn(WithSecurityContext(ctx, sc))
}

// CurrentCredential returns the bearer credential of the nearest enclosing
// security context. ok is false if none is established or it holds an
// empty token.
func CurrentCredential(ctx context.Context) (string, bool) {
	sc, ok := FromContext(ctx)
	if !ok || sc.AccessToken == "" {
		return "", false
	}
	return sc.AccessToken, true
}

// RequireCredential is like [CurrentCredential] but reports absence as
// [ErrNoCredential].
func RequireCredential(ctx context.Context) (string, error) {
	token, ok := CurrentCredential(ctx)
	if !ok {
		return "", ErrNoCredential
	}
	return token, nil
}
