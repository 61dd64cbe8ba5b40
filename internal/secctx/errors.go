package secctx

import "errors"

var (
	// ErrNoCredential is returned when an operation requires a bearer
	// credential but no security context, or an empty one, is attached to
	// the context.
	ErrNoCredential = errors.New("missing access token (no request context)")

	// ErrRefreshFailed wraps any error returned by a refresh function. Every
	// caller waiting on the same key receives it.
	ErrRefreshFailed = errors.New("credential refresh failed")
)
