package service

import "errors"

var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	// ErrFieldEncryption wraps every failure of the write path. The
	// underlying adapter error stays matchable with errors.Is.
	ErrFieldEncryption = errors.New("field encryption failed")

	// ErrFieldDecryption wraps transport-level failures of the read path.
	ErrFieldDecryption = errors.New("field decryption failed")

	// ErrTokenRefresh wraps failures of the identity-provider refresh grant
	// and of persisting its result.
	ErrTokenRefresh = errors.New("token refresh failed")

	ErrInvalidSessionTokens = errors.New("session needs an access token")
)
