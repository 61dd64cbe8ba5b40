package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is an access token parsed without signature verification. The vault
// only needs to know who the token belongs to and when it expires; the
// identity provider and the vault service do the actual verification.
//
// It embeds [jwt.Token] for low-level access and [jwt.RegisteredClaims] for
// the standard claim set.
type Token struct {
	// Token is the underlying parsed JWT.
	*jwt.Token `json:"-"`

	// RegisteredClaims holds sub, exp, iat and the rest of RFC 7519 claims.
	jwt.RegisteredClaims

	// SignedString is the compact serialized form the token was parsed from.
	SignedString string `json:"-"`
}

// Expiry returns the "exp" claim. ok is false if the claim is absent.
func (t *Token) Expiry() (time.Time, bool) {
	if t.ExpiresAt == nil {
		return time.Time{}, false
	}
	return t.ExpiresAt.Time, true
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
