package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/MKhiriev/go-cix-vault/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAuthorizationHeader is returned by [ParseBearerToken] when the
// header value is not of the form "Bearer <token>".
var ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

var bearerRe = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// ParseBearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and surrounding whitespace is
// trimmed from the token.
//
// Example usage:
//
//	token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
func ParseBearerToken(authorizationHeader string) (string, error) {
	m := bearerRe.FindStringSubmatch(strings.TrimSpace(authorizationHeader))
	if m == nil {
		return "", ErrInvalidAuthorizationHeader
	}
	token := strings.TrimSpace(m[1])
	if token == "" {
		return "", ErrInvalidAuthorizationHeader
	}
	return token, nil
}

// ParseUnverifiedToken decodes a JWT without checking its signature.
//
// It is only suitable for reading claims the caller does not trust for
// authorization decisions, such as "exp" when deciding whether to refresh.
//
// Returns an error if tokenString is not a structurally valid JWT.
func ParseUnverifiedToken(tokenString string) (models.Token, error) {
	out := models.Token{SignedString: tokenString}
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &out.RegisteredClaims)
	if err != nil {
		return models.Token{}, fmt.Errorf("error parsing token: %w", err)
	}
	out.Token = token
	return out, nil
}
