package models

import "time"

// OpenIDTokens is the token set stored server-side for an OpenID session.
type OpenIDTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`

	// ExpiresAt is the access token expiry. Zero when unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Session is a server-side login session.
type Session struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id,omitempty"`
	Tokens    OpenIDTokens `json:"tokens"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// HasRefreshableTokens reports whether both the access and refresh tokens
// are present.
func (s Session) HasRefreshableTokens() bool {
	return s.Tokens.AccessToken != "" && s.Tokens.RefreshToken != ""
}
