package service

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/models"
)

// oauth2Refresher performs the refresh_token grant against the provider's
// token endpoint.
type oauth2Refresher struct {
	cfg    oauth2.Config
	client *http.Client
}

// NewOAuth2Refresher returns nil when cfg has no token URL.
func NewOAuth2Refresher(cfg config.OpenID) TokenRefresher {
	if cfg.TokenURL == "" {
		return nil
	}
	return &oauth2Refresher{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		},
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *oauth2Refresher) Refresh(ctx context.Context, refreshToken string) (models.OpenIDTokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)

	// an empty access token forces the token source to refresh
	tok, err := r.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return models.OpenIDTokens{}, err
	}

	idToken, _ := tok.Extra("id_token").(string)
	return models.OpenIDTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}
