package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/internal/utils"
	"github.com/MKhiriev/go-cix-vault/models"
)

// tokenService is the concrete implementation of [TokenService].
type tokenService struct {
	sessions    store.SessionRepository
	coordinator *secctx.RefreshCoordinator
	refresher   TokenRefresher
	reuseTokens bool
	newID       func() string
	now         func() time.Time
	logger      *logger.Logger
}

// NewTokenService wires a token service. refresher may be nil when no token
// endpoint is configured; sessions then never refresh.
func NewTokenService(sessions store.SessionRepository, coordinator *secctx.RefreshCoordinator, refresher TokenRefresher, cfg config.OpenID, log *logger.Logger) TokenService {
	return &tokenService{
		sessions:    sessions,
		coordinator: coordinator,
		refresher:   refresher,
		reuseTokens: cfg.ReuseTokens,
		newID:       utils.NewUUIDGenerator().Generate,
		now:         time.Now,
		logger:      log,
	}
}

func (s *tokenService) ResolveCredential(ctx context.Context, req CredentialRequest) secctx.SecurityContext {
	log := logger.FromContext(ctx)

	var headerToken string
	if req.AuthorizationHeader != "" {
		token, err := utils.ParseBearerToken(req.AuthorizationHeader)
		if err == nil {
			headerToken = token
		} else {
			log.Debug().Err(err).Msg("ignoring malformed authorization header")
		}
	}

	// The stored session is kept fresh even when the header wins.
	if s.reuseTokens && req.SessionID != "" {
		if sc, ok := s.fromSession(ctx, req.SessionID); ok && headerToken == "" {
			return sc
		}
	}

	if headerToken != "" {
		return secctx.SecurityContext{AccessToken: headerToken, Source: secctx.SourceAuthHeader}
	}

	if req.CookieToken != "" {
		return secctx.SecurityContext{AccessToken: req.CookieToken, Source: secctx.SourceCookie}
	}

	return secctx.SecurityContext{Source: secctx.SourceNone}
}

func (s *tokenService) fromSession(ctx context.Context, sessionID string) (secctx.SecurityContext, bool) {
	log := logger.FromContext(ctx)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			log.Warn().Err(err).Msg("failed to load session")
		}
		return secctx.SecurityContext{}, false
	}
	if session.Tokens.AccessToken == "" {
		return secctx.SecurityContext{}, false
	}

	token, refreshed, err := s.RefreshSessionIfNeeded(ctx, session)
	if err != nil {
		// keep the old token; the vault will reject it if it is dead
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("session token refresh failed")
	}
	if refreshed && token != "" {
		return secctx.SecurityContext{AccessToken: token, Source: secctx.SourceSessionRefreshed}, true
	}
	return secctx.SecurityContext{AccessToken: session.Tokens.AccessToken, Source: secctx.SourceSession}, true
}

func (s *tokenService) RefreshSessionIfNeeded(ctx context.Context, session models.Session) (string, bool, error) {
	if s.refresher == nil || !session.HasRefreshableTokens() {
		return "", false, nil
	}

	expiresAt, ok := tokenExpiry(session.Tokens)
	if !ok {
		return "", false, nil
	}

	key := secctx.RefreshKey(session.ID, session.UserID)
	return s.coordinator.RefreshIfNeeded(ctx, key, expiresAt, func(rctx context.Context) (string, error) {
		tokens, err := s.refresher.Refresh(rctx, session.Tokens.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrTokenRefresh, err)
		}
		if tokens.AccessToken == "" {
			return "", fmt.Errorf("%w: provider returned no access token", ErrTokenRefresh)
		}

		// providers that do not rotate refresh tokens omit them
		if tokens.RefreshToken == "" {
			tokens.RefreshToken = session.Tokens.RefreshToken
		}
		if tokens.IDToken == "" {
			tokens.IDToken = session.Tokens.IDToken
		}
		if tokens.ExpiresAt.IsZero() {
			tokens.ExpiresAt, _ = tokenExpiry(tokens)
		}

		if err = s.sessions.UpdateTokens(rctx, session.ID, tokens); err != nil {
			return "", fmt.Errorf("%w: saving tokens: %w", ErrTokenRefresh, err)
		}

		logger.FromContext(rctx).Info().
			Str("user_id", session.UserID).
			Time("expires_at", tokens.ExpiresAt).
			Msg("session tokens refreshed")
		return tokens.AccessToken, nil
	})
}

func (s *tokenService) StartSession(ctx context.Context, tokens models.OpenIDTokens) (models.Session, error) {
	if tokens.AccessToken == "" {
		return models.Session{}, ErrInvalidSessionTokens
	}

	session := models.Session{
		ID:        s.newID(),
		Tokens:    tokens,
		UpdatedAt: s.now().UTC(),
	}
	if parsed, err := utils.ParseUnverifiedToken(tokens.AccessToken); err == nil {
		session.UserID = parsed.Subject
		if session.Tokens.ExpiresAt.IsZero() {
			if exp, ok := parsed.Expiry(); ok {
				session.Tokens.ExpiresAt = exp
			}
		}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		logger.FromContext(ctx).Err(err).Msg("failed to save session")
		return models.Session{}, err
	}
	return session, nil
}

// tokenExpiry returns the known expiry of tokens: the stored value, or the
// access token's "exp" claim.
func tokenExpiry(tokens models.OpenIDTokens) (time.Time, bool) {
	if !tokens.ExpiresAt.IsZero() {
		return tokens.ExpiresAt, true
	}
	parsed, err := utils.ParseUnverifiedToken(tokens.AccessToken)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Expiry()
}
