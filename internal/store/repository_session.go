package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/models"
)

type sessionRepository struct {
	*DB
	now func() time.Time
}

// NewSessionRepository constructs a [SessionRepository] over db.
func NewSessionRepository(db *DB) SessionRepository {
	return &sessionRepository{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *sessionRepository) Save(ctx context.Context, session models.Session) error {
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = r.now()
	}

	query, args, err := buildSaveSessionQuery(r.builder(), session)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sessionRepository.Save").
			Str("session_id", session.ID).
			Msg("failed to save session")
		return r.wrap(ErrExecutingStatement, err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (models.Session, error) {
	query, args, err := buildGetSessionQuery(r.builder(), id)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		s         models.Session
		expiresAt sql.NullTime
	)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.UserID,
		&s.Tokens.AccessToken,
		&s.Tokens.RefreshToken,
		&s.Tokens.IDToken,
		&expiresAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sessionRepository.Get").
			Str("session_id", id).
			Msg("failed to scan session row")
		return models.Session{}, r.wrap(ErrScanningRow, err)
	}

	if expiresAt.Valid {
		s.Tokens.ExpiresAt = expiresAt.Time
	}
	return s, nil
}

func (r *sessionRepository) UpdateTokens(ctx context.Context, id string, tokens models.OpenIDTokens) error {
	query, args, err := buildUpdateSessionTokensQuery(r.builder(), id, tokens, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sessionRepository.UpdateTokens").
			Str("session_id", id).
			Msg("failed to update session tokens")
		return r.wrap(ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return r.wrap(ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
