package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-cix-vault/models"
)

const (
	documentsTable = "documents"
	sessionsTable  = "sessions"
)

var sessionColumns = []string{
	"id",
	"user_id",
	"access_token",
	"refresh_token",
	"id_token",
	"expires_at",
	"updated_at",
}

// documentRow is a document encoded for the documents table.
type documentRow struct {
	ID   string
	Body string
}

func buildInsertDocumentsQuery(b sq.StatementBuilderType, model models.ModelName, rows []documentRow, now time.Time) (string, []any, error) {
	q := b.Insert(documentsTable).
		Columns("model", "id", "body", "created_at", "updated_at")
	for _, row := range rows {
		q = q.Values(string(model), row.ID, row.Body, now, now)
	}
	return q.ToSql()
}

// buildFindDocumentsQuery selects the documents of model in insertion order.
// Only the id is filtered in SQL; the body filter is applied after decoding.
func buildFindDocumentsQuery(b sq.StatementBuilderType, model models.ModelName, filter models.Filter) (string, []any, error) {
	where := sq.Eq{"model": string(model)}
	if id, ok := filter[models.DocumentIDField].(string); ok {
		where["id"] = id
	}

	return b.Select("id", "body").
		From(documentsTable).
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
}

func buildReplaceDocumentQuery(b sq.StatementBuilderType, model models.ModelName, row documentRow, now time.Time) (string, []any, error) {
	return b.Update(documentsTable).
		Set("body", row.Body).
		Set("updated_at", now).
		Where(sq.Eq{"model": string(model), "id": row.ID}).
		ToSql()
}

func buildSaveSessionQuery(b sq.StatementBuilderType, s models.Session) (string, []any, error) {
	return b.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			s.ID,
			s.UserID,
			s.Tokens.AccessToken,
			s.Tokens.RefreshToken,
			s.Tokens.IDToken,
			nullTime(s.Tokens.ExpiresAt),
			s.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			id_token = excluded.id_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`).
		ToSql()
}

func buildGetSessionQuery(b sq.StatementBuilderType, id string) (string, []any, error) {
	return b.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildUpdateSessionTokensQuery(b sq.StatementBuilderType, id string, tokens models.OpenIDTokens, now time.Time) (string, []any, error) {
	return b.Update(sessionsTable).
		Set("access_token", tokens.AccessToken).
		Set("refresh_token", tokens.RefreshToken).
		Set("id_token", tokens.IDToken).
		Set("expires_at", nullTime(tokens.ExpiresAt)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
