package store

import (
	"context"

	"github.com/MKhiriev/go-cix-vault/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DocumentRepository persists raw documents. It knows nothing about hooks:
// documents are stored and returned exactly as given.
type DocumentRepository interface {
	// Insert stores docs atomically. Every document must carry an id.
	// Returns [ErrDuplicateDocument] if any id is already taken.
	Insert(ctx context.Context, model models.ModelName, docs ...models.Document) error

	// Find returns the documents of model matching filter, oldest first.
	Find(ctx context.Context, model models.ModelName, filter models.Filter) ([]models.Document, error)

	// Replace overwrites the stored bodies of docs atomically, matching by
	// id. Returns [ErrDocumentNotFound] if any id does not exist.
	Replace(ctx context.Context, model models.ModelName, docs ...models.Document) error
}

// SessionRepository persists login sessions and the identity-provider
// tokens attached to them.
type SessionRepository interface {
	// Save inserts or fully overwrites a session.
	Save(ctx context.Context, session models.Session) error

	// Get returns the session with id or [ErrSessionNotFound].
	Get(ctx context.Context, id string) (models.Session, error)

	// UpdateTokens replaces the tokens of an existing session.
	UpdateTokens(ctx context.Context, id string, tokens models.OpenIDTokens) error
}

// ErrorClassificator decides whether a database error is worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
