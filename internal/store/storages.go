package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
)

// Storages bundles the repositories of one backend.
type Storages struct {
	Documents DocumentRepository
	Sessions  SessionRepository

	db *DB
}

// NewStorages opens the backend selected by cfg.DB.Driver, applies
// migrations to SQL backends and returns its repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.DB.Driver {
	case config.DriverMemory, "":
		log.Warn().Str("func", "NewStorages").Msg("using in-memory storage; data is lost on restart")
		return &Storages{
			Documents: NewMemoryDocumentRepository(),
			Sessions:  NewMemorySessionRepository(),
		}, nil
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidStorageConfigs, cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("failed to apply migrations")
		_ = db.Close()
		return nil, err
	}

	return &Storages{
		Documents: NewDocumentRepository(db),
		Sessions:  NewSessionRepository(db),
		db:        db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
