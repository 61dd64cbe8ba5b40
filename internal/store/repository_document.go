package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/models"
)

// documentRepository stores documents as JSON bodies in the documents
// table. The id lives in its own column and is stripped from the body.
type documentRepository struct {
	*DB
	now func() time.Time
}

// NewDocumentRepository constructs a [DocumentRepository] over db.
func NewDocumentRepository(db *DB) DocumentRepository {
	return &documentRepository{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *documentRepository) Insert(ctx context.Context, model models.ModelName, docs ...models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	rows, err := encodeDocuments(docs)
	if err != nil {
		return err
	}

	query, args, err := buildInsertDocumentsQuery(r.builder(), model, rows, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	// one multi-row statement, so the insert is all or nothing
	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "documentRepository.Insert").
			Str("model", model.String()).
			Int("count", len(rows)).
			Msg("failed to insert documents")
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrDuplicateDocument, err)
		}
		return r.wrap(ErrExecutingStatement, err)
	}

	return nil
}

func (r *documentRepository) Find(ctx context.Context, model models.ModelName, filter models.Filter) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindDocumentsQuery(r.builder(), model, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Find").
			Str("model", model.String()).
			Msg("failed to execute query for finding documents")
		return nil, r.wrap(ErrExecutingQuery, err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var row documentRow
		if err = rows.Scan(&row.ID, &row.Body); err != nil {
			log.Err(err).
				Str("func", "documentRepository.Find").
				Str("model", model.String()).
				Msg("failed to scan document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		doc, decodeErr := decodeDocument(row)
		if decodeErr != nil {
			return nil, decodeErr
		}
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "documentRepository.Find").
			Str("model", model.String()).
			Msg("error occurred during rows iteration")
		return nil, r.wrap(ErrScanningRows, err)
	}

	return docs, nil
}

func (r *documentRepository) Replace(ctx context.Context, model models.ModelName, docs ...models.Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	rows, err := encodeDocuments(docs)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "documentRepository.Replace").Msg("failed to begin transaction")
		return r.wrap(ErrBeginningTransaction, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Err(rbErr).Str("func", "documentRepository.Replace").Msg("failed to rollback transaction")
			}
		}
	}()

	now := r.now()
	for _, row := range rows {
		query, args, buildErr := buildReplaceDocumentQuery(r.builder(), model, row, now)
		if buildErr != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}

		res, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "documentRepository.Replace").
				Str("model", model.String()).
				Str("id", row.ID).
				Msg("failed to update document")
			return r.wrap(ErrExecutingStatement, execErr)
		}

		affected, affErr := res.RowsAffected()
		if affErr != nil {
			return r.wrap(ErrExecutingStatement, affErr)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, model, row.ID)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "documentRepository.Replace").Msg("failed to commit transaction")
		return r.wrap(ErrCommitingTransaction, err)
	}

	return nil
}

func encodeDocuments(docs []models.Document) ([]documentRow, error) {
	rows := make([]documentRow, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			return nil, fmt.Errorf("%w: document without id", ErrExecutingStatement)
		}

		body := doc.Clone()
		delete(body, models.DocumentIDField)

		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding document %s: %w", id, err)
		}
		rows[i] = documentRow{ID: id, Body: string(raw)}
	}
	return rows, nil
}

func decodeDocument(row documentRow) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal([]byte(row.Body), &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: id %s", ErrDecodingDocument, row.ID)
	}
	doc[models.DocumentIDField] = row.ID
	return doc, nil
}
