// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/crypto"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/models"
)

// FieldEncryptor installs vault encryption hooks on model schemas.
//
// Writes encrypt every declared field before the document reaches the
// repository and fail the write if the cipher service does. Reads decrypt
// every marked field of the returned documents in one batch; a JSON field
// that does not parse after decryption keeps its raw plaintext.
type FieldEncryptor struct {
	adapter         adapter.VaultAdapter
	bulkConcurrency int
	trace           bool
	logger          *logger.Logger
}

func NewFieldEncryptor(vault adapter.VaultAdapter, cfg config.Vault, log *logger.Logger) *FieldEncryptor {
	limit := cfg.BulkConcurrency
	if limit <= 0 {
		limit = config.DefaultVaultBulkConcurrency
	}
	return &FieldEncryptor{
		adapter:         vault,
		bulkConcurrency: limit,
		trace:           cfg.Trace,
		logger:          log,
	}
}

// Install binds the encryption hooks of model to schema. It returns false
// without touching schema if model is already installed there.
func (e *FieldEncryptor) Install(schema *store.Schema, model models.ModelName, spec models.EncryptionSpec) bool {
	if !schema.MarkInstalled(installKey(model)) {
		return false
	}

	schema.PreCreate(func(ctx context.Context, doc models.Document) error {
		return e.encryptDocument(ctx, model, "create", spec, doc)
	})
	schema.PreInsertMany(func(ctx context.Context, docs []models.Document) error {
		return e.encryptMany(ctx, model, spec, docs)
	})
	schema.PreUpdate(func(ctx context.Context, q *store.UpdateQuery) error {
		return e.encryptUpdate(ctx, model, spec, q)
	})
	schema.PostFind(func(ctx context.Context, docs []models.Document) error {
		return e.decrypt(ctx, model, "find", spec, docs)
	})
	schema.PostFindOne(func(ctx context.Context, op store.QueryOp, doc models.Document) error {
		return e.decrypt(ctx, model, string(op), spec, []models.Document{doc})
	})

	e.logger.Verbose(e.trace).Str("model", model.String()).Msg("vault hooks installed")
	return true
}

func installKey(model models.ModelName) string {
	return "vault:" + model.String()
}

func (e *FieldEncryptor) encryptDocument(ctx context.Context, model models.ModelName, event string, spec models.EncryptionSpec, doc models.Document) error {
	items, err := crypto.CollectEncryptionTargets(doc, spec)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFieldEncryption, model, err)
	}
	return e.encryptItems(ctx, model, event, items)
}

// encryptMany encrypts each document in its own batch, at most
// bulkConcurrency at a time. The first failure cancels the rest.
func (e *FieldEncryptor) encryptMany(ctx context.Context, model models.ModelName, spec models.EncryptionSpec, docs []models.Document) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.bulkConcurrency)

	for _, doc := range docs {
		g.Go(func() error {
			return e.encryptDocument(gctx, model, "insertMany", spec, doc)
		})
	}
	return g.Wait()
}

// encryptUpdate encrypts declared fields found at the top level of the
// payload and inside its $set and $setOnInsert documents, in one batch.
func (e *FieldEncryptor) encryptUpdate(ctx context.Context, model models.ModelName, spec models.EncryptionSpec, q *store.UpdateQuery) error {
	payload := q.Update()
	if payload == nil {
		return nil
	}

	containers := []models.Document{payload}
	for _, key := range []string{store.OperatorSet, store.OperatorSetOnInsert} {
		if sub, ok := payload[key].(map[string]any); ok {
			containers = append(containers, sub)
		}
	}

	var items []crypto.BatchItem
	for _, c := range containers {
		collected, err := crypto.CollectEncryptionTargets(c, spec)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFieldEncryption, model, err)
		}
		items = append(items, collected...)
	}

	if err := e.encryptItems(ctx, model, string(q.Op()), items); err != nil {
		return err
	}
	q.SetUpdate(payload)
	return nil
}

func (e *FieldEncryptor) encryptItems(ctx context.Context, model models.ModelName, event string, items []crypto.BatchItem) error {
	if len(items) == 0 {
		return nil
	}

	logger.FromContext(ctx).Verbose(e.trace).
		Str("model", model.String()).
		Str("event", event).
		Strs("fields", crypto.Fields(items)).
		Int("count", len(items)).
		Msg("encrypting fields")

	ciphertexts, err := e.adapter.EncryptBatch(ctx, crypto.Values(items))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFieldEncryption, model, err)
	}
	if err = crypto.ApplyEncryptedBatch(items, ciphertexts); err != nil {
		return fmt.Errorf("%w: %s: %w: %w", ErrFieldEncryption, model, adapter.ErrIntegrity, err)
	}
	return nil
}

func (e *FieldEncryptor) decrypt(ctx context.Context, model models.ModelName, event string, spec models.EncryptionSpec, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	items := crypto.CollectDecryptionTargets(docs, spec)
	if len(items) == 0 {
		return nil
	}

	log.Verbose(e.trace).
		Str("model", model.String()).
		Str("event", event).
		Strs("fields", crypto.Fields(items)).
		Int("documents", len(docs)).
		Int("count", len(items)).
		Msg("decrypting fields")

	plaintexts, err := e.adapter.DecryptBatch(ctx, crypto.Values(items))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFieldDecryption, model, err)
	}

	recovered, err := crypto.ApplyDecryptedBatch(items, plaintexts)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFieldDecryption, model, errors.Join(adapter.ErrIntegrity, err))
	}
	for _, item := range recovered {
		log.Warn().
			Str("model", model.String()).
			Str("field", item.Field).
			Str("id", item.Doc.ID()).
			Msg("decrypted JSON field did not parse; kept raw value")
	}
	return nil
}

// RegisterVaultEncryption registers an encryption plugin for every model in
// specs that declares at least one field. Nothing is registered when no
// vault URL is configured.
func RegisterVaultEncryption(registry *store.PluginRegistry, encryptor *FieldEncryptor, cfg config.Vault, specs map[models.ModelName]models.EncryptionSpec, log *logger.Logger) error {
	if !cfg.EncryptionEnabled() {
		log.Warn().Msg("vault url is not configured; field encryption is disabled")
		return nil
	}

	registered := make([]string, 0, len(specs))
	for _, model := range models.KnownModels {
		spec, ok := specs[model]
		if !ok || spec.IsEmpty() {
			continue
		}
		if err := registry.Register(model, func(schema *store.Schema) {
			encryptor.Install(schema, model, spec)
		}); err != nil {
			return err
		}
		registered = append(registered, model.String())
	}

	log.Warn().
		Strs("models", registered).
		Str("vault_url", cfg.URL).
		Bool("trace", cfg.Trace).
		Msg("vault field encryption registered")
	return nil
}
