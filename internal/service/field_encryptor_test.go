// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/crypto"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/mock"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/models"
)

// ─────────────────────────────────────────────
// Fake cipher service
// ─────────────────────────────────────────────

// fakeVault "encrypts" by adding the cipher prefix and "decrypts" by
// removing it.
type fakeVault struct {
	mu          sync.Mutex
	encryptErr  error
	decryptErr  error
	failOn      string
	decryptWith func(string) string

	encryptCalls atomic.Int32
	decryptCalls atomic.Int32
	batches      [][]string
}

func (f *fakeVault) EncryptBatch(_ context.Context, values []string) ([]string, error) {
	f.encryptCalls.Add(1)
	f.record(values)
	if f.encryptErr != nil {
		return nil, f.encryptErr
	}
	out := make([]string, len(values))
	for i, v := range values {
		if f.failOn != "" && v == f.failOn {
			return nil, adapter.ErrTransport
		}
		out[i] = crypto.CipherPrefix + v
	}
	return out, nil
}

func (f *fakeVault) DecryptBatch(_ context.Context, values []string) ([]string, error) {
	f.decryptCalls.Add(1)
	f.record(values)
	if f.decryptErr != nil {
		return nil, f.decryptErr
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimPrefix(v, crypto.CipherPrefix)
		if f.decryptWith != nil {
			out[i] = f.decryptWith(out[i])
		}
	}
	return out, nil
}

func (f *fakeVault) record(values []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), values...))
}

var messageSpec = models.EncryptionSpec{
	StringFields: []string{"text"},
	JSONFields:   []models.JSONField{{Name: "content", WrapArray: true}},
}

func newEncryptedCollection(t *testing.T, vault adapter.VaultAdapter, cfg config.Vault) (*store.Collection, *store.MemoryDocumentRepository) {
	t.Helper()

	repo := store.NewMemoryDocumentRepository()
	schema := store.NewSchema()
	NewFieldEncryptor(vault, cfg, logger.Nop()).Install(schema, models.ModelMessage, messageSpec)
	return store.NewCollection(models.ModelMessage, schema, repo), repo
}

// ─────────────────────────────────────────────
// Write then read
// ─────────────────────────────────────────────

func TestFieldEncryptor_RoundTrip(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	created, err := coll.Create(ctx, models.Document{
		"text":    "hello",
		"content": []any{map[string]any{"a": 1}},
		"chat":    "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), vault.encryptCalls.Load(), "all fields go in one batch")

	raw, ok := repo.Raw(models.ModelMessage, created.ID())
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw["text"].(string), crypto.CipherPrefix))
	content, ok := raw["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	assert.True(t, crypto.IsCiphertext(content[0]))
	assert.Equal(t, "c1", raw["chat"])

	got, err := coll.FindOne(ctx, models.Filter{"_id": created.ID()})
	require.NoError(t, err)
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, []any{map[string]any{"a": float64(1)}}, got["content"])
}

func TestFieldEncryptor_AbsentFieldIsSkipped(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{})

	created, err := coll.Create(context.Background(), models.Document{"text": "hello"})
	require.NoError(t, err)

	require.Len(t, vault.batches, 1)
	assert.Equal(t, []string{"hello"}, vault.batches[0])

	raw, _ := repo.Raw(models.ModelMessage, created.ID())
	assert.NotContains(t, raw, "content")
}

func TestFieldEncryptor_NothingToEncryptSkipsVault(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := mock.NewMockVaultAdapter(ctrl)
	coll, _ := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	_, err := coll.Create(ctx, models.Document{"chat": "c1", "content": nil})
	require.NoError(t, err)

	docs, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFieldEncryptor_EncryptFailureAbortsWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := mock.NewMockVaultAdapter(ctrl)
	vault.EXPECT().EncryptBatch(gomock.Any(), []string{"hello"}).Return(nil, adapter.ErrVaultNotConfigured)

	coll, _ := newEncryptedCollection(t, vault, config.Vault{})

	_, err := coll.Create(context.Background(), models.Document{"text": "hello"})
	require.ErrorIs(t, err, ErrFieldEncryption)
	assert.ErrorIs(t, err, adapter.ErrVaultNotConfigured)

	docs, err := coll.Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs, "plaintext must never be persisted")
}

func TestFieldEncryptor_ShortBatchIsIntegrityError(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := mock.NewMockVaultAdapter(ctrl)
	vault.EXPECT().EncryptBatch(gomock.Any(), gomock.Len(2)).Return([]string{crypto.CipherPrefix + "x"}, nil)

	coll, _ := newEncryptedCollection(t, vault, config.Vault{})

	_, err := coll.Create(context.Background(), models.Document{"text": "hello", "content": "world"})
	assert.ErrorIs(t, err, adapter.ErrIntegrity)
}

// ─────────────────────────────────────────────
// Installation
// ─────────────────────────────────────────────

func TestFieldEncryptor_InstallIsIdempotentPerSchema(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := mock.NewMockVaultAdapter(ctrl)
	vault.EXPECT().
		EncryptBatch(gomock.Any(), []string{"hello"}).
		Return([]string{crypto.CipherPrefix + "hello"}, nil).
		Times(1)

	enc := NewFieldEncryptor(vault, config.Vault{}, logger.Nop())
	schema := store.NewSchema()

	assert.True(t, enc.Install(schema, models.ModelMessage, messageSpec))
	assert.False(t, enc.Install(schema, models.ModelMessage, messageSpec))

	coll := store.NewCollection(models.ModelMessage, schema, store.NewMemoryDocumentRepository())
	_, err := coll.Create(context.Background(), models.Document{"text": "hello"})
	require.NoError(t, err)
}

func TestFieldEncryptor_SeparateSchemasInstallSeparately(t *testing.T) {
	enc := NewFieldEncryptor(&fakeVault{}, config.Vault{}, logger.Nop())

	assert.True(t, enc.Install(store.NewSchema(), models.ModelMessage, messageSpec))
	assert.True(t, enc.Install(store.NewSchema(), models.ModelMessage, messageSpec))
}

// ─────────────────────────────────────────────
// Bulk insert
// ─────────────────────────────────────────────

func TestFieldEncryptor_InsertManyEncryptsEachDocument(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{BulkConcurrency: 2})

	docs := make([]models.Document, 5)
	for i := range docs {
		docs[i] = models.Document{"text": strings.Repeat("x", i+1)}
	}

	created, err := coll.InsertMany(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, int32(5), vault.encryptCalls.Load())

	for i, c := range created {
		raw, ok := repo.Raw(models.ModelMessage, c.ID())
		require.True(t, ok)
		assert.Equal(t, crypto.CipherPrefix+strings.Repeat("x", i+1), raw["text"])
	}
}

func TestFieldEncryptor_InsertManyFailureAbortsAll(t *testing.T) {
	vault := &fakeVault{failOn: "bad"}
	coll, _ := newEncryptedCollection(t, vault, config.Vault{BulkConcurrency: 1})

	_, err := coll.InsertMany(context.Background(), []models.Document{
		{"text": "good"},
		{"text": "bad"},
		{"text": "fine"},
	})
	require.ErrorIs(t, err, adapter.ErrTransport)

	docs, err := coll.Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// ─────────────────────────────────────────────
// Updates
// ─────────────────────────────────────────────

func TestFieldEncryptor_UpdateEncryptsEveryContainer(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	_, err := coll.UpdateOne(ctx,
		models.Filter{"chat": "c1"},
		models.Document{
			"$set":         map[string]any{"text": "set text", "chat": "c1"},
			"$setOnInsert": map[string]any{"content": []any{"first"}},
		},
		models.UpdateOptions{Upsert: true},
	)
	require.NoError(t, err)
	assert.Equal(t, int32(1), vault.encryptCalls.Load(), "all containers go in one batch")

	docs, err := repo.Find(ctx, models.ModelMessage, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	raw := docs[0]
	assert.Equal(t, crypto.CipherPrefix+"set text", raw["text"])
	assert.Equal(t, []any{crypto.CipherPrefix + `["first"]`}, raw["content"])

	_, err = coll.UpdateOne(ctx, models.Filter{"chat": "c1"}, models.Document{"text": "plain key"}, models.UpdateOptions{})
	require.NoError(t, err)

	docs, _ = repo.Find(ctx, models.ModelMessage, nil)
	assert.Equal(t, crypto.CipherPrefix+"plain key", docs[0]["text"])
}

func TestFieldEncryptor_UpsertEncryptsFilterSeed(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	res, err := coll.UpdateOne(ctx,
		models.Filter{"text": "secret-from-filter"},
		models.Document{"$set": map[string]any{"chat": "c1"}},
		models.UpdateOptions{Upsert: true},
	)
	require.NoError(t, err)
	require.NotEmpty(t, res.UpsertedID)
	assert.Equal(t, int32(1), vault.encryptCalls.Load())

	raw, ok := repo.Raw(models.ModelMessage, res.UpsertedID)
	require.True(t, ok)
	assert.Equal(t, crypto.CipherPrefix+"secret-from-filter", raw["text"])
	assert.Equal(t, "c1", raw["chat"])

	got, err := coll.FindOne(ctx, models.Filter{"_id": res.UpsertedID})
	require.NoError(t, err)
	assert.Equal(t, "secret-from-filter", got["text"])
}

func TestFieldEncryptor_ReplaceAndReturnDecrypted(t *testing.T) {
	vault := &fakeVault{}
	coll, repo := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	created, err := coll.Create(ctx, models.Document{"text": "v1"})
	require.NoError(t, err)

	got, err := coll.FindOneAndReplace(ctx, models.Filter{"_id": created.ID()}, models.Document{"text": "v2"}, models.UpdateOptions{ReturnNew: true})
	require.NoError(t, err)
	assert.Equal(t, "v2", got["text"])

	raw, _ := repo.Raw(models.ModelMessage, created.ID())
	assert.Equal(t, crypto.CipherPrefix+"v2", raw["text"])

	before, err := coll.FindOneAndUpdate(ctx, models.Filter{"_id": created.ID()}, models.Document{"$set": map[string]any{"text": "v3"}}, models.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v2", before["text"])
}

func TestFieldEncryptor_UpdateWithoutPayloadIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := mock.NewMockVaultAdapter(ctrl)
	enc := NewFieldEncryptor(vault, config.Vault{}, logger.Nop())

	q := &store.UpdateQuery{}
	require.NoError(t, enc.encryptUpdate(context.Background(), models.ModelMessage, messageSpec, q))
	assert.Nil(t, q.Update())
}

// ─────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────

func TestFieldEncryptor_FindDecryptsAllDocumentsInOneBatch(t *testing.T) {
	vault := &fakeVault{}
	coll, _ := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	_, err := coll.InsertMany(ctx, []models.Document{{"text": "a"}, {"text": "b"}, {"chat": "no secrets"}})
	require.NoError(t, err)

	docs, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0]["text"])
	assert.Equal(t, "b", docs[1]["text"])
	assert.Equal(t, int32(1), vault.decryptCalls.Load())
}

func TestFieldEncryptor_DecryptTransportFailureFailsRead(t *testing.T) {
	vault := &fakeVault{}
	coll, _ := newEncryptedCollection(t, vault, config.Vault{})
	ctx := context.Background()

	_, err := coll.Create(ctx, models.Document{"text": "a"})
	require.NoError(t, err)

	vault.decryptErr = errors.Join(adapter.ErrTransport, errors.New("connection refused"))

	docs, err := coll.Find(ctx, nil)
	require.ErrorIs(t, err, ErrFieldDecryption)
	assert.ErrorIs(t, err, adapter.ErrTransport)
	assert.Nil(t, docs)
}

func TestFieldEncryptor_MalformedJSONIsRecovered(t *testing.T) {
	vault := &fakeVault{}
	coll, _ := newEncryptedCollection(t, vault, config.Vault{Trace: true})
	ctx := context.Background()

	created, err := coll.Create(ctx, models.Document{"content": []any{"x"}})
	require.NoError(t, err)

	vault.decryptWith = func(string) string { return "{not json" }

	got, err := coll.FindOne(ctx, models.Filter{"_id": created.ID()})
	require.NoError(t, err)
	assert.Equal(t, "{not json", got["content"])
}

// ─────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────

func TestRegisterVaultEncryption_DisabledWithoutURL(t *testing.T) {
	registry := store.NewPluginRegistry()
	enc := NewFieldEncryptor(&fakeVault{}, config.Vault{}, logger.Nop())

	err := RegisterVaultEncryption(registry, enc, config.Vault{}, models.DefaultEncryptionSpecs(), logger.Nop())
	require.NoError(t, err)

	for _, m := range models.KnownModels {
		assert.Zero(t, registry.Len(m))
	}
}

func TestRegisterVaultEncryption_RegistersNonEmptySpecs(t *testing.T) {
	registry := store.NewPluginRegistry()
	cfg := config.Vault{URL: "http://vault"}
	enc := NewFieldEncryptor(&fakeVault{}, cfg, logger.Nop())

	specs := models.DefaultEncryptionSpecs()
	specs[models.ModelFile] = models.EncryptionSpec{}

	require.NoError(t, RegisterVaultEncryption(registry, enc, cfg, specs, logger.Nop()))

	assert.Equal(t, 1, registry.Len(models.ModelMessage))
	assert.Equal(t, 1, registry.Len(models.ModelToolCall))
	assert.Equal(t, 1, registry.Len(models.ModelMemoryEntry))
	assert.Zero(t, registry.Len(models.ModelFile))

	// building collections twice installs once per schema
	cs := store.NewCollections(store.NewMemoryDocumentRepository(), registry)
	c, err := cs.Get(models.ModelMessage)
	require.NoError(t, err)
	assert.True(t, c.Schema().IsInstalled(installKey(models.ModelMessage)))
}
