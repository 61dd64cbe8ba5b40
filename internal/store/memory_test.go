package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-cix-vault/models"
)

func TestMemoryDocumentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()

	in := models.Document{"_id": "a1", "content": []any{"x"}}
	require.NoError(t, repo.Insert(ctx, models.ModelMessage, in))

	// stored values are copies
	in["content"].([]any)[0] = "mutated"

	docs, err := repo.Find(ctx, models.ModelMessage, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []any{"x"}, docs[0]["content"])

	t.Run("duplicate id rejects whole batch", func(t *testing.T) {
		err := repo.Insert(ctx, models.ModelMessage, models.Document{"_id": "b1"}, models.Document{"_id": "a1"})
		require.ErrorIs(t, err, ErrDuplicateDocument)

		_, ok := repo.Raw(models.ModelMessage, "b1")
		assert.False(t, ok)
	})

	t.Run("models are separate", func(t *testing.T) {
		docs, err := repo.Find(ctx, models.ModelFile, nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("replace missing rejects whole batch", func(t *testing.T) {
		err := repo.Replace(ctx, models.ModelMessage,
			models.Document{"_id": "a1", "content": "changed"},
			models.Document{"_id": "zz"},
		)
		require.ErrorIs(t, err, ErrDocumentNotFound)

		raw, _ := repo.Raw(models.ModelMessage, "a1")
		assert.Equal(t, []any{"x"}, raw["content"])
	})

	t.Run("replace", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, models.ModelMessage, models.Document{"_id": "a1", "content": "changed"}))
		raw, _ := repo.Raw(models.ModelMessage, "a1")
		assert.Equal(t, "changed", raw["content"])
	})
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()

	_, err := repo.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, repo.UpdateTokens(ctx, "s1", models.OpenIDTokens{}), ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, models.Session{ID: "s1", Tokens: models.OpenIDTokens{AccessToken: "old"}}))
	require.NoError(t, repo.UpdateTokens(ctx, "s1", models.OpenIDTokens{AccessToken: "new"}))

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new", s.Tokens.AccessToken)
	assert.False(t, s.UpdatedAt.IsZero())
}
