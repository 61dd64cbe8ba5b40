package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/crypto"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/models"
)

// cipherServer is an httptest cipher service that records the bearer
// tokens it was called with.
type cipherServer struct {
	*httptest.Server

	mu     sync.Mutex
	tokens []string
}

func newCipherServer(t *testing.T) *cipherServer {
	t.Helper()
	cs := &cipherServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.tokens = append(cs.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		cs.mu.Unlock()

		var req models.CipherRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([]string, len(req.Values))
		for i, v := range req.Values {
			switch r.URL.Path {
			case "/encrypt":
				out[i] = crypto.CipherPrefix + v
			case "/decrypt":
				out[i] = strings.TrimPrefix(v, crypto.CipherPrefix)
			default:
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.CipherResponse{OK: true, Values: out})
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *cipherServer) seenTokens() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.tokens...)
}

func TestServices_ConcurrentWritesRefreshOnce(t *testing.T) {
	vaultSrv := newCipherServer(t)
	var tokenCalls atomic.Int32
	idp := newTokenEndpoint(t, &tokenCalls, "fresh-access")

	cfg := config.StructuredConfig{
		App:   config.App{Version: "test"},
		Vault: config.Vault{URL: vaultSrv.URL, Timeout: 2 * time.Second},
		OpenID: config.OpenID{
			ReuseTokens: true,
			RefreshSkew: 30 * time.Second,
			TokenURL:    idp.URL,
			ClientID:    "cix",
			Timeout:     2 * time.Second,
		},
	}

	vault, err := adapter.NewHTTPVaultAdapter(cfg.Vault, logger.Nop())
	require.NoError(t, err)

	storages := &store.Storages{
		Documents: store.NewMemoryDocumentRepository(),
		Sessions:  store.NewMemorySessionRepository(),
	}
	require.NoError(t, storages.Sessions.Save(context.Background(), models.Session{
		ID:     "sid-1",
		UserID: "user-1",
		Tokens: models.OpenIDTokens{
			AccessToken:  "stale-access",
			RefreshToken: "good-refresh",
			ExpiresAt:    time.Now().Add(5 * time.Second),
		},
	}))

	svc, err := NewServices(storages, vault, cfg, logger.Nop())
	require.NoError(t, err)

	messages, err := svc.Collections.Get(models.ModelMessage)
	require.NoError(t, err)

	const writers = 5
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc := svc.TokenService.ResolveCredential(context.Background(), CredentialRequest{SessionID: "sid-1"})
			errs[i] = secctx.RunWithContext(context.Background(), sc, func(ctx context.Context) error {
				_, err := messages.Create(ctx, models.Document{"text": "hello", "chat": "c1"})
				return err
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), tokenCalls.Load(), "one refresh serves every request")

	seen := vaultSrv.seenTokens()
	require.Len(t, seen, writers)
	for _, tok := range seen {
		assert.Equal(t, "fresh-access", tok)
	}

	session, err := storages.Sessions.Get(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", session.Tokens.AccessToken)
	assert.Equal(t, "next-refresh", session.Tokens.RefreshToken)

	// reads decrypt with the same credential
	ctx := secctx.WithSecurityContext(context.Background(), secctx.SecurityContext{AccessToken: "fresh-access", Source: secctx.SourceSession})
	docs, err := messages.Find(ctx, models.Filter{"chat": "c1"})
	require.NoError(t, err)
	require.Len(t, docs, writers)
	for _, d := range docs {
		assert.Equal(t, "hello", d["text"])
	}
}

func TestServices_WriteWithoutCredentialFails(t *testing.T) {
	vaultSrv := newCipherServer(t)
	cfg := config.StructuredConfig{App: config.App{Version: "test"}, Vault: config.Vault{URL: vaultSrv.URL}}

	vault, err := adapter.NewHTTPVaultAdapter(cfg.Vault, logger.Nop())
	require.NoError(t, err)

	svc, err := NewServices(&store.Storages{
		Documents: store.NewMemoryDocumentRepository(),
		Sessions:  store.NewMemorySessionRepository(),
	}, vault, cfg, logger.Nop())
	require.NoError(t, err)

	messages, err := svc.Collections.Get(models.ModelMessage)
	require.NoError(t, err)

	_, err = messages.Create(context.Background(), models.Document{"text": "hello"})
	assert.ErrorIs(t, err, secctx.ErrNoCredential)
	assert.Empty(t, vaultSrv.seenTokens())
}

func TestServices_EncryptionDisabledStoresPlaintext(t *testing.T) {
	vault, err := adapter.NewHTTPVaultAdapter(config.Vault{}, logger.Nop())
	require.NoError(t, err)

	docs := store.NewMemoryDocumentRepository()
	svc, err := NewServices(&store.Storages{Documents: docs, Sessions: store.NewMemorySessionRepository()}, vault, config.StructuredConfig{App: config.App{Version: "test"}}, logger.Nop())
	require.NoError(t, err)

	messages, err := svc.Collections.Get(models.ModelMessage)
	require.NoError(t, err)

	created, err := messages.Create(context.Background(), models.Document{"text": "hello"})
	require.NoError(t, err)

	raw, ok := docs.Raw(models.ModelMessage, created.ID())
	require.True(t, ok)
	assert.Equal(t, "hello", raw["text"])
}
