package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-cix-vault/internal/config"
)

// newTokenEndpoint serves the refresh_token grant and counts calls.
func newTokenEndpoint(t *testing.T, calls *atomic.Int32, accessToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// long enough for concurrent callers to pile up on one refresh
		time.Sleep(20 * time.Millisecond)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "good-refresh" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"` + accessToken + `","token_type":"Bearer","expires_in":3600,"refresh_token":"next-refresh","id_token":"new-id"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOAuth2Refresher_NilWithoutTokenURL(t *testing.T) {
	assert.Nil(t, NewOAuth2Refresher(config.OpenID{ClientID: "cix"}))
}

func TestOAuth2Refresher_Refresh(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenEndpoint(t, &calls, "new-access")

	r := NewOAuth2Refresher(config.OpenID{TokenURL: srv.URL, ClientID: "cix", ClientSecret: "s", Timeout: time.Second})
	require.NotNil(t, r)

	tokens, err := r.Refresh(context.Background(), "good-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "next-refresh", tokens.RefreshToken)
	assert.Equal(t, "new-id", tokens.IDToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.ExpiresAt, time.Minute)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestOAuth2Refresher_Rejected(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenEndpoint(t, &calls, "new-access")

	r := NewOAuth2Refresher(config.OpenID{TokenURL: srv.URL, ClientID: "cix", Timeout: time.Second})

	_, err := r.Refresh(context.Background(), "revoked")
	assert.Error(t, err)
}
