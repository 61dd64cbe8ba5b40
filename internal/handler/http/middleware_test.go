package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/mock/servicemock"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/service"
)

// ─────────────────────────────────────────────
// withTraceID
// ─────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "reuses incoming id", incoming: "my-custom-trace-id"},
		{name: "generates uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = traceIDFromContext(r.Context())
				logger.FromRequest(r).Info().Msg("inside")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(traceIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rec, req)

			got := rec.Header().Get(traceIDHeader)
			assert.Equal(t, got, seen)
			assert.Contains(t, buf.String(), `"trace_id":"`+got+`"`)

			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestTraceIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, traceIDFromContext(context.Background()))
}

// ─────────────────────────────────────────────
// withLogging
// ─────────────────────────────────────────────

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	h := &Handler{logger: logger.Nop()}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("Created"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/documents/message", nil)
	req = req.WithContext(l.WithContext(req.Context()))
	h.withLogging(next).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"uri":"/api/documents/message"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"size":7`)
	assert.Contains(t, out, `"duration":`)
}

// ─────────────────────────────────────────────
// withMetrics
// ─────────────────────────────────────────────

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPMetrics struct {
	got []recordedRequest
}

func (f *fakeHTTPMetrics) RecordRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, route, status})
}

func TestWithMetrics_UsesRoutePattern(t *testing.T) {
	fake := &fakeHTTPMetrics{}
	h := NewHandler(&service.Services{}, nil, logger.Nop())
	h.metrics = fake

	ctrl := gomock.NewController(t)
	appInfo := servicemock.NewMockAppInfoService(ctrl)
	appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("1.0.0")
	h.services.AppInfoService = appInfo

	router := h.Init()
	for _, path := range []string{"/api/version/", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, fake.got, 2)
	// chi reports the pattern without its trailing slash
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/version", http.StatusOK}, fake.got[0])
	assert.Equal(t, http.StatusNotFound, fake.got[1].status)
}

// ─────────────────────────────────────────────
// withSecurityContext
// ─────────────────────────────────────────────

func TestWithSecurityContext_PassesAllInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := servicemock.NewMockTokenService(ctrl)

	want := secctx.SecurityContext{AccessToken: "resolved", Source: secctx.SourceSessionRefreshed}
	tokens.EXPECT().
		ResolveCredential(gomock.Any(), service.CredentialRequest{
			AuthorizationHeader: "Bearer h",
			SessionID:           "sid-1",
			CookieToken:         "legacy",
		}).
		Return(want)

	h := NewHandler(&service.Services{TokenService: tokens}, nil, logger.Nop())

	var got secctx.SecurityContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = secctx.FromContext(r.Context())
		assert.True(t, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer h")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sid-1"})
	req.AddCookie(&http.Cookie{Name: legacyTokenCookieName, Value: "legacy"})
	h.withSecurityContext(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, want, got)
}

func TestWithSecurityContext_NoInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := servicemock.NewMockTokenService(ctrl)
	tokens.EXPECT().
		ResolveCredential(gomock.Any(), service.CredentialRequest{}).
		Return(secctx.SecurityContext{Source: secctx.SourceNone})

	h := NewHandler(&service.Services{TokenService: tokens}, nil, logger.Nop())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := secctx.CurrentCredential(r.Context())
		assert.False(t, ok)
	})
	h.withSecurityContext(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called, "requests without a credential are not rejected here")
}

// ─────────────────────────────────────────────
// responseWriter
// ─────────────────────────────────────────────

func TestResponseWriter(t *testing.T) {
	t.Run("implicit 200", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := &responseWriter{ResponseWriter: rec}

		_, err := w.Write([]byte("hello"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.statusCode())
		assert.Equal(t, 5, w.size)
	})

	t.Run("second WriteHeader ignored", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := &responseWriter{ResponseWriter: rec}

		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)

		assert.Equal(t, http.StatusCreated, w.statusCode())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("nothing written", func(t *testing.T) {
		w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		assert.Equal(t, http.StatusOK, w.statusCode())
		assert.Same(t, w.ResponseWriter, w.Unwrap())
	})
}
