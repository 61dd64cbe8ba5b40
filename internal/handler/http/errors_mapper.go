package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/crypto"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/service"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/internal/utils"
	"github.com/MKhiriev/go-cix-vault/models"
)

type errorStatus struct {
	target error
	status int
}

// errorStatuses is checked in order. A vault error wrapped in a field
// encryption error carries both sentinels, so the more specific ones come
// first.
var errorStatuses = []errorStatus{
	{secctx.ErrNoCredential, http.StatusUnauthorized},
	{adapter.ErrVaultNotConfigured, http.StatusInternalServerError},
	{adapter.ErrTransport, http.StatusBadGateway},
	{adapter.ErrIntegrity, http.StatusBadGateway},

	{store.ErrDocumentNotFound, http.StatusNotFound},
	{store.ErrUnknownCollection, http.StatusNotFound},
	{models.ErrUnknownModel, http.StatusNotFound},
	{ErrRouteNotFound, http.StatusNotFound},
	{ErrMethodNotAllowed, http.StatusMethodNotAllowed},

	{ErrInvalidBody, http.StatusBadRequest},
	{store.ErrInvalidReplacement, http.StatusBadRequest},
	{store.ErrUnsupportedOperator, http.StatusBadRequest},
	{crypto.ErrMarshalField, http.StatusBadRequest},
	{service.ErrInvalidSessionTokens, http.StatusBadRequest},
	{store.ErrDuplicateDocument, http.StatusConflict},

	{store.ErrTransientDB, http.StatusServiceUnavailable},
}

func statusFromError(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes it as a JSON error response. Server-side
// failures are reported with their status text only.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	utils.WriteError(w, msg, traceIDFromContext(r.Context()), status)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, ErrRouteNotFound)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, ErrMethodNotAllowed)
}
