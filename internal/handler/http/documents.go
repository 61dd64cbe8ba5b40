package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/internal/utils"
	"github.com/MKhiriev/go-cix-vault/models"
)

// maxBodyBytes bounds document request bodies.
const maxBodyBytes = 8 << 20

// createDocuments stores one document when the body is an object and every
// element when it is an array.
func (h *Handler) createDocuments(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	var body any
	if err := h.decodeBody(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	switch v := body.(type) {
	case map[string]any:
		created, err := coll.Create(r.Context(), models.Document(v))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, created, http.StatusCreated)

	case []any:
		docs := make([]models.Document, len(v))
		for i, elem := range v {
			obj, isObj := elem.(map[string]any)
			if !isObj {
				h.writeError(w, r, fmt.Errorf("%w: element %d is not an object", ErrInvalidBody, i))
				return
			}
			docs[i] = obj
		}
		created, err := coll.InsertMany(r.Context(), docs)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, created, http.StatusCreated)

	default:
		h.writeError(w, r, fmt.Errorf("%w: expected an object or an array", ErrInvalidBody))
	}
}

// findDocuments treats every query parameter as an equality filter on the
// field of the same name.
func (h *Handler) findDocuments(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	filter := models.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}

	docs, err := coll.Find(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, docs, http.StatusOK)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	doc, err := coll.FindOne(r.Context(), idFilter(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, doc, http.StatusOK)
}

// updateDocument applies an update document ($set, $unset, $setOnInsert or
// plain fields) and returns the updated document. ?upsert=true creates the
// document when it does not exist.
func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	h.modifyDocument(w, r, (*store.Collection).FindOneAndUpdate)
}

// replaceDocument swaps the whole document body, keeping its id.
func (h *Handler) replaceDocument(w http.ResponseWriter, r *http.Request) {
	h.modifyDocument(w, r, (*store.Collection).FindOneAndReplace)
}

type modifyFunc func(c *store.Collection, ctx context.Context, filter models.Filter, payload models.Document, opts models.UpdateOptions) (models.Document, error)

func (h *Handler) modifyDocument(w http.ResponseWriter, r *http.Request, modify modifyFunc) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	var payload models.Document
	if err := h.decodeBody(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	if payload == nil {
		h.writeError(w, r, fmt.Errorf("%w: expected an object", ErrInvalidBody))
		return
	}

	upsert, _ := strconv.ParseBool(r.URL.Query().Get("upsert"))
	doc, err := modify(coll, r.Context(), idFilter(r), payload, models.UpdateOptions{Upsert: upsert, ReturnNew: true})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, doc, http.StatusOK)
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (*store.Collection, bool) {
	raw := chi.URLParam(r, "model")
	model, err := models.ParseModelName(raw)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %q", err, raw))
		return nil, false
	}
	coll, err := h.services.Collections.Get(model)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %s", err, model))
		return nil, false
	}
	return coll, true
}

func idFilter(r *http.Request) models.Filter {
	return models.Filter{models.DocumentIDField: chi.URLParam(r, "id")}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	if _, err := utils.WriteJSON(w, data, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to write response")
	}
}
