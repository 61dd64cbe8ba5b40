// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// DocumentIDField is the reserved key holding a document's identifier.
const DocumentIDField = "_id"

// Document is the JSON object shape of a stored document. Values follow
// encoding/json decoding rules: strings, float64, bool, nil, []any and
// map[string]any.
type Document map[string]any

// ID returns the document identifier, or an empty string if the document
// has not been persisted yet.
func (d Document) ID() string {
	id, _ := d[DocumentIDField].(string)
	return id
}

// Has reports whether field is present and not nil.
func (d Document) Has(field string) bool {
	v, ok := d[field]
	return ok && v != nil
}

// Clone returns a shallow copy of d. Nested maps and slices are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Filter selects documents whose top-level fields are equal to the given
// values. An empty filter matches every document of a collection.
type Filter map[string]any

// UpdateOptions controls the behaviour of update and replace operations.
type UpdateOptions struct {
	// Upsert inserts a new document built from the filter and the update
	// when nothing matches.
	Upsert bool

	// ReturnNew makes FindOneAndUpdate / FindOneAndReplace return the
	// document after modification instead of before.
	ReturnNew bool
}
