// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// JSONField declares a structured field that is serialized to JSON before
// encryption.
type JSONField struct {
	// Name is the document field name.
	Name string `json:"name"`

	// WrapArray stores the ciphertext as a single-element array so that
	// consumers expecting an array on disk keep working.
	WrapArray bool `json:"wrap_array,omitempty"`
}

// EncryptionSpec declares which fields of a model are encrypted at rest.
// A spec is registered once at startup and must not be modified afterwards.
type EncryptionSpec struct {
	// StringFields are encrypted as opaque strings.
	StringFields []string `json:"string_fields,omitempty"`

	// JSONFields are JSON-serialized before encryption and parsed back
	// after decryption.
	JSONFields []JSONField `json:"json_fields,omitempty"`
}

// IsEmpty reports whether the spec declares no fields at all.
func (s EncryptionSpec) IsEmpty() bool {
	return len(s.StringFields) == 0 && len(s.JSONFields) == 0
}
