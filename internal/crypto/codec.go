// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-cix-vault/models"
)

// CipherPrefix marks a stored string as ciphertext of protocol version 1.
const CipherPrefix = "cixvault:v1:"

var (
	// ErrMarshalField is returned when a JSON field cannot be serialized
	// before encryption.
	ErrMarshalField = errors.New("cannot serialize field for encryption")

	// ErrBatchLength is returned when results do not line up with the
	// collected items.
	ErrBatchLength = errors.New("batch result length does not match items")
)

// DecodeOutcome tells how a decrypted value was applied to a document.
type DecodeOutcome int

const (
	// OutcomeDecoded means the value was assigned as decoded.
	OutcomeDecoded DecodeOutcome = iota

	// OutcomeRecovered means a JSON field did not parse and its raw
	// plaintext string was assigned instead.
	OutcomeRecovered
)

func (o DecodeOutcome) String() string {
	switch o {
	case OutcomeDecoded:
		return "decoded"
	case OutcomeRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("DecodeOutcome(%d)", int(o))
	}
}

// BatchItem is one field scheduled for the cipher service. Doc is the
// document the result is written back into.
type BatchItem struct {
	Doc       models.Document
	Field     string
	IsJSON    bool
	WrapArray bool
	Value     string
}

// IsCiphertext reports whether v is a string carrying [CipherPrefix].
func IsCiphertext(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, CipherPrefix)
}

// CollectEncryptionTargets returns the fields of doc that must be encrypted
// under spec, in declaration order: string fields first, then JSON fields.
//
// Absent and nil fields are skipped. Values that already carry the cipher
// marker are skipped too, so a document is never encrypted twice.
func CollectEncryptionTargets(doc models.Document, spec models.EncryptionSpec) ([]BatchItem, error) {
	if doc == nil {
		return nil, nil
	}

	var items []BatchItem
	for _, field := range spec.StringFields {
		v, ok := doc[field]
		if !ok || v == nil || IsCiphertext(v) {
			continue
		}
		items = append(items, BatchItem{Doc: doc, Field: field, Value: asText(v)})
	}

	for _, jf := range spec.JSONFields {
		if jf.Name == "" {
			continue
		}
		v, ok := doc[jf.Name]
		if !ok || v == nil || isStoredCiphertext(v, jf.WrapArray) {
			continue
		}
		s, err := asJSONString(v)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrMarshalField, jf.Name, err)
		}
		items = append(items, BatchItem{Doc: doc, Field: jf.Name, IsJSON: true, WrapArray: jf.WrapArray, Value: s})
	}

	return items, nil
}

// CollectDecryptionTargets returns the ciphertext fields of every document
// in docs. Wrapped JSON fields are unwrapped; a wrapped field stored as a bare
// marked string is still picked up.
func CollectDecryptionTargets(docs []models.Document, spec models.EncryptionSpec) []BatchItem {
	var items []BatchItem
	for _, doc := range docs {
		if doc == nil {
			continue
		}

		for _, field := range spec.StringFields {
			if v := doc[field]; IsCiphertext(v) {
				items = append(items, BatchItem{Doc: doc, Field: field, Value: v.(string)})
			}
		}

		for _, jf := range spec.JSONFields {
			if jf.Name == "" {
				continue
			}
			v := doc[jf.Name]
			if jf.WrapArray {
				if s, ok := wrappedCiphertext(v); ok {
					items = append(items, BatchItem{Doc: doc, Field: jf.Name, IsJSON: true, WrapArray: true, Value: s})
					continue
				}
			}
			if IsCiphertext(v) {
				items = append(items, BatchItem{Doc: doc, Field: jf.Name, IsJSON: true, Value: v.(string)})
			}
		}
	}
	return items
}

// Values returns the transport payload of items, preserving order.
func Values(items []BatchItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

// ApplyEncrypted stores ciphertext in doc[field], wrapped in a one-element
// array when wrapArray is set.
func ApplyEncrypted(doc models.Document, field, ciphertext string, wrapArray bool) {
	if doc == nil {
		return
	}
	if wrapArray {
		doc[field] = []any{ciphertext}
		return
	}
	doc[field] = ciphertext
}

// ApplyDecrypted stores plaintext in doc[field]. JSON fields are parsed; if
// parsing fails the raw string is stored and [OutcomeRecovered] is returned.
// wrapArray does not change how plaintext is applied.
func ApplyDecrypted(doc models.Document, field, plaintext string, isJSON, wrapArray bool) DecodeOutcome {
	if doc == nil {
		return OutcomeDecoded
	}
	if !isJSON {
		doc[field] = plaintext
		return OutcomeDecoded
	}

	var parsed any
	if err := json.Unmarshal([]byte(plaintext), &parsed); err != nil {
		doc[field] = plaintext
		return OutcomeRecovered
	}
	doc[field] = parsed
	return OutcomeDecoded
}

// ApplyEncryptedBatch writes ciphertexts back into the items' documents.
func ApplyEncryptedBatch(items []BatchItem, ciphertexts []string) error {
	if len(items) != len(ciphertexts) {
		return fmt.Errorf("%w: %d items, %d results", ErrBatchLength, len(items), len(ciphertexts))
	}
	for i, it := range items {
		ApplyEncrypted(it.Doc, it.Field, ciphertexts[i], it.WrapArray)
	}
	return nil
}

// ApplyDecryptedBatch writes plaintexts back into the items' documents and
// returns the items that were recovered as raw strings.
func ApplyDecryptedBatch(items []BatchItem, plaintexts []string) ([]BatchItem, error) {
	if len(items) != len(plaintexts) {
		return nil, fmt.Errorf("%w: %d items, %d results", ErrBatchLength, len(items), len(plaintexts))
	}
	var recovered []BatchItem
	for i, it := range items {
		if ApplyDecrypted(it.Doc, it.Field, plaintexts[i], it.IsJSON, it.WrapArray) == OutcomeRecovered {
			recovered = append(recovered, it)
		}
	}
	return recovered, nil
}

// Fields returns the field names of items, for logging.
func Fields(items []BatchItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Field
	}
	return out
}

func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asJSONString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func wrappedCiphertext(v any) (string, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 1 || !IsCiphertext(arr[0]) {
		return "", false
	}
	return arr[0].(string), true
}

func isStoredCiphertext(v any, wrapArray bool) bool {
	if IsCiphertext(v) {
		return true
	}
	if wrapArray {
		_, ok := wrappedCiphertext(v)
		return ok
	}
	return false
}
