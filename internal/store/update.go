package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/MKhiriev/go-cix-vault/models"
)

func isOperator(key string) bool {
	return strings.HasPrefix(key, "$")
}

func hasOperator(m map[string]any) bool {
	for k := range m {
		if isOperator(k) {
			return true
		}
	}
	return false
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case models.Document:
		return m, true
	default:
		return nil, false
	}
}

// matches reports whether doc satisfies every equality in filter. Values
// are compared structurally first and then by their textual form, so a
// filter taken from a query string matches numbers and booleans.
func matches(doc models.Document, filter models.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if reflect.DeepEqual(got, want) {
			continue
		}
		if got == nil || want == nil {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// validateUpdate checks the payload shape for op.
func validateUpdate(op QueryOp, update models.Document) error {
	for k, v := range update {
		if !isOperator(k) {
			continue
		}
		if op.IsReplace() {
			return ErrInvalidReplacement
		}
		switch k {
		case OperatorSet, OperatorUnset, OperatorSetOnInsert:
			if _, ok := asObject(v); !ok {
				return fmt.Errorf("%w: %s expects an object", ErrUnsupportedOperator, k)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedOperator, k)
		}
	}
	return nil
}

// applyUpdate returns a copy of doc with update applied. Top-level keys that
// are not operators behave like $set. $setOnInsert applies only when
// inserting. The id never changes.
func applyUpdate(doc models.Document, update models.Document, inserting bool) models.Document {
	out := doc.Clone()
	if out == nil {
		out = models.Document{}
	}
	id, hasID := out[models.DocumentIDField]

	set := func(fields map[string]any) {
		for k, v := range fields {
			out[k] = v
		}
	}

	for k, v := range update {
		if !isOperator(k) {
			out[k] = v
		}
	}
	if m, ok := asObject(update[OperatorSet]); ok {
		set(m)
	}
	if inserting {
		if m, ok := asObject(update[OperatorSetOnInsert]); ok {
			set(m)
		}
	}
	if m, ok := asObject(update[OperatorUnset]); ok {
		for k := range m {
			delete(out, k)
		}
	}

	if hasID {
		out[models.DocumentIDField] = id
	}
	return out
}

// applyReplace returns replacement carrying doc's id.
func applyReplace(doc models.Document, replacement models.Document) models.Document {
	out := replacement.Clone()
	if out == nil {
		out = models.Document{}
	}
	if id := doc.ID(); id != "" {
		out[models.DocumentIDField] = id
	}
	return out
}

// seedFromFilter builds the starting document of an upsert from the
// equality fields of filter.
func seedFromFilter(filter models.Filter) models.Document {
	out := models.Document{}
	for k, v := range filter {
		if isOperator(k) {
			continue
		}
		if m, ok := asObject(v); ok && hasOperator(m) {
			continue
		}
		out[k] = v
	}
	return out
}
