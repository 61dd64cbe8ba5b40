package models

import (
	"errors"
	"strings"
)

// ErrUnknownModel is returned by [ParseModelName] for names that are not
// registered in the application.
var ErrUnknownModel = errors.New("unknown model")

// ModelName identifies a document model. Hook registration and collection
// lookup are keyed by ModelName rather than by free-form strings.
type ModelName string

const (
	// ModelMessage holds chat messages.
	ModelMessage ModelName = "Message"

	// ModelFile holds uploaded file metadata and extracted text.
	ModelFile ModelName = "File"

	// ModelToolCall holds tool invocation results.
	ModelToolCall ModelName = "ToolCall"

	// ModelMemoryEntry holds user memory key/value entries.
	ModelMemoryEntry ModelName = "MemoryEntry"
)

// KnownModels lists every model served by the application, in a stable order.
var KnownModels = []ModelName{ModelMessage, ModelFile, ModelToolCall, ModelMemoryEntry}

// String implements fmt.Stringer.
func (m ModelName) String() string {
	return string(m)
}

// ParseModelName resolves s (case-insensitive) to a known [ModelName].
func ParseModelName(s string) (ModelName, error) {
	s = strings.TrimSpace(s)
	for _, m := range KnownModels {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", ErrUnknownModel
}

// DefaultEncryptionSpecs returns the encryption policy of every known model.
// A fresh map is returned on each call.
func DefaultEncryptionSpecs() map[ModelName]EncryptionSpec {
	return map[ModelName]EncryptionSpec{
		ModelMessage: {
			StringFields: []string{"text", "summary"},
			JSONFields:   []JSONField{{Name: "content", WrapArray: true}},
		},
		ModelFile: {
			StringFields: []string{"text"},
		},
		ModelToolCall: {
			JSONFields: []JSONField{{Name: "result"}, {Name: "attachments"}},
		},
		ModelMemoryEntry: {
			StringFields: []string{"value"},
		},
	}
}
