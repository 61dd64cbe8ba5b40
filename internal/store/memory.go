package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-cix-vault/models"
)

// MemoryDocumentRepository keeps documents in process memory. Documents go
// through a JSON round trip on the way in and out, so callers see the same
// value shapes the SQL repository returns and never share maps with the
// store.
type MemoryDocumentRepository struct {
	mu    sync.RWMutex
	order map[models.ModelName][]string
	docs  map[models.ModelName]map[string][]byte
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{
		order: make(map[models.ModelName][]string),
		docs:  make(map[models.ModelName]map[string][]byte),
	}
}

func (m *MemoryDocumentRepository) Insert(_ context.Context, model models.ModelName, docs ...models.Document) error {
	encoded := make([][]byte, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			return fmt.Errorf("%w: document without id", ErrExecutingStatement)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateDocument, id)
		}
		seen[id] = struct{}{}

		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", id, err)
		}
		encoded[i] = raw
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.docs[model]
	if bucket == nil {
		bucket = make(map[string][]byte)
		m.docs[model] = bucket
	}
	for _, doc := range docs {
		if _, exists := bucket[doc.ID()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateDocument, doc.ID())
		}
	}
	for i, doc := range docs {
		bucket[doc.ID()] = encoded[i]
		m.order[model] = append(m.order[model], doc.ID())
	}
	return nil
}

func (m *MemoryDocumentRepository) Find(_ context.Context, model models.ModelName, filter models.Filter) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Document, 0)
	for _, id := range m.order[model] {
		var doc models.Document
		if err := json.Unmarshal(m.docs[model][id], &doc); err != nil {
			return nil, fmt.Errorf("%w: id %s", ErrDecodingDocument, id)
		}
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemoryDocumentRepository) Replace(_ context.Context, model models.ModelName, docs ...models.Document) error {
	encoded := make([][]byte, len(docs))
	for i, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", doc.ID(), err)
		}
		encoded[i] = raw
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.docs[model]
	for _, doc := range docs {
		if _, ok := bucket[doc.ID()]; !ok {
			return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, model, doc.ID())
		}
	}
	for i, doc := range docs {
		bucket[doc.ID()] = encoded[i]
	}
	return nil
}

// Raw returns the stored form of a document, bypassing every hook.
func (m *MemoryDocumentRepository) Raw(model models.ModelName, id string) (models.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.docs[model][id]
	if !ok {
		return nil, false
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]models.Session)}
}

func (m *MemorySessionRepository) Save(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MemorySessionRepository) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionRepository) UpdateTokens(_ context.Context, id string, tokens models.OpenIDTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Tokens = tokens
	s.UpdatedAt = time.Now().UTC()
	m.sessions[id] = s
	return nil
}
