// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-cix-vault/models"
)

// Hook signatures. A hook may mutate the documents or the query it is given;
// a returned error aborts the operation.
type (
	// PreCreateHook runs before a single document is inserted.
	PreCreateHook func(ctx context.Context, doc models.Document) error

	// PreInsertManyHook runs before a bulk insert.
	PreInsertManyHook func(ctx context.Context, docs []models.Document) error

	// PreUpdateHook runs before every update and replace variant.
	PreUpdateHook func(ctx context.Context, q *UpdateQuery) error

	// PostFindHook runs after a find returning zero or more documents.
	PostFindHook func(ctx context.Context, docs []models.Document) error

	// PostFindOneHook runs after operations returning at most one document:
	// FindOne, FindOneAndUpdate and FindOneAndReplace. It is not called when
	// nothing was found.
	PostFindOneHook func(ctx context.Context, op QueryOp, doc models.Document) error
)

// Schema holds the lifecycle hooks of one model. Hooks run in registration
// order. A Schema is safe for concurrent use.
type Schema struct {
	mu sync.RWMutex

	preCreate     []PreCreateHook
	preInsertMany []PreInsertManyHook
	preUpdate     []PreUpdateHook
	postFind      []PostFindHook
	postFindOne   []PostFindOneHook

	installed map[string]struct{}
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{}
}

func (s *Schema) PreCreate(h PreCreateHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preCreate = append(s.preCreate, h)
}

func (s *Schema) PreInsertMany(h PreInsertManyHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preInsertMany = append(s.preInsertMany, h)
}

func (s *Schema) PreUpdate(h PreUpdateHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preUpdate = append(s.preUpdate, h)
}

func (s *Schema) PostFind(h PostFindHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postFind = append(s.postFind, h)
}

func (s *Schema) PostFindOne(h PostFindOneHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postFindOne = append(s.postFindOne, h)
}

// MarkInstalled records key as installed on this schema. It returns false if
// key was already present, so a caller can use it as a check-and-set guard.
func (s *Schema) MarkInstalled(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.installed == nil {
		s.installed = make(map[string]struct{})
	}
	if _, ok := s.installed[key]; ok {
		return false
	}
	s.installed[key] = struct{}{}
	return true
}

// IsInstalled reports whether key was marked on this schema.
func (s *Schema) IsInstalled(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.installed[key]
	return ok
}

func (s *Schema) runPreCreate(ctx context.Context, doc models.Document) error {
	s.mu.RLock()
	hooks := append([]PreCreateHook(nil), s.preCreate...)
	s.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) runPreInsertMany(ctx context.Context, docs []models.Document) error {
	s.mu.RLock()
	hooks := append([]PreInsertManyHook(nil), s.preInsertMany...)
	s.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) runPreUpdate(ctx context.Context, q *UpdateQuery) error {
	s.mu.RLock()
	hooks := append([]PreUpdateHook(nil), s.preUpdate...)
	s.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) runPostFind(ctx context.Context, docs []models.Document) error {
	s.mu.RLock()
	hooks := append([]PostFindHook(nil), s.postFind...)
	s.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) runPostFindOne(ctx context.Context, op QueryOp, doc models.Document) error {
	s.mu.RLock()
	hooks := append([]PostFindOneHook(nil), s.postFindOne...)
	s.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, op, doc); err != nil {
			return err
		}
	}
	return nil
}
