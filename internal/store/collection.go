// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/MKhiriev/go-cix-vault/internal/utils"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/models"
)

// UpdateResult reports the outcome of UpdateOne, UpdateMany and ReplaceOne.
type UpdateResult struct {
	MatchedCount  int    `json:"matched_count"`
	ModifiedCount int    `json:"modified_count"`
	UpsertedID    string `json:"upserted_id,omitempty"`
}

// Collection runs document operations for one model, calling the model's
// schema hooks around the repository.
//
// Writes hand hooks a copy of the caller's document; the copy is what gets
// stored, and the caller's maps are never modified. Updates are a
// read-modify-write over the repository and are not isolated from
// concurrent updates of the same documents.
type Collection struct {
	model  models.ModelName
	schema *Schema
	repo   DocumentRepository
	newID  func() string
}

// NewCollection binds model, schema and repo.
func NewCollection(model models.ModelName, schema *Schema, repo DocumentRepository) *Collection {
	return &Collection{
		model:  model,
		schema: schema,
		repo:   repo,
		newID:  utils.NewUUIDGenerator().Generate,
	}
}

func (c *Collection) Model() models.ModelName {
	return c.model
}

func (c *Collection) Schema() *Schema {
	return c.schema
}

// Create inserts doc and returns it with its id. The returned document is
// the caller's plaintext, not the stored form.
func (c *Collection) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	stored := c.prepare(doc)
	result := withID(doc, stored.ID())

	if err := c.schema.runPreCreate(ctx, stored); err != nil {
		return nil, err
	}
	if err := c.repo.Insert(ctx, c.model, stored); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "Collection.Create").
		Str("model", c.model.String()).
		Str("id", stored.ID()).
		Msg("document created")

	return result, nil
}

// InsertMany inserts docs in one repository call. Either every document is
// stored or none is.
func (c *Collection) InsertMany(ctx context.Context, docs []models.Document) ([]models.Document, error) {
	if len(docs) == 0 {
		return []models.Document{}, nil
	}

	stored := make([]models.Document, len(docs))
	results := make([]models.Document, len(docs))
	for i, doc := range docs {
		stored[i] = c.prepare(doc)
		results[i] = withID(doc, stored[i].ID())
	}

	if err := c.schema.runPreInsertMany(ctx, stored); err != nil {
		return nil, err
	}
	if err := c.repo.Insert(ctx, c.model, stored...); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "Collection.InsertMany").
		Str("model", c.model.String()).
		Int("count", len(stored)).
		Msg("documents inserted")

	return results, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter models.Filter, update models.Document, opts models.UpdateOptions) (UpdateResult, error) {
	res, _, _, err := c.update(ctx, OpUpdateOne, filter, update, opts)
	return res, err
}

func (c *Collection) UpdateMany(ctx context.Context, filter models.Filter, update models.Document, opts models.UpdateOptions) (UpdateResult, error) {
	res, _, _, err := c.update(ctx, OpUpdateMany, filter, update, opts)
	return res, err
}

func (c *Collection) ReplaceOne(ctx context.Context, filter models.Filter, replacement models.Document, opts models.UpdateOptions) (UpdateResult, error) {
	res, _, _, err := c.update(ctx, OpReplaceOne, filter, replacement, opts)
	return res, err
}

// FindOneAndUpdate updates the first matching document and returns it as it
// was before the update, or after it when opts.ReturnNew is set. An upsert
// without ReturnNew returns a nil document. Returns [ErrDocumentNotFound]
// when nothing matched and no upsert happened.
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter models.Filter, update models.Document, opts models.UpdateOptions) (models.Document, error) {
	return c.findOneAnd(ctx, OpFindOneAndUpdate, filter, update, opts)
}

// FindOneAndReplace is FindOneAndUpdate with a whole-document replacement.
func (c *Collection) FindOneAndReplace(ctx context.Context, filter models.Filter, replacement models.Document, opts models.UpdateOptions) (models.Document, error) {
	return c.findOneAnd(ctx, OpFindOneAndReplace, filter, replacement, opts)
}

// Find returns every matching document, oldest first. The result is never
// nil.
func (c *Collection) Find(ctx context.Context, filter models.Filter) ([]models.Document, error) {
	docs, err := c.repo.Find(ctx, c.model, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	if err = c.schema.runPostFind(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindOne returns the first matching document or [ErrDocumentNotFound].
func (c *Collection) FindOne(ctx context.Context, filter models.Filter) (models.Document, error) {
	docs, err := c.repo.Find(ctx, c.model, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}

	doc := docs[0]
	if err = c.schema.runPostFindOne(ctx, OpFindOne, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Collection) findOneAnd(ctx context.Context, op QueryOp, filter models.Filter, payload models.Document, opts models.UpdateOptions) (models.Document, error) {
	res, before, after, err := c.update(ctx, op, filter, payload, opts)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	switch {
	case res.UpsertedID != "" && !opts.ReturnNew:
		return nil, nil
	case opts.ReturnNew:
		doc = after
	default:
		doc = before
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	if err = c.schema.runPostFindOne(ctx, op, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// update runs every update and replace variant. before and after are the
// stored forms of the first affected document.
func (c *Collection) update(ctx context.Context, op QueryOp, filter models.Filter, payload models.Document, opts models.UpdateOptions) (res UpdateResult, before, after models.Document, err error) {
	log := logger.FromContext(ctx)

	if err = validateUpdate(op, payload); err != nil {
		return res, nil, nil, err
	}

	q := newUpdateQuery(op, filter, payload, opts)
	if err = c.schema.runPreUpdate(ctx, q); err != nil {
		return res, nil, nil, err
	}
	payload = q.Update()

	// hooks may have rewritten the payload
	if err = validateUpdate(op, payload); err != nil {
		return res, nil, nil, err
	}

	found, err := c.repo.Find(ctx, c.model, filter)
	if err != nil {
		return res, nil, nil, err
	}
	if op != OpUpdateMany && len(found) > 1 {
		found = found[:1]
	}

	if len(found) == 0 {
		if !opts.Upsert {
			return res, nil, nil, nil
		}
		after, err = c.upsert(ctx, op, filter, payload)
		if err != nil {
			return res, nil, nil, err
		}
		res.UpsertedID = after.ID()
		log.Debug().
			Str("func", "Collection.update").
			Str("model", c.model.String()).
			Str("op", string(op)).
			Str("id", res.UpsertedID).
			Msg("document upserted")
		return res, nil, after, nil
	}

	res.MatchedCount = len(found)
	changed := make([]models.Document, 0, len(found))
	for i, doc := range found {
		var next models.Document
		if op.IsReplace() {
			next = applyReplace(doc, payload)
		} else {
			next = applyUpdate(doc, payload, false)
		}
		if i == 0 {
			before, after = doc, next
		}
		if !reflect.DeepEqual(doc, next) {
			changed = append(changed, next)
		}
	}

	if len(changed) > 0 {
		if err = c.repo.Replace(ctx, c.model, changed...); err != nil {
			return UpdateResult{}, nil, nil, err
		}
	}
	res.ModifiedCount = len(changed)

	log.Debug().
		Str("func", "Collection.update").
		Str("model", c.model.String()).
		Str("op", string(op)).
		Int("matched", res.MatchedCount).
		Int("modified", res.ModifiedCount).
		Msg("documents updated")

	return res, before, after, nil
}

func (c *Collection) upsert(ctx context.Context, op QueryOp, filter models.Filter, payload models.Document) (models.Document, error) {
	seed := seedFromFilter(filter)

	var doc models.Document
	if op.IsReplace() {
		doc = applyReplace(seed, payload)
	} else {
		// The payload already went through the update hooks. Seed fields it
		// does not overwrite are new to the store and go through the create
		// hooks instead.
		for k := range applyUpdate(models.Document{}, payload, true) {
			delete(seed, k)
		}
		if err := c.schema.runPreCreate(ctx, seed); err != nil {
			return nil, err
		}
		doc = applyUpdate(seed, payload, true)
	}
	if doc.ID() == "" {
		doc[models.DocumentIDField] = c.newID()
	}

	if err := c.repo.Insert(ctx, c.model, doc); err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}
	return doc, nil
}

// prepare copies doc and assigns an id when it has none.
func (c *Collection) prepare(doc models.Document) models.Document {
	out := doc.Clone()
	if out == nil {
		out = models.Document{}
	}
	if out.ID() == "" {
		out[models.DocumentIDField] = c.newID()
	}
	return out
}

func withID(doc models.Document, id string) models.Document {
	out := doc.Clone()
	if out == nil {
		out = models.Document{}
	}
	out[models.DocumentIDField] = id
	return out
}

// Collections holds one collection per model. Each model gets its own
// schema with the registry's plugins applied once, at construction.
type Collections struct {
	byModel map[models.ModelName]*Collection
}

// NewCollections builds collections for names, or for every known model
// when names is empty.
func NewCollections(repo DocumentRepository, registry *PluginRegistry, names ...models.ModelName) *Collections {
	if len(names) == 0 {
		names = models.KnownModels
	}

	cs := &Collections{byModel: make(map[models.ModelName]*Collection, len(names))}
	for _, name := range names {
		schema := NewSchema()
		if registry != nil {
			registry.Apply(name, schema)
		}
		cs.byModel[name] = NewCollection(name, schema, repo)
	}
	return cs
}

// Get returns the collection of model or [ErrUnknownCollection].
func (cs *Collections) Get(model models.ModelName) (*Collection, error) {
	c, ok := cs.byModel[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, model)
	}
	return c, nil
}
