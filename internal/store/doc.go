// Package store is the document persistence layer.
//
// Documents are JSON objects grouped by model. A [Collection] exposes the
// lifecycle operations of one model (create, bulk insert, the update and
// replace variants, and finds) and runs the hooks registered on its
// [Schema] around them. Plugins registered in a [PluginRegistry] attach
// hooks to a model's schema when the collections are built.
//
// Two [DocumentRepository] backends are provided: SQL (SQLite or PostgreSQL,
// queries built with squirrel) and an in-memory map for tests and
// ephemeral runs. Session records used for token reuse live next to the
// documents in a [SessionRepository].
package store
