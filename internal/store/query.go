package store

import (
	"github.com/MKhiriev/go-cix-vault/models"
)

// QueryOp names a collection operation.
type QueryOp string

const (
	OpUpdateOne         QueryOp = "updateOne"
	OpUpdateMany        QueryOp = "updateMany"
	OpReplaceOne        QueryOp = "replaceOne"
	OpFindOneAndUpdate  QueryOp = "findOneAndUpdate"
	OpFindOneAndReplace QueryOp = "findOneAndReplace"
	OpFindOne           QueryOp = "findOne"
)

// Update operators understood by the engine.
const (
	OperatorSet         = "$set"
	OperatorUnset       = "$unset"
	OperatorSetOnInsert = "$setOnInsert"
)

// IsReplace reports whether op replaces whole documents.
func (op QueryOp) IsReplace() bool {
	return op == OpReplaceOne || op == OpFindOneAndReplace
}

// UpdateQuery is the pending update handed to pre-update hooks. Hooks read
// the payload with Update and write a modified one back with SetUpdate.
type UpdateQuery struct {
	op      QueryOp
	filter  models.Filter
	update  models.Document
	options models.UpdateOptions
}

func newUpdateQuery(op QueryOp, filter models.Filter, update models.Document, opts models.UpdateOptions) *UpdateQuery {
	return &UpdateQuery{
		op:      op,
		filter:  filter,
		update:  cloneUpdate(update),
		options: opts,
	}
}

func (q *UpdateQuery) Op() QueryOp {
	return q.op
}

func (q *UpdateQuery) Filter() models.Filter {
	return q.filter
}

func (q *UpdateQuery) Options() models.UpdateOptions {
	return q.options
}

// Update returns the pending payload: an update document for update
// operations, the replacement for replace operations. It may be nil.
func (q *UpdateQuery) Update() models.Document {
	return q.update
}

// SetUpdate replaces the pending payload.
func (q *UpdateQuery) SetUpdate(update models.Document) {
	q.update = update
}

// cloneUpdate copies update and its operator sub-documents so hooks never
// mutate the caller's maps.
func cloneUpdate(update models.Document) models.Document {
	if update == nil {
		return nil
	}
	out := update.Clone()
	for k, v := range out {
		if m, ok := asObject(v); ok && isOperator(k) {
			out[k] = map[string]any(models.Document(m).Clone())
		}
	}
	return out
}
