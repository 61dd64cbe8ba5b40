package store

import "errors"

// Sentinel errors returned by repository and collection methods to signal
// well-known failure conditions. Callers should use [errors.Is] to match
// against these values.
var (
	// ErrDocumentNotFound is returned when a single-document operation
	// matches nothing and upsert is not requested.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrDuplicateDocument is returned when a document with the same model
	// and id already exists.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrSessionNotFound is returned when no session has the requested id.
	ErrSessionNotFound = errors.New("session was not found")

	// ErrUnsupportedOperator is returned for update operators other than
	// $set, $unset and $setOnInsert.
	ErrUnsupportedOperator = errors.New("unsupported update operator")

	// ErrInvalidReplacement is returned when a replacement document
	// contains update operators.
	ErrInvalidReplacement = errors.New("replacement document must not contain update operators")

	// ErrEmptyModelName is returned when a plugin is registered without a
	// model name.
	ErrEmptyModelName = errors.New("model name is empty")

	// ErrUnknownCollection is returned when no collection was built for a
	// model.
	ErrUnknownCollection = errors.New("collection is not registered")

	// ErrTransientDB marks database failures worth retrying, such as a lost
	// connection or a serialization failure.
	ErrTransientDB = errors.New("transient database error")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrDecodingDocument is returned when a stored document body is not a
	// JSON object.
	ErrDecodingDocument = errors.New("failed to decode document body")
)
