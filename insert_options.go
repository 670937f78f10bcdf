package chsink

// Default insert parameters, matching the common case of time-partitioned
// tables keyed on a date column.
const (
	// DefaultPartitionColumn is the column used to bucket table storage when
	// no other partition column is configured.
	DefaultPartitionColumn = "date"
	// DefaultPartitionFunc is the bucketing function applied to the
	// partition column in generated CREATE TABLE statements.
	DefaultPartitionFunc = "toYYYYMM"
)

// insertRequest holds the fully resolved parameters of one Insert call.
// All defaults are applied before the write sequence starts, so the state
// machine never consults option values again.
type insertRequest struct {
	// database is the target database, defaulted from the writer config.
	database string
	// table is the destination table name.
	table string
	// cleanup controls whether overlapping rows are deleted before insert.
	cleanup bool
	// cleanupKeys are columns whose single distinct value scopes the delete.
	cleanupKeys []string
	// partitionColumn buckets table storage and bounds the cleanup range.
	partitionColumn string
	// partitionFunc is the bucketing function name for CREATE TABLE.
	partitionFunc string
	// orderBy is the ORDER BY expression for CREATE TABLE.
	orderBy string
}

// InsertOption configures a single Insert call.
type InsertOption func(*insertRequest)

// WithDatabase targets a database other than the writer's default.
func WithDatabase(db string) InsertOption {
	return func(r *insertRequest) {
		r.database = db
	}
}

// WithoutCleanup disables the pre-insert range delete. Re-running the same
// write then duplicates rows instead of replacing them.
func WithoutCleanup() InsertOption {
	return func(r *insertRequest) {
		r.cleanup = false
	}
}

// WithCleanupKeys names columns that further scope the pre-insert delete.
// Each named column must hold exactly one distinct value across the dataset;
// its value is added as an exact-match predicate so the delete only touches
// rows of the same logical batch.
func WithCleanupKeys(columns ...string) InsertOption {
	return func(r *insertRequest) {
		r.cleanupKeys = append(r.cleanupKeys, columns...)
	}
}

// WithPartitionColumn sets the partition column. Default is "date".
func WithPartitionColumn(column string) InsertOption {
	return func(r *insertRequest) {
		r.partitionColumn = column
	}
}

// WithPartitionFunc sets the partition bucketing function used when the
// table is created. Default is "toYYYYMM".
func WithPartitionFunc(fn string) InsertOption {
	return func(r *insertRequest) {
		r.partitionFunc = fn
	}
}

// WithOrderBy sets the ORDER BY expression used when the table is created.
// Default is the partition column.
func WithOrderBy(expr string) InsertOption {
	return func(r *insertRequest) {
		r.orderBy = expr
	}
}

// newInsertRequest applies options over defaults and resolves the implicit
// ones: the database falls back to the writer's default, the order
// expression falls back to the partition column.
func newInsertRequest(defaultDB, table string, opts []InsertOption) insertRequest {
	req := insertRequest{
		table:           table,
		cleanup:         true,
		partitionColumn: DefaultPartitionColumn,
		partitionFunc:   DefaultPartitionFunc,
	}
	for _, opt := range opts {
		opt(&req)
	}
	if req.database == "" {
		req.database = defaultDB
	}
	if req.orderBy == "" {
		req.orderBy = req.partitionColumn
	}
	return req
}
