package chsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Connection defaults, matching a local ClickHouse server with its stock
// account.
const (
	// DefaultHost is the ClickHouse host used when Config.Host is empty
	DefaultHost = "127.0.0.1"
	// DefaultPort is the native protocol port used when Config.Port is zero
	DefaultPort = 9000
	// DefaultDatabase is the database used when Config.Database is empty
	DefaultDatabase = "default"
	// DefaultUsername is the account used when Config.Username is empty
	DefaultUsername = "default"
)

// Config configures a Writer. The zero value connects to a local server with
// the stock account and the built-in type overrides. A Config is copied at
// construction and never mutated afterwards.
type Config struct {
	// Host is the ClickHouse server host.
	Host string
	// Port is the native protocol port.
	Port int
	// Database is the default target database for Insert calls.
	Database string
	// Username authenticates the connection.
	Username string
	// Password authenticates the connection.
	Password string
	// TypeOverrides maps column names to ClickHouse column types,
	// case-sensitively. A matching name wins over the column's semantic
	// kind. Nil selects DefaultTypeOverrides.
	TypeOverrides map[string]string
	// LogLevel selects the log verbosity: "debug", "warn"/"warning", or
	// anything else for info. Ignored when Logger is set.
	LogLevel string
	// Logger receives diagnostics. Nil selects a text handler on stderr at
	// LogLevel.
	Logger *slog.Logger
}

// ParseLevel converts a verbosity name to a slog level. Matching is
// case-insensitive; unrecognized names select info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Writer writes datasets into ClickHouse tables, creating the database and
// table and reconciling missing columns as needed. A Writer owns one
// connection and assumes a single logical writer per destination table;
// concurrent writers racing on the exists-check/create/cleanup sequence are
// not coordinated.
type Writer struct {
	client dbClient
	db     string
	types  typeMap
	logger *slog.Logger
}

// New connects to ClickHouse and creates the configured default database if
// it does not exist yet. The caller owns the returned Writer and must Close
// it when done.
func New(cfg Config) (*Writer, error) {
	return NewContext(context.Background(), cfg)
}

// NewContext is New with a caller-supplied context for the initial
// database creation.
func NewContext(ctx context.Context, cfg Config) (*Writer, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}

	client, err := dialNative(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	w := newWriter(client, cfg)

	w.logger.Debug("connected to clickhouse")
	if err := w.createDatabase(ctx, w.db); err != nil {
		_ = client.close()
		return nil, fmt.Errorf("failed to create database %s: %w", w.db, err)
	}
	return w, nil
}

// newWriter assembles a Writer around an existing client connection.
func newWriter(client dbClient, cfg Config) *Writer {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	overrides := cfg.TypeOverrides
	if overrides == nil {
		overrides = DefaultTypeOverrides
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(cfg.LogLevel),
		}))
	}
	return &Writer{
		client: client,
		db:     cfg.Database,
		types:  typeMap{overrides: overrides},
		logger: logger.With("host", cfg.Host, "port", cfg.Port),
	}
}

// Close releases the underlying connection.
func (w *Writer) Close() error {
	return w.client.close()
}

// Insert writes the dataset into db.table, bringing the destination in line
// with the dataset first:
//
//   - a missing table is created with one column per dataset column, types
//     resolved by name override or semantic kind;
//   - when the table exists and cleanup is on (the default), rows whose
//     partition column falls within the dataset's min/max range are deleted
//     first, scoped further by the cleanup key columns, which makes
//     re-running the same write idempotent;
//   - a missing database is created and the write retried, once;
//   - columns missing from an existing table are added and the write
//     retried, once.
//
// A recoverable condition that persists after its single recovery attempt
// returns an error wrapping ErrRetryExhausted. All other failures are logged
// and returned as-is.
func (w *Writer) Insert(ctx context.Context, ds *Dataset, table string, opts ...InsertOption) error {
	req := newInsertRequest(w.db, table, opts)

	// One recovery per failure class, tracked independently: a missing
	// database and schema drift can both occur within the same call.
	var dbRecovered, schemaRecovered bool
	for {
		err := w.attempt(ctx, ds, req)
		switch {
		case err == nil:
			return nil

		case errors.Is(err, ErrUnknownDatabase):
			if dbRecovered {
				w.logger.Error("database still unknown after creating it",
					"db", req.database, "table", req.table)
				return fmt.Errorf("%w: database %s remains unknown: %w", ErrRetryExhausted, req.database, err)
			}
			w.logger.Warn("database does not exist, creating it", "db", req.database)
			if err := w.createDatabase(ctx, req.database); err != nil {
				return err
			}
			dbRecovered = true

		case errors.Is(err, ErrMissingColumn):
			if schemaRecovered {
				w.logger.Error("column still missing after schema sync",
					"db", req.database, "table", req.table)
				return fmt.Errorf("%w: table %s.%s still missing columns: %w", ErrRetryExhausted, req.database, req.table, err)
			}
			w.logger.Warn("destination table is missing dataset columns, syncing schema",
				"db", req.database, "table", req.table)
			if err := w.syncSchema(ctx, ds, req.database, req.table); err != nil {
				return err
			}
			schemaRecovered = true

		default:
			return err
		}
	}
}

// attempt runs the write sequence once: introspect, clean or create, insert.
// Classified errors bubble up for the recovery loop to dispatch on.
func (w *Writer) attempt(ctx context.Context, ds *Dataset, req insertRequest) error {
	tables, err := w.client.queryStrings(ctx, "SHOW TABLES FROM "+req.database)
	if err != nil {
		if !errors.Is(err, ErrUnknownDatabase) {
			w.logger.Error("failed to list tables",
				"db", req.database, "table", req.table, "error", err)
		}
		return err
	}

	if slices.Contains(tables, req.table) {
		if req.cleanup {
			stmt, err := w.cleanupStatement(ds, req.database, req.table, req.partitionColumn, req.cleanupKeys)
			if err != nil {
				w.logger.Error("failed to build cleanup statement",
					"db", req.database, "table", req.table, "error", err)
				return err
			}
			w.logger.Info("deleting overlapping rows", "statement", stmt)
			if err := w.client.exec(ctx, stmt); err != nil {
				w.logger.Error("failed to delete overlapping rows",
					"db", req.database, "table", req.table, "statement", stmt, "error", err)
				return err
			}
		}
	} else {
		partitionExpr := req.partitionFunc + "(" + req.partitionColumn + ")"
		stmt, err := w.createTableStatement(ds, req.database, req.table, partitionExpr, req.orderBy)
		if err != nil {
			w.logger.Error("failed to build create table statement",
				"db", req.database, "table", req.table, "error", err)
			return err
		}
		w.logger.Info("creating table", "statement", stmt)
		if err := w.client.exec(ctx, stmt); err != nil {
			w.logger.Error("failed to create table",
				"db", req.database, "table", req.table, "statement", stmt, "error", err)
			return err
		}
	}

	stmt := insertStatement(ds, req.database, req.table)
	w.logger.Info("inserting rows", "statement", stmt, "rows", ds.Rows())
	if err := w.client.insertBatch(ctx, stmt, ds); err != nil {
		if !errors.Is(err, ErrMissingColumn) {
			w.logger.Error("failed to insert rows",
				"db", req.database, "table", req.table, "statement", stmt, "error", err)
		}
		return err
	}
	return nil
}

// createDatabase issues CREATE DATABASE IF NOT EXISTS.
func (w *Writer) createDatabase(ctx context.Context, db string) error {
	stmt := "CREATE DATABASE IF NOT EXISTS " + db
	if err := w.client.exec(ctx, stmt); err != nil {
		w.logger.Error("failed to create database", "db", db, "statement", stmt, "error", err)
		return err
	}
	return nil
}

// syncSchema adds every dataset column absent from the remote table, one
// ALTER per column. The remote schema is introspected fresh on every call,
// never cached.
func (w *Writer) syncSchema(ctx context.Context, ds *Dataset, db, table string) error {
	query := fmt.Sprintf(
		"SELECT name FROM system.columns WHERE database = '%s' AND table = '%s' ORDER BY position",
		escapeString(db), escapeString(table))
	remote, err := w.client.queryStrings(ctx, query)
	if err != nil {
		w.logger.Error("failed to introspect table columns",
			"db", db, "table", table, "error", err)
		return err
	}

	have := make(map[string]struct{}, len(remote))
	for _, name := range remote {
		have[name] = struct{}{}
	}
	for _, c := range ds.Columns() {
		if _, ok := have[c.Name()]; ok {
			continue
		}
		stmt := addColumnStatement(db, table, c.Name(), w.types.resolveType(c.Name(), c.Kind()))
		w.logger.Info("adding missing column", "statement", stmt)
		if err := w.client.exec(ctx, stmt); err != nil {
			w.logger.Error("failed to add column",
				"db", db, "table", table, "statement", stmt, "error", err)
			return err
		}
	}
	return nil
}
