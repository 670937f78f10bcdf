package chsink

import (
	"fmt"
	"strings"
)

// indexGranularity is the MergeTree index granularity applied to every table
// this package creates.
const indexGranularity = 8192

// quoteIdent wraps a column name in backticks for use in a statement.
func quoteIdent(name string) string {
	return "`" + name + "`"
}

// escapeString escapes a value for embedding in a single-quoted SQL literal.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// createTableStatement builds a CREATE TABLE IF NOT EXISTS statement with one
// column per dataset column, in dataset order. Types are resolved through the
// writer's type map. Duplicate column names are passed through as-is; the
// server rejects the resulting statement.
func (w *Writer) createTableStatement(ds *Dataset, db, table, partitionExpr, orderExpr string) (string, error) {
	columns := ds.Columns()
	if len(columns) == 0 {
		return "", ErrEmptyDataset
	}
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		defs = append(defs, "    "+quoteIdent(c.Name())+" "+w.types.resolveType(c.Name(), c.Kind()))
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
%s
)
ENGINE MergeTree
PARTITION BY (%s)
ORDER BY %s
SETTINGS index_granularity = %d`,
		db, table, strings.Join(defs, ",\n"), partitionExpr, orderExpr, indexGranularity)
	return stmt, nil
}

// addColumnStatement builds an ALTER TABLE ADD COLUMN statement for a single
// missing column.
func addColumnStatement(db, table, columnName, columnType string) string {
	return fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMN IF NOT EXISTS %s %s",
		db, table, quoteIdent(columnName), columnType)
}

// insertStatement builds the INSERT header naming every dataset column in
// dataset order. The batch values themselves travel over the native protocol.
func insertStatement(ds *Dataset, db, table string) string {
	names := ds.ColumnNames()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return fmt.Sprintf("INSERT INTO %s.%s (%s)", db, table, strings.Join(quoted, ","))
}

// cleanupStatement builds the ALTER TABLE DELETE statement that removes rows
// overlapping the dataset's partition range before insert, which is what
// makes repeated writes of the same batch idempotent.
//
// The base predicate is a BETWEEN on the partition column's min/max. Each key
// column narrows the delete with an exact match, and is only usable when its
// value is uniform across the batch: a key with several distinct values would
// make the delete scope ambiguous, so generation fails instead of guessing.
// Key columns absent from the dataset are skipped with a warning, but if no
// key survives the scope is equally ambiguous and generation fails.
func (w *Writer) cleanupStatement(ds *Dataset, db, table, partitionColumn string, keyColumns []string) (string, error) {
	from, to, err := ds.minMax(partitionColumn)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s.%s DELETE WHERE %s BETWEEN '%s' AND '%s'",
		db, table, quoteIdent(partitionColumn), escapeString(from), escapeString(to))

	if len(keyColumns) == 0 {
		return b.String(), nil
	}

	constrained := 0
	for _, key := range keyColumns {
		values, err := ds.distinct(key)
		if err != nil {
			w.logger.Warn("cleanup key column not in dataset, skipping",
				"column", key, "dataset_columns", ds.ColumnNames())
			continue
		}
		if len(values) != 1 {
			return "", fmt.Errorf("%w: column %q has %d distinct values",
				ErrNonUniqueCleanupKey, key, len(values))
		}
		fmt.Fprintf(&b, " AND %s = '%s'", quoteIdent(key), escapeString(values[0]))
		constrained++
	}
	if constrained == 0 {
		return "", fmt.Errorf("%w: no usable key among %v", ErrAmbiguousCleanupScope, keyColumns)
	}
	return b.String(), nil
}
