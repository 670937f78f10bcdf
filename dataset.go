package chsink

import (
	"fmt"
	"strconv"
	"time"
)

// datetimeLayout is the literal format used for DateTime values in generated
// SQL statements.
const datetimeLayout = "2006-01-02 15:04:05"

// Column is a named sequence of values of one semantic kind.
type Column struct {
	// name is the column name as it appears in the destination table.
	name string
	// kind is the semantic type shared by all values.
	kind Kind
	// values holds the column values in row order.
	values []any
}

// TimeColumn creates a datetime column.
func TimeColumn(name string, values []time.Time) Column {
	return Column{name: name, kind: KindDateTime, values: anyValues(values)}
}

// Int32Column creates a 32-bit integer column.
func Int32Column(name string, values []int32) Column {
	return Column{name: name, kind: KindInt32, values: anyValues(values)}
}

// Int64Column creates a 64-bit integer column.
func Int64Column(name string, values []int64) Column {
	return Column{name: name, kind: KindInt64, values: anyValues(values)}
}

// Float32Column creates a 32-bit float column.
func Float32Column(name string, values []float32) Column {
	return Column{name: name, kind: KindFloat32, values: anyValues(values)}
}

// Float64Column creates a 64-bit float column.
func Float64Column(name string, values []float64) Column {
	return Column{name: name, kind: KindFloat64, values: anyValues(values)}
}

// StringColumn creates a text column.
func StringColumn(name string, values []string) Column {
	return Column{name: name, kind: KindString, values: anyValues(values)}
}

// anyValues widens a typed value slice for storage in a Column.
func anyValues[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Name returns the column name.
func (c Column) Name() string {
	return c.name
}

// Kind returns the column's semantic kind.
func (c Column) Kind() Kind {
	return c.kind
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	return len(c.values)
}

// Dataset is an ordered collection of equal-length columns. It is read-only
// after construction; Insert never modifies it.
type Dataset struct {
	columns []Column
}

// NewDataset creates a dataset from the given columns. The column order is
// preserved and becomes the column order of generated DDL and insert
// statements. It returns an error when no columns are given or when the
// columns have different lengths.
func NewDataset(columns ...Column) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, ErrEmptyDataset
	}
	rows := columns[0].Len()
	for _, c := range columns[1:] {
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d",
				ErrColumnLengthMismatch, c.name, c.Len(), rows)
		}
	}
	return &Dataset{columns: columns}, nil
}

// Columns returns the dataset's columns in order.
func (d *Dataset) Columns() []Column {
	return d.columns
}

// ColumnNames returns the column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// Rows returns the number of rows in the dataset.
func (d *Dataset) Rows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

// column looks up a column by exact name.
func (d *Dataset) column(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.name == name {
			return c, true
		}
	}
	return Column{}, false
}

// row collects the values of row i across all columns, in column order.
func (d *Dataset) row(i int) []any {
	values := make([]any, len(d.columns))
	for j, c := range d.columns {
		values[j] = c.values[i]
	}
	return values
}

// minMax computes the stringified minimum and maximum of the named column.
// It fails when the column is absent or empty, since a delete range cannot
// be derived from it.
func (d *Dataset) minMax(name string) (string, string, error) {
	c, ok := d.column(name)
	if !ok {
		return "", "", fmt.Errorf("%w: column %q not in dataset", ErrRangeComputation, name)
	}
	if c.Len() == 0 {
		return "", "", fmt.Errorf("%w: column %q is empty", ErrRangeComputation, name)
	}
	minV, maxV := c.values[0], c.values[0]
	for _, v := range c.values[1:] {
		if less(v, minV) {
			minV = v
		}
		if less(maxV, v) {
			maxV = v
		}
	}
	return formatValue(minV), formatValue(maxV), nil
}

// distinct returns the stringified distinct values of the named column in
// first-occurrence order.
func (d *Dataset) distinct(name string) ([]string, error) {
	c, ok := d.column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	seen := make(map[string]struct{}, len(c.values))
	out := make([]string, 0, 1)
	for _, v := range c.values {
		s := formatValue(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// less orders two values of the same dynamic type.
func less(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Before(bv)
	case int32:
		bv, _ := b.(int32)
		return av < bv
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case float32:
		bv, _ := b.(float32)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case string:
		bv, _ := b.(string)
		return av < bv
	default:
		return false
	}
}

// formatValue renders a value as it appears inside a SQL string literal.
func formatValue(v any) string {
	switch tv := v.(type) {
	case time.Time:
		return tv.Format(datetimeLayout)
	case int32:
		return strconv.FormatInt(int64(tv), 10)
	case int64:
		return strconv.FormatInt(tv, 10)
	case float32:
		return strconv.FormatFloat(float64(tv), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64)
	case string:
		return tv
	default:
		return fmt.Sprintf("%v", tv)
	}
}
