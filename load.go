package chsink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a CSV file into a dataset. The first row is the header.
// Compressed files are decompressed transparently based on the extension
// (.gz, .bz2, .xz, .zst). Column kinds are inferred from the cell values.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader, closer, err := decompressReader(path, f)
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // read-side decompressors fail on read, not close

	ds, err := FromCSV(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ds, nil
}

// FromCSV reads CSV data into a dataset. The first row is the header; column
// kinds are inferred from the remaining rows.
func FromCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return fromStringTable(records[0], records[1:])
}

// FromXLSX reads one sheet of an Excel workbook into a dataset. An empty
// sheet name selects the first sheet. The first row is the header; column
// kinds are inferred from the remaining rows.
func FromXLSX(r io.Reader, sheet string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	// excelize drops trailing empty cells, so pad rows to the header width.
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		for len(row) < len(header) {
			row = append(row, "")
		}
		body = append(body, row[:len(header)])
	}
	return fromStringTable(header, body)
}

// fromStringTable builds a dataset from a header row and body rows, inferring
// each column's kind from its cells.
func fromStringTable(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q", errDuplicateColumnName, name)
		}
		seen[name] = struct{}{}
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		cells := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		columns[i] = convertColumn(name, inferKind(cells), cells)
	}
	return NewDataset(columns...)
}

// FromRecord converts an Arrow record batch into a dataset. Timestamp and
// date fields become datetime columns; 32/64-bit integer and float fields
// keep their width; everything else is stringified. Null cells become the
// column kind's zero value.
func FromRecord(rec arrow.Record) (*Dataset, error) {
	if rec.NumCols() == 0 {
		return nil, ErrEmptyDataset
	}

	fields := rec.Schema().Fields()
	columns := make([]Column, len(fields))
	for i, field := range fields {
		col, err := fromArrowColumn(field.Name, rec.Column(i))
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return NewDataset(columns...)
}

// fromArrowColumn converts one Arrow array into a typed Column.
func fromArrowColumn(name string, arr arrow.Array) (Column, error) {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.Timestamp:
		tsType, ok := a.DataType().(*arrow.TimestampType)
		if !ok {
			return Column{}, errors.New("chsink: timestamp array without timestamp type")
		}
		values := make([]time.Time, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i).ToTime(tsType.Unit)
			}
		}
		return TimeColumn(name, values), nil

	case *array.Date32:
		values := make([]time.Time, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i).ToTime()
			}
		}
		return TimeColumn(name, values), nil

	case *array.Date64:
		values := make([]time.Time, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i).ToTime()
			}
		}
		return TimeColumn(name, values), nil

	case *array.Int32:
		values := make([]int32, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i)
			}
		}
		return Int32Column(name, values), nil

	case *array.Int64:
		values := make([]int64, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i)
			}
		}
		return Int64Column(name, values), nil

	case *array.Float32:
		values := make([]float32, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i)
			}
		}
		return Float32Column(name, values), nil

	case *array.Float64:
		values := make([]float64, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i)
			}
		}
		return Float64Column(name, values), nil

	case *array.String:
		values := make([]string, n)
		for i := range n {
			if !a.IsNull(i) {
				values[i] = a.Value(i)
			}
		}
		return StringColumn(name, values), nil

	default:
		values := make([]string, n)
		for i := range n {
			if !arr.IsNull(i) {
				values[i] = arr.ValueStr(i)
			}
		}
		return StringColumn(name, values), nil
	}
}
