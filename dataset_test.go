package chsink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	t.Parallel()

	t.Run("valid dataset", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(
			StringColumn("job", []string{"etl", "etl"}),
			Float64Column("value", []float64{1.5, 2.5}),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Rows())
		assert.Equal(t, []string{"job", "value"}, ds.ColumnNames())
	})

	t.Run("no columns", func(t *testing.T) {
		t.Parallel()

		_, err := NewDataset()
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := NewDataset(
			StringColumn("a", []string{"x", "y"}),
			Int64Column("b", []int64{1}),
		)
		assert.ErrorIs(t, err, ErrColumnLengthMismatch)
	})

	t.Run("column order is preserved", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(
			StringColumn("z", []string{"1"}),
			StringColumn("a", []string{"2"}),
			StringColumn("m", []string{"3"}),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a", "m"}, ds.ColumnNames())
	})
}

func TestDataset_MinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		column      Column
		expectedMin string
		expectedMax string
	}{
		{
			name: "datetime column",
			column: TimeColumn("date", []time.Time{
				time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
			}),
			expectedMin: "2024-03-01 00:00:00",
			expectedMax: "2024-03-31 23:59:59",
		},
		{
			name:        "int64 column",
			column:      Int64Column("id", []int64{42, -7, 100}),
			expectedMin: "-7",
			expectedMax: "100",
		},
		{
			name:        "int32 column",
			column:      Int32Column("id", []int32{5, 3, 9}),
			expectedMin: "3",
			expectedMax: "9",
		},
		{
			name:        "float64 column",
			column:      Float64Column("v", []float64{0.5, -1.25, 3}),
			expectedMin: "-1.25",
			expectedMax: "3",
		},
		{
			name:        "string column",
			column:      StringColumn("s", []string{"beta", "alpha", "gamma"}),
			expectedMin: "alpha",
			expectedMax: "gamma",
		},
		{
			name:        "single value",
			column:      Int64Column("id", []int64{7}),
			expectedMin: "7",
			expectedMax: "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ds, err := NewDataset(tt.column)
			require.NoError(t, err)

			minV, maxV, err := ds.minMax(tt.column.Name())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedMin, minV)
			assert.Equal(t, tt.expectedMax, maxV)
		})
	}

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(StringColumn("a", []string{"x"}))
		require.NoError(t, err)

		_, _, err = ds.minMax("date")
		assert.ErrorIs(t, err, ErrRangeComputation)
	})

	t.Run("empty column", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(Int64Column("id", nil))
		require.NoError(t, err)

		_, _, err = ds.minMax("id")
		assert.ErrorIs(t, err, ErrRangeComputation)
	})
}

func TestDataset_Distinct(t *testing.T) {
	t.Parallel()

	t.Run("distinct values in first occurrence order", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(StringColumn("job", []string{"b", "a", "b", "c", "a"}))
		require.NoError(t, err)

		values, err := ds.distinct("job")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, values)
	})

	t.Run("single distinct value", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(StringColumn("job", []string{"etl", "etl", "etl"}))
		require.NoError(t, err)

		values, err := ds.distinct("job")
		require.NoError(t, err)
		assert.Equal(t, []string{"etl"}, values)
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(StringColumn("job", []string{"etl"}))
		require.NoError(t, err)

		_, err = ds.distinct("source")
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestDataset_Row(t *testing.T) {
	t.Parallel()

	ds, err := NewDataset(
		Int64Column("id", []int64{1, 2}),
		StringColumn("name", []string{"a", "b"}),
	)
	require.NoError(t, err)

	assert.Equal(t, []any{int64(1), "a"}, ds.row(0))
	assert.Equal(t, []any{int64(2), "b"}, ds.row(1))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
		{"int32", int32(-12), "-12"},
		{"int64", int64(900), "900"},
		{"float32", float32(1.5), "1.5"},
		{"float64", 2.25, "2.25"},
		{"string", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatValue(tt.value))
		})
	}
}
