package chsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInsertRequest(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		req := newInsertRequest("metrics", "samples", nil)
		assert.Equal(t, "metrics", req.database)
		assert.Equal(t, "samples", req.table)
		assert.True(t, req.cleanup)
		assert.Empty(t, req.cleanupKeys)
		assert.Equal(t, "date", req.partitionColumn)
		assert.Equal(t, "toYYYYMM", req.partitionFunc)
		assert.Equal(t, "date", req.orderBy, "order expression defaults to the partition column")
	})

	t.Run("order expression follows a custom partition column", func(t *testing.T) {
		t.Parallel()

		req := newInsertRequest("metrics", "samples", []InsertOption{
			WithPartitionColumn("ts"),
		})
		assert.Equal(t, "ts", req.orderBy)
	})

	t.Run("explicit order expression wins", func(t *testing.T) {
		t.Parallel()

		req := newInsertRequest("metrics", "samples", []InsertOption{
			WithPartitionColumn("ts"),
			WithOrderBy("(ts, job)"),
		})
		assert.Equal(t, "(ts, job)", req.orderBy)
	})

	t.Run("all options applied", func(t *testing.T) {
		t.Parallel()

		req := newInsertRequest("metrics", "samples", []InsertOption{
			WithDatabase("staging"),
			WithoutCleanup(),
			WithCleanupKeys("job", "source"),
			WithPartitionFunc("toYYYYMMDD"),
		})
		assert.Equal(t, "staging", req.database)
		assert.False(t, req.cleanup)
		assert.Equal(t, []string{"job", "source"}, req.cleanupKeys)
		assert.Equal(t, "toYYYYMMDD", req.partitionFunc)
	})
}
