// Package chsink writes tabular datasets into ClickHouse while managing the
// destination schema for you: the target database and table are created on
// first use, columns missing from an existing table are added, and rows
// overlapping the new batch's partition range are deleted before insert so
// that re-running the same write replaces data instead of duplicating it.
//
// # Basic Usage
//
// Create a Writer once and reuse it for every insert:
//
//	w, err := chsink.New(chsink.Config{
//	    Host:     "127.0.0.1",
//	    Port:     9000,
//	    Database: "metrics",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	ds, err := chsink.NewDataset(
//	    chsink.TimeColumn("date", dates),
//	    chsink.StringColumn("job", jobs),
//	    chsink.Float64Column("value", values),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := w.Insert(ctx, ds, "samples"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Idempotent Writes
//
// By default Insert deletes rows whose partition column (default "date")
// falls within the dataset's min/max range before inserting. When several
// logical batches share a partition range, name the columns that identify
// the batch so the delete only touches its own rows:
//
//	err := w.Insert(ctx, ds, "samples", chsink.WithCleanupKeys("job"))
//
// Each cleanup key column must hold exactly one distinct value across the
// dataset; otherwise the write is rejected rather than risking a delete of
// unrelated rows.
//
// # Schema Management
//
// A missing table is created as a MergeTree partitioned by
// toYYYYMM(partition column). Column types are resolved from the dataset's
// semantic kinds, with per-name overrides taking precedence (by default,
// columns named "date" or "Date" become DateTime64(3)). When an insert is
// rejected because the table lacks a dataset column, the column is added
// and the insert retried once. A missing database is likewise created and
// retried once.
//
// # Loading Data
//
// Datasets can be built column by column, loaded from CSV (plain or
// gzip/bzip2/xz/zstd compressed) or XLSX files with automatic column type
// inference, or converted from Apache Arrow record batches.
//
// # Concurrency
//
// A Writer assumes one logical writer per destination table. The
// exists-check, create, cleanup, and insert steps are not wrapped in a
// transaction, so concurrent writers to the same table can race.
package chsink
