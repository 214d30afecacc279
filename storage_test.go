package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStorageDriver(t *testing.T) {
	require.Equal(t, "libsql", StorageDriver("libsql://results-org.turso.io?authToken=x"))
	require.Equal(t, "libsql", StorageDriver("https://results-org.turso.io"))
	require.Equal(t, "sqlite", StorageDriver("results.db"))
	require.Equal(t, "sqlite", StorageDriver("file:results.db"))
}

func TestStorageResults(t *testing.T) {
	ctx := context.Background()
	storage, err := OpenStorage(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.Nil(t, err)
	defer storage.Close()

	require.Nil(t, storage.InitResultsDb(ctx, "run-1", map[string]any{"engine": "duckdb", "rows": 100}))
	// a second run shares the tables
	require.Nil(t, storage.InitResultsDb(ctx, "run-2", map[string]any{"engine": "sqlite"}))

	var engine, rows string
	require.Nil(t, storage.db.QueryRow("SELECT value FROM parameters WHERE run = ? AND name = ?", "run-1", "engine").Scan(&engine))
	require.Nil(t, storage.db.QueryRow("SELECT value FROM parameters WHERE run = ? AND name = ?", "run-1", "rows").Scan(&rows))
	require.Equal(t, "duckdb", engine)
	require.Equal(t, "100", rows)
	var parameters int
	require.Nil(t, storage.db.QueryRow("SELECT COUNT(*) FROM parameters WHERE run = ?", "run-1").Scan(&parameters))
	require.Equal(t, 3, parameters)

	measurements := []Measurement{
		{Name: "lt_0", Query: queriesAttributes[5].Query, Elapsed: 3 * time.Millisecond},
		{Name: "lt_429496729", Query: queriesAttributes[6].Query, Elapsed: 1500 * time.Microsecond},
	}
	require.Nil(t, storage.UpdateBenchmarkDb(ctx, "run-1", "duckdb", "Attributes_i32", measurements))
	require.Nil(t, storage.UpdateBenchmarkDb(ctx, "run-2", "sqlite", "Attributes_i32", measurements[:1]))

	written, err := storage.WrittenQueries(ctx, "run-1", "Attributes_i32")
	require.Nil(t, err)
	require.Equal(t, map[string]float64{"lt_0": 3, "lt_429496729": 1.5}, written)

	written, err = storage.WrittenQueries(ctx, "run-2", "Attributes_i32")
	require.Nil(t, err)
	require.Len(t, written, 1)

	var query string
	require.Nil(t, storage.db.QueryRow("SELECT query FROM measurements WHERE run = ? AND name = ?", "run-1", "lt_0").Scan(&query))
	require.Equal(t, "SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 0", query)

	// duplicated measurements are rejected and nothing of the batch is kept
	require.NotNil(t, storage.UpdateBenchmarkDb(ctx, "run-2", "sqlite", "Attributes_i32", measurements))
	written, err = storage.WrittenQueries(ctx, "run-2", "Attributes_i32")
	require.Nil(t, err)
	require.Len(t, written, 1)
}
