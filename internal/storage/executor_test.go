// internal/storage/executor_test.go
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Executor {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "executor_test.db")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, "sqlite3", dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE samples (
		id INTEGER PRIMARY KEY,
		name TEXT,
		payload BLOB,
		note TEXT
	)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	_, err = db.Exec(`INSERT INTO samples (id, name, payload, note) VALUES
		(1, 'alpha', X'010203', 'first'),
		(2, 'beta', NULL, NULL),
		(3, 'gamma', X'FF', 'third')`)
	if err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}

	return NewExecutor(db, 30*time.Second)
}

func TestStreamQueryNormalizesValues(t *testing.T) {
	executor := setupTestDB(t)

	stream, err := executor.StreamQuery(context.Background(), "SELECT id, name, payload, note FROM samples ORDER BY id", nil, 0)
	if err != nil {
		t.Fatalf("StreamQuery() error = %v", err)
	}
	defer stream.Close()

	first, ok := stream.Next()
	if !ok {
		t.Fatalf("expected first row, stream error = %v", stream.Err())
	}
	if got := first.Values["id"]; got != int64(1) {
		t.Errorf("id = %v (%T); want int64(1)", got, got)
	}
	if got := first.Values["name"]; got != "alpha" {
		t.Errorf("name = %v; want alpha", got)
	}
	// BLOBs come back base64-encoded: 0x010203 -> "AQID".
	if got := first.Values["payload"]; got != "AQID" {
		t.Errorf("payload = %v; want AQID", got)
	}

	second, ok := stream.Next()
	if !ok {
		t.Fatalf("expected second row, stream error = %v", stream.Err())
	}
	if got := second.Values["payload"]; got != nil {
		t.Errorf("NULL payload = %v; want nil", got)
	}
	if got := second.Values["note"]; got != nil {
		t.Errorf("NULL note = %v; want nil", got)
	}

	if _, ok := stream.Next(); !ok {
		t.Fatalf("expected third row, stream error = %v", stream.Err())
	}
	if _, ok := stream.Next(); ok {
		t.Error("expected end of stream after three rows")
	}
	if err := stream.Err(); err != nil {
		t.Errorf("stream.Err() = %v; want nil", err)
	}
	if stream.Count() != 3 {
		t.Errorf("stream.Count() = %d; want 3", stream.Count())
	}
}

func TestStreamQueryStripsHelperColumns(t *testing.T) {
	executor := setupTestDB(t)

	stream, err := executor.StreamQuery(context.Background(),
		"SELECT id, name, id AS __row_num FROM samples ORDER BY id", nil, 0)
	if err != nil {
		t.Fatalf("StreamQuery() error = %v", err)
	}
	defer stream.Close()

	row, ok := stream.Next()
	if !ok {
		t.Fatalf("expected a row, stream error = %v", stream.Err())
	}
	if _, present := row.Values["__row_num"]; present {
		t.Error("__row_num helper column leaked into the row values")
	}
	for _, col := range row.Columns {
		if col == "__row_num" {
			t.Error("__row_num helper column leaked into the column list")
		}
	}
	if len(row.Columns) != 2 {
		t.Errorf("row.Columns = %v; want exactly id and name", row.Columns)
	}
}

func TestStreamQueryPreservesColumnOrder(t *testing.T) {
	executor := setupTestDB(t)

	stream, err := executor.StreamQuery(context.Background(),
		"SELECT note, id, name FROM samples WHERE id = 1", nil, 0)
	if err != nil {
		t.Fatalf("StreamQuery() error = %v", err)
	}
	defer stream.Close()

	row, ok := stream.Next()
	if !ok {
		t.Fatalf("expected a row, stream error = %v", stream.Err())
	}
	want := []string{"note", "id", "name"}
	for i, col := range want {
		if row.Columns[i] != col {
			t.Errorf("row.Columns[%d] = %q; want %q", i, row.Columns[i], col)
		}
	}
}

func TestStreamQueryBadSQL(t *testing.T) {
	executor := setupTestDB(t)

	_, err := executor.StreamQuery(context.Background(), "SELECT * FROM no_such_table", nil, 0)
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("StreamQuery() error = %v; want ErrDataSource", err)
	}
}

func TestStreamQueryParameterBinding(t *testing.T) {
	executor := setupTestDB(t)

	stream, err := executor.StreamQuery(context.Background(),
		"SELECT id FROM samples WHERE id > ? ORDER BY id LIMIT ?", []any{1, 1}, 0)
	if err != nil {
		t.Fatalf("StreamQuery() error = %v", err)
	}
	defer stream.Close()

	row, ok := stream.Next()
	if !ok {
		t.Fatalf("expected a row, stream error = %v", stream.Err())
	}
	if row.Values["id"] != int64(2) {
		t.Errorf("id = %v; want 2", row.Values["id"])
	}
	if _, ok := stream.Next(); ok {
		t.Error("LIMIT 1 should yield a single row")
	}
}

func TestStreamQueryCancellation(t *testing.T) {
	executor := setupTestDB(t)

	db := executor.db
	for i := 10; i < 2000; i++ {
		if _, err := db.Exec("INSERT INTO samples (id, name) VALUES (?, ?)", i, "bulk"); err != nil {
			t.Fatalf("failed to bulk insert: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := executor.StreamQuery(ctx, "SELECT id, name FROM samples ORDER BY id", nil, 0)
	if err != nil {
		t.Fatalf("StreamQuery() error = %v", err)
	}
	defer stream.Close()

	// Read a few rows, cancel mid-stream, then keep pulling: the stream
	// must stop early and surface a failure instead of draining fully.
	for i := 0; i < 3; i++ {
		if _, ok := stream.Next(); !ok {
			t.Fatalf("expected row %d, stream error = %v", i, stream.Err())
		}
	}
	cancel()

	for {
		if _, ok := stream.Next(); !ok {
			break
		}
	}
	if stream.Count() >= 1990 {
		t.Errorf("stream drained %d rows after cancellation; want early stop", stream.Count())
	}
	if stream.Err() == nil {
		t.Error("stream.Err() = nil after cancellation; want an error")
	}
}
