// internal/storage/executor.go
package storage

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"querygate/internal/domain"
)

// ErrDataSource wraps query execution, timeout, and connectivity failures.
// Reported to callers as a generic server error; the cause is logged.
var ErrDataSource = errors.New("data source error")

// Executor runs prepared queries and streams rows without materializing
// result sets. Safe for concurrent use; each stream owns its own
// connection from the pool.
type Executor struct {
	db             *sql.DB
	commandTimeout time.Duration
}

// NewExecutor creates an executor with a default per-query timeout.
func NewExecutor(db *sql.DB, commandTimeout time.Duration) *Executor {
	return &Executor{db: db, commandTimeout: commandTimeout}
}

// StreamQuery executes a query and returns a lazy, forward-only row
// stream. A non-positive timeout falls back to the configured default.
// The caller must drain the stream or Close it; cancelling ctx aborts
// iteration promptly without further reads.
func (e *Executor) StreamQuery(ctx context.Context, query string, args []any, timeout time.Duration) (*RowStream, error) {
	if timeout <= 0 {
		timeout = e.commandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		customLog.Warnf("Storage: Query failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrDataSource, err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return nil, fmt.Errorf("%w: failed to read column metadata: %v", ErrDataSource, err)
	}

	return &RowStream{rows: rows, cancel: cancel, columns: columns}, nil
}

// RowStream is a lazy sequence of rows backed by an open cursor.
type RowStream struct {
	rows    *sql.Rows
	cancel  context.CancelFunc
	columns []string
	count   int
	err     error
}

// Next fetches and normalizes the next row. It returns false at the end
// of the stream or on failure; check Err afterwards.
func (s *RowStream) Next() (domain.Row, bool) {
	if s.err != nil {
		return domain.Row{}, false
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			s.err = fmt.Errorf("%w: %v", ErrDataSource, err)
		}
		return domain.Row{}, false
	}

	raw := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		s.err = fmt.Errorf("%w: failed to scan row: %v", ErrDataSource, err)
		return domain.Row{}, false
	}

	row := domain.Row{
		Columns: make([]string, 0, len(s.columns)),
		Values:  make(map[string]any, len(s.columns)),
	}
	for i, col := range s.columns {
		// Helper columns injected by the offset pager never reach clients.
		if strings.HasPrefix(col, "__") {
			continue
		}
		row.Columns = append(row.Columns, col)
		row.Values[col] = normalizeValue(raw[i])
	}

	s.count++
	return row, true
}

// Err returns the first failure encountered while streaming, if any.
func (s *RowStream) Err() error {
	return s.err
}

// Count returns the number of rows yielded so far.
func (s *RowStream) Count() int {
	return s.count
}

// Close releases the cursor and its deadline. Always safe to call.
func (s *RowStream) Close() error {
	s.cancel()
	return s.rows.Close()
}

// normalizeValue maps driver values onto the JSON-safe scalar set:
// timestamps become ISO-8601 strings, binary becomes base64, integers and
// floats pass through untouched so numeric literals stay exact.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case bool, string, int64, float64:
		return v
	case int:
		return int64(v)
	default:
		return fmt.Sprint(v)
	}
}
