// internal/domain/row.go
package domain

// Row is a single result row. Columns preserves the projection order of
// the source query so JSON output keeps columns in a stable order; Values
// holds the JSON-safe scalar for each column.
type Row struct {
	Columns []string
	Values  map[string]any
}

// Get returns the value for a column and whether the column is present.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.Columns)
}
