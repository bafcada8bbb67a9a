// internal/schema/models.go
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pagination modes accepted in queries.json. Matching is case-insensitive.
const (
	ModeOffset = "Offset"
	ModeToken  = "Token"
)

// ErrSchemaMismatch marks configuration or result shapes that contradict
// the declared contract. Fatal at startup, per-request afterwards.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Regular expression for valid column/identifier names (alphanumeric + underscore)
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsValidIdentifier checks that a string is safe to splice into generated
// SQL as a column name. Same rules for order-by columns and key columns.
func IsValidIdentifier(name string) bool {
	return identifierRegex.MatchString(name) && len(name) <= 64
}

// IsValidOrderBy checks a comma-separated order-by expression: each term
// must be an identifier with an optional ASC/DESC suffix.
func IsValidOrderBy(expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return false
	}
	for _, term := range strings.Split(expr, ",") {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return false
		}
		if !IsValidIdentifier(fields[0]) {
			return false
		}
		if len(fields) == 2 {
			dir := strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return false
			}
		}
	}
	return true
}

// QueryDefinition is one administrator-declared query. Loaded once and
// shared read-only across requests.
type QueryDefinition struct {
	Name           string   `json:"name"`
	SQL            string   `json:"sql"`
	Paginable      bool     `json:"paginable"`
	PaginationMode string   `json:"paginationMode"`
	OrderBy        string   `json:"orderBy,omitempty"`
	KeyColumns     []string `json:"keyColumns,omitempty"`
}

// IsOffsetMode reports whether the query paginates by page number.
func (q *QueryDefinition) IsOffsetMode() bool {
	return strings.EqualFold(q.PaginationMode, ModeOffset)
}

// IsTokenMode reports whether the query paginates by continuation token.
func (q *QueryDefinition) IsTokenMode() bool {
	return strings.EqualFold(q.PaginationMode, ModeToken)
}

// Validate enforces the pagination invariants on a definition.
func (q *QueryDefinition) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("%w: query with empty name", ErrSchemaMismatch)
	}
	if strings.TrimSpace(q.SQL) == "" {
		return fmt.Errorf("%w: query '%s' has empty sql", ErrSchemaMismatch, q.Name)
	}
	if !q.Paginable {
		return nil
	}

	switch {
	case q.IsOffsetMode():
		if !IsValidOrderBy(q.OrderBy) {
			return fmt.Errorf("%w: query '%s' requires a valid orderBy for offset pagination", ErrSchemaMismatch, q.Name)
		}
	case q.IsTokenMode():
		if len(q.KeyColumns) == 0 {
			return fmt.Errorf("%w: query '%s' requires keyColumns for token pagination", ErrSchemaMismatch, q.Name)
		}
		for _, col := range q.KeyColumns {
			if !IsValidIdentifier(col) {
				return fmt.Errorf("%w: query '%s' has invalid key column '%s'", ErrSchemaMismatch, q.Name, col)
			}
		}
	default:
		return fmt.Errorf("%w: query '%s' has unknown pagination mode '%s'", ErrSchemaMismatch, q.Name, q.PaginationMode)
	}
	return nil
}

// QueriesConfig is the parsed queries.json document.
type QueriesConfig struct {
	Queries []QueryDefinition `json:"queries"`
}

// Find returns the query with the given name (case-insensitive), or nil.
func (c *QueriesConfig) Find(name string) *QueryDefinition {
	for i := range c.Queries {
		if strings.EqualFold(c.Queries[i].Name, name) {
			return &c.Queries[i]
		}
	}
	return nil
}

// QueryMapping binds one query's rows to a named output array.
type QueryMapping struct {
	QueryName   string `json:"queryName"`
	TargetArray string `json:"targetArray"`
}

// RouteMapping maps an endpoint path segment to an ordered list of
// query/array pairs. One endpoint may emit multiple arrays.
type RouteMapping struct {
	Endpoint string         `json:"endpoint"`
	Queries  []QueryMapping `json:"queries"`
}

// MappingConfig is the parsed mapping.json document.
type MappingConfig struct {
	Routes []RouteMapping `json:"routes"`
}

// FindRoute returns the route for an endpoint name (case-insensitive), or nil.
func (m *MappingConfig) FindRoute(endpoint string) *RouteMapping {
	for i := range m.Routes {
		if strings.EqualFold(m.Routes[i].Endpoint, endpoint) {
			return &m.Routes[i]
		}
	}
	return nil
}

// FieldSchema declares one field of an output array.
type FieldSchema struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ArraySchema declares the ordered field set of one output array.
type ArraySchema struct {
	Fields []FieldSchema `json:"fields"`
}

// IntegrationSchema is the authoritative external contract: every array a
// route may emit, with its declared fields.
type IntegrationSchema struct {
	Arrays map[string]ArraySchema `json:"arrays"`
}
