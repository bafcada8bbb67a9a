// internal/pagination/offset.go
package pagination

import (
	"fmt"
	"strings"

	"querygate/internal/schema"
)

// MaxPageSize caps both pagination strategies.
const MaxPageSize = 10000

// ValidateOffsetParams checks 1-based page and pageSize bounds.
func ValidateOffsetParams(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("%w: Page must be >= 1, got %d", ErrInvalidParameter, page)
	}
	return validatePageSize(pageSize)
}

func validatePageSize(pageSize int) error {
	if pageSize < 1 {
		return fmt.Errorf("%w: PageSize must be >= 1, got %d", ErrInvalidParameter, pageSize)
	}
	if pageSize > MaxPageSize {
		return fmt.Errorf("%w: PageSize cannot exceed %d, got %d", ErrInvalidParameter, MaxPageSize, pageSize)
	}
	return nil
}

// WrapOffset rewrites a base query into a numbered, ordered page. The base
// result set is ordered by the query's orderBy, numbered, filtered to the
// half-open range (offset, offset+pageSize], and re-sorted by row number
// for deterministic output. The whole ordering is recomputed every page,
// so cost grows with the offset; the upside is that the client holds no
// state beyond the page number.
func WrapOffset(q *schema.QueryDefinition, page, pageSize int) (string, error) {
	if strings.TrimSpace(q.OrderBy) == "" {
		return "", fmt.Errorf("%w: query '%s' requires orderBy for offset pagination",
			schema.ErrSchemaMismatch, q.Name)
	}

	offset := (page - 1) * pageSize
	endRow := offset + pageSize
	base := strings.TrimRight(strings.TrimSpace(q.SQL), ";")

	return fmt.Sprintf(`WITH paginated_query AS (
    SELECT
        ROW_NUMBER() OVER (ORDER BY %s) AS __row_num,
        *
    FROM (
        %s
    ) AS base_query
)
SELECT *
FROM paginated_query
WHERE __row_num > %d AND __row_num <= %d
ORDER BY __row_num`, q.OrderBy, base, offset, endRow), nil
}
