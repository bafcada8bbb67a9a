// internal/pagination/token.go
package pagination

import (
	"encoding/json"
	"fmt"
	"strings"

	"querygate/internal/domain"
	"querygate/internal/schema"
)

// ValidateTokenParams checks the pageSize bounds for keyset pagination.
func ValidateTokenParams(pageSize int) error {
	return validatePageSize(pageSize)
}

// WrapKeyset rewrites a base query into a keyset page: top pageSize rows
// ordered by the declared key columns, resuming strictly after the last
// seen key tuple when one is supplied. The tuple comparison
// (k1,...,kn) > (v1,...,vn) is expressed as a disjunction of conjunctions
// so ties on earlier key columns are broken by later ones. Returned args
// bind the generated placeholders in order, ending with the LIMIT.
func WrapKeyset(q *schema.QueryDefinition, last KeyValues, pageSize int) (string, []any, error) {
	if len(q.KeyColumns) == 0 {
		return "", nil, fmt.Errorf("%w: query '%s' requires keyColumns for token pagination",
			schema.ErrSchemaMismatch, q.Name)
	}

	var sb strings.Builder
	var args []any

	base := strings.TrimRight(strings.TrimSpace(q.SQL), ";")
	sb.WriteString("SELECT *\nFROM (\n    ")
	sb.WriteString(base)
	sb.WriteString("\n) AS base_query\n")

	if len(last) > 0 {
		terms := make([]string, 0, len(q.KeyColumns))
		for i := range q.KeyColumns {
			conds := make([]string, 0, i+1)
			for j := 0; j < i; j++ {
				value, ok := last.Get(q.KeyColumns[j])
				if !ok {
					return "", nil, fmt.Errorf("%w: missing value for key column '%s'",
						ErrInvalidToken, q.KeyColumns[j])
				}
				conds = append(conds, q.KeyColumns[j]+" = ?")
				args = append(args, bindValue(value))
			}
			value, ok := last.Get(q.KeyColumns[i])
			if !ok {
				return "", nil, fmt.Errorf("%w: missing value for key column '%s'",
					ErrInvalidToken, q.KeyColumns[i])
			}
			conds = append(conds, q.KeyColumns[i]+" > ?")
			args = append(args, bindValue(value))

			terms = append(terms, "("+strings.Join(conds, " AND ")+")")
		}
		sb.WriteString("WHERE (\n    ")
		sb.WriteString(strings.Join(terms, "\n    OR "))
		sb.WriteString("\n)\n")
	}

	sb.WriteString("ORDER BY ")
	sb.WriteString(strings.Join(q.KeyColumns, ", "))
	sb.WriteString("\nLIMIT ?")
	args = append(args, pageSize)

	return sb.String(), args, nil
}

// bindValue maps token payload values onto driver-bindable types. Numbers
// decode as json.Number, which would otherwise bind as text.
func bindValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// ExtractKeyValues pulls the key column values out of the last row of a
// full page, in declared key order, for minting the next token. A key
// column absent from the projection is a contract violation: the base
// query must always project its declared keys.
func ExtractKeyValues(lastRow domain.Row, keyColumns []string) (KeyValues, error) {
	keyValues := make(KeyValues, 0, len(keyColumns))
	for _, col := range keyColumns {
		value, ok := lastRow.Get(col)
		if !ok {
			return nil, fmt.Errorf("%w: key column '%s' not found in query results",
				schema.ErrSchemaMismatch, col)
		}
		keyValues = append(keyValues, KeyValue{Column: col, Value: value})
	}
	return keyValues, nil
}
