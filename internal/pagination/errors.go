// internal/pagination/errors.go
package pagination

import "errors"

// Pagination failures reported to callers as InvalidRequest.
var (
	ErrInvalidParameter = errors.New("invalid pagination parameter")
	ErrInvalidToken     = errors.New("invalid or tampered continuation token")
)
