// api/models/query_models.go
package models

// --- Request Structs ---

// ExecuteParams are the query parameters accepted by the execution
// endpoints. Page and PageSize bounds are enforced by the pagination
// engine so violations produce its error messages, not binding errors.
type ExecuteParams struct {
	Timeout           *int   `form:"timeout" binding:"omitempty,min=1,max=3600"`
	Page              *int   `form:"page"`
	PageSize          *int   `form:"pageSize"`
	ContinuationToken string `form:"continuationToken"`
	MaxRows           *int   `form:"maxRows" binding:"omitempty,min=1"`
}

// PaginationRequested reports whether any pagination parameter is present.
func (p ExecuteParams) PaginationRequested() bool {
	return p.Page != nil || p.PageSize != nil || p.ContinuationToken != ""
}

// --- Response Structs ---

// QuerySummary describes one configured query in the catalog listing.
type QuerySummary struct {
	Name           string `json:"name"`
	Paginable      bool   `json:"paginable"`
	PaginationMode string `json:"paginationMode"`
}

// MappingSummary describes one query/array pair of a route.
type MappingSummary struct {
	QueryName   string `json:"queryName"`
	TargetArray string `json:"targetArray"`
}

// RouteSummary describes one configured route in the catalog listing.
type RouteSummary struct {
	Endpoint string           `json:"endpoint"`
	Queries  []MappingSummary `json:"queries"`
}
