// api/handlers/query_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"querygate/api/models"
	"querygate/config"
	"querygate/internal/logger"
	"querygate/internal/pagination"
	"querygate/internal/schema"
	"querygate/internal/serialization"
	"querygate/internal/storage"
)

var customLog = logger.NewLogger()

const defaultPageSize = 100

// QueryHandler serves the query gateway endpoints. All fields are shared
// read-only across concurrent requests.
type QueryHandler struct {
	Snapshot     *config.Snapshot
	Executor     *storage.Executor
	Codec        *pagination.TokenCodec
	Validator    *schema.ContractValidator
	ValidateRows bool
}

// NewQueryHandler creates a handler over an immutable config snapshot.
func NewQueryHandler(snapshot *config.Snapshot, executor *storage.Executor, codec *pagination.TokenCodec, validateRows bool) *QueryHandler {
	return &QueryHandler{
		Snapshot:     snapshot,
		Executor:     executor,
		Codec:        codec,
		Validator:    schema.NewContractValidator(snapshot.Integration),
		ValidateRows: validateRows,
	}
}

// Health reports service liveness. Exempt from the access gate.
func (h *QueryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "querygate",
	})
}

// ListQueries returns the configured query and route catalog.
func (h *QueryHandler) ListQueries(c *gin.Context) {
	queries := make([]models.QuerySummary, 0, len(h.Snapshot.Queries.Queries))
	for _, q := range h.Snapshot.Queries.Queries {
		queries = append(queries, models.QuerySummary{
			Name:           q.Name,
			Paginable:      q.Paginable,
			PaginationMode: q.PaginationMode,
		})
	}

	routes := make([]models.RouteSummary, 0, len(h.Snapshot.Mapping.Routes))
	for _, r := range h.Snapshot.Mapping.Routes {
		mappings := make([]models.MappingSummary, 0, len(r.Queries))
		for _, qm := range r.Queries {
			mappings = append(mappings, models.MappingSummary{
				QueryName:   qm.QueryName,
				TargetArray: qm.TargetArray,
			})
		}
		routes = append(routes, models.RouteSummary{Endpoint: r.Endpoint, Queries: mappings})
	}

	c.JSON(http.StatusOK, gin.H{"queries": queries, "routes": routes})
}

// preparedQuery is the outcome of rewriting one sub-query for execution.
type preparedQuery struct {
	sql      string
	args     []any
	pageInfo map[string]any
	pageSize int
}

// Execute runs every query mapped to an endpoint and streams the named
// arrays plus pagination metadata as one JSON object.
func (h *QueryHandler) Execute(c *gin.Context) {
	start := time.Now()
	endpointName := c.Param("endpoint")

	route := h.Snapshot.Mapping.FindRoute(endpointName)
	if route == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":   "NotFound.Endpoint",
			"message": fmt.Sprintf("Endpoint '%s' not found", endpointName),
		})
		return
	}

	var params models.ExecuteParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "InvalidRequest",
			"message": "Invalid query parameters: " + err.Error(),
		})
		return
	}

	var timeout time.Duration
	if params.Timeout != nil {
		timeout = time.Duration(*params.Timeout) * time.Second
	}
	maxRows := 0
	if params.MaxRows != nil {
		maxRows = *params.MaxRows
	}

	var arrays []serialization.NamedArray
	var pageInfo map[string]any
	var tokenTracker *pageTracker
	var tokenQuery *schema.QueryDefinition

	for _, qm := range route.Queries {
		queryDef := h.Snapshot.Queries.Find(qm.QueryName)
		if queryDef == nil {
			// Partial-result policy: a dangling query name skips its
			// array instead of failing the whole endpoint.
			customLog.Warnf("Handler: Query '%s' not found for endpoint '%s', skipping", qm.QueryName, endpointName)
			continue
		}

		prepared, err := h.prepare(queryDef, params)
		if err != nil {
			h.abortPreparation(c, err)
			return
		}

		// Cursors open on first read, one at a time as the writer
		// reaches each array. Open failures before any byte is flushed
		// still map to a clean error response downstream.
		stream := &lazyStream{open: func() (*storage.RowStream, error) {
			return h.Executor.StreamQuery(c.Request.Context(), prepared.sql, prepared.args, timeout)
		}}
		defer stream.Close()

		tracker := &pageTracker{inner: stream, maxRows: maxRows}
		if prepared.pageInfo != nil {
			pageInfo = prepared.pageInfo
			if queryDef.IsTokenMode() {
				tracker.pageSize = prepared.pageSize
				tokenTracker = tracker
				tokenQuery = queryDef
			}
		}

		var rows serialization.RowStream = tracker
		if h.ValidateRows {
			rows = &validatingStream{inner: tracker, validator: h.Validator, targetArray: qm.TargetArray}
		}
		arrays = append(arrays, serialization.NamedArray{Name: qm.TargetArray, Rows: rows})
	}

	var metadata func() (map[string]any, error)
	if pageInfo != nil {
		metadata = func() (map[string]any, error) {
			pageInfo["continuationToken"] = nil
			if tokenTracker != nil && tokenTracker.fullPage() {
				keyValues, err := pagination.ExtractKeyValues(tokenTracker.lastRow, tokenQuery.KeyColumns)
				if err != nil {
					return nil, err
				}
				token, err := h.Codec.Create(keyValues)
				if err != nil {
					return nil, err
				}
				pageInfo["continuationToken"] = token
			}
			return map[string]any{"_page": pageInfo}, nil
		}
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)

	if err := serialization.WriteResponse(c.Writer, arrays, metadata); err != nil {
		// Headers and part of the body may already be on the wire; there
		// is no atomic rollback once streaming starts. Log and terminate.
		if c.Request.Context().Err() != nil {
			customLog.Warnf("Handler: Request cancelled for endpoint '%s'", endpointName)
		} else {
			customLog.Errorf("Handler: Streaming failed for endpoint '%s': %v", endpointName, err)
		}
		_ = c.Error(err)
		c.Abort()
		return
	}

	customLog.Printf("Handler: Endpoint '%s' executed successfully in %dms from %s",
		endpointName, time.Since(start).Milliseconds(), c.ClientIP())
}

// prepare rewrites one sub-query according to the requested pagination.
func (h *QueryHandler) prepare(q *schema.QueryDefinition, params models.ExecuteParams) (*preparedQuery, error) {
	if !params.PaginationRequested() {
		return &preparedQuery{sql: q.SQL}, nil
	}

	if !q.Paginable {
		return nil, fmt.Errorf("%w: query '%s' does not support pagination",
			pagination.ErrInvalidParameter, q.Name)
	}

	pageSize := defaultPageSize
	if params.PageSize != nil {
		pageSize = *params.PageSize
	}

	switch {
	case q.IsOffsetMode():
		page := 1
		if params.Page != nil {
			page = *params.Page
		}
		if err := pagination.ValidateOffsetParams(page, pageSize); err != nil {
			return nil, err
		}
		sql, err := pagination.WrapOffset(q, page, pageSize)
		if err != nil {
			return nil, err
		}
		return &preparedQuery{
			sql:      sql,
			pageInfo: map[string]any{"mode": "offset", "page": page, "pageSize": pageSize},
			pageSize: pageSize,
		}, nil

	case q.IsTokenMode():
		if err := pagination.ValidateTokenParams(pageSize); err != nil {
			return nil, err
		}
		var last pagination.KeyValues
		if params.ContinuationToken != "" {
			decoded, ok := h.Codec.Validate(params.ContinuationToken)
			if !ok {
				return nil, pagination.ErrInvalidToken
			}
			last = decoded
		}
		sql, args, err := pagination.WrapKeyset(q, last, pageSize)
		if err != nil {
			return nil, err
		}
		return &preparedQuery{
			sql:      sql,
			args:     args,
			pageInfo: map[string]any{"mode": "token", "pageSize": pageSize},
			pageSize: pageSize,
		}, nil

	default:
		return nil, fmt.Errorf("%w: query '%s' has unknown pagination mode '%s'",
			schema.ErrSchemaMismatch, q.Name, q.PaginationMode)
	}
}

// abortPreparation maps preparation failures onto the error taxonomy.
func (h *QueryHandler) abortPreparation(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, pagination.ErrInvalidParameter), errors.Is(err, pagination.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "InvalidRequest",
			"message": err.Error(),
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Server.Error",
			"message": "An error occurred while preparing the query",
		})
	}
}
