// api/handlers/stream_wrappers.go
package handlers

import (
	"querygate/internal/domain"
	"querygate/internal/schema"
	"querygate/internal/serialization"
	"querygate/internal/storage"
)

// lazyStream opens its cursor on the first read. The writer drains
// arrays sequentially, so at most one connection is outstanding per
// request and each query's timeout starts when its array starts
// draining, not when the route is resolved.
type lazyStream struct {
	open  func() (*storage.RowStream, error)
	inner *storage.RowStream
	err   error
}

func (s *lazyStream) Next() (domain.Row, bool) {
	if s.err != nil {
		return domain.Row{}, false
	}
	if s.inner == nil {
		inner, err := s.open()
		if err != nil {
			s.err = err
			return domain.Row{}, false
		}
		s.inner = inner
	}
	return s.inner.Next()
}

func (s *lazyStream) Err() error {
	if s.err != nil {
		return s.err
	}
	if s.inner == nil {
		return nil
	}
	return s.inner.Err()
}

// Close releases the cursor if it was ever opened.
func (s *lazyStream) Close() error {
	if s.inner == nil {
		return nil
	}
	return s.inner.Close()
}

// pageTracker decorates a row stream with the bookkeeping the
// orchestrator needs: row count, last-seen row for token minting, and the
// optional maxRows truncation.
type pageTracker struct {
	inner    serialization.RowStream
	pageSize int
	maxRows  int
	count    int
	lastRow  domain.Row
}

func (t *pageTracker) Next() (domain.Row, bool) {
	if t.maxRows > 0 && t.count >= t.maxRows {
		return domain.Row{}, false
	}
	row, ok := t.inner.Next()
	if !ok {
		return domain.Row{}, false
	}
	t.count++
	t.lastRow = row
	return row, true
}

func (t *pageTracker) Err() error {
	return t.inner.Err()
}

// fullPage reports the "more rows likely exist" heuristic: the page
// filled exactly. A page that ends precisely on the dataset boundary
// still mints a token; the follow-up call returns a definite empty page.
func (t *pageTracker) fullPage() bool {
	return t.pageSize > 0 && t.count == t.pageSize
}

// validatingStream samples every row through the contract validator and
// logs violations without failing the request.
type validatingStream struct {
	inner       serialization.RowStream
	validator   *schema.ContractValidator
	targetArray string
}

func (s *validatingStream) Next() (domain.Row, bool) {
	row, ok := s.inner.Next()
	if ok {
		if errs := s.validator.ValidateRow(s.targetArray, row); len(errs) > 0 {
			for _, e := range errs {
				customLog.Warnf("Contract: array '%s': %s", s.targetArray, e)
			}
		}
	}
	return row, ok
}

func (s *validatingStream) Err() error {
	return s.inner.Err()
}
