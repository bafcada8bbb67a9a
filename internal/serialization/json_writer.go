// internal/serialization/json_writer.go
package serialization

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"

	"querygate/internal/domain"
)

// RowStream is the minimal surface the writer needs from a row source.
type RowStream interface {
	Next() (domain.Row, bool)
	Err() error
}

// NamedArray pairs an output array name with its row source.
type NamedArray struct {
	Name string
	Rows RowStream
}

// WriteResponse streams a single compact JSON object to w: each named
// array in supplied order, then metadata fields as top-level siblings.
// Arrays are drained strictly sequentially; a single output stream cannot
// accept concurrent writers. Rows are written as they arrive, never
// buffered, so memory stays bounded for arbitrarily large result sets.
//
// The metadata callback runs only after every array has been drained,
// which is the earliest point at which stream-derived values such as a
// freshly minted continuation token exist. A nil callback writes no
// metadata; a callback error aborts the response mid-stream.
func WriteResponse(w io.Writer, arrays []NamedArray, metadata func() (map[string]any, error)) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')

	for i, arr := range arrays {
		if i > 0 {
			bw.WriteByte(',')
		}
		if err := writeJSONString(bw, arr.Name); err != nil {
			return err
		}
		bw.WriteString(":[")

		first := true
		for {
			row, ok := arr.Rows.Next()
			if !ok {
				break
			}
			if !first {
				bw.WriteByte(',')
			}
			first = false
			if err := writeRow(bw, row); err != nil {
				return err
			}
		}
		if err := arr.Rows.Err(); err != nil {
			return err
		}
		bw.WriteByte(']')
	}

	if metadata != nil {
		meta, err := metadata()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, key := range keys {
			if len(arrays) > 0 || i > 0 {
				bw.WriteByte(',')
			}
			if err := writeJSONString(bw, key); err != nil {
				return err
			}
			bw.WriteByte(':')
			if err := writeJSONValue(bw, meta[key]); err != nil {
				return err
			}
		}
	}

	bw.WriteByte('}')
	return bw.Flush()
}

// writeRow writes one row as a JSON object preserving column order.
func writeRow(bw *bufio.Writer, row domain.Row) error {
	bw.WriteByte('{')
	for i, col := range row.Columns {
		if i > 0 {
			bw.WriteByte(',')
		}
		if err := writeJSONString(bw, col); err != nil {
			return err
		}
		bw.WriteByte(':')
		if err := writeJSONValue(bw, row.Values[col]); err != nil {
			return err
		}
	}
	bw.WriteByte('}')
	return nil
}

func writeJSONString(bw *bufio.Writer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = bw.Write(encoded)
	return err
}

func writeJSONValue(bw *bufio.Writer, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = bw.Write(encoded)
	return err
}
