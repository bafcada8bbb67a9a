// internal/pagination/keyvalues.go
package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// KeyValue is one (column, value) pair of a keyset position.
type KeyValue struct {
	Column string
	Value  any
}

// KeyValues is the ordered keyset position carried inside a continuation
// token. Order matters: it mirrors the declared key column order, and the
// JSON encoding must be stable for the HMAC signature to round-trip.
type KeyValues []KeyValue

// Get returns the value for a column and whether it is present.
func (kv KeyValues) Get(column string) (any, bool) {
	for _, p := range kv {
		if p.Column == column {
			return p.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the pairs as a single JSON object, preserving order.
func (kv KeyValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range kv {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(p.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into ordered pairs. Numbers are kept
// as json.Number so integer key values survive the round trip exactly.
func (kv *KeyValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	var pairs KeyValues
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		column, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		pairs = append(pairs, KeyValue{Column: column, Value: value})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}

	*kv = pairs
	return nil
}
