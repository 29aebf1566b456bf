package rows

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the row as a JSON object in column order. Absent
// columns are omitted; an Unsupported value fails the marshal.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, col := range r.cols {
		v := r.vals[col]
		if v.IsAbsent() {
			continue
		}
		if v.Kind() == KindUnsupported {
			return nil, fmt.Errorf("column %q holds an unsupported value", col)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v.Native())
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into the row, preserving the key order
// of the document. Values are classified through FromAny, so nested objects
// land as Unsupported rather than erroring at parse time.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	r.cols = nil
	r.vals = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Set(key, FromAny(raw))
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
