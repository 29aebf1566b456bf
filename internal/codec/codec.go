// Package codec converts Row columns to and from the property form the
// graph store accepts: identifier escaping for property names and type
// normalization for values. All functions are pure.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/graphbridge/internal/rows"
)

// ErrUnsupportedValueKind is returned when a value cannot be represented as
// a graph store property (nested mappings, mixed-type sequences).
var ErrUnsupportedValueKind = errors.New("unsupported property value kind")

// EncodePropertyName wraps names containing whitespace or hyphens in
// backticks so they are valid identifiers in statement text. Other names
// pass through unchanged. DecodePropertyName is the exact inverse.
func EncodePropertyName(name string) string {
	if strings.ContainsAny(name, " \t\n-") {
		return "`" + name + "`"
	}
	return name
}

func DecodePropertyName(encoded string) string {
	if len(encoded) >= 2 && strings.HasPrefix(encoded, "`") && strings.HasSuffix(encoded, "`") {
		return encoded[1 : len(encoded)-1]
	}
	return encoded
}

// EncodeValue converts a Row value into the native form sent to the store.
// Absent values return (nil, nil); callers omit them from the property set
// rather than writing explicit nulls.
func EncodeValue(v rows.Value) (any, error) {
	switch v.Kind() {
	case rows.KindAbsent:
		return nil, nil
	case rows.KindString:
		return v.AsString(), nil
	case rows.KindNumber:
		return v.AsNumber(), nil
	case rows.KindBool:
		return v.AsBool(), nil
	case rows.KindStringList:
		list := v.AsStringList()
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValueKind, v.Native())
	}
}

// DecodeValue coerces a property value read from the store back into a Row
// value. The Bolt protocol returns integers as int64 and lists as []any.
func DecodeValue(graphValue any) (rows.Value, error) {
	v := rows.FromAny(graphValue)
	if v.Kind() == rows.KindUnsupported {
		return rows.Absent(), fmt.Errorf("%w: %T", ErrUnsupportedValueKind, graphValue)
	}
	return v, nil
}
