package rows

import "fmt"

// Kind identifies which member of the Value sum is populated.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
	KindStringList
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStringList:
		return "string_list"
	default:
		return "unsupported"
	}
}

// Value is a tagged container for the cell types a Row may hold: string,
// number, boolean, or a sequence of strings. Absent marks a column that a
// row does not carry, as opposed to a zero value. Unsupported wraps input
// the store cannot represent; encoding it fails rather than guessing.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []string
	raw  any
}

func String(s string) Value       { return Value{kind: KindString, str: s} }
func Number(f float64) Value      { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func StringList(s []string) Value { return Value{kind: KindStringList, list: s} }
func Absent() Value               { return Value{kind: KindAbsent} }

// FromAny classifies an arbitrary Go value into a Value. Maps, structs and
// mixed-type slices come back as KindUnsupported; callers surface that as a
// row-level failure when the value reaches the graph store.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Absent()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case []string:
		return StringList(append([]string(nil), t...))
	case []any:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{kind: KindUnsupported, raw: v}
			}
			list = append(list, s)
		}
		return StringList(list)
	default:
		return Value{kind: KindUnsupported, raw: v}
	}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) AsString() string       { return v.str }
func (v Value) AsNumber() float64      { return v.num }
func (v Value) AsBool() bool           { return v.b }
func (v Value) AsStringList() []string { return v.list }

// Native returns the plain Go representation of the value. Absent maps to
// nil; Unsupported returns the original input unchanged.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindStringList:
		return v.list
	case KindUnsupported:
		return v.raw
	default:
		return nil
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindAbsent:
		return true
	default:
		return false
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("rows.Value(%s: %v)", v.kind, v.Native())
}
