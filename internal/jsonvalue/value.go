// Package jsonvalue provides a tagged-union representation of JSON documents.
//
// A Value is one of Absent, Null, Bool, Number, String, Array or Object.
// The zero Value is Absent, which stands for "no document" (a file that was
// missing or could not be parsed) and is distinct from a JSON null.
// Objects keep the key order of the source document.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Absent Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is an immutable JSON value.
type Value struct {
	kind Kind
	b    bool
	// num holds the literal text of a Number so passthrough is lossless
	num  string
	str  string
	arr  []Value
	keys []string
	obj  map[string]Value
}

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// NullValue returns a JSON null.
func NullValue() Value { return Value{kind: Null} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// NumberValue returns a JSON number from a float. Non-finite floats are
// held as NaN, Infinity or -Infinity.
func NumberValue(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Value{kind: Number, num: "NaN"}
	case math.IsInf(f, 1):
		return Value{kind: Number, num: "Infinity"}
	case math.IsInf(f, -1):
		return Value{kind: Number, num: "-Infinity"}
	}
	return Value{kind: Number, num: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NumberLiteral returns a JSON number holding the literal text s.
// The caller is responsible for s being a valid JSON number.
func NumberLiteral(s string) Value { return Value{kind: Number, num: s} }

// ArrayValue returns a JSON array holding a copy of items.
func ArrayValue(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: Array, arr: arr}
}

// ObjectValue returns a JSON object with the given members in order.
// A repeated key overwrites the earlier value but keeps the first position.
func ObjectValue(members ...Member) Value {
	v := Value{kind: Object, obj: make(map[string]Value, len(members))}
	for _, m := range members {
		if _, seen := v.obj[m.Key]; !seen {
			v.keys = append(v.keys, m.Key)
		}
		v.obj[m.Key] = m.Value
	}
	return v
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent-marker.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == Bool
}

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == String
}

// Float returns the number held by v as a float64.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNonFinite reports whether v is a NaN or infinite Number.
func (v Value) IsNonFinite() bool {
	f, ok := v.Float()
	return ok && (math.IsNaN(f) || math.IsInf(f, 0))
}

// Literal returns the source text of a Number.
func (v Value) Literal() (string, bool) {
	return v.num, v.kind == Number
}

// Len returns the number of elements of an Array or members of an Object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.keys)
	default:
		return 0
	}
}

// Index returns the i-th element of an Array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Items returns a copy of the elements of an Array.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// Get returns the member of an Object stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	m, ok := v.obj[key]
	return m, ok
}

// Keys returns the keys of an Object in document order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Members returns the members of an Object in document order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	out := make([]Member, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, Member{Key: k, Value: v.obj[k]})
	}
	return out
}

// Equal reports whether v and o hold the same JSON content.
// Numbers compare by value, objects compare regardless of key order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Absent, Null:
		return true
	case Bool:
		return v.b == o.b
	case String:
		return v.str == o.str
	case Number:
		if v.num == o.num {
			return true
		}
		a, okA := v.Float()
		b, okB := o.Float()
		return okA && okB && a == b
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for _, k := range v.keys {
			ov, ok := o.obj[k]
			if !ok || !v.obj[k].Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v into the untyped form produced by encoding/json
// (nil, bool, float64, string, []any, map[string]any). Absent becomes nil.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		f, _ := v.Float()
		return f
	case String:
		return v.str
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.obj[k].Interface()
		}
		return out
	default:
		return nil
	}
}

// String renders v as compact JSON.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid %s>", v.kind)
	}
	return string(data)
}

// MarshalJSON encodes v, keeping object key order. Absent encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Absent, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		// Strict JSON has no non-finite numbers; they encode as strings.
		if v.IsNonFinite() {
			buf.WriteString(strconv.Quote(v.num))
		} else {
			buf.WriteString(v.num)
		}
	case String:
		data, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := v.obj[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", int(v.kind))
	}
	return nil
}

// UnmarshalJSON decodes data into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
