// Package docval provides the ordered document value model consumed by the
// SDDL builder. Objects keep their keys in original insertion order, which is
// significant for SDDL: it becomes the variable and struct member order.
package docval

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the kind of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{
	Null:   "null",
	Bool:   "bool",
	Number: "number",
	String: "string",
	Array:  "array",
	Object: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is a decoded JSON or YAML value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Map
}

// NullValue returns a null value.
func NullValue() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps f.
func NumberValue(f float64) Value { return Value{kind: Number, n: f} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue wraps items.
func ArrayValue(items []Value) Value { return Value{kind: Array, arr: items} }

// ObjectValue wraps m.
func ObjectValue(m *Map) Value { return Value{kind: Object, obj: m} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsArray() bool  { return v.kind == Array }
func (v Value) IsString() bool { return v.kind == String }
func (v Value) IsNumber() bool { return v.kind == Number }

// AsBool returns the boolean and true if v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsNumber returns the number and true if v is a number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == Number }

// AsString returns the string and true if v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == String }

// AsArray returns the entries and true if v is an array.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == Array }

// AsObject returns the object and true if v is an object.
func (v Value) AsObject() (*Map, bool) {
	if v.kind != Object {
		return nil, false
	}
	return v.obj, true
}

// Map is an object whose keys enumerate in insertion order. A repeated key
// keeps the position of its first occurrence and the value of its last.
type Map struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewMap returns an empty object.
func NewMap() *Map {
	return &Map{m: orderedmap.New[string, Value]()}
}

// Set stores v under key.
func (o *Map) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Get returns the value stored under key.
func (o *Map) Get(key string) (Value, bool) {
	return o.m.Get(key)
}

// Len returns the number of keys.
func (o *Map) Len() int {
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Map) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order and stops at the first
// error fn returns.
func (o *Map) Each(fn func(key string, v Value) error) error {
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}
