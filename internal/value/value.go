package value

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface representing a structured value.
// Only Undefined, Null, String, Number, Bool, Array and Object implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Undefined represents an absent value: a missing record field or an
// unresolved filter operand. It never appears in encoded JSON objects.
type Undefined struct{}

func (Undefined) value() {}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Number represents a numeric value. All numbers are float64, matching the
// storage engine's single number type.
type Number float64

func (Number) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) value() {}

// Object represents a map of field names to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Get returns the value stored under field, or Undefined if the field is
// absent. A nil Object behaves as empty.
func (o Object) Get(field string) Value {
	v, ok := o[field]
	if !ok || v == nil {
		return Undefined{}
	}
	return v
}

// Has reports whether field is present and not Undefined.
func (o Object) Has(field string) bool {
	return Classify(o.Get(field)) != KindUndefined
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Object:
		return val.Clone()
	case Array:
		if val == nil {
			return Array(nil)
		}
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case nil:
		return Undefined{}
	default:
		return v
	}
}

// Pair is a field/value pair for ordered Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewObject(P("name", String("Joe")), P("age", Number(30)))
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// NewObject creates an Object from pairs. Later pairs win on duplicate keys.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// NewArray creates an Array from values.
func NewArray(vals ...Value) Array {
	return Array(vals)
}

// SortedKeys returns keys ordered by UTF-16 code units, the order the
// storage engine uses for string keys.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareStrings)
	return keys
}

// CompareStrings compares strings by UTF-16 code units.
// Go's native string comparison uses UTF-8 bytes, which orders characters
// outside the BMP differently.
func CompareStrings(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
