package value

import (
	"math"
	"strings"
)

// StrictEqual reports whether a and b are the same kind with the same
// scalar payload. Undefined equals Undefined and Null equals Null. NaN is
// never equal to anything. Arrays and objects compare by identity in the
// storage engine; decoded values have no identity, so composites are never
// strictly equal.
func StrictEqual(a, b Value) bool {
	ka, kb := Classify(a), Classify(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindUndefined, KindNull:
		return true
	case KindString:
		return a.(String) == b.(String)
	case KindNumber:
		return a.(Number) == b.(Number)
	case KindBool:
		return a.(Bool) == b.(Bool)
	default:
		return false
	}
}

// Less reports whether a < b under the natural ordering of their shared
// kind: numeric for numbers, UTF-16 code units for strings, false < true
// for booleans. Values of differing or unordered kinds are never less.
func Less(a, b Value) bool {
	ka, kb := Classify(a), Classify(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNumber:
		return a.(Number) < b.(Number)
	case KindString:
		return CompareStrings(string(a.(String)), string(b.(String))) < 0
	case KindBool:
		return !bool(a.(Bool)) && bool(b.(Bool))
	default:
		return false
	}
}

// Contains reports whether needle occurs in haystack. A string haystack
// matches a string needle occurring as a substring at any position; an
// array haystack matches when some element is StrictEqual to needle.
// Every other combination is false.
func Contains(haystack, needle Value) bool {
	switch h := haystack.(type) {
	case String:
		n, ok := needle.(String)
		if !ok {
			return false
		}
		return strings.Contains(string(h), string(n))
	case Array:
		for _, elem := range h {
			if StrictEqual(elem, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Truthy reports whether v would pass a boolean test: everything except
// Undefined, Null, false, 0, NaN and the empty string.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case String:
		return val != ""
	case Number:
		return val != 0 && !math.IsNaN(float64(val))
	case Bool:
		return bool(val)
	case Array, Object:
		return true
	default:
		return false
	}
}

// IsKey reports whether v can serve as a record key (a finite number or a
// string).
func IsKey(v Value) bool {
	switch val := v.(type) {
	case String:
		return true
	case Number:
		f := float64(val)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}

// CompareKeys orders record keys the way the storage engine does: numbers
// before strings, numbers numerically, strings by UTF-16 code units.
// Non-key values sort after all keys and compare equal to each other.
func CompareKeys(a, b Value) int {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		x, y := a.(Number), b.(Number)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case 1:
		return CompareStrings(string(a.(String)), string(b.(String)))
	}
	return 0
}

func keyRank(v Value) int {
	if !IsKey(v) {
		return 2
	}
	if _, ok := v.(Number); ok {
		return 0
	}
	return 1
}
