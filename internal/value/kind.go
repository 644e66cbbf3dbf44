package value

// Kind is the structural classification of a Value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindString:    "string",
	KindNumber:    "number",
	KindBool:      "boolean",
	KindArray:     "array",
	KindObject:    "object",
}

// String returns the lower-case kind name ("array", "null", "object", ...).
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsPrimitive reports whether values of this kind are replaced wholesale
// by a merge rather than combined.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindNull, KindUndefined:
		return true
	}
	return false
}

// Classify returns the Kind of v. Arrays are checked before null, and a Go
// nil (an interface holding no Value) classifies as KindUndefined.
func Classify(v Value) Kind {
	switch v.(type) {
	case Array:
		return KindArray
	case Null:
		return KindNull
	case String:
		return KindString
	case Number:
		return KindNumber
	case Bool:
		return KindBool
	case Object:
		return KindObject
	default:
		return KindUndefined
	}
}
