package store

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/value"
)

// Key type tags. Numbers sort before strings.
const (
	keyTypeNumber = 0
	keyTypeString = 1
)

// encodedKey is the column form of a record key.
type encodedKey struct {
	typ int
	num float64
	str string
}

func encodeKey(k value.Value) (encodedKey, error) {
	switch k := k.(type) {
	case value.Number:
		if math.IsNaN(float64(k)) {
			return encodedKey{}, fmt.Errorf("%w: NaN", kv.ErrInvalidKey)
		}
		return encodedKey{typ: keyTypeNumber, num: float64(k)}, nil
	case value.String:
		return encodedKey{typ: keyTypeString, str: string(k)}, nil
	default:
		return encodedKey{}, fmt.Errorf("%w: %s", kv.ErrInvalidKey, value.Classify(k))
	}
}

func (k encodedKey) decode() value.Value {
	if k.typ == keyTypeNumber {
		return value.Number(k.num)
	}
	return value.String(k.str)
}

// getPath resolves a dotted key path against rec.
func getPath(rec value.Value, path string) value.Value {
	cur := rec
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(value.Object)
		if !ok {
			return value.Undefined{}
		}
		cur = obj.Get(seg)
	}
	return cur
}

// setPath writes v at a dotted key path, creating intermediate objects.
// rec must already be a private copy.
func setPath(rec value.Object, path string, v value.Value) {
	segs := strings.Split(path, ".")
	cur := rec
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(value.Object)
		if !ok {
			next = value.Object{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// jsonPath converts a dotted key path to a SQLite JSON path with every
// segment quoted.
func jsonPath(keyPath string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(keyPath, ".") {
		b.WriteString(`."`)
		b.WriteString(strings.ReplaceAll(seg, `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
