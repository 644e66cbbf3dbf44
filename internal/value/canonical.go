package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces deterministic JSON that preserves every string exactly
// as given. Records are stored in this form.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Undefined object fields are omitted; Undefined elsewhere is null
//  4. NaN and Inf are rejected
func Marshal(v Value) ([]byte, error) {
	return encoder{}.marshal(v)
}

// MarshalCanonical is Marshal with every string and object key NFC
// normalized, for output compared byte for byte such as golden traces.
// Distinct strings may render identically, so it must not be used for
// data that is read back.
func MarshalCanonical(v Value) ([]byte, error) {
	return encoder{nfc: true}.marshal(v)
}

type encoder struct {
	nfc bool
}

func (e encoder) marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e encoder) write(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case String:
		return e.writeString(buf, string(val))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("number %v cannot be encoded as JSON", f)
		}
		buf.WriteString(formatNumber(f))
		return nil
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
		return nil
	case Array:
		return e.writeArray(buf, val)
	case Object:
		return e.writeObject(buf, val)
	default:
		// Null, Undefined and nil
		buf.WriteString("null")
		return nil
	}
}

// formatNumber renders integral values without a fraction or exponent,
// the way the storage engine serializes them.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// writeString writes a JSON string without HTML escaping, NFC
// normalized when e.nfc is set.
func (e encoder) writeString(buf *bytes.Buffer, s string) error {
	if e.nfc {
		s = norm.NFC.String(s)
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// json.Encoder adds trailing newline, remove it
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

func (e encoder) writeArray(buf *bytes.Buffer, arr Array) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := e.write(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func (e encoder) writeObject(buf *bytes.Buffer, obj Object) error {
	buf.WriteByte('{')
	first := true
	for _, k := range obj.SortedKeys() {
		elem := obj[k]
		if Classify(elem) == KindUndefined {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := e.writeString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := e.write(buf, elem); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}
