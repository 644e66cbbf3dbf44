package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses a single JSON document into a Value.
// Numbers are decoded through json.Number so integers beyond 2^53 fail
// loudly instead of silently rounding through interface{}.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode value: trailing data after JSON document")
	}
	return FromAny(raw)
}

// DecodeObject parses a JSON object into an Object.
func DecodeObject(data []byte) (Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("decode object: expected JSON object, got %s", Classify(v))
	}
	return obj, nil
}

// FromAny converts a Go value (as produced by encoding/json, yaml.v3 or a
// literal) into a Value. A Go nil becomes Null.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", val, err)
		}
		return Number(f), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = v
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToAny converts a Value back into plain Go values (map[string]any, []any,
// string, float64, bool, nil). Undefined object fields are dropped;
// Undefined array elements become nil.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if Classify(elem) == KindUndefined {
				continue
			}
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler for Undefined.
func (Undefined) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
func (o Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// MarshalJSON implements json.Marshaler for Array.
func (a Array) MarshalJSON() ([]byte, error) {
	return Marshal(a)
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (o *Object) UnmarshalJSON(data []byte) error {
	obj, err := DecodeObject(data)
	if err != nil {
		return err
	}
	*o = obj
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("decode array: expected JSON array, got %s", Classify(v))
	}
	*a = arr
	return nil
}
