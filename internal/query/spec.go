package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/kvquery/internal/value"
)

// FilterSpec is an ordered conjunction of clauses. Every clause must match
// for a record to match. The zero value matches every record.
type FilterSpec []Clause

// Clause pairs a field name with its right-hand side: a literal, or an
// Object treated as an operator clause.
type Clause struct {
	Field string
	Value value.Value

	// opOrder records operator-clause member order when known (parsed
	// JSON or Where). Nil means sorted order.
	opOrder []string
}

// Op is one operator application inside an operator clause.
type Op struct {
	Name    string
	Operand value.Value
}

// Eq creates a literal clause: record[field] must strictly equal v.
func Eq(field string, v value.Value) Clause {
	return Clause{Field: field, Value: v}
}

// Where creates an operator clause applying ops to record[field] in order.
func Where(field string, ops ...Op) Clause {
	obj := make(value.Object, len(ops))
	order := make([]string, 0, len(ops))
	for _, op := range ops {
		if _, dup := obj[op.Name]; !dup {
			order = append(order, op.Name)
		}
		obj[op.Name] = op.Operand
	}
	return Clause{Field: field, Value: obj, opOrder: order}
}

// Equal is shorthand for Op{Name: OpEqual, Operand: v}.
func Equal(v value.Value) Op { return Op{Name: OpEqual, Operand: v} }

// Like is shorthand for Op{Name: OpLike, Operand: v}.
func Like(v value.Value) Op { return Op{Name: OpLike, Operand: v} }

// Lowwer is shorthand for Op{Name: OpLowwer, Operand: v}.
func Lowwer(v value.Value) Op { return Op{Name: OpLowwer, Operand: v} }

// Ops returns the operator applications of an operator clause in
// evaluation order. It returns nil for literal clauses.
func (c Clause) Ops() []Op {
	obj, ok := c.Value.(value.Object)
	if !ok {
		return nil
	}
	names := c.opOrder
	if names == nil {
		names = obj.SortedKeys()
	}
	ops := make([]Op, 0, len(names))
	for _, name := range names {
		if operand, ok := obj[name]; ok {
			ops = append(ops, Op{Name: name, Operand: operand})
		}
	}
	return ops
}

// FromObject builds a FilterSpec from an Object. Go maps carry no member
// order, so clauses are sorted by field name.
func FromObject(obj value.Object) FilterSpec {
	spec := make(FilterSpec, 0, len(obj))
	for _, field := range obj.SortedKeys() {
		spec = append(spec, Clause{Field: field, Value: obj[field]})
	}
	return spec
}

// Entries returns the clauses whose right-hand side is not undefined.
// Callers use it to decide how many real constraints a spec carries.
func (s FilterSpec) Entries() []Clause {
	out := make([]Clause, 0, len(s))
	for _, c := range s {
		if value.Classify(c.Value) != value.KindUndefined {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the right-hand side of the first clause on field.
func (s FilterSpec) Lookup(field string) (value.Value, bool) {
	for _, c := range s {
		if c.Field == field {
			return c.Value, true
		}
	}
	return value.Undefined{}, false
}

// ParseFilterSpec decodes a JSON object into a FilterSpec, preserving the
// member order of the document and of every operator clause. Empty input
// and "null" yield an empty spec.
func ParseFilterSpec(data []byte) (FilterSpec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return FilterSpec{}, nil
	}

	members, err := orderedMembers(trimmed)
	if err != nil {
		return nil, &QueryError{Code: ErrCodeInvalidSpec, Message: "filter must be a JSON object", Err: err}
	}

	spec := make(FilterSpec, 0, len(members))
	for _, m := range members {
		v, err := value.Decode(m.raw)
		if err != nil {
			return nil, &QueryError{Code: ErrCodeInvalidSpec, Message: "invalid filter value", Field: m.key, Err: err}
		}
		clause := Clause{Field: m.key, Value: v}
		if _, ok := v.(value.Object); ok {
			inner, err := orderedMembers(m.raw)
			if err != nil {
				return nil, &QueryError{Code: ErrCodeInvalidSpec, Message: "invalid operator clause", Field: m.key, Err: err}
			}
			clause.opOrder = make([]string, 0, len(inner))
			seen := make(map[string]bool, len(inner))
			for _, im := range inner {
				if !seen[im.key] {
					seen[im.key] = true
					clause.opOrder = append(clause.opOrder, im.key)
				}
			}
		}
		spec = append(spec, clause)
	}
	return spec, nil
}

// MarshalJSON renders the spec as a JSON object in clause order.
func (s FilterSpec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, c := range s {
		if value.Classify(c.Value) == value.KindUndefined {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(c.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if ops := c.Ops(); ops != nil {
			if err := writeOps(&buf, ops); err != nil {
				return nil, fmt.Errorf("clause %q: %w", c.Field, err)
			}
			continue
		}
		data, err := value.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("clause %q: %w", c.Field, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler via ParseFilterSpec.
func (s *FilterSpec) UnmarshalJSON(data []byte) error {
	spec, err := ParseFilterSpec(data)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// String returns the JSON rendering, for logs.
func (s FilterSpec) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid filter: %v>", err)
	}
	return string(data)
}

func writeOps(buf *bytes.Buffer, ops []Op) error {
	buf.WriteByte('{')
	for i, op := range ops {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(op.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		data, err := value.Marshal(op.Operand)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return nil
}

type member struct {
	key string
	raw json.RawMessage
}

// orderedMembers returns the top-level members of a JSON object in
// document order.
func orderedMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		members = append(members, member{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}
