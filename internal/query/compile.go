package query

import "github.com/roach88/kvquery/internal/value"

// Predicate is a compiled FilterSpec bound to an operator registry.
// It holds no per-record state and is safe for concurrent use.
type Predicate struct {
	steps    []step
	registry *Registry
}

// step is one flattened (field, right-hand side) pair.
type step struct {
	field string
	rhs   value.Value
	ops   []Op // operator applications when rhs is an Object
}

// Compile compiles spec against DefaultRegistry.
func Compile(spec FilterSpec) *Predicate {
	return CompileWith(DefaultRegistry(), spec)
}

// CompileWith compiles spec against reg. Compilation only flattens the spec;
// operator names and undefined operands are checked per record in Match.
func CompileWith(reg *Registry, spec FilterSpec) *Predicate {
	if reg == nil {
		reg = DefaultRegistry()
	}
	steps := make([]step, 0, len(spec))
	for _, c := range spec {
		steps = append(steps, step{field: c.Field, rhs: c.Value, ops: c.Ops()})
	}
	return &Predicate{steps: steps, registry: reg}
}

// IsEmpty reports whether the predicate has no steps and therefore
// matches every record.
func (p *Predicate) IsEmpty() bool {
	return len(p.steps) == 0
}

// Match evaluates the predicate against rec.
//
// Steps run in spec order:
//   - an undefined right-hand side fails with MALFORMED_QUERY
//   - a literal is compared with equal against rec[field]
//   - an operator clause applies each operator to (rec[field], operand);
//     an unregistered name fails with UNKNOWN_OPERATOR
//
// The first failing comparison returns false without evaluating the
// remaining steps.
func (p *Predicate) Match(rec value.Object) (bool, error) {
	for _, s := range p.steps {
		left := rec.Get(s.field)

		switch value.Classify(s.rhs) {
		case value.KindUndefined:
			return false, newMalformedQueryError(s.field)

		case value.KindObject:
			for _, op := range s.ops {
				fn, ok := p.registry.Lookup(op.Name)
				if !ok {
					return false, newUnknownOperatorError(s.field, op.Name)
				}
				if !fn(left, op.Operand) {
					return false, nil
				}
			}

		default:
			if !value.StrictEqual(left, s.rhs) {
				return false, nil
			}
		}
	}
	return true, nil
}

// MatchValue evaluates the predicate against an arbitrary value. Non-object
// values are treated as records with no fields.
func (p *Predicate) MatchValue(v value.Value) (bool, error) {
	rec, _ := v.(value.Object)
	return p.Match(rec)
}
