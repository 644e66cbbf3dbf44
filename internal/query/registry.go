package query

import (
	"maps"
	"slices"

	"github.com/roach88/kvquery/internal/value"
)

// Built-in operator names.
const (
	OpEqual  = "equal"
	OpLike   = "like"
	OpLowwer = "lowwer"
)

// OperatorFunc is a binary test applied as fn(record[field], operand).
type OperatorFunc func(left, right value.Value) bool

// Registry is an immutable set of named operators.
// It is safe for concurrent use: nothing mutates a Registry after
// construction.
type Registry struct {
	ops map[string]OperatorFunc
}

var defaultRegistry = NewRegistry(map[string]OperatorFunc{
	OpEqual:  value.StrictEqual,
	OpLike:   value.Contains,
	OpLowwer: value.Less,
})

// DefaultRegistry returns the process-wide registry holding equal, like and
// lowwer.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry creates a registry from ops. The map is copied.
func NewRegistry(ops map[string]OperatorFunc) *Registry {
	return &Registry{ops: maps.Clone(ops)}
}

// With returns a new registry containing r's operators plus fn under name.
// An existing operator with the same name is replaced in the new registry
// only; r is unchanged.
func (r *Registry) With(name string, fn OperatorFunc) *Registry {
	ops := maps.Clone(r.ops)
	if ops == nil {
		ops = make(map[string]OperatorFunc, 1)
	}
	ops[name] = fn
	return &Registry{ops: ops}
}

// Lookup returns the operator registered under name.
func (r *Registry) Lookup(name string) (OperatorFunc, bool) {
	fn, ok := r.ops[name]
	return fn, ok
}

// Names returns the registered operator names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.ops))
}
