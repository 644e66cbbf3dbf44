// Package query compiles declarative filter specifications into record
// predicates.
//
// A FilterSpec is a flat conjunction of clauses. Each clause names a field
// and either a literal (implying equality) or an operator clause mapping
// operator names to operands:
//
//	{"name": {"like": "Jo"}, "age": {"lowwer": 25}, "country": "NO"}
//
// There is no disjunction and no nesting beyond one operator level.
//
// Compile flattens a FilterSpec into ordered steps. Predicate.Match walks
// the steps in spec order and stops at the first failing step. Two failures
// are caller errors rather than non-matches and surface as *QueryError:
//
//   - MALFORMED_QUERY: a clause's right-hand side is undefined
//   - UNKNOWN_OPERATOR: an operator name is missing from the Registry
//
// Both are detected while evaluating a record, so a query over an empty
// candidate set never reports them.
//
// Operators live in an immutable Registry. DefaultRegistry holds equal,
// like and lowwer; Registry.With derives an extended registry without
// mutating the original.
package query
