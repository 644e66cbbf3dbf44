// Package value provides the structured value model shared by every kvquery
// package.
//
// Records, filter operands and merge patches are all represented as values
// of the sealed Value interface. Only the types in this package implement
// it, so every kind-based branch (query evaluation, deep merge, storage
// encoding) can switch exhaustively over:
//
//	Undefined, Null, String, Number, Bool, Array, Object
//
// Classify maps any Value (including a Go nil) onto a Kind. It is total: it
// never fails and never panics.
//
// Numbers are IEEE 754 doubles: a single float64 representation,
// NaN is never equal to itself, and integral values render without a
// fractional part.
//
// This package imports nothing internal. All other internal packages import
// value; value is the foundational layer.
package value
