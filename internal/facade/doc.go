// Package facade exposes select, insert, update, delete, count and last
// over a kv.Backend.
//
// Connect opens a database described by a schema.Database. A fresh backend
// (stored version 0) is upgraded: every store and index is created and
// seed data is inserted. Any other version mismatch is refused.
//
// Select resolves a query in a fixed order:
//
//  1. Range given: scan each key range, then filter.
//  2. No constraints in Where: unfiltered scan, limited.
//  3. Exactly one constraint on an identity field (id or key) with a key
//     literal: direct key lookup, no filtering.
//  4. Otherwise: full scan (limited), then filter.
//
// Results come back as *asyncseq.Sequence values paced by the configured
// interval and clock.
//
// Every operation is stamped with an operation id that appears in its log
// lines.
package facade
