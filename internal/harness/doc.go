// Package harness runs YAML scenarios against a facade database.
//
// A scenario names a schema file, a list of steps and a list of final
// assertions. Each run gets a fresh SQLite file, a fake clock and a fixed
// operation id, so traces are reproducible and can be compared against
// golden files.
//
// # Scenario Format
//
//	name: people
//	description: "Query and update the seeded users store"
//	schema: ../schema.yaml
//	steps:
//	  - op: select
//	    store: users
//	    where: '{"name": {"like": "o"}}'
//	    expect:
//	      result: '[{"age":30,"id":1,"name":"Joe"}]'
//	  - op: update
//	    store: users
//	    set: '{"age": 31}'
//	    expect:
//	      error: MISSING_IDENTITY
//	assertions:
//	  - type: count
//	    store: users
//	    count: 2
//	  - type: record
//	    store: users
//	    key: 1
//	    expect: '{"age":30,"id":1,"name":"Joe"}'
//
// The where, set and expect fields hold JSON so that filter clause order
// is preserved. Schema paths are resolved relative to the scenario file.
//
// # Operations
//
//   - select: where, range and limit; the result is the array of matches
//   - insert: set is an object or array; the result is the array of keys
//   - update: where, set and merge; the result is the written record
//   - delete: where; the result is null
//   - count: the result is the number of records
//   - last: the result is the greatest key, or null when empty
//
// # Assertion Types
//
//   - count: the store holds exactly count records
//   - record: the record at key equals expect
//   - absent: no record is stored at key
package harness
