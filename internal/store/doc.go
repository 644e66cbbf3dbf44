// Package store provides a SQLite-backed implementation of the kv object
// store capability.
//
// The database holds:
//   - meta: database name and schema version (one row)
//   - object_stores: store definitions (key path, key generator state)
//   - indexes: secondary index definitions
//   - records: every record of every store, keyed by (store, key)
//
// # Key Ordering
//
// Keys are numbers or strings, stored as (key_type, key_num, key_str) so
// that ORDER BY yields numbers before strings, numbers numerically and
// strings by UTF-16 code units (the UTF16 collation registered on every
// connection). All reads MUST order by key_type, key_num, key_str.
//
// # Record Encoding
//
// Records are stored as sorted-key JSON produced by value.Marshal. Strings
// and field names are kept exactly as written; no Unicode normalization is
// applied, so a record reads back equal to what was stored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
