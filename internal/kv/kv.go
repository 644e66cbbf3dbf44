// Package kv defines the object-store capability the facade is written
// against.
//
// A Backend is one database: a version number and a set of named object
// stores. A Store holds records addressed by a key (a number or a string)
// and kept in key order: numbers before strings, numbers numerically,
// strings by UTF-16 code units.
//
// Every operation is blocking and takes a context. Errors from a backend
// are storage-layer errors; callers propagate them unmodified.
package kv

import (
	"context"
	"errors"

	"github.com/roach88/kvquery/internal/value"
)

var (
	// ErrStoreNotFound is returned when a store name is not defined.
	ErrStoreNotFound = errors.New("object store not found")

	// ErrStoreExists is returned when creating a store that already exists.
	ErrStoreExists = errors.New("object store already exists")

	// ErrKeyExists is returned by Add when the key is already present.
	ErrKeyExists = errors.New("key already exists")

	// ErrMissingKey is returned when a record has no usable key and the
	// store does not generate keys.
	ErrMissingKey = errors.New("record has no key")

	// ErrInvalidKey is returned when a value used as a key is neither a
	// number nor a string.
	ErrInvalidKey = errors.New("invalid key")

	// ErrConstraint is returned when a unique index rejects a write.
	ErrConstraint = errors.New("constraint violation")
)

// KeyRange is an inclusive key interval [Start, End].
type KeyRange struct {
	Start value.Value
	End   value.Value
}

// Contains reports whether key lies within r.
func (r KeyRange) Contains(key value.Value) bool {
	return value.CompareKeys(r.Start, key) <= 0 && value.CompareKeys(key, r.End) <= 0
}

// StoreSchema describes an object store to create.
type StoreSchema struct {
	Name          string
	KeyPath       string // in-line key field; empty means out-of-line keys
	AutoIncrement bool
}

// IndexSchema describes a secondary index over a record field.
type IndexSchema struct {
	Name    string
	KeyPath string
	Unique  bool
}

// Store is one object store.
type Store interface {
	// Get returns the record stored under key, or Undefined if absent.
	Get(ctx context.Context, key value.Value) (value.Value, error)

	// Put inserts or replaces rec and returns its key. key is the
	// out-of-line key; Undefined takes the key from the key path or the
	// key generator. Stores with a key path reject an explicit key with
	// ErrInvalidKey.
	Put(ctx context.Context, rec, key value.Value) (value.Value, error)

	// Add inserts rec like Put. It fails with ErrKeyExists if the key is
	// taken.
	Add(ctx context.Context, rec, key value.Value) (value.Value, error)

	// Delete removes the record under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key value.Value) error

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// GetAllKeys returns every key in key order.
	GetAllKeys(ctx context.Context) ([]value.Value, error)

	// GetAll returns records in key order. limit <= 0 means no limit.
	GetAll(ctx context.Context, limit int) ([]value.Value, error)

	// OpenCursor iterates the records whose keys fall within r, in key
	// order.
	OpenCursor(ctx context.Context, r KeyRange) (Cursor, error)
}

// Cursor walks records in key order.
//
//	cur, err := st.OpenCursor(ctx, r)
//	if err != nil { ... }
//	defer cur.Close()
//	for cur.Next() {
//	    rec := cur.Value()
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor interface {
	Next() bool
	Key() value.Value
	Value() value.Value
	Err() error
	Close() error
}

// Backend is a versioned database of object stores.
type Backend interface {
	// Version returns the stored schema version, 0 for a fresh database.
	Version(ctx context.Context) (int, error)

	// SetVersion records the schema version.
	SetVersion(ctx context.Context, name string, version int) error

	// CreateStore defines a new object store.
	CreateStore(ctx context.Context, s StoreSchema) error

	// CreateIndex defines an index on an existing store.
	CreateIndex(ctx context.Context, store string, idx IndexSchema) error

	// Store returns a handle to the named store or ErrStoreNotFound.
	Store(ctx context.Context, name string) (Store, error)

	Close() error
}
