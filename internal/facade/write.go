package facade

import (
	"context"
	"fmt"

	"github.com/roach88/kvquery/internal/merge"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/value"
)

// InsertQuery adds records to a store. Set is an Object (one record) or an
// Array (one record per element).
type InsertQuery struct {
	On  string
	Set value.Value
}

// UpdateQuery writes one record identified by where.key or where.id.
type UpdateQuery struct {
	On    string
	Where query.FilterSpec
	Set   value.Object

	// Merge deep-merges Set into the stored record instead of replacing it.
	Merge bool
}

// DeleteQuery removes one record identified by where.key or where.id.
type DeleteQuery struct {
	On    string
	Where query.FilterSpec
}

// Insert adds the records in q.Set and returns their keys in order.
// Any kind other than Object or Array fails with ErrUnsupportedValue and
// writes nothing. Array elements are added one at a time; the first
// failure stops the insert.
func (db *DB) Insert(ctx context.Context, q InsertQuery) ([]value.Value, error) {
	st, log, err := db.store(ctx, "insert", q.On)
	if err != nil {
		return nil, err
	}

	var records []value.Value
	switch set := q.Set.(type) {
	case value.Object:
		records = []value.Value{set}
	case value.Array:
		records = set
	default:
		kind := value.Classify(q.Set)
		log.Warn("can not save this type of data", "type", kind.String())
		return nil, fmt.Errorf("insert into %q: %w: %s", q.On, ErrUnsupportedValue, kind)
	}

	keys := make([]value.Value, 0, len(records))
	for i, rec := range records {
		key, err := st.Add(ctx, rec, value.Undefined{})
		if err != nil {
			log.Error("insert failed", "index", i, "error", err)
			return keys, fmt.Errorf("insert into %q: record %d: %w", q.On, i, err)
		}
		keys = append(keys, key)
	}

	log.Debug("inserted", "records", len(keys))
	return keys, nil
}

// Update writes q.Set to the record identified by q.Where and returns the
// record as written. With Merge, Set is deep-merged into the stored record;
// a missing stored record leaves Set as written.
//
// When the store has an in-line key path that Set does not carry, the
// identity is written into the record so the write targets it. Stores
// without a key path take the identity as the out-of-line key.
func (db *DB) Update(ctx context.Context, q UpdateQuery) (value.Object, error) {
	st, log, err := db.store(ctx, "update", q.On)
	if err != nil {
		return nil, err
	}

	id, ok := identity(q.Where)
	if !ok {
		log.Warn("missing identity", "where", q.Where.String())
		return nil, &MissingIdentityError{Op: "update", Store: q.On}
	}
	if q.Set == nil {
		return nil, fmt.Errorf("update %q: %w: set is required", q.On, ErrUnsupportedValue)
	}

	data := q.Set
	if q.Merge {
		current, err := st.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("update %q: %w", q.On, err)
		}
		if obj, ok := current.(value.Object); ok {
			data = merge.Merge(obj, q.Set)
		}
	}

	var key value.Value = value.Undefined{}
	if def, ok := db.schema.Store(q.On); ok && def.KeyPath != "" {
		if !data.Has(def.KeyPath) {
			data = data.Clone()
			data[def.KeyPath] = id
		}
	} else {
		key = id
	}

	if _, err := st.Put(ctx, data, key); err != nil {
		log.Error("update failed", "key", id, "error", err)
		return nil, fmt.Errorf("update %q: %w", q.On, err)
	}

	log.Debug("updated", "key", id, "merge", q.Merge)
	return data, nil
}

// Delete removes the record identified by q.Where. Deleting an absent
// record is not an error.
func (db *DB) Delete(ctx context.Context, q DeleteQuery) error {
	st, log, err := db.store(ctx, "delete", q.On)
	if err != nil {
		return err
	}

	id, ok := identity(q.Where)
	if !ok {
		log.Warn("missing identity", "where", q.Where.String())
		return &MissingIdentityError{Op: "delete", Store: q.On}
	}

	if err := st.Delete(ctx, id); err != nil {
		log.Error("delete failed", "key", id, "error", err)
		return fmt.Errorf("delete from %q: %w", q.On, err)
	}

	log.Debug("deleted", "key", id)
	return nil
}

// identity returns the first truthy identity field of where.
func identity(where query.FilterSpec) (value.Value, bool) {
	for _, field := range IdentityFields {
		if v, ok := where.Lookup(field); ok && value.Truthy(v) {
			return v, true
		}
	}
	return nil, false
}
