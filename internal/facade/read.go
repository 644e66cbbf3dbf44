package facade

import (
	"context"
	"fmt"

	"github.com/roach88/kvquery/internal/value"
)

// Count returns the number of records in a store.
func (db *DB) Count(ctx context.Context, store string) (int, error) {
	st, log, err := db.store(ctx, "count", store)
	if err != nil {
		return 0, err
	}
	n, err := st.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", store, err)
	}
	log.Debug("counted", "records", n)
	return n, nil
}

// Last returns the greatest key of a store, or value.Undefined if the store
// is empty.
func (db *DB) Last(ctx context.Context, store string) (value.Value, error) {
	st, log, err := db.store(ctx, "last", store)
	if err != nil {
		return nil, err
	}
	keys, err := st.GetAllKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("last %q: %w", store, err)
	}
	if len(keys) == 0 {
		return value.Undefined{}, nil
	}
	last := keys[len(keys)-1]
	log.Debug("last key", "key", last)
	return last, nil
}
