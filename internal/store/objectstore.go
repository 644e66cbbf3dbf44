package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/value"
)

// ObjectStore is a handle to one object store in a Store.
type ObjectStore struct {
	db            *sql.DB
	name          string
	keyPath       string
	autoIncrement bool
}

var _ kv.Store = (*ObjectStore)(nil)

// Name returns the store name.
func (s *ObjectStore) Name() string { return s.name }

// Get returns the record under key, or value.Undefined if absent.
func (s *ObjectStore) Get(ctx context.Context, key value.Value) (value.Value, error) {
	k, err := encodeKey(key)
	if err != nil {
		return nil, err
	}

	var raw string
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM records
		WHERE store = ? AND key_type = ? AND key_num = ? AND key_str = ?
	`, s.name, k.typ, k.num, k.str).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return value.Undefined{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get from %q: %w", s.name, err)
	}
	return decodeRecord(raw)
}

// Put inserts or replaces rec and returns its key. An Undefined key takes
// the key from the key path or the key generator.
func (s *ObjectStore) Put(ctx context.Context, rec, key value.Value) (value.Value, error) {
	return s.write(ctx, rec, key, true)
}

// Add inserts rec and returns its key, failing with kv.ErrKeyExists if a
// record already has that key.
func (s *ObjectStore) Add(ctx context.Context, rec, key value.Value) (value.Value, error) {
	return s.write(ctx, rec, key, false)
}

func (s *ObjectStore) write(ctx context.Context, rec, key value.Value, overwrite bool) (value.Value, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("write to %q: begin tx: %w", s.name, err)
	}
	defer tx.Rollback() // No-op if committed

	rec, key, err = s.resolveKey(ctx, tx, rec, key)
	if err != nil {
		return nil, err
	}
	k, err := encodeKey(key)
	if err != nil {
		return nil, err
	}

	data, err := value.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("write to %q: marshal record: %w", s.name, err)
	}

	query := `
		INSERT INTO records (store, key_type, key_num, key_str, value)
		VALUES (?, ?, ?, ?, ?)
	`
	if overwrite {
		query += `
		ON CONFLICT (store, key_type, key_num, key_str)
		DO UPDATE SET value = excluded.value
	`
	}
	if _, err := tx.ExecContext(ctx, query, s.name, k.typ, k.num, k.str, string(data)); err != nil {
		switch {
		case isConstraint(err, sqlite3.ErrConstraintPrimaryKey):
			return nil, fmt.Errorf("add to %q: %w", s.name, kv.ErrKeyExists)
		case isConstraint(err, sqlite3.ErrConstraintUnique):
			return nil, fmt.Errorf("write to %q: %w", s.name, kv.ErrConstraint)
		}
		return nil, fmt.Errorf("write to %q: %w", s.name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("write to %q: commit: %w", s.name, err)
	}
	return key, nil
}

// resolveKey determines the key of rec: the explicit out-of-line key, the
// value at the key path, or the next generated key. A generated key is
// written into a copy of rec at the key path.
func (s *ObjectStore) resolveKey(ctx context.Context, tx *sql.Tx, rec, key value.Value) (value.Value, value.Value, error) {
	if isUndefined(key) {
		key = value.Undefined{}
	} else if s.keyPath != "" {
		return nil, nil, fmt.Errorf("write to %q: explicit key for store with key path %q: %w", s.name, s.keyPath, kv.ErrInvalidKey)
	}

	if s.keyPath != "" {
		if _, ok := rec.(value.Object); !ok {
			return nil, nil, fmt.Errorf("write to %q: record with key path %q must be an object: %w", s.name, s.keyPath, kv.ErrMissingKey)
		}
		key = getPath(rec, s.keyPath)
	}

	if value.IsKey(key) {
		if n, ok := key.(value.Number); ok && s.autoIncrement {
			if err := s.bumpGenerator(ctx, tx, float64(n)); err != nil {
				return nil, nil, err
			}
		}
		return rec, key, nil
	}
	if _, undefined := key.(value.Undefined); !undefined {
		return nil, nil, fmt.Errorf("write to %q: %w: %s", s.name, kv.ErrInvalidKey, value.Classify(key))
	}
	if !s.autoIncrement {
		return nil, nil, fmt.Errorf("write to %q: %w", s.name, kv.ErrMissingKey)
	}

	var next int64
	if err := tx.QueryRowContext(ctx, `
		SELECT next_key FROM object_stores WHERE name = ?
	`, s.name).Scan(&next); err != nil {
		return nil, nil, fmt.Errorf("write to %q: read key generator: %w", s.name, err)
	}
	if next > maxGeneratedKey {
		return nil, nil, fmt.Errorf("write to %q: key generator exhausted: %w", s.name, kv.ErrConstraint)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE object_stores SET next_key = ? WHERE name = ?
	`, next+1, s.name); err != nil {
		return nil, nil, fmt.Errorf("write to %q: advance key generator: %w", s.name, err)
	}

	key = value.Number(next)
	if s.keyPath != "" {
		obj := value.Clone(rec).(value.Object)
		if obj == nil {
			obj = value.Object{}
		}
		setPath(obj, s.keyPath, key)
		rec = obj
	}
	return rec, key, nil
}

// maxGeneratedKey is the largest key the generator hands out, 2^53.
const maxGeneratedKey = 1 << 53

// bumpGenerator moves the key generator past an explicit numeric key.
// Keys above maxGeneratedKey exhaust the generator.
func (s *ObjectStore) bumpGenerator(ctx context.Context, tx *sql.Tx, n float64) error {
	if n < 1 {
		return nil
	}
	n = math.Min(n, maxGeneratedKey)
	_, err := tx.ExecContext(ctx, `
		UPDATE object_stores SET next_key = MAX(next_key, ?) WHERE name = ?
	`, int64(math.Floor(n))+1, s.name)
	if err != nil {
		return fmt.Errorf("write to %q: advance key generator: %w", s.name, err)
	}
	return nil
}

// Delete removes the record under key.
func (s *ObjectStore) Delete(ctx context.Context, key value.Value) error {
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM records
		WHERE store = ? AND key_type = ? AND key_num = ? AND key_str = ?
	`, s.name, k.typ, k.num, k.str)
	if err != nil {
		return fmt.Errorf("delete from %q: %w", s.name, err)
	}
	return nil
}

// Count returns the number of records in the store.
func (s *ObjectStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE store = ?
	`, s.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %q: %w", s.name, err)
	}
	return n, nil
}

// GetAllKeys returns every key in key order.
func (s *ObjectStore) GetAllKeys(ctx context.Context) ([]value.Value, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key_type, key_num, key_str FROM records
		WHERE store = ?
		ORDER BY key_type ASC, key_num ASC, key_str ASC
	`, s.name)
	if err != nil {
		return nil, fmt.Errorf("query keys of %q: %w", s.name, err)
	}
	defer rows.Close()

	keys := []value.Value{}
	for rows.Next() {
		var k encodedKey
		if err := rows.Scan(&k.typ, &k.num, &k.str); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k.decode())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// GetAll returns up to limit records in key order. limit <= 0 returns all.
func (s *ObjectStore) GetAll(ctx context.Context, limit int) ([]value.Value, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM records
		WHERE store = ?
		ORDER BY key_type ASC, key_num ASC, key_str ASC
		LIMIT ?
	`, s.name, limit)
	if err != nil {
		return nil, fmt.Errorf("query records of %q: %w", s.name, err)
	}
	defer rows.Close()

	records := []value.Value{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// OpenCursor iterates records with keys in r. An Undefined bound leaves
// that side of the range open.
func (s *ObjectStore) OpenCursor(ctx context.Context, r kv.KeyRange) (kv.Cursor, error) {
	query := `SELECT key_type, key_num, key_str, value FROM records WHERE store = ?`
	args := []any{s.name}

	if !isUndefined(r.Start) {
		k, err := encodeKey(r.Start)
		if err != nil {
			return nil, err
		}
		query += ` AND (key_type, key_num, key_str) >= (?, ?, ?)`
		args = append(args, k.typ, k.num, k.str)
	}
	if !isUndefined(r.End) {
		k, err := encodeKey(r.End)
		if err != nil {
			return nil, err
		}
		query += ` AND (key_type, key_num, key_str) <= (?, ?, ?)`
		args = append(args, k.typ, k.num, k.str)
	}
	query += ` ORDER BY key_type ASC, key_num ASC, key_str ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("open cursor on %q: %w", s.name, err)
	}
	return &cursor{rows: rows}, nil
}

func isUndefined(v value.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.Undefined)
	return ok
}

func decodeRecord(raw string) (value.Value, error) {
	rec, err := value.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
