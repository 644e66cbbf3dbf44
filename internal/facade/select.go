package facade

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/kvquery/internal/asyncseq"
	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/value"
)

// SelectQuery reads records from a store.
type SelectQuery struct {
	From  string
	Where query.FilterSpec

	// Range, when non-empty, restricts the scan to these inclusive key
	// ranges, visited in order.
	Range []kv.KeyRange

	// Limit caps the number of records scanned. 0 means no limit.
	Limit int
}

// Select runs q and returns the matching records as a throttled sequence.
func (db *DB) Select(ctx context.Context, q SelectQuery) (*asyncseq.Sequence, error) {
	st, log, err := db.store(ctx, "select", q.From)
	if err != nil {
		return nil, err
	}

	if len(q.Range) > 0 {
		log.Debug("select by range", "ranges", len(q.Range), "limit", q.Limit)
		seq, err := db.scanRanges(ctx, st, q.Range, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("select from %q: %w", q.From, err)
		}
		return db.filter(ctx, seq, q.Where)
	}

	entries := q.Where.Entries()
	if len(entries) == 0 {
		log.Debug("select all", "limit", q.Limit)
		return db.getAll(ctx, st, q.Limit)
	}

	if key, ok := identityLookup(entries); ok {
		log.Debug("select by key", "key", key)
		rec, err := st.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("select from %q: %w", q.From, err)
		}
		seq := db.sequence()
		if value.Classify(rec) != value.KindUndefined {
			seq.Push(rec)
		}
		return seq, nil
	}

	log.Debug("select with filter", "where", q.Where.String(), "limit", q.Limit)
	seq, err := db.getAll(ctx, st, q.Limit)
	if err != nil {
		return nil, err
	}
	return db.filter(ctx, seq, q.Where)
}

// identityLookup reports whether entries is a single literal key on an
// identity field.
func identityLookup(entries []query.Clause) (value.Value, bool) {
	if len(entries) != 1 {
		return nil, false
	}
	c := entries[0]
	if !slices.Contains(IdentityFields, c.Field) || !value.IsKey(c.Value) {
		return nil, false
	}
	return c.Value, true
}

func (db *DB) getAll(ctx context.Context, st kv.Store, limit int) (*asyncseq.Sequence, error) {
	records, err := st.GetAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	seq := db.sequence()
	seq.Push(records...)
	return seq, nil
}

// scanRanges walks each range in order until limit records are collected.
func (db *DB) scanRanges(ctx context.Context, st kv.Store, ranges []kv.KeyRange, limit int) (*asyncseq.Sequence, error) {
	seq := db.sequence()
	for _, r := range ranges {
		full, err := scanRange(ctx, st, r, seq, limit)
		if err != nil {
			return nil, err
		}
		if full {
			break
		}
	}
	return seq, nil
}

// scanRange appends the records of one range to seq and reports whether
// the limit was reached. The cursor is closed before returning.
func scanRange(ctx context.Context, st kv.Store, r kv.KeyRange, seq *asyncseq.Sequence, limit int) (bool, error) {
	cur, err := st.OpenCursor(ctx, r)
	if err != nil {
		return false, err
	}
	defer cur.Close()

	for cur.Next() {
		if n := seq.Push(cur.Value()); limit > 0 && n == limit {
			return true, nil
		}
	}
	return false, cur.Err()
}

// filter keeps the records matching where, traversing seq at its pace.
func (db *DB) filter(ctx context.Context, seq *asyncseq.Sequence, where query.FilterSpec) (*asyncseq.Sequence, error) {
	pred := query.CompileWith(db.registry, where)
	if pred.IsEmpty() {
		return seq, nil
	}
	out, err := seq.Filter(ctx, pred.MatchValue)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return out, nil
}
