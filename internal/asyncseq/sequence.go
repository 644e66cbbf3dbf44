// Package asyncseq provides a throttled, single-pass traversal over a
// materialized list of records.
//
// A Sequence is built once per query result. Traversal goes through an
// Iterator which spaces out yields: whenever more than the configured
// interval has elapsed since the last delayed yield, the next item is held
// back for one full interval. Items requested in quick succession are
// returned immediately.
//
// A Sequence is not safe for concurrent use. Each traversal owns its
// Iterator; running two traversals over one Sequence while also pushing to
// it is a caller error.
package asyncseq

import (
	"context"
	"iter"
	"time"

	"github.com/roach88/kvquery/internal/value"
)

// DefaultInterval is the throttle interval applied when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Sequence is an ordered, finite list of values with a throttle interval.
type Sequence struct {
	items    []value.Value
	interval time.Duration
	clock    Clock
}

// New creates a Sequence holding items with DefaultInterval and the system
// clock.
func New(items ...value.Value) *Sequence {
	return &Sequence{
		items:    items,
		interval: DefaultInterval,
		clock:    SystemClock{},
	}
}

// FromObjects creates a Sequence from records.
func FromObjects(records ...value.Object) *Sequence {
	items := make([]value.Value, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	return New(items...)
}

// Interval sets the throttle interval and returns s for chaining.
// It only affects iterators created afterwards.
func (s *Sequence) Interval(d time.Duration) *Sequence {
	s.interval = d
	return s
}

// WithClock replaces the clock and returns s for chaining.
func (s *Sequence) WithClock(c Clock) *Sequence {
	if c == nil {
		c = SystemClock{}
	}
	s.clock = c
	return s
}

// GetInterval returns the configured throttle interval.
func (s *Sequence) GetInterval() time.Duration {
	return s.interval
}

// Push appends items and returns the new length.
func (s *Sequence) Push(items ...value.Value) int {
	s.items = append(s.items, items...)
	return len(s.items)
}

// Len returns the number of items.
func (s *Sequence) Len() int {
	return len(s.items)
}

// At returns the item at index i, or Undefined when i is out of range.
func (s *Sequence) At(i int) value.Value {
	if i < 0 || i >= len(s.items) {
		return value.Undefined{}
	}
	return s.items[i]
}

// Items returns a copy of the underlying items without throttling.
func (s *Sequence) Items() []value.Value {
	out := make([]value.Value, len(s.items))
	copy(out, s.items)
	return out
}

// Iter starts a traversal. The interval and clock are captured now and the
// throttle timestamp starts at the current clock time.
func (s *Sequence) Iter() *Iterator {
	return &Iterator{
		seq:      s,
		interval: s.interval,
		clock:    s.clock,
		last:     s.clock.Now(),
	}
}

// All returns a range-over-func adapter over a throttled traversal.
// Iteration stops at the first error, which is yielded with a nil value.
//
//	for rec, err := range seq.All(ctx) {
//	    if err != nil { ... }
//	}
func (s *Sequence) All(ctx context.Context) iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		it := s.Iter()
		for {
			v, done, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if done {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Find traverses s in order and returns the first item for which pred
// reports true. found is false when the sequence is exhausted. A pred error
// aborts the traversal.
func (s *Sequence) Find(ctx context.Context, pred func(value.Value) (bool, error)) (value.Value, bool, error) {
	for v, err := range s.All(ctx) {
		if err != nil {
			return nil, false, err
		}
		ok, err := pred(v)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return value.Undefined{}, false, nil
}

// Filter traverses s in order and collects matching items into a new
// Sequence sharing s's interval and clock. Relative order is preserved.
// A pred error aborts the traversal and no partial result is returned.
func (s *Sequence) Filter(ctx context.Context, pred func(value.Value) (bool, error)) (*Sequence, error) {
	result := New().Interval(s.interval).WithClock(s.clock)
	for v, err := range s.All(ctx) {
		if err != nil {
			return nil, err
		}
		ok, err := pred(v)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Push(v)
		}
	}
	return result, nil
}

// Iterator is the stateful cursor of one traversal.
type Iterator struct {
	seq      *Sequence
	interval time.Duration
	clock    Clock
	pos      int
	last     time.Time
}

// Next returns the next item.
//
// If more than the interval has elapsed since the last delayed step, the
// step timestamp is reset and the item is returned only after sleeping one
// full interval, even though the interval has already passed. Otherwise the
// item is returned immediately.
//
// done is true on the step whose cursor has reached the end of the
// sequence; that step yields Undefined. Every real item, the last one
// included, is returned with done == false.
func (it *Iterator) Next(ctx context.Context) (item value.Value, done bool, err error) {
	now := it.clock.Now()
	if now.Sub(it.last) > it.interval {
		it.last = now
		if err := it.clock.Sleep(ctx, it.interval); err != nil {
			return nil, false, err
		}
	}

	// Read after the wait: items pushed while sleeping are visible.
	item = it.seq.At(it.pos)
	done = it.pos >= it.seq.Len()
	it.pos++
	return item, done, nil
}
