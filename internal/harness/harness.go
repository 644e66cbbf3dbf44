package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/schema"
	"github.com/roach88/kvquery/internal/store"
	"github.com/roach88/kvquery/internal/testutil"
	"github.com/roach88/kvquery/internal/value"
)

// Harness executes scenario steps against one connected database.
type Harness struct {
	backend *store.Store
	db      *facade.DB
	clock   *testutil.FakeClock
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh SQLite file that is removed afterwards.
// Step failures that the scenario does not expect are reported in the
// result; the returned error is reserved for failures to set up the run.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	def, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	dir, err := os.MkdirTemp("", "kvq-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "scenario.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	h := &Harness{
		backend: st,
		clock:   testutil.NewFakeClock(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	h.db, err = facade.Connect(ctx, st, def,
		facade.WithClock(h.clock),
		facade.WithOpIDGenerator(testutil.NewFixedOpIDGenerator("")),
		facade.WithLogger(h.logger),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer h.db.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		out, err := h.execute(ctx, step)
		code := facade.ErrorCode(err)
		result.AddTrace(step, out, code)
		checkExpect(result, i, step, out, err)
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	return result, nil
}

// execute runs one step through the facade and renders its outcome as a
// value.
func (h *Harness) execute(ctx context.Context, step Step) (value.Value, error) {
	switch step.Op {
	case OpSelect:
		where, err := query.ParseFilterSpec([]byte(step.Where))
		if err != nil {
			return nil, err
		}
		ranges, err := keyRanges(step.Range)
		if err != nil {
			return nil, err
		}
		seq, err := h.db.Select(ctx, facade.SelectQuery{
			From:  step.Store,
			Where: where,
			Range: ranges,
			Limit: step.Limit,
		})
		if err != nil {
			return nil, err
		}
		out := value.Array{}
		for item, err := range seq.All(ctx) {
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil

	case OpInsert:
		set, err := value.Decode([]byte(step.Set))
		if err != nil {
			return nil, err
		}
		keys, err := h.db.Insert(ctx, facade.InsertQuery{On: step.Store, Set: set})
		if err != nil {
			return nil, err
		}
		return value.Array(keys), nil

	case OpUpdate:
		where, err := query.ParseFilterSpec([]byte(step.Where))
		if err != nil {
			return nil, err
		}
		set, err := value.DecodeObject([]byte(step.Set))
		if err != nil {
			return nil, err
		}
		return h.db.Update(ctx, facade.UpdateQuery{
			On:    step.Store,
			Where: where,
			Set:   set,
			Merge: step.Merge,
		})

	case OpDelete:
		where, err := query.ParseFilterSpec([]byte(step.Where))
		if err != nil {
			return nil, err
		}
		if err := h.db.Delete(ctx, facade.DeleteQuery{On: step.Store, Where: where}); err != nil {
			return nil, err
		}
		return value.Null{}, nil

	case OpCount:
		n, err := h.db.Count(ctx, step.Store)
		if err != nil {
			return nil, err
		}
		return value.Number(n), nil

	case OpLast:
		return h.db.Last(ctx, step.Store)

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// evaluate checks one assertion against the backend directly, bypassing
// the facade.
func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	st, err := h.backend.Store(ctx, a.Store)
	if err != nil {
		return err
	}

	switch a.Type {
	case AssertCount:
		n, err := st.Count(ctx)
		if err != nil {
			return err
		}
		if n != a.Count {
			return fmt.Errorf("count = %d, want %d", n, a.Count)
		}
		return nil

	case AssertRecord, AssertAbsent:
		key, err := value.FromAny(a.Key)
		if err != nil {
			return fmt.Errorf("key: %w", err)
		}
		got, err := st.Get(ctx, key)
		if err != nil {
			return err
		}
		if a.Type == AssertAbsent {
			if value.Classify(got) != value.KindUndefined {
				return fmt.Errorf("record %s is present", render(key))
			}
			return nil
		}
		if value.Classify(got) == value.KindUndefined {
			return fmt.Errorf("record %s is missing", render(key))
		}
		return compareJSON(got, a.Expect)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// keyRanges converts scenario ranges into backend key ranges.
func keyRanges(specs []RangeSpec) ([]kv.KeyRange, error) {
	ranges := make([]kv.KeyRange, 0, len(specs))
	for i, r := range specs {
		start, err := bound(r.Start)
		if err != nil {
			return nil, fmt.Errorf("range[%d].start: %w", i, err)
		}
		end, err := bound(r.End)
		if err != nil {
			return nil, fmt.Errorf("range[%d].end: %w", i, err)
		}
		ranges = append(ranges, kv.KeyRange{Start: start, End: end})
	}
	return ranges, nil
}

func bound(v any) (value.Value, error) {
	if v == nil {
		return value.Undefined{}, nil
	}
	return value.FromAny(v)
}
