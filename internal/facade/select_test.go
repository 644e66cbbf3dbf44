package facade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/testutil"
	"github.com/roach88/kvquery/internal/value"
)

// seedNumbered inserts n users with ids 1..n.
func seedNumbered(t *testing.T, db *testDB, n int) {
	t.Helper()
	var set value.Array
	for i := 1; i <= n; i++ {
		set = append(set, testutil.Person(i, "p", 20+i))
	}
	_, err := db.Insert(context.Background(), InsertQuery{On: "notes", Set: set})
	require.NoError(t, err)
}

func ids(t *testing.T, items []value.Value) []value.Value {
	t.Helper()
	out := make([]value.Value, len(items))
	for i, it := range items {
		obj, ok := it.(value.Object)
		require.True(t, ok, "item %d is %T", i, it)
		out[i] = obj.Get("id")
	}
	return out
}

func TestSelect_All(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{From: "users"})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1), value.Number(2)}, ids(t, seq.Items()))
}

func TestSelect_AllWithLimit(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{From: "users", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1)}, ids(t, seq.Items()))
}

func TestSelect_Like(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Where("name", query.Like(value.String("Jo")))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, testutil.Person(1, "Joe", 30), seq.At(0))
}

func TestSelect_Lowwer(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Where("age", query.Lowwer(value.Number(25)))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, testutil.Person(2, "Ann", 20), seq.At(0))
}

func TestSelect_ConjunctionWithNoMatch(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From: "users",
		Where: query.FilterSpec{
			query.Where("name", query.Like(value.String("Jo"))),
			query.Where("age", query.Lowwer(value.Number(25))),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Len())
}

func TestSelect_ByKey(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(2))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, testutil.Person(2, "Ann", 20), seq.At(0))
	assert.Contains(t, db.logs.String(), `"msg":"select by key"`)
}

func TestSelect_ByKeyMissing(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("key", value.Number(99))},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Len())
}

func TestSelect_IdentityOperatorClauseFilters(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Where("id", query.Lowwer(value.Number(2)))},
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1)}, ids(t, seq.Items()))
	assert.Contains(t, db.logs.String(), `"msg":"select with filter"`)
}

func TestSelect_UndefinedEntriesIgnoredForResolution(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("name", value.Undefined{})},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Len())
}

func TestSelect_DecomposedStringMatches(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	_, err := db.Insert(ctx, InsertQuery{On: "users", Set: testutil.Person(9, "Jose\u0301", 30)})
	require.NoError(t, err)

	seq, err := db.Select(ctx, SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("name", value.String("Jose\u0301"))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, testutil.Person(9, "Jose\u0301", 30), seq.At(0))

	seq, err = db.Select(ctx, SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("name", value.String("Jos\u00e9"))},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Len())
}

func TestSelect_MalformedQuery(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	_, err := db.Select(context.Background(), SelectQuery{
		From: "users",
		Where: query.FilterSpec{
			query.Eq("name", value.String("Joe")),
			query.Eq("age", value.Undefined{}),
		},
	})
	require.Error(t, err)
	assert.True(t, query.IsMalformedQuery(err))
}

func TestSelect_UnknownOperator(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	_, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Where("age", query.Op{Name: "greater", Operand: value.Number(1)})},
	})
	require.Error(t, err)
	assert.True(t, query.IsUnknownOperator(err))
}

func TestSelect_CustomRegistry(t *testing.T) {
	reg := query.DefaultRegistry().With("greater", func(left, right value.Value) bool {
		return value.Less(right, left)
	})
	db := openTestDB(t, peopleSchema(), WithRegistry(reg))

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Where("age", query.Op{Name: "greater", Operand: value.Number(25)})},
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1)}, ids(t, seq.Items()))
}

func TestSelect_Range(t *testing.T) {
	db := openTestDB(t, peopleSchema())
	seedNumbered(t, db, 10)

	seq, err := db.Select(context.Background(), SelectQuery{
		From: "notes",
		Range: []kv.KeyRange{
			{Start: value.Number(2), End: value.Number(3)},
			{Start: value.Number(7), End: value.Number(8)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]value.Value{value.Number(2), value.Number(3), value.Number(7), value.Number(8)},
		ids(t, seq.Items()))
}

func TestSelect_RangeStopsAtLimit(t *testing.T) {
	db := openTestDB(t, peopleSchema())
	seedNumbered(t, db, 10)

	seq, err := db.Select(context.Background(), SelectQuery{
		From: "notes",
		Range: []kv.KeyRange{
			{Start: value.Number(2), End: value.Number(3)},
			{Start: value.Number(7), End: value.Number(9)},
		},
		Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(2), value.Number(3), value.Number(7)}, ids(t, seq.Items()))
}

func TestSelect_RangeThenFilter(t *testing.T) {
	db := openTestDB(t, peopleSchema())
	seedNumbered(t, db, 10)

	seq, err := db.Select(context.Background(), SelectQuery{
		From:  "notes",
		Range: []kv.KeyRange{{Start: value.Number(1), End: value.Number(6)}},
		Where: query.FilterSpec{query.Where("age", query.Lowwer(value.Number(24)))},
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1), value.Number(2), value.Number(3)}, ids(t, seq.Items()))
}

func TestSelect_ResultUsesConfiguredPacing(t *testing.T) {
	db := openTestDB(t, peopleSchema(), WithInterval(250*time.Millisecond))

	seq, err := db.Select(context.Background(), SelectQuery{From: "users"})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, seq.GetInterval())
}

func TestSelect_FilterIsThrottled(t *testing.T) {
	db := openTestDB(t, peopleSchema(), WithInterval(50*time.Millisecond))
	db.clock.SetAutoAdvance(time.Second)

	_, err := db.Select(context.Background(), SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("name", value.String("Ann"))},
	})
	require.NoError(t, err)

	// Two records plus the terminal step, each delayed one interval.
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond, 50 * time.Millisecond}, db.clock.Sleeps())
}

func TestSelect_CancelledDuringFilter(t *testing.T) {
	db := openTestDB(t, peopleSchema())
	db.clock.SetAutoAdvance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Select(ctx, SelectQuery{
		From:  "users",
		Where: query.FilterSpec{query.Eq("name", value.String("Ann"))},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
