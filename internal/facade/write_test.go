package facade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/schema"
	"github.com/roach88/kvquery/internal/testutil"
	"github.com/roach88/kvquery/internal/value"
)

func getRecord(t *testing.T, db *testDB, store string, key value.Value) value.Value {
	t.Helper()
	seq, err := db.Select(context.Background(), SelectQuery{
		From:  store,
		Where: query.FilterSpec{query.Eq("id", key)},
	})
	require.NoError(t, err)
	if seq.Len() == 0 {
		return value.Undefined{}
	}
	return seq.At(0)
}

func TestInsert_Object(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	keys, err := db.Insert(ctx, InsertQuery{On: "users", Set: testutil.Person(3, "Eve", 40)})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(3)}, keys)
	assert.Equal(t, testutil.Person(3, "Eve", 40), getRecord(t, db, "users", value.Number(3)))
}

func TestInsert_ArrayAddsEachElement(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	keys, err := db.Insert(ctx, InsertQuery{On: "notes", Set: value.Array{
		value.NewObject(value.P("text", value.String("a"))),
		value.NewObject(value.P("text", value.String("b"))),
	}})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(1), value.Number(2)}, keys)

	n, err := db.Count(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsert_UnsupportedValue(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	for _, set := range []value.Value{value.String("x"), value.Number(1), value.Null{}, value.Undefined{}} {
		_, err := db.Insert(ctx, InsertQuery{On: "users", Set: set})
		assert.ErrorIs(t, err, ErrUnsupportedValue, "set %v", set)
	}
	assert.Contains(t, db.logs.String(), "can not save this type of data")

	n, err := db.Count(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsert_DuplicateKey(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	_, err := db.Insert(context.Background(), InsertQuery{On: "users", Set: testutil.Person(1, "Dup", 1)})
	assert.ErrorIs(t, err, kv.ErrKeyExists)
}

func TestUpdate_Merge(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	got, err := db.Update(ctx, UpdateQuery{
		On:    "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(1))},
		Set:   value.NewObject(value.P("age", value.Number(31))),
		Merge: true,
	})
	require.NoError(t, err)

	want := testutil.Person(1, "Joe", 31)
	assert.Equal(t, want, got)
	assert.Equal(t, want, getRecord(t, db, "users", value.Number(1)))
}

func TestUpdate_MergeConcatenatesArrays(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	rec := testutil.Person(3, "Eve", 40)
	rec["tags"] = value.Array{value.String("a")}
	_, err := db.Insert(ctx, InsertQuery{On: "users", Set: rec})
	require.NoError(t, err)

	got, err := db.Update(ctx, UpdateQuery{
		On:    "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(3))},
		Set:   value.NewObject(value.P("tags", value.Array{value.String("b")})),
		Merge: true,
	})
	require.NoError(t, err)
	assert.Equal(t, value.Array{value.String("a"), value.String("b")}, got.Get("tags"))
}

func TestUpdate_Overwrite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	_, err := db.Update(ctx, UpdateQuery{
		On:    "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(1))},
		Set:   value.NewObject(value.P("age", value.Number(31))),
	})
	require.NoError(t, err)

	want := value.NewObject(value.P("id", value.Number(1)), value.P("age", value.Number(31)))
	assert.Equal(t, want, getRecord(t, db, "users", value.Number(1)))
}

func TestUpdate_MergeMissingRecordWritesPatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	got, err := db.Update(ctx, UpdateQuery{
		On:    "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(9))},
		Set:   value.NewObject(value.P("name", value.String("New"))),
		Merge: true,
	})
	require.NoError(t, err)
	assert.Equal(t, value.NewObject(value.P("id", value.Number(9)), value.P("name", value.String("New"))), got)

	n, err := db.Count(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdate_KeyTakesPrecedenceOverID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	got, err := db.Update(ctx, UpdateQuery{
		On: "users",
		Where: query.FilterSpec{
			query.Eq("id", value.Number(1)),
			query.Eq("key", value.Number(2)),
		},
		Set:   value.NewObject(value.P("age", value.Number(21))),
		Merge: true,
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.Person(2, "Ann", 21), got)
}

func outOfLineSchema() schema.Database {
	return schema.Database{
		Name:    "app",
		Version: 1,
		Stores: []schema.Store{
			{Name: "log", AutoIncrement: true},
			{Name: "plain"},
		},
	}
}

func TestUpdate_OutOfLineAutoIncrement(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, outOfLineSchema())

	keys, err := db.Insert(ctx, InsertQuery{On: "log", Set: value.NewObject(value.P("v", value.Number(1)))})
	require.NoError(t, err)
	require.Equal(t, []value.Value{value.Number(1)}, keys)

	got, err := db.Update(ctx, UpdateQuery{
		On:    "log",
		Where: query.FilterSpec{query.Eq("id", value.Number(1))},
		Set:   value.NewObject(value.P("v", value.Number(2))),
		Merge: true,
	})
	require.NoError(t, err)
	assert.Equal(t, value.NewObject(value.P("v", value.Number(2))), got)

	n, err := db.Count(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, value.NewObject(value.P("v", value.Number(2))), getRecord(t, db, "log", value.Number(1)))
}

func TestUpdate_OutOfLineWithoutGenerator(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, outOfLineSchema())

	_, err := db.Update(ctx, UpdateQuery{
		On:    "plain",
		Where: query.FilterSpec{query.Eq("id", value.String("a"))},
		Set:   value.NewObject(value.P("v", value.Number(1))),
	})
	require.NoError(t, err)
	assert.Equal(t, value.NewObject(value.P("v", value.Number(1))), getRecord(t, db, "plain", value.String("a")))

	_, err = db.Insert(ctx, InsertQuery{On: "plain", Set: value.NewObject(value.P("v", value.Number(2)))})
	assert.ErrorIs(t, err, kv.ErrMissingKey)
}

func TestUpdate_MissingIdentity(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	wheres := map[string]query.FilterSpec{
		"empty":     nil,
		"no id":     {query.Eq("name", value.String("Joe"))},
		"zero id":   {query.Eq("id", value.Number(0))},
		"empty key": {query.Eq("key", value.String(""))},
		"null id":   {query.Eq("id", value.Null{})},
	}
	for name, where := range wheres {
		t.Run(name, func(t *testing.T) {
			_, err := db.Update(ctx, UpdateQuery{
				On:    "users",
				Where: where,
				Set:   value.NewObject(value.P("age", value.Number(1))),
			})
			require.Error(t, err)
			assert.True(t, IsMissingIdentity(err), "got %v", err)
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, peopleSchema())

	require.NoError(t, db.Delete(ctx, DeleteQuery{
		On:    "users",
		Where: query.FilterSpec{query.Eq("id", value.Number(1))},
	}))

	n, err := db.Count(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, value.Undefined{}, getRecord(t, db, "users", value.Number(1)))
}

func TestDelete_MissingIdentity(t *testing.T) {
	db := openTestDB(t, peopleSchema())

	err := db.Delete(context.Background(), DeleteQuery{On: "users"})
	require.Error(t, err)
	assert.True(t, IsMissingIdentity(err))

	var mie *MissingIdentityError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, "delete", mie.Op)
	assert.Equal(t, "users", mie.Store)
}
