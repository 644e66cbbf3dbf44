package facade

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kvquery/internal/schema"
	"github.com/roach88/kvquery/internal/store"
	"github.com/roach88/kvquery/internal/testutil"
)

// peopleSchema defines a users store seeded with testutil.People.
func peopleSchema() schema.Database {
	var data []any
	for _, p := range testutil.People() {
		data = append(data, p)
	}
	return schema.Database{
		Name:    "app",
		Version: 1,
		Stores: []schema.Store{
			{Name: "users", KeyPath: "id", Data: data},
			{Name: "notes", KeyPath: "id", AutoIncrement: true},
		},
	}
}

type testDB struct {
	*DB
	path  string
	clock *testutil.FakeClock
	logs  *bytes.Buffer
}

// openTestDB opens a SQLite store in a temp dir and connects def to it.
func openTestDB(t *testing.T, def schema.Database, opts ...Option) *testDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return reopenTestDB(t, path, def, opts...)
}

func reopenTestDB(t *testing.T, path string, def schema.Database, opts ...Option) *testDB {
	t.Helper()
	tdb, err := tryOpenTestDB(t, path, def, opts...)
	require.NoError(t, err)
	return tdb
}

func tryOpenTestDB(t *testing.T, path string, def schema.Database, opts ...Option) (*testDB, error) {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)

	clock := testutil.NewFakeClock()
	logs := &bytes.Buffer{}
	base := []Option{
		WithClock(clock),
		WithOpIDGenerator(testutil.NewFixedOpIDGenerator("")),
		WithLogger(slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	}

	db, err := Connect(context.Background(), s, def, append(base, opts...)...)
	if err != nil {
		s.Close()
		return nil, err
	}
	t.Cleanup(func() { db.Close() })
	return &testDB{DB: db, path: path, clock: clock, logs: logs}, nil
}
