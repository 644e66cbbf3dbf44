package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/kvquery/internal/kv"
)

// createTestStore creates a new on-disk store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createObjectStore defines an object store and returns its handle.
func createObjectStore(t *testing.T, s *Store, schema kv.StoreSchema) kv.Store {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateStore(ctx, schema); err != nil {
		t.Fatalf("CreateStore(%q) failed: %v", schema.Name, err)
	}
	st, err := s.Store(ctx, schema.Name)
	if err != nil {
		t.Fatalf("Store(%q) failed: %v", schema.Name, err)
	}
	return st
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("failed to get table info: %v", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan column: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes: %v", err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
