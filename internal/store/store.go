package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/value"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking (PRAGMA user_version):
// 1 - Initial layout (meta, object_stores, indexes, records)
const currentSchemaVersion = 1

// driverName is the sqlite3 driver variant with the UTF16 collation.
const driverName = "sqlite3_kvquery"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterCollation("UTF16", value.CompareStrings)
		},
	})
}

// Store is a SQLite database implementing kv.Backend.
type Store struct {
	db *sql.DB
}

var _ kv.Backend = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and checks the layout
// version. This function is idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database layout version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// Version returns the database schema version, 0 if never set.
func (s *Store) Version(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM meta WHERE id = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return version, nil
}

// Name returns the database name recorded by SetVersion, empty if unset.
func (s *Store) Name(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM meta WHERE id = 1`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read name: %w", err)
	}
	return name, nil
}

// SetVersion records the database name and schema version.
func (s *Store) SetVersion(ctx context.Context, name string, version int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (id, name, version) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, version = excluded.version
	`, name, version)
	if err != nil {
		return fmt.Errorf("set version: %w", err)
	}
	return nil
}

// CreateStore defines a new object store.
// Returns kv.ErrStoreExists if the name is taken.
func (s *Store) CreateStore(ctx context.Context, schema kv.StoreSchema) error {
	if schema.Name == "" {
		return fmt.Errorf("create store: name is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO object_stores (name, key_path, auto_increment)
		VALUES (?, ?, ?)
	`, schema.Name, schema.KeyPath, schema.AutoIncrement)
	if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("create store %q: %w", schema.Name, kv.ErrStoreExists)
	}
	if err != nil {
		return fmt.Errorf("create store %q: %w", schema.Name, err)
	}
	return nil
}

// CreateIndex defines a secondary index as a partial expression index over
// the records of one store. Unique indexes reject writes that would
// duplicate a non-null indexed value with kv.ErrConstraint.
func (s *Store) CreateIndex(ctx context.Context, store string, idx kv.IndexSchema) error {
	if idx.Name == "" || idx.KeyPath == "" {
		return fmt.Errorf("create index on %q: name and key path are required", store)
	}
	if _, err := s.lookupStore(ctx, store); err != nil {
		return fmt.Errorf("create index %q: %w", idx.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create index %q: begin tx: %w", idx.Name, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexes (store, name, key_path, is_unique) VALUES (?, ?, ?, ?)
	`, store, idx.Name, idx.KeyPath, idx.Unique); err != nil {
		return fmt.Errorf("create index %q: %w", idx.Name, err)
	}

	// Partial index predicates cannot use bound parameters.
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	ddl := fmt.Sprintf(
		`CREATE %sINDEX IF NOT EXISTS %s ON records (json_extract(value, %s)) WHERE store = %s`,
		unique,
		quoteIdent("idx_"+store+"_"+idx.Name),
		quoteLiteral(jsonPath(idx.KeyPath)),
		quoteLiteral(store),
	)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		if isConstraint(err, sqlite3.ErrConstraintUnique) {
			return fmt.Errorf("create index %q: %w", idx.Name, kv.ErrConstraint)
		}
		return fmt.Errorf("create index %q: %w", idx.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create index %q: commit: %w", idx.Name, err)
	}
	return nil
}

// Indexes returns the index definitions of a store in name order.
func (s *Store) Indexes(ctx context.Context, store string) ([]kv.IndexSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, key_path, is_unique FROM indexes
		WHERE store = ?
		ORDER BY name ASC
	`, store)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	indexes := []kv.IndexSchema{}
	for rows.Next() {
		var idx kv.IndexSchema
		if err := rows.Scan(&idx.Name, &idx.KeyPath, &idx.Unique); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}
	return indexes, nil
}

// Store returns a handle to the named object store.
func (s *Store) Store(ctx context.Context, name string) (kv.Store, error) {
	return s.lookupStore(ctx, name)
}

func (s *Store) lookupStore(ctx context.Context, name string) (*ObjectStore, error) {
	st := &ObjectStore{db: s.db, name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT key_path, auto_increment FROM object_stores WHERE name = ?
	`, name).Scan(&st.keyPath, &st.autoIncrement)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", kv.ErrStoreNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup store %q: %w", name, err)
	}
	return st, nil
}

// isConstraint reports whether err is a SQLite constraint error with the
// given extended code.
func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint && se.ExtendedCode == code
	}
	return false
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var got string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&got); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if got != expected {
		return fmt.Errorf("%s = %q, expected %q", name, got, expected)
	}
	return nil
}
