package facade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/kvquery/internal/asyncseq"
	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/schema"
)

// IdentityFields are the Where fields that address a single record, in
// precedence order.
var IdentityFields = []string{"key", "id"}

// maxSeedWorkers bounds concurrent store seeding.
const maxSeedWorkers = 4

// DB is a connected database.
//
// Thread-safety: DB holds no mutable state after Connect; concurrent calls
// are serialized by the backend.
type DB struct {
	backend  kv.Backend
	schema   schema.Database
	interval time.Duration
	clock    asyncseq.Clock
	opIDs    OpIDGenerator
	logger   *slog.Logger
	registry *query.Registry
}

// Option configures a DB.
type Option func(*DB)

// WithInterval sets the throttle interval of returned sequences.
//
// Default: 100ms (asyncseq.DefaultInterval)
func WithInterval(d time.Duration) Option {
	return func(db *DB) {
		db.interval = d
	}
}

// WithClock sets the clock that paces returned sequences.
func WithClock(c asyncseq.Clock) Option {
	return func(db *DB) {
		db.clock = c
	}
}

// WithOpIDGenerator overrides the operation id source.
func WithOpIDGenerator(g OpIDGenerator) Option {
	return func(db *DB) {
		db.opIDs = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithRegistry sets the operator registry used to evaluate filters.
func WithRegistry(r *query.Registry) Option {
	return func(db *DB) {
		db.registry = r
	}
}

// Connect opens the database described by def on backend.
//
// Version handling:
//   - stored 0: upgrade (create stores and indexes, record the version,
//     then seed every store's data concurrently)
//   - stored == requested: nothing to do
//   - 0 < stored < requested: ErrMigrationNotImplemented
//   - stored > requested: ErrVersionDowngrade
func Connect(ctx context.Context, backend kv.Backend, def schema.Database, opts ...Option) (*DB, error) {
	db := &DB{
		backend:  backend,
		schema:   def.WithDefaults(),
		interval: asyncseq.DefaultInterval,
		clock:    asyncseq.SystemClock{},
		opIDs:    UUIDv7Generator{},
		logger:   slog.Default(),
		registry: query.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.schema.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	name, version := db.schema.Name, db.schema.Version
	stored, err := backend.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %q: %w", name, err)
	}

	switch {
	case stored == 0:
		if err := db.upgrade(ctx); err != nil {
			return nil, err
		}
		if err := db.seed(ctx); err != nil {
			return nil, err
		}
	case stored < version:
		return nil, fmt.Errorf("connect %q: %w: stored version %d, requested %d",
			name, ErrMigrationNotImplemented, stored, version)
	case stored > version:
		return nil, fmt.Errorf("connect %q: %w: stored version %d, requested %d",
			name, ErrVersionDowngrade, stored, version)
	}

	db.logger.Info("connected",
		"name", name,
		"version", version,
	)
	return db, nil
}

// upgrade creates every store and index and records the version.
func (db *DB) upgrade(ctx context.Context) error {
	db.logger.Info("upgrading",
		"name", db.schema.Name,
		"version", db.schema.Version,
	)

	for _, s := range db.schema.Stores {
		if err := db.backend.CreateStore(ctx, s.StoreSchema()); err != nil {
			return fmt.Errorf("upgrade: %w", err)
		}
		for _, idx := range s.IndexSchemas() {
			if err := db.backend.CreateIndex(ctx, s.Name, idx); err != nil {
				return fmt.Errorf("upgrade: %w", err)
			}
		}
	}

	if err := db.backend.SetVersion(ctx, db.schema.Name, db.schema.Version); err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	return nil
}

// seed inserts each store's seed data, one goroutine per store.
func (db *DB) seed(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSeedWorkers)

	for _, s := range db.schema.Stores {
		if len(s.Data) == 0 {
			continue
		}
		g.Go(func() error {
			db.logger.Info("seeding",
				"store", s.Name,
				"records", len(s.Data),
			)
			data, err := s.Seed()
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			if _, err := db.Insert(ctx, InsertQuery{On: s.Name, Set: data}); err != nil {
				return fmt.Errorf("seed %q: %w", s.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Schema returns the database definition after defaults were applied.
func (db *DB) Schema() schema.Database {
	return db.schema
}

// Close closes the backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

// store resolves a store handle, stamping a new operation id.
func (db *DB) store(ctx context.Context, op, name string) (kv.Store, *slog.Logger, error) {
	log := db.logger.With("op", op, "op_id", db.opIDs.Generate(), "store", name)
	st, err := db.backend.Store(ctx, name)
	if err != nil {
		log.Warn("store lookup failed", "error", err)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, log, nil
}

// sequence wraps items in a Sequence paced by the DB's interval and clock.
func (db *DB) sequence() *asyncseq.Sequence {
	return asyncseq.New().Interval(db.interval).WithClock(db.clock)
}
