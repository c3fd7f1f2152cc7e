package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	membershipstore "github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

// compile-time interface check
var _ membershipstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// Open connects to the PostgreSQL database at dsn and wraps it in a Store.
func Open(ctx context.Context, dsn string, opts ...driver.Option) (*Store, error) {
	pg := pgdriver.New()
	if err := pg.Open(ctx, dsn, opts...); err != nil {
		return nil, fmt.Errorf("membership/postgres: open: %w", err)
	}
	db, err := grove.Open(pg)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("membership/postgres: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("membership/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("membership/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Record Store ====================

func (s *Store) GetRecord(ctx context.Context, member types.Identity) (*record.Record, error) {
	m := new(recordModel)
	err := s.pg.NewSelect(m).
		Where("member = $1", member.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("membership/postgres: get record: %w", err)
	}
	return fromRecordModel(m)
}

// PutRecord upserts the record. created_at keeps the value of the first
// insert.
func (s *Store) PutRecord(ctx context.Context, rec *record.Record) error {
	m := toRecordModel(rec)
	_, err := s.pg.NewInsert(m).
		OnConflict("(member) DO UPDATE").
		Set("expiration_tick = EXCLUDED.expiration_tick").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("membership/postgres: put record: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// isNoRows checks if an error wraps sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
