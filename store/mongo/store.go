package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	membershipstore "github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

// Collection name constants.
const (
	colRecords = "membership_records"
)

// compile-time interface check
var _ membershipstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Open connects to the MongoDB deployment at uri. The database name is taken
// from the URI path unless overridden with mongodriver.WithDatabase.
func Open(ctx context.Context, uri string, opts ...mongodriver.MongoOption) (*Store, error) {
	mdb := mongodriver.New()
	if err := mdb.Open(ctx, uri, opts...); err != nil {
		return nil, fmt.Errorf("membership/mongo: open: %w", err)
	}
	db, err := grove.Open(mdb)
	if err != nil {
		_ = mdb.Close()
		return nil, fmt.Errorf("membership/mongo: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the membership collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("membership/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m recordModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": member.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("membership/mongo: get record: %w", err)
	}
	return fromRecordModel(&m)
}

// PutRecord upserts the record. created_at is only written on insert.
func (s *Store) PutRecord(ctx context.Context, rec *record.Record) error {
	m := toRecordModel(rec)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Member}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"expiration_tick": m.ExpirationTick,
				"updated_at":      m.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("membership/mongo: put record: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the membership
// collections. _id is unique by default.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colRecords: {
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}
}
