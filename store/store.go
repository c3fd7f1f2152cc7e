// Package store defines the durable storage contract for membership records.
package store

import (
	"context"

	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// Store is the unified storage interface for membership records.
//
// GetRecord has no side effects and returns membership.ErrMemberNotFound
// when the identity never joined. PutRecord overwrites unconditionally and
// is idempotent for identical records. There is no delete: the data model
// keeps stale records forever as inactive history.
type Store interface {
	// Record methods
	GetRecord(ctx context.Context, member types.Identity) (*record.Record, error)
	PutRecord(ctx context.Context, rec *record.Record) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
