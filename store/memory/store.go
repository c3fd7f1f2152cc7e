package memory

import (
	"context"
	"sync"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	membershipstore "github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

// compile-time interface check
var _ membershipstore.Store = (*Store)(nil)

// Store keeps records in process memory. Records are copied on the way in
// and out so callers never share state with the store.
type Store struct {
	mu     sync.RWMutex
	closed bool

	records map[types.Identity]*record.Record
}

func New() *Store {
	return &Store{
		records: make(map[types.Identity]*record.Record),
	}
}

// Record Store implementation
func (s *Store) GetRecord(_ context.Context, member types.Identity) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, membership.ErrStoreClosed
	}
	if rec, ok := s.records[member]; ok {
		return rec.Clone(), nil
	}
	return nil, membership.ErrMemberNotFound
}

func (s *Store) PutRecord(_ context.Context, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return membership.ErrStoreClosed
	}
	s.records[rec.Member] = rec.Clone()
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Core methods
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return membership.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
