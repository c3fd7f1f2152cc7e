// Package redis implements the membership store on Redis. Each member is a
// hash under a configurable key prefix, which lets several service
// instances share one record set.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	membershipstore "github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

var getRecordDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "membership_redis_get_record_duration_ms",
	Help:    "Latency of membership record reads from Redis in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// DefaultKeyPrefix namespaces record hashes.
const DefaultKeyPrefix = "membership:record:"

// Hash field names.
const (
	fieldMember     = "member"
	fieldExpiration = "expiration_tick"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

// compile-time interface check
var _ membershipstore.Store = (*Store)(nil)

// Store implements store.Store using Redis hashes.
type Store struct {
	client    goredis.UniversalClient
	keyPrefix string
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// New creates a Redis-backed store.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewFromURL parses a redis:// URL, connects and pings.
func NewFromURL(ctx context.Context, url string, opts ...Option) (*Store, error) {
	clientOpts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("membership/redis: parse redis URL: %w", err)
	}

	client := goredis.NewClient(clientOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("membership/redis: ping: %w", err)
	}

	return New(client, opts...), nil
}

func (s *Store) key(member types.Identity) string {
	return s.keyPrefix + member.String()
}

// ==================== Record Store ====================

func (s *Store) GetRecord(ctx context.Context, member types.Identity) (*record.Record, error) {
	start := time.Now()
	defer func() {
		getRecordDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	fields, err := s.client.HGetAll(ctx, s.key(member)).Result()
	if err != nil {
		return nil, fmt.Errorf("membership/redis: get record: %w", err)
	}
	if len(fields) == 0 {
		return nil, membership.ErrMemberNotFound
	}
	return fromHash(fields)
}

func (s *Store) PutRecord(ctx context.Context, rec *record.Record) error {
	err := s.client.HSet(ctx, s.key(rec.Member), toHash(rec)).Err()
	if err != nil {
		return fmt.Errorf("membership/redis: put record: %w", err)
	}
	return nil
}

// ==================== Core ====================

// Migrate is a no-op; Redis hashes need no schema.
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Helpers ====================

func toHash(rec *record.Record) map[string]any {
	return map[string]any{
		fieldMember:     rec.Member.String(),
		fieldExpiration: strconv.FormatUint(rec.ExpirationTick.Uint64(), 10),
		fieldCreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:  rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromHash(fields map[string]string) (*record.Record, error) {
	exp, err := strconv.ParseUint(fields[fieldExpiration], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("membership/redis: decode expiration tick: %w", err)
	}

	rec := &record.Record{
		Member:         types.Identity(fields[fieldMember]),
		ExpirationTick: types.Tick(exp),
	}
	rec.CreatedAt = parseTime(fields[fieldCreatedAt])
	rec.UpdatedAt = parseTime(fields[fieldUpdatedAt])
	return rec, nil
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
