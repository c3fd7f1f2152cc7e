package membership

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/plugin"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

// Reference policy.
const (
	// DefaultFee is the exact amount a join payment must carry.
	DefaultFee types.Amount = 1_000_000

	// DefaultDuration is the number of ticks a join grants, measured from
	// the tick at which the join happens.
	DefaultDuration uint64 = 1000
)

// Service is the membership state machine. It validates payment facts,
// stores expiration ticks and answers membership queries. It holds no
// membership state of its own; everything lives in the store.
type Service struct {
	store   store.Store
	ledger  clock.Ledger
	plugins *plugin.Registry
	logger  *slog.Logger
	locks   *keyedMutex

	// Policy
	fee      types.Amount
	duration uint64

	initialized atomic.Bool
}

// New creates a new Service backed by s, reading ticks and the receiving
// identity from l.
func New(s store.Store, l clock.Ledger, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		ledger:   l,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		locks:    newKeyedMutex(),
		fee:      DefaultFee,
		duration: DefaultDuration,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
		s.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(s *Service) {
		_ = s.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithHookTimeout bounds how long any single plugin hook may run.
func WithHookTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.plugins.WithTimeout(d)
	}
}

// WithFee sets the exact payment amount required to join.
func WithFee(fee types.Amount) Option {
	return func(s *Service) {
		s.fee = fee
	}
}

// WithDuration sets how many ticks a join grants. Zero keeps the current
// duration: a zero-length join could never be active and, at tick 0, would
// store the same expiration as a member who never joined.
func WithDuration(ticks uint64) Option {
	return func(s *Service) {
		if ticks > 0 {
			s.duration = ticks
		}
	}
}

// Fee returns the required join payment.
func (s *Service) Fee() types.Amount { return s.fee }

// Duration returns the number of ticks a join grants.
func (s *Service) Duration() uint64 { return s.duration }

// ServiceIdentity returns the identity join payments must be addressed to.
func (s *Service) ServiceIdentity() types.Identity { return s.ledger.ServiceIdentity() }

// Plugins returns the plugin registry.
func (s *Service) Plugins() *plugin.Registry { return s.plugins }

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Initialize prepares the store and plugins. It must run once before any
// join or query traffic and never mutates records. A second call returns
// ErrAlreadyInitialized and leaves the store untouched.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	if err := s.store.Migrate(ctx); err != nil {
		s.initialized.Store(false)
		return fmt.Errorf("membership: migrate store: %w", err)
	}

	s.plugins.EmitInit(ctx, s)

	s.logger.Info("membership initialized",
		"fee", s.fee.String(),
		"duration", s.duration,
		"receiver", s.ledger.ServiceIdentity().String(),
		"plugins", s.plugins.Count(),
	)

	return nil
}

// Close runs shutdown hooks and closes the store.
func (s *Service) Close() error {
	s.plugins.EmitShutdown(context.Background())
	return s.store.Close()
}

// ──────────────────────────────────────────────────
// Join
// ──────────────────────────────────────────────────

// Join grants or refreshes membership for caller in exchange for fact.
//
// The checks run in order and the first failure aborts with a
// *PolicyViolation and no write:
//
//  1. fact.Sender == caller
//  2. fact.Receiver == the ledger's service identity
//  3. fact.Amount == the fee
//  4. claimedMember == caller
//
// Empty caller or member identities fail with a *ValidationError before
// any of these checks, so an anonymous caller gets ErrInvalidInput rather
// than a sender mismatch.
//
// On success the member's expiration becomes current tick + duration,
// replacing any previous value. Durations never accrue.
func (s *Service) Join(ctx context.Context, caller types.Identity, fact payment.Fact, claimedMember types.Identity) (bool, error) {
	if err := validateIdentity("caller", caller); err != nil {
		return false, err
	}
	if err := validateIdentity("member", claimedMember); err != nil {
		return false, err
	}

	if err := s.checkPolicy(caller, fact, claimedMember); err != nil {
		s.logger.WarnContext(ctx, "join rejected",
			"caller", caller.String(),
			"payment", fact.Ref(),
			"error", err,
		)
		s.plugins.EmitJoinRejected(ctx, caller, fact, err)
		return false, err
	}

	rec, renewed, err := s.refresh(ctx, claimedMember)
	if err != nil {
		return false, err
	}

	s.logger.DebugContext(ctx, "member joined",
		"member", rec.Member.String(),
		"expiration_tick", rec.ExpirationTick.Uint64(),
		"renewed", renewed,
		"payment", fact.Ref(),
	)

	s.plugins.EmitMemberJoined(ctx, rec, fact, renewed)
	return true, nil
}

// checkPolicy runs the join preconditions in order.
func (s *Service) checkPolicy(caller types.Identity, fact payment.Fact, claimedMember types.Identity) error {
	if fact.Sender != caller {
		return &PolicyViolation{Reason: ReasonSenderMismatch, Expected: caller.String(), Got: fact.Sender.String()}
	}

	receiver := s.ledger.ServiceIdentity()
	if fact.Receiver != receiver {
		return &PolicyViolation{Reason: ReasonReceiverMismatch, Expected: receiver.String(), Got: fact.Receiver.String()}
	}

	if fact.Amount != s.fee {
		return &PolicyViolation{Reason: ReasonAmountMismatch, Expected: s.fee.String(), Got: fact.Amount.String()}
	}

	if claimedMember != caller {
		return &PolicyViolation{Reason: ReasonMemberMismatch, Expected: caller.String(), Got: claimedMember.String()}
	}

	return nil
}

// refresh reads the tick, computes the new expiration and stores it while
// holding the member's lock, so concurrent joins for one member cannot
// interleave between the tick read and the write.
func (s *Service) refresh(ctx context.Context, member types.Identity) (*record.Record, bool, error) {
	unlock := s.locks.Lock(member.String())
	defer unlock()

	prev, err := s.store.GetRecord(ctx, member)
	if err != nil && !IsNotFound(err) {
		return nil, false, fmt.Errorf("membership: load record: %w", err)
	}

	tick, err := s.ledger.CurrentTick(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("membership: read current tick: %w", err)
	}

	expiration, ok := tick.Add(s.duration)
	if !ok {
		return nil, false, fmt.Errorf("%w: tick %d + duration %d", ErrTickOverflow, tick, s.duration)
	}

	rec := &record.Record{
		Entity:         types.NewEntity(),
		Member:         member,
		ExpirationTick: expiration,
	}
	if prev != nil {
		rec.Entity = prev.Entity
		rec.Touch()
	}

	if err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("membership: store record: %w", err)
	}

	return rec, prev != nil, nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// IsMember reports whether member's membership is active at the current
// tick. A member that never joined is not a member. It never writes.
func (s *Service) IsMember(ctx context.Context, member types.Identity) (bool, error) {
	state, err := s.Status(ctx, member)
	if err != nil {
		return false, err
	}
	return state == record.StateActive, nil
}

// Status returns member's lifecycle state at the current tick.
func (s *Service) Status(ctx context.Context, member types.Identity) (record.State, error) {
	rec, err := s.lookup(ctx, member)
	if err != nil {
		return "", err
	}

	state := record.StateNeverJoined
	if rec != nil {
		tick, err := s.ledger.CurrentTick(ctx)
		if err != nil {
			return "", fmt.Errorf("membership: read current tick: %w", err)
		}
		state = rec.StateAt(tick)
	}

	s.plugins.EmitMembershipChecked(ctx, member, state)
	return state, nil
}

// GetExpiration returns member's expiration tick, or 0 when the member
// never joined. Use Expiration to tell those cases apart.
func (s *Service) GetExpiration(ctx context.Context, member types.Identity) (types.Tick, error) {
	tick, _, err := s.Expiration(ctx, member)
	return tick, err
}

// Expiration returns member's expiration tick and whether a record exists.
func (s *Service) Expiration(ctx context.Context, member types.Identity) (types.Tick, bool, error) {
	rec, err := s.lookup(ctx, member)
	if err != nil || rec == nil {
		return 0, false, err
	}
	return rec.ExpirationTick, true, nil
}

// lookup fetches member's record, returning nil without error if absent.
func (s *Service) lookup(ctx context.Context, member types.Identity) (*record.Record, error) {
	if err := validateIdentity("member", member); err != nil {
		return nil, err
	}

	rec, err := s.store.GetRecord(ctx, member)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("membership: load record: %w", err)
	}
	return rec, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func validateIdentity(field string, v types.Identity) error {
	if v.IsZero() {
		return ValidationError{Field: field, Message: "identity must not be empty"}
	}
	return nil
}
