// Package membership provides time-bounded, fee-based membership for Go
// applications.
//
// Membership is designed as a library, not a service. An identity pays a
// fixed fee to the service's receiving identity and becomes a member until
// a fixed number of ticks after the payment. Ticks come from an external
// clock or ledger (rounds of a blockchain, for example); the library never
// advances them itself.
//
//   - Payment facts are validated, never settled: the host ledger moves funds
//   - One record per identity: the expiration tick, overwritten on each join
//   - Pluggable stores (memory, Redis, PostgreSQL, SQLite, MongoDB)
//   - Lifecycle hooks for metrics and audit trails
//   - HTTP transport via the api package, Forge integration via extension
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/membership"
//	    "github.com/xraph/membership/clock"
//	    "github.com/xraph/membership/store/memory"
//	)
//
//	ledger := clock.NewManual("app-address", 500)
//	svc := membership.New(memory.New(), ledger)
//	if err := svc.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	ok, err := svc.Join(ctx, "alice", membership.PaymentFact{
//	    Sender:   "alice",
//	    Receiver: "app-address",
//	    Amount:   membership.DefaultFee,
//	}, "alice")
//
// # Rules
//
// Join checks, in order, that the payment was sent by the caller, addressed
// to the service, of exactly the fee, and that the claimed member is the
// caller. The first failing check returns a *PolicyViolation and nothing is
// written.
//
// A successful join sets the expiration to current tick + duration. Joining
// again before expiry does not accrue: the new expiration is measured from
// the current tick, not from the previous expiration.
//
// A member is active while the current tick is strictly less than the
// expiration tick. GetExpiration returns 0 for identities that never
// joined; Expiration reports presence explicitly.
package membership
