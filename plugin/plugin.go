// Package plugin provides an extensible plugin system for the membership
// service. Plugins observe lifecycle events; they never change membership
// state and their failures never fail the operation that triggered them.
package plugin

import (
	"context"

	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the service is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, svc interface{}) error
}

// OnShutdown is called when the service is closing.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Membership hooks
// ──────────────────────────────────────────────────

// OnMemberJoined is called after a successful join has been stored.
// renewed is true when the member already had a record.
type OnMemberJoined interface {
	Plugin
	OnMemberJoined(ctx context.Context, rec *record.Record, fact payment.Fact, renewed bool) error
}

// OnJoinRejected is called when a join fails a policy precondition.
type OnJoinRejected interface {
	Plugin
	OnJoinRejected(ctx context.Context, caller types.Identity, fact payment.Fact, err error) error
}

// OnMembershipChecked is called after a membership query resolves.
type OnMembershipChecked interface {
	Plugin
	OnMembershipChecked(ctx context.Context, member types.Identity, state record.State) error
}
