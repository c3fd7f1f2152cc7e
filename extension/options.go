package extension

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/membership"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/plugin"
	"github.com/xraph/membership/store"
)

// Option configures the membership Forge extension.
type Option func(*Extension)

// WithStore sets the store for the membership service.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedger sets the clock/ledger. When unset, a clock.Rounds is built
// from the tick configuration.
func WithLedger(l clock.Ledger) Option {
	return func(e *Extension) {
		e.ledger = l
	}
}

// WithServiceOption passes a membership.Option through to the service.
func WithServiceOption(opt membership.Option) Option {
	return func(e *Extension) {
		e.serviceOpts = append(e.serviceOpts, opt)
	}
}

// WithPlugin registers a membership plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.serviceOpts = append(e.serviceOpts, membership.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableInitialize skips service initialization on start.
func WithDisableInitialize() Option {
	return func(e *Extension) { e.config.DisableInitialize = true }
}

// WithDisableMetrics prevents registering the metrics plugin.
func WithDisableMetrics() Option {
	return func(e *Extension) { e.config.DisableMetrics = true }
}

// WithBasePath sets the URL prefix for membership routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithServiceIdentity sets the identity join payments must be addressed to.
func WithServiceIdentity(identity string) Option {
	return func(e *Extension) { e.config.ServiceIdentity = identity }
}

// WithFee sets the join fee in base units.
func WithFee(fee uint64) Option {
	return func(e *Extension) { e.config.Fee = fee }
}

// WithDuration sets how many ticks a join grants.
func WithDuration(ticks uint64) Option {
	return func(e *Extension) { e.config.Duration = ticks }
}

// WithTickPeriod sets the wall-clock length of one tick.
func WithTickPeriod(d time.Duration) Option {
	return func(e *Extension) { e.config.TickPeriod = d }
}

// WithGenesis anchors tick number t at wall-clock time at.
func WithGenesis(at time.Time, t uint64) Option {
	return func(e *Extension) {
		e.config.Genesis = at
		e.config.GenesisTick = t
	}
}

// WithMetricsRegisterer sets where the metrics plugin registers its
// collectors.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(e *Extension) { e.registerer = reg }
}
