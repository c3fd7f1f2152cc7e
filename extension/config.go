package extension

import "time"

// Config holds the membership extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.membership" or "membership" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableInitialize skips store migration and plugin init on start.
	DisableInitialize bool `json:"disable_initialize" mapstructure:"disable_initialize" yaml:"disable_initialize"`

	// DisableMetrics prevents registering the Prometheus metrics plugin.
	DisableMetrics bool `json:"disable_metrics" mapstructure:"disable_metrics" yaml:"disable_metrics"`

	// BasePath is the URL prefix for membership routes (default: "/membership").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// ServiceIdentity is the identity join payments must be addressed to.
	ServiceIdentity string `json:"service_identity" mapstructure:"service_identity" yaml:"service_identity"`

	// Fee is the exact amount, in base units, a join payment must carry
	// (default: 1000000).
	Fee uint64 `json:"fee" mapstructure:"fee" yaml:"fee"`

	// Duration is the number of ticks a join grants (default: 1000).
	Duration uint64 `json:"duration" mapstructure:"duration" yaml:"duration"`

	// TickPeriod is the wall-clock length of one tick when no clock is
	// supplied programmatically (default: 4s).
	TickPeriod time.Duration `json:"tick_period" mapstructure:"tick_period" yaml:"tick_period"`

	// Genesis is the wall-clock time of GenesisTick. Zero means the time
	// the extension registers, which is only allowed with the default
	// memory store.
	Genesis time.Time `json:"genesis" mapstructure:"genesis" yaml:"genesis"`

	// GenesisTick is the tick reported at Genesis.
	GenesisTick uint64 `json:"genesis_tick" mapstructure:"genesis_tick" yaml:"genesis_tick"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/membership",
		Fee:        1_000_000,
		Duration:   1000,
		TickPeriod: 4 * time.Second,
	}
}
