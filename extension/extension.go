// Package extension provides the Forge extension adapter for the membership
// service.
//
// It implements the forge.Extension interface to integrate membership
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.membership" or
// "membership" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/membership"
	"github.com/xraph/membership/api"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/observability"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/store/memory"
	"github.com/xraph/membership/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "membership"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Time-bounded paid membership"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the membership service as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	service     *membership.Service
	store       store.Store
	ledger      clock.Ledger
	serviceOpts []membership.Option

	// registerer receives the metrics plugin collectors; nil means the
	// Prometheus default registerer.
	registerer prometheus.Registerer
}

// New creates a new membership Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Service returns the underlying membership service.
// This is nil until Register is called.
func (e *Extension) Service() *membership.Service { return e.service }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// builds the membership service, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (clock.Ledger, error) {
		return e.ledger, nil
	}); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*membership.Service, error) {
		return e.service, nil
	})
}

// build constructs the store, clock and service from the resolved config.
func (e *Extension) build() error {
	// A store supplied by the host may outlive this process; the memory
	// default does not.
	durable := e.store != nil
	if e.store == nil {
		e.store = memory.New()
	}

	if e.ledger == nil {
		if e.config.ServiceIdentity == "" {
			return errors.New("membership: service_identity is required when no ledger is supplied")
		}
		if durable && e.config.Genesis.IsZero() {
			return errors.New("membership: genesis is required with a supplied store when no ledger is supplied")
		}
		genesis := e.config.Genesis
		if genesis.IsZero() {
			genesis = time.Now()
		}
		rounds, err := clock.NewRounds(
			types.Identity(e.config.ServiceIdentity),
			genesis,
			e.config.TickPeriod,
			clock.WithGenesisTick(types.Tick(e.config.GenesisTick)),
		)
		if err != nil {
			return fmt.Errorf("membership: build clock: %w", err)
		}
		e.ledger = rounds
	}

	e.service = membership.New(e.store, e.ledger, e.buildServiceOpts()...)
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.service == nil {
		return errors.New("membership: extension not initialized")
	}

	if !e.config.DisableInitialize {
		if err := e.service.Initialize(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.service != nil {
		if err := e.service.Close(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("membership: store not initialized")
	}
	return e.store.Ping(ctx)
}

// RegisterRoutes mounts the membership HTTP API under BasePath. It does
// nothing when routes are disabled.
func (e *Extension) RegisterRoutes(r chi.Router) {
	if e.config.DisableRoutes || e.service == nil {
		return
	}
	r.Route(e.config.BasePath, func(r chi.Router) {
		api.New(e.service, nil).Register(r)
	})
}

// Handler returns a standalone router serving the membership HTTP API.
func (e *Extension) Handler() http.Handler {
	r := chi.NewRouter()
	e.RegisterRoutes(r)
	return r
}

// buildServiceOpts constructs membership.Option values from the resolved config.
func (e *Extension) buildServiceOpts() []membership.Option {
	opts := make([]membership.Option, 0, len(e.serviceOpts)+3)

	opts = append(opts,
		membership.WithFee(types.Amount(e.config.Fee)),
		membership.WithDuration(e.config.Duration),
	)

	if !e.config.DisableMetrics {
		factory := observability.NewPrometheusFactory(e.registerer)
		opts = append(opts, membership.WithPlugin(observability.NewMetricsExtension(factory)))
	}

	// Append any pass-through service options.
	opts = append(opts, e.serviceOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("membership: configuration is required but not found in config files; " +
				"ensure 'extensions.membership' or 'membership' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("membership: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_initialize", e.config.DisableInitialize),
		forge.F("disable_metrics", e.config.DisableMetrics),
		forge.F("base_path", e.config.BasePath),
		forge.F("service_identity", e.config.ServiceIdentity),
		forge.F("fee", e.config.Fee),
		forge.F("duration", e.config.Duration),
		forge.F("tick_period", e.config.TickPeriod),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.membership", "membership"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("membership: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("membership: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.Fee == 0 {
		cfg.Fee = defaults.Fee
	}
	if cfg.Duration == 0 {
		cfg.Duration = defaults.Duration
	}
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = defaults.TickPeriod
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableInitialize {
		yamlConfig.DisableInitialize = true
	}
	if programmaticConfig.DisableMetrics {
		yamlConfig.DisableMetrics = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.ServiceIdentity == "" {
		yamlConfig.ServiceIdentity = programmaticConfig.ServiceIdentity
	}

	// Numeric and time fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.Fee == 0 {
		yamlConfig.Fee = programmaticConfig.Fee
	}
	if yamlConfig.Duration == 0 {
		yamlConfig.Duration = programmaticConfig.Duration
	}
	if yamlConfig.TickPeriod == 0 {
		yamlConfig.TickPeriod = programmaticConfig.TickPeriod
	}
	if yamlConfig.Genesis.IsZero() {
		yamlConfig.Genesis = programmaticConfig.Genesis
	}
	if yamlConfig.GenesisTick == 0 {
		yamlConfig.GenesisTick = programmaticConfig.GenesisTick
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
