package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// defaultHookTimeout bounds how long a single hook may run.
const defaultHookTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting does not re-inspect plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onMemberJoined      []OnMemberJoined
	onJoinRejected      []OnJoinRejected
	onMembershipChecked []OnMembershipChecked
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: defaultHookTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMemberJoined); ok {
		r.onMemberJoined = append(r.onMemberJoined, v)
	}
	if v, ok := p.(OnJoinRejected); ok {
		r.onJoinRejected = append(r.onJoinRejected, v)
	}
	if v, ok := p.(OnMembershipChecked); ok {
		r.onMembershipChecked = append(r.onMembershipChecked, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

// implementedInterfaces returns the hook interfaces implemented by p.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	check := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	check(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	check(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	check(reflect.TypeOf((*OnMemberJoined)(nil)).Elem(), "OnMemberJoined")
	check(reflect.TypeOf((*OnJoinRejected)(nil)).Elem(), "OnJoinRejected")
	check(reflect.TypeOf((*OnMembershipChecked)(nil)).Elem(), "OnMembershipChecked")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, svc interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, svc)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberJoined emits a member joined event.
func (r *Registry) EmitMemberJoined(ctx context.Context, rec *record.Record, fact payment.Fact, renewed bool) {
	r.mu.RLock()
	plugins := r.onMemberJoined
	r.mu.RUnlock()

	for _, p := range plugins {
		snapshot := rec.Clone()
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberJoined(ctx, snapshot, fact, renewed)
		}); err != nil {
			r.logger.Warn("plugin OnMemberJoined failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitJoinRejected emits a join rejected event.
func (r *Registry) EmitJoinRejected(ctx context.Context, caller types.Identity, fact payment.Fact, cause error) {
	r.mu.RLock()
	plugins := r.onJoinRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJoinRejected(ctx, caller, fact, cause)
		}); err != nil {
			r.logger.Warn("plugin OnJoinRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMembershipChecked emits a membership checked event.
func (r *Registry) EmitMembershipChecked(ctx context.Context, member types.Identity, state record.State) {
	r.mu.RLock()
	plugins := r.onMembershipChecked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMembershipChecked(ctx, member, state)
		}); err != nil {
			r.logger.Warn("plugin OnMembershipChecked failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the membership path.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
