package extension

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/store/memory"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{ServiceIdentity: "svc", Duration: 10})

	if cfg.BasePath != "/membership" || cfg.Fee != 1_000_000 || cfg.TickPeriod != 4*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Duration != 10 || cfg.ServiceIdentity != "svc" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestMergeConfigurations(t *testing.T) {
	yaml := Config{ServiceIdentity: "from-yaml", Fee: 5}
	prog := Config{
		ServiceIdentity: "from-code",
		Fee:             7,
		Duration:        42,
		DisableRoutes:   true,
		BasePath:        "/m",
	}

	cfg := mergeConfigurations(yaml, prog)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"yaml identity wins", cfg.ServiceIdentity, "from-yaml"},
		{"yaml fee wins", cfg.Fee, uint64(5)},
		{"programmatic fills duration", cfg.Duration, uint64(42)},
		{"programmatic bool flag", cfg.DisableRoutes, true},
		{"programmatic base path", cfg.BasePath, "/m"},
		{"default tick period", cfg.TickPeriod, 4 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuildRequiresIdentityWithoutLedger(t *testing.T) {
	e := New()
	e.config = mergeWithDefaults(Config{})
	if err := e.build(); err == nil {
		t.Fatal("expected error without service identity")
	}
}

func TestBuildRequiresGenesisWithSuppliedStore(t *testing.T) {
	e := New(
		WithStore(memory.New()),
		WithServiceIdentity("svc"),
		WithDisableMetrics(),
	)
	e.config = mergeWithDefaults(e.config)
	if err := e.build(); err == nil {
		t.Fatal("expected error for a supplied store without genesis")
	}

	e = New(
		WithStore(memory.New()),
		WithServiceIdentity("svc"),
		WithDisableMetrics(),
		WithGenesis(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0),
	)
	e.config = mergeWithDefaults(e.config)
	if err := e.build(); err != nil {
		t.Fatalf("build with genesis: %v", err)
	}
}

func TestBuildFromConfig(t *testing.T) {
	genesis := time.Now().Add(-10 * time.Second)
	e := New(
		WithMetricsRegisterer(prometheus.NewRegistry()),
		WithServiceIdentity("svc"),
		WithTickPeriod(time.Second),
		WithGenesis(genesis, 100),
		WithFee(3),
		WithDuration(50),
	)
	e.config = mergeWithDefaults(e.config)

	if err := e.build(); err != nil {
		t.Fatal(err)
	}

	svc := e.Service()
	if svc.Fee() != 3 || svc.Duration() != 50 || svc.ServiceIdentity() != "svc" {
		t.Errorf("service policy = %d/%d/%q", svc.Fee(), svc.Duration(), svc.ServiceIdentity())
	}
	if svc.Plugins().Get("observability-metrics") == nil {
		t.Error("metrics plugin not registered")
	}

	tick, err := e.ledger.CurrentTick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tick < 109 || tick > 111 {
		t.Errorf("tick = %d, want about 110", tick)
	}
}

func TestRoutes(t *testing.T) {
	e := New(
		WithStore(memory.New()),
		WithLedger(clock.NewManual("svc", 0)),
		WithDisableMetrics(),
	)
	e.config = mergeWithDefaults(e.config)
	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	if err := e.service.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	h := e.Handler()

	req := httptest.NewRequest(http.MethodPost, "/membership/join",
		strings.NewReader(`{"payment":{"sender":"a","receiver":"svc","amount":1000000},"member":"a"}`))
	req.Header.Set("X-Caller-Identity", "a")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d, body = %s", w.Code, w.Body)
	}

	if err := e.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestRoutesDisabled(t *testing.T) {
	e := New(
		WithLedger(clock.NewManual("svc", 0)),
		WithDisableRoutes(),
		WithDisableMetrics(),
	)
	e.config = mergeWithDefaults(e.config)
	if err := e.build(); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/membership/members/a", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
