//go:build integration

package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/membership/store"
	"github.com/xraph/membership/store/storetest"
)

func TestConformance(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate mongo container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo connection string: %v", err)
	}

	var n atomic.Int64
	storetest.Run(t, func(t *testing.T) store.Store {
		// Each subtest gets its own database on the shared server.
		s, err := Open(ctx, uri, mongodriver.WithDatabase(fmt.Sprintf("membership_test_%d", n.Add(1))))
		if err != nil {
			t.Fatalf("open mongo: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return s
	})
}
