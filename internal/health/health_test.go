package health

import (
	"context"
	"testing"
	"time"
)

func TestRegistry_AllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(ctx context.Context) Status {
		return Status{Name: "backend", Healthy: true}
	})
	r.Register("hub", func(ctx context.Context) Status {
		return Status{Name: "hub", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("Expected aggregate healthy")
	}
	if len(statuses) != 2 {
		t.Errorf("Expected 2 statuses, got %d", len(statuses))
	}
}

func TestRegistry_OneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(ctx context.Context) Status {
		return Status{Name: "backend", Healthy: false, Detail: "connection refused"}
	})
	r.Register("hub", func(ctx context.Context) Status {
		return Status{Name: "hub", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Error("Expected aggregate unhealthy")
	}

	found := false
	for _, s := range statuses {
		if s.Name == "backend" && !s.Healthy && s.Detail == "connection refused" {
			found = true
		}
	}
	if !found {
		t.Error("Expected backend status with detail")
	}
}

func TestRegistry_ProbesGetBoundedContext(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(ctx context.Context) Status {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Error("Expected a probe deadline")
		}
		if remaining := time.Until(deadline); remaining > probeTimeout {
			t.Errorf("Probe deadline too far out: %s", remaining)
		}
		return Status{Name: "backend", Healthy: true}
	})

	r.CheckAll(context.Background())
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Error("Empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Errorf("Expected no statuses, got %d", len(statuses))
	}
}
