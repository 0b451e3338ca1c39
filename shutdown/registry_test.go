package shutdown

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_ShutdownRunsInPriorityOrder(t *testing.T) {
	registry := NewRegistry()
	var order []string

	registry.Register("database", 30, func(ctx context.Context) error {
		order = append(order, "database")
		return nil
	})
	registry.Register("logs", 5, func(ctx context.Context) error {
		order = append(order, "logs")
		return nil
	})
	registry.Register("pipelines", 20, func(ctx context.Context) error {
		order = append(order, "pipelines")
		return nil
	})

	errs := registry.Shutdown(context.Background())
	if len(errs) != 0 {
		t.Errorf("Shutdown() returned %d errors, want 0", len(errs))
	}

	want := []string{"logs", "pipelines", "database"}
	if len(order) != len(want) {
		t.Fatalf("ran %d functions, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRegistry_ShutdownCollectsErrors(t *testing.T) {
	registry := NewRegistry()
	ran := 0

	registry.Register("first", 1, func(ctx context.Context) error {
		ran++
		return errors.New("first failed")
	})
	registry.Register("second", 2, func(ctx context.Context) error {
		ran++
		return nil
	})
	registry.Register("third", 3, func(ctx context.Context) error {
		ran++
		return errors.New("third failed")
	})

	errs := registry.Shutdown(context.Background())
	if len(errs) != 2 {
		t.Errorf("Shutdown() returned %d errors, want 2", len(errs))
	}
	if ran != 3 {
		t.Errorf("an early failure stopped execution: ran %d, want 3", ran)
	}
}

func TestRegistry_ShutdownIdempotent(t *testing.T) {
	registry := NewRegistry()
	calls := 0

	registry.Register("once", 1, func(ctx context.Context) error {
		calls++
		return nil
	})

	registry.Shutdown(context.Background())
	registry.Shutdown(context.Background())

	if calls != 1 {
		t.Errorf("function ran %d times, want 1", calls)
	}
	if !registry.IsClosed() {
		t.Error("IsClosed() = false after Shutdown")
	}
}

func TestRegistry_RegisterAfterShutdownIgnored(t *testing.T) {
	registry := NewRegistry()
	registry.Shutdown(context.Background())

	registry.Register("late", 1, func(ctx context.Context) error { return nil })
	if registry.Count() != 0 {
		t.Errorf("Count() = %d after late registration, want 0", registry.Count())
	}
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	registry.Register("b", 2, func(ctx context.Context) error { return nil })
	registry.Register("a", 1, func(ctx context.Context) error { return nil })

	names := registry.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
}
