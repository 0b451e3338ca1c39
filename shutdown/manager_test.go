package shutdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_ShutdownRunsCleanup(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))
	ran := false

	mgr.Register("cleanup", 10, func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err := mgr.Shutdown(); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
	if !ran {
		t.Error("cleanup function never ran")
	}
	if !mgr.IsShuttingDown() {
		t.Error("IsShuttingDown() = false after Shutdown")
	}
}

func TestManager_ShutdownReportsErrors(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))

	mgr.Register("bad", 10, func(ctx context.Context) error {
		return errors.New("cleanup failed")
	})

	if err := mgr.Shutdown(); err == nil {
		t.Error("Shutdown() = nil, want error")
	}
}

func TestManager_ShutdownIdempotent(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))
	calls := 0

	mgr.Register("count", 10, func(ctx context.Context) error {
		calls++
		return nil
	})

	mgr.Shutdown()
	if err := mgr.Shutdown(); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("cleanup ran %d times, want 1", calls)
	}
}

func TestManager_ShutdownCancelsContext(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))

	mgr.Shutdown()

	select {
	case <-mgr.Context().Done():
	default:
		t.Error("Context() not cancelled after Shutdown")
	}
}

func TestManager_WrapOperation(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))

	err := mgr.WrapOperation(func() error {
		if got := mgr.ActiveOperations(); got != 1 {
			t.Errorf("ActiveOperations() = %d inside operation, want 1", got)
		}
		return nil
	})
	if err != nil {
		t.Errorf("WrapOperation() = %v, want nil", err)
	}
	if got := mgr.ActiveOperations(); got != 0 {
		t.Errorf("ActiveOperations() = %d after operation, want 0", got)
	}
}

func TestManager_WrapOperationAfterShutdown(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(time.Second))
	mgr.Shutdown()

	err := mgr.WrapOperation(func() error { return nil })
	if !errors.Is(err, ErrTrackerClosed) {
		t.Errorf("WrapOperation() = %v, want ErrTrackerClosed", err)
	}
}

func TestManager_ShutdownWaitsForOperations(t *testing.T) {
	mgr := NewManager(nil, WithTimeout(2*time.Second))
	finished := make(chan struct{})

	go mgr.WrapOperation(func() error {
		time.Sleep(50 * time.Millisecond)
		close(finished)
		return nil
	})

	// Give the operation a moment to start.
	time.Sleep(10 * time.Millisecond)
	mgr.Shutdown()

	select {
	case <-finished:
	default:
		t.Error("Shutdown returned before the operation finished")
	}
}

func TestCleanupTempArtifacts(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"tmp_half.avi", "partial_download.png", "img-keep.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	removed := CleanupTempArtifacts(nil, dir, filepath.Join(dir, "missing"))
	if removed != 2 {
		t.Errorf("CleanupTempArtifacts() = %d, want 2", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "img-keep.png")); err != nil {
		t.Error("finished artifact was removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "tmp_half.avi")); !os.IsNotExist(err) {
		t.Error("temp artifact survived cleanup")
	}
}
