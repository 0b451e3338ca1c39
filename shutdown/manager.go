package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is how long Shutdown waits for in-flight generations
// before running cleanup functions anyway. Video generation on CPU can take
// minutes, so the default is generous.
const DefaultTimeout = 60 * time.Second

// Manager coordinates graceful shutdown: it tracks in-flight operations,
// listens for OS signals, and runs registered cleanup functions in priority
// order once the process is asked to stop.
//
// Usage:
//
//	mgr := shutdown.NewManager(logger, shutdown.WithTimeout(30*time.Second))
//	mgr.Register("pipelines", 20, func(ctx context.Context) error {
//	    return pipelines.Close()
//	})
//	mgr.Start()
//
//	<-mgr.Context().Done() // first SIGINT/SIGTERM lands here
//	if err := mgr.Shutdown(); err != nil {
//	    logger.Error("shutdown incomplete", zap.Error(err))
//	}
type Manager struct {
	tracker  *OperationTracker
	registry *Registry
	signals  *SignalCounter
	logger   *zap.Logger
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	shutting bool
	signal   os.Signal
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides the wait budget for in-flight operations.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewManager creates a Manager. A nil logger is replaced with a no-op one.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		tracker:  NewOperationTracker(),
		registry: NewRegistry(),
		logger:   logger,
		timeout:  DefaultTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("second signal received, forcing exit")
		os.Exit(1)
	})

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a named cleanup function. Lower priorities run first; see
// Registry.Register for the conventional ranges.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
}

// Start begins listening for SIGINT and SIGTERM. The first signal cancels
// Context; the second forces the process to exit.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for sig := range sigCh {
			count := m.signals.Increment()
			m.logger.Info("shutdown signal received",
				zap.String("signal", sig.String()),
				zap.Int("count", count))
			if count == 1 {
				m.mu.Lock()
				m.signal = sig
				m.mu.Unlock()
				m.cancel()
			}
		}
	}()
}

// Shutdown closes the tracker, waits up to the configured timeout for
// in-flight operations, then runs cleanup functions with whatever budget
// remains. It is safe to call once; later calls return nil immediately.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutting {
		m.mu.Unlock()
		return nil
	}
	m.shutting = true
	m.mu.Unlock()

	m.cancel()
	m.tracker.Close()

	start := time.Now()
	m.logger.Info("waiting for in-flight operations",
		zap.Int64("active", m.tracker.ActiveCount()),
		zap.Duration("timeout", m.timeout))

	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("operations still running at timeout",
			zap.Int64("active", m.tracker.ActiveCount()))
	}

	remaining := m.timeout - time.Since(start)
	if remaining < time.Second {
		remaining = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	errs := m.registry.Shutdown(ctx)
	for _, err := range errs {
		m.logger.Error("cleanup failed", zap.Error(err))
	}
	m.logger.Info("shutdown complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("errors", len(errs)))

	if len(errs) > 0 {
		return fmt.Errorf("shutdown had %d errors", len(errs))
	}
	return nil
}

// WrapOperation runs fn tracked as an in-flight operation. It returns
// ErrTrackerClosed once shutdown has begun.
func (m *Manager) WrapOperation(fn func() error) error {
	if !m.tracker.Start() {
		return ErrTrackerClosed
	}
	defer m.tracker.Done()
	return fn()
}

// Context returns a context cancelled on the first shutdown signal or on
// an explicit Shutdown call.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Wait blocks until a shutdown has been requested.
func (m *Manager) Wait() {
	<-m.ctx.Done()
}

// ActiveOperations returns the number of tracked operations in flight.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.ActiveCount()
}

// Signal returns the OS signal that triggered shutdown, or nil when none
// has arrived. Callers use it to pick the conventional 128+n exit code.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signal
}

// IsShuttingDown reports whether Shutdown has started.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutting
}
