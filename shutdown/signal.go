package shutdown

import (
	"sync"
)

// SignalCounter counts shutdown signals and triggers a force callback when
// the threshold is reached. The first SIGINT starts graceful shutdown; a
// second one gives the operator an immediate exit.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a counter that calls onForce when forceAfter
// signals have been received. A forceAfter of 0 or less disables forcing.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	return &SignalCounter{forceAfter: forceAfter, onForce: onForce}
}

// Increment records a received signal and returns the running count. When
// the count reaches the threshold, onForce fires exactly once.
func (c *SignalCounter) Increment() int {
	c.mu.Lock()
	c.count++
	count := c.count
	fire := c.forceAfter > 0 && count == c.forceAfter && c.onForce != nil
	c.mu.Unlock()

	if fire {
		c.onForce()
	}
	return count
}

// Count returns the number of signals received so far.
func (c *SignalCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
