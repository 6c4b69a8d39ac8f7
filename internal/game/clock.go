package game

import (
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// Clock supplies the logical height and wall time observed by engine
// operations. Heights only move forward.
type Clock interface {
	Height() int64
	Now() time.Time
}

// ChainClock is a chain-style clock: the logical height advances by one
// tick per mutating operation, while wall time comes from an injectable
// quartz clock so tests can control it.
type ChainClock struct {
	clock  quartz.Clock
	height atomic.Int64
}

// NewChainClock creates a clock at height zero. A nil quartz clock
// defaults to the real one.
func NewChainClock(clk quartz.Clock) *ChainClock {
	if clk == nil {
		clk = quartz.NewReal()
	}
	return &ChainClock{clock: clk}
}

// Tick advances the height by one and returns the new value.
func (c *ChainClock) Tick() int64 {
	return c.height.Add(1)
}

// SetHeight restores the height from a snapshot.
func (c *ChainClock) SetHeight(h int64) {
	c.height.Store(h)
}

// Height returns the current logical height.
func (c *ChainClock) Height() int64 {
	return c.height.Load()
}

// Now returns the current wall time.
func (c *ChainClock) Now() time.Time {
	return c.clock.Now()
}
