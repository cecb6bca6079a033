package operations

import (
	"sync"

	"dropwatch/pkg/contracts/domain"
)

// collector accumulates per-account outcomes from concurrent workers.
// Slots are indexed by declaration position so completion order never
// leaks into the result.
type collector struct {
	mu    sync.Mutex
	slots [][]domain.Outcome
}

func newCollector(accounts int) *collector {
	return &collector{slots: make([][]domain.Outcome, accounts)}
}

func (c *collector) set(i int, outcomes []domain.Outcome) {
	c.mu.Lock()
	c.slots[i] = outcomes
	c.mu.Unlock()
}

// flatten returns all outcomes in account-then-folder order
func (c *collector) flatten() []domain.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, slot := range c.slots {
		total += len(slot)
	}
	out := make([]domain.Outcome, 0, total)
	for _, slot := range c.slots {
		out = append(out, slot...)
	}
	return out
}
