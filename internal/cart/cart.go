package cart

import (
	"slices"
	"sync"
)

// State is a consistent view of a cart: lines and the totals derived from them.
type State struct {
	ID     string `json:"id,omitempty"`
	Lines  []Line `json:"items"`
	Totals Totals `json:"totals"`
}

func newState(id string, lines []Line) State {
	if lines == nil {
		lines = []Line{}
	}
	return State{ID: id, Lines: lines, Totals: ComputeTotals(lines)}
}

// Cart is the in-memory cart of one session.
type Cart struct {
	mu    sync.RWMutex
	lines []Line
}

func New(lines ...Line) *Cart {
	return &Cart{lines: Restore(lines)}
}

func (c *Cart) apply(fn func([]Line) []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = fn(c.lines)
}

func (c *Cart) AddItem(it Item) {
	c.apply(func(ls []Line) []Line { return AddItem(ls, it) })
}

func (c *Cart) RemoveItem(id string) {
	c.apply(func(ls []Line) []Line { return RemoveItem(ls, id) })
}

func (c *Cart) UpdateQuantity(id string, quantity int) {
	c.apply(func(ls []Line) []Line { return UpdateQuantity(ls, id, quantity) })
}

func (c *Cart) Clear() {
	c.apply(ClearCart)
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.lines)
}

func (c *Cart) Totals() Totals {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ComputeTotals(c.lines)
}

// Snapshot reads lines and totals under a single lock.
func (c *Cart) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return newState("", slices.Clone(c.lines))
}
