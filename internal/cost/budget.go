// Package cost implements the per-step and per-builtin cost model and the
// budget spender (spec §4.2 "Budget accounting"). A Budget is the single
// mutable resource of one evaluation (spec §3.4): only the evaluator that
// owns it ever calls Spend.
package cost

import "fmt"

// ExBudget is the (memory, cpu-steps) pair charged by every reduction and
// every builtin call.
type ExBudget struct {
	Mem int64
	Cpu int64
}

// Add returns the component-wise sum.
func (b ExBudget) Add(o ExBudget) ExBudget {
	return ExBudget{b.Mem + o.Mem, b.Cpu + o.Cpu}
}

// Sub returns the component-wise difference.
func (b ExBudget) Sub(o ExBudget) ExBudget {
	return ExBudget{b.Mem - o.Mem, b.Cpu - o.Cpu}
}

// Negative reports whether either component has gone below zero.
func (b ExBudget) Negative() bool {
	return b.Mem < 0 || b.Cpu < 0
}

func (b ExBudget) String() string {
	return fmt.Sprintf("(mem=%d, cpu=%d)", b.Mem, b.Cpu)
}

// ExhaustedError is returned the instant a spend drives either component of
// the budget negative; it carries the budget value at that moment so
// callers can report spent-so-far.
type ExhaustedError struct {
	Remaining ExBudget
	Attempted ExBudget
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("budget exhausted: remaining %s, attempted to spend %s", e.Remaining, e.Attempted)
}

// Budget is the single-owner mutable counter for one evaluation (spec
// §3.4). It is never shared between concurrent evaluations (spec §5).
type Budget struct {
	initial   ExBudget
	remaining ExBudget
}

// NewBudget creates a budget initialized to initial.
func NewBudget(initial ExBudget) *Budget {
	return &Budget{initial: initial, remaining: initial}
}

// Spend deducts cost from the remaining budget. If either component would
// go negative, the budget is left at its pre-spend value and an
// ExhaustedError is returned — evaluation must abort immediately (spec §7).
func (b *Budget) Spend(c ExBudget) error {
	next := b.remaining.Sub(c)
	if next.Negative() {
		return &ExhaustedError{Remaining: b.remaining, Attempted: c}
	}
	b.remaining = next
	return nil
}

// Remaining returns the budget left.
func (b *Budget) Remaining() ExBudget { return b.remaining }

// Spent returns initial-minus-remaining: monotonically non-decreasing over
// the lifetime of an evaluation (spec §8, "Budget monotonicity").
func (b *Budget) Spent() ExBudget { return b.initial.Sub(b.remaining) }
