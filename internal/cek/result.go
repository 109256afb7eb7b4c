package cek

import (
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Result is the outcome of one Machine.Run call (spec §6):
// Success(term, budget, traces) or Failure(kind, budget, traces).
type Result struct {
	Success bool
	Term    uplc.Term // only meaningful when Success is true

	FailureKind FailureKind // only meaningful when Success is false
	FailureMsg  string

	Spent      cost.ExBudget
	Traces     []string
	PerBuiltin map[uplc.BuiltinId]cost.ExBudget
}
