package pipeline

import (
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Outcome is a pipeline run's result (spec §6), independent of which
// evaluator backend actually produced it.
type Outcome struct {
	Success bool
	Term    uplc.Term // only set on success

	FailureKind cek.FailureKind // only set on failure
	FailureMsg  string

	SpentBudget    cost.ExBudget
	PerBuiltinCost map[uplc.BuiltinId]cost.ExBudget
	Traces         []string
}

func outcomeFromResult(res cek.Result) Outcome {
	return Outcome{
		Success:        res.Success,
		Term:           res.Term,
		FailureKind:    res.FailureKind,
		FailureMsg:     res.FailureMsg,
		SpentBudget:    res.Spent,
		PerBuiltinCost: res.PerBuiltin,
		Traces:         res.Traces,
	}
}
