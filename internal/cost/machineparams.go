package cost

import "github.com/scalus-go/scalus/internal/uplc"

// StepKind identifies a CEK machine reduction step charged a flat cost
// before the step's own work happens (spec §4.2 "Budget accounting").
type StepKind int

const (
	StepVar StepKind = iota
	StepLamAbs
	StepApply
	StepDelay
	StepForce
	StepConstant
	StepBuiltin
	StepConstr
	StepCase
	stepKindCount
)

func (k StepKind) String() string {
	switch k {
	case StepVar:
		return "var"
	case StepLamAbs:
		return "lamAbs"
	case StepApply:
		return "apply"
	case StepDelay:
		return "delay"
	case StepForce:
		return "force"
	case StepConstant:
		return "constant"
	case StepBuiltin:
		return "builtin"
	case StepConstr:
		return "constr"
	case StepCase:
		return "case"
	default:
		return "unknown"
	}
}

// BuiltinCostFunction computes the ExBudget charged by one completed
// builtin call, given the ExMemory of each of its (already-evaluated)
// arguments in argument order.
type BuiltinCostFunction func(argMemory []int64) ExBudget

// SemanticsVariant selects among ledger-era differences in builtin
// semantics/costing (e.g. a fixed-vs-buggy integer division rounding mode
// across hard forks). It is carried opaquely by MachineParams; no builtin
// in internal/builtin reads it, since a builtin's Apply receives only its
// arguments.
type SemanticsVariant int

const (
	SemanticsDefault SemanticsVariant = iota
	SemanticsPlutusV1
	SemanticsPlutusV2
	SemanticsPlutusV3
)

// MachineParams is the full, explicit configuration a CEK/staged evaluator
// is constructed from (spec §6 "Machine parameters"). It is built once from
// configuration (internal/config) and never mutated by an evaluator — the
// "no lazy globals that mutate after first use" guidance of spec §9.
type MachineParams struct {
	StepCosts        [stepKindCount]ExBudget
	BuiltinCostModel map[uplc.BuiltinId]BuiltinCostFunction
	SemanticsVariant SemanticsVariant
}

// StepCost returns the flat per-step charge for kind k.
func (p MachineParams) StepCost(k StepKind) ExBudget {
	return p.StepCosts[k]
}

// BuiltinCost computes the charge for a completed call to id given its
// argument memory sizes. Builtins with no configured cost function charge
// zero; nothing in this module checks that every builtin has one.
func (p MachineParams) BuiltinCost(id uplc.BuiltinId, argMemory []int64) ExBudget {
	fn, ok := p.BuiltinCostModel[id]
	if !ok {
		return ExBudget{}
	}
	return fn(argMemory)
}

// DefaultStepCost is the flat per-reduction-step charge used by
// DefaultMachineParams; real deployments load network-specific values via
// internal/config / internal/costmodel instead.
var DefaultStepCost = ExBudget{Mem: 100, Cpu: 16000}
