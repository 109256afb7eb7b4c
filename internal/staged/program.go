package staged

import (
	"github.com/scalus-go/scalus/internal/builtin"
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

// evalCtx is the per-run mutable state shared by both back-ends: one budget,
// one trace log, one set of machine parameters (spec §5 — never shared
// across evaluations).
type evalCtx struct {
	params cost.MachineParams
	budget *cost.Budget
	traces []string
}

func (c *evalCtx) spendStep(kind cost.StepKind) error {
	if err := c.budget.Spend(c.params.StepCost(kind)); err != nil {
		return fail(cek.BudgetExhausted, "%v", err)
	}
	return nil
}

// Options selects a staged back-end.
type Options struct {
	// StackSafe selects the explicit-stack trampoline back-end
	// (trampoline.go) instead of the recursive direct back-end (direct.go).
	// Real Plutus programs can nest tens of thousands of terms deep; the
	// direct backend is faster but bound by the Go call stack.
	StackSafe bool
}

// Program is a compiled, runnable UPLC term.
type Program struct {
	term    uplc.Term
	backend backend
}

type backend interface {
	run(term uplc.Term, ctx *evalCtx) (value, error)
}

// Compile resolves term's variables to de Bruijn indices and pairs the
// result with the back-end selected by opts; the term itself is walked
// anew on every Run.
func Compile(term uplc.Term, opts Options) (Program, error) {
	resolved := uplc.ResolveDeBruijn(term)
	if opts.StackSafe {
		return Program{term: resolved, backend: trampolineBackend{}}, nil
	}
	return Program{term: resolved, backend: directBackend{}}, nil
}

// Run evaluates the compiled program against params starting from initial,
// returning the same Result shape the reference CEK machine returns so the
// two can be diffed directly (internal/cekequiv).
func (p Program) Run(params cost.MachineParams, initial cost.ExBudget) cek.Result {
	ctx := &evalCtx{params: params, budget: cost.NewBudget(initial)}
	v, err := p.backend.run(p.term, ctx)
	if err != nil {
		a, ok := err.(*abort)
		kind := cek.TypeMismatch
		msg := err.Error()
		if ok {
			kind, msg = a.kind, a.msg
		}
		return cek.Result{Success: false, FailureKind: kind, FailureMsg: msg, Spent: ctx.budget.Spent(), Traces: ctx.traces}
	}
	term, terr := valueToTerm(v)
	if terr != nil {
		return cek.Result{Success: false, FailureKind: cek.TypeMismatch, FailureMsg: terr.Error(), Spent: ctx.budget.Spent(), Traces: ctx.traces}
	}
	return cek.Result{Success: true, Term: term, Spent: ctx.budget.Spent(), Traces: ctx.traces}
}

func valueToTerm(v value) (uplc.Term, error) {
	switch v.kind {
	case vConstant:
		return uplc.Const{Value: v.con}, nil
	case vConstr:
		args := make([]uplc.Term, len(v.elems))
		for i, e := range v.elems {
			t, err := valueToTerm(e)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return uplc.Constr{Tag: v.tag, Args: args}, nil
	case vClosure:
		return uplc.LamAbs{Name: v.param, Body: v.body}, nil
	case vDelayed:
		return uplc.Delay{Term: v.body}, nil
	case vBuiltinApp:
		return uplc.Builtin{Id: v.id}, nil
	default:
		return nil, fail(cek.TypeMismatch, "unrepresentable final value")
	}
}

// applyBuiltin is the shared fast path for a fully- or partially-applied
// builtin call, used by both back-ends and by the specialized fused-call
// path for small-arity builtins (spec §4.2 specialization policy).
func applyBuiltin(ctx *evalCtx, id uplc.BuiltinId, collected []uplc.Constant, arg uplc.Constant) (value, bool, error) {
	b := builtin.Lookup(id)
	if b == nil {
		return value{}, false, fail(cek.BuiltinError, "unknown builtin %s", id)
	}
	args := append(append([]uplc.Constant{}, collected...), arg)
	if len(args) < b.Arity {
		return value{kind: vBuiltinApp, id: id, args: args}, false, nil
	}
	if err := ctx.spendStep(cost.StepBuiltin); err != nil {
		return value{}, false, err
	}
	if err := ctx.budget.Spend(ctx.params.BuiltinCost(id, builtin.ArgMemory(args))); err != nil {
		return value{}, false, fail(cek.BudgetExhausted, "%v", err)
	}
	result, err := b.Apply(args)
	if err != nil {
		return value{}, false, fail(cek.BuiltinError, "%v", err)
	}
	if id == uplc.Trace {
		if msg, ok := args[0].(uplc.ConstString); ok {
			ctx.traces = append(ctx.traces, msg.Value)
		}
	}
	return value{kind: vConstant, con: result}, true, nil
}

// isStructuralBuiltin reports whether id's generic-typed arguments must be
// accepted as arbitrary values rather than forced to constants: ifThenElse's
// branches, chooseUnit/chooseList's results, and trace's continuation value
// may be any already-evaluated value (spec §4.1), unlike every other
// builtin's strictly-constant-typed arguments.
func isStructuralBuiltin(id uplc.BuiltinId) bool {
	switch id {
	case uplc.IfThenElse, uplc.ChooseUnit, uplc.ChooseList, uplc.ChooseData, uplc.Trace:
		return true
	default:
		return false
	}
}

// applyToBuiltin applies arg to a partially-applied builtin value fn. It
// dispatches through the constant-only fast path for ordinary builtins and
// through dispatchStructuralBuiltin for the five structural ones.
func applyToBuiltin(ctx *evalCtx, fn value, arg value) (value, error) {
	if isStructuralBuiltin(fn.id) {
		b := builtin.Lookup(fn.id)
		if b == nil {
			return value{}, fail(cek.BuiltinError, "unknown builtin %s", fn.id)
		}
		args := append(append([]value{}, fn.elems...), arg)
		if len(args) < b.Arity {
			return value{kind: vBuiltinApp, id: fn.id, elems: args}, nil
		}
		if err := ctx.spendStep(cost.StepBuiltin); err != nil {
			return value{}, err
		}
		if err := ctx.budget.Spend(ctx.params.BuiltinCost(fn.id, nil)); err != nil {
			return value{}, fail(cek.BudgetExhausted, "%v", err)
		}
		result, err := dispatchStructuralBuiltin(fn.id, args)
		if err != nil {
			return value{}, err
		}
		if fn.id == uplc.Trace && args[0].kind == vConstant {
			if msg, ok := args[0].con.(uplc.ConstString); ok {
				ctx.traces = append(ctx.traces, msg.Value)
			}
		}
		return result, nil
	}
	if arg.kind != vConstant {
		return value{}, fail(cek.TypeMismatch, "builtin %s: argument is not a constant value", fn.id)
	}
	v, _, err := applyBuiltin(ctx, fn.id, fn.args, arg.con)
	return v, err
}

// dispatchStructuralBuiltin selects one of args' generic-typed positions,
// inspecting only the leading constant discriminator argument.
func dispatchStructuralBuiltin(id uplc.BuiltinId, args []value) (value, error) {
	if args[0].kind != vConstant {
		return value{}, fail(cek.TypeMismatch, "builtin %s: first argument is not a constant", id)
	}
	switch id {
	case uplc.IfThenElse:
		b, ok := args[0].con.(uplc.ConstBool)
		if !ok {
			return value{}, fail(cek.TypeMismatch, "ifThenElse: condition is not a bool")
		}
		if b.Value {
			return args[1], nil
		}
		return args[2], nil
	case uplc.ChooseUnit:
		if _, ok := args[0].con.(uplc.ConstUnit); !ok {
			return value{}, fail(cek.TypeMismatch, "chooseUnit: argument is not unit")
		}
		return args[1], nil
	case uplc.ChooseList:
		l, ok := args[0].con.(uplc.ConstList)
		if !ok {
			return value{}, fail(cek.TypeMismatch, "chooseList: argument is not a list")
		}
		if len(l.Elems) == 0 {
			return args[1], nil
		}
		return args[2], nil
	case uplc.ChooseData:
		d, ok := args[0].con.(uplc.ConstData)
		if !ok {
			return value{}, fail(cek.TypeMismatch, "chooseData: argument is not Data")
		}
		switch d.Value.(type) {
		case data.Constr:
			return args[1], nil
		case data.Map:
			return args[2], nil
		case data.List:
			return args[3], nil
		case data.I:
			return args[4], nil
		case data.B:
			return args[5], nil
		default:
			return value{}, fail(cek.TypeMismatch, "chooseData: unreachable Data variant %T", d.Value)
		}
	case uplc.Trace:
		return args[1], nil
	default:
		return value{}, fail(cek.TypeMismatch, "not a structural builtin: %s", id)
	}
}

const (
	dataConstrIdx = 0
	dataMapIdx    = 1
	dataListIdx   = 2
	dataIIdx      = 3
	dataBIdx      = 4
)

// dispatchData mirrors internal/cek's Case-on-Data mapping exactly, so the
// two evaluators agree on which branch is chosen and which field values it
// receives.
func dispatchData(d data.Data, branches []uplc.Term) (uplc.Term, []uplc.Constant, error) {
	need := func(idx int) error {
		if idx >= len(branches) {
			return fail(cek.MissingCase, "Data case %d missing", idx)
		}
		return nil
	}
	switch dv := d.(type) {
	case data.Constr:
		if err := need(dataConstrIdx); err != nil {
			return nil, nil, err
		}
		elems := make([]uplc.Constant, len(dv.Args))
		for i, a := range dv.Args {
			elems[i] = uplc.ConstData{Value: a}
		}
		return branches[dataConstrIdx], []uplc.Constant{uplc.NewInt(int64(dv.Tag)), uplc.ConstList{ElemType: uplc.TData, Elems: elems}}, nil
	case data.Map:
		if err := need(dataMapIdx); err != nil {
			return nil, nil, err
		}
		pairs := make([]uplc.Constant, len(dv.Entries))
		for i, e := range dv.Entries {
			pairs[i] = uplc.ConstPair{First: uplc.ConstData{Value: e.Key}, Second: uplc.ConstData{Value: e.Value}}
		}
		return branches[dataMapIdx], []uplc.Constant{uplc.ConstList{ElemType: uplc.TPair, Elems: pairs}}, nil
	case data.List:
		if err := need(dataListIdx); err != nil {
			return nil, nil, err
		}
		elems := make([]uplc.Constant, len(dv.Elems))
		for i, e := range dv.Elems {
			elems[i] = uplc.ConstData{Value: e}
		}
		return branches[dataListIdx], []uplc.Constant{uplc.ConstList{ElemType: uplc.TData, Elems: elems}}, nil
	case data.I:
		if err := need(dataIIdx); err != nil {
			return nil, nil, err
		}
		return branches[dataIIdx], []uplc.Constant{uplc.ConstInteger{Value: dv.Value}}, nil
	case data.B:
		if err := need(dataBIdx); err != nil {
			return nil, nil, err
		}
		return branches[dataBIdx], []uplc.Constant{uplc.ConstByteString{Value: dv.Bytes}}, nil
	default:
		return nil, nil, fail(cek.TypeMismatch, "unreachable Data variant %T", d)
	}
}

// dispatchCase implements the full §4.1 scrutinee-to-branch mapping shared
// by both back-ends: Constr by tag, Bool/Integer by contiguous index, Data
// across the fixed Constr/Map/List/I/B order.
func dispatchCase(scrutinee value, branches []uplc.Term) (uplc.Term, []value, error) {
	switch scrutinee.kind {
	case vConstr:
		if scrutinee.tag >= uint64(len(branches)) {
			return nil, nil, fail(cek.MissingCase, "constructor tag %d has no matching branch", scrutinee.tag)
		}
		return branches[scrutinee.tag], scrutinee.elems, nil

	case vConstant:
		switch c := scrutinee.con.(type) {
		case uplc.ConstBool:
			idx := 0
			if c.Value {
				idx = 1
			}
			if idx >= len(branches) {
				return nil, nil, fail(cek.MissingCase, "bool case %d missing", idx)
			}
			return branches[idx], nil, nil

		case uplc.ConstInteger:
			if !c.Value.IsInt64() {
				return nil, nil, fail(cek.MissingCase, "integer scrutinee %s out of contiguous case range", c.Value)
			}
			idx := int(c.Value.Int64())
			if idx < 0 || idx >= len(branches) {
				return nil, nil, fail(cek.MissingCase, "integer case %d missing", idx)
			}
			return branches[idx], nil, nil

		case uplc.ConstData:
			branch, consts, err := dispatchData(c.Value, branches)
			if err != nil {
				return nil, nil, err
			}
			fields := make([]value, len(consts))
			for i, cst := range consts {
				fields[i] = value{kind: vConstant, con: cst}
			}
			return branch, fields, nil

		default:
			return nil, nil, fail(cek.TypeMismatch, "case on unsupported constant type %s", c.Type())
		}

	default:
		return nil, nil, fail(cek.TypeMismatch, "case on a value that is neither Constr, Bool, Integer, nor Data")
	}
}
