package cek

import (
	"github.com/scalus-go/scalus/internal/builtin"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

// frame is one entry of the machine's explicit continuation stack — this
// package never recurses through Go's call stack to evaluate a term, so
// the depth of a UPLC program is bounded only by available heap, not by Go
// stack size (spec §4.2 "no host-language recursion").
type frame interface{ isFrame() }

type frameApplyWaitFun struct {
	arg uplc.Term
	env *env
}

type frameApplyWaitArg struct {
	fun Value
}

type frameForce struct{}

type frameConstrArgs struct {
	tag       uint64
	done      []Value
	remaining []uplc.Term
	env       *env
}

type frameCaseScrutinee struct {
	branches []uplc.Term
	env      *env
}

// frameApplyField sequences applying an already-evaluated branch function to
// a list of already-evaluated field values (used by Case dispatch): no term
// evaluation is needed for the fields themselves.
type frameApplyField struct {
	fields []Value
	idx    int
}

func (frameApplyWaitFun) isFrame()   {}
func (frameApplyWaitArg) isFrame()   {}
func (frameForce) isFrame()          {}
func (frameConstrArgs) isFrame()     {}
func (frameCaseScrutinee) isFrame()  {}
func (frameApplyField) isFrame()     {}

// Machine is a single-use reference CEK evaluator instance (spec §5: one
// budget, one logger, one machine-params set, shared with no other
// evaluation).
type Machine struct {
	params     cost.MachineParams
	budget     *cost.Budget
	traces     []string
	perBuiltin map[uplc.BuiltinId]cost.ExBudget
}

// NewMachine constructs a Machine with its own budget, seeded from initial.
func NewMachine(params cost.MachineParams, initial cost.ExBudget) *Machine {
	return &Machine{params: params, budget: cost.NewBudget(initial), perBuiltin: map[uplc.BuiltinId]cost.ExBudget{}}
}

func (m *Machine) chargeBuiltin(id uplc.BuiltinId, c cost.ExBudget) {
	m.perBuiltin[id] = m.perBuiltin[id].Add(c)
}

// Run evaluates term to completion, returning a Result per spec §6. Run must
// only be called once per Machine: a fresh Machine (and fresh Budget) is
// required for each evaluation (spec §5).
func (m *Machine) Run(term uplc.Term) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if ee, ok := r.(*EvalError); ok {
				result = m.failureResult(ee)
				return
			}
			panic(r)
		}
	}()

	var stack []frame
	curTerm := uplc.ResolveDeBruijn(term)
	curEnv := (*env)(nil)
	var curVal Value
	computing := true

	for {
		if computing {
			m.spendStep(stepKindOf(curTerm))
			switch t := curTerm.(type) {
			case uplc.Const:
				curVal, computing = constantValue{t.Value}, false

			case uplc.Var:
				v, ok := curEnv.lookup(t.Index)
				if !ok {
					m.abort(fail(FreeVariable, "unbound variable %s (index %d)", t.Name, t.Index))
				}
				curVal, computing = v, false

			case uplc.LamAbs:
				curVal, computing = closureValue{param: t.Name, body: t.Body, env: curEnv}, false

			case uplc.Delay:
				curVal, computing = delayedValue{body: t.Term, env: curEnv}, false

			case uplc.Builtin:
				b := builtin.Lookup(t.Id)
				if b == nil {
					m.abort(fail(BuiltinError, "unknown builtin %s", t.Id))
				}
				curVal, computing = builtinAppValue{id: t.Id, forcesRemaining: b.Forces}, false

			case uplc.Error:
				m.abort(fail(UserError, "evaluation hit an Error term"))

			case uplc.Apply:
				stack = append(stack, frameApplyWaitFun{arg: t.Arg, env: curEnv})
				curTerm = t.Fun

			case uplc.Force:
				stack = append(stack, frameForce{})
				curTerm = t.Term

			case uplc.Constr:
				if len(t.Args) == 0 {
					curVal, computing = constrValue{tag: t.Tag}, false
					break
				}
				stack = append(stack, frameConstrArgs{tag: t.Tag, remaining: t.Args[1:], env: curEnv})
				curTerm = t.Args[0]

			case uplc.Case:
				stack = append(stack, frameCaseScrutinee{branches: t.Branches, env: curEnv})
				curTerm = t.Scrutinee

			default:
				m.abort(fail(TypeMismatch, "unknown term shape %T", t))
			}
			continue
		}

		// Return mode: deliver curVal to the top of the stack.
		if len(stack) == 0 {
			return m.successResult(curVal)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f := top.(type) {
		case frameApplyWaitFun:
			stack = append(stack, frameApplyWaitArg{fun: curVal})
			curTerm, curEnv, computing = f.arg, f.env, true

		case frameApplyWaitArg:
			m.applyStep(f.fun, curVal, &stack, &curTerm, &curEnv, &curVal, &computing)

		case frameForce:
			switch dv := curVal.(type) {
			case delayedValue:
				curTerm, curEnv, computing = dv.body, dv.env, true
			case builtinAppValue:
				if dv.forcesRemaining <= 0 {
					m.abort(fail(TypeMismatch, "force applied to builtin %s with no pending forces", dv.id))
				}
				dv.forcesRemaining--
				curVal, computing = dv, false
			default:
				m.abort(fail(TypeMismatch, "force applied to a non-delayed, non-builtin value"))
			}

		case frameConstrArgs:
			done := append(append([]Value{}, f.done...), curVal)
			if len(f.remaining) == 0 {
				curVal, computing = constrValue{tag: f.tag, values: done}, false
				break
			}
			stack = append(stack, frameConstrArgs{tag: f.tag, done: done, remaining: f.remaining[1:], env: f.env})
			curTerm, curEnv, computing = f.remaining[0], f.env, true

		case frameCaseScrutinee:
			branch, fields, err := m.dispatchCase(curVal, f.branches)
			if err != nil {
				m.abort(err)
			}
			if len(fields) == 0 {
				curTerm, curEnv, computing = branch, f.env, true
				break
			}
			stack = append(stack, frameApplyField{fields: fields, idx: 0})
			curTerm, curEnv, computing = branch, f.env, true

		case frameApplyField:
			if f.idx >= len(f.fields) {
				computing = false
				break
			}
			stack = append(stack, frameApplyField{fields: f.fields, idx: f.idx + 1})
			m.applyStep(curVal, f.fields[f.idx], &stack, &curTerm, &curEnv, &curVal, &computing)

		default:
			m.abort(fail(TypeMismatch, "unknown continuation frame %T", f))
		}
	}
}

// applyStep applies fun to arg, either producing a value directly (Return
// mode) or a closure body to Compute next.
func (m *Machine) applyStep(fun, arg Value, stack *[]frame, curTerm *uplc.Term, curEnv **env, curVal *Value, computing *bool) {
	switch fv := fun.(type) {
	case closureValue:
		*curTerm, *curEnv, *computing = fv.body, fv.env.extend(fv.param, arg), true

	case builtinAppValue:
		if fv.forcesRemaining > 0 {
			m.abort(fail(TypeMismatch, "builtin %s applied to a value argument with %d forces still pending", fv.id, fv.forcesRemaining))
		}
		b := builtin.Lookup(fv.id)
		if b == nil {
			m.abort(fail(BuiltinError, "unknown builtin %s", fv.id))
		}

		if isStructuralBuiltin(fv.id) {
			structArgs := append(append([]Value{}, fv.structArgs...), arg)
			if len(structArgs) < b.Arity {
				*curVal, *computing = builtinAppValue{id: fv.id, structArgs: structArgs}, false
				return
			}
			m.spendStep(cost.StepBuiltin)
			structCost := m.params.BuiltinCost(fv.id, nil)
			if err := m.budget.Spend(structCost); err != nil {
				m.abort(fail(BudgetExhausted, "%v", err))
			}
			m.chargeBuiltin(fv.id, structCost)
			result, err := dispatchStructuralBuiltin(fv.id, structArgs)
			if err != nil {
				m.abort(err.(*EvalError))
			}
			if fv.id == uplc.Trace {
				if c, ok := structArgs[0].(constantValue); ok {
					if msg, ok := c.c.(uplc.ConstString); ok {
						m.traces = append(m.traces, msg.Value)
					}
				}
			}
			*curVal, *computing = result, false
			return
		}

		c, ok := arg.(constantValue)
		if !ok {
			m.abort(fail(TypeMismatch, "builtin %s: argument is not a constant value", fv.id))
		}
		args := append(append([]uplc.Constant{}, fv.args...), c.c)
		if len(args) < b.Arity {
			*curVal, *computing = builtinAppValue{id: fv.id, args: args}, false
			return
		}
		m.spendStep(cost.StepBuiltin)
		argMem := builtin.ArgMemory(args)
		builtinCost := m.params.BuiltinCost(fv.id, argMem)
		if err := m.budget.Spend(builtinCost); err != nil {
			m.abort(fail(BudgetExhausted, "%v", err))
		}
		m.chargeBuiltin(fv.id, builtinCost)
		result, err := b.Apply(args)
		if err != nil {
			m.abort(fail(BuiltinError, "%v", err))
		}
		if fv.id == uplc.Trace {
			if msg, ok := args[0].(uplc.ConstString); ok {
				m.traces = append(m.traces, msg.Value)
			}
		}
		*curVal, *computing = constantValue{result}, false

	default:
		m.abort(fail(TypeMismatch, "cannot apply a non-function value %s", fun))
	}
}

// dispatchCase implements the §4.1 scrutinee-to-branch mapping: a Constr
// value selects by tag; a Bool constant maps false/true to branches 0/1; an
// Integer constant maps contiguously to its own value; a Data constant
// dispatches across the fixed Constr/Map/List/I/B order, passing each
// variant's own fields to the chosen branch exactly as the corresponding
// destructor builtin would.
func (m *Machine) dispatchCase(scrutinee Value, branches []uplc.Term) (uplc.Term, []Value, error) {
	switch v := scrutinee.(type) {
	case constrValue:
		if v.tag >= uint64(len(branches)) {
			return nil, nil, fail(MissingCase, "constructor tag %d has no matching branch (only %d present)", v.tag, len(branches))
		}
		return branches[v.tag], v.values, nil

	case constantValue:
		switch c := v.c.(type) {
		case uplc.ConstBool:
			idx := 0
			if c.Value {
				idx = 1
			}
			if idx >= len(branches) {
				return nil, nil, fail(MissingCase, "bool case %d missing", idx)
			}
			return branches[idx], nil, nil

		case uplc.ConstInteger:
			if !c.Value.IsInt64() {
				return nil, nil, fail(MissingCase, "integer scrutinee %s out of contiguous case range", c.Value)
			}
			idx := int(c.Value.Int64())
			if idx < 0 || idx >= len(branches) {
				return nil, nil, fail(MissingCase, "integer case %d missing", idx)
			}
			return branches[idx], nil, nil

		case uplc.ConstData:
			return m.dispatchDataCase(c.Value, branches)

		default:
			return nil, nil, fail(TypeMismatch, "case on unsupported constant type %s", c.Type())
		}

	default:
		return nil, nil, fail(TypeMismatch, "case on a value that is neither Constr, Bool, Integer, nor Data")
	}
}

func (m *Machine) dispatchDataCase(d data.Data, branches []uplc.Term) (uplc.Term, []Value, error) {
	const constrIdx, mapIdx, listIdx, iIdx, bIdx = 0, 1, 2, 3, 4
	need := func(idx int) error {
		if idx >= len(branches) {
			return fail(MissingCase, "Data case %d missing", idx)
		}
		return nil
	}
	switch dv := d.(type) {
	case data.Constr:
		if err := need(constrIdx); err != nil {
			return nil, nil, err
		}
		elems := make([]uplc.Constant, len(dv.Args))
		for i, a := range dv.Args {
			elems[i] = uplc.ConstData{Value: a}
		}
		return branches[constrIdx], []Value{
			constantValue{uplc.NewInt(int64(dv.Tag))},
			constantValue{uplc.ConstList{ElemType: uplc.TData, Elems: elems}},
		}, nil
	case data.Map:
		if err := need(mapIdx); err != nil {
			return nil, nil, err
		}
		pairs := make([]uplc.Constant, len(dv.Entries))
		for i, e := range dv.Entries {
			pairs[i] = uplc.ConstPair{First: uplc.ConstData{Value: e.Key}, Second: uplc.ConstData{Value: e.Value}}
		}
		return branches[mapIdx], []Value{constantValue{uplc.ConstList{ElemType: uplc.TPair, Elems: pairs}}}, nil
	case data.List:
		if err := need(listIdx); err != nil {
			return nil, nil, err
		}
		elems := make([]uplc.Constant, len(dv.Elems))
		for i, e := range dv.Elems {
			elems[i] = uplc.ConstData{Value: e}
		}
		return branches[listIdx], []Value{constantValue{uplc.ConstList{ElemType: uplc.TData, Elems: elems}}}, nil
	case data.I:
		if err := need(iIdx); err != nil {
			return nil, nil, err
		}
		return branches[iIdx], []Value{constantValue{uplc.ConstInteger{Value: dv.Value}}}, nil
	case data.B:
		if err := need(bIdx); err != nil {
			return nil, nil, err
		}
		return branches[bIdx], []Value{constantValue{uplc.ConstByteString{Value: dv.Bytes}}}, nil
	default:
		return nil, nil, fail(TypeMismatch, "unreachable Data variant %T", d)
	}
}

func stepKindOf(t uplc.Term) cost.StepKind {
	switch t.(type) {
	case uplc.Var:
		return cost.StepVar
	case uplc.LamAbs:
		return cost.StepLamAbs
	case uplc.Apply:
		return cost.StepApply
	case uplc.Delay:
		return cost.StepDelay
	case uplc.Force:
		return cost.StepForce
	case uplc.Const:
		return cost.StepConstant
	case uplc.Builtin:
		return cost.StepConstant
	case uplc.Constr:
		return cost.StepConstr
	case uplc.Case:
		return cost.StepCase
	default:
		return cost.StepConstant
	}
}

func (m *Machine) spendStep(kind cost.StepKind) {
	if err := m.budget.Spend(m.params.StepCost(kind)); err != nil {
		m.abort(fail(BudgetExhausted, "%v", err))
	}
}

func (m *Machine) abort(err *EvalError) {
	panic(err)
}

func (m *Machine) successResult(v Value) Result {
	term, err := valueToTerm(v)
	if err != nil {
		return Result{
			Success:     false,
			FailureKind: TypeMismatch,
			FailureMsg:  err.Error(),
			Spent:       m.budget.Spent(),
			Traces:      m.traces,
			PerBuiltin:  m.perBuiltin,
		}
	}
	return Result{Success: true, Term: term, Spent: m.budget.Spent(), Traces: m.traces, PerBuiltin: m.perBuiltin}
}

func (m *Machine) failureResult(err *EvalError) Result {
	return Result{
		Success:     false,
		FailureKind: err.Kind,
		FailureMsg:  err.Message,
		Spent:       m.budget.Spent(),
		Traces:      m.traces,
		PerBuiltin:  m.perBuiltin,
	}
}

// valueToTerm converts a final CEK value back into a Term for Result.Term,
// matching the external contract that a successful evaluation returns a
// UPLC term (typically a Const, but any fully-reduced value is valid).
func valueToTerm(v Value) (uplc.Term, error) {
	switch vv := v.(type) {
	case constantValue:
		return uplc.Const{Value: vv.c}, nil
	case constrValue:
		args := make([]uplc.Term, len(vv.values))
		for i, fv := range vv.values {
			t, err := valueToTerm(fv)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return uplc.Constr{Tag: vv.tag, Args: args}, nil
	case closureValue:
		return uplc.LamAbs{Name: vv.param, Body: vv.body}, nil
	case delayedValue:
		return uplc.Delay{Term: vv.body}, nil
	case builtinAppValue:
		return uplc.Builtin{Id: vv.id}, nil
	default:
		return nil, fail(TypeMismatch, "unrepresentable final value")
	}
}
