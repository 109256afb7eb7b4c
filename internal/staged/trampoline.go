package staged

import (
	"github.com/scalus-go/scalus/internal/builtin"
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/uplc"
)

// trampolineBackend is the stack-safe back-end: it reuses the same value
// representation and builtin fast path as directBackend, but never recurses
// through Go's own call stack. Instead it drives an explicit continuation
// stack, mirroring internal/cek/machine.go's Compute/Return loop, so a
// pathologically deep UPLC term cannot overflow the Go stack.
type trampolineBackend struct{}

type tframe interface{ isTframe() }

type tframeApplyWaitFun struct {
	arg uplc.Term
	env *genv
}

type tframeApplyWaitArg struct {
	fun value
}

type tframeForce struct{}

type tframeConstrArgs struct {
	tag       uint64
	done      []value
	remaining []uplc.Term
	env       *genv
}

type tframeCaseScrutinee struct {
	branches []uplc.Term
	env      *genv
}

type tframeApplyField struct {
	fields []value
	idx    int
}

func (tframeApplyWaitFun) isTframe()  {}
func (tframeApplyWaitArg) isTframe()  {}
func (tframeForce) isTframe()         {}
func (tframeConstrArgs) isTframe()    {}
func (tframeCaseScrutinee) isTframe() {}
func (tframeApplyField) isTframe()    {}

func (trampolineBackend) run(term uplc.Term, ctx *evalCtx) (result value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if a, ok := r.(*abort); ok {
				err = a
				return
			}
			panic(r)
		}
	}()

	var stack []tframe
	curTerm := term
	var curEnv *genv
	var curVal value
	computing := true

	for {
		if computing {
			if e := ctx.spendStep(stepKindOf(curTerm)); e != nil {
				panic(e)
			}
			switch t := curTerm.(type) {
			case uplc.Const:
				curVal, computing = value{kind: vConstant, con: t.Value}, false

			case uplc.Var:
				v, ok := curEnv.lookup(t.Index)
				if !ok {
					panic(fail(cek.FreeVariable, "unbound variable %s (index %d)", t.Name, t.Index))
				}
				curVal, computing = v, false

			case uplc.LamAbs:
				curVal, computing = value{kind: vClosure, param: t.Name, body: t.Body, env: curEnv}, false

			case uplc.Delay:
				curVal, computing = value{kind: vDelayed, body: t.Term, env: curEnv}, false

			case uplc.Builtin:
				b := builtin.Lookup(t.Id)
				if b == nil {
					panic(fail(cek.BuiltinError, "unknown builtin %s", t.Id))
				}
				curVal, computing = value{kind: vBuiltinApp, id: t.Id, forcesRemaining: b.Forces}, false

			case uplc.Error:
				panic(fail(cek.UserError, "evaluation hit an Error term"))

			case uplc.Apply:
				stack = append(stack, tframeApplyWaitFun{arg: t.Arg, env: curEnv})
				curTerm = t.Fun

			case uplc.Force:
				stack = append(stack, tframeForce{})
				curTerm = t.Term

			case uplc.Constr:
				if len(t.Args) == 0 {
					curVal, computing = value{kind: vConstr, tag: t.Tag}, false
					break
				}
				stack = append(stack, tframeConstrArgs{tag: t.Tag, remaining: t.Args[1:], env: curEnv})
				curTerm = t.Args[0]

			case uplc.Case:
				stack = append(stack, tframeCaseScrutinee{branches: t.Branches, env: curEnv})
				curTerm = t.Scrutinee

			default:
				panic(fail(cek.TypeMismatch, "unknown term shape %T", t))
			}
			continue
		}

		// Return mode: deliver curVal to the top of the continuation stack.
		if len(stack) == 0 {
			return curVal, nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f := top.(type) {
		case tframeApplyWaitFun:
			stack = append(stack, tframeApplyWaitArg{fun: curVal})
			curTerm, curEnv, computing = f.arg, f.env, true

		case tframeApplyWaitArg:
			applyTrampoline(f.fun, curVal, ctx, &curTerm, &curEnv, &curVal, &computing)

		case tframeForce:
			switch curVal.kind {
			case vDelayed:
				curTerm, curEnv, computing = curVal.body, curVal.env, true
			case vBuiltinApp:
				if curVal.forcesRemaining <= 0 {
					panic(fail(cek.TypeMismatch, "force applied to builtin %s with no pending forces", curVal.id))
				}
				curVal.forcesRemaining--
				computing = false
			default:
				panic(fail(cek.TypeMismatch, "force applied to a non-delayed, non-builtin value"))
			}

		case tframeConstrArgs:
			done := append(append([]value{}, f.done...), curVal)
			if len(f.remaining) == 0 {
				curVal, computing = value{kind: vConstr, tag: f.tag, elems: done}, false
				break
			}
			stack = append(stack, tframeConstrArgs{tag: f.tag, done: done, remaining: f.remaining[1:], env: f.env})
			curTerm, curEnv, computing = f.remaining[0], f.env, true

		case tframeCaseScrutinee:
			branch, fields, err := dispatchCase(curVal, f.branches)
			if err != nil {
				panic(err)
			}
			if len(fields) == 0 {
				curTerm, curEnv, computing = branch, f.env, true
				break
			}
			stack = append(stack, tframeApplyField{fields: fields, idx: 0})
			curTerm, curEnv, computing = branch, f.env, true

		case tframeApplyField:
			if f.idx >= len(f.fields) {
				computing = false
				break
			}
			stack = append(stack, tframeApplyField{fields: f.fields, idx: f.idx + 1})
			applyTrampoline(curVal, f.fields[f.idx], ctx, &curTerm, &curEnv, &curVal, &computing)

		default:
			panic(fail(cek.TypeMismatch, "unknown continuation frame %T", f))
		}
	}
}

// applyTrampoline applies fn to arg without ever recursing through Go's call
// stack: a closure application hands its body and extended environment back
// to the caller's Compute loop via the out-params, mirroring
// internal/cek/machine.go's applyStep. A builtin application either charges
// and invokes immediately (fully saturated) or produces a partial value.
func applyTrampoline(fn, arg value, ctx *evalCtx, curTerm *uplc.Term, curEnv **genv, curVal *value, computing *bool) {
	switch fn.kind {
	case vClosure:
		*curTerm, *curEnv, *computing = fn.body, fn.env.extend(fn.param, arg), true

	case vBuiltinApp:
		if fn.forcesRemaining > 0 {
			panic(fail(cek.TypeMismatch, "builtin %s applied to a value argument with %d forces still pending", fn.id, fn.forcesRemaining))
		}
		v, err := applyToBuiltin(ctx, fn, arg)
		if err != nil {
			panic(err)
		}
		*curVal, *computing = v, false

	default:
		panic(fail(cek.TypeMismatch, "cannot apply a non-function value %s", fn))
	}
}
