package staged

import (
	"github.com/scalus-go/scalus/internal/builtin"
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/uplc"
)

// directBackend is the straightforward specializing evaluator: it recurses
// through Go's own call stack, which makes it the simplest and (for modestly
// sized terms) fastest back-end, at the cost of being unsafe for
// pathologically deep UPLC nesting — use trampolineBackend there.
type directBackend struct{}

func (directBackend) run(term uplc.Term, ctx *evalCtx) (value, error) {
	return evalDirect(term, nil, ctx)
}

func evalDirect(t uplc.Term, env *genv, ctx *evalCtx) (value, error) {
	if err := ctx.spendStep(stepKindOf(t)); err != nil {
		return value{}, err
	}
	switch n := t.(type) {
	case uplc.Const:
		return value{kind: vConstant, con: n.Value}, nil

	case uplc.Var:
		v, ok := env.lookup(n.Index)
		if !ok {
			return value{}, fail(cek.FreeVariable, "unbound variable %s (index %d)", n.Name, n.Index)
		}
		return v, nil

	case uplc.LamAbs:
		return value{kind: vClosure, param: n.Name, body: n.Body, env: env}, nil

	case uplc.Delay:
		return value{kind: vDelayed, body: n.Term, env: env}, nil

	case uplc.Builtin:
		b := builtin.Lookup(n.Id)
		if b == nil {
			return value{}, fail(cek.BuiltinError, "unknown builtin %s", n.Id)
		}
		return value{kind: vBuiltinApp, id: n.Id, forcesRemaining: b.Forces}, nil

	case uplc.Error:
		return value{}, fail(cek.UserError, "evaluation hit an Error term")

	case uplc.Force:
		v, err := evalDirect(n.Term, env, ctx)
		if err != nil {
			return value{}, err
		}
		switch v.kind {
		case vDelayed:
			return evalDirect(v.body, v.env, ctx)
		case vBuiltinApp:
			if v.forcesRemaining <= 0 {
				return value{}, fail(cek.TypeMismatch, "force applied to builtin %s with no pending forces", v.id)
			}
			v.forcesRemaining--
			return v, nil
		default:
			return value{}, fail(cek.TypeMismatch, "force applied to a non-delayed, non-builtin value")
		}

	case uplc.Apply:
		if spec, ok := specializedApply(n); ok {
			return evalSpecializedDirect(spec, env, ctx)
		}
		fn, err := evalDirect(n.Fun, env, ctx)
		if err != nil {
			return value{}, err
		}
		arg, err := evalDirect(n.Arg, env, ctx)
		if err != nil {
			return value{}, err
		}
		return applyDirect(fn, arg, ctx)

	case uplc.Constr:
		elems := make([]value, len(n.Args))
		for i, a := range n.Args {
			v, err := evalDirect(a, env, ctx)
			if err != nil {
				return value{}, err
			}
			elems[i] = v
		}
		return value{kind: vConstr, tag: n.Tag, elems: elems}, nil

	case uplc.Case:
		scrutinee, err := evalDirect(n.Scrutinee, env, ctx)
		if err != nil {
			return value{}, err
		}
		branch, fields, err := dispatchCase(scrutinee, n.Branches)
		if err != nil {
			return value{}, err
		}
		fn, err := evalDirect(branch, env, ctx)
		if err != nil {
			return value{}, err
		}
		for _, f := range fields {
			fn, err = applyDirect(fn, f, ctx)
			if err != nil {
				return value{}, err
			}
		}
		return fn, nil

	default:
		return value{}, fail(cek.TypeMismatch, "unknown term shape %T", t)
	}
}

func applyDirect(fn, arg value, ctx *evalCtx) (value, error) {
	switch fn.kind {
	case vClosure:
		return evalDirect(fn.body, fn.env.extend(fn.param, arg), ctx)
	case vBuiltinApp:
		if fn.forcesRemaining > 0 {
			return value{}, fail(cek.TypeMismatch, "builtin %s applied to a value argument with %d forces still pending", fn.id, fn.forcesRemaining)
		}
		return applyToBuiltin(ctx, fn, arg)
	default:
		return value{}, fail(cek.TypeMismatch, "cannot apply a non-function value %s", fn)
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
	case uplc.Const, uplc.Builtin:
		return cost.StepConstant
	case uplc.Constr:
		return cost.StepConstr
	case uplc.Case:
		return cost.StepCase
	default:
		return cost.StepConstant
	}
}
