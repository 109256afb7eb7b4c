package staged

import (
	"github.com/scalus-go/scalus/internal/builtin"
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/uplc"
)

// fastApply is the recognized shape of a fully-applied, zero-force, 1- or
// 2-argument builtin call: Apply(Builtin(id), a1) or
// Apply(Apply(Builtin(id), a1), a2). Per spec §4.2's specialization policy,
// these are compiled to a direct call instead of going through the general
// closure/partial-application machinery.
type fastApply struct {
	id       uplc.BuiltinId
	argTerms []uplc.Term
}

func specializedApply(n uplc.Apply) (fastApply, bool) {
	if outer, ok := n.Fun.(uplc.Apply); ok {
		if b, ok := outer.Fun.(uplc.Builtin); ok {
			if bi := builtin.Lookup(b.Id); bi != nil && bi.Forces == 0 && bi.Arity == 2 && !isStructuralBuiltin(b.Id) {
				return fastApply{id: b.Id, argTerms: []uplc.Term{outer.Arg, n.Arg}}, true
			}
		}
		return fastApply{}, false
	}
	if b, ok := n.Fun.(uplc.Builtin); ok {
		if bi := builtin.Lookup(b.Id); bi != nil && bi.Forces == 0 && bi.Arity == 1 && !isStructuralBuiltin(b.Id) {
			return fastApply{id: b.Id, argTerms: []uplc.Term{n.Arg}}, true
		}
	}
	return fastApply{}, false
}

// evalSpecializedDirect evaluates a recognized fastApply shape using the
// direct (recursive) evaluator for its argument terms. The caller (the
// uplc.Apply case of evalDirect) has already charged one StepApply for the
// outermost Apply node; this charges the remaining per-node costs the
// generic path would have charged (one more StepApply per inner Apply node,
// StepConstant for the Builtin node, then StepBuiltin at saturation) so
// total spend matches the generic path exactly. Structural builtins are
// never recognized, since their arguments need not be constants.
func evalSpecializedDirect(spec fastApply, env *genv, ctx *evalCtx) (value, error) {
	for i := 1; i < len(spec.argTerms); i++ {
		if err := ctx.spendStep(cost.StepApply); err != nil {
			return value{}, err
		}
	}
	if err := ctx.spendStep(cost.StepConstant); err != nil {
		return value{}, err
	}
	args := make([]uplc.Constant, 0, len(spec.argTerms))
	for _, t := range spec.argTerms {
		v, err := evalDirect(t, env, ctx)
		if err != nil {
			return value{}, err
		}
		if v.kind != vConstant {
			return value{}, fail(cek.TypeMismatch, "builtin %s: argument is not a constant value", spec.id)
		}
		args = append(args, v.con)
	}
	v, _, err := applyBuiltin(ctx, spec.id, args[:len(args)-1], args[len(args)-1])
	return v, err
}
