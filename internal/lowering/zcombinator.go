package lowering

import "github.com/scalus-go/scalus/internal/uplc"

// zCombinatorName is the well-known name the materialized Z combinator is
// bound under when a program needs it (spec §4.1: "materialized once per
// program under a well-known name").
const zCombinatorName = "__z_combinator__"

// zCombinator builds the strict fixed-point combinator
// Z = λf. (λx. f (λv. x x v)) (λx. f (λv. x x v)),
// used to lower a singleton recursive Let without relying on Go- or
// UPLC-level self-reference: Apply(Z, LamAbs(f, e')) ties the knot exactly
// once per recursive binding.
func zCombinator() uplc.Term {
	inner := func() uplc.Term {
		return uplc.LamAbs{
			Name: "x",
			Body: uplc.Apply{
				Fun: uplc.Var{Name: "f"},
				Arg: uplc.LamAbs{
					Name: "v",
					Body: uplc.Apply{
						Fun: uplc.Apply{Fun: uplc.Var{Name: "x"}, Arg: uplc.Var{Name: "x"}},
						Arg: uplc.Var{Name: "v"},
					},
				},
			},
		}
	}
	return uplc.LamAbs{
		Name: "f",
		Body: uplc.Apply{Fun: inner(), Arg: inner()},
	}
}

// wrapRecursive ties rhs (the lowered recursive binding's right-hand side,
// itself a function over the bound name) to the program-wide Z binding,
// marking the context so the top-level Lower call knows to materialize Z
// exactly once in the final output.
func wrapRecursive(ctx *Context, boundName string, rhs uplc.Term) uplc.Term {
	ctx.MarkNeedsZ()
	return uplc.Apply{
		Fun: uplc.Var{Name: zCombinatorName},
		Arg: uplc.LamAbs{Name: boundName, Body: rhs},
	}
}

// materializeZ wraps program in a single binding of the Z combinator under
// zCombinatorName, required once iff any recursive Let during lowering
// called wrapRecursive (ctx.NeedsZ()).
func materializeZ(program uplc.Term) uplc.Term {
	return uplc.Apply{
		Fun: uplc.LamAbs{Name: zCombinatorName, Body: program},
		Arg: zCombinator(),
	}
}
