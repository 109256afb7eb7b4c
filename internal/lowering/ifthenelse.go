package lowering

import (
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

// lowerIfTerms builds a boolean branch already-lowered to its two already-
// lowered arms, sharing the V4+ native-Case vs V1-V3 IfThenElse-builtin
// split between sir.IfThenElse itself and every other boolean-shaped
// construct (And/Or/Not, Bool constant matches) that reduces to the same
// shape (spec §4.1 "Boolean/If/Not").
func lowerIfTerms(opts Options, cond, then, els uplc.Term) uplc.Term {
	if opts.TargetVersion.SupportsNativeCase() {
		return uplc.Case{Scrutinee: cond, Branches: []uplc.Term{els, then}}
	}
	return uplc.Force{Term: uplc.Apply{
		Fun: uplc.Apply{
			Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.IfThenElse}, Arg: cond},
			Arg: uplc.Delay{Term: then},
		},
		Arg: uplc.Delay{Term: els},
	}}
}

func lowerIf(ctx *Context, opts Options, node sir.IfThenElse) (uplc.Term, error) {
	cond, err := lowerNode(ctx, opts, node.Cond)
	if err != nil {
		return nil, err
	}
	then, err := lowerNode(ctx, opts, node.Then)
	if err != nil {
		return nil, err
	}
	els, err := lowerNode(ctx, opts, node.Else)
	if err != nil {
		return nil, err
	}
	return lowerIfTerms(opts, cond, then, els), nil
}

func boolConst(v bool) uplc.Term { return uplc.Const{Value: uplc.ConstBool{Value: v}} }

func lowerAnd(ctx *Context, opts Options, node sir.And) (uplc.Term, error) {
	left, err := lowerNode(ctx, opts, node.Left)
	if err != nil {
		return nil, err
	}
	right, err := lowerNode(ctx, opts, node.Right)
	if err != nil {
		return nil, err
	}
	return lowerIfTerms(opts, left, right, boolConst(false)), nil
}

func lowerOr(ctx *Context, opts Options, node sir.Or) (uplc.Term, error) {
	left, err := lowerNode(ctx, opts, node.Left)
	if err != nil {
		return nil, err
	}
	right, err := lowerNode(ctx, opts, node.Right)
	if err != nil {
		return nil, err
	}
	return lowerIfTerms(opts, left, boolConst(true), right), nil
}

func lowerNot(ctx *Context, opts Options, node sir.Not) (uplc.Term, error) {
	operand, err := lowerNode(ctx, opts, node.Operand)
	if err != nil {
		return nil, err
	}
	return lowerIfTerms(opts, operand, boolConst(false), boolConst(true)), nil
}
