package lowering

import (
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Lower compiles a SIR program into a closed UPLC term ready for de Bruijn
// resolution and evaluation (spec §4.1). It applies the let-floating
// optimization when requested, then lowers the (possibly rewritten) tree,
// and finally wraps the result with a single materialized Z combinator if
// any recursive Let encountered along the way required one.
func Lower(root sir.Node, opts Options) (uplc.Term, error) {
	if opts.Optimize {
		root = FloatLets(root)
	}
	ctx := NewContext()
	term, err := lowerNode(ctx, opts, root)
	if err != nil {
		return nil, err
	}
	if ctx.NeedsZ() {
		term = materializeZ(term)
	}
	return term, nil
}

// lowerNode is the recursive SIR→UPLC dispatcher. Each case is grounded on
// the corresponding rule in spec §4.1.
func lowerNode(ctx *Context, opts Options, n sir.Node) (uplc.Term, error) {
	switch node := n.(type) {
	case sir.Var:
		return uplc.Var{Name: node.Name}, nil
	case sir.ExternalVar:
		return nil, errf(Pos{}, "unresolved external var %s.%s: external bindings must be linked before lowering", node.Module, node.Name)
	case sir.LamAbs:
		body, err := lowerNode(ctx, opts, node.Body)
		if err != nil {
			return nil, err
		}
		return uplc.LamAbs{Name: node.Name, Body: body}, nil
	case sir.Apply:
		fun, err := lowerNode(ctx, opts, node.Fun)
		if err != nil {
			return nil, err
		}
		arg, err := lowerNode(ctx, opts, node.Arg)
		if err != nil {
			return nil, err
		}
		return uplc.Apply{Fun: fun, Arg: arg}, nil
	case sir.Let:
		return lowerLet(ctx, opts, node)
	case sir.Match:
		return lowerMatch(ctx, opts, node)
	case sir.Constr:
		return lowerConstr(ctx, opts, node)
	case sir.Select:
		return lowerSelect(ctx, opts, node)
	case sir.IfThenElse:
		return lowerIf(ctx, opts, node)
	case sir.And:
		return lowerAnd(ctx, opts, node)
	case sir.Or:
		return lowerOr(ctx, opts, node)
	case sir.Not:
		return lowerNot(ctx, opts, node)
	case sir.Cast:
		// A Cast is a typed-surface-only annotation; at the UPLC level,
		// where every term is untyped, it lowers to its operand unchanged.
		return lowerNode(ctx, opts, node.Operand)
	case sir.Const:
		constT, ok := node.Value.(uplc.Constant)
		if !ok {
			return nil, errf(Pos{}, "const: value does not carry a uplc.Constant")
		}
		return uplc.Const{Value: constT}, nil
	case sir.Builtin:
		id, ok := uplc.BuiltinIdByName(node.Name)
		if !ok {
			return nil, errf(Pos{}, "unknown builtin %q", node.Name)
		}
		return uplc.Builtin{Id: id}, nil
	case sir.Error:
		if opts.ErrorTraces {
			return uplc.Force{Term: uplc.Apply{
				Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.Trace}, Arg: uplc.Const{Value: uplc.ConstString{Value: node.Message}}},
				Arg: uplc.Delay{Term: uplc.Error{}},
			}}, nil
		}
		return uplc.Error{}, nil
	case sir.Decl:
		return lowerNode(ctx.WithDecl(node.Decl), opts, node.Body)
	default:
		return nil, errf(Pos{}, "lowering: unhandled SIR node %T", n)
	}
}

// lowerLet lowers both non-recursive and recursive bindings (spec §4.1).
//
// Multiple non-recursive bindings desugar to nested single-argument
// applications; cek/machine.go's Apply case evaluates the function position
// (here, the LamAbs) first, but a bare LamAbs reduces immediately to a
// closure without entering its body, so the *argument* position (the bound
// value) is what actually runs next. Folding bindings from the last one
// inward makes the first declared binding the outermost application, which
// is the one whose value is evaluated first — reproducing left-to-right
// evaluation order for sequential bindings.
//
// A recursive Let binds exactly one name (mutual recursion is rejected, per
// spec §3's Let invariant) and is lowered via the Z combinator.
func lowerLet(ctx *Context, opts Options, node sir.Let) (uplc.Term, error) {
	if node.Recursive {
		if len(node.Bindings) != 1 {
			return nil, errf(Pos{}, "recursive let: mutual recursion is not supported (got %d bindings)", len(node.Bindings))
		}
		b := node.Bindings[0]
		rhs, err := lowerNode(ctx, opts, b.Value)
		if err != nil {
			return nil, err
		}
		bound := wrapRecursive(ctx, b.Name, rhs)
		body, err := lowerNode(ctx, opts, node.Body)
		if err != nil {
			return nil, err
		}
		return uplc.Apply{Fun: uplc.LamAbs{Name: b.Name, Body: body}, Arg: bound}, nil
	}

	body, err := lowerNode(ctx, opts, node.Body)
	if err != nil {
		return nil, err
	}
	term := body
	for i := len(node.Bindings) - 1; i >= 0; i-- {
		b := node.Bindings[i]
		value, err := lowerNode(ctx, opts, b.Value)
		if err != nil {
			return nil, err
		}
		term = uplc.Apply{Fun: uplc.LamAbs{Name: b.Name, Body: term}, Arg: value}
	}
	return term, nil
}
