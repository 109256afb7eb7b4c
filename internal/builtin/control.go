package builtin

import "github.com/scalus-go/scalus/internal/uplc"

func asBool(id uplc.BuiltinId, args []uplc.Constant, i int) (bool, error) {
	v, ok := args[i].(uplc.ConstBool)
	if !ok {
		return false, fail(id, "argument %d: expected bool, got %s", i, args[i].Type())
	}
	return v.Value, nil
}

func asPair(id uplc.BuiltinId, args []uplc.Constant, i int) (uplc.ConstPair, error) {
	v, ok := args[i].(uplc.ConstPair)
	if !ok {
		return uplc.ConstPair{}, fail(id, "argument %d: expected pair, got %s", i, args[i].Type())
	}
	return v, nil
}

func asList(id uplc.BuiltinId, args []uplc.Constant, i int) (uplc.ConstList, error) {
	v, ok := args[i].(uplc.ConstList)
	if !ok {
		return uplc.ConstList{}, fail(id, "argument %d: expected list, got %s", i, args[i].Type())
	}
	return v, nil
}

// controlBuiltins covers ifThenElse/chooseUnit/trace and the polymorphic
// pair/list primitives. ifThenElse, chooseUnit, chooseList, chooseData and
// trace are polymorphic in their result type, so their branch arguments may
// be any value, not only a constant. The CEK and staged evaluators therefore
// never call Apply for them: they select the result among the (evaluated)
// argument values themselves, in their own dispatchStructuralBuiltin. The
// Apply functions here implement the same selection over constants only.
func controlBuiltins() []*Builtin {
	return []*Builtin{
		{Id: uplc.IfThenElse, Arity: 3, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			cond, err := asBool(uplc.IfThenElse, args, 0)
			if err != nil {
				return nil, err
			}
			if cond {
				return args[1], nil
			}
			return args[2], nil
		}},
		{Id: uplc.ChooseUnit, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			if _, ok := args[0].(uplc.ConstUnit); !ok {
				return nil, fail(uplc.ChooseUnit, "argument 0: expected unit, got %s", args[0].Type())
			}
			return args[1], nil
		}},
		// trace's logging side effect is performed by the evaluator, which
		// special-cases uplc.Trace to record args[0] once the call is
		// saturated and its result selected; Apply itself only implements
		// the pure pass-through semantics.
		{Id: uplc.Trace, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			if _, err := asString(uplc.Trace, args, 0); err != nil {
				return nil, err
			}
			return args[1], nil
		}},
		{Id: uplc.FstPair, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			p, err := asPair(uplc.FstPair, args, 0)
			if err != nil {
				return nil, err
			}
			return p.First, nil
		}},
		{Id: uplc.SndPair, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			p, err := asPair(uplc.SndPair, args, 0)
			if err != nil {
				return nil, err
			}
			return p.Second, nil
		}},
		{Id: uplc.ChooseList, Arity: 3, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.ChooseList, args, 0)
			if err != nil {
				return nil, err
			}
			if len(l.Elems) == 0 {
				return args[1], nil
			}
			return args[2], nil
		}},
		{Id: uplc.MkCons, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.MkCons, args, 1)
			if err != nil {
				return nil, err
			}
			if args[0].Type() != l.ElemType {
				return nil, fail(uplc.MkCons, "element type %s does not match list element type %s", args[0].Type(), l.ElemType)
			}
			elems := make([]uplc.Constant, 0, len(l.Elems)+1)
			elems = append(elems, args[0])
			elems = append(elems, l.Elems...)
			return uplc.ConstList{ElemType: l.ElemType, Elems: elems}, nil
		}},
		{Id: uplc.HeadList, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.HeadList, args, 0)
			if err != nil {
				return nil, err
			}
			if len(l.Elems) == 0 {
				return nil, fail(uplc.HeadList, "empty list")
			}
			return l.Elems[0], nil
		}},
		{Id: uplc.TailList, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.TailList, args, 0)
			if err != nil {
				return nil, err
			}
			if len(l.Elems) == 0 {
				return nil, fail(uplc.TailList, "empty list")
			}
			return uplc.ConstList{ElemType: l.ElemType, Elems: l.Elems[1:]}, nil
		}},
		{Id: uplc.NullList, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.NullList, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: len(l.Elems) == 0}, nil
		}},
	}
}
