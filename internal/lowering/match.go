package lowering

import (
	"sort"

	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

// dataVariantTags fixes the branch order §4.1 mandates for a Data match:
// Constr, Map, List, I, B.
var dataVariantTags = map[string]int{
	"Constr": 0,
	"Map":    1,
	"List":   2,
	"I":      3,
	"B":      4,
}

func lowerMatch(ctx *Context, opts Options, m sir.Match) (uplc.Term, error) {
	if len(m.Cases) == 0 {
		return nil, errf(Pos{}, "match has no cases")
	}
	for i, c := range m.Cases {
		if c.Wildcard && i != len(m.Cases)-1 {
			return nil, errf(Pos{}, "wildcard case must be the last case in a match")
		}
	}

	switch {
	case m.Cases[0].Constant != nil:
		return lowerPrimitiveMatch(ctx, opts, m)
	case isDataMatch(m):
		return lowerDataMatch(ctx, opts, m)
	default:
		decl, ok := ctx.LookupDecl(m.Cases[0].Constructor)
		if !ok {
			return nil, errf(Pos{}, "match: unknown constructor %q (no declaration in scope)", m.Cases[0].Constructor)
		}
		return lowerADTMatch(ctx, opts, decl, m)
	}
}

func isDataMatch(m sir.Match) bool {
	for _, c := range m.Cases {
		if c.Wildcard {
			continue
		}
		if _, ok := dataVariantTags[c.Constructor]; !ok {
			return false
		}
	}
	// At least one concrete (non-wildcard) case naming a Data variant.
	for _, c := range m.Cases {
		if !c.Wildcard {
			return true
		}
	}
	return false
}

// lowerADTMatch implements match lowering against a user-declared sum type
// (spec §4.1): wildcard expansion, then Scott application or native Case
// depending on opts.TargetVersion.
func lowerADTMatch(ctx *Context, opts Options, decl *sir.DataDecl, m sir.Match) (uplc.Term, error) {
	scrutinee, err := lowerNode(ctx, opts, m.Scrutinee)
	if err != nil {
		return nil, err
	}

	n := len(decl.Constructors)
	branches := make([]uplc.Term, n)
	covered := make([]bool, n)

	var wildcard *sir.MatchCase
	for i := range m.Cases {
		c := &m.Cases[i]
		if c.Wildcard {
			wildcard = c
			continue
		}
		tag := decl.IndexOf(c.Constructor)
		if tag < 0 {
			return nil, errf(Pos{}, "match: unknown constructor %q of %q", c.Constructor, decl.Name)
		}
		if covered[tag] {
			return nil, errf(Pos{}, "match: duplicate case for constructor %q", c.Constructor)
		}
		bodyT, err := lowerNode(ctx, opts, c.Body)
		if err != nil {
			return nil, err
		}
		fields := c.Bindings
		if fields == nil {
			fields = decl.Constructors[tag].Fields
		}
		branches[tag] = buildBranchFunc(fields, bodyT)
		covered[tag] = true
	}

	for tag := 0; tag < n; tag++ {
		if covered[tag] {
			continue
		}
		ctor := decl.Constructors[tag]
		switch {
		case wildcard != nil:
			bodyT, err := lowerNode(ctx, opts, wildcard.Body)
			if err != nil {
				return nil, err
			}
			branches[tag] = buildBranchFunc(ignoredFieldNames(ctx, len(ctor.Fields)), bodyT)
		case m.Unchecked:
			branches[tag] = buildBranchFunc(ignoredFieldNames(ctx, len(ctor.Fields)), uplc.Error{})
		default:
			return nil, errf(Pos{}, "match on %q is missing a case for constructor %q", decl.Name, ctor.Name)
		}
	}

	if opts.TargetVersion.SupportsNativeCase() {
		return uplc.Case{Scrutinee: scrutinee, Branches: branches}, nil
	}
	term := scrutinee
	for _, b := range branches {
		term = uplc.Apply{Fun: term, Arg: b}
	}
	return term, nil
}

// lowerDataMatch implements §4.1's fixed-order Data dispatch: at V4+ a
// native Case in Constr/Map/List/I/B order; at V1-V3 the scrutinee is
// let-bound once so every branch can apply chooseData's matching
// destructor without re-evaluating the scrutinee.
func lowerDataMatch(ctx *Context, opts Options, m sir.Match) (uplc.Term, error) {
	scrutinee, err := lowerNode(ctx, opts, m.Scrutinee)
	if err != nil {
		return nil, err
	}

	branches := make([]uplc.Term, 5)
	covered := make([]bool, 5)
	var wildcard *sir.MatchCase
	for i := range m.Cases {
		c := &m.Cases[i]
		if c.Wildcard {
			wildcard = c
			continue
		}
		tag := dataVariantTags[c.Constructor]
		bodyT, err := lowerNode(ctx, opts, c.Body)
		if err != nil {
			return nil, err
		}
		fields := c.Bindings
		if fields == nil {
			fields = dataVariantFields(c.Constructor)
		}
		branches[tag] = buildBranchFunc(fields, bodyT)
		covered[tag] = true
	}
	names := [5]string{"Constr", "Map", "List", "I", "B"}
	for tag := 0; tag < 5; tag++ {
		if covered[tag] {
			continue
		}
		switch {
		case wildcard != nil:
			bodyT, err := lowerNode(ctx, opts, wildcard.Body)
			if err != nil {
				return nil, err
			}
			branches[tag] = buildBranchFunc(ignoredFieldNames(ctx, len(dataVariantFields(names[tag]))), bodyT)
		case m.Unchecked:
			branches[tag] = buildBranchFunc(ignoredFieldNames(ctx, len(dataVariantFields(names[tag]))), uplc.Error{})
		default:
			return nil, errf(Pos{}, "Data match is missing a case for variant %q", names[tag])
		}
	}

	if opts.TargetVersion.SupportsNativeCase() {
		return uplc.Case{Scrutinee: scrutinee, Branches: branches}, nil
	}

	// V1-V3: let-bind the scrutinee once, then dispatch via chooseData with
	// each branch applying its own destructor to the bound name.
	bound := ctx.FreshName("$data")
	boundVar := uplc.Var{Name: bound}
	chosen := uplc.Apply{
		Fun: uplc.Apply{
			Fun: uplc.Apply{
				Fun: uplc.Apply{
					Fun: uplc.Apply{
						Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.ChooseData}, Arg: boundVar},
						Arg: uplc.Delay{Term: applyDestructor(uplc.UnConstrData, boundVar, branches[0])},
					},
					Arg: uplc.Delay{Term: applyDestructor(uplc.UnMapData, boundVar, branches[1])},
				},
				Arg: uplc.Delay{Term: applyDestructor(uplc.UnListData, boundVar, branches[2])},
			},
			Arg: uplc.Delay{Term: applyDestructor(uplc.UnIData, boundVar, branches[3])},
		},
		Arg: uplc.Delay{Term: applyDestructor(uplc.UnBData, boundVar, branches[4])},
	}
	return uplc.Apply{
		Fun: uplc.LamAbs{Name: bound, Body: uplc.Force{Term: chosen}},
		Arg: scrutinee,
	}, nil
}

// applyDestructor applies the destructor for a Data variant to the bound
// scrutinee, then applies branch (already field-wrapped by buildBranchFunc
// with the parameter names dataVariantFields declares) to the result: the
// (tag, args) pair from unConstrData is split with fstPair/sndPair into the
// branch's two parameters, and every other destructor's (Map, List, I, B)
// single output is applied directly.
func applyDestructor(id uplc.BuiltinId, scrutinee uplc.Term, branch uplc.Term) uplc.Term {
	destructed := uplc.Apply{Fun: uplc.Builtin{Id: id}, Arg: scrutinee}
	switch id {
	case uplc.UnConstrData:
		// destructed : Pair(Integer, List Data) — branch expects (tag, args).
		return uplc.Apply{
			Fun: uplc.Apply{Fun: branch, Arg: uplc.Apply{Fun: uplc.Builtin{Id: uplc.FstPair}, Arg: destructed}},
			Arg: uplc.Apply{Fun: uplc.Builtin{Id: uplc.SndPair}, Arg: destructed},
		}
	default:
		return uplc.Apply{Fun: branch, Arg: destructed}
	}
}

func dataVariantFields(name string) []string {
	switch name {
	case "Constr":
		return []string{"tag", "args"}
	case "Map":
		return []string{"entries"}
	case "List":
		return []string{"elems"}
	case "I":
		return []string{"i"}
	case "B":
		return []string{"b"}
	default:
		return nil
	}
}

// lowerPrimitiveMatch implements §4.1's primitive pattern matching: Bool
// always reduces to a direct IfThenElse/Case on the scrutinee itself (no
// equality builtin exists for Bool); Integer uses a native contiguous Case
// when possible, otherwise — like ByteString and String always — a
// sequential equals-then-IfThenElse chain.
func lowerPrimitiveMatch(ctx *Context, opts Options, m sir.Match) (uplc.Term, error) {
	scrutinee, err := lowerNode(ctx, opts, m.Scrutinee)
	if err != nil {
		return nil, err
	}

	first, ok := m.Cases[0].Constant.(sir.Const)
	if !ok {
		return nil, errf(Pos{}, "match: constant pattern is not a sir.Const")
	}
	switch first.Value.(type) {
	case uplc.ConstBool:
		return lowerBoolMatch(ctx, opts, scrutinee, m)
	case uplc.ConstInteger:
		if opts.TargetVersion.SupportsNativeCase() {
			if term, ok, err := tryNativeIntegerMatch(ctx, opts, scrutinee, m); err != nil {
				return nil, err
			} else if ok {
				return term, nil
			}
		}
		return lowerEqualsChain(ctx, opts, scrutinee, uplc.EqualsInteger, m)
	case uplc.ConstByteString:
		return lowerEqualsChain(ctx, opts, scrutinee, uplc.EqualsByteString, m)
	case uplc.ConstString:
		return lowerEqualsChain(ctx, opts, scrutinee, uplc.EqualsString, m)
	default:
		return nil, errf(Pos{}, "match: unsupported constant pattern type %T", first.Value)
	}
}

func lowerBoolMatch(ctx *Context, opts Options, scrutinee uplc.Term, m sir.Match) (uplc.Term, error) {
	var trueBody, falseBody uplc.Term
	var haveTrue, haveFalse bool
	var wildcardBody uplc.Term
	haveWildcard := false
	for _, c := range m.Cases {
		if c.Wildcard {
			b, err := lowerNode(ctx, opts, c.Body)
			if err != nil {
				return nil, err
			}
			wildcardBody, haveWildcard = b, true
			continue
		}
		cv, ok := c.Constant.(sir.Const)
		if !ok {
			return nil, errf(Pos{}, "match: constant pattern is not a sir.Const")
		}
		b, ok := cv.Value.(uplc.ConstBool)
		if !ok {
			return nil, errf(Pos{}, "match: mixed constant pattern types in one match")
		}
		body, err := lowerNode(ctx, opts, c.Body)
		if err != nil {
			return nil, err
		}
		if b.Value {
			trueBody, haveTrue = body, true
		} else {
			falseBody, haveFalse = body, true
		}
	}
	if !haveTrue {
		if !haveWildcard {
			return nil, errf(Pos{}, "bool match is missing a case for true")
		}
		trueBody = wildcardBody
	}
	if !haveFalse {
		if !haveWildcard {
			return nil, errf(Pos{}, "bool match is missing a case for false")
		}
		falseBody = wildcardBody
	}
	return lowerIfTerms(opts, scrutinee, trueBody, falseBody), nil
}

func tryNativeIntegerMatch(ctx *Context, opts Options, scrutinee uplc.Term, m sir.Match) (uplc.Term, bool, error) {
	type entry struct {
		idx  int
		body uplc.Term
	}
	var entries []entry
	for _, c := range m.Cases {
		if c.Wildcard {
			return nil, false, nil // no catch-all slot in a native integer Case
		}
		cv, ok := c.Constant.(sir.Const)
		if !ok {
			return nil, false, nil
		}
		iv, ok := cv.Value.(uplc.ConstInteger)
		if !ok || !iv.Value.IsInt64() {
			return nil, false, nil
		}
		body, err := lowerNode(ctx, opts, c.Body)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, entry{idx: int(iv.Value.Int64()), body: body})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	for i, e := range entries {
		if e.idx != i {
			return nil, false, nil // not contiguous from zero
		}
	}
	branches := make([]uplc.Term, len(entries))
	for i, e := range entries {
		branches[i] = e.body
	}
	return uplc.Case{Scrutinee: scrutinee, Branches: branches}, true, nil
}

// lowerEqualsChain lowers a constant-pattern match to a sequential
// equals-then-IfThenElse cascade, always valid regardless of version or
// contiguity (spec §4.1's V1-V3 primitive-match rule, reused unconditionally
// for ByteString/String and as the Integer fallback).
func lowerEqualsChain(ctx *Context, opts Options, scrutinee uplc.Term, eq uplc.BuiltinId, m sir.Match) (uplc.Term, error) {
	var fallback uplc.Term = uplc.Error{}
	haveFallback := false
	var cases []sir.MatchCase
	for _, c := range m.Cases {
		if c.Wildcard {
			b, err := lowerNode(ctx, opts, c.Body)
			if err != nil {
				return nil, err
			}
			fallback, haveFallback = b, true
			continue
		}
		cases = append(cases, c)
	}
	if !haveFallback {
		fallback = uplc.Error{}
	}

	term := fallback
	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		cv, ok := c.Constant.(sir.Const)
		if !ok {
			return nil, errf(Pos{}, "match: constant pattern is not a sir.Const")
		}
		constT, ok := cv.Value.(uplc.Constant)
		if !ok {
			return nil, errf(Pos{}, "match: constant pattern does not carry a uplc.Constant")
		}
		body, err := lowerNode(ctx, opts, c.Body)
		if err != nil {
			return nil, err
		}
		eqT := uplc.Apply{Fun: uplc.Apply{Fun: uplc.Builtin{Id: eq}, Arg: scrutinee}, Arg: uplc.Const{Value: constT}}
		term = lowerIfTerms(opts, eqT, body, term)
	}
	return term, nil
}
