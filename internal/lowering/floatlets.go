package lowering

import "github.com/scalus-go/scalus/internal/sir"

// FloatLets is the one required pre-lowering SIR→SIR rewrite (spec §4.1):
// it hoists a non-recursive Let out of an enclosing LamAbs when none of the
// Let's bound values reference the lambda's own parameter, so the binding
// is computed once per closure construction rather than once per call.
// Recursive Lets are never hoisted (their value always references the
// binder being floated, so the safety condition below never holds for
// them, but skipping them explicitly keeps the rewrite obviously safe
// rather than relying on that argument holding in every case).
//
// This does not mutate its input: every case returns a newly built Node.
func FloatLets(n sir.Node) sir.Node {
	switch node := n.(type) {
	case sir.LamAbs:
		return floatLetsInLamAbs(node)
	default:
		return mapChildren(n, FloatLets)
	}
}

func floatLetsInLamAbs(l sir.LamAbs) sir.Node {
	body := FloatLets(l.Body)
	let, ok := body.(sir.Let)
	if !ok || let.Recursive {
		return sir.LamAbs{Name: l.Name, Body: body, TypeParams: l.TypeParams}
	}
	for _, b := range let.Bindings {
		if freeVar(b.Value, l.Name) {
			return sir.LamAbs{Name: l.Name, Body: body, TypeParams: l.TypeParams}
		}
	}
	hoisted := sir.Let{
		Bindings:  let.Bindings,
		Body:      FloatLets(sir.LamAbs{Name: l.Name, Body: let.Body, TypeParams: l.TypeParams}),
		Recursive: false,
	}
	return hoisted
}

// mapChildren rewrites every direct SIR child of n with f, leaving n's own
// shape unchanged; used by FloatLets (and reusable by future SIR→SIR
// passes) to recurse without duplicating the node-shape switch.
func mapChildren(n sir.Node, f func(sir.Node) sir.Node) sir.Node {
	switch node := n.(type) {
	case sir.Var, sir.ExternalVar, sir.Const, sir.Builtin, sir.Error:
		return n
	case sir.LamAbs:
		return sir.LamAbs{Name: node.Name, Body: f(node.Body), TypeParams: node.TypeParams}
	case sir.Apply:
		return sir.Apply{Fun: f(node.Fun), Arg: f(node.Arg)}
	case sir.Let:
		bindings := make([]sir.Binding, len(node.Bindings))
		for i, b := range node.Bindings {
			bindings[i] = sir.Binding{Name: b.Name, Value: f(b.Value)}
		}
		return sir.Let{Bindings: bindings, Body: f(node.Body), Recursive: node.Recursive}
	case sir.Match:
		cases := make([]sir.MatchCase, len(node.Cases))
		for i, c := range node.Cases {
			cases[i] = sir.MatchCase{
				Constructor: c.Constructor,
				Bindings:    c.Bindings,
				Constant:    constOrNil(c.Constant, f),
				Wildcard:    c.Wildcard,
				Body:        f(c.Body),
			}
		}
		return sir.Match{Scrutinee: f(node.Scrutinee), Cases: cases, Unchecked: node.Unchecked}
	case sir.Constr:
		args := make([]sir.Node, len(node.Args))
		for i, a := range node.Args {
			args[i] = f(a)
		}
		return sir.Constr{Name: node.Name, Decl: node.Decl, Args: args}
	case sir.Select:
		return sir.Select{Scrutinee: f(node.Scrutinee), Field: node.Field, Type: node.Type}
	case sir.IfThenElse:
		return sir.IfThenElse{Cond: f(node.Cond), Then: f(node.Then), Else: f(node.Else)}
	case sir.And:
		return sir.And{Left: f(node.Left), Right: f(node.Right)}
	case sir.Or:
		return sir.Or{Left: f(node.Left), Right: f(node.Right)}
	case sir.Not:
		return sir.Not{Operand: f(node.Operand)}
	case sir.Cast:
		return sir.Cast{Operand: f(node.Operand), Type: node.Type}
	case sir.Decl:
		return sir.Decl{Decl: node.Decl, Body: f(node.Body)}
	default:
		return n
	}
}

func constOrNil(c sir.Node, f func(sir.Node) sir.Node) sir.Node {
	if c == nil {
		return nil
	}
	return f(c)
}

// freeVar reports whether name occurs free (not shadowed by an enclosing
// binder of the same name) anywhere in n.
func freeVar(n sir.Node, name string) bool {
	switch node := n.(type) {
	case sir.Var:
		return node.Name == name
	case sir.ExternalVar, sir.Const, sir.Builtin, sir.Error:
		return false
	case sir.LamAbs:
		return node.Name != name && freeVar(node.Body, name)
	case sir.Apply:
		return freeVar(node.Fun, name) || freeVar(node.Arg, name)
	case sir.Let:
		for _, b := range node.Bindings {
			if freeVar(b.Value, name) {
				return true
			}
		}
		for _, b := range node.Bindings {
			if b.Name == name {
				return false
			}
		}
		return freeVar(node.Body, name)
	case sir.Match:
		if freeVar(node.Scrutinee, name) {
			return true
		}
		for _, c := range node.Cases {
			shadowed := false
			for _, b := range c.Bindings {
				if b == name {
					shadowed = true
				}
			}
			if !shadowed && freeVar(c.Body, name) {
				return true
			}
		}
		return false
	case sir.Constr:
		for _, a := range node.Args {
			if freeVar(a, name) {
				return true
			}
		}
		return false
	case sir.Select:
		return freeVar(node.Scrutinee, name)
	case sir.IfThenElse:
		return freeVar(node.Cond, name) || freeVar(node.Then, name) || freeVar(node.Else, name)
	case sir.And:
		return freeVar(node.Left, name) || freeVar(node.Right, name)
	case sir.Or:
		return freeVar(node.Left, name) || freeVar(node.Right, name)
	case sir.Not:
		return freeVar(node.Operand, name)
	case sir.Cast:
		return freeVar(node.Operand, name)
	case sir.Decl:
		return freeVar(node.Body, name)
	default:
		return false
	}
}
