// Package sir implements the typed surface intermediate representation
// lowering starts from (spec §3.3). Node mirrors the teacher's own AST
// pattern for internal/uplc.Term: a closed Go interface with one marker
// method, implemented by one small struct per constructor.
package sir

import "fmt"

// Node is the closed SIR expression sum.
type Node interface {
	isNode()
	String() string
}

// Var is a reference to a name bound by an enclosing LamAbs or Let.
type Var struct {
	Name string
}

// ExternalVar is a reference to a name resolved outside the current
// compilation unit (e.g. a script's own validator entry point called from
// elsewhere, or a linked library function).
type ExternalVar struct {
	Module string
	Name   string
}

// LamAbs is a single-argument lambda carrying the names of any type
// parameters it closes over — these do not affect lowering (SIR is erased
// to UPLC, which is untyped) but are retained for diagnostics.
type LamAbs struct {
	Name       string
	Body       Node
	TypeParams []string
}

// Apply is function application.
type Apply struct {
	Fun Node
	Arg Node
}

// Binding is one name/value pair of a Let.
type Binding struct {
	Name  string
	Value Node
}

// Let introduces one or more bindings in scope of Body. Recursive is true
// only for a single self-referential binding (mutual recursion among
// multiple bindings is rejected by the lowering pass, never by this type).
type Let struct {
	Bindings  []Binding
	Body      Node
	Recursive bool
}

// MatchCase is one arm of a Match: exactly one of Constructor, Constant, or
// Wildcard is set, matching the three case shapes spec §3.3 allows.
type MatchCase struct {
	// Constructor, when non-empty, names the DataDecl constructor this case
	// matches; Bindings names the constructor's fields in declared order.
	Constructor string
	Bindings    []string

	// Constant, when non-nil, is a constant pattern (only valid for
	// primitive scrutinee types).
	Constant Node

	// Wildcard marks a catch-all case; if present it must be the last case
	// in the Match's Cases slice.
	Wildcard bool

	Body Node
}

// Match dispatches on Scrutinee's runtime shape. Unchecked marks a match
// that is permitted to omit constructors of the scrutinee's declaration;
// the lowering pass synthesizes an Error branch for the gap.
type Match struct {
	Scrutinee Node
	Cases     []MatchCase
	Unchecked bool
}

// Constr builds a value of the named constructor belonging to Decl.
type Constr struct {
	Name string
	Decl *DataDecl
	Args []Node
}

// Select projects one field out of a single-constructor value.
type Select struct {
	Scrutinee Node
	Field     string
	Type      string
}

// IfThenElse, And, Or, Not are boolean connectives; lowering desugars And/Or
// and Not into IfThenElse per spec §4.1.
type IfThenElse struct {
	Cond, Then, Else Node
}

type And struct{ Left, Right Node }
type Or struct{ Left, Right Node }
type Not struct{ Operand Node }

// Cast is a type-erasure marker: it carries no runtime effect and lowers to
// its Operand unchanged. Retained in the tree purely so a front end can
// record where a narrowing/widening coercion was type-checked.
type Cast struct {
	Operand Node
	Type    string
}

// Const is a literal constant, reusing the UPLC constant representation
// directly since SIR and UPLC share the same constant type universe.
type Const struct {
	Value ConstantLike
}

// ConstantLike is implemented by internal/uplc.Constant; kept as a narrow
// interface here (rather than importing internal/uplc directly) so this
// package has no dependency on the lowering target, only on the shape
// lowering needs: a String method for diagnostics.
type ConstantLike interface {
	String() string
}

// Builtin references one of the fixed primitive functions by name; the
// lowering pass resolves the name to a uplc.BuiltinId.
type Builtin struct {
	Name string
}

// Error is an explicit failure with a diagnostic message.
type Error struct {
	Message string
}

// ConstructorDecl is one constructor of a DataDecl: a name plus its ordered
// field names (types are not tracked here — SIR is erased before reaching
// the untyped lowering target).
type ConstructorDecl struct {
	Name   string
	Fields []string
}

// DataDecl introduces a constructor family. Tag order (index into
// Constructors) is the Scott/Constr tag order used throughout lowering —
// spec §8's "strict ascending indices" property is checked against this
// order.
type DataDecl struct {
	Name         string
	Constructors []ConstructorDecl
}

// IndexOf returns the declared tag of the named constructor, or -1 if no
// constructor of that name exists.
func (d *DataDecl) IndexOf(name string) int {
	for i, c := range d.Constructors {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Decl brings a DataDecl into scope for Body; the declaration is visible
// throughout Body only, never escaping it.
type Decl struct {
	Decl *DataDecl
	Body Node
}

func (Var) isNode()         {}
func (ExternalVar) isNode() {}
func (LamAbs) isNode()      {}
func (Apply) isNode()       {}
func (Let) isNode()         {}
func (Match) isNode()       {}
func (Constr) isNode()      {}
func (Select) isNode()      {}
func (IfThenElse) isNode()  {}
func (And) isNode()         {}
func (Or) isNode()          {}
func (Not) isNode()         {}
func (Cast) isNode()        {}
func (Const) isNode()       {}
func (Builtin) isNode()     {}
func (Error) isNode()       {}
func (Decl) isNode()        {}

func (v Var) String() string         { return v.Name }
func (v ExternalVar) String() string { return fmt.Sprintf("%s.%s", v.Module, v.Name) }
func (l LamAbs) String() string      { return fmt.Sprintf("(lam %s %s)", l.Name, l.Body) }
func (a Apply) String() string       { return fmt.Sprintf("[%s %s]", a.Fun, a.Arg) }
func (l Let) String() string {
	if l.Recursive {
		return fmt.Sprintf("(letrec %s in %s)", l.Bindings, l.Body)
	}
	return fmt.Sprintf("(let %s in %s)", l.Bindings, l.Body)
}
func (m Match) String() string      { return fmt.Sprintf("(match %s with %d cases)", m.Scrutinee, len(m.Cases)) }
func (c Constr) String() string     { return fmt.Sprintf("(constr %s %s)", c.Name, c.Args) }
func (s Select) String() string     { return fmt.Sprintf("(select %s.%s)", s.Scrutinee, s.Field) }
func (i IfThenElse) String() string { return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else) }
func (a And) String() string        { return fmt.Sprintf("(and %s %s)", a.Left, a.Right) }
func (o Or) String() string         { return fmt.Sprintf("(or %s %s)", o.Left, o.Right) }
func (n Not) String() string        { return fmt.Sprintf("(not %s)", n.Operand) }
func (c Cast) String() string       { return fmt.Sprintf("(cast %s :: %s)", c.Operand, c.Type) }
func (c Const) String() string      { return fmt.Sprintf("(con %s)", c.Value) }
func (b Builtin) String() string    { return fmt.Sprintf("(builtin %s)", b.Name) }
func (e Error) String() string      { return fmt.Sprintf("(error %q)", e.Message) }
func (d Decl) String() string       { return fmt.Sprintf("(decl %s in %s)", d.Decl.Name, d.Body) }
