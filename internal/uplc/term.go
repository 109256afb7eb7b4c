// Package uplc implements the Untyped Plutus Core term model (spec §3.2):
// a minimal lambda calculus with typed constants and a fixed, versioned set
// of builtin functions.
package uplc

import "fmt"

// BuiltinId names one of the fixed set of primitive functions a Builtin
// term can reference. The identity and versioning of builtins lives here,
// in the term model; their semantics and cost formulas live in
// internal/builtin, which imports uplc for Constant/Term — this package
// never imports internal/builtin, avoiding a cycle.
type BuiltinId int

const (
	AddInteger BuiltinId = iota
	SubtractInteger
	MultiplyInteger
	DivideInteger
	QuotientInteger
	RemainderInteger
	ModInteger
	EqualsInteger
	LessThanInteger
	LessThanEqualsInteger

	AppendByteString
	ConsByteString
	SliceByteString
	LengthOfByteString
	IndexByteString
	EqualsByteString
	LessThanByteString
	LessThanEqualsByteString

	AppendString
	EqualsString
	EncodeUtf8
	DecodeUtf8

	Sha2_256
	Sha3_256
	Blake2b_224
	Blake2b_256

	IfThenElse
	ChooseUnit
	Trace

	FstPair
	SndPair

	ChooseList
	MkCons
	HeadList
	TailList
	NullList

	ChooseData
	ConstrData
	MapData
	ListData
	IData
	BData
	UnConstrData
	UnMapData
	UnListData
	UnIData
	UnBData
	EqualsData
	SerialiseData
	MkPairData
	MkNilData
	MkNilPairData

	Bls12_381_G1_add
	Bls12_381_G1_neg
	Bls12_381_G1_scalarMul
	Bls12_381_G1_equal
	Bls12_381_G1_compress
	Bls12_381_G1_uncompress
	Bls12_381_G1_hashToGroup
	Bls12_381_G2_add
	Bls12_381_G2_neg
	Bls12_381_G2_scalarMul
	Bls12_381_G2_equal
	Bls12_381_G2_compress
	Bls12_381_G2_uncompress
	Bls12_381_G2_hashToGroup
	Bls12_381_millerLoop
	Bls12_381_mulMlResult
	Bls12_381_finalVerify

	builtinIdCount
)

var builtinNames = map[BuiltinId]string{
	AddInteger: "addInteger", SubtractInteger: "subtractInteger", MultiplyInteger: "multiplyInteger",
	DivideInteger: "divideInteger", QuotientInteger: "quotientInteger", RemainderInteger: "remainderInteger",
	ModInteger: "modInteger", EqualsInteger: "equalsInteger", LessThanInteger: "lessThanInteger",
	LessThanEqualsInteger: "lessThanEqualsInteger",

	AppendByteString: "appendByteString", ConsByteString: "consByteString", SliceByteString: "sliceByteString",
	LengthOfByteString: "lengthOfByteString", IndexByteString: "indexByteString", EqualsByteString: "equalsByteString",
	LessThanByteString: "lessThanByteString", LessThanEqualsByteString: "lessThanEqualsByteString",

	AppendString: "appendString", EqualsString: "equalsString", EncodeUtf8: "encodeUtf8", DecodeUtf8: "decodeUtf8",

	Sha2_256: "sha2_256", Sha3_256: "sha3_256", Blake2b_224: "blake2b_224", Blake2b_256: "blake2b_256",

	IfThenElse: "ifThenElse", ChooseUnit: "chooseUnit", Trace: "trace",

	FstPair: "fstPair", SndPair: "sndPair",

	ChooseList: "chooseList", MkCons: "mkCons", HeadList: "headList", TailList: "tailList", NullList: "nullList",

	ChooseData: "chooseData", ConstrData: "constrData", MapData: "mapData", ListData: "listData",
	IData: "iData", BData: "bData", UnConstrData: "unConstrData", UnMapData: "unMapData",
	UnListData: "unListData", UnIData: "unIData", UnBData: "unBData", EqualsData: "equalsData",
	SerialiseData: "serialiseData", MkPairData: "mkPairData", MkNilData: "mkNilData", MkNilPairData: "mkNilPairData",

	Bls12_381_G1_add: "bls12_381_G1_add", Bls12_381_G1_neg: "bls12_381_G1_neg",
	Bls12_381_G1_scalarMul: "bls12_381_G1_scalarMul", Bls12_381_G1_equal: "bls12_381_G1_equal",
	Bls12_381_G1_compress: "bls12_381_G1_compress", Bls12_381_G1_uncompress: "bls12_381_G1_uncompress",
	Bls12_381_G1_hashToGroup: "bls12_381_G1_hashToGroup",
	Bls12_381_G2_add:        "bls12_381_G2_add", Bls12_381_G2_neg: "bls12_381_G2_neg",
	Bls12_381_G2_scalarMul: "bls12_381_G2_scalarMul", Bls12_381_G2_equal: "bls12_381_G2_equal",
	Bls12_381_G2_compress: "bls12_381_G2_compress", Bls12_381_G2_uncompress: "bls12_381_G2_uncompress",
	Bls12_381_G2_hashToGroup: "bls12_381_G2_hashToGroup",
	Bls12_381_millerLoop:     "bls12_381_millerLoop", Bls12_381_mulMlResult: "bls12_381_mulMlResult",
	Bls12_381_finalVerify: "bls12_381_finalVerify",
}

func (id BuiltinId) String() string {
	if name, ok := builtinNames[id]; ok {
		return name
	}
	return fmt.Sprintf("builtin(%d)", int(id))
}

var builtinIdsByName map[string]BuiltinId

func init() {
	builtinIdsByName = make(map[string]BuiltinId, len(builtinNames))
	for id, name := range builtinNames {
		builtinIdsByName[name] = id
	}
}

// BuiltinIdByName resolves a builtin's surface name (as it appears in SIR
// or in a UPLC program's textual/flat encoding) to its BuiltinId.
func BuiltinIdByName(name string) (BuiltinId, bool) {
	id, ok := builtinIdsByName[name]
	return id, ok
}

// Term is the closed UPLC expression sum (spec §3.2).
type Term interface {
	isTerm()
	String() string
}

// Var is a variable reference. Index is the de Bruijn index resolved by a
// name-resolution pass; Name is kept only for debugging/pretty-printing.
type Var struct {
	Name  string
	Index int
}

// LamAbs is a single-argument lambda; curried multi-arg functions are
// nested LamAbs nodes.
type LamAbs struct {
	Name string
	Body Term
}

// Apply is strict application: the argument is reduced to a value before
// substitution.
type Apply struct {
	Fun Term
	Arg Term
}

// Force resumes a Delay'd computation, or consumes one pending force token
// of a not-yet-saturated builtin.
type Force struct{ Term Term }

// Delay produces a thunk value that must be Force'd to proceed.
type Delay struct{ Term Term }

// Const is a typed UPLC constant.
type Const struct{ Value Constant }

// Builtin references one of the fixed set of primitive functions.
type Builtin struct{ Id BuiltinId }

// Error is immediate, unconditional failure.
type Error struct{}

// Case dispatches on a Constr-valued (or primitive-valued, per §4.1)
// scrutinee to one of an ordered list of branches. Available starting at
// the protocol version that supports native sum-of-products (spec §3.2).
type Case struct {
	Scrutinee Term
	Branches  []Term
}

// Constr builds a tagged n-ary tuple value, native starting at the same
// version as Case.
type Constr struct {
	Tag  uint64
	Args []Term
}

func (Var) isTerm()     {}
func (LamAbs) isTerm()  {}
func (Apply) isTerm()   {}
func (Force) isTerm()   {}
func (Delay) isTerm()   {}
func (Const) isTerm()   {}
func (Builtin) isTerm() {}
func (Error) isTerm()   {}
func (Case) isTerm()    {}
func (Constr) isTerm()  {}

func (v Var) String() string    { return v.Name }
func (l LamAbs) String() string { return fmt.Sprintf("(lam %s %s)", l.Name, l.Body) }
func (a Apply) String() string  { return fmt.Sprintf("[%s %s]", a.Fun, a.Arg) }
func (f Force) String() string  { return fmt.Sprintf("(force %s)", f.Term) }
func (d Delay) String() string  { return fmt.Sprintf("(delay %s)", d.Term) }
func (c Const) String() string  { return fmt.Sprintf("(con %s)", c.Value) }
func (b Builtin) String() string {
	return fmt.Sprintf("(builtin %s)", b.Id)
}
func (Error) String() string { return "(error)" }
func (c Case) String() string {
	return fmt.Sprintf("(case %s %v)", c.Scrutinee, c.Branches)
}
func (c Constr) String() string {
	return fmt.Sprintf("(constr %d %v)", c.Tag, c.Args)
}

// ResolveDeBruijn walks a term built with only Name-addressed Vars (as
// produced by lowering) and fills in de Bruijn indices relative to an
// initially empty lexical scope. It does not mutate its input: it returns a
// new tree, matching the "lowering never mutates its input" invariant
// (spec §4.1).
func ResolveDeBruijn(t Term) Term {
	return resolveScope(t, nil)
}

func resolveScope(t Term, scope []string) Term {
	switch n := t.(type) {
	case Var:
		// A nameless Var with an already-resolved positive index (as
		// produced by internal/flat's decoder, which has no name to
		// restore) is left untouched: name-based re-resolution has
		// nothing to match it against and would otherwise silently
		// discard the index it already carries.
		if n.Name == "" && n.Index > 0 {
			return n
		}
		for i := len(scope) - 1; i >= 0; i-- {
			if scope[i] == n.Name {
				return Var{n.Name, len(scope) - i}
			}
		}
		return Var{n.Name, -1}
	case LamAbs:
		return LamAbs{n.Name, resolveScope(n.Body, append(append([]string{}, scope...), n.Name))}
	case Apply:
		return Apply{resolveScope(n.Fun, scope), resolveScope(n.Arg, scope)}
	case Force:
		return Force{resolveScope(n.Term, scope)}
	case Delay:
		return Delay{resolveScope(n.Term, scope)}
	case Case:
		branches := make([]Term, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = resolveScope(b, scope)
		}
		return Case{resolveScope(n.Scrutinee, scope), branches}
	case Constr:
		args := make([]Term, len(n.Args))
		for i, a := range n.Args {
			args[i] = resolveScope(a, scope)
		}
		return Constr{n.Tag, args}
	default:
		return t
	}
}
