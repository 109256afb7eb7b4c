package lowering

import (
	"testing"

	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cekequiv"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

var bigBudget = cost.ExBudget{Mem: 10_000_000, Cpu: 10_000_000}

func lowerAndRun(t *testing.T, node sir.Node, opts Options) cek.Result {
	t.Helper()
	term, err := Lower(node, opts)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	report := cekequiv.Check(term, cost.DefaultMachineParams(), bigBudget)
	if !report.Equal() {
		t.Fatalf("engines disagree: %v", report.Mismatches)
	}
	return report.Results[cekequiv.EngineCEK]
}

func wantInt(t *testing.T, res cek.Result, want int64) {
	t.Helper()
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
	}
	c, ok := res.Term.(uplc.Const)
	if !ok {
		t.Fatalf("expected Const result, got %T", res.Term)
	}
	if !uplc.ConstantsEqual(c.Value, uplc.NewInt(want)) {
		t.Errorf("result = %s, want %d", c.Value, want)
	}
}

func constNode(v uplc.Constant) sir.Const { return sir.Const{Value: v} }

func TestLowerVarLamApply(t *testing.T) {
	identity := sir.LamAbs{Name: "x", Body: sir.Var{Name: "x"}}
	applied := sir.Apply{Fun: identity, Arg: constNode(uplc.NewInt(7))}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, applied, Options{TargetVersion: v})
		wantInt(t, res, 7)
	}
}

// TestLowerLetEvaluationOrder confirms the first-declared binding of a
// non-recursive, multi-binding Let is evaluated first, using trace to
// observe the order directly.
func TestLowerLetEvaluationOrder(t *testing.T) {
	traceOf := func(msg string, v int64) sir.Node {
		return sir.Apply{
			Fun: sir.Apply{Fun: sir.Builtin{Name: "trace"}, Arg: constNode(uplc.ConstString{Value: msg})},
			Arg: constNode(uplc.NewInt(v)),
		}
	}
	let := sir.Let{
		Bindings: []sir.Binding{
			{Name: "a", Value: traceOf("a", 1)},
			{Name: "b", Value: traceOf("b", 2)},
		},
		Body: sir.Apply{
			Fun: sir.Apply{Fun: sir.Builtin{Name: "addInteger"}, Arg: sir.Var{Name: "a"}},
			Arg: sir.Var{Name: "b"},
		},
	}
	term, err := Lower(let, Options{TargetVersion: V4})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	res := cek.NewMachine(cost.DefaultMachineParams(), bigBudget).Run(term)
	wantInt(t, res, 3)
	if len(res.Traces) != 2 || res.Traces[0] != "a" || res.Traces[1] != "b" {
		t.Errorf("traces = %v, want [a b]", res.Traces)
	}
}

// TestLowerRecursiveLetFactorial exercises the Z-combinator path end to end
// at both a Scott-encoding version and a native-Case version.
func TestLowerRecursiveLetFactorial(t *testing.T) {
	// letrec fac = \n -> if n == 0 then 1 else n * fac (n - 1) in fac 5
	fac := sir.Let{
		Recursive: true,
		Bindings: []sir.Binding{{
			Name: "fac",
			Value: sir.LamAbs{Name: "n", Body: sir.IfThenElse{
				Cond: sir.Apply{
					Fun: sir.Apply{Fun: sir.Builtin{Name: "equalsInteger"}, Arg: sir.Var{Name: "n"}},
					Arg: constNode(uplc.NewInt(0)),
				},
				Then: constNode(uplc.NewInt(1)),
				Else: sir.Apply{
					Fun: sir.Apply{Fun: sir.Builtin{Name: "multiplyInteger"}, Arg: sir.Var{Name: "n"}},
					Arg: sir.Apply{
						Fun: sir.Var{Name: "fac"},
						Arg: sir.Apply{
							Fun: sir.Apply{Fun: sir.Builtin{Name: "subtractInteger"}, Arg: sir.Var{Name: "n"}},
							Arg: constNode(uplc.NewInt(1)),
						},
					},
				},
			}},
		}},
		Body: sir.Apply{Fun: sir.Var{Name: "fac"}, Arg: constNode(uplc.NewInt(5))},
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, fac, Options{TargetVersion: v})
		wantInt(t, res, 120)
	}
}

func listDecl() *sir.DataDecl {
	return &sir.DataDecl{
		Name: "List",
		Constructors: []sir.ConstructorDecl{
			{Name: "Nil", Fields: nil},
			{Name: "Cons", Fields: []string{"head", "tail"}},
		},
	}
}

// TestLowerADTMatchSumOfLength builds a three-element Cons list and sums it
// via recursive matching, checking Scott and native Case agree.
func TestLowerADTMatchSumOfLength(t *testing.T) {
	decl := listDecl()
	nilV := sir.Constr{Name: "Nil", Decl: decl}
	cons := func(h int64, tail sir.Node) sir.Node {
		return sir.Constr{Name: "Cons", Decl: decl, Args: []sir.Node{constNode(uplc.NewInt(h)), tail}}
	}
	list := cons(1, cons(2, cons(3, nilV)))

	sumRec := sir.Let{
		Recursive: true,
		Bindings: []sir.Binding{{
			Name: "sum",
			Value: sir.LamAbs{Name: "xs", Body: sir.Match{
				Scrutinee: sir.Var{Name: "xs"},
				Cases: []sir.MatchCase{
					{Constructor: "Nil", Body: constNode(uplc.NewInt(0))},
					{Constructor: "Cons", Bindings: []string{"head", "tail"}, Body: sir.Apply{
						Fun: sir.Apply{Fun: sir.Builtin{Name: "addInteger"}, Arg: sir.Var{Name: "head"}},
						Arg: sir.Apply{Fun: sir.Var{Name: "sum"}, Arg: sir.Var{Name: "tail"}},
					}},
				},
			}},
		}},
		Body: sir.Apply{Fun: sir.Var{Name: "sum"}, Arg: list},
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, sir.Decl{Decl: decl, Body: sumRec}, Options{TargetVersion: v})
		wantInt(t, res, 6)
	}
}

// TestLowerADTMatchWildcardAndUnchecked confirms a wildcard case covers
// every unlisted constructor and an Unchecked match synthesizes an Error
// branch instead.
func TestLowerADTMatchWildcardAndUnchecked(t *testing.T) {
	decl := listDecl()
	consList := sir.Constr{Name: "Cons", Decl: decl, Args: []sir.Node{constNode(uplc.NewInt(9)), sir.Constr{Name: "Nil", Decl: decl}}}

	wildcardMatch := sir.Decl{Decl: decl, Body: sir.Match{
		Scrutinee: consList,
		Cases: []sir.MatchCase{
			{Constructor: "Nil", Body: constNode(uplc.NewInt(0))},
			{Wildcard: true, Body: constNode(uplc.NewInt(42))},
		},
	}}
	res := lowerAndRun(t, wildcardMatch, Options{TargetVersion: V4})
	wantInt(t, res, 42)

	uncheckedMatch := sir.Decl{Decl: decl, Body: sir.Match{
		Scrutinee: sir.Constr{Name: "Nil", Decl: decl},
		Cases:     []sir.MatchCase{{Constructor: "Cons", Bindings: []string{"head", "tail"}, Body: constNode(uplc.NewInt(1))}},
		Unchecked: true,
	}}
	term, err := Lower(uncheckedMatch, Options{TargetVersion: V4})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	res2 := cek.NewMachine(cost.DefaultMachineParams(), bigBudget).Run(term)
	if res2.Success {
		t.Fatalf("expected the synthesized Nil branch to Error, got success %v", res2.Term)
	}
	if res2.FailureKind != cek.UserError {
		t.Errorf("failure kind = %s, want UserError", res2.FailureKind)
	}
}

// TestLowerDataMatch exercises §4.1's fixed Constr/Map/List/I/B dispatch
// order at both a Scott-style version (chooseData + Delay/Force) and a
// native-Case version — the exact path that exposed the structural-builtin
// argument-typing bug during lowering.
func TestLowerDataMatch(t *testing.T) {
	scrut := constNode(uplc.ConstData{Value: data.NewI(99)})
	m := sir.Match{
		Scrutinee: scrut,
		Cases: []sir.MatchCase{
			{Constructor: "I", Bindings: []string{"i"}, Body: sir.Var{Name: "i"}},
			{Wildcard: true, Body: constNode(uplc.NewInt(-1))},
		},
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, m, Options{TargetVersion: v})
		wantInt(t, res, 99)
	}
}

func TestLowerBoolMatch(t *testing.T) {
	m := sir.Match{
		Scrutinee: constNode(uplc.ConstBool{Value: true}),
		Cases: []sir.MatchCase{
			{Constant: constNode(uplc.ConstBool{Value: true}), Body: constNode(uplc.NewInt(1))},
			{Constant: constNode(uplc.ConstBool{Value: false}), Body: constNode(uplc.NewInt(0))},
		},
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, m, Options{TargetVersion: v})
		wantInt(t, res, 1)
	}
}

// TestLowerIntegerMatchContiguousUsesNativeCase confirms contiguous,
// wildcard-free integer patterns take the native Case fast path at V4+,
// and that both versions still agree on the evaluated result.
func TestLowerIntegerMatchContiguousUsesNativeCase(t *testing.T) {
	m := sir.Match{
		Scrutinee: constNode(uplc.NewInt(1)),
		Cases: []sir.MatchCase{
			{Constant: constNode(uplc.NewInt(0)), Body: constNode(uplc.NewInt(100))},
			{Constant: constNode(uplc.NewInt(1)), Body: constNode(uplc.NewInt(200))},
			{Constant: constNode(uplc.NewInt(2)), Body: constNode(uplc.NewInt(300))},
		},
	}
	termV4, err := Lower(m, Options{TargetVersion: V4})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if _, ok := termV4.(uplc.Case); !ok {
		t.Errorf("expected top-level native Case for contiguous integer match at V4, got %T", termV4)
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, m, Options{TargetVersion: v})
		wantInt(t, res, 200)
	}
}

// TestLowerIntegerMatchWithWildcardFallsBackToEqualsChain confirms a
// wildcard case (which native integer Case cannot express) still produces
// a correct result by falling back to the equals/IfThenElse cascade.
func TestLowerIntegerMatchWithWildcardFallsBackToEqualsChain(t *testing.T) {
	m := sir.Match{
		Scrutinee: constNode(uplc.NewInt(7)),
		Cases: []sir.MatchCase{
			{Constant: constNode(uplc.NewInt(0)), Body: constNode(uplc.NewInt(100))},
			{Wildcard: true, Body: constNode(uplc.NewInt(-1))},
		},
	}
	for _, v := range []Version{V1, V4} {
		res := lowerAndRun(t, m, Options{TargetVersion: v})
		wantInt(t, res, -1)
	}
}

func TestLowerStringAndByteStringMatch(t *testing.T) {
	strMatch := sir.Match{
		Scrutinee: constNode(uplc.ConstString{Value: "b"}),
		Cases: []sir.MatchCase{
			{Constant: constNode(uplc.ConstString{Value: "a"}), Body: constNode(uplc.NewInt(1))},
			{Constant: constNode(uplc.ConstString{Value: "b"}), Body: constNode(uplc.NewInt(2))},
			{Wildcard: true, Body: constNode(uplc.NewInt(-1))},
		},
	}
	bsMatch := sir.Match{
		Scrutinee: constNode(uplc.ConstByteString{Value: []byte{0xAB}}),
		Cases: []sir.MatchCase{
			{Constant: constNode(uplc.ConstByteString{Value: []byte{0xAB}}), Body: constNode(uplc.NewInt(42))},
			{Wildcard: true, Body: constNode(uplc.NewInt(-1))},
		},
	}
	for _, v := range []Version{V1, V4} {
		wantInt(t, lowerAndRun(t, strMatch, Options{TargetVersion: v}), 2)
		wantInt(t, lowerAndRun(t, bsMatch, Options{TargetVersion: v}), 42)
	}
}

// TestLowerBooleanConnectives checks And/Or/Not desugaring produces the
// expected truth table at both a Scott-encoding and a native-Case version.
func TestLowerBooleanConnectives(t *testing.T) {
	b := func(v bool) sir.Node { return constNode(uplc.ConstBool{Value: v}) }
	cases := []struct {
		name string
		node sir.Node
		want bool
	}{
		{"and-tt", sir.And{Left: b(true), Right: b(true)}, true},
		{"and-tf", sir.And{Left: b(true), Right: b(false)}, false},
		{"or-ff", sir.Or{Left: b(false), Right: b(false)}, false},
		{"or-ft", sir.Or{Left: b(false), Right: b(true)}, true},
		{"not-t", sir.Not{Operand: b(true)}, false},
		{"not-f", sir.Not{Operand: b(false)}, true},
	}
	for _, c := range cases {
		for _, v := range []Version{V1, V4} {
			t.Run(c.name, func(t *testing.T) {
				res := lowerAndRun(t, c.node, Options{TargetVersion: v})
				if !res.Success {
					t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
				}
				got, ok := res.Term.(uplc.Const).Value.(uplc.ConstBool)
				if !ok {
					t.Fatalf("expected a Const bool, got %T", res.Term)
				}
				if got.Value != c.want {
					t.Errorf("result = %v, want %v", got.Value, c.want)
				}
			})
		}
	}
}

func TestCheckStrictlyAscending(t *testing.T) {
	if _, ok := CheckStrictlyAscending([]int{0, 1, 2, 5}); !ok {
		t.Errorf("expected [0 1 2 5] to be strictly ascending")
	}
	if dup, ok := CheckStrictlyAscending([]int{0, 1, 1, 2}); ok || dup != 1 {
		t.Errorf("expected a duplicate-index failure reporting 1, got dup=%d ok=%v", dup, ok)
	}
	if _, ok := CheckStrictlyAscending([]int{3, 2}); ok {
		t.Errorf("expected out-of-order indices to fail")
	}
}

// TestLowerRejectsMutualRecursion confirms a recursive Let naming more than
// one binding is a compile-time error, not a runtime one.
func TestLowerRejectsMutualRecursion(t *testing.T) {
	let := sir.Let{
		Recursive: true,
		Bindings: []sir.Binding{
			{Name: "a", Value: constNode(uplc.NewInt(1))},
			{Name: "b", Value: constNode(uplc.NewInt(2))},
		},
		Body: sir.Var{Name: "a"},
	}
	_, err := Lower(let, Options{TargetVersion: V4})
	if err == nil {
		t.Fatal("expected an error for a mutually recursive let")
	}
	if _, ok := err.(*CompileError); !ok {
		t.Errorf("expected a *CompileError, got %T", err)
	}
}

// TestVersionEquivalence is spec §8's "version equivalence" property: the
// same SIR program lowered at every supported version must evaluate to the
// same observable result.
func TestVersionEquivalence(t *testing.T) {
	decl := listDecl()
	list := sir.Constr{Name: "Cons", Decl: decl, Args: []sir.Node{
		constNode(uplc.NewInt(10)),
		sir.Constr{Name: "Cons", Decl: decl, Args: []sir.Node{constNode(uplc.NewInt(20)), sir.Constr{Name: "Nil", Decl: decl}}},
	}}
	prog := sir.Decl{Decl: decl, Body: sir.Match{
		Scrutinee: list,
		Cases: []sir.MatchCase{
			{Constructor: "Nil", Body: constNode(uplc.NewInt(0))},
			{Constructor: "Cons", Bindings: []string{"head", "tail"}, Body: sir.Var{Name: "head"}},
		},
	}}
	var results []cek.Result
	for _, v := range []Version{V1, V2, V3, V4, V5} {
		results = append(results, lowerAndRun(t, prog, Options{TargetVersion: v}))
	}
	for i := 1; i < len(results); i++ {
		if !results[i].Success || !results[0].Success {
			t.Fatalf("expected success at every version, got %v", results)
		}
		if !uplc.ConstantsEqual(results[i].Term.(uplc.Const).Value, results[0].Term.(uplc.Const).Value) {
			t.Errorf("version %d disagrees with version 1: %s != %s", i, results[i].Term, results[0].Term)
		}
	}
}
