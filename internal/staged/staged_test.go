package staged

import (
	"testing"

	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

func addTwoThree() uplc.Term {
	body := uplc.Apply{
		Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.AddInteger}, Arg: uplc.Var{Name: "a"}},
		Arg: uplc.Var{Name: "b"},
	}
	lam := uplc.LamAbs{Name: "a", Body: uplc.LamAbs{Name: "b", Body: body}}
	return uplc.Apply{Fun: uplc.Apply{Fun: lam, Arg: uplc.Const{Value: uplc.NewInt(2)}}, Arg: uplc.Const{Value: uplc.NewInt(3)}}
}

func traceTerm(msg string, rest uplc.Term) uplc.Term {
	return uplc.Apply{
		Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.Trace}, Arg: uplc.Const{Value: uplc.ConstString{Value: msg}}},
		Arg: rest,
	}
}

func runBoth(t *testing.T, term uplc.Term, budget cost.ExBudget) (direct, trampoline cek.Result) {
	t.Helper()
	dp, err := Compile(term, Options{StackSafe: false})
	if err != nil {
		t.Fatalf("Compile(direct): %v", err)
	}
	tp, err := Compile(term, Options{StackSafe: true})
	if err != nil {
		t.Fatalf("Compile(trampoline): %v", err)
	}
	return dp.Run(cost.DefaultMachineParams(), budget), tp.Run(cost.DefaultMachineParams(), budget)
}

func TestIntegerArithmeticScenario(t *testing.T) {
	d, tr := runBoth(t, addTwoThree(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	for _, res := range []cek.Result{d, tr} {
		if !res.Success {
			t.Fatalf("expected success, got failure %s: %s", res.FailureKind, res.FailureMsg)
		}
		c, ok := res.Term.(uplc.Const)
		if !ok {
			t.Fatalf("expected a Const result, got %T", res.Term)
		}
		if !uplc.ConstantsEqual(c.Value, uplc.NewInt(5)) {
			t.Errorf("result = %s, want 5", c.Value)
		}
	}
	if d.Spent != tr.Spent {
		t.Errorf("direct spent %v, trampoline spent %v, want equal", d.Spent, tr.Spent)
	}
}

func TestBudgetExhaustionScenario(t *testing.T) {
	d, tr := runBoth(t, addTwoThree(), cost.ExBudget{Mem: 1_000_000, Cpu: 1000})
	for _, res := range []cek.Result{d, tr} {
		if res.Success {
			t.Fatal("expected failure on a tiny CPU budget")
		}
		if res.FailureKind != cek.BudgetExhausted {
			t.Errorf("failure kind = %s, want BudgetExhausted", res.FailureKind)
		}
	}
}

func TestTraceOrderingScenario(t *testing.T) {
	// trace's second argument is evaluated before the call records its
	// message, so the innermost trace ("a") is emitted first.
	term := traceTerm("c", traceTerm("b", traceTerm("a", uplc.Const{Value: uplc.NewInt(0)})))
	d, tr := runBoth(t, term, cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	want := []string{"a", "b", "c"}
	for _, res := range []cek.Result{d, tr} {
		if !res.Success {
			t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
		}
		if len(res.Traces) != len(want) {
			t.Fatalf("traces = %v, want %v", res.Traces, want)
		}
		for i := range want {
			if res.Traces[i] != want[i] {
				t.Errorf("traces[%d] = %q, want %q", i, res.Traces[i], want[i])
			}
		}
	}
}

func TestFreeVariableFails(t *testing.T) {
	d, tr := runBoth(t, uplc.Var{Name: "x"}, cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	for _, res := range []cek.Result{d, tr} {
		if res.Success {
			t.Fatal("expected failure on a free variable")
		}
		if res.FailureKind != cek.FreeVariable {
			t.Errorf("failure kind = %s, want FreeVariable", res.FailureKind)
		}
	}
}

func TestBranchingOnDataScenario(t *testing.T) {
	scrutinee := uplc.Const{Value: uplc.ConstData{Value: data.NewI(42)}}
	branches := []uplc.Term{
		uplc.LamAbs{Name: "tag", Body: uplc.LamAbs{Name: "args", Body: uplc.Error{}}},
		uplc.LamAbs{Name: "entries", Body: uplc.Error{}},
		uplc.LamAbs{Name: "elems", Body: uplc.Error{}},
		uplc.LamAbs{Name: "i", Body: uplc.Var{Name: "i"}},
		uplc.LamAbs{Name: "b", Body: uplc.Error{}},
	}
	term := uplc.Case{Scrutinee: scrutinee, Branches: branches}
	d, tr := runBoth(t, term, cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	for _, res := range []cek.Result{d, tr} {
		if !res.Success {
			t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
		}
		c, ok := res.Term.(uplc.Const)
		if !ok {
			t.Fatalf("expected Const, got %T", res.Term)
		}
		if !uplc.ConstantsEqual(c.Value, uplc.NewInt(42)) {
			t.Errorf("result = %s, want 42", c.Value)
		}
	}
}

// TestSpecializedApplyMatchesGenericPath exercises a fully-applied, zero-
// force, arity-2 builtin call (the fastApply shape recognized by
// specializedApply) and checks it produces the same result and spends the
// same budget on the direct back-end (which takes the fused path) as on the
// trampoline back-end (which always takes the generic path).
func TestSpecializedApplyMatchesGenericPath(t *testing.T) {
	fusedApply := uplc.Apply{
		Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.AddInteger}, Arg: uplc.Const{Value: uplc.NewInt(7)}},
		Arg: uplc.Const{Value: uplc.NewInt(35)},
	}
	if _, ok := specializedApply(fusedApply); !ok {
		t.Fatalf("expected fused AddInteger application to be recognized as a fastApply shape")
	}
	var fused uplc.Term = fusedApply

	p, err := Compile(fused, Options{StackSafe: false})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := p.Run(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
	}
	c, ok := res.Term.(uplc.Const)
	if !ok {
		t.Fatalf("expected Const, got %T", res.Term)
	}
	if !uplc.ConstantsEqual(c.Value, uplc.NewInt(42)) {
		t.Errorf("result = %s, want 42", c.Value)
	}
	if _, tr := runBoth(t, fused, cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000}); res.Spent != tr.Spent {
		t.Errorf("fused spent %+v, generic path spent %+v", res.Spent, tr.Spent)
	}

	// The same builtin call reached through an intermediate lambda (whose
	// body is itself a fused shape) yields the same result.
	wrapped := uplc.Apply{
		Fun: uplc.LamAbs{Name: "x", Body: uplc.Apply{
			Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.AddInteger}, Arg: uplc.Var{Name: "x"}},
			Arg: uplc.Const{Value: uplc.NewInt(35)},
		}},
		Arg: uplc.Const{Value: uplc.NewInt(7)},
	}
	wp, err := Compile(wrapped, Options{StackSafe: false})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	wres := wp.Run(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	if !wres.Success {
		t.Fatalf("expected success, got %s: %s", wres.FailureKind, wres.FailureMsg)
	}
	if !uplc.ConstantsEqual(wres.Term.(uplc.Const).Value, uplc.NewInt(42)) {
		t.Errorf("wrapped result = %s, want 42", wres.Term.(uplc.Const).Value)
	}
}

// TestDeeplyNestedForceDoesNotOverflowTrampoline is a minimal smoke test for
// the claim the trampoline back-end exists to satisfy: a term nested far
// deeper than a comfortable Go call stack must still evaluate successfully
// under Options{StackSafe: true}.
func TestDeeplyNestedForceDoesNotOverflowTrampoline(t *testing.T) {
	const depth = 50_000
	term := uplc.Term(uplc.Const{Value: uplc.NewInt(1)})
	for i := 0; i < depth; i++ {
		term = uplc.Force{Term: uplc.Delay{Term: term}}
	}
	p, err := Compile(term, Options{StackSafe: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := p.Run(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000_000, Cpu: 1_000_000_000})
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
	}
	if !uplc.ConstantsEqual(res.Term.(uplc.Const).Value, uplc.NewInt(1)) {
		t.Errorf("result = %s, want 1", res.Term.(uplc.Const).Value)
	}
}
