package cek

import (
	"testing"

	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

func addTwoThree() uplc.Term {
	// (λa. λb. addInteger a b) 2 3, with a=index2, b=index1 once resolved.
	body := uplc.Apply{
		Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.AddInteger}, Arg: uplc.Var{Name: "a"}},
		Arg: uplc.Var{Name: "b"},
	}
	lam := uplc.LamAbs{Name: "a", Body: uplc.LamAbs{Name: "b", Body: body}}
	return uplc.Apply{Fun: uplc.Apply{Fun: lam, Arg: uplc.Const{Value: uplc.NewInt(2)}}, Arg: uplc.Const{Value: uplc.NewInt(3)}}
}

func TestIntegerArithmeticScenario(t *testing.T) {
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	res := m.Run(addTwoThree())
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

func TestBudgetExhaustionScenario(t *testing.T) {
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1000})
	res := m.Run(addTwoThree())
	if res.Success {
		t.Fatal("expected failure on a tiny CPU budget")
	}
	if res.FailureKind != BudgetExhausted {
		t.Errorf("failure kind = %s, want BudgetExhausted", res.FailureKind)
	}
	if len(res.Traces) != 0 {
		t.Errorf("traces = %v, want none", res.Traces)
	}
	if res.Spent.Cpu > 1000 {
		t.Errorf("spent cpu %d exceeds budget 1000", res.Spent.Cpu)
	}
}

func traceTerm(msg string, rest uplc.Term) uplc.Term {
	return uplc.Apply{
		Fun:  uplc.Apply{Fun: uplc.Builtin{Id: uplc.Trace}, Arg: uplc.Const{Value: uplc.ConstString{Value: msg}}},
		Arg:  rest,
	}
}

func TestTraceOrderingScenario(t *testing.T) {
	// trace's second argument is evaluated before the call records its
	// message, so the innermost trace ("a") is emitted first.
	term := traceTerm("c", traceTerm("b", traceTerm("a", uplc.Const{Value: uplc.NewInt(0)})))
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	res := m.Run(term)
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.FailureKind, res.FailureMsg)
	}
	want := []string{"a", "b", "c"}
	if len(res.Traces) != len(want) {
		t.Fatalf("traces = %v, want %v", res.Traces, want)
	}
	for i := range want {
		if res.Traces[i] != want[i] {
			t.Errorf("traces[%d] = %q, want %q", i, res.Traces[i], want[i])
		}
	}
}

func TestFreeVariableFails(t *testing.T) {
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	res := m.Run(uplc.Var{Name: "x"})
	if res.Success {
		t.Fatal("expected failure on a free variable")
	}
	if res.FailureKind != FreeVariable {
		t.Errorf("failure kind = %s, want FreeVariable", res.FailureKind)
	}
}

func TestErrorTermFails(t *testing.T) {
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	res := m.Run(uplc.Error{})
	if res.Success {
		t.Fatal("expected failure on an Error term")
	}
	if res.FailureKind != UserError {
		t.Errorf("failure kind = %s, want UserError", res.FailureKind)
	}
}

func TestBranchingOnDataScenario(t *testing.T) {
	// case (iData 42) of { Constr -> ...; Map -> ...; List -> ...; I i -> i; B -> ... }
	scrutinee := uplc.Const{Value: uplc.ConstData{Value: data.NewI(42)}}
	branches := []uplc.Term{
		uplc.LamAbs{Name: "tag", Body: uplc.LamAbs{Name: "args", Body: uplc.Error{}}},
		uplc.LamAbs{Name: "entries", Body: uplc.Error{}},
		uplc.LamAbs{Name: "elems", Body: uplc.Error{}},
		uplc.LamAbs{Name: "i", Body: uplc.Var{Name: "i"}},
		uplc.LamAbs{Name: "b", Body: uplc.Error{}},
	}
	term := uplc.Case{Scrutinee: scrutinee, Branches: branches}
	m := NewMachine(cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	res := m.Run(term)
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
