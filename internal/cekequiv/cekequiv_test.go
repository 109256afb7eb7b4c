package cekequiv

import (
	"testing"

	"github.com/scalus-go/scalus/internal/cost"
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

func TestEnginesAgreeOnArithmetic(t *testing.T) {
	report := Check(addTwoThree(), cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	if !report.Equal() {
		t.Fatalf("expected engines to agree, got mismatches: %v", report.Mismatches)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 engine results, got %d", len(report.Results))
	}
}

func TestEnginesAgreeOnBudgetExhaustion(t *testing.T) {
	report := Check(addTwoThree(), cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1000})
	if !report.Equal() {
		t.Fatalf("expected engines to agree, got mismatches: %v", report.Mismatches)
	}
	for name, res := range report.Results {
		if res.Success {
			t.Errorf("engine %s: expected failure on a tiny CPU budget", name)
		}
	}
}

func TestEnginesAgreeOnFreeVariable(t *testing.T) {
	report := Check(uplc.Var{Name: "x"}, cost.DefaultMachineParams(), cost.ExBudget{Mem: 1_000_000, Cpu: 1_000_000})
	if !report.Equal() {
		t.Fatalf("expected engines to agree, got mismatches: %v", report.Mismatches)
	}
}
