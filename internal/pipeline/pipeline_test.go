package pipeline

import (
	"testing"

	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/flat"
	"github.com/scalus-go/scalus/internal/lowering"
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

var bigBudget = cost.ExBudget{Mem: 10_000_000, Cpu: 10_000_000}

func addProgram(a, b int64) sir.Node {
	return sir.Apply{
		Fun: sir.Apply{Fun: sir.Builtin{Name: "addInteger"}, Arg: sir.Const{Value: uplc.NewInt(a)}},
		Arg: sir.Const{Value: uplc.NewInt(b)},
	}
}

func wantInt(t *testing.T, out Outcome, want int64) {
	t.Helper()
	if !out.Success {
		t.Fatalf("expected success, got %s: %s", out.FailureKind, out.FailureMsg)
	}
	c, ok := out.Term.(uplc.Const)
	if !ok {
		t.Fatalf("expected Const result, got %T", out.Term)
	}
	if !uplc.ConstantsEqual(c.Value, uplc.NewInt(want)) {
		t.Errorf("result = %s, want %d", c.Value, want)
	}
}

func TestPipelineRunReference(t *testing.T) {
	p := New(lowering.V4, BackendReference, bigBudget)
	out, err := p.Run(addProgram(2, 3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantInt(t, out, 5)
}

func TestPipelineBackendsAgree(t *testing.T) {
	backends := []Backend{BackendReference, BackendStagedDirect, BackendStagedTrampoline}
	var results []Outcome
	for _, b := range backends {
		p := New(lowering.V4, b, bigBudget)
		out, err := p.Run(addProgram(10, 32))
		if err != nil {
			t.Fatalf("Run backend %d: %v", b, err)
		}
		results = append(results, out)
	}
	for _, out := range results {
		wantInt(t, out, 42)
	}
}

func TestPipelineFlatRoundTripMatchesDirect(t *testing.T) {
	direct := New(lowering.V4, BackendReference, bigBudget)
	directOut, err := direct.Run(addProgram(7, 8))
	if err != nil {
		t.Fatalf("Run direct: %v", err)
	}

	viaFlat := New(lowering.V4, BackendReference, bigBudget)
	viaFlat.FlatVersion = &flat.Version{Major: 1, Minor: 0, Patch: 0}
	flatOut, err := viaFlat.Run(addProgram(7, 8))
	if err != nil {
		t.Fatalf("Run via flat: %v", err)
	}

	wantInt(t, directOut, 15)
	wantInt(t, flatOut, 15)
}

func TestPipelineLoggerCollectsTracesInOrder(t *testing.T) {
	traceOf := func(msg string, v int64) sir.Node {
		return sir.Apply{
			Fun: sir.Apply{Fun: sir.Builtin{Name: "trace"}, Arg: sir.Const{Value: uplc.ConstString{Value: msg}}},
			Arg: sir.Const{Value: uplc.NewInt(v)},
		}
	}
	let := sir.Let{
		Bindings: []sir.Binding{
			{Name: "a", Value: traceOf("first", 1)},
			{Name: "b", Value: traceOf("second", 2)},
		},
		Body: sir.Apply{
			Fun: sir.Apply{Fun: sir.Builtin{Name: "addInteger"}, Arg: sir.Var{Name: "a"}},
			Arg: sir.Var{Name: "b"},
		},
	}
	p := New(lowering.V4, BackendReference, bigBudget)
	log := &FIFOLog{}
	p.Logger = log
	out, err := p.Run(let)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantInt(t, out, 3)
	if len(log.Messages) != 2 || log.Messages[0] != "first" || log.Messages[1] != "second" {
		t.Errorf("log.Messages = %v, want [first second]", log.Messages)
	}
	if len(out.Traces) != 2 {
		t.Errorf("out.Traces = %v, want 2 entries", out.Traces)
	}
}

func TestPoolRunAllPreservesOrder(t *testing.T) {
	var jobs []Job
	for i := int64(0); i < 8; i++ {
		jobs = append(jobs, Job{Pipeline: New(lowering.V4, BackendReference, bigBudget), Root: addProgram(i, 1)})
	}
	results := RunAll(jobs)
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, r.Index, i)
		}
		if r.Err != nil {
			t.Fatalf("job %d: %v", i, r.Err)
		}
		wantInt(t, r.Outcome, int64(i)+1)
	}
}
