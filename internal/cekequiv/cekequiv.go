// Package cekequiv is test-only scaffolding: it drives the same UPLC term
// through the reference CEK machine (internal/cek) and both staged
// back-ends (internal/staged), and reports the first point of disagreement.
// This operationalizes spec §8's "engine equivalence" testable property —
// all three evaluators must agree on success/failure, the result term,
// exact budget spend, and trace ordering for any well-formed term.
package cekequiv

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/staged"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Engine names a participant in a Check run, for use in diagnostics.
type Engine string

const (
	EngineCEK         Engine = "cek"
	EngineStagedDirect Engine = "staged-direct"
	EngineStagedTramp  Engine = "staged-trampoline"
)

// Mismatch describes the first disagreement Check found between two
// engines' Results for the same term.
type Mismatch struct {
	Left, Right Engine
	Field       string
	LeftValue   string
	RightValue  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s vs %s disagree on %s: %s != %s", m.Left, m.Right, m.Field, m.LeftValue, m.RightValue)
}

// Report is the outcome of a Check run: Results holds every engine's Result
// keyed by name, and Mismatches holds every disagreement found comparing
// each engine against the reference (EngineCEK).
type Report struct {
	Results    map[Engine]cek.Result
	Mismatches []Mismatch
}

// Equal reports whether every engine agreed (no mismatches found).
func (r Report) Equal() bool { return len(r.Mismatches) == 0 }

// Check runs term through the reference CEK machine and both staged
// back-ends under identical params and initial budget, then diffs their
// Results against the reference machine's.
func Check(term uplc.Term, params cost.MachineParams, initial cost.ExBudget) Report {
	refRes := cek.NewMachine(params, initial).Run(term)

	directProg, directErr := staged.Compile(term, staged.Options{StackSafe: false})
	trampProg, trampErr := staged.Compile(term, staged.Options{StackSafe: true})

	results := map[Engine]cek.Result{EngineCEK: refRes}
	var mismatches []Mismatch

	if directErr != nil {
		mismatches = append(mismatches, Mismatch{Left: EngineCEK, Right: EngineStagedDirect, Field: "compile", LeftValue: "ok", RightValue: directErr.Error()})
	} else {
		directRes := directProg.Run(params, initial)
		results[EngineStagedDirect] = directRes
		mismatches = append(mismatches, diff(EngineCEK, refRes, EngineStagedDirect, directRes)...)
	}

	if trampErr != nil {
		mismatches = append(mismatches, Mismatch{Left: EngineCEK, Right: EngineStagedTramp, Field: "compile", LeftValue: "ok", RightValue: trampErr.Error()})
	} else {
		trampRes := trampProg.Run(params, initial)
		results[EngineStagedTramp] = trampRes
		mismatches = append(mismatches, diff(EngineCEK, refRes, EngineStagedTramp, trampRes)...)
	}

	return Report{Results: results, Mismatches: mismatches}
}

// diff compares two engines' Results field by field, matching spec §8's
// equivalence definition: same success/failure, same result term (when
// successful) or failure kind (when not), same budget spent, same trace
// sequence.
func diff(leftName Engine, left cek.Result, rightName Engine, right cek.Result) []Mismatch {
	var out []Mismatch
	add := func(field, lv, rv string) {
		out = append(out, Mismatch{Left: leftName, Right: rightName, Field: field, LeftValue: lv, RightValue: rv})
	}

	if left.Success != right.Success {
		add("success", fmt.Sprintf("%v", left.Success), fmt.Sprintf("%v", right.Success))
		return out
	}

	if left.Success {
		lt, rt := termString(left.Term), termString(right.Term)
		if lt != rt {
			add("term", lt, rt)
		}
	} else {
		if left.FailureKind != right.FailureKind {
			add("failureKind", left.FailureKind.String(), right.FailureKind.String())
		}
	}

	if left.Spent != right.Spent {
		add("spent", fmt.Sprintf("%+v", left.Spent), fmt.Sprintf("%+v", right.Spent))
	}

	if len(left.Traces) != len(right.Traces) {
		add("traces", fmt.Sprintf("%v", left.Traces), fmt.Sprintf("%v", right.Traces))
	} else {
		for i := range left.Traces {
			if left.Traces[i] != right.Traces[i] {
				add(fmt.Sprintf("traces[%d]", i), left.Traces[i], right.Traces[i])
				break
			}
		}
	}

	return out
}

func termString(t uplc.Term) string {
	if t == nil {
		return "<nil>"
	}
	if c, ok := t.(uplc.Const); ok {
		return c.Value.String()
	}
	return fmt.Sprintf("%T", t)
}
