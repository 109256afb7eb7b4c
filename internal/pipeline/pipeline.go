// Package pipeline wires lowering, the flat codec, and one of the two
// evaluator back-ends into a single entry point (spec §4.4), grounded on
// the teacher's NewHandler constructor: one function composing otherwise-
// independent components (there CLI/DB/Store/Mempool, here a
// lowering.Context, a chosen evaluator, and a trace sink) rather than a
// framework each component must register itself with.
package pipeline

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/abi"
	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/flat"
	"github.com/scalus-go/scalus/internal/lowering"
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/staged"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Backend selects which evaluator a Pipeline drives.
type Backend int

const (
	BackendReference Backend = iota
	BackendStagedDirect
	BackendStagedTrampoline
)

// FIFOLog is the default in-memory abi.LoggerSink: an ordered slice of
// messages, matching spec.md's "FIFO trace log" invariant directly.
type FIFOLog struct {
	Messages []string
}

func (l *FIFOLog) Append(message string) { l.Messages = append(l.Messages, message) }

// Pipeline groups every knob a single evaluation needs (spec §4.4).
type Pipeline struct {
	LoweringOptions lowering.Options
	Params          cost.MachineParams
	InitialBudget   cost.ExBudget
	Backend         Backend

	// FlatVersion, when non-nil, round-trips the lowered term through
	// internal/flat's encoder/decoder before evaluating it — exercising
	// the wire codec on every run rather than only in its own tests.
	FlatVersion *flat.Version

	// Logger receives a copy of every trace line in evaluation order. A
	// nil Logger means traces are collected into Outcome.Traces only.
	Logger abi.LoggerSink
}

// New constructs a Pipeline with the given lowering target and evaluator
// backend, a fresh in-memory trace log, and cost.DefaultMachineParams.
func New(version lowering.Version, backend Backend, initial cost.ExBudget) *Pipeline {
	return &Pipeline{
		LoweringOptions: lowering.Options{TargetVersion: version},
		Params:          cost.DefaultMachineParams(),
		InitialBudget:   initial,
		Backend:         backend,
		Logger:          &FIFOLog{},
	}
}

// Run lowers root, optionally round-trips it through the flat codec, then
// evaluates it with the configured backend (spec §4.4/§6).
func (p *Pipeline) Run(root sir.Node) (Outcome, error) {
	term, err := lowering.Lower(root, p.LoweringOptions)
	if err != nil {
		return Outcome{}, fmt.Errorf("pipeline: lowering: %w", err)
	}

	if p.FlatVersion != nil {
		term, err = p.roundTripFlat(term)
		if err != nil {
			return Outcome{}, err
		}
	}

	res, err := p.evaluate(term)
	if err != nil {
		return Outcome{}, err
	}

	if p.Logger != nil {
		for _, msg := range res.Traces {
			p.Logger.Append(msg)
		}
	}
	return outcomeFromResult(res), nil
}

func (p *Pipeline) roundTripFlat(term uplc.Term) (uplc.Term, error) {
	resolved := uplc.ResolveDeBruijn(term)
	encoded, err := flat.Encode(resolved, *p.FlatVersion)
	if err != nil {
		return nil, fmt.Errorf("pipeline: flat-encoding lowered term: %w", err)
	}
	decoded, _, err := flat.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("pipeline: flat-decoding lowered term: %w", err)
	}
	return decoded, nil
}

func (p *Pipeline) evaluate(term uplc.Term) (cek.Result, error) {
	switch p.Backend {
	case BackendReference:
		return cek.NewMachine(p.Params, p.InitialBudget).Run(term), nil
	case BackendStagedDirect, BackendStagedTrampoline:
		prog, err := staged.Compile(term, staged.Options{StackSafe: p.Backend == BackendStagedTrampoline})
		if err != nil {
			return cek.Result{}, fmt.Errorf("pipeline: compiling staged program: %w", err)
		}
		return prog.Run(p.Params, p.InitialBudget), nil
	default:
		return cek.Result{}, fmt.Errorf("pipeline: unknown backend %d", p.Backend)
	}
}
