// Package staged implements the specializing evaluator (spec §4.2 "Staged
// evaluator"). Compile only resolves de Bruijn indices; it does not turn
// the term into host-language closures, and both back-ends interpret the
// term's node shapes anew on every Run. The one specialization is the
// fused call of a fully-applied, zero-force, 1- or 2-argument builtin
// (specialize.go), used by the direct back-end only. The back-ends are
// direct.go (a recursive walk, bound by the Go stack) and trampoline.go
// (the same walk driven by an explicit work stack, safe for the very deep
// term nesting real Plutus programs can have).
//
// This package's value representation is independent of internal/cek's: the
// two evaluators are meant to be checked against each other for behavioral
// equivalence (internal/cekequiv), not to share internal state.
package staged

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/cek"
	"github.com/scalus-go/scalus/internal/uplc"
)

type genv struct {
	name  string
	value value
	next  *genv
}

func (e *genv) extend(name string, v value) *genv { return &genv{name, v, e} }

func (e *genv) lookup(index int) (value, bool) {
	cur := e
	for i := 1; i < index && cur != nil; i++ {
		cur = cur.next
	}
	if cur == nil {
		return value{}, false
	}
	return cur.value, true
}

// value is a small closed sum, represented as a tagged struct rather than an
// interface: the staged evaluator is on the hot path, and avoiding an
// interface allocation per value matters more here than it does in the
// reference machine.
type valueKind int

const (
	vConstant valueKind = iota
	vClosure
	vDelayed
	vBuiltinApp
	vConstr
)

type value struct {
	kind            valueKind
	con             uplc.Constant
	param           string
	body            uplc.Term
	env             *genv
	id              uplc.BuiltinId
	forcesRemaining int
	args            []uplc.Constant
	tag             uint64
	elems           []value
}

func (v value) String() string {
	switch v.kind {
	case vConstant:
		return v.con.String()
	case vClosure:
		return fmt.Sprintf("<closure %s>", v.param)
	case vDelayed:
		return "<delayed>"
	case vBuiltinApp:
		return fmt.Sprintf("<builtin %s, %d args>", v.id, len(v.args)+len(v.elems))
	case vConstr:
		return fmt.Sprintf("<constr %d>", v.tag)
	default:
		return "<?>"
	}
}

// abort carries a classified failure out of a compiled node via panic/recover
// at the Program.Run boundary, matching the reference machine's fail-fast
// propagation policy (spec §7).
type abort struct {
	kind cek.FailureKind
	msg  string
}

func fail(kind cek.FailureKind, format string, args ...any) *abort {
	return &abort{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (a *abort) Error() string { return a.msg }
