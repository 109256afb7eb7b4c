// Package cek implements the reference small-step CEK abstract machine for
// UPLC terms (spec §4.2): an explicit Compute/Return state loop with strict
// budget accounting and FIFO trace collection.
package cek

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

// env is a persistent, structurally-shared binding list: functional
// extension on lambda application, never mutated once built (spec §5
// "Environments are immutable after construction").
type env struct {
	name  string
	value Value
	next  *env
}

func (e *env) extend(name string, v Value) *env {
	return &env{name: name, value: v, next: e}
}

// lookup resolves a de Bruijn index (1 = nearest binder), matching
// uplc.Var.Index produced by uplc.ResolveDeBruijn.
func (e *env) lookup(index int) (Value, bool) {
	cur := e
	for i := 1; i < index && cur != nil; i++ {
		cur = cur.next
	}
	if cur == nil {
		return nil, false
	}
	return cur.value, true
}

// Value is the closed sum of evaluated CEK values (spec §4.2): constant,
// closure, delayed thunk, partial builtin application, or Constr.
type Value interface {
	isValue()
	String() string
}

type constantValue struct{ c uplc.Constant }

type closureValue struct {
	param string
	body  uplc.Term
	env   *env
}

type delayedValue struct {
	body uplc.Term
	env  *env
}

// builtinAppValue is a partially (or fully, pre-invocation) applied builtin:
// forcesRemaining counts down type-level forces still owed before any value
// argument may be supplied. args accumulates constant-typed value arguments
// in order; structArgs is used instead for the five structural builtins
// (ifThenElse, chooseUnit, chooseList, chooseData, trace), whose generic-typed arguments
// may be any value, not only a constant (spec §4.1).
type builtinAppValue struct {
	id              uplc.BuiltinId
	forcesRemaining int
	args            []uplc.Constant
	structArgs      []Value
}

// isStructuralBuiltin reports whether id's generic-typed arguments must be
// accepted as arbitrary values rather than forced to constants.
func isStructuralBuiltin(id uplc.BuiltinId) bool {
	switch id {
	case uplc.IfThenElse, uplc.ChooseUnit, uplc.ChooseList, uplc.ChooseData, uplc.Trace:
		return true
	default:
		return false
	}
}

// dispatchStructuralBuiltin selects one of args' generic-typed positions,
// inspecting only the leading constant discriminator argument. These five
// builtins never reduce to a fresh value the way an arithmetic builtin
// does — they just return one of their own arguments unevaluated further.
func dispatchStructuralBuiltin(id uplc.BuiltinId, args []Value) (Value, error) {
	discriminator, ok := args[0].(constantValue)
	if !ok {
		return nil, fail(TypeMismatch, "builtin %s: first argument is not a constant", id)
	}
	switch id {
	case uplc.IfThenElse:
		b, ok := discriminator.c.(uplc.ConstBool)
		if !ok {
			return nil, fail(TypeMismatch, "ifThenElse: condition is not a bool")
		}
		if b.Value {
			return args[1], nil
		}
		return args[2], nil
	case uplc.ChooseUnit:
		if _, ok := discriminator.c.(uplc.ConstUnit); !ok {
			return nil, fail(TypeMismatch, "chooseUnit: argument is not unit")
		}
		return args[1], nil
	case uplc.ChooseList:
		l, ok := discriminator.c.(uplc.ConstList)
		if !ok {
			return nil, fail(TypeMismatch, "chooseList: argument is not a list")
		}
		if len(l.Elems) == 0 {
			return args[1], nil
		}
		return args[2], nil
	case uplc.ChooseData:
		d, ok := discriminator.c.(uplc.ConstData)
		if !ok {
			return nil, fail(TypeMismatch, "chooseData: argument is not Data")
		}
		switch d.Value.(type) {
		case data.Constr:
			return args[1], nil
		case data.Map:
			return args[2], nil
		case data.List:
			return args[3], nil
		case data.I:
			return args[4], nil
		case data.B:
			return args[5], nil
		default:
			return nil, fail(TypeMismatch, "chooseData: unreachable Data variant %T", d.Value)
		}
	case uplc.Trace:
		return args[1], nil
	default:
		return nil, fail(TypeMismatch, "not a structural builtin: %s", id)
	}
}

type constrValue struct {
	tag    uint64
	values []Value
}

func (constantValue) isValue()  {}
func (closureValue) isValue()   {}
func (delayedValue) isValue()   {}
func (builtinAppValue) isValue() {}
func (constrValue) isValue()    {}

func (v constantValue) String() string { return v.c.String() }
func (v closureValue) String() string  { return fmt.Sprintf("<closure %s>", v.param) }
func (delayedValue) String() string    { return "<delayed>" }
func (v builtinAppValue) String() string {
	return fmt.Sprintf("<builtin %s, %d args>", v.id, len(v.args)+len(v.structArgs))
}
func (v constrValue) String() string { return fmt.Sprintf("<constr %d, %d fields>", v.tag, len(v.values)) }
