// Package builtin implements the semantics and signatures of every UPLC
// builtin function (spec §4.3). The registry is a process-wide, read-only
// table built once at init from an explicit literal — never a lazily
// mutated singleton (spec §9).
package builtin

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/uplc"
)

// Error is returned when a builtin fails its precondition (wrong argument
// type, out-of-range index, undecodable input). It surfaces as the
// BuiltinError failure kind (spec §7), carrying the builtin's name.
type Error struct {
	Builtin uplc.BuiltinId
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("builtin %s: %s", e.Builtin, e.Reason)
}

func fail(id uplc.BuiltinId, format string, args ...any) error {
	return &Error{Builtin: id, Reason: fmt.Sprintf(format, args...)}
}

// Func is the semantics of a fully-applied builtin: given its arguments in
// application order, produce a result or fail.
type Func func(args []uplc.Constant) (uplc.Constant, error)

// Builtin is one entry of the fixed, versioned builtin set.
type Builtin struct {
	Id     uplc.BuiltinId
	Forces int // type-level forces required before any value argument
	Arity  int // number of value arguments
	Apply  Func
}

// Table is the read-only registry, keyed by BuiltinId, built once at init.
var Table map[uplc.BuiltinId]*Builtin

func register(all []*Builtin) map[uplc.BuiltinId]*Builtin {
	t := make(map[uplc.BuiltinId]*Builtin, len(all))
	for _, b := range all {
		if _, dup := t[b.Id]; dup {
			panic(fmt.Sprintf("builtin: duplicate registration for %s", b.Id))
		}
		t[b.Id] = b
	}
	return t
}

func init() {
	var all []*Builtin
	all = append(all, integerBuiltins()...)
	all = append(all, byteStringBuiltins()...)
	all = append(all, stringBuiltins()...)
	all = append(all, hashBuiltins()...)
	all = append(all, controlBuiltins()...)
	all = append(all, dataBuiltins()...)
	all = append(all, blsBuiltins()...)
	Table = register(all)
}

// Lookup returns the builtin entry for id, or nil if unregistered (a
// LoweringError / internal bug, never expected to occur with a closed
// BuiltinId enum).
func Lookup(id uplc.BuiltinId) *Builtin {
	return Table[id]
}

// ArgMemory returns the ExMemory of each argument, in order, for use by a
// cost.BuiltinCostFunction.
func ArgMemory(args []uplc.Constant) []int64 {
	out := make([]int64, len(args))
	for i, a := range args {
		out[i] = a.Memory()
	}
	return out
}
