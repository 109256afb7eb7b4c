// Package data implements the on-chain Data tagged sum (spec §3.1): the
// only value type that crosses the ledger boundary between a UPLC script
// and the chain.
package data

import (
	"fmt"
	"math/big"
	"sort"
)

// Data is a recursive value with exactly five variants. Implementations are
// closed to this package: Constr, Map, List, I, B.
type Data interface {
	isData()
	// Equal reports structural equality, per spec §3.1.
	Equal(other Data) bool
	// Cbor returns the canonical CBOR encoding (spec §4.3).
	Cbor() []byte
	String() string
}

// Constr is a tagged n-ary tuple.
type Constr struct {
	Tag  uint64
	Args []Data
}

// Map is an ordered sequence of key-value entries. Duplicate keys are
// allowed but discouraged; iteration order is significant.
type Map struct {
	Entries []Pair
}

// Pair is one Map entry.
type Pair struct {
	Key   Data
	Value Data
}

// List is an ordered sequence of elements.
type List struct {
	Elems []Data
}

// I is an arbitrary-precision integer.
type I struct {
	Value *big.Int
}

// B is an arbitrary byte string.
type B struct {
	Bytes []byte
}

func (Constr) isData() {}
func (Map) isData()    {}
func (List) isData()   {}
func (I) isData()      {}
func (B) isData()      {}

// NewI wraps an int64 as Data.
func NewI(v int64) I { return I{big.NewInt(v)} }

// NewB wraps a byte slice as Data. The slice is not copied.
func NewB(bs []byte) B { return B{bs} }

func (c Constr) Equal(other Data) bool {
	o, ok := other.(Constr)
	if !ok || o.Tag != c.Tag || len(o.Args) != len(c.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (m Map) Equal(other Data) bool {
	o, ok := other.(Map)
	if !ok || len(o.Entries) != len(m.Entries) {
		return false
	}
	for i := range m.Entries {
		if !m.Entries[i].Key.Equal(o.Entries[i].Key) || !m.Entries[i].Value.Equal(o.Entries[i].Value) {
			return false
		}
	}
	return true
}

func (l List) Equal(other Data) bool {
	o, ok := other.(List)
	if !ok || len(o.Elems) != len(l.Elems) {
		return false
	}
	for i := range l.Elems {
		if !l.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (i I) Equal(other Data) bool {
	o, ok := other.(I)
	return ok && i.Value.Cmp(o.Value) == 0
}

func (b B) Equal(other Data) bool {
	o, ok := other.(B)
	if !ok || len(o.Bytes) != len(b.Bytes) {
		return false
	}
	for k := range b.Bytes {
		if b.Bytes[k] != o.Bytes[k] {
			return false
		}
	}
	return true
}

func (c Constr) String() string {
	return fmt.Sprintf("Constr(%d, %v)", c.Tag, c.Args)
}

func (m Map) String() string {
	return fmt.Sprintf("Map(%v)", m.Entries)
}

func (l List) String() string {
	return fmt.Sprintf("List(%v)", l.Elems)
}

func (i I) String() string { return i.Value.String() }

func (b B) String() string { return fmt.Sprintf("B(%x)", b.Bytes) }

// Compare implements the single top-level ordered-comparison function over
// Data referenced in spec §9 (the "ToData/FromData" vtable design note):
// variants are ordered Constr < Map < List < I < B, and within a variant
// structurally by field.
func Compare(a, b Data) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case Constr:
		bv := b.(Constr)
		if av.Tag != bv.Tag {
			if av.Tag < bv.Tag {
				return -1
			}
			return 1
		}
		return compareSlices(av.Args, bv.Args)
	case Map:
		bv := b.(Map)
		n := len(av.Entries)
		if len(bv.Entries) < n {
			n = len(bv.Entries)
		}
		for i := 0; i < n; i++ {
			if c := Compare(av.Entries[i].Key, bv.Entries[i].Key); c != 0 {
				return c
			}
			if c := Compare(av.Entries[i].Value, bv.Entries[i].Value); c != 0 {
				return c
			}
		}
		return len(av.Entries) - len(bv.Entries)
	case List:
		bv := b.(List)
		return compareSlices(av.Elems, bv.Elems)
	case I:
		bv := b.(I)
		return av.Value.Cmp(bv.Value)
	case B:
		bv := b.(B)
		n := len(av.Bytes)
		if len(bv.Bytes) < n {
			n = len(bv.Bytes)
		}
		for i := 0; i < n; i++ {
			if av.Bytes[i] != bv.Bytes[i] {
				return int(av.Bytes[i]) - int(bv.Bytes[i])
			}
		}
		return len(av.Bytes) - len(bv.Bytes)
	default:
		return 0
	}
}

func compareSlices(a, b []Data) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func rank(d Data) int {
	switch d.(type) {
	case Constr:
		return 0
	case Map:
		return 1
	case List:
		return 2
	case I:
		return 3
	case B:
		return 4
	default:
		return 5
	}
}

// SortMapEntries reorders a Map's entries into a canonical key order. It
// only sorts: entries with equal keys are all kept, in their original
// relative order (spec §9, SortedMap design note).
func SortMapEntries(entries []Pair) []Pair {
	out := make([]Pair, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}
