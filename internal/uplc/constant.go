package uplc

import (
	"fmt"
	"math/big"

	"github.com/scalus-go/scalus/internal/data"
)

// ConstType tags the type of a UPLC constant (spec §3.2).
type ConstType int

const (
	TInteger ConstType = iota
	TByteString
	TString
	TUnit
	TBool
	TData
	TList
	TPair
	TBLSG1
	TBLSG2
	TBLSMlResult
)

func (t ConstType) String() string {
	switch t {
	case TInteger:
		return "integer"
	case TByteString:
		return "bytestring"
	case TString:
		return "string"
	case TUnit:
		return "unit"
	case TBool:
		return "bool"
	case TData:
		return "data"
	case TList:
		return "list"
	case TPair:
		return "pair"
	case TBLSG1:
		return "bls12_381_G1_element"
	case TBLSG2:
		return "bls12_381_G2_element"
	case TBLSMlResult:
		return "bls12_381_MlResult"
	default:
		return "unknown"
	}
}

// Constant is a closed sum of the typed UPLC constant kinds.
type Constant interface {
	isConstant()
	Type() ConstType
	// Memory is the ExMemory cost, in 8-byte words, of this constant.
	Memory() int64
	String() string
}

type ConstInteger struct{ Value *big.Int }
type ConstByteString struct{ Value []byte }
type ConstString struct{ Value string }
type ConstUnit struct{}
type ConstBool struct{ Value bool }
type ConstData struct{ Value data.Data }

// ConstList is a homogeneous list constant; ElemType is recorded even for
// an empty list, since UPLC constants are fully typed.
type ConstList struct {
	ElemType ConstType
	Elems    []Constant
}

type ConstPair struct{ First, Second Constant }

// BLS12-381 elements are stored in their compressed wire form; arithmetic is
// performed by internal/builtin, which deserializes, computes, and
// re-serializes. This keeps the term model free of any curve-library types.
type ConstBLSG1 struct{ Compressed [48]byte }
type ConstBLSG2 struct{ Compressed [96]byte }

// ConstBLSMlResult holds an opaque, serialized partial pairing (the output of
// millerLoop / mulMlResult), consumed only by finalVerify.
type ConstBLSMlResult struct{ Opaque []byte }

func (ConstInteger) isConstant()     {}
func (ConstByteString) isConstant()  {}
func (ConstString) isConstant()      {}
func (ConstUnit) isConstant()        {}
func (ConstBool) isConstant()        {}
func (ConstData) isConstant()        {}
func (ConstList) isConstant()        {}
func (ConstPair) isConstant()        {}
func (ConstBLSG1) isConstant()       {}
func (ConstBLSG2) isConstant()       {}
func (ConstBLSMlResult) isConstant() {}

func (ConstInteger) Type() ConstType     { return TInteger }
func (ConstByteString) Type() ConstType  { return TByteString }
func (ConstString) Type() ConstType      { return TString }
func (ConstUnit) Type() ConstType        { return TUnit }
func (ConstBool) Type() ConstType        { return TBool }
func (ConstData) Type() ConstType        { return TData }
func (ConstList) Type() ConstType        { return TList }
func (ConstPair) Type() ConstType        { return TPair }
func (ConstBLSG1) Type() ConstType       { return TBLSG1 }
func (ConstBLSG2) Type() ConstType       { return TBLSG2 }
func (ConstBLSMlResult) Type() ConstType { return TBLSMlResult }

func (c ConstInteger) Memory() int64    { return data.IntegerMemory(c.Value) }
func (c ConstByteString) Memory() int64 { return data.ByteStringMemory(len(c.Value)) }
func (c ConstString) Memory() int64     { return data.ByteStringMemory(len(c.Value)) }
func (ConstUnit) Memory() int64         { return 1 }
func (ConstBool) Memory() int64         { return 1 }
func (c ConstData) Memory() int64       { return data.MemoryUsage(c.Value) }
func (c ConstList) Memory() int64 {
	total := int64(1)
	for _, e := range c.Elems {
		total += e.Memory()
	}
	return total
}
func (c ConstPair) Memory() int64        { return 1 + c.First.Memory() + c.Second.Memory() }
func (ConstBLSG1) Memory() int64         { return 6 }
func (ConstBLSG2) Memory() int64         { return 12 }
func (c ConstBLSMlResult) Memory() int64 { return data.ByteStringMemory(len(c.Opaque)) }

func (c ConstInteger) String() string    { return c.Value.String() }
func (c ConstByteString) String() string { return fmt.Sprintf("#%x", c.Value) }
func (c ConstString) String() string     { return fmt.Sprintf("%q", c.Value) }
func (ConstUnit) String() string         { return "()" }
func (c ConstBool) String() string       { return fmt.Sprintf("%t", c.Value) }
func (c ConstData) String() string       { return c.Value.String() }
func (c ConstList) String() string       { return fmt.Sprintf("list<%s>%v", c.ElemType, c.Elems) }
func (c ConstPair) String() string       { return fmt.Sprintf("(%s, %s)", c.First, c.Second) }
func (c ConstBLSG1) String() string      { return fmt.Sprintf("G1(%x)", c.Compressed) }
func (c ConstBLSG2) String() string      { return fmt.Sprintf("G2(%x)", c.Compressed) }
func (ConstBLSMlResult) String() string  { return "MlResult(...)" }

// NewInt builds an integer constant from an int64.
func NewInt(v int64) ConstInteger { return ConstInteger{big.NewInt(v)} }

// ConstantsEqual is the CEK-observable equality used by the evaluator when
// comparing constant values (e.g. for Constr/Case dispatch on primitives,
// and by test harnesses comparing results).
func ConstantsEqual(a, b Constant) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case ConstInteger:
		return av.Value.Cmp(b.(ConstInteger).Value) == 0
	case ConstByteString:
		bv := b.(ConstByteString)
		if len(av.Value) != len(bv.Value) {
			return false
		}
		for i := range av.Value {
			if av.Value[i] != bv.Value[i] {
				return false
			}
		}
		return true
	case ConstString:
		return av.Value == b.(ConstString).Value
	case ConstUnit:
		return true
	case ConstBool:
		return av.Value == b.(ConstBool).Value
	case ConstData:
		return av.Value.Equal(b.(ConstData).Value)
	case ConstList:
		bv := b.(ConstList)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !ConstantsEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case ConstPair:
		bv := b.(ConstPair)
		return ConstantsEqual(av.First, bv.First) && ConstantsEqual(av.Second, bv.Second)
	case ConstBLSG1:
		return av.Compressed == b.(ConstBLSG1).Compressed
	case ConstBLSG2:
		return av.Compressed == b.(ConstBLSG2).Compressed
	default:
		return false
	}
}
