package flat

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

func roundTripTerm(t *testing.T, term uplc.Term) uplc.Term {
	t.Helper()
	resolved := uplc.ResolveDeBruijn(term)
	encoded, err := Encode(resolved, Version{1, 0, 0})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, version, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if version != (Version{1, 0, 0}) {
		t.Errorf("version = %+v, want {1 0 0}", version)
	}
	return decoded
}

func termsEqual(t *testing.T, a, b uplc.Term) bool {
	t.Helper()
	switch av := a.(type) {
	case uplc.Var:
		bv, ok := b.(uplc.Var)
		return ok && av.Index == bv.Index
	case uplc.LamAbs:
		bv, ok := b.(uplc.LamAbs)
		return ok && termsEqual(t, av.Body, bv.Body)
	case uplc.Apply:
		bv, ok := b.(uplc.Apply)
		return ok && termsEqual(t, av.Fun, bv.Fun) && termsEqual(t, av.Arg, bv.Arg)
	case uplc.Const:
		bv, ok := b.(uplc.Const)
		return ok && uplc.ConstantsEqual(av.Value, bv.Value)
	case uplc.Builtin:
		bv, ok := b.(uplc.Builtin)
		return ok && av.Id == bv.Id
	case uplc.Delay:
		bv, ok := b.(uplc.Delay)
		return ok && termsEqual(t, av.Term, bv.Term)
	case uplc.Force:
		bv, ok := b.(uplc.Force)
		return ok && termsEqual(t, av.Term, bv.Term)
	case uplc.Error:
		_, ok := b.(uplc.Error)
		return ok
	case uplc.Constr:
		bv, ok := b.(uplc.Constr)
		if !ok || av.Tag != bv.Tag || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !termsEqual(t, av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case uplc.Case:
		bv, ok := b.(uplc.Case)
		if !ok || len(av.Branches) != len(bv.Branches) {
			return false
		}
		if !termsEqual(t, av.Scrutinee, bv.Scrutinee) {
			return false
		}
		for i := range av.Branches {
			if !termsEqual(t, av.Branches[i], bv.Branches[i]) {
				return false
			}
		}
		return true
	default:
		t.Fatalf("termsEqual: unhandled shape %T", a)
		return false
	}
}

func TestRoundTripSimpleTerms(t *testing.T) {
	body := uplc.Apply{
		Fun: uplc.Apply{Fun: uplc.Builtin{Id: uplc.AddInteger}, Arg: uplc.Var{Name: "a"}},
		Arg: uplc.Var{Name: "b"},
	}
	term := uplc.Apply{
		Fun: uplc.Apply{
			Fun: uplc.LamAbs{Name: "a", Body: uplc.LamAbs{Name: "b", Body: body}},
			Arg: uplc.Const{Value: uplc.NewInt(2)},
		},
		Arg: uplc.Const{Value: uplc.NewInt(3)},
	}
	resolved := uplc.ResolveDeBruijn(term)
	decoded := roundTripTerm(t, term)
	if !termsEqual(t, resolved, decoded) {
		t.Errorf("round trip mismatch:\n  want %s\n  got  %s", resolved, decoded)
	}
}

func TestRoundTripDelayForceErrorConstrCase(t *testing.T) {
	term := uplc.Case{
		Scrutinee: uplc.Constr{Tag: 1, Args: []uplc.Term{uplc.Const{Value: uplc.NewInt(7)}}},
		Branches: []uplc.Term{
			uplc.Error{},
			uplc.LamAbs{Name: "x", Body: uplc.Force{Term: uplc.Delay{Term: uplc.Var{Name: "x"}}}},
		},
	}
	resolved := uplc.ResolveDeBruijn(term)
	decoded := roundTripTerm(t, term)
	if !termsEqual(t, resolved, decoded) {
		t.Errorf("round trip mismatch:\n  want %s\n  got  %s", resolved, decoded)
	}
}

func TestRoundTripConstants(t *testing.T) {
	huge := new(big.Int)
	huge.SetString("123456789012345678901234567890", 10)
	cases := []uplc.Constant{
		uplc.NewInt(0),
		uplc.NewInt(-1),
		uplc.ConstInteger{Value: huge},
		uplc.ConstInteger{Value: new(big.Int).Neg(huge)},
		uplc.ConstByteString{Value: []byte{0x00, 0xFF, 0xAB}},
		uplc.ConstByteString{Value: make([]byte, 300)}, // exercises the >255-byte chunk boundary
		uplc.ConstString{Value: "hello, world"},
		uplc.ConstUnit{},
		uplc.ConstBool{Value: true},
		uplc.ConstBool{Value: false},
		uplc.ConstData{Value: data.NewI(42)},
		uplc.ConstData{Value: data.Constr{Tag: 2, Args: []data.Data{data.NewI(1), data.NewB([]byte("x"))}}},
		uplc.ConstList{ElemType: uplc.TInteger, Elems: []uplc.Constant{uplc.NewInt(1), uplc.NewInt(2), uplc.NewInt(3)}},
		uplc.ConstList{ElemType: uplc.TInteger, Elems: nil},
		uplc.ConstPair{First: uplc.NewInt(1), Second: uplc.ConstString{Value: "y"}},
	}
	for _, c := range cases {
		term := uplc.Const{Value: c}
		decoded := roundTripTerm(t, term)
		dc, ok := decoded.(uplc.Const)
		if !ok {
			t.Fatalf("decoded term is %T, want uplc.Const", decoded)
		}
		if !uplc.ConstantsEqual(c, dc.Value) {
			t.Errorf("constant round trip mismatch: want %s, got %s", c, dc.Value)
		}
	}
}

// TestRoundTripBLSMlResult covers ConstBLSMlResult directly: it is excluded
// from uplc.ConstantsEqual's switch (falls to its default: false case), so
// its round trip is checked with bytes.Equal on the opaque payload instead.
func TestRoundTripBLSMlResult(t *testing.T) {
	c := uplc.ConstBLSMlResult{Opaque: []byte{0x01, 0x02, 0x03, 0xFF}}
	term := uplc.Const{Value: c}
	decoded := roundTripTerm(t, term)
	dc, ok := decoded.(uplc.Const)
	if !ok {
		t.Fatalf("decoded term is %T, want uplc.Const", decoded)
	}
	got, ok := dc.Value.(uplc.ConstBLSMlResult)
	if !ok {
		t.Fatalf("decoded constant is %T, want uplc.ConstBLSMlResult", dc.Value)
	}
	if !bytes.Equal(got.Opaque, c.Opaque) {
		t.Errorf("Opaque round trip mismatch: want %x, got %x", c.Opaque, got.Opaque)
	}
}

func TestEncodeRejectsFreeVariable(t *testing.T) {
	// ResolveDeBruijn marks an unbound Var's index -1; Encode must reject
	// it rather than silently writing a nonsensical wire value.
	free := uplc.ResolveDeBruijn(uplc.Var{Name: "x"})
	if _, err := Encode(free, Version{1, 0, 0}); err == nil {
		t.Fatal("expected Encode to reject a free variable")
	}
}
