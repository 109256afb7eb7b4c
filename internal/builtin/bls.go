package builtin

import (
	bls "github.com/kilic/bls12-381"

	"github.com/scalus-go/scalus/internal/uplc"
)

// pairChunk is the wire width of one (G1,G2) pair folded into an MlResult's
// opaque payload: a compressed G1 point followed by a compressed G2 point.
const pairChunk = 48 + 96

func asG1(id uplc.BuiltinId, args []uplc.Constant, i int) (*bls.PointG1, error) {
	v, ok := args[i].(uplc.ConstBLSG1)
	if !ok {
		return nil, fail(id, "argument %d: expected bls12_381_G1_element, got %s", i, args[i].Type())
	}
	p, err := bls.NewG1().FromCompressed(v.Compressed[:])
	if err != nil {
		return nil, fail(id, "argument %d: invalid G1 point: %v", i, err)
	}
	return p, nil
}

func asG2(id uplc.BuiltinId, args []uplc.Constant, i int) (*bls.PointG2, error) {
	v, ok := args[i].(uplc.ConstBLSG2)
	if !ok {
		return nil, fail(id, "argument %d: expected bls12_381_G2_element, got %s", i, args[i].Type())
	}
	p, err := bls.NewG2().FromCompressed(v.Compressed[:])
	if err != nil {
		return nil, fail(id, "argument %d: invalid G2 point: %v", i, err)
	}
	return p, nil
}

// asMlResult splits an MlResult's opaque payload back into the list of
// (G1,G2) pairs it represents (see mulMlResult / millerLoop).
func asMlResult(id uplc.BuiltinId, args []uplc.Constant, i int) ([]byte, error) {
	v, ok := args[i].(uplc.ConstBLSMlResult)
	if !ok {
		return nil, fail(id, "argument %d: expected bls12_381_MlResult, got %s", i, args[i].Type())
	}
	if len(v.Opaque)%pairChunk != 0 {
		return nil, fail(id, "argument %d: malformed MlResult payload", i)
	}
	return v.Opaque, nil
}

func g1Builtins() []*Builtin {
	return []*Builtin{
		{Id: uplc.Bls12_381_G1_add, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG1(uplc.Bls12_381_G1_add, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asG1(uplc.Bls12_381_G1_add, args, 1)
			if err != nil {
				return nil, err
			}
			g1 := bls.NewG1()
			r := g1.New()
			g1.Add(r, a, b)
			var out uplc.ConstBLSG1
			copy(out.Compressed[:], g1.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G1_neg, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG1(uplc.Bls12_381_G1_neg, args, 0)
			if err != nil {
				return nil, err
			}
			g1 := bls.NewG1()
			r := g1.New()
			g1.Neg(r, a)
			var out uplc.ConstBLSG1
			copy(out.Compressed[:], g1.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G1_scalarMul, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			k, err := asInt(uplc.Bls12_381_G1_scalarMul, args, 0)
			if err != nil {
				return nil, err
			}
			p, err := asG1(uplc.Bls12_381_G1_scalarMul, args, 1)
			if err != nil {
				return nil, err
			}
			g1 := bls.NewG1()
			r := g1.New()
			g1.MulScalar(r, p, k)
			var out uplc.ConstBLSG1
			copy(out.Compressed[:], g1.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G1_equal, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG1(uplc.Bls12_381_G1_equal, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asG1(uplc.Bls12_381_G1_equal, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: bls.NewG1().Equal(a, b)}, nil
		}},
		{Id: uplc.Bls12_381_G1_compress, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG1(uplc.Bls12_381_G1_compress, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstByteString{Value: bls.NewG1().ToCompressed(a)}, nil
		}},
		{Id: uplc.Bls12_381_G1_uncompress, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.Bls12_381_G1_uncompress, args, 0)
			if err != nil {
				return nil, err
			}
			if len(b) != 48 {
				return nil, fail(uplc.Bls12_381_G1_uncompress, "expected 48-byte compressed G1 point, got %d bytes", len(b))
			}
			if _, err := bls.NewG1().FromCompressed(b); err != nil {
				return nil, fail(uplc.Bls12_381_G1_uncompress, "invalid G1 point: %v", err)
			}
			var out uplc.ConstBLSG1
			copy(out.Compressed[:], b)
			return out, nil
		}},
		{Id: uplc.Bls12_381_G1_hashToGroup, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			msg, err := asBytes(uplc.Bls12_381_G1_hashToGroup, args, 0)
			if err != nil {
				return nil, err
			}
			dst, err := asBytes(uplc.Bls12_381_G1_hashToGroup, args, 1)
			if err != nil {
				return nil, err
			}
			g1 := bls.NewG1()
			p, err := g1.HashToCurve(msg, dst)
			if err != nil {
				return nil, fail(uplc.Bls12_381_G1_hashToGroup, "hash-to-curve failed: %v", err)
			}
			var out uplc.ConstBLSG1
			copy(out.Compressed[:], g1.ToCompressed(p))
			return out, nil
		}},
	}
}

func g2Builtins() []*Builtin {
	return []*Builtin{
		{Id: uplc.Bls12_381_G2_add, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG2(uplc.Bls12_381_G2_add, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asG2(uplc.Bls12_381_G2_add, args, 1)
			if err != nil {
				return nil, err
			}
			g2 := bls.NewG2()
			r := g2.New()
			g2.Add(r, a, b)
			var out uplc.ConstBLSG2
			copy(out.Compressed[:], g2.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G2_neg, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG2(uplc.Bls12_381_G2_neg, args, 0)
			if err != nil {
				return nil, err
			}
			g2 := bls.NewG2()
			r := g2.New()
			g2.Neg(r, a)
			var out uplc.ConstBLSG2
			copy(out.Compressed[:], g2.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G2_scalarMul, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			k, err := asInt(uplc.Bls12_381_G2_scalarMul, args, 0)
			if err != nil {
				return nil, err
			}
			p, err := asG2(uplc.Bls12_381_G2_scalarMul, args, 1)
			if err != nil {
				return nil, err
			}
			g2 := bls.NewG2()
			r := g2.New()
			g2.MulScalar(r, p, k)
			var out uplc.ConstBLSG2
			copy(out.Compressed[:], g2.ToCompressed(r))
			return out, nil
		}},
		{Id: uplc.Bls12_381_G2_equal, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG2(uplc.Bls12_381_G2_equal, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asG2(uplc.Bls12_381_G2_equal, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: bls.NewG2().Equal(a, b)}, nil
		}},
		{Id: uplc.Bls12_381_G2_compress, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG2(uplc.Bls12_381_G2_compress, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstByteString{Value: bls.NewG2().ToCompressed(a)}, nil
		}},
		{Id: uplc.Bls12_381_G2_uncompress, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.Bls12_381_G2_uncompress, args, 0)
			if err != nil {
				return nil, err
			}
			if len(b) != 96 {
				return nil, fail(uplc.Bls12_381_G2_uncompress, "expected 96-byte compressed G2 point, got %d bytes", len(b))
			}
			if _, err := bls.NewG2().FromCompressed(b); err != nil {
				return nil, fail(uplc.Bls12_381_G2_uncompress, "invalid G2 point: %v", err)
			}
			var out uplc.ConstBLSG2
			copy(out.Compressed[:], b)
			return out, nil
		}},
		{Id: uplc.Bls12_381_G2_hashToGroup, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			msg, err := asBytes(uplc.Bls12_381_G2_hashToGroup, args, 0)
			if err != nil {
				return nil, err
			}
			dst, err := asBytes(uplc.Bls12_381_G2_hashToGroup, args, 1)
			if err != nil {
				return nil, err
			}
			g2 := bls.NewG2()
			p, err := g2.HashToCurve(msg, dst)
			if err != nil {
				return nil, fail(uplc.Bls12_381_G2_hashToGroup, "hash-to-curve failed: %v", err)
			}
			var out uplc.ConstBLSG2
			copy(out.Compressed[:], g2.ToCompressed(p))
			return out, nil
		}},
	}
}

// pairingBuiltins implements millerLoop/mulMlResult/finalVerify by deferring
// the actual pairing computation to finalVerify: an MlResult's opaque
// payload is simply the (compressed G1 || compressed G2) concatenation of the
// (G1,G2) pairs folded into it so far, and mulMlResult is pair-list
// concatenation (valid because e(a,b)*e(c,d) is exactly the pairing engine
// result of accumulating both pairs). finalVerify feeds one side's pairs in
// directly and the other side's pairs in negated (via AddPairInv), then
// asks the engine whether the combined product is the identity — which
// holds iff the two original products were equal.
func pairingBuiltins() []*Builtin {
	return []*Builtin{
		{Id: uplc.Bls12_381_millerLoop, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asG1(uplc.Bls12_381_millerLoop, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asG2(uplc.Bls12_381_millerLoop, args, 1)
			if err != nil {
				return nil, err
			}
			g1, g2 := bls.NewG1(), bls.NewG2()
			chunk := make([]byte, 0, pairChunk)
			chunk = append(chunk, g1.ToCompressed(a)...)
			chunk = append(chunk, g2.ToCompressed(b)...)
			return uplc.ConstBLSMlResult{Opaque: chunk}, nil
		}},
		{Id: uplc.Bls12_381_mulMlResult, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asMlResult(uplc.Bls12_381_mulMlResult, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asMlResult(uplc.Bls12_381_mulMlResult, args, 1)
			if err != nil {
				return nil, err
			}
			out := make([]byte, 0, len(a)+len(b))
			out = append(out, a...)
			out = append(out, b...)
			return uplc.ConstBLSMlResult{Opaque: out}, nil
		}},
		{Id: uplc.Bls12_381_finalVerify, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asMlResult(uplc.Bls12_381_finalVerify, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asMlResult(uplc.Bls12_381_finalVerify, args, 1)
			if err != nil {
				return nil, err
			}
			g1, g2 := bls.NewG1(), bls.NewG2()
			engine := bls.NewPairingEngine()
			if err := addPairsFromChunks(engine, g1, g2, a, false); err != nil {
				return nil, fail(uplc.Bls12_381_finalVerify, "argument 0: %v", err)
			}
			if err := addPairsFromChunks(engine, g1, g2, b, true); err != nil {
				return nil, fail(uplc.Bls12_381_finalVerify, "argument 1: %v", err)
			}
			return uplc.ConstBool{Value: engine.Check()}, nil
		}},
	}
}

func addPairsFromChunks(e *bls.Engine, g1 *bls.G1, g2 *bls.G2, chunks []byte, inverse bool) error {
	for off := 0; off < len(chunks); off += pairChunk {
		p1, err := g1.FromCompressed(chunks[off : off+48])
		if err != nil {
			return err
		}
		p2, err := g2.FromCompressed(chunks[off+48 : off+pairChunk])
		if err != nil {
			return err
		}
		if inverse {
			e.AddPairInv(p1, p2)
		} else {
			e.AddPair(p1, p2)
		}
	}
	return nil
}

func blsBuiltins() []*Builtin {
	all := append([]*Builtin{}, g1Builtins()...)
	all = append(all, g2Builtins()...)
	all = append(all, pairingBuiltins()...)
	return all
}
