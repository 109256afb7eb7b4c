package builtin

import (
	"bytes"
	"math/big"

	"github.com/scalus-go/scalus/internal/uplc"
)

func asBytes(id uplc.BuiltinId, args []uplc.Constant, i int) ([]byte, error) {
	v, ok := args[i].(uplc.ConstByteString)
	if !ok {
		return nil, fail(id, "argument %d: expected bytestring, got %s", i, args[i].Type())
	}
	return v.Value, nil
}

func byteStringBuiltins() []*Builtin {
	return []*Builtin{
		{Id: uplc.AppendByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asBytes(uplc.AppendByteString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.AppendByteString, args, 1)
			if err != nil {
				return nil, err
			}
			out := make([]byte, 0, len(a)+len(b))
			out = append(out, a...)
			out = append(out, b...)
			return uplc.ConstByteString{Value: out}, nil
		}},
		{Id: uplc.ConsByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			n, err := asInt(uplc.ConsByteString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.ConsByteString, args, 1)
			if err != nil {
				return nil, err
			}
			byte256 := new(big.Int).Mod(n, big.NewInt(256))
			out := make([]byte, 0, len(b)+1)
			out = append(out, byte(byte256.Int64()))
			out = append(out, b...)
			return uplc.ConstByteString{Value: out}, nil
		}},
		{Id: uplc.SliceByteString, Arity: 3, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			start, err := asInt(uplc.SliceByteString, args, 0)
			if err != nil {
				return nil, err
			}
			length, err := asInt(uplc.SliceByteString, args, 1)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.SliceByteString, args, 2)
			if err != nil {
				return nil, err
			}
			lo := clampInt(start, 0, int64(len(b)))
			hi := clampInt(new(big.Int).Add(start, length), lo, int64(len(b)))
			out := make([]byte, hi-lo)
			copy(out, b[lo:hi])
			return uplc.ConstByteString{Value: out}, nil
		}},
		{Id: uplc.LengthOfByteString, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.LengthOfByteString, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.NewInt(int64(len(b))), nil
		}},
		{Id: uplc.IndexByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.IndexByteString, args, 0)
			if err != nil {
				return nil, err
			}
			idx, err := asInt(uplc.IndexByteString, args, 1)
			if err != nil {
				return nil, err
			}
			i := idx.Int64()
			if i < 0 || i >= int64(len(b)) {
				return nil, fail(uplc.IndexByteString, "index %d out of range [0,%d)", i, len(b))
			}
			return uplc.NewInt(int64(b[i])), nil
		}},
		{Id: uplc.EqualsByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asBytes(uplc.EqualsByteString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.EqualsByteString, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: bytes.Equal(a, b)}, nil
		}},
		{Id: uplc.LessThanByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asBytes(uplc.LessThanByteString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.LessThanByteString, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: bytes.Compare(a, b) < 0}, nil
		}},
		{Id: uplc.LessThanEqualsByteString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asBytes(uplc.LessThanEqualsByteString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asBytes(uplc.LessThanEqualsByteString, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: bytes.Compare(a, b) <= 0}, nil
		}},
	}
}

func clampInt(v *big.Int, lo, hi int64) int64 {
	if !v.IsInt64() {
		if v.Sign() < 0 {
			return lo
		}
		return hi
	}
	x := v.Int64()
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
