package builtin

import (
	"math/big"

	"github.com/scalus-go/scalus/internal/uplc"
)

func asInt(id uplc.BuiltinId, args []uplc.Constant, i int) (*big.Int, error) {
	v, ok := args[i].(uplc.ConstInteger)
	if !ok {
		return nil, fail(id, "argument %d: expected integer, got %s", i, args[i].Type())
	}
	return v.Value, nil
}

// floorDivMod implements floor division/modulus matching the real Plutus
// semantics: the quotient rounds toward negative infinity and a non-zero
// remainder has the same sign as the divisor (unlike Go's truncating / and
// %). big.Int.DivMod is Euclidean (remainder never negative), which agrees
// with floor only for a positive divisor, so a negative divisor with a
// non-zero remainder is corrected by one step.
func floorDivMod(a, b *big.Int) (q, r *big.Int) {
	q, r = new(big.Int), new(big.Int)
	q.DivMod(a, b, r)
	if r.Sign() != 0 && b.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}

func integerBuiltins() []*Builtin {
	bin := func(id uplc.BuiltinId, f func(a, b *big.Int) (*big.Int, error)) *Builtin {
		return &Builtin{Id: id, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asInt(id, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asInt(id, args, 1)
			if err != nil {
				return nil, err
			}
			r, err := f(a, b)
			if err != nil {
				return nil, err
			}
			return uplc.ConstInteger{Value: r}, nil
		}}
	}
	cmp := func(id uplc.BuiltinId, f func(a, b *big.Int) bool) *Builtin {
		return &Builtin{Id: id, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asInt(id, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asInt(id, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: f(a, b)}, nil
		}}
	}

	return []*Builtin{
		bin(uplc.AddInteger, func(a, b *big.Int) (*big.Int, error) {
			return new(big.Int).Add(a, b), nil
		}),
		bin(uplc.SubtractInteger, func(a, b *big.Int) (*big.Int, error) {
			return new(big.Int).Sub(a, b), nil
		}),
		bin(uplc.MultiplyInteger, func(a, b *big.Int) (*big.Int, error) {
			return new(big.Int).Mul(a, b), nil
		}),
		bin(uplc.DivideInteger, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, fail(uplc.DivideInteger, "division by zero")
			}
			q, _ := floorDivMod(a, b)
			return q, nil
		}),
		bin(uplc.ModInteger, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, fail(uplc.ModInteger, "division by zero")
			}
			_, r := floorDivMod(a, b)
			return r, nil
		}),
		bin(uplc.QuotientInteger, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, fail(uplc.QuotientInteger, "division by zero")
			}
			return new(big.Int).Quo(a, b), nil
		}),
		bin(uplc.RemainderInteger, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, fail(uplc.RemainderInteger, "division by zero")
			}
			return new(big.Int).Rem(a, b), nil
		}),
		cmp(uplc.EqualsInteger, func(a, b *big.Int) bool { return a.Cmp(b) == 0 }),
		cmp(uplc.LessThanInteger, func(a, b *big.Int) bool { return a.Cmp(b) < 0 }),
		cmp(uplc.LessThanEqualsInteger, func(a, b *big.Int) bool { return a.Cmp(b) <= 0 }),
	}
}
