package flat

import "math/big"

var big7F = big.NewInt(0x7F)

// WriteBigNatural generalizes WriteNatural to arbitrary precision: the
// same 7-bit-group, continuation-bit encoding, just shifting a *big.Int
// instead of a uint64 so magnitudes beyond 64 bits round-trip exactly.
func (w *Writer) WriteBigNatural(v *big.Int) {
	v = new(big.Int).Set(v)
	for {
		group := new(big.Int).And(v, big7F)
		v.Rsh(v, 7)
		if v.Sign() == 0 {
			w.WriteBit(false)
			w.WriteBits(group.Uint64(), 7)
			return
		}
		w.WriteBit(true)
		w.WriteBits(group.Uint64(), 7)
	}
}

// ReadBigNatural decodes a value written by WriteBigNatural.
func (r *Reader) ReadBigNatural() (*big.Int, error) {
	v := new(big.Int)
	shift := uint(0)
	for {
		more, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		group, err := r.ReadBits(7)
		if err != nil {
			return nil, err
		}
		term := new(big.Int).Lsh(big.NewInt(int64(group)), shift)
		v.Or(v, term)
		shift += 7
		if !more {
			return v, nil
		}
	}
}

// WriteBigInteger zigzag-encodes an arbitrary-precision signed integer
// (spec's ConstInteger, which carries a *big.Int): 0, -1, 1, -2, 2, ... ->
// 0, 1, 2, 3, 4, ....
func (w *Writer) WriteBigInteger(v *big.Int) {
	var zz big.Int
	if v.Sign() < 0 {
		zz.Lsh(new(big.Int).Neg(v), 1)
		zz.Sub(&zz, big.NewInt(1))
	} else {
		zz.Lsh(v, 1)
	}
	w.WriteBigNatural(&zz)
}

// ReadBigInteger decodes a value written by WriteBigInteger.
func (r *Reader) ReadBigInteger() (*big.Int, error) {
	zz, err := r.ReadBigNatural()
	if err != nil {
		return nil, err
	}
	odd := new(big.Int).And(zz, big.NewInt(1)).Sign() != 0
	half := new(big.Int).Rsh(zz, 1)
	if odd {
		half.Add(half, big.NewInt(1))
		half.Neg(half)
	}
	return half, nil
}
