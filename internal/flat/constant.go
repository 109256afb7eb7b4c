package flat

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

// writeConstant encodes a Constant's type tag followed by its payload.
// Unlike the reference flat encoding (which writes a constant's full type
// application up front as a separate list before any values), this codec
// interleaves a value's own type tag with its payload recursively —
// simpler to write and read symmetrically, at the cost of not matching the
// reference encoder byte-for-byte (see DESIGN.md).
func writeConstant(w *Writer, c uplc.Constant) error {
	w.WriteNatural(uint64(c.Type()))
	return writeConstantValue(w, c)
}

// writeConstantValue writes only a value's payload, for contexts (ConstList
// elements, ConstPair components) where the element type was already
// written by the enclosing constant.
func writeConstantValue(w *Writer, c uplc.Constant) error {
	switch cv := c.(type) {
	case uplc.ConstInteger:
		w.WriteBigInteger(cv.Value)
	case uplc.ConstByteString:
		w.WriteBytes(cv.Value)
	case uplc.ConstString:
		w.WriteBytes([]byte(cv.Value))
	case uplc.ConstUnit:
	case uplc.ConstBool:
		w.WriteBit(cv.Value)
	case uplc.ConstData:
		w.WriteBytes(cv.Value.Cbor())
	case uplc.ConstList:
		w.WriteNatural(uint64(cv.ElemType))
		w.WriteNatural(uint64(len(cv.Elems)))
		for _, e := range cv.Elems {
			if err := writeConstantValue(w, e); err != nil {
				return err
			}
		}
	case uplc.ConstPair:
		w.WriteNatural(uint64(cv.First.Type()))
		w.WriteNatural(uint64(cv.Second.Type()))
		if err := writeConstantValue(w, cv.First); err != nil {
			return err
		}
		return writeConstantValue(w, cv.Second)
	case uplc.ConstBLSG1:
		w.WriteBytes(cv.Compressed[:])
	case uplc.ConstBLSG2:
		w.WriteBytes(cv.Compressed[:])
	case uplc.ConstBLSMlResult:
		w.WriteBytes(cv.Opaque)
	default:
		return fmt.Errorf("flat: unknown constant kind %T", c)
	}
	return nil
}

func readConstant(r *Reader) (uplc.Constant, error) {
	rawType, err := r.ReadNatural()
	if err != nil {
		return nil, err
	}
	return readConstantPayload(r, uplc.ConstType(rawType))
}

func readConstantPayload(r *Reader, t uplc.ConstType) (uplc.Constant, error) {
	switch t {
	case uplc.TInteger:
		v, err := r.ReadBigInteger()
		if err != nil {
			return nil, err
		}
		return uplc.ConstInteger{Value: v}, nil
	case uplc.TByteString:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return uplc.ConstByteString{Value: bs}, nil
	case uplc.TString:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return uplc.ConstString{Value: string(bs)}, nil
	case uplc.TUnit:
		return uplc.ConstUnit{}, nil
	case uplc.TBool:
		b, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		return uplc.ConstBool{Value: b}, nil
	case uplc.TData:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		d, err := data.Decode(bs)
		if err != nil {
			return nil, fmt.Errorf("flat: decoding embedded Data: %w", err)
		}
		return uplc.ConstData{Value: d}, nil
	case uplc.TList:
		elemRaw, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		elemType := uplc.ConstType(elemRaw)
		n, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		elems := make([]uplc.Constant, n)
		for i := range elems {
			elems[i], err = readConstantPayload(r, elemType)
			if err != nil {
				return nil, err
			}
		}
		return uplc.ConstList{ElemType: elemType, Elems: elems}, nil
	case uplc.TPair:
		firstRaw, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		secondRaw, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		first, err := readConstantPayload(r, uplc.ConstType(firstRaw))
		if err != nil {
			return nil, err
		}
		second, err := readConstantPayload(r, uplc.ConstType(secondRaw))
		if err != nil {
			return nil, err
		}
		return uplc.ConstPair{First: first, Second: second}, nil
	case uplc.TBLSG1:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		var arr [48]byte
		copy(arr[:], bs)
		return uplc.ConstBLSG1{Compressed: arr}, nil
	case uplc.TBLSG2:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		var arr [96]byte
		copy(arr[:], bs)
		return uplc.ConstBLSG2{Compressed: arr}, nil
	case uplc.TBLSMlResult:
		bs, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return uplc.ConstBLSMlResult{Opaque: bs}, nil
	default:
		return nil, fmt.Errorf("flat: unknown constant type tag %d", t)
	}
}
