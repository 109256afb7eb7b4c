package builtin

import (
	"github.com/scalus-go/scalus/internal/data"
	"github.com/scalus-go/scalus/internal/uplc"
)

func asData(id uplc.BuiltinId, args []uplc.Constant, i int) (data.Data, error) {
	v, ok := args[i].(uplc.ConstData)
	if !ok {
		return nil, fail(id, "argument %d: expected data, got %s", i, args[i].Type())
	}
	return v.Value, nil
}

// dataElemList builds a ConstList of TData from a data.List's elements.
func dataElemList(elems []data.Data) uplc.ConstList {
	out := make([]uplc.Constant, len(elems))
	for i, e := range elems {
		out[i] = uplc.ConstData{Value: e}
	}
	return uplc.ConstList{ElemType: uplc.TData, Elems: out}
}

// pairDataList builds a ConstList of Pair(Data,Data) from a data.Map's entries.
func pairDataList(entries []data.Pair) uplc.ConstList {
	out := make([]uplc.Constant, len(entries))
	for i, e := range entries {
		out[i] = uplc.ConstPair{First: uplc.ConstData{Value: e.Key}, Second: uplc.ConstData{Value: e.Value}}
	}
	return uplc.ConstList{ElemType: uplc.TPair, Elems: out}
}

func dataBuiltins() []*Builtin {
	return []*Builtin{
		{Id: uplc.ChooseData, Arity: 6, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.ChooseData, args, 0)
			if err != nil {
				return nil, err
			}
			switch d.(type) {
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
				return nil, fail(uplc.ChooseData, "unreachable data variant")
			}
		}},
		{Id: uplc.ConstrData, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			tag, err := asInt(uplc.ConstrData, args, 0)
			if err != nil {
				return nil, err
			}
			l, err := asList(uplc.ConstrData, args, 1)
			if err != nil {
				return nil, err
			}
			elems := make([]data.Data, len(l.Elems))
			for i, e := range l.Elems {
				d, ok := e.(uplc.ConstData)
				if !ok {
					return nil, fail(uplc.ConstrData, "list element %d is not data", i)
				}
				elems[i] = d.Value
			}
			return uplc.ConstData{Value: data.Constr{Tag: tag.Uint64(), Args: elems}}, nil
		}},
		{Id: uplc.MapData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.MapData, args, 0)
			if err != nil {
				return nil, err
			}
			entries := make([]data.Pair, len(l.Elems))
			for i, e := range l.Elems {
				p, ok := e.(uplc.ConstPair)
				if !ok {
					return nil, fail(uplc.MapData, "list element %d is not a pair", i)
				}
				k, ok1 := p.First.(uplc.ConstData)
				v, ok2 := p.Second.(uplc.ConstData)
				if !ok1 || !ok2 {
					return nil, fail(uplc.MapData, "list element %d is not a (data,data) pair", i)
				}
				entries[i] = data.Pair{Key: k.Value, Value: v.Value}
			}
			return uplc.ConstData{Value: data.Map{Entries: entries}}, nil
		}},
		{Id: uplc.ListData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			l, err := asList(uplc.ListData, args, 0)
			if err != nil {
				return nil, err
			}
			elems := make([]data.Data, len(l.Elems))
			for i, e := range l.Elems {
				d, ok := e.(uplc.ConstData)
				if !ok {
					return nil, fail(uplc.ListData, "list element %d is not data", i)
				}
				elems[i] = d.Value
			}
			return uplc.ConstData{Value: data.List{Elems: elems}}, nil
		}},
		{Id: uplc.IData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			n, err := asInt(uplc.IData, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstData{Value: data.I{Value: n}}, nil
		}},
		{Id: uplc.BData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.BData, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstData{Value: data.B{Bytes: b}}, nil
		}},
		{Id: uplc.UnConstrData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.UnConstrData, args, 0)
			if err != nil {
				return nil, err
			}
			c, ok := d.(data.Constr)
			if !ok {
				return nil, fail(uplc.UnConstrData, "expected Constr data, got %T", d)
			}
			return uplc.ConstPair{First: uplc.NewInt(int64(c.Tag)), Second: dataElemList(c.Args)}, nil
		}},
		{Id: uplc.UnMapData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.UnMapData, args, 0)
			if err != nil {
				return nil, err
			}
			m, ok := d.(data.Map)
			if !ok {
				return nil, fail(uplc.UnMapData, "expected Map data, got %T", d)
			}
			return pairDataList(m.Entries), nil
		}},
		{Id: uplc.UnListData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.UnListData, args, 0)
			if err != nil {
				return nil, err
			}
			l, ok := d.(data.List)
			if !ok {
				return nil, fail(uplc.UnListData, "expected List data, got %T", d)
			}
			return dataElemList(l.Elems), nil
		}},
		{Id: uplc.UnIData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.UnIData, args, 0)
			if err != nil {
				return nil, err
			}
			i, ok := d.(data.I)
			if !ok {
				return nil, fail(uplc.UnIData, "expected I data, got %T", d)
			}
			return uplc.ConstInteger{Value: i.Value}, nil
		}},
		{Id: uplc.UnBData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.UnBData, args, 0)
			if err != nil {
				return nil, err
			}
			b, ok := d.(data.B)
			if !ok {
				return nil, fail(uplc.UnBData, "expected B data, got %T", d)
			}
			return uplc.ConstByteString{Value: b.Bytes}, nil
		}},
		{Id: uplc.EqualsData, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asData(uplc.EqualsData, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asData(uplc.EqualsData, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: a.Equal(b)}, nil
		}},
		{Id: uplc.SerialiseData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			d, err := asData(uplc.SerialiseData, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstByteString{Value: d.Cbor()}, nil
		}},
		{Id: uplc.MkPairData, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asData(uplc.MkPairData, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asData(uplc.MkPairData, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstPair{First: uplc.ConstData{Value: a}, Second: uplc.ConstData{Value: b}}, nil
		}},
		{Id: uplc.MkNilData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			if _, ok := args[0].(uplc.ConstUnit); !ok {
				return nil, fail(uplc.MkNilData, "argument 0: expected unit, got %s", args[0].Type())
			}
			return uplc.ConstList{ElemType: uplc.TData}, nil
		}},
		{Id: uplc.MkNilPairData, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			if _, ok := args[0].(uplc.ConstUnit); !ok {
				return nil, fail(uplc.MkNilPairData, "argument 0: expected unit, got %s", args[0].Type())
			}
			return uplc.ConstList{ElemType: uplc.TPair}, nil
		}},
	}
}
