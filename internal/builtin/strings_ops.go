package builtin

import (
	"unicode/utf8"

	"github.com/scalus-go/scalus/internal/uplc"
)

func asString(id uplc.BuiltinId, args []uplc.Constant, i int) (string, error) {
	v, ok := args[i].(uplc.ConstString)
	if !ok {
		return "", fail(id, "argument %d: expected string, got %s", i, args[i].Type())
	}
	return v.Value, nil
}

func stringBuiltins() []*Builtin {
	return []*Builtin{
		{Id: uplc.AppendString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asString(uplc.AppendString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asString(uplc.AppendString, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstString{Value: a + b}, nil
		}},
		{Id: uplc.EqualsString, Arity: 2, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			a, err := asString(uplc.EqualsString, args, 0)
			if err != nil {
				return nil, err
			}
			b, err := asString(uplc.EqualsString, args, 1)
			if err != nil {
				return nil, err
			}
			return uplc.ConstBool{Value: a == b}, nil
		}},
		{Id: uplc.EncodeUtf8, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			s, err := asString(uplc.EncodeUtf8, args, 0)
			if err != nil {
				return nil, err
			}
			return uplc.ConstByteString{Value: []byte(s)}, nil
		}},
		{Id: uplc.DecodeUtf8, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
			b, err := asBytes(uplc.DecodeUtf8, args, 0)
			if err != nil {
				return nil, err
			}
			if !utf8.Valid(b) {
				return nil, fail(uplc.DecodeUtf8, "invalid utf-8 byte sequence")
			}
			return uplc.ConstString{Value: string(b)}, nil
		}},
	}
}
