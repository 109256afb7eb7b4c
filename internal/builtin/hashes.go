package builtin

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/scalus-go/scalus/internal/uplc"
)

func hashBuiltin(id uplc.BuiltinId, hash func([]byte) []byte) *Builtin {
	return &Builtin{Id: id, Arity: 1, Apply: func(args []uplc.Constant) (uplc.Constant, error) {
		b, err := asBytes(id, args, 0)
		if err != nil {
			return nil, err
		}
		return uplc.ConstByteString{Value: hash(b)}, nil
	}}
}

func hashBuiltins() []*Builtin {
	return []*Builtin{
		hashBuiltin(uplc.Sha2_256, func(b []byte) []byte {
			sum := sha256.Sum256(b)
			return sum[:]
		}),
		hashBuiltin(uplc.Sha3_256, func(b []byte) []byte {
			sum := sha3.Sum256(b)
			return sum[:]
		}),
		hashBuiltin(uplc.Blake2b_224, func(b []byte) []byte {
			h, _ := blake2b.New(28, nil)
			h.Write(b)
			return h.Sum(nil)
		}),
		hashBuiltin(uplc.Blake2b_256, func(b []byte) []byte {
			sum := blake2b.Sum256(b)
			return sum[:]
		}),
	}
}
