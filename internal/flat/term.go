package flat

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/uplc"
)

// Version is the three-component protocol version stamped in a flat
// program's header (spec §6 "version triple").
type Version struct {
	Major, Minor, Patch uint64
}

// termTag identifies a Term constructor on the wire, 4 bits wide.
type termTag uint64

const (
	tagVar termTag = iota
	tagLamAbs
	tagApply
	tagConst
	tagBuiltin
	tagDelay
	tagForce
	tagError
	tagConstr
	tagCase
)

const termTagBits = 4

// builtinIDBits is the fixed field width used to encode a BuiltinId. The
// reference Plutus encoding widens this field as later protocol versions
// add builtins; this codec always uses a single fixed width, trading
// exact wire compatibility for a simpler, version-independent round trip
// (see DESIGN.md).
const builtinIDBits = 7

// Encode serializes term into flat's bit-packed wire format, stamped with
// the given header version. term's Vars must already carry resolved de
// Bruijn indices (uplc.ResolveDeBruijn) — flat has no notion of names.
func Encode(term uplc.Term, version Version) ([]byte, error) {
	w := NewWriter()
	w.WriteNatural(version.Major)
	w.WriteNatural(version.Minor)
	w.WriteNatural(version.Patch)
	if err := writeTerm(w, term); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses a byte sequence produced by Encode, returning the term
// (with Vars carrying only resolved indices; Name is left empty) and the
// header version.
func Decode(data []byte) (uplc.Term, Version, error) {
	r := NewReader(data)
	major, err := r.ReadNatural()
	if err != nil {
		return nil, Version{}, fmt.Errorf("flat: reading version header: %w", err)
	}
	minor, err := r.ReadNatural()
	if err != nil {
		return nil, Version{}, fmt.Errorf("flat: reading version header: %w", err)
	}
	patch, err := r.ReadNatural()
	if err != nil {
		return nil, Version{}, fmt.Errorf("flat: reading version header: %w", err)
	}
	term, err := readTerm(r)
	if err != nil {
		return nil, Version{}, err
	}
	return term, Version{major, minor, patch}, nil
}

func writeTerm(w *Writer, t uplc.Term) error {
	switch n := t.(type) {
	case uplc.Var:
		w.WriteBits(uint64(tagVar), termTagBits)
		if n.Index <= 0 {
			return fmt.Errorf("flat: Var %q has no resolved de Bruijn index", n.Name)
		}
		w.WriteNatural(uint64(n.Index))
		return nil
	case uplc.LamAbs:
		w.WriteBits(uint64(tagLamAbs), termTagBits)
		return writeTerm(w, n.Body)
	case uplc.Apply:
		w.WriteBits(uint64(tagApply), termTagBits)
		if err := writeTerm(w, n.Fun); err != nil {
			return err
		}
		return writeTerm(w, n.Arg)
	case uplc.Const:
		w.WriteBits(uint64(tagConst), termTagBits)
		return writeConstant(w, n.Value)
	case uplc.Builtin:
		w.WriteBits(uint64(tagBuiltin), termTagBits)
		w.WriteBits(uint64(n.Id), builtinIDBits)
		return nil
	case uplc.Delay:
		w.WriteBits(uint64(tagDelay), termTagBits)
		return writeTerm(w, n.Term)
	case uplc.Force:
		w.WriteBits(uint64(tagForce), termTagBits)
		return writeTerm(w, n.Term)
	case uplc.Error:
		w.WriteBits(uint64(tagError), termTagBits)
		return nil
	case uplc.Constr:
		w.WriteBits(uint64(tagConstr), termTagBits)
		w.WriteNatural(n.Tag)
		w.WriteNatural(uint64(len(n.Args)))
		for _, a := range n.Args {
			if err := writeTerm(w, a); err != nil {
				return err
			}
		}
		return nil
	case uplc.Case:
		w.WriteBits(uint64(tagCase), termTagBits)
		if err := writeTerm(w, n.Scrutinee); err != nil {
			return err
		}
		w.WriteNatural(uint64(len(n.Branches)))
		for _, b := range n.Branches {
			if err := writeTerm(w, b); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("flat: unknown term shape %T", t)
	}
}

func readTerm(r *Reader) (uplc.Term, error) {
	rawTag, err := r.ReadBits(termTagBits)
	if err != nil {
		return nil, err
	}
	switch termTag(rawTag) {
	case tagVar:
		idx, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		return uplc.Var{Index: int(idx)}, nil
	case tagLamAbs:
		body, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		return uplc.LamAbs{Body: body}, nil
	case tagApply:
		fun, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		arg, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		return uplc.Apply{Fun: fun, Arg: arg}, nil
	case tagConst:
		c, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		return uplc.Const{Value: c}, nil
	case tagBuiltin:
		id, err := r.ReadBits(builtinIDBits)
		if err != nil {
			return nil, err
		}
		return uplc.Builtin{Id: uplc.BuiltinId(id)}, nil
	case tagDelay:
		inner, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		return uplc.Delay{Term: inner}, nil
	case tagForce:
		inner, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		return uplc.Force{Term: inner}, nil
	case tagError:
		return uplc.Error{}, nil
	case tagConstr:
		tag, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		n, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		args := make([]uplc.Term, n)
		for i := range args {
			args[i], err = readTerm(r)
			if err != nil {
				return nil, err
			}
		}
		return uplc.Constr{Tag: tag, Args: args}, nil
	case tagCase:
		scrutinee, err := readTerm(r)
		if err != nil {
			return nil, err
		}
		n, err := r.ReadNatural()
		if err != nil {
			return nil, err
		}
		branches := make([]uplc.Term, n)
		for i := range branches {
			branches[i], err = readTerm(r)
			if err != nil {
				return nil, err
			}
		}
		return uplc.Case{Scrutinee: scrutinee, Branches: branches}, nil
	default:
		return nil, fmt.Errorf("flat: unknown term tag %d", rawTag)
	}
}
