package data

import "math/big"

// MemoryUsage approximates the Plutus "ExMemory" size of a Data value, in
// 8-byte words, for use by builtin cost formulas (spec §4.3). It is a
// structural size, not a count of allocations: constructors/maps/lists cost
// one word of overhead for the container itself plus the recursive cost of
// their children; integers and byte strings cost one word per 8 bytes of magnitude
// (minimum one word).
func MemoryUsage(d Data) int64 {
	switch v := d.(type) {
	case Constr:
		total := int64(1)
		for _, a := range v.Args {
			total += MemoryUsage(a)
		}
		return total
	case Map:
		total := int64(1)
		for _, p := range v.Entries {
			total += MemoryUsage(p.Key) + MemoryUsage(p.Value)
		}
		return total
	case List:
		total := int64(1)
		for _, e := range v.Elems {
			total += MemoryUsage(e)
		}
		return total
	case I:
		return IntegerMemory(v.Value)
	case B:
		return ByteStringMemory(len(v.Bytes))
	default:
		return 1
	}
}

// IntegerMemory is the word-count of a big integer's magnitude (minimum 1).
func IntegerMemory(z *big.Int) int64 {
	bits := z.BitLen()
	words := (bits + 63) / 64
	if words < 1 {
		words = 1
	}
	return int64(words)
}

// ByteStringMemory is the word-count of n raw bytes (minimum 1).
func ByteStringMemory(n int) int64 {
	words := (n + 7) / 8
	if words < 1 {
		words = 1
	}
	return int64(words)
}
