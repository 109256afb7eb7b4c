package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

// Canonical CBOR encoding/decoding of Data (spec §4.3). The implementation
// follows the same hand-rolled Stream/decode(*Stream) shape the teacher
// repo uses for ledger CBOR (cbor.go): no reflection-based marshaler, a
// small cursor type, and one decode function per major type dispatched
// from a head byte switch.

const (
	majorUint    = 0
	majorNegInt  = 1
	majorBytes   = 2
	majorArray   = 4
	majorMap     = 5
	majorTag     = 6
	chunkSize    = 64
	tagBignumPos = 2
	tagBignumNeg = 3
	tagEmbedded  = 24 // tag 24: nested CBOR-encoded byte string
)

// constructor tag ranges, per spec §4.3.
const (
	constrTagBase   = 121 // tags 0..6 -> 121..127
	constrTagWide   = 1280
	constrWideStart = 7
	constrWideEnd   = 127
	constrTagFlat   = 102 // general fallback for tag > 127
)

// Stream is a read cursor over a CBOR byte sequence.
type Stream struct {
	cbor []byte
	pos  int
}

func NewStream(cbor []byte) (*Stream, error) {
	if len(cbor) == 0 {
		return nil, errors.New("data: empty cbor input")
	}
	return &Stream{cbor, 0}, nil
}

func (s *Stream) atEnd() bool { return s.pos >= len(s.cbor) }

func (s *Stream) peek() (byte, error) {
	if s.atEnd() {
		return 0, errors.New("data: unexpected end of cbor stream")
	}
	return s.cbor[s.pos], nil
}

func (s *Stream) shift(n int) ([]byte, error) {
	if s.pos+n > len(s.cbor) {
		return nil, errors.New("data: unexpected end of cbor stream")
	}
	out := s.cbor[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

// Encode returns the canonical encoding of d.
func Encode(d Data) []byte {
	return d.Cbor()
}

// Decode parses a single Data value from bs. Extra trailing bytes are an
// error: a Data CBOR payload is exactly one value.
func Decode(bs []byte) (Data, error) {
	s, err := NewStream(bs)
	if err != nil {
		return nil, err
	}
	d, err := decode(s)
	if err != nil {
		return nil, err
	}
	if !s.atEnd() {
		return nil, fmt.Errorf("data: %d trailing bytes after decoding", len(s.cbor)-s.pos)
	}
	return d, nil
}

func decode(s *Stream) (Data, error) {
	b0, err := s.peek()
	if err != nil {
		return nil, err
	}
	major := int(b0 >> 5)

	switch major {
	case majorUint, majorNegInt:
		return decodeInt(s)
	case majorBytes:
		return decodeBytes(s)
	case majorArray:
		return decodeList(s)
	case majorMap:
		return decodeMap(s)
	case majorTag:
		return decodeTagged(s)
	default:
		return nil, fmt.Errorf("data: unsupported major type %d", major)
	}
}

// --- head byte ---

func encodeHead(major int, n uint64) []byte {
	m := byte(major) << 5
	switch {
	case n < 24:
		return []byte{m | byte(n)}
	case n < 1<<8:
		return []byte{m | 24, byte(n)}
	case n < 1<<16:
		buf := make([]byte, 3)
		buf[0] = m | 25
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n < 1<<32:
		buf := make([]byte, 5)
		buf[0] = m | 26
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = m | 27
		binary.BigEndian.PutUint64(buf[1:], n)
		return buf
	}
}

func encodeIndefHead(major int) []byte {
	return []byte{byte(major)<<5 | 31}
}

var breakByte = []byte{0xff}

// decodeHead reads a head byte and its argument. indefinite=true with n=0
// means an indefinite-length marker (additional info 31).
func decodeHead(s *Stream) (major int, n uint64, indefinite bool, err error) {
	b0, err := s.shift(1)
	if err != nil {
		return 0, 0, false, err
	}
	major = int(b0[0] >> 5)
	info := b0[0] & 0x1f

	switch {
	case info < 24:
		return major, uint64(info), false, nil
	case info == 24:
		b, err := s.shift(1)
		if err != nil {
			return 0, 0, false, err
		}
		return major, uint64(b[0]), false, nil
	case info == 25:
		b, err := s.shift(2)
		if err != nil {
			return 0, 0, false, err
		}
		return major, uint64(binary.BigEndian.Uint16(b)), false, nil
	case info == 26:
		b, err := s.shift(4)
		if err != nil {
			return 0, 0, false, err
		}
		return major, uint64(binary.BigEndian.Uint32(b)), false, nil
	case info == 27:
		b, err := s.shift(8)
		if err != nil {
			return 0, 0, false, err
		}
		return major, binary.BigEndian.Uint64(b), false, nil
	case info == 31:
		return major, 0, true, nil
	default:
		return 0, 0, false, fmt.Errorf("data: reserved additional info %d", info)
	}
}

// --- integers ---

func encodeInt(z *big.Int) []byte {
	if z.Sign() >= 0 {
		if z.IsUint64() {
			return encodeHead(majorUint, z.Uint64())
		}
		return append(encodeHead(majorTag, tagBignumPos), encodeBytesDef(z.Bytes())...)
	}
	// major 1 encodes -(n+1)
	mag := new(big.Int).Neg(z)
	mag.Sub(mag, big.NewInt(1))
	if mag.IsUint64() {
		return encodeHead(majorNegInt, mag.Uint64())
	}
	return append(encodeHead(majorTag, tagBignumNeg), encodeBytesDef(mag.Bytes())...)
}

func decodeInt(s *Stream) (Data, error) {
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if indef {
		return nil, errors.New("data: indefinite-length integer head")
	}
	z := new(big.Int).SetUint64(n)
	if major == majorNegInt {
		z.Add(z, big.NewInt(1))
		z.Neg(z)
	}
	return I{z}, nil
}

func decodeBignum(s *Stream, negative bool) (Data, error) {
	bs, err := decodeRawBytes(s)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).SetBytes(bs)
	if negative {
		z.Add(z, big.NewInt(1))
		z.Neg(z)
	}
	return I{z}, nil
}

// --- byte strings ---

func encodeBytesDef(bs []byte) []byte {
	return append(encodeHead(majorBytes, uint64(len(bs))), bs...)
}

// Encode ByteString canonically: definite chunks of at most 64 bytes,
// wrapped in an indefinite-length byte string when longer than one chunk.
func encodeBytes(bs []byte) []byte {
	if len(bs) <= chunkSize {
		return encodeBytesDef(bs)
	}
	out := encodeIndefHead(majorBytes)
	for i := 0; i < len(bs); i += chunkSize {
		end := i + chunkSize
		if end > len(bs) {
			end = len(bs)
		}
		out = append(out, encodeBytesDef(bs[i:end])...)
	}
	return append(out, breakByte...)
}

// decodeRawBytes decodes one byte string (definite or chunked-indefinite)
// at the stream's current position, returning the concatenated payload.
func decodeRawBytes(s *Stream) ([]byte, error) {
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if major != majorBytes {
		return nil, fmt.Errorf("data: expected byte string, got major type %d", major)
	}
	if !indef {
		return s.shift(int(n))
	}
	var out []byte
	for {
		b, err := s.peek()
		if err != nil {
			return nil, err
		}
		if b == 0xff {
			s.pos++
			return out, nil
		}
		chunk, err := decodeRawBytes(s)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

func decodeBytes(s *Stream) (Data, error) {
	bs, err := decodeRawBytes(s)
	if err != nil {
		return nil, err
	}
	return B{bs}, nil
}

// --- lists ---

func (l List) Cbor() []byte {
	out := encodeHead(majorArray, uint64(len(l.Elems)))
	for _, e := range l.Elems {
		out = append(out, e.Cbor()...)
	}
	return out
}

func decodeList(s *Stream) (Data, error) {
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if major != majorArray {
		return nil, fmt.Errorf("data: expected array, got major type %d", major)
	}
	var elems []Data
	if indef {
		for {
			b, err := s.peek()
			if err != nil {
				return nil, err
			}
			if b == 0xff {
				s.pos++
				break
			}
			e, err := decode(s)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
	} else {
		elems = make([]Data, 0, n)
		for i := uint64(0); i < n; i++ {
			e, err := decode(s)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
	}
	return List{elems}, nil
}

// --- maps ---

func (m Map) Cbor() []byte {
	out := encodeHead(majorMap, uint64(len(m.Entries)))
	for _, p := range m.Entries {
		out = append(out, p.Key.Cbor()...)
		out = append(out, p.Value.Cbor()...)
	}
	return out
}

func decodeMap(s *Stream) (Data, error) {
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if major != majorMap {
		return nil, fmt.Errorf("data: expected map, got major type %d", major)
	}
	var entries []Pair
	readPair := func() error {
		k, err := decode(s)
		if err != nil {
			return err
		}
		v, err := decode(s)
		if err != nil {
			return err
		}
		entries = append(entries, Pair{k, v})
		return nil
	}
	if indef {
		for {
			b, err := s.peek()
			if err != nil {
				return nil, err
			}
			if b == 0xff {
				s.pos++
				break
			}
			if err := readPair(); err != nil {
				return nil, err
			}
		}
	} else {
		entries = make([]Pair, 0, n)
		for i := uint64(0); i < n; i++ {
			if err := readPair(); err != nil {
				return nil, err
			}
		}
	}
	return Map{entries}, nil
}

// --- integers Cbor() ---

func (i I) Cbor() []byte { return encodeInt(i.Value) }
func (b B) Cbor() []byte { return encodeBytes(b.Bytes) }

// --- Constr ---

func (c Constr) Cbor() []byte {
	fields := List{c.Args}.Cbor()
	switch {
	case c.Tag <= 6:
		return append(encodeHead(majorTag, constrTagBase+c.Tag), fields...)
	case c.Tag >= constrWideStart && c.Tag <= constrWideEnd:
		return append(encodeHead(majorTag, constrTagWide+(c.Tag-constrWideStart)), fields...)
	default:
		// general fallback: tag 102 wrapping an explicit [tag, fields] pair.
		payload := append(encodeInt(new(big.Int).SetUint64(c.Tag)), fields...)
		head := append(encodeHead(majorTag, constrTagFlat), encodeHead(majorArray, 2)...)
		return append(head, payload...)
	}
}

func decodeTagged(s *Stream) (Data, error) {
	// peek the tag number without consuming non-tag bytes first.
	save := s.pos
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if major != majorTag || indef {
		s.pos = save
		return nil, fmt.Errorf("data: expected cbor tag at offset %d", save)
	}

	switch {
	case n >= constrTagBase && n <= constrTagBase+6:
		return decodeConstrFields(s, n-constrTagBase)
	case n >= constrTagWide && n <= constrTagWide+(constrWideEnd-constrWideStart):
		return decodeConstrFields(s, constrWideStart+(n-constrTagWide))
	case n == constrTagFlat:
		return decodeConstrFlat(s)
	case n == tagBignumPos:
		return decodeBignum(s, false)
	case n == tagBignumNeg:
		return decodeBignum(s, true)
	case n == tagEmbedded:
		// nested cbor-in-bytestring: decode the inner bytes as Data.
		bs, err := decodeRawBytes(s)
		if err != nil {
			return nil, err
		}
		return Decode(bs)
	default:
		return nil, fmt.Errorf("data: unsupported cbor tag %d", n)
	}
}

func decodeConstrFields(s *Stream, tag uint64) (Data, error) {
	fields, err := decodeList(s)
	if err != nil {
		return nil, err
	}
	return Constr{tag, fields.(List).Elems}, nil
}

func decodeConstrFlat(s *Stream) (Data, error) {
	major, n, indef, err := decodeHead(s)
	if err != nil {
		return nil, err
	}
	if major != majorArray || indef || n != 2 {
		return nil, errors.New("data: malformed general constructor (tag 102) payload")
	}
	tagData, err := decode(s)
	if err != nil {
		return nil, err
	}
	tagI, ok := tagData.(I)
	if !ok || tagI.Value.Sign() < 0 {
		return nil, errors.New("data: general constructor tag must be a non-negative integer")
	}
	fields, err := decodeList(s)
	if err != nil {
		return nil, err
	}
	return Constr{tagI.Value.Uint64(), fields.(List).Elems}, nil
}
