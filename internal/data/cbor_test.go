package data

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		d    Data
	}{
		{"small int", NewI(42)},
		{"negative int", NewI(-7)},
		{"zero", NewI(0)},
		{"big int", I{new(big.Int).Lsh(big.NewInt(1), 100)}},
		{"big negative int", I{new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100))}},
		{"short bytes", NewB([]byte{0x01, 0xff})},
		{"empty bytes", NewB(nil)},
		{"long bytes", NewB(make([]byte, 200))},
		{"empty list", List{nil}},
		{"list", List{[]Data{NewI(1), NewB([]byte("hi")), NewI(-1)}}},
		{"empty map", Map{nil}},
		{"map", Map{[]Pair{{NewI(1), NewB([]byte{2})}, {NewI(2), NewI(3)}}}},
		{"constr tag 0", Constr{0, []Data{NewI(1)}}},
		{"constr tag 6", Constr{6, []Data{NewI(1), NewI(2)}}},
		{"constr tag 7", Constr{7, nil}},
		{"constr tag 42", Constr{42, []Data{NewB([]byte("x"))}}},
		{"constr tag 200", Constr{200, []Data{NewI(1)}}},
		{"nested", Constr{1, []Data{NewI(42), NewB([]byte{0x01, 0xff})}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.d)
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if !decoded.Equal(tt.d) {
				t.Fatalf("decode(encode(d)) != d: got %v want %v", decoded, tt.d)
			}

			reencoded := Encode(decoded)
			if diff := cmp.Diff(encoded, reencoded); diff != "" {
				t.Fatalf("re-encoding not idempotent (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScenarioDataRoundTrip(t *testing.T) {
	// spec §8 scenario 2: encode Constr(1, [I(42), B(0x01ff)]), decode,
	// re-encode: final bytes equal the first.
	d := Constr{1, []Data{NewI(42), NewB([]byte{0x01, 0xff})}}

	first := Encode(d)
	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second := Encode(decoded)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("encode(decode(encode(d))) != encode(d) (-want +got):\n%s", diff)
	}
}

func TestCompareOrdersVariants(t *testing.T) {
	if Compare(Constr{0, nil}, NewI(0)) >= 0 {
		t.Fatalf("Constr should sort before I")
	}
	if Compare(NewI(1), NewI(2)) >= 0 {
		t.Fatalf("I(1) should sort before I(2)")
	}
}

func TestSortMapEntriesOrdersByKey(t *testing.T) {
	entries := []Pair{
		{NewI(2), NewB([]byte("b"))},
		{NewI(1), NewB([]byte("a"))},
	}
	sorted := SortMapEntries(entries)
	if !sorted[0].Key.Equal(NewI(1)) {
		t.Fatalf("expected key 1 first, got %v", sorted[0].Key)
	}
}
