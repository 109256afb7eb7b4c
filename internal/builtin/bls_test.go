package builtin

import (
	"testing"

	"github.com/scalus-go/scalus/internal/uplc"
)

// g1Infinity/g2Infinity are the fixed compressed encodings of the additive
// identity (point at infinity) under the compressed-point convention
// bls.go's FromCompressed/ToCompressed already rely on: the compression
// flag (0x80) and the infinity flag (0x40) set, every remaining bit zero.
// These bytes do not depend on which curve points a test happens to pick,
// so they serve as a real known-answer fixture rather than a self-check.
var (
	g1Infinity = func() (b [48]byte) { b[0] = 0xc0; return }()
	g2Infinity = func() (b [96]byte) { b[0] = 0xc0; return }()
)

func g1Point(t *testing.T, msg, dst string) uplc.Constant {
	t.Helper()
	b := Lookup(uplc.Bls12_381_G1_hashToGroup)
	p, err := b.Apply([]uplc.Constant{
		uplc.ConstByteString{Value: []byte(msg)},
		uplc.ConstByteString{Value: []byte(dst)},
	})
	if err != nil {
		t.Fatalf("G1_hashToGroup(%q,%q): %v", msg, dst, err)
	}
	return p
}

func g2Point(t *testing.T, msg, dst string) uplc.Constant {
	t.Helper()
	b := Lookup(uplc.Bls12_381_G2_hashToGroup)
	p, err := b.Apply([]uplc.Constant{
		uplc.ConstByteString{Value: []byte(msg)},
		uplc.ConstByteString{Value: []byte(dst)},
	})
	if err != nil {
		t.Fatalf("G2_hashToGroup(%q,%q): %v", msg, dst, err)
	}
	return p
}

func TestG1AddMatchesScalarMulDoubling(t *testing.T) {
	p := g1Point(t, "scalus test vector", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

	add := Lookup(uplc.Bls12_381_G1_add)
	sum, err := add.Apply([]uplc.Constant{p, p})
	if err != nil {
		t.Fatalf("G1_add(P,P): %v", err)
	}

	mul := Lookup(uplc.Bls12_381_G1_scalarMul)
	doubled, err := mul.Apply([]uplc.Constant{uplc.NewInt(2), p})
	if err != nil {
		t.Fatalf("G1_scalarMul(2,P): %v", err)
	}

	if !uplc.ConstantsEqual(sum, doubled) {
		t.Errorf("G1_add(P,P) = %s, want G1_scalarMul(2,P) = %s", sum, doubled)
	}
}

func TestG1AddInverseIsIdentity(t *testing.T) {
	p := g1Point(t, "scalus test vector 2", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

	neg := Lookup(uplc.Bls12_381_G1_neg)
	negP, err := neg.Apply([]uplc.Constant{p})
	if err != nil {
		t.Fatalf("G1_neg(P): %v", err)
	}

	add := Lookup(uplc.Bls12_381_G1_add)
	sum, err := add.Apply([]uplc.Constant{p, negP})
	if err != nil {
		t.Fatalf("G1_add(P,-P): %v", err)
	}

	want := uplc.ConstBLSG1{Compressed: g1Infinity}
	if !uplc.ConstantsEqual(sum, want) {
		t.Errorf("G1_add(P,-P) = %s, want the point at infinity", sum)
	}
}

func TestG1ScalarMulByZeroIsIdentity(t *testing.T) {
	p := g1Point(t, "scalus test vector 3", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

	mul := Lookup(uplc.Bls12_381_G1_scalarMul)
	got, err := mul.Apply([]uplc.Constant{uplc.NewInt(0), p})
	if err != nil {
		t.Fatalf("G1_scalarMul(0,P): %v", err)
	}

	want := uplc.ConstBLSG1{Compressed: g1Infinity}
	if !uplc.ConstantsEqual(got, want) {
		t.Errorf("G1_scalarMul(0,P) = %s, want the point at infinity", got)
	}
}

func TestG1NegIsInvolution(t *testing.T) {
	p := g1Point(t, "scalus test vector 4", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

	neg := Lookup(uplc.Bls12_381_G1_neg)
	negP, err := neg.Apply([]uplc.Constant{p})
	if err != nil {
		t.Fatalf("G1_neg(P): %v", err)
	}
	negNegP, err := neg.Apply([]uplc.Constant{negP})
	if err != nil {
		t.Fatalf("G1_neg(-P): %v", err)
	}

	equal := Lookup(uplc.Bls12_381_G1_equal)
	got, err := equal.Apply([]uplc.Constant{p, negNegP})
	if err != nil {
		t.Fatalf("G1_equal(P,--P): %v", err)
	}
	if !uplc.ConstantsEqual(got, uplc.ConstBool{Value: true}) {
		t.Errorf("G1_equal(P, G1_neg(G1_neg(P))) = %s, want true", got)
	}
}

func TestG1CompressUncompressRoundTrips(t *testing.T) {
	p := g1Point(t, "scalus test vector 5", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

	compress := Lookup(uplc.Bls12_381_G1_compress)
	bs, err := compress.Apply([]uplc.Constant{p})
	if err != nil {
		t.Fatalf("G1_compress: %v", err)
	}

	uncompress := Lookup(uplc.Bls12_381_G1_uncompress)
	back, err := uncompress.Apply([]uplc.Constant{bs})
	if err != nil {
		t.Fatalf("G1_uncompress: %v", err)
	}

	if !uplc.ConstantsEqual(p, back) {
		t.Errorf("G1_uncompress(G1_compress(P)) = %s, want %s", back, p)
	}
}

func TestG2AddMatchesScalarMulDoubling(t *testing.T) {
	q := g2Point(t, "scalus test vector", "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

	add := Lookup(uplc.Bls12_381_G2_add)
	sum, err := add.Apply([]uplc.Constant{q, q})
	if err != nil {
		t.Fatalf("G2_add(Q,Q): %v", err)
	}

	mul := Lookup(uplc.Bls12_381_G2_scalarMul)
	doubled, err := mul.Apply([]uplc.Constant{uplc.NewInt(2), q})
	if err != nil {
		t.Fatalf("G2_scalarMul(2,Q): %v", err)
	}

	if !uplc.ConstantsEqual(sum, doubled) {
		t.Errorf("G2_add(Q,Q) = %s, want G2_scalarMul(2,Q) = %s", sum, doubled)
	}
}

func TestG2AddInverseIsIdentity(t *testing.T) {
	q := g2Point(t, "scalus test vector 2", "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

	neg := Lookup(uplc.Bls12_381_G2_neg)
	negQ, err := neg.Apply([]uplc.Constant{q})
	if err != nil {
		t.Fatalf("G2_neg(Q): %v", err)
	}

	add := Lookup(uplc.Bls12_381_G2_add)
	sum, err := add.Apply([]uplc.Constant{q, negQ})
	if err != nil {
		t.Fatalf("G2_add(Q,-Q): %v", err)
	}

	want := uplc.ConstBLSG2{Compressed: g2Infinity}
	if !uplc.ConstantsEqual(sum, want) {
		t.Errorf("G2_add(Q,-Q) = %s, want the point at infinity", sum)
	}
}

// TestFinalVerifyIsReflexive exercises the millerLoop/finalVerify pair on
// the simplest known-answer case: the same pair compared to itself must
// verify, independent of which points were hashed into P and Q.
func TestFinalVerifyIsReflexive(t *testing.T) {
	p := g1Point(t, "scalus pairing vector P", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")
	q := g2Point(t, "scalus pairing vector Q", "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

	ml := Lookup(uplc.Bls12_381_millerLoop)
	pq, err := ml.Apply([]uplc.Constant{p, q})
	if err != nil {
		t.Fatalf("millerLoop(P,Q): %v", err)
	}

	verify := Lookup(uplc.Bls12_381_finalVerify)
	got, err := verify.Apply([]uplc.Constant{pq, pq})
	if err != nil {
		t.Fatalf("finalVerify(e(P,Q), e(P,Q)): %v", err)
	}
	if !uplc.ConstantsEqual(got, uplc.ConstBool{Value: true}) {
		t.Errorf("finalVerify(e(P,Q), e(P,Q)) = %s, want true", got)
	}
}

// TestFinalVerifyRejectsUnequalPairs checks that finalVerify's
// AddPairInv-based identity trick (bls.go's addPairsFromChunks) actually
// distinguishes a genuinely different pairing product, not just a
// trivially equal one.
func TestFinalVerifyRejectsUnequalPairs(t *testing.T) {
	p := g1Point(t, "scalus pairing vector P2", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")
	q := g2Point(t, "scalus pairing vector Q2", "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

	neg := Lookup(uplc.Bls12_381_G1_neg)
	negP, err := neg.Apply([]uplc.Constant{p})
	if err != nil {
		t.Fatalf("G1_neg(P): %v", err)
	}

	ml := Lookup(uplc.Bls12_381_millerLoop)
	pq, err := ml.Apply([]uplc.Constant{p, q})
	if err != nil {
		t.Fatalf("millerLoop(P,Q): %v", err)
	}
	negPq, err := ml.Apply([]uplc.Constant{negP, q})
	if err != nil {
		t.Fatalf("millerLoop(-P,Q): %v", err)
	}

	verify := Lookup(uplc.Bls12_381_finalVerify)
	got, err := verify.Apply([]uplc.Constant{pq, negPq})
	if err != nil {
		t.Fatalf("finalVerify(e(P,Q), e(-P,Q)): %v", err)
	}
	if !uplc.ConstantsEqual(got, uplc.ConstBool{Value: false}) {
		t.Errorf("finalVerify(e(P,Q), e(-P,Q)) = %s, want false (e(P,Q) != e(-P,Q) for P != O)", got)
	}
}

// TestFinalVerifyBilinearity is the real exercise of
// mulMlResult/AddPairInv together: e(2P,Q) must equal e(P,Q)*e(P,Q),
// the defining bilinearity property a pairing-based verifier depends on.
func TestFinalVerifyBilinearity(t *testing.T) {
	p := g1Point(t, "scalus pairing vector P3", "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")
	q := g2Point(t, "scalus pairing vector Q3", "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

	scalarMul := Lookup(uplc.Bls12_381_G1_scalarMul)
	twoP, err := scalarMul.Apply([]uplc.Constant{uplc.NewInt(2), p})
	if err != nil {
		t.Fatalf("G1_scalarMul(2,P): %v", err)
	}

	ml := Lookup(uplc.Bls12_381_millerLoop)
	twoPQ, err := ml.Apply([]uplc.Constant{twoP, q})
	if err != nil {
		t.Fatalf("millerLoop(2P,Q): %v", err)
	}
	pq, err := ml.Apply([]uplc.Constant{p, q})
	if err != nil {
		t.Fatalf("millerLoop(P,Q): %v", err)
	}

	mulMl := Lookup(uplc.Bls12_381_mulMlResult)
	pqSquared, err := mulMl.Apply([]uplc.Constant{pq, pq})
	if err != nil {
		t.Fatalf("mulMlResult(e(P,Q), e(P,Q)): %v", err)
	}

	verify := Lookup(uplc.Bls12_381_finalVerify)
	got, err := verify.Apply([]uplc.Constant{twoPQ, pqSquared})
	if err != nil {
		t.Fatalf("finalVerify(e(2P,Q), e(P,Q)*e(P,Q)): %v", err)
	}
	if !uplc.ConstantsEqual(got, uplc.ConstBool{Value: true}) {
		t.Errorf("finalVerify(e(2P,Q), e(P,Q)*e(P,Q)) = %s, want true", got)
	}
}
