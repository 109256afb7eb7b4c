package cost

import "github.com/scalus-go/scalus/internal/uplc"

// DefaultMachineParams returns a complete, internally-consistent cost model
// with plausible (not bit-exact) coefficients, suitable for tests and for
// `scalus eval` when no network cost model has been loaded via
// internal/config / internal/costmodel.
func DefaultMachineParams() MachineParams {
	p := MachineParams{
		SemanticsVariant: SemanticsDefault,
		BuiltinCostModel: make(map[uplc.BuiltinId]BuiltinCostFunction),
	}
	for k := StepKind(0); k < stepKindCount; k++ {
		p.StepCosts[k] = DefaultStepCost
	}

	cheap := ExBudget{Mem: 1, Cpu: 100}
	small := ExBudget{Mem: 4, Cpu: 23000}

	arith := LinearInMax(small, ExBudget{Mem: 1, Cpu: 100})
	compare := LinearInMax(small, ExBudget{Mem: 1, Cpu: 80})

	for _, id := range []uplc.BuiltinId{
		uplc.AddInteger, uplc.SubtractInteger, uplc.MultiplyInteger,
		uplc.DivideInteger, uplc.QuotientInteger, uplc.RemainderInteger, uplc.ModInteger,
	} {
		p.BuiltinCostModel[id] = arith
	}
	for _, id := range []uplc.BuiltinId{uplc.EqualsInteger, uplc.LessThanInteger, uplc.LessThanEqualsInteger} {
		p.BuiltinCostModel[id] = compare
	}

	p.BuiltinCostModel[uplc.AppendByteString] = LinearInSum(small, ExBudget{Mem: 1, Cpu: 120})
	p.BuiltinCostModel[uplc.ConsByteString] = LinearInArg(1, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.SliceByteString] = LinearInArg(2, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.LengthOfByteString] = Constant(cheap)
	p.BuiltinCostModel[uplc.IndexByteString] = Constant(cheap)
	p.BuiltinCostModel[uplc.EqualsByteString] = compare
	p.BuiltinCostModel[uplc.LessThanByteString] = compare
	p.BuiltinCostModel[uplc.LessThanEqualsByteString] = compare

	p.BuiltinCostModel[uplc.AppendString] = LinearInSum(small, ExBudget{Mem: 1, Cpu: 120})
	p.BuiltinCostModel[uplc.EqualsString] = compare
	p.BuiltinCostModel[uplc.EncodeUtf8] = LinearInArg(0, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.DecodeUtf8] = LinearInArg(0, small, ExBudget{Mem: 1, Cpu: 100})

	p.BuiltinCostModel[uplc.Sha2_256] = LinearInArg(0, ExBudget{Mem: 4, Cpu: 28000}, ExBudget{Mem: 1, Cpu: 2600})
	p.BuiltinCostModel[uplc.Sha3_256] = LinearInArg(0, ExBudget{Mem: 4, Cpu: 28000}, ExBudget{Mem: 1, Cpu: 2600})
	p.BuiltinCostModel[uplc.Blake2b_224] = LinearInArg(0, ExBudget{Mem: 4, Cpu: 28000}, ExBudget{Mem: 1, Cpu: 2600})
	p.BuiltinCostModel[uplc.Blake2b_256] = LinearInArg(0, ExBudget{Mem: 4, Cpu: 28000}, ExBudget{Mem: 1, Cpu: 2600})

	p.BuiltinCostModel[uplc.IfThenElse] = Constant(cheap)
	p.BuiltinCostModel[uplc.ChooseUnit] = Constant(cheap)
	p.BuiltinCostModel[uplc.Trace] = Constant(cheap)
	p.BuiltinCostModel[uplc.FstPair] = Constant(cheap)
	p.BuiltinCostModel[uplc.SndPair] = Constant(cheap)
	p.BuiltinCostModel[uplc.ChooseList] = Constant(cheap)
	p.BuiltinCostModel[uplc.MkCons] = Constant(cheap)
	p.BuiltinCostModel[uplc.HeadList] = Constant(cheap)
	p.BuiltinCostModel[uplc.TailList] = Constant(cheap)
	p.BuiltinCostModel[uplc.NullList] = Constant(cheap)

	p.BuiltinCostModel[uplc.ChooseData] = Constant(cheap)
	p.BuiltinCostModel[uplc.ConstrData] = LinearInArg(1, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.MapData] = LinearInArg(0, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.ListData] = LinearInArg(0, small, ExBudget{Mem: 1, Cpu: 100})
	p.BuiltinCostModel[uplc.IData] = Constant(cheap)
	p.BuiltinCostModel[uplc.BData] = Constant(cheap)
	p.BuiltinCostModel[uplc.UnConstrData] = Constant(cheap)
	p.BuiltinCostModel[uplc.UnMapData] = Constant(cheap)
	p.BuiltinCostModel[uplc.UnListData] = Constant(cheap)
	p.BuiltinCostModel[uplc.UnIData] = Constant(cheap)
	p.BuiltinCostModel[uplc.UnBData] = Constant(cheap)
	p.BuiltinCostModel[uplc.EqualsData] = compare
	p.BuiltinCostModel[uplc.SerialiseData] = LinearInArg(0, small, ExBudget{Mem: 2, Cpu: 200})
	p.BuiltinCostModel[uplc.MkPairData] = Constant(cheap)
	p.BuiltinCostModel[uplc.MkNilData] = Constant(cheap)
	p.BuiltinCostModel[uplc.MkNilPairData] = Constant(cheap)

	blsPoint := ExBudget{Mem: 18, Cpu: 210_000}
	blsPairing := ExBudget{Mem: 18, Cpu: 4_000_000}
	for _, id := range []uplc.BuiltinId{
		uplc.Bls12_381_G1_add, uplc.Bls12_381_G1_neg, uplc.Bls12_381_G1_scalarMul,
		uplc.Bls12_381_G1_equal, uplc.Bls12_381_G1_compress, uplc.Bls12_381_G1_uncompress,
		uplc.Bls12_381_G1_hashToGroup,
		uplc.Bls12_381_G2_add, uplc.Bls12_381_G2_neg, uplc.Bls12_381_G2_scalarMul,
		uplc.Bls12_381_G2_equal, uplc.Bls12_381_G2_compress, uplc.Bls12_381_G2_uncompress,
		uplc.Bls12_381_G2_hashToGroup,
	} {
		p.BuiltinCostModel[id] = Constant(blsPoint)
	}
	p.BuiltinCostModel[uplc.Bls12_381_millerLoop] = Constant(blsPairing)
	p.BuiltinCostModel[uplc.Bls12_381_mulMlResult] = Constant(blsPoint)
	p.BuiltinCostModel[uplc.Bls12_381_finalVerify] = Constant(blsPairing)

	return p
}
