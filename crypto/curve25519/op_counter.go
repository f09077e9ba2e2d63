package curve25519

import "sync/atomic"

// VarTimeCounterOperations Is like VarTimeOperations, but increases a global counter for tests
//
// Unsafe to use with private data or scalars
type VarTimeCounterOperations struct{}

var counterOp VarTimeOperations

var (
	counterAddSub     atomic.Uint64
	counterScalarMult atomic.Uint64
)

func VarTimeCounterOperationsReset() {
	counterAddSub.Store(0)
	counterScalarMult.Store(0)
}

// VarTimeCounterOperationsCount Returns the additions/subtractions and scalar multiplications done since the last reset
func VarTimeCounterOperationsCount() (addSub, scalarMult uint64) {
	return counterAddSub.Load(), counterScalarMult.Load()
}

func (e VarTimeCounterOperations) Add(v *Point, p, q *Point) *Point {
	counterAddSub.Add(1)
	return counterOp.Add(v, p, q)
}

func (e VarTimeCounterOperations) Subtract(v *Point, p, q *Point) *Point {
	counterAddSub.Add(1)
	return counterOp.Subtract(v, p, q)
}

func (e VarTimeCounterOperations) ScalarBaseMult(v *Point, x *Scalar) *Point {
	counterScalarMult.Add(1)
	return counterOp.ScalarBaseMult(v, x)
}

func (e VarTimeCounterOperations) ScalarMult(v *Point, x *Scalar, q *Point) *Point {
	counterScalarMult.Add(1)
	return counterOp.ScalarMult(v, x, q)
}

func (e VarTimeCounterOperations) DoubleScalarBaseMult(v *Point, a *Scalar, A *Point, b *Scalar) *Point {
	counterScalarMult.Add(2)
	counterAddSub.Add(1)
	return counterOp.DoubleScalarBaseMult(v, a, A, b)
}

var _ PointOperations = VarTimeCounterOperations{}
