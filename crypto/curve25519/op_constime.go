package curve25519

// ConstantTimeOperations Implements Constant time operations for Edwards25519 points
//
// Safe to use with private data or scalars
type ConstantTimeOperations struct{}

func (e ConstantTimeOperations) Add(v *Point, p, q *Point) *Point {
	return v.Add(p, q)
}

func (e ConstantTimeOperations) Subtract(v *Point, p, q *Point) *Point {
	return v.Subtract(p, q)
}

func (e ConstantTimeOperations) ScalarBaseMult(v *Point, x *Scalar) *Point {
	return v.ScalarBaseMult(x)
}

func (e ConstantTimeOperations) ScalarMult(v *Point, x *Scalar, q *Point) *Point {
	return v.ScalarMult(x, q)
}

func (e ConstantTimeOperations) DoubleScalarBaseMult(v *Point, a *Scalar, A *Point, b *Scalar) *Point {
	var aA, bG Point
	aA.ScalarMult(a, A)
	bG.ScalarBaseMult(b)
	return v.Add(&aA, &bG)
}

var _ PointOperations = ConstantTimeOperations{}
