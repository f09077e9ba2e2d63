package curve25519

// PointOperations The point arithmetic needed by encryption, decryption and table generation.
// Implementations differ only in their timing guarantees.
type PointOperations interface {
	Add(v *Point, p, q *Point) *Point
	Subtract(v *Point, p, q *Point) *Point

	ScalarBaseMult(v *Point, x *Scalar) *Point

	ScalarMult(v *Point, x *Scalar, q *Point) *Point

	// DoubleScalarBaseMult v = a * A + b * G
	DoubleScalarBaseMult(v *Point, a *Scalar, A *Point, b *Scalar) *Point
}
