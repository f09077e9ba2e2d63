package curve25519

import (
	"unsafe"

	fasthex "github.com/tmthrgd/go-hex"
)

const PublicKeySize = 32

var ZeroPublicKeyBytes = PublicKeyBytes{}

type VarTimePublicKey = PublicKey[VarTimeOperations]
type ConstantTimePublicKey = PublicKey[ConstantTimeOperations]

// PublicKey A decompressed point whose arithmetic is carried out by the operation set T
type PublicKey[T PointOperations] struct {
	p Point
}

func To[T2 PointOperations, T1 PointOperations](u *PublicKey[T1]) *PublicKey[T2] {
	// #nosec G103 -- same underlying layout
	return (*PublicKey[T2])(unsafe.Pointer(u))
}

func FromPoint[T PointOperations](u *Point) *PublicKey[T] {
	n := new(PublicKey[T])
	n.p.Set(u)
	return n
}

func (v *PublicKey[T]) op() T {
	var t T
	return t
}

func (v *PublicKey[T]) Set(p *PublicKey[T]) *PublicKey[T] {
	v.p.Set(&p.p)
	return v
}

func (v *PublicKey[T]) Add(p, q *PublicKey[T]) *PublicKey[T] {
	v.op().Add(&v.p, &p.p, &q.p)
	return v
}

func (v *PublicKey[T]) Subtract(p, q *PublicKey[T]) *PublicKey[T] {
	v.op().Subtract(&v.p, &p.p, &q.p)
	return v
}

func (v *PublicKey[T]) ScalarBaseMult(x *Scalar) *PublicKey[T] {
	v.op().ScalarBaseMult(&v.p, x)
	return v
}

func (v *PublicKey[T]) ScalarMult(x *Scalar, q *PublicKey[T]) *PublicKey[T] {
	v.op().ScalarMult(&v.p, x, &q.p)
	return v
}

// DoubleScalarBaseMult v = a * A + b * G
func (v *PublicKey[T]) DoubleScalarBaseMult(a *Scalar, A *PublicKey[T], b *Scalar) *PublicKey[T] {
	v.op().DoubleScalarBaseMult(&v.p, a, &A.p, b)
	return v
}

func (v *PublicKey[T]) Equal(q *PublicKey[T]) bool {
	return v.p.Equal(&q.p) == 1
}

func (v *PublicKey[T]) Bytes() (out PublicKeyBytes) {
	copy(out[:], v.p.Bytes())
	return out
}

func (v *PublicKey[T]) Slice() []byte {
	return v.p.Bytes()
}

func (v *PublicKey[T]) String() string {
	return fasthex.EncodeToString(v.Slice())
}

func (v *PublicKey[T]) P() *Point {
	return &v.p
}

// PublicKeyBytes A compressed point encoding, not necessarily valid
type PublicKeyBytes [PublicKeySize]byte

func (k *PublicKeyBytes) Slice() []byte {
	return (*k)[:]
}

// Point Decompresses k, returning nil if it is not a canonical point encoding
func (k *PublicKeyBytes) Point() *ConstantTimePublicKey {
	return DecodeCompressedPoint(new(ConstantTimePublicKey), *k)
}

func (k *PublicKeyBytes) String() string {
	return fasthex.EncodeToString(k.Slice())
}

func (k *PublicKeyBytes) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || len(b) == 2 {
		return nil
	}

	if len(b) != PublicKeySize*2+2 {
		return ErrWrongKeySize
	}

	if _, err := fasthex.Decode(k[:], b[1:len(b)-1]); err != nil {
		return err
	}
	return nil
}

func (k PublicKeyBytes) MarshalJSON() ([]byte, error) {
	var buf [PublicKeySize*2 + 2]byte
	buf[0] = '"'
	buf[PublicKeySize*2+1] = '"'
	fasthex.Encode(buf[1:], k[:])
	return buf[:], nil
}
