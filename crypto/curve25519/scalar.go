package curve25519

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/edwards25519" //nolint:depguard
)

type Scalar = edwards25519.Scalar

// basepointOrder is the order of the Ed25519 basepoint, i.e., l = 2^252 + 27742317777372353535851937790883648493.
var basepointOrder = [32]byte{0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58, 0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10}

// limit = basepointOrder * 15, basepointOrder fits 15 times in 32 bytes (iow, 15 basepointOrder is the highest multiple of basepointOrder that fits in 32 bytes)
var limit = [32]byte{0xe3, 0x6a, 0x67, 0x72, 0x8b, 0xce, 0x13, 0x29, 0x8f, 0x30, 0x82, 0x8c, 0x0b, 0xa4, 0x10, 0x39, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0}

// ScalarIsLimit32 Whether a, as a little-endian integer, is below 15 * l. Values under the limit reduce without bias.
func ScalarIsLimit32[T ~[PrivateKeySize]byte](a T) bool {
	for n := 31; n >= 0; n-- {
		if a[n] < limit[n] {
			return true
		} else if a[n] > limit[n] {
			return false
		}
	}

	return false
}

func ScalarIsReduced32[T ~[PrivateKeySize]byte](a T) bool {
	for n := 31; n >= 0; n-- {
		if a[n] < basepointOrder[n] {
			return true
		} else if a[n] > basepointOrder[n] {
			return false
		}
	}

	return false
}

// ScalarReduce32
// 256-bit little-endian s integer modulo basepointOrder, via a zero extended wide reduction
func ScalarReduce32[T ~[PrivateKeySize]byte](s *T) {
	var x Scalar
	var wide [64]byte
	copy(wide[:], (*s)[:])
	_, _ = x.SetUniformBytes(wide[:])
	copy((*s)[:], x.Bytes())
}

// BytesToScalar32 Sets c to buf reduced modulo l
func BytesToScalar32[T ~[PrivateKeySize]byte](c *Scalar, buf T) *Scalar {
	ScalarReduce32(&buf)
	_, _ = c.SetCanonicalBytes(buf[:])
	return c
}

// ScalarFromUint64 Sets c to the integer x. x is always below l.
func ScalarFromUint64(c *Scalar, x uint64) *Scalar {
	var buf [PrivateKeySize]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	_, _ = c.SetCanonicalBytes(buf[:])
	return c
}

var zeroScalar = edwards25519.NewScalar()

func IsZeroScalar(c *Scalar) bool {
	return c.Equal(zeroScalar) == 1
}
