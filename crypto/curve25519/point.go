package curve25519

import (
	"crypto/subtle"

	"git.gammaspectra.live/P2Pool/edwards25519" //nolint:depguard
)

type Point = edwards25519.Point

// DecodeCompressedPoint Decompress a canonically-encoded Ed25519 point.
//
// Ed25519 is of order `8 * basepointOrder`. This function ensures each of those `8 * basepointOrder` points have a
// singular encoding by checking points aren't encoded with an unreduced field element,
// and aren't negative when the negative is equivalent (0 == -0).
//
// Returns nil if buf is not a valid encoding.
func DecodeCompressedPoint[T PointOperations, S ~[PublicKeySize]byte](r *PublicKey[T], buf S) *PublicKey[T] {
	if r == nil {
		return nil
	}

	_, err := r.p.SetBytes(buf[:])
	if err != nil {
		return nil
	}

	// Ban points which are either unreduced or -0
	if subtle.ConstantTimeCompare(r.p.Bytes(), buf[:]) == 0 {
		return nil
	}
	return r
}
