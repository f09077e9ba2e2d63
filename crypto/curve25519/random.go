package curve25519

import (
	"io"
)

// RandomScalar Equivalent to Monero's random32_unbiased / random_scalar
// Draws 32 bytes from r until they fall below 15*l, then reduces. Zero is rejected.
// Returns the error of r if reading fails; nothing is retried on read failure.
func RandomScalar(k *Scalar, r io.Reader) (*Scalar, error) {
	var buf [PrivateKeySize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}

		if !ScalarIsLimit32(buf) {
			continue
		}
		BytesToScalar32(k, buf)

		if !IsZeroScalar(k) {
			return k, nil
		}
	}
}
