package mg

import (
	"context"
	"sync"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
)

const testMmaxBits = 16
const testMmax = 1 << testMmaxBits

var testTable = sync.OnceValue(func() Table {
	t, err := Build(context.Background(), testMmax, nil)
	if err != nil {
		panic(err)
	}
	return t
})

func pointOf(m uint64) curve25519.PublicKeyBytes {
	var s curve25519.Scalar
	curve25519.ScalarFromUint64(&s, m)
	return new(curve25519.ConstantTimePublicKey).ScalarBaseMult(&s).Bytes()
}
