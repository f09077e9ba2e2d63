package ecelgamal

import (
	"crypto/rand"
	"fmt"
	"io"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
)

// Encryptor Either key of a pair. Both produce identical ciphers for the same message and r.
// The set of implementations is closed: *PublicKey and *PrivateKey.
type Encryptor interface {
	// Encrypt Encrypts msg with r drawn from entropy, or crypto/rand if entropy is nil.
	// The only error is a failure of entropy, which is returned as is.
	Encrypt(msg uint32, entropy io.Reader) (Cipher, error)
	// EncryptWithScalar Encrypts msg with the given r, which must never be reused for another message
	EncryptWithScalar(msg uint32, r *curve25519.Scalar) Cipher

	encryptor()
}

func randomScalar(entropy io.Reader) (*curve25519.Scalar, error) {
	if entropy == nil {
		entropy = rand.Reader
	}
	r, err := curve25519.RandomScalar(new(curve25519.Scalar), entropy)
	if err != nil {
		return nil, fmt.Errorf("encryption randomness: %w", err)
	}
	return r, nil
}

func (p *PublicKey) Encrypt(msg uint32, entropy io.Reader) (Cipher, error) {
	r, err := randomScalar(entropy)
	if err != nil {
		return Cipher{}, err
	}
	return p.EncryptWithScalar(msg, r), nil
}

// EncryptWithScalar c1 = r*G, c2 = r*P + m*G
func (p *PublicKey) EncryptWithScalar(msg uint32, r *curve25519.Scalar) Cipher {
	var m curve25519.Scalar
	curve25519.ScalarFromUint64(&m, uint64(msg))

	var c1, c2 curve25519.ConstantTimePublicKey
	c1.ScalarBaseMult(r)
	c2.DoubleScalarBaseMult(r, &p.point, &m)

	return Cipher{
		C1: c1.Bytes(),
		C2: c2.Bytes(),
	}
}

func (p *PublicKey) encryptor() {}

func (k *PrivateKey) Encrypt(msg uint32, entropy io.Reader) (Cipher, error) {
	r, err := randomScalar(entropy)
	if err != nil {
		return Cipher{}, err
	}
	return k.EncryptWithScalar(msg, r), nil
}

// EncryptWithScalar c1 = r*G, c2 = (r*x + m)*G, two base point multiplications instead of a variable base one
func (k *PrivateKey) EncryptWithScalar(msg uint32, r *curve25519.Scalar) Cipher {
	var m, s curve25519.Scalar
	curve25519.ScalarFromUint64(&m, uint64(msg))
	s.MultiplyAdd(r, &k.scalar, &m)

	var c1, c2 curve25519.ConstantTimePublicKey
	c1.ScalarBaseMult(r)
	c2.ScalarBaseMult(&s)

	return Cipher{
		C1: c1.Bytes(),
		C2: c2.Bytes(),
	}
}

func (k *PrivateKey) encryptor() {}

var _ Encryptor = (*PublicKey)(nil)
var _ Encryptor = (*PrivateKey)(nil)
