package ecelgamal

import (
	"crypto/rand"
	"fmt"
	"io"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	fasthex "github.com/tmthrgd/go-hex"
)

// PrivateKey A secret scalar x, reduced modulo l
type PrivateKey struct {
	scalar curve25519.Scalar
}

// NewPrivateKey Draws a random non-zero key from entropy, or crypto/rand if entropy is nil
func NewPrivateKey(entropy io.Reader) (*PrivateKey, error) {
	if entropy == nil {
		entropy = rand.Reader
	}
	k := &PrivateKey{}
	if _, err := curve25519.RandomScalar(&k.scalar, entropy); err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return k, nil
}

// PrivateKeyFromBytes Restores a key from its little-endian encoding. Unreduced values are reduced modulo l.
func PrivateKeyFromBytes(buf curve25519.PrivateKeyBytes) *PrivateKey {
	k := &PrivateKey{}
	curve25519.BytesToScalar32(&k.scalar, buf)
	return k
}

func (k *PrivateKey) Scalar() *curve25519.Scalar {
	return &k.scalar
}

func (k *PrivateKey) Bytes() (out curve25519.PrivateKeyBytes) {
	copy(out[:], k.scalar.Bytes())
	return out
}

// PublicKey x*G
func (k *PrivateKey) PublicKey() *PublicKey {
	p := &PublicKey{}
	p.point.ScalarBaseMult(&k.scalar)
	p.bytes = p.point.Bytes()
	return p
}

func (k *PrivateKey) Equal(o *PrivateKey) bool {
	return k.scalar.Equal(&o.scalar) == 1
}

func (k *PrivateKey) String() string {
	b := k.Bytes()
	return b.String()
}

func (k *PrivateKey) MarshalJSON() ([]byte, error) {
	return k.Bytes().MarshalJSON()
}

func (k *PrivateKey) UnmarshalJSON(b []byte) error {
	var buf curve25519.PrivateKeyBytes
	if err := unmarshalKeyJSON(buf[:], b); err != nil {
		return err
	}
	*k = *PrivateKeyFromBytes(buf)
	return nil
}

// unmarshalKeyJSON Decodes a quoted hex string of exactly len(out) bytes. Empty strings and null are rejected.
func unmarshalKeyJSON(out, b []byte) error {
	if len(b) != len(out)*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: key json %q", ErrInvalidEncoding, b)
	}
	if _, err := fasthex.Decode(out, b[1:len(b)-1]); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return nil
}

// PublicKey A point P, normally x*G for some PrivateKey, kept together with its compressed encoding
type PublicKey struct {
	point curve25519.ConstantTimePublicKey
	bytes curve25519.PublicKeyBytes
}

// PublicKeyFromBytes Decodes a compressed point. Non-canonical or off-curve encodings return ErrInvalidEncoding,
// as do points of small order, under which c2 would reveal m*G.
func PublicKeyFromBytes(buf curve25519.PublicKeyBytes) (*PublicKey, error) {
	p := &PublicKey{bytes: buf}
	if curve25519.DecodeCompressedPoint(&p.point, buf) == nil {
		return nil, fmt.Errorf("%w: public key %s", ErrInvalidEncoding, buf.String())
	}

	// 8*P is the identity only for the eight torsion points
	var cofactor curve25519.ConstantTimePublicKey
	cofactor.Add(&p.point, &p.point)
	cofactor.Add(&cofactor, &cofactor)
	cofactor.Add(&cofactor, &cofactor)
	if cofactor.Bytes() == curve25519.IdentityBytes {
		return nil, fmt.Errorf("%w: public key %s has small order", ErrInvalidEncoding, buf.String())
	}
	return p, nil
}

func (p *PublicKey) Point() *curve25519.ConstantTimePublicKey {
	return &p.point
}

func (p *PublicKey) Bytes() curve25519.PublicKeyBytes {
	return p.bytes
}

func (p *PublicKey) Equal(o *PublicKey) bool {
	return p.point.Equal(&o.point)
}

func (p *PublicKey) String() string {
	return p.bytes.String()
}

func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return p.bytes.MarshalJSON()
}

func (p *PublicKey) UnmarshalJSON(b []byte) error {
	var buf curve25519.PublicKeyBytes
	if err := unmarshalKeyJSON(buf[:], b); err != nil {
		return err
	}
	k, err := PublicKeyFromBytes(buf)
	if err != nil {
		return err
	}
	*p = *k
	return nil
}
