package ecelgamal

import (
	"fmt"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	fasthex "github.com/tmthrgd/go-hex"
)

const CipherSize = curve25519.PublicKeySize * 2

// Cipher An encrypted message (C1, C2) = (r*G, r*P + m*G) in compressed form.
// Components are not validated until decryption.
type Cipher struct {
	C1 curve25519.PublicKeyBytes
	C2 curve25519.PublicKeyBytes
}

// CipherFromBytes Splits a CipherSize buffer into C1 and C2
func CipherFromBytes(buf []byte) (c Cipher, err error) {
	if len(buf) != CipherSize {
		return c, fmt.Errorf("%w: cipher of %d bytes, expected %d", ErrInvalidEncoding, len(buf), CipherSize)
	}
	copy(c.C1[:], buf[:curve25519.PublicKeySize])
	copy(c.C2[:], buf[curve25519.PublicKeySize:])
	return c, nil
}

func (c *Cipher) Bytes() (out [CipherSize]byte) {
	copy(out[:], c.C1[:])
	copy(out[curve25519.PublicKeySize:], c.C2[:])
	return out
}

func (c *Cipher) AppendBinary(preAllocatedBuf []byte) []byte {
	return append(append(preAllocatedBuf, c.C1[:]...), c.C2[:]...)
}

func (c *Cipher) String() string {
	buf := c.Bytes()
	return fasthex.EncodeToString(buf[:])
}

func (c Cipher) MarshalJSON() ([]byte, error) {
	var buf [CipherSize*2 + 2]byte
	buf[0] = '"'
	buf[CipherSize*2+1] = '"'
	data := c.Bytes()
	fasthex.Encode(buf[1:], data[:])
	return buf[:], nil
}

func (c *Cipher) UnmarshalJSON(b []byte) error {
	if len(b) != CipherSize*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: cipher json of %d bytes", ErrInvalidEncoding, len(b))
	}

	var buf [CipherSize]byte
	if _, err := fasthex.Decode(buf[:], b[1:len(b)-1]); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	*c, _ = CipherFromBytes(buf[:])
	return nil
}
