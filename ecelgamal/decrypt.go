package ecelgamal

import (
	"fmt"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/mg"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
)

// Decryptor Recovers messages through a read-only mg.Searcher. Safe for concurrent use.
type Decryptor struct {
	searcher mg.Searcher
	cache    utils.Cache[curve25519.PublicKeyBytes, uint32]
}

// NewDecryptor cacheSize > 0 keeps the most recently recovered m*G points, which skips the table search for
// repeated plaintexts
func NewDecryptor(searcher mg.Searcher, cacheSize int) *Decryptor {
	d := &Decryptor{
		searcher: searcher,
	}
	if cacheSize > 0 {
		d.cache = utils.NewLRUCache[curve25519.PublicKeyBytes, uint32](cacheSize)
	}
	return d
}

// DecryptPoint M = C2 - x*C1, the encoding of m*G when c was encrypted to k
func (k *PrivateKey) DecryptPoint(c *Cipher) (curve25519.PublicKeyBytes, error) {
	c1 := c.C1.Point()
	if c1 == nil {
		return curve25519.ZeroPublicKeyBytes, fmt.Errorf("%w: %w: c1 %s", ErrDecryptionFailed, ErrInvalidEncoding, c.C1.String())
	}
	c2 := c.C2.Point()
	if c2 == nil {
		return curve25519.ZeroPublicKeyBytes, fmt.Errorf("%w: %w: c2 %s", ErrDecryptionFailed, ErrInvalidEncoding, c.C2.String())
	}

	var xc1, m curve25519.ConstantTimePublicKey
	xc1.ScalarMult(&k.scalar, c1)
	return m.Subtract(c2, &xc1).Bytes(), nil
}

// Decrypt Returns m, or ErrDecryptionFailed when m is outside the table, key is not the encryption key,
// or c is malformed
func (d *Decryptor) Decrypt(key *PrivateKey, c *Cipher) (uint32, error) {
	point, err := key.DecryptPoint(c)
	if err != nil {
		return 0, err
	}

	if d.cache != nil {
		if msg, ok := d.cache.Get(point); ok {
			return msg, nil
		}
	}

	msg, ok := d.searcher.Search(&point)
	if !ok {
		return 0, ErrDecryptionFailed
	}

	if d.cache != nil {
		d.cache.Set(point, msg)
	}
	return msg, nil
}

// CacheStats Hits and misses of the recovered point cache, zero when disabled
func (d *Decryptor) CacheStats() (hits, misses uint64) {
	if d.cache == nil {
		return 0, 0
	}
	return d.cache.Stats()
}
