// Package ecelgamal implements exponential ElGamal over Ed25519 with messages bounded by a precomputed mG table.
//
// A message m is encrypted as (r*G, r*P + m*G). Decryption removes r*P with the private key and recovers m from m*G
// through a mg.Searcher, so only messages covered by the table can be decrypted.
package ecelgamal

import (
	"errors"
)

var (
	// ErrInvalidEncoding A key or cipher component is not a canonical encoding
	ErrInvalidEncoding = errors.New("invalid encoding")
	// ErrDecryptionFailed The decrypted point is not in the table. The plaintext is unknown, not zero.
	ErrDecryptionFailed = errors.New("decryption failed")
)
