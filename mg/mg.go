// Package mg holds the precomputed table of m*G for every m in [0, Mmax), sorted by the compressed point,
// and the searches that turn a point back into m.
package mg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
)

const (
	// DefaultMmaxBits log2(DefaultMmax)
	DefaultMmaxBits = 24
	// DefaultMmax The number of entries in mG.bin
	DefaultMmax = 1 << DefaultMmaxBits

	// MaxMmax Largest table accepted by Generate. Scalars are 32 bits wide, and at 36 bytes per entry this is already 36 GiB.
	MaxMmax = 1 << 30

	DefaultDataDir  = ".EllipticPIR"
	DefaultFileName = "mG.bin"

	// EntrySize Size of one serialized Entry: compressed point followed by a little-endian uint32 scalar
	EntrySize = curve25519.PublicKeySize + 4
)

var (
	ErrInvalidSize      = errors.New("invalid table size")
	ErrPartialTable     = errors.New("partial table")
	ErrStorage          = errors.New("table storage error")
	ErrConfigResolution = errors.New("cannot resolve default table path")
)

// PartialTableError Returned alongside the entries that could be read when a table file holds fewer than the expected entries
type PartialTableError struct {
	Read     int
	Expected int
}

func (e *PartialTableError) Error() string {
	return fmt.Sprintf("partial table: read %d entries, expected %d", e.Read, e.Expected)
}

func (e *PartialTableError) Is(target error) bool {
	return target == ErrPartialTable
}

// Entry Pair of Scalar * G in compressed form and Scalar
type Entry struct {
	Point  curve25519.PublicKeyBytes
	Scalar uint32
}

// Compare Orders entries by their compressed point, read as a big-endian unsigned integer
func Compare(a, b Entry) int {
	return bytes.Compare(a.Point[:], b.Point[:])
}

func (e *Entry) AppendBinary(preAllocatedBuf []byte) []byte {
	buf := append(preAllocatedBuf, e.Point[:]...)
	return binary.LittleEndian.AppendUint32(buf, e.Scalar)
}

func (e *Entry) FromBytes(buf []byte) error {
	if len(buf) < EntrySize {
		return errors.New("entry too short")
	}
	copy(e.Point[:], buf[:curve25519.PublicKeySize])
	e.Scalar = binary.LittleEndian.Uint32(buf[curve25519.PublicKeySize:])
	return nil
}

// Table Entries of the m*G table. After Sort, it is read-only and safe for concurrent searches.
type Table []Entry

// Searcher Recovers m from the compressed encoding of m*G
type Searcher interface {
	Search(point *curve25519.PublicKeyBytes) (scalar uint32, ok bool)
}

var _ Searcher = Table(nil)

// DefaultPath Location of the shared table file, <home>/.EllipticPIR/mG.bin
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigResolution, err)
	}
	if home == "" {
		return "", ErrConfigResolution
	}
	return filepath.Join(home, DefaultDataDir, DefaultFileName), nil
}
