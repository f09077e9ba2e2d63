package mg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/types"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
	"git.gammaspectra.live/P2Pool/sha3"
)

var ErrInvalidTable = errors.New("invalid table")

// Verify Checks that t is strictly ascending, holds every scalar of [start, start+len(t)) exactly once,
// and that every point is the multiple of G named by its scalar.
// Points are recomputed chunk by chunk on routines goroutines, one per CPU if routines <= 0.
func (t Table) Verify(ctx context.Context, start uint32, routines int) error {
	if uint64(start)+uint64(len(t)) > 1<<32 {
		return fmt.Errorf("%w: range [%d, %d) exceeds 32-bit scalars", ErrInvalidTable, start, uint64(start)+uint64(len(t)))
	}

	// position of each scalar in t, by offset from start
	positions := make([]uint32, len(t))
	seen := make([]uint64, (len(t)+63)/64)
	for i := range t {
		if i > 0 && Compare(t[i-1], t[i]) >= 0 {
			return fmt.Errorf("%w: entry %d (%s) is not above entry %d (%s)", ErrInvalidTable, i, t[i].Point.String(), i-1, t[i-1].Point.String())
		}

		offset := uint64(t[i].Scalar) - uint64(start)
		if t[i].Scalar < start || offset >= uint64(len(t)) {
			return fmt.Errorf("%w: entry %d has scalar %d outside [%d, %d)", ErrInvalidTable, i, t[i].Scalar, start, uint64(start)+uint64(len(t)))
		}
		if seen[offset/64]&(1<<(offset%64)) != 0 {
			return fmt.Errorf("%w: scalar %d appears twice", ErrInvalidTable, t[i].Scalar)
		}
		seen[offset/64] |= 1 << (offset % 64)
		positions[offset] = uint32(i)
	}

	startTime := time.Now()

	const chunkSize = DefaultChunkSize
	chunks := (uint64(len(t)) + chunkSize - 1) / chunkSize
	g := curve25519.FromPoint[curve25519.VarTimeOperations](curve25519.GeneratorG.Point)

	var scratch [][]Entry
	err := utils.SplitWork(ctx, routines, chunks, func(workIndex uint64, routineIndex int) error {
		first := workIndex * chunkSize
		last := min(first+chunkSize, uint64(len(t)))
		expected := scratch[routineIndex][:last-first]
		generateChunk(expected, start+uint32(first), g)

		for j := range expected {
			if e := &t[positions[first+uint64(j)]]; e.Point != expected[j].Point {
				return fmt.Errorf("%w: entry with scalar %d has point %s, expected %s", ErrInvalidTable, e.Scalar, e.Point.String(), expected[j].Point.String())
			}
		}
		return nil
	}, func(routines, routineIndex int) error {
		if scratch == nil {
			scratch = make([][]Entry, routines)
		}
		scratch[routineIndex] = make([]Entry, chunkSize)
		return nil
	})
	if err != nil {
		return err
	}

	utils.Debugf("mG", "verified %d points from %d in %s", len(t), start, time.Since(startTime))
	return nil
}

// Digest Keccak-256 of the serialized table, as it would be written by Save
func (t Table) Digest() (result types.Hash) {
	h := sha3.NewLegacyKeccak256()
	_ = Write(h, t)
	h.Sum(result[:0])
	return result
}
