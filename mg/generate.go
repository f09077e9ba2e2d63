package mg

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
)

// DefaultChunkSize Entries computed per unit of work. Each chunk costs one scalar multiplication, the rest are additions.
const DefaultChunkSize = 1 << 14

// Progress Counter of entries computed so far, safe to poll from any goroutine while a generation runs.
// The value only increases.
type Progress struct {
	completed atomic.Uint64
	total     atomic.Uint64
}

func (p *Progress) Completed() uint64 {
	return p.completed.Load()
}

func (p *Progress) Total() uint64 {
	return p.total.Load()
}

func (p *Progress) add(n uint64) {
	if p != nil {
		p.completed.Add(n)
	}
}

func (p *Progress) start(total uint64) {
	if p != nil {
		p.completed.Store(0)
		p.total.Store(total)
	}
}

type GenerateOptions struct {
	// Routines Number of goroutines. <= 0 uses one per CPU.
	Routines int
	// ChunkSize Entries per unit of work, DefaultChunkSize if 0
	ChunkSize int
	// Progress Optional counter updated after each chunk
	Progress *Progress
}

// Generate Computes the unsorted table of m*G for m in [0, mmax), in ascending order of m.
// The result does not depend on Routines or ChunkSize. Cancellation is checked between chunks.
func Generate(ctx context.Context, mmax int, opts *GenerateOptions) (Table, error) {
	return GenerateRange(ctx, 0, mmax, opts)
}

// GenerateRange Computes the unsorted entries for m in [start, start+count)
func GenerateRange(ctx context.Context, start uint32, count int, opts *GenerateOptions) (Table, error) {
	return generateRange[curve25519.VarTimeOperations](ctx, start, count, opts)
}

// Build Generates and sorts the table of [0, mmax)
func Build(ctx context.Context, mmax int, opts *GenerateOptions) (Table, error) {
	t, err := Generate(ctx, mmax, opts)
	if err != nil {
		return nil, err
	}
	var routines int
	if opts != nil {
		routines = opts.Routines
	}
	SortParallel(t, routines)
	return t, nil
}

func generateRange[T curve25519.PointOperations](ctx context.Context, start uint32, count int, opts *GenerateOptions) (Table, error) {
	if count <= 0 || count > MaxMmax {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, count)
	}
	if uint64(start)+uint64(count) > 1<<32 {
		return nil, fmt.Errorf("%w: range [%d, %d) exceeds 32-bit scalars", ErrInvalidSize, start, uint64(start)+uint64(count))
	}

	if opts == nil {
		opts = &GenerateOptions{}
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunks := (uint64(count) + uint64(chunkSize) - 1) / uint64(chunkSize)
	opts.Progress.start(uint64(count))

	t := make(Table, count)
	g := curve25519.FromPoint[T](curve25519.GeneratorG.Point)

	startTime := time.Now()

	err := utils.SplitWork(ctx, opts.Routines, chunks, func(workIndex uint64, _ int) error {
		first := workIndex * uint64(chunkSize)
		last := min(first+uint64(chunkSize), uint64(count))
		generateChunk(t[first:last], start+uint32(first), g)
		opts.Progress.add(last - first)
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	utils.Debugf("mG", "generated %d entries from %d in %s", count, start, time.Since(startTime))

	return t, nil
}

// generateChunk Fills entries with (base+i)*G, one scalar multiplication followed by one addition of g per entry
func generateChunk[T curve25519.PointOperations](entries []Entry, base uint32, g *curve25519.PublicKey[T]) {
	var s curve25519.Scalar
	curve25519.ScalarFromUint64(&s, uint64(base))

	var p curve25519.PublicKey[T]
	p.ScalarBaseMult(&s)

	for i := range entries {
		entries[i].Point = p.Bytes()
		entries[i].Scalar = base + uint32(i)
		if i+1 < len(entries) {
			p.Add(&p, g)
		}
	}
}
