package mg

import (
	"runtime"
	"slices"
	"time"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
	"golang.org/x/sync/errgroup"
)

// minPartitionSize Below this many entries per partition, sorting runs on a single goroutine
const minPartitionSize = 1 << 12

// Sort Orders t ascending by compressed point, using one partition per CPU
func Sort(t Table) {
	SortParallel(t, 0)
}

// SortParallel Orders t ascending by compressed point.
// t is split into a power of two of contiguous partitions that are stable sorted concurrently, then merged pairwise.
// The output is identical to a single stable sort of t, whatever the number of routines.
func SortParallel(t Table, routines int) {
	if routines <= 0 {
		routines = runtime.NumCPU()
	}

	startTime := time.Now()
	defer func() {
		utils.Debugf("mG", "sorted %d entries in %s", len(t), time.Since(startTime))
	}()

	parts := utils.PreviousPowerOfTwo(uint64(routines))
	for parts > 1 && len(t)/parts < minPartitionSize {
		parts /= 2
	}
	if parts <= 1 {
		slices.SortStableFunc(t, Compare)
		return
	}

	bounds := make([]int, parts+1)
	for i := range bounds {
		bounds[i] = len(t) * i / parts
	}

	var eg errgroup.Group
	for i := 0; i < parts; i++ {
		part := t[bounds[i]:bounds[i+1]]
		eg.Go(func() error {
			slices.SortStableFunc(part, Compare)
			return nil
		})
	}
	_ = eg.Wait()

	src, dst := t, make(Table, len(t))
	for width := 1; width < parts; width *= 2 {
		for i := 0; i < parts; i += width * 2 {
			lo, mid, hi := bounds[i], bounds[i+width], bounds[i+width*2]
			out, left, right := dst[lo:hi], src[lo:mid], src[mid:hi]
			eg.Go(func() error {
				merge(out, left, right)
				return nil
			})
		}
		_ = eg.Wait()
		src, dst = dst, src
	}

	if &src[0] != &t[0] {
		copy(t, src)
	}
}

// merge Writes the ordered union of left and right into out. On equal points left goes first, keeping the merge stable.
func merge(out, left, right Table) {
	var i, j, k int
	for i < len(left) && j < len(right) {
		if Compare(right[j], left[i]) < 0 {
			out[k] = right[j]
			j++
		} else {
			out[k] = left[i]
			i++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}

// IsSorted Whether every entry is strictly below the next one
func (t Table) IsSorted() bool {
	for i := 1; i < len(t); i++ {
		if Compare(t[i-1], t[i]) >= 0 {
			return false
		}
	}
	return true
}
