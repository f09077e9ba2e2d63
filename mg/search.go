package mg

import (
	"bytes"
	"encoding/binary"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"lukechampine.com/uint128"
)

// prefix The first 8 bytes of a compressed point as a big-endian integer, monotonic with Compare
func prefix(p *curve25519.PublicKeyBytes) uint64 {
	return binary.BigEndian.Uint64(p[:8])
}

// Search Interpolation search for point over a sorted table.
//
// Compressed points are close to uniformly distributed, so the probe is placed where point falls linearly between the
// bounds, which averages O(log log n) probes. When a probe fails to halve the remaining range the next probe bisects
// instead, which bounds the worst case to about twice that of a binary search.
//
// Read-only, safe to call concurrently.
func (t Table) Search(point *curve25519.PublicKeyBytes) (scalar uint32, ok bool) {
	lo, hi := 0, len(t)-1
	target := prefix(point)

	var bisect bool
	for lo <= hi {
		var probe int
		if bisect {
			probe = lo + (hi-lo)/2
		} else {
			vlo, vhi := prefix(&t[lo].Point), prefix(&t[hi].Point)
			switch {
			case target <= vlo:
				probe = lo
			case target >= vhi:
				probe = hi
			default:
				// vlo < target < vhi, so lo <= probe < hi
				probe = lo + int(uint128.From64(target-vlo).Mul64(uint64(hi-lo)).Div64(vhi-vlo).Lo)
			}
		}

		size := hi - lo
		switch c := bytes.Compare(point[:], t[probe].Point[:]); {
		case c == 0:
			return t[probe].Scalar, true
		case c < 0:
			hi = probe - 1
		default:
			lo = probe + 1
		}

		bisect = !bisect && hi-lo > size/2
	}

	return 0, false
}

// BinarySearch Reference bisection search over a sorted table
func (t Table) BinarySearch(point *curve25519.PublicKeyBytes) (scalar uint32, ok bool) {
	lo, hi := 0, len(t)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := bytes.Compare(point[:], t[mid].Point[:]); {
		case c == 0:
			return t[mid].Scalar, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return 0, false
}
