package mg

import (
	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"github.com/dolthub/swiss"
)

// Index Hash index from compressed point to scalar.
// Lookups are O(1) and do not need a sorted table, at the cost of holding a second copy of every entry.
type Index swiss.Map[curve25519.PublicKeyBytes, uint32]

func (x *Index) m() *swiss.Map[curve25519.PublicKeyBytes, uint32] {
	return (*swiss.Map[curve25519.PublicKeyBytes, uint32])(x)
}

func NewIndex(t Table) *Index {
	m := swiss.NewMap[curve25519.PublicKeyBytes, uint32](uint32(len(t)))
	for i := range t {
		m.Put(t[i].Point, t[i].Scalar)
	}
	return (*Index)(m)
}

func (x *Index) Search(point *curve25519.PublicKeyBytes) (scalar uint32, ok bool) {
	return x.m().Get(*point)
}

func (x *Index) Len() int {
	return x.m().Count()
}

var _ Searcher = (*Index)(nil)
