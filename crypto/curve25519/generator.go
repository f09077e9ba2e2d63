package curve25519

import "git.gammaspectra.live/P2Pool/edwards25519" //nolint:depguard

// Generator A fixed base point together with its canonical encoding.
// Multiplication by the Ed25519 basepoint goes through the library's precomputed basepoint table.
type Generator struct {
	// Point The point used as Generator
	Point *Point
	// Bytes Compressed encoding of Point
	Bytes PublicKeyBytes
}

func NewGenerator(point *Point) *Generator {
	g := &Generator{
		Point: point,
	}
	copy(g.Bytes[:], point.Bytes())
	return g
}

// GeneratorG The Ed25519 basepoint
var GeneratorG = NewGenerator(edwards25519.NewGeneratorPoint())

// IdentityBytes Encoding of the neutral element, 0 * G
var IdentityBytes = PublicKeyBytes{1}
