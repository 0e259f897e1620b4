package feature

import (
	"unicode"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is one stroke of a glyph, in unit-square coordinates (0..1 × 0..1,
// y up).
type Segment struct {
	A, B r2.Vec
}

func seg(x1, y1, x2, y2 float64) Segment {
	return Segment{A: r2.Vec{X: x1, Y: y1}, B: r2.Vec{X: x2, Y: y2}}
}

// Stroke endpoints on the unit grid.  A sixteen-segment-style skeleton: left
// and right verticals, three horizontal bars, and a handful of diagonals.
// Strokes that would close a ring are trimmed short of the corner,
// stencil-style, so no glyph encloses a counter and the thickened union never
// produces a hole — which in turn means the subtracted marker never strands a
// floating island of plate surface.
var glyphStrokes = map[rune][]Segment{
	'A': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0, 0.5, 1, 0.5)},
	'B': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0, 0.5, 1, 0.5), seg(0.25, 0, 0.75, 0)},
	'C': {seg(0, 0, 0, 1), seg(0, 1, 1, 1), seg(0, 0, 1, 0)},
	'D': {seg(0, 0, 0, 1), seg(0.25, 1, 0.7, 1), seg(0, 0, 0.7, 0), seg(0.7, 1, 1, 0.7), seg(0.7, 0, 1, 0.3), seg(1, 0.3, 1, 0.7)},
	'E': {seg(0, 0, 0, 1), seg(0, 1, 1, 1), seg(0, 0.5, 1, 0.5), seg(0, 0, 1, 0)},
	'F': {seg(0, 0, 0, 1), seg(0, 1, 1, 1), seg(0, 0.5, 1, 0.5)},
	'G': {seg(0, 0, 0, 1), seg(0, 1, 1, 1), seg(0, 0, 1, 0), seg(1, 0, 1, 0.5), seg(0.5, 0.5, 1, 0.5)},
	'H': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0, 0.5, 1, 0.5)},
	'I': {seg(0.5, 0, 0.5, 1), seg(0, 1, 1, 1), seg(0, 0, 1, 0)},
	'J': {seg(1, 0, 1, 1), seg(0, 0, 1, 0), seg(0, 0, 0, 0.4)},
	'K': {seg(0, 0, 0, 1), seg(0, 0.5, 1, 1), seg(0, 0.5, 1, 0)},
	'L': {seg(0, 0, 0, 1), seg(0, 0, 1, 0)},
	'M': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0, 1, 0.5, 0.5), seg(1, 1, 0.5, 0.5)},
	'N': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0, 1, 1, 0)},
	'O': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0.25, 0, 0.75, 0)},
	'P': {seg(0, 0, 0, 1), seg(0.25, 1, 1, 1), seg(1, 1, 1, 0.5), seg(0, 0.5, 1, 0.5)},
	'Q': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0.25, 0, 0.75, 0), seg(0.6, 0.4, 1.1, -0.1)},
	'R': {seg(0, 0, 0, 1), seg(0.25, 1, 1, 1), seg(1, 1, 1, 0.5), seg(0, 0.5, 1, 0.5), seg(0.5, 0.5, 1, 0)},
	'S': {seg(0, 1, 1, 1), seg(0, 1, 0, 0.5), seg(0, 0.5, 1, 0.5), seg(1, 0.5, 1, 0), seg(0, 0, 1, 0)},
	'T': {seg(0, 1, 1, 1), seg(0.5, 0, 0.5, 1)},
	'U': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0, 0, 1, 0)},
	'V': {seg(0, 1, 0.5, 0), seg(1, 1, 0.5, 0)},
	'W': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0, 0, 0.5, 0.5), seg(1, 0, 0.5, 0.5)},
	'X': {seg(0, 0, 1, 1), seg(0, 1, 1, 0)},
	'Y': {seg(0, 1, 0.5, 0.5), seg(1, 1, 0.5, 0.5), seg(0.5, 0.5, 0.5, 0)},
	'Z': {seg(0, 1, 1, 1), seg(1, 1, 0, 0), seg(0, 0, 1, 0)},

	'0': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0.25, 0, 0.75, 0), seg(0.2, 0.2, 0.8, 0.8)},
	'1': {seg(0.5, 0, 0.5, 1), seg(0.2, 0.7, 0.5, 1), seg(0, 0, 1, 0)},
	'2': {seg(0, 1, 1, 1), seg(1, 1, 1, 0.5), seg(0, 0.5, 1, 0.5), seg(0, 0.5, 0, 0), seg(0, 0, 1, 0)},
	'3': {seg(0, 1, 1, 1), seg(0, 0.5, 1, 0.5), seg(0, 0, 1, 0), seg(1, 0, 1, 1)},
	'4': {seg(0, 1, 0, 0.5), seg(0, 0.5, 1, 0.5), seg(1, 0, 1, 1)},
	'5': {seg(0, 1, 1, 1), seg(0, 1, 0, 0.5), seg(0, 0.5, 1, 0.5), seg(1, 0.5, 1, 0), seg(0, 0, 1, 0)},
	'6': {seg(0, 0, 0, 1), seg(0, 1, 1, 1), seg(0, 0.5, 1, 0.5), seg(1, 0.5, 1, 0), seg(0.25, 0, 0.75, 0)},
	'7': {seg(0, 1, 1, 1), seg(1, 1, 0.5, 0)},
	'8': {seg(0, 0, 0, 1), seg(1, 0, 1, 1), seg(0.25, 1, 0.75, 1), seg(0, 0.5, 1, 0.5), seg(0.25, 0, 0.75, 0)},
	'9': {seg(0, 1, 0, 0.5), seg(0.25, 1, 1, 1), seg(0, 0.5, 1, 0.5), seg(1, 0, 1, 1), seg(0, 0, 1, 0)},
}

// Strokes returns the stroke skeleton for r, folding lowercase onto the
// uppercase glyphs.  ok is false when the rune has no glyph; callers fall
// back to the rectangle marker.
func Strokes(r rune) ([]Segment, bool) {
	s, ok := glyphStrokes[unicode.ToUpper(r)]
	return s, ok
}

// HasGlyph reports whether r renders as a glyph marker.
func HasGlyph(r rune) bool {
	_, ok := Strokes(r)
	return ok
}
