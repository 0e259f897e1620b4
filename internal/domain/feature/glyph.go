package feature

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

// glyphOutline thickens every stroke of r into a quadrilateral, unions them
// into one 2-D polygon, heals it with a zero-width buffer pass, and returns
// the resulting outer contours scaled into a width×height box centred on the
// origin.  strokeFraction is the stroke half-profile as a fraction of the
// glyph width.
//
// Any failure — unknown rune, degenerate strokes, a union that produces a
// hole — returns an error; the caller substitutes the rectangle marker.
func glyphOutline(r rune, width, height, strokeFraction float64) ([][]r2.Vec, error) {
	strokes, ok := Strokes(r)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMeshBuildFailed,
			"no glyph defined for %q", r)
	}

	halfStroke := strokeFraction * width / 2
	if halfStroke <= 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"glyph stroke width must be positive")
	}

	var merged polyclip.Polygon
	for _, s := range strokes {
		quad, err := strokeQuad(s, halfStroke/width) // unit-space half width
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = polyclip.Polygon{quad}
			continue
		}
		merged = merged.Construct(polyclip.UNION, polyclip.Polygon{quad})
	}
	if len(merged) == 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"glyph %q unioned to an empty polygon", r)
	}

	// Zero-width buffer: re-unioning the result with itself forces the
	// clipper to re-trace the outline, collapsing slivers and duplicate
	// vertices left by the pairwise unions.
	merged = merged.Construct(polyclip.UNION, merged)

	outlines := make([][]r2.Vec, 0, len(merged))
	for i, contour := range merged {
		if len(contour) < 3 {
			continue
		}
		if isHole(merged, i) {
			// A hole means the recess would retain a floating island when
			// subtracted — unprintable, so refuse and let the rectangle win.
			return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
				"glyph %q produced a polygon with a hole", r)
		}
		outline := make([]r2.Vec, len(contour))
		for j, p := range contour {
			// Unit square → width×height box centred on the origin.
			outline[j] = r2.Vec{
				X: (p.X - 0.5) * width,
				Y: (p.Y - 0.5) * height,
			}
		}
		outlines = append(outlines, outline)
	}
	if len(outlines) == 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"glyph %q has no usable contour", r)
	}
	return outlines, nil
}

// strokeQuad expands a stroke segment into its thickened quadrilateral,
// extending both endpoints by the half width so adjoining strokes overlap at
// joints instead of meeting edge-on.
func strokeQuad(s Segment, half float64) (polyclip.Contour, error) {
	d := r2.Sub(s.B, s.A)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return nil, errors.New(errors.ErrCodeMeshDegeneratePolygon,
			"zero-length glyph stroke")
	}
	dir := r2.Scale(1/length, d)
	perp := r2.Vec{X: -dir.Y, Y: dir.X}

	a := r2.Sub(s.A, r2.Scale(half, dir))
	b := r2.Add(s.B, r2.Scale(half, dir))
	off := r2.Scale(half, perp)

	return polyclip.Contour{
		pt(r2.Sub(a, off)),
		pt(r2.Sub(b, off)),
		pt(r2.Add(b, off)),
		pt(r2.Add(a, off)),
	}, nil
}

func pt(v r2.Vec) polyclip.Point { return polyclip.Point{X: v.X, Y: v.Y} }

// isHole reports whether contour i lies inside an odd number of the other
// contours (even-odd rule).
func isHole(poly polyclip.Polygon, i int) bool {
	p := poly[i][0]
	inside := 0
	for j, c := range poly {
		if j == i {
			continue
		}
		if contourContains(c, p) {
			inside++
		}
	}
	return inside%2 == 1
}

// contourContains is a standard ray-casting point-in-polygon test.
func contourContains(c polyclip.Contour, p polyclip.Point) bool {
	in := false
	n := len(c)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
