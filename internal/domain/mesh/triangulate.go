package mesh

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

// Triangulate splits a simple counter-clockwise polygon into triangles by ear
// clipping and returns index triples into the input slice.  Collinear runs
// are tolerated; self-intersecting polygons fail with a triangulation error.
func Triangulate(poly []r2.Vec) ([][3]int, error) {
	n := len(poly)
	if n < 3 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"polygon needs at least 3 vertices, got %d", n)
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}, nil
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	tris := make([][3]int, 0, n-2)
	// Each pass must clip at least one ear; if a full sweep finds none the
	// polygon is not simple.
	for len(indices) > 3 {
		clipped := false
		for i := 0; i < len(indices); i++ {
			prev := indices[(i+len(indices)-1)%len(indices)]
			curr := indices[i]
			next := indices[(i+1)%len(indices)]

			if !isEar(poly, indices, prev, curr, next) {
				continue
			}
			tris = append(tris, [3]int{prev, curr, next})
			indices = append(indices[:i], indices[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, errors.Newf(errors.ErrCodeMeshTriangulationFailed,
				"no ear found with %d vertices remaining; polygon is likely self-intersecting", len(indices))
		}
	}
	tris = append(tris, [3]int{indices[0], indices[1], indices[2]})
	return tris, nil
}

func cross2(o, a, b r2.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// isEar reports whether the corner prev→curr→next is convex and its triangle
// contains no other remaining vertex.
func isEar(poly []r2.Vec, indices []int, prev, curr, next int) bool {
	a, b, c := poly[prev], poly[curr], poly[next]
	// Reflex or degenerate corners are not ears.  A strictly positive area
	// avoids emitting zero-area slivers for collinear runs.
	if cross2(a, b, c) <= 1e-12 {
		return false
	}
	for _, idx := range indices {
		if idx == prev || idx == curr || idx == next {
			continue
		}
		if pointInTriangle(poly[idx], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c r2.Vec) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	hasNeg := d1 < -1e-12 || d2 < -1e-12 || d3 < -1e-12
	hasPos := d1 > 1e-12 || d2 > 1e-12 || d3 > 1e-12
	return !(hasNeg && hasPos)
}
