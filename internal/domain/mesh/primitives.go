package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

// Box returns an axis-aligned box spanning [0,w]×[0,d]×[0,h].
func Box(w, d, h float64) *Mesh {
	lo := r3.Vec{}
	hi := r3.Vec{X: w, Y: d, Z: h}
	v := [8]r3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	m := New(12)
	quad := func(a, b, c, d int) {
		m.Add(v[a], v[b], v[c])
		m.Add(v[a], v[c], v[d])
	}
	quad(0, 3, 2, 1) // bottom (normal −z)
	quad(4, 5, 6, 7) // top (+z)
	quad(0, 1, 5, 4) // front (−y)
	quad(2, 3, 7, 6) // back (+y)
	quad(1, 2, 6, 5) // right (+x)
	quad(3, 0, 4, 7) // left (−x)
	return m
}

// CenteredBox returns a box of the given extents centred on the origin.
func CenteredBox(w, d, h float64) *Mesh {
	m := Box(w, d, h)
	m.Translate(r3.Vec{X: -w / 2, Y: -d / 2, Z: -h / 2})
	return m
}

// Frustum returns a conical frustum with its base circle (radius rBase) on
// the z=0 plane and its top circle (radius rTop) at z=h, both centred on the
// z axis.  rTop == rBase yields a cylinder.  A flat top is always produced;
// braille dot bosses must never come to a sharp point, so rTop must be
// positive.
func Frustum(rBase, rTop, h float64, segments int) (*Mesh, error) {
	if rBase <= 0 || rTop <= 0 || h <= 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"frustum dimensions must be positive (base %.3f top %.3f height %.3f)", rBase, rTop, h)
	}
	if segments < 3 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"frustum needs at least 3 segments, got %d", segments)
	}

	base := make([]r3.Vec, segments)
	top := make([]r3.Vec, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		c, s := math.Cos(a), math.Sin(a)
		base[i] = r3.Vec{X: rBase * c, Y: rBase * s}
		top[i] = r3.Vec{X: rTop * c, Y: rTop * s, Z: h}
	}

	m := New(4 * segments)
	bc := r3.Vec{}
	tc := r3.Vec{Z: h}
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		// Side wall, outward.
		m.Add(base[i], base[j], top[j])
		m.Add(base[i], top[j], top[i])
		// Caps.
		m.Add(bc, base[j], base[i])
		m.Add(tc, top[i], top[j])
	}
	return m, nil
}

// Icosphere returns a subdivided icosahedron of the given radius centred on
// the origin.  Each subdivision level quadruples the face count (20, 80,
// 320, ...).
func Icosphere(radius float64, subdivisions int) (*Mesh, error) {
	if radius <= 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"icosphere radius must be positive, got %.3f", radius)
	}
	if subdivisions < 0 || subdivisions > 6 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"icosphere subdivisions must be in [0, 6], got %d", subdivisions)
	}

	phi := (1 + math.Sqrt(5)) / 2
	raw := []r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	verts := make([]r3.Vec, len(raw))
	for i, v := range raw {
		verts[i] = r3.Scale(radius/r3.Norm(v), v)
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	type edge struct{ a, b int }
	for level := 0; level < subdivisions; level++ {
		midpoint := make(map[edge]int)
		mid := func(a, b int) int {
			if a > b {
				a, b = b, a
			}
			if idx, ok := midpoint[edge{a, b}]; ok {
				return idx
			}
			m := r3.Scale(0.5, r3.Add(verts[a], verts[b]))
			m = r3.Scale(radius/r3.Norm(m), m)
			verts = append(verts, m)
			midpoint[edge{a, b}] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, 4*len(faces))
		for _, f := range faces {
			ab := mid(f[0], f[1])
			bc := mid(f[1], f[2])
			ca := mid(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca})
		}
		faces = next
	}

	m := New(len(faces))
	for _, f := range faces {
		m.Add(verts[f[0]], verts[f[1]], verts[f[2]])
	}
	return m, nil
}

// ExtrudedPolygon returns the prism obtained by sweeping a simple 2-D polygon
// from z=zMin to z=zMax.  The outline may be given in either winding; it is
// normalised to counter-clockwise before triangulation.  Self-intersecting
// outlines fail triangulation and return an error.
func ExtrudedPolygon(outline []r2.Vec, zMin, zMax float64) (*Mesh, error) {
	if zMax <= zMin {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"extrusion range [%.3f, %.3f] is empty", zMin, zMax)
	}
	poly := normalizeCCW(outline)
	tris, err := Triangulate(poly)
	if err != nil {
		return nil, err
	}

	at := func(p r2.Vec, z float64) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: z} }

	m := New(2*len(tris) + 2*len(poly))
	for _, t := range tris {
		a, b, c := poly[t[0]], poly[t[1]], poly[t[2]]
		// Top cap faces +z, bottom cap −z.
		m.Add(at(a, zMax), at(b, zMax), at(c, zMax))
		m.Add(at(a, zMin), at(c, zMin), at(b, zMin))
	}
	for i := range poly {
		j := (i + 1) % len(poly)
		// CCW outline → outward side quads.
		m.Add(at(poly[i], zMin), at(poly[j], zMin), at(poly[j], zMax))
		m.Add(at(poly[i], zMin), at(poly[j], zMax), at(poly[i], zMax))
	}
	return m, nil
}

// RegularPolygonPrism returns an n-sided regular polygon prism centred on the
// z axis, spanning [zMin, zMax].  radius is the circumscribed radius (vertex
// distance from the axis).
func RegularPolygonPrism(radius float64, sides int, zMin, zMax float64) (*Mesh, error) {
	if sides < 3 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"prism needs at least 3 sides, got %d", sides)
	}
	if radius <= 0 {
		return nil, errors.Newf(errors.ErrCodeMeshDegeneratePolygon,
			"prism radius must be positive, got %.3f", radius)
	}
	outline := make([]r2.Vec, sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		outline[i] = r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return ExtrudedPolygon(outline, zMin, zMax)
}

// signedArea2 returns twice the signed area of the polygon (positive for CCW).
func signedArea2(poly []r2.Vec) float64 {
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return a
}

func normalizeCCW(poly []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(poly))
	copy(out, poly)
	if signedArea2(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
