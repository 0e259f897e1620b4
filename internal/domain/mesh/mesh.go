// Package mesh provides the triangle-soup mesh type shared by the whole
// geometry pipeline, its primitive constructors, and the watertightness
// audit/repair pass.  Vectors come from gonum's spatial/r3; everything here
// is pure computation with no I/O.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is one face: three vertices in counter-clockwise order when seen
// from outside the solid.
type Triangle [3]r3.Vec

// Normal returns the (non-unit) face normal, following the right-hand rule.
func (t Triangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// UnitNormal returns the unit face normal, or the zero vector for a
// degenerate face.
func (t Triangle) UnitNormal() r3.Vec {
	n := t.Normal()
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the face area.
func (t Triangle) Area() float64 {
	return r3.Norm(t.Normal()) / 2
}

// Mesh is an indexless triangle soup.  Primitives emit closed, consistently
// wound meshes; concatenation of disjoint closed meshes stays closed.
type Mesh struct {
	Triangles []Triangle
}

// New returns an empty mesh with capacity for n triangles.
func New(n int) *Mesh {
	return &Mesh{Triangles: make([]Triangle, 0, n)}
}

// Add appends one face.
func (m *Mesh) Add(a, b, c r3.Vec) {
	m.Triangles = append(m.Triangles, Triangle{a, b, c})
}

// Append concatenates other's faces onto m.  The operands are assumed
// disjoint; overlapping solids need a boolean union instead.
func (m *Mesh) Append(other *Mesh) {
	m.Triangles = append(m.Triangles, other.Triangles...)
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(m.Triangles))}
	copy(out.Triangles, m.Triangles)
	return out
}

// Len returns the face count.
func (m *Mesh) Len() int { return len(m.Triangles) }

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool { return len(m.Triangles) == 0 }

// Translate moves every vertex by d, in place.
func (m *Mesh) Translate(d r3.Vec) {
	for i := range m.Triangles {
		for j := range m.Triangles[i] {
			m.Triangles[i][j] = r3.Add(m.Triangles[i][j], d)
		}
	}
}

// Transform applies the affine map to every vertex, in place.  If the linear
// part inverts orientation (negative determinant) the winding of every face
// is flipped to keep normals pointing outward.
func (m *Mesh) Transform(a Affine) {
	for i := range m.Triangles {
		for j := range m.Triangles[i] {
			m.Triangles[i][j] = a.Apply(m.Triangles[i][j])
		}
	}
	if a.Det() < 0 {
		m.FlipOrientation()
	}
}

// FlipOrientation reverses the winding of every face, in place.
func (m *Mesh) FlipOrientation() {
	for i := range m.Triangles {
		m.Triangles[i][1], m.Triangles[i][2] = m.Triangles[i][2], m.Triangles[i][1]
	}
}

// SignedVolume returns the enclosed volume via the divergence theorem.
// Positive for outward-wound closed meshes; meaningless for open meshes.
func (m *Mesh) SignedVolume() float64 {
	var v float64
	for _, t := range m.Triangles {
		v += r3.Dot(t[0], r3.Cross(t[1], t[2])) / 6
	}
	return v
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max r3.Vec
}

// Overlaps reports whether the two boxes intersect (touching counts).
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Expand grows the box by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	e := r3.Vec{X: d, Y: d, Z: d}
	return Bounds{Min: r3.Sub(b.Min, e), Max: r3.Add(b.Max, e)}
}

// Union returns the smallest box containing both operands.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Min: r3.Vec{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: r3.Vec{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Size returns the box extents.
func (b Bounds) Size() r3.Vec { return r3.Sub(b.Max, b.Min) }

// Bounds returns the axis-aligned bounding box of the mesh.  An empty mesh
// returns the zero box.
func (m *Mesh) Bounds() Bounds {
	if m.IsEmpty() {
		return Bounds{}
	}
	b := Bounds{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, t := range m.Triangles {
		for _, v := range t {
			b.Min.X = math.Min(b.Min.X, v.X)
			b.Min.Y = math.Min(b.Min.Y, v.Y)
			b.Min.Z = math.Min(b.Min.Z, v.Z)
			b.Max.X = math.Max(b.Max.X, v.X)
			b.Max.Y = math.Max(b.Max.Y, v.Y)
			b.Max.Z = math.Max(b.Max.Z, v.Z)
		}
	}
	return b
}

// Affine is a 3-D affine transform: linear part given by the images of the
// three basis vectors, plus a translation.
type Affine struct {
	X, Y, Z r3.Vec // images of (1,0,0), (0,1,0), (0,0,1)
	T       r3.Vec
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{
		X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}, Z: r3.Vec{Z: 1},
	}
}

// Translation returns a pure translation.
func Translation(d r3.Vec) Affine {
	a := Identity()
	a.T = d
	return a
}

// Apply maps v through the transform.
func (a Affine) Apply(v r3.Vec) r3.Vec {
	return r3.Add(a.T, r3.Add(
		r3.Scale(v.X, a.X),
		r3.Add(r3.Scale(v.Y, a.Y), r3.Scale(v.Z, a.Z))))
}

// Det returns the determinant of the linear part.
func (a Affine) Det() float64 {
	return r3.Dot(a.X, r3.Cross(a.Y, a.Z))
}
