package csg

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

const (
	// defaultPitch is the target voxel edge length in millimetres.  Fine
	// enough to keep a 2 mm braille dot recognisable.
	defaultPitch = 0.2

	// maxCells caps the occupancy grid so a huge input degrades to a
	// coarser pitch instead of exhausting memory.
	maxCells = 24 << 20

	// sampleJitter nudges sample columns off the lattice so rays do not
	// graze triangle edges.  An irrational fraction of the pitch keeps the
	// offset from realigning with any regular mesh.
	sampleJitter = 0.0137
)

// ScanFill is the robust boolean engine: both solids are rasterised into a
// shared voxel grid by vertical-ray parity sampling and the combined
// occupancy is re-skinned as an axis-aligned surface.  The output is blocky
// at the pitch scale but watertight by construction, and the method does not
// care about self-intersections or slivers in the input.  Stateless and safe
// for concurrent use.
type ScanFill struct {
	pitch float64
}

// NewScanFill returns a scanfill engine at the default sampling pitch.
func NewScanFill() ScanFill { return ScanFill{pitch: defaultPitch} }

// NewScanFillPitch returns a scanfill engine with an explicit pitch, for
// tests and coarse previews.
func NewScanFillPitch(pitch float64) ScanFill {
	if pitch <= 0 {
		pitch = defaultPitch
	}
	return ScanFill{pitch: pitch}
}

// Name implements assembly.Engine.
func (ScanFill) Name() string { return "scanfill" }

// Union implements assembly.Engine.
func (s ScanFill) Union(ctx context.Context, meshes []*mesh.Mesh) (*mesh.Mesh, error) {
	if len(meshes) == 0 {
		return nil, errors.New(errors.ErrCodeAssemblyEngineFailed, "union of zero meshes")
	}
	return s.combine(ctx, meshes, func(inside []bool) bool {
		for _, in := range inside {
			if in {
				return true
			}
		}
		return false
	})
}

// Difference implements assembly.Engine.
func (s ScanFill) Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error) {
	return s.combine(ctx, []*mesh.Mesh{base, tool}, func(inside []bool) bool {
		return inside[0] && !inside[1]
	})
}

// combine rasterises every input into one grid and skins the cells where
// keep() says the combined solid is present.
func (s ScanFill) combine(ctx context.Context, meshes []*mesh.Mesh, keep func([]bool) bool) (*mesh.Mesh, error) {
	g, err := newVoxelGrid(meshes, s.pitch)
	if err != nil {
		return nil, err
	}

	// Per-mesh, per-column lists of ray crossing heights.
	columns := make([][][]float64, len(meshes))
	for mi, m := range meshes {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeAssemblyTimeout, "scanfill rasterise cancelled")
		}
		columns[mi] = g.rayCrossings(m)
	}

	occ := make([]bool, g.nx*g.ny*g.nz)
	inside := make([]bool, len(meshes))
	filled := 0
	for j := 0; j < g.ny; j++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeAssemblyTimeout, "scanfill fill cancelled")
		}
		for i := 0; i < g.nx; i++ {
			col := j*g.nx + i
			for k := 0; k < g.nz; k++ {
				z := g.sampleZ(k)
				for mi := range meshes {
					inside[mi] = parityAbove(columns[mi][col], z)
				}
				if keep(inside) {
					occ[g.index(i, j, k)] = true
					filled++
				}
			}
		}
	}
	if filled == 0 {
		return nil, errors.New(errors.ErrCodeAssemblyEngineFailed, "scanfill result is empty")
	}
	return g.skin(occ), nil
}

// parityAbove reports whether an odd number of surface crossings lie above
// z, i.e. whether z is inside the solid along the vertical ray.
func parityAbove(crossings []float64, z float64) bool {
	odd := false
	for _, c := range crossings {
		if c > z {
			odd = !odd
		}
	}
	return odd
}

// voxelGrid is the shared sampling lattice for one boolean operation.
type voxelGrid struct {
	min        r3.Vec
	pitch      float64
	nx, ny, nz int
}

func newVoxelGrid(meshes []*mesh.Mesh, pitch float64) (*voxelGrid, error) {
	var b mesh.Bounds
	first := true
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		if first {
			b = m.Bounds()
			first = false
		} else {
			b = b.Union(m.Bounds())
		}
	}
	if first {
		return nil, errors.New(errors.ErrCodeAssemblyEngineFailed, "no geometry to rasterise")
	}
	// One cell of padding guarantees an empty shell around the solid, so
	// the skin pass never needs boundary special cases.
	b = b.Expand(pitch)
	size := b.Size()
	cells := func(p float64) float64 {
		return math.Ceil(size.X/p) * math.Ceil(size.Y/p) * math.Ceil(size.Z/p)
	}
	if c := cells(pitch); c > maxCells {
		pitch *= math.Cbrt(c / maxCells)
	}
	g := &voxelGrid{
		min:   b.Min,
		pitch: pitch,
		nx:    int(math.Ceil(size.X / pitch)),
		ny:    int(math.Ceil(size.Y / pitch)),
		nz:    int(math.Ceil(size.Z / pitch)),
	}
	return g, nil
}

func (g *voxelGrid) index(i, j, k int) int { return (k*g.ny+j)*g.nx + i }

func (g *voxelGrid) sampleX(i int) float64 {
	return g.min.X + (float64(i)+0.5+sampleJitter)*g.pitch
}

func (g *voxelGrid) sampleY(j int) float64 {
	return g.min.Y + (float64(j)+0.5+sampleJitter)*g.pitch
}

func (g *voxelGrid) sampleZ(k int) float64 {
	return g.min.Z + (float64(k)+0.5+sampleJitter)*g.pitch
}

// rayCrossings shoots one vertical ray per column and records the heights
// where it pierces m.  Triangles are bucketed by their xy footprint so each
// is only tested against the columns it can cover.
func (g *voxelGrid) rayCrossings(m *mesh.Mesh) [][]float64 {
	cols := make([][]float64, g.nx*g.ny)
	for _, t := range m.Triangles {
		n := t.Normal()
		if math.Abs(n.Z) < 1e-12 {
			// Vertical triangle, tangent to every ray.
			continue
		}
		minX := math.Min(t[0].X, math.Min(t[1].X, t[2].X))
		maxX := math.Max(t[0].X, math.Max(t[1].X, t[2].X))
		minY := math.Min(t[0].Y, math.Min(t[1].Y, t[2].Y))
		maxY := math.Max(t[0].Y, math.Max(t[1].Y, t[2].Y))
		i0 := clampIndex(int(math.Floor((minX-g.min.X)/g.pitch))-1, g.nx)
		i1 := clampIndex(int(math.Ceil((maxX-g.min.X)/g.pitch))+1, g.nx)
		j0 := clampIndex(int(math.Floor((minY-g.min.Y)/g.pitch))-1, g.ny)
		j1 := clampIndex(int(math.Ceil((maxY-g.min.Y)/g.pitch))+1, g.ny)
		d := r3.Dot(n, t[0])
		for j := j0; j <= j1; j++ {
			y := g.sampleY(j)
			for i := i0; i <= i1; i++ {
				x := g.sampleX(i)
				if !triangleCoversXY(t, x, y) {
					continue
				}
				z := (d - n.X*x - n.Y*y) / n.Z
				cols[j*g.nx+i] = append(cols[j*g.nx+i], z)
			}
		}
	}
	return cols
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// triangleCoversXY tests (x, y) against the xy projection of t.  Samples are
// jittered off the lattice, so points landing exactly on an edge are rare
// enough that either verdict is acceptable.
func triangleCoversXY(t mesh.Triangle, x, y float64) bool {
	d1 := edgeSign(t[0], t[1], x, y)
	d2 := edgeSign(t[1], t[2], x, y)
	d3 := edgeSign(t[2], t[0], x, y)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(a, b r3.Vec, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

// skin emits the boundary faces of the occupied voxel set.  Every face sits
// between exactly one filled and one empty cell (the padding shell makes the
// border implicit), so each quad edge is shared by exactly two quads and the
// surface is watertight.
func (g *voxelGrid) skin(occ []bool) *mesh.Mesh {
	m := mesh.New(0)
	at := func(i, j, k int) bool {
		if i < 0 || j < 0 || k < 0 || i >= g.nx || j >= g.ny || k >= g.nz {
			return false
		}
		return occ[g.index(i, j, k)]
	}
	cx := func(i int) float64 { return g.min.X + float64(i)*g.pitch }
	cy := func(j int) float64 { return g.min.Y + float64(j)*g.pitch }
	cz := func(k int) float64 { return g.min.Z + float64(k)*g.pitch }

	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if !at(i, j, k) {
					continue
				}
				x0, x1 := cx(i), cx(i+1)
				y0, y1 := cy(j), cy(j+1)
				z0, z1 := cz(k), cz(k+1)
				if !at(i+1, j, k) {
					quad(m,
						r3.Vec{X: x1, Y: y0, Z: z0}, r3.Vec{X: x1, Y: y1, Z: z0},
						r3.Vec{X: x1, Y: y1, Z: z1}, r3.Vec{X: x1, Y: y0, Z: z1})
				}
				if !at(i-1, j, k) {
					quad(m,
						r3.Vec{X: x0, Y: y0, Z: z0}, r3.Vec{X: x0, Y: y0, Z: z1},
						r3.Vec{X: x0, Y: y1, Z: z1}, r3.Vec{X: x0, Y: y1, Z: z0})
				}
				if !at(i, j+1, k) {
					quad(m,
						r3.Vec{X: x0, Y: y1, Z: z0}, r3.Vec{X: x0, Y: y1, Z: z1},
						r3.Vec{X: x1, Y: y1, Z: z1}, r3.Vec{X: x1, Y: y1, Z: z0})
				}
				if !at(i, j-1, k) {
					quad(m,
						r3.Vec{X: x0, Y: y0, Z: z0}, r3.Vec{X: x1, Y: y0, Z: z0},
						r3.Vec{X: x1, Y: y0, Z: z1}, r3.Vec{X: x0, Y: y0, Z: z1})
				}
				if !at(i, j, k+1) {
					quad(m,
						r3.Vec{X: x0, Y: y0, Z: z1}, r3.Vec{X: x1, Y: y0, Z: z1},
						r3.Vec{X: x1, Y: y1, Z: z1}, r3.Vec{X: x0, Y: y1, Z: z1})
				}
				if !at(i, j, k-1) {
					quad(m,
						r3.Vec{X: x0, Y: y0, Z: z0}, r3.Vec{X: x0, Y: y1, Z: z0},
						r3.Vec{X: x1, Y: y1, Z: z0}, r3.Vec{X: x1, Y: y0, Z: z0})
				}
			}
		}
	}
	return m
}

// quad emits a planar quad as two triangles sharing the a-c diagonal,
// counter-clockwise as given.
func quad(m *mesh.Mesh, a, b, c, d r3.Vec) {
	m.Add(a, b, c)
	m.Add(a, c, d)
}
