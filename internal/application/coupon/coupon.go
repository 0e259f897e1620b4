// Package coupon builds the printer-calibration coupon: a small tile carrying
// a row of dot bosses stepped through the height range plus one hemisphere
// recess.  Printing the coupon and feeling which step reads best is how a dot
// height and negative_plate_offset get chosen for a given printer, before
// committing to full plates.
//
// Unlike plate generation, the coupon is modelled as a signed distance field
// and surfaced with an octree renderer.  There is no user text and no boolean
// ladder here, so the SDF route's fixed cost buys perfectly smooth unions for
// free.
package coupon

import (
	"github.com/soypat/sdf"
	form3 "github.com/soypat/sdf/form3/must3"
	"github.com/soypat/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

// Options sizes the coupon.  All lengths are millimetres.
type Options struct {
	// Steps is the number of boss height steps.
	Steps int
	// HeightMin and HeightMax bound the stepped dot heights.
	HeightMin float64
	HeightMax float64
	// BaseDiameter and HatDiameter shape each boss frustum.
	BaseDiameter float64
	HatDiameter  float64
	// Spacing is the centre distance between neighbouring bosses.
	Spacing float64
	// Thickness is the tile thickness.
	Thickness float64
	// RecessRadius is the hemisphere recess radius; 0 omits the recess.
	RecessRadius float64
	// Cells is the octree renderer resolution along the longest axis.
	Cells int
}

// DefaultOptions mirrors the default plate geometry: bosses step through the
// plausible dot heights around the 1.4 mm default, and the recess matches a
// default counter-plate dimple.
func DefaultOptions() Options {
	return Options{
		Steps:        5,
		HeightMin:    1.0,
		HeightMax:    1.8,
		BaseDiameter: 2.0,
		HatDiameter:  0.8,
		Spacing:      6.0,
		Thickness:    2.0,
		RecessRadius: 1.2,
		Cells:        220,
	}
}

// Generate models the coupon and surfaces it into a triangle mesh.
func Generate(opts Options) (*mesh.Mesh, error) {
	if opts.Steps < 1 {
		return nil, errors.New(errors.ErrCodeGeometryParamRange, "coupon needs at least one step")
	}
	if opts.HeightMax < opts.HeightMin {
		return nil, errors.New(errors.ErrCodeGeometryParamRange, "coupon height range is inverted")
	}

	// One slot per boss plus one for the recess, with a half-slot margin on
	// each end.
	slots := opts.Steps
	if opts.RecessRadius > 0 {
		slots++
	}
	width := float64(slots+1) * opts.Spacing
	depth := 2 * opts.Spacing

	var tile sdf.SDF3 = form3.Box(r3.Vec{X: width, Y: depth, Z: opts.Thickness}, 0)
	tile = sdf.Transform3D(tile, sdf.Translate3D(r3.Vec{Z: opts.Thickness / 2}))

	solid := tile
	x := -width/2 + opts.Spacing
	for i := 0; i < opts.Steps; i++ {
		h := opts.HeightMin
		if opts.Steps > 1 {
			h += (opts.HeightMax - opts.HeightMin) * float64(i) / float64(opts.Steps-1)
		}
		var boss sdf.SDF3 = form3.Cone(h, opts.BaseDiameter/2, opts.HatDiameter/2, 0)
		boss = sdf.Transform3D(boss, sdf.Translate3D(r3.Vec{X: x, Z: opts.Thickness + h/2}))
		solid = sdf.Union3D(solid, boss)
		x += opts.Spacing
	}

	if opts.RecessRadius > 0 {
		var dimple sdf.SDF3 = form3.Sphere(opts.RecessRadius)
		dimple = sdf.Transform3D(dimple, sdf.Translate3D(r3.Vec{X: x, Z: opts.Thickness}))
		solid = sdf.Difference3D(solid, dimple)
	}

	cells := opts.Cells
	if cells < 20 {
		cells = 20
	}
	tris, err := render.RenderAll(render.NewOctreeRenderer(solid, cells))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMeshBuildFailed, "render coupon")
	}

	m := mesh.New(len(tris))
	for _, t := range tris {
		m.Add(t[0], t[1], t[2])
	}
	if m.IsEmpty() {
		return nil, errors.New(errors.ErrCodeMeshBuildFailed, "coupon rendered no triangles")
	}
	return m, nil
}
