// Package frame maps 2-D plate coordinates onto the substrate surface.
// Features are always built in a local frame — x across the plate, y up the
// plate, z out of the surface, with z=0 on the top surface — and a Mapper
// turns that local frame into a world-space pose.  The flat card mapper is
// (almost) the identity; the cylinder mapper wraps the x axis around the
// shell so a feature's local z axis points radially outward.
package frame

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
)

// Mapper produces the world transform for a feature anchored at plate
// coordinate (x, y).  Implementations are pure values, safe for concurrent
// use across placements.
type Mapper interface {
	// At returns the affine transform from the feature's local frame
	// (x tangential, y axial, z surface-normal, origin on the top surface)
	// to world coordinates.
	At(x, y float64) mesh.Affine

	// SurfaceZ returns the world-space height of the top surface above the
	// substrate origin along the local normal — the amount a tool must
	// straddle to cut a groove of the configured depth.
	SurfaceZ() float64
}

// Flat maps plate coordinates directly onto a card whose bottom face sits on
// the world z=0 plane.
type Flat struct {
	// Thickness is the card thickness; the top surface is z = Thickness.
	Thickness float64
}

// At places the local frame at (x, y, thickness) with no rotation.
func (f Flat) At(x, y float64) mesh.Affine {
	return mesh.Translation(r3.Vec{X: x, Y: y, Z: f.Thickness})
}

// SurfaceZ returns the card thickness.
func (f Flat) SurfaceZ() float64 { return f.Thickness }

// Cylinder wraps the plate around a cylinder of the given outer radius whose
// axis is the world z axis.  Plate x is arc length along the outer surface;
// plate y maps to the axial coordinate unchanged.
type Cylinder struct {
	// Radius is the outer radius the plate surface wraps onto.
	Radius float64

	// SeamOffset rotates all content about the axis (radians) so the print
	// seam can be turned away from the embossed area.
	SeamOffset float64
}

// At converts arc length x to the angle θ = x/R + φ and returns the linear
// map [t̂ | ẑ | r̂] plus a translation to the surface point.  A feature built
// z-up in its local frame ends up standing radially outward on the shell; at
// θ = 0 with no seam offset, local +z is world +x and the anchor is (R, 0, y).
func (c Cylinder) At(x, y float64) mesh.Affine {
	theta := x/c.Radius + c.SeamOffset
	sin, cos := math.Sincos(theta)
	radial := r3.Vec{X: cos, Y: sin}
	tangent := r3.Vec{X: -sin, Y: cos}
	axial := r3.Vec{Z: 1}
	return mesh.Affine{
		X: tangent,
		Y: axial,
		Z: radial,
		T: r3.Add(r3.Scale(c.Radius, radial), r3.Vec{Z: y}),
	}
}

// SurfaceZ returns the outer radius: a feature's local z=0 plane sits on the
// shell surface, radius away from the axis.
func (c Cylinder) SurfaceZ() float64 { return c.Radius }
