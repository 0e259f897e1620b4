// Package substrate builds the base solid every plate starts from: a flat
// rectangular card, or a cylindrical shell optionally pierced by a polygonal
// mounting bore.  Feature bosses and recess tools are combined with the
// substrate later, by the assembly engine.
package substrate

import (
	"context"
	"math"

	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/pkg/errors"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

// cutoutSides is the side count of the mounting bore prism.  A regular
// 12-gon is close enough to round for a mounting post while keeping the
// boolean cheap.
const cutoutSides = 12

// Differencer is the one boolean operation the substrate builder needs; the
// assembly engine's ladder satisfies it.
type Differencer interface {
	Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error)
}

// Result carries the substrate solid and whether the optional cutout had to
// be skipped because the boolean failed.  A skipped cutout degrades the
// plate instead of failing it; the shell is still printable.
type Result struct {
	Mesh     *mesh.Mesh
	Degraded bool
}

// Build constructs the substrate for the spec's shape.  diff is consulted
// only when a cylinder carries a mounting cutout; it may be nil for cards.
func Build(ctx context.Context, spec *geometry.Spec, diff Differencer) (Result, error) {
	switch spec.Shape {
	case plate.ShapeCard:
		return Result{Mesh: Card(spec)}, nil
	case plate.ShapeCylinder:
		return cylinder(ctx, spec, diff)
	default:
		return Result{}, errors.Newf(errors.ErrCodeGeometryShapeInvalid,
			"unsupported substrate shape %q", spec.Shape)
	}
}

// Card returns the flat card: an axis-aligned box with one corner at the
// origin and its top surface at z = thickness.
func Card(spec *geometry.Spec) *mesh.Mesh {
	return mesh.Box(spec.CardWidth, spec.CardHeight, spec.CardThickness)
}

// Cylinder returns the solid cylinder spanning z ∈ [0, height], centred on
// the z axis, without any cutout.
func Cylinder(spec *geometry.Spec) (*mesh.Mesh, error) {
	r := spec.CylinderDiameter / 2
	return mesh.Frustum(r, r, spec.CylinderHeight, spec.CylinderSegments)
}

func cylinder(ctx context.Context, spec *geometry.Spec, diff Differencer) (Result, error) {
	shell, err := Cylinder(spec)
	if err != nil {
		return Result{}, err
	}
	if spec.CutoutRadius <= 0 {
		return Result{Mesh: shell}, nil
	}

	tool, err := CutoutTool(spec)
	if err != nil {
		// A broken cutout tool degrades to the solid shell.
		return Result{Mesh: shell, Degraded: true}, nil
	}
	if diff == nil {
		return Result{Mesh: shell, Degraded: true}, nil
	}
	pierced, err := diff.Difference(ctx, shell, tool)
	if err != nil || pierced == nil || pierced.IsEmpty() {
		return Result{Mesh: shell, Degraded: true}, nil
	}
	return Result{Mesh: pierced}, nil
}

// CutoutTool returns the mounting-bore subtraction tool: a regular 12-sided
// prism along the cylinder axis.  The configured radius is the inscribed
// radius (flat-to-axis distance), so the prism is built with the matching
// circumscribed radius; it is oversized along the axis by the full substrate
// height on both ends so the difference pierces cleanly regardless of
// alignment.
func CutoutTool(spec *geometry.Spec) (*mesh.Mesh, error) {
	circumscribed := spec.CutoutRadius / math.Cos(math.Pi/float64(cutoutSides))
	h := spec.CylinderHeight
	return mesh.RegularPolygonPrism(circumscribed, cutoutSides, -h, 2*h)
}
