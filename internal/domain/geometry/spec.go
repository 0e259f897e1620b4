// Package geometry resolves raw user parameters into the immutable Spec value
// that every downstream stage (layout, feature building, substrate, assembly)
// reads.  All lengths are millimetres; counts are integers.  The Spec is
// fully derived at construction time — no field is recomputed lazily, so a
// Spec can never be observed in a partially-derived state.
package geometry

import (
	"math"

	"github.com/brailleforge/brailleforge/pkg/errors"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

// Spec holds the resolved plate geometry.  Construct it with Resolve (or
// Default for the documented defaults); treat every field as read-only
// afterwards.  Mutating a raw field without re-resolving leaves the derived
// fields stale, which is why no setter exists.
type Spec struct {
	// Substrate shape and dimensions.
	Shape         plate.Shape
	CardWidth     float64
	CardHeight    float64
	CardThickness float64

	// Cylinder-specific dimensions (ignored for cards).
	CylinderDiameter float64
	CylinderHeight   float64
	CylinderSegments int
	SeamOffsetDeg    float64
	CutoutRadius     float64 // inscribed radius of the 12-gon bore; 0 disables

	// Grid dimensions.
	GridColumns int
	GridRows    int
	CellSpacing float64
	LineSpacing float64
	DotSpacing  float64

	// Dot boss geometry (positive plate).
	DotBaseDiameter float64
	DotHatSize      float64
	DotHeight       float64
	DotSegments     int

	// Fine-tune offsets applied to every cell baseline.
	BrailleXAdjust float64
	BrailleYAdjust float64

	// Counter-plate recess geometry.
	NegativePlateOffset   float64
	EmbossDotBaseDiameter float64
	RecessStyle           plate.RecessStyle
	SphereSubdivisions    int

	// Orientation markers.
	MarkerDepth         float64
	GlyphStrokeFraction float64

	// Layout policy.
	MirrorCounter      bool
	MarkersOnEmptyRows bool

	// Derived fields, computed once by Resolve.
	DotTopDiameter   float64
	GridWidth        float64
	GridHeight       float64
	LeftMargin       float64
	TopMargin        float64
	RecessRadius     float64
	RecessBoreRadius float64
	RecessBoreHeight float64
}

// SubstrateWidth returns the usable width of the substrate: the card width,
// or the unrolled outer circumference for a cylinder.
func (s *Spec) SubstrateWidth() float64 {
	if s.Shape == plate.ShapeCylinder {
		return math.Pi * s.CylinderDiameter
	}
	return s.CardWidth
}

// SubstrateHeight returns the height of the substrate along the text axis.
func (s *Spec) SubstrateHeight() float64 {
	if s.Shape == plate.ShapeCylinder {
		return s.CylinderHeight
	}
	return s.CardHeight
}

// Capacity returns the number of text cells per row.  Columns 0 and
// GridColumns−1 are reserved for the row-start and row-end markers.
func (s *Spec) Capacity() int { return s.GridColumns - 2 }

// MarginSafe reports whether both margins clear the minimum-safe threshold of
// half a cell pitch.  A thin margin is not fatal — callers decide whether to
// warn or refuse — but the plate edge may crowd the outermost dots.
func (s *Spec) MarginSafe() bool {
	threshold := s.CellSpacing / 2
	return s.LeftMargin >= threshold && s.TopMargin >= threshold
}

// Margins returns the derived margins together with the safety verdict, in
// the wire shape the preview endpoint reports.
func (s *Spec) Margins() plate.Margins {
	return plate.Margins{Left: s.LeftMargin, Top: s.TopMargin, Safe: s.MarginSafe()}
}

// derive computes every derived field from the raw fields.  Called exactly
// once, at the end of Resolve.
func (s *Spec) derive() error {
	s.DotTopDiameter = s.DotHatSize
	s.GridWidth = float64(s.GridColumns-1) * s.CellSpacing
	s.GridHeight = float64(s.GridRows-1) * s.LineSpacing
	s.LeftMargin = (s.SubstrateWidth() - s.GridWidth) / 2
	s.TopMargin = (s.SubstrateHeight() - s.GridHeight) / 2
	s.RecessRadius = (s.EmbossDotBaseDiameter + s.NegativePlateOffset) / 2
	s.RecessBoreRadius = s.EmbossDotBaseDiameter/2 + s.NegativePlateOffset
	s.RecessBoreHeight = s.CardThickness + s.NegativePlateOffset

	if s.LeftMargin < 0 {
		return errors.Newf(errors.ErrCodeGeometryGridOversized,
			"grid width %.2fmm exceeds substrate width %.2fmm (%d columns at %.2fmm pitch)",
			s.GridWidth, s.SubstrateWidth(), s.GridColumns, s.CellSpacing)
	}
	if s.TopMargin < 0 {
		return errors.Newf(errors.ErrCodeGeometryGridOversized,
			"grid height %.2fmm exceeds substrate height %.2fmm (%d rows at %.2fmm pitch)",
			s.GridHeight, s.SubstrateHeight(), s.GridRows, s.LineSpacing)
	}
	if s.Shape == plate.ShapeCylinder && s.CutoutRadius >= s.CylinderDiameter/2 {
		return errors.Newf(errors.ErrCodeGeometryParamRange,
			"cutout_radius %.2fmm must be smaller than the cylinder radius %.2fmm",
			s.CutoutRadius, s.CylinderDiameter/2)
	}
	return nil
}
