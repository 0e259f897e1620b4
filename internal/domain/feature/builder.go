// Package feature turns layout placements into positioned 3-D solids: frustum
// dot bosses, hemisphere or bore dot recesses, and the triangle / rectangle /
// glyph orientation markers.  Builders recover locally from construction
// failures — a broken glyph degrades to the plain rectangle, a broken marker
// is skipped with a warning — because some marker always beats failing the
// whole plate.
package feature

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/frame"
	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/internal/domain/layout"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/pkg/errors"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

// Builder constructs feature meshes for one plate.  It is cheap to create and
// safe for concurrent Build calls: all state is read-only.
type Builder struct {
	spec   *geometry.Spec
	mapper frame.Mapper
	log    logging.Logger
}

// NewBuilder returns a Builder for the given resolved spec and frame mapper.
func NewBuilder(spec *geometry.Spec, mapper frame.Mapper, log logging.Logger) *Builder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Builder{spec: spec, mapper: mapper, log: log}
}

// Build returns the world-positioned solid for one placement.  Glyph marker
// failures fall back to the rectangle marker silently (logged at debug);
// other failures return a build error the assembler may skip.
func (b *Builder) Build(p layout.Placement) (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	switch p.Kind {
	case layout.KindDotBoss:
		m, err = b.dotBoss()
	case layout.KindDotRecess:
		m, err = b.dotRecess()
	case layout.KindRowStartMarker:
		m, err = b.startMarker(p.Mirrored)
	case layout.KindRowEndMarker:
		m, err = b.endMarker(p.Indicator, p.Mirrored)
	default:
		return nil, errors.Newf(errors.ErrCodeMeshBuildFailed,
			"unknown placement kind %q", p.Kind)
	}
	if err != nil {
		return nil, err
	}
	m.Transform(b.mapper.At(p.X, p.Y))
	return m, nil
}

// dotBoss is the raised dot: a conical frustum with its base on the surface.
// Flat top always — a sharp apex can neither be felt nor printed.
func (b *Builder) dotBoss() (*mesh.Mesh, error) {
	return mesh.Frustum(
		b.spec.DotBaseDiameter/2,
		b.spec.DotTopDiameter/2,
		b.spec.DotHeight,
		b.spec.DotSegments,
	)
}

// dotRecess is the counter plate's subtraction tool.  The hemisphere style
// centres a sphere on the surface so the difference leaves a hemispherical
// pit; the bore style drills a cylinder through the full plate thickness.
func (b *Builder) dotRecess() (*mesh.Mesh, error) {
	if b.spec.RecessStyle == plate.RecessBore {
		m, err := mesh.Frustum(
			b.spec.RecessBoreRadius,
			b.spec.RecessBoreRadius,
			b.spec.RecessBoreHeight+2, // pierce both faces regardless of alignment
			b.spec.DotSegments,
		)
		if err != nil {
			return nil, err
		}
		m.Translate(r3.Vec{Z: -b.spec.RecessBoreHeight - 1})
		return m, nil
	}
	return mesh.Icosphere(b.spec.RecessRadius, b.spec.SphereSubdivisions)
}

// startMarker is the row-start triangle: base spanning 2×dot_spacing
// vertically, apex one dot_spacing toward the text cells.  Like all markers
// it straddles the surface so it cuts a groove when subtracted.
func (b *Builder) startMarker(mirrored bool) (*mesh.Mesh, error) {
	d := b.spec.DotSpacing
	outline := []r2.Vec{
		{X: 0, Y: -d},
		{X: d, Y: 0},
		{X: 0, Y: d},
	}
	return mesh.ExtrudedPolygon(mirrorOutline(outline, mirrored),
		-b.spec.MarkerDepth, b.spec.MarkerDepth)
}

// endMarker is the row-end marker: the indicator's glyph when one is defined,
// otherwise a dot_spacing × 2·dot_spacing rectangle.  Every glyph failure
// falls back to the rectangle.
func (b *Builder) endMarker(indicator rune, mirrored bool) (*mesh.Mesh, error) {
	if indicator != 0 {
		if m, err := b.glyphMarker(indicator, mirrored); err == nil {
			return m, nil
		} else if !errors.IsCode(err, errors.ErrCodeMeshBuildFailed) {
			// Defined glyph that failed to construct; worth a debug note.
			b.log.Debug("glyph marker failed, using rectangle",
				logging.String("indicator", string(indicator)),
				logging.Err(err))
		}
	}
	return b.rectMarker()
}

func (b *Builder) rectMarker() (*mesh.Mesh, error) {
	d := b.spec.DotSpacing
	outline := []r2.Vec{
		{X: -d / 2, Y: -d},
		{X: d / 2, Y: -d},
		{X: d / 2, Y: d},
		{X: -d / 2, Y: d},
	}
	return mesh.ExtrudedPolygon(outline, -b.spec.MarkerDepth, b.spec.MarkerDepth)
}

// glyphMarker renders the indicator rune from the stroke font.  A panic in
// the polygon clipper is converted to an error so a bad glyph can never take
// down the plate.
func (b *Builder) glyphMarker(indicator rune, mirrored bool) (m *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = errors.Newf(errors.ErrCodeMeshTriangulationFailed,
				"glyph construction panicked: %v", r)
		}
	}()

	height := 2 * b.spec.DotSpacing
	width := 0.6 * height
	outlines, err := glyphOutline(indicator, width, height, b.spec.GlyphStrokeFraction)
	if err != nil {
		return nil, err
	}

	m = mesh.New(0)
	for _, outline := range outlines {
		part, err := mesh.ExtrudedPolygon(mirrorOutline(outline, mirrored),
			-b.spec.MarkerDepth, b.spec.MarkerDepth)
		if err != nil {
			return nil, err
		}
		m.Append(part)
	}
	return m, nil
}

// mirrorOutline flips an outline in local x for mirrored counter plates, so
// markers point — and glyphs read — correctly once the plate is flipped over.
func mirrorOutline(outline []r2.Vec, mirrored bool) []r2.Vec {
	if !mirrored {
		return outline
	}
	out := make([]r2.Vec, len(outline))
	for i, p := range outline {
		out[i] = r2.Vec{X: -p.X, Y: p.Y}
	}
	return out
}
