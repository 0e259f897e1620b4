package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/domain/feature"
	"github.com/brailleforge/brailleforge/internal/domain/frame"
	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/internal/domain/layout"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
)

func newBuilder(t *testing.T, params geometry.Params) (*feature.Builder, *geometry.Spec) {
	t.Helper()
	spec, err := geometry.Resolve(params)
	require.NoError(t, err)
	mapper := frame.Flat{Thickness: spec.CardThickness}
	return feature.NewBuilder(spec, mapper, logging.NewNopLogger()), spec
}

func buildOne(t *testing.T, b *feature.Builder, p layout.Placement) *mesh.Mesh {
	t.Helper()
	m, err := b.Build(p)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func TestBuild_DotBoss(t *testing.T) {
	t.Parallel()

	b, spec := newBuilder(t, nil)
	m := buildOne(t, b, layout.Placement{Kind: layout.KindDotBoss, X: 12.6, Y: 44.4})

	assert.True(t, m.IsWatertight())
	bounds := m.Bounds()
	// Base flush with the top surface, boss rising dot_height above it.
	assert.InDelta(t, spec.CardThickness, bounds.Min.Z, 1e-9)
	assert.InDelta(t, spec.CardThickness+spec.DotHeight, bounds.Max.Z, 1e-9)
	// Centred on the placement, base diameter wide.
	assert.InDelta(t, 12.6, (bounds.Min.X+bounds.Max.X)/2, 1e-9)
	assert.InDelta(t, spec.DotBaseDiameter, bounds.Max.X-bounds.Min.X, 1e-9)
}

func TestBuild_HemisphereRecessStraddlesSurface(t *testing.T) {
	t.Parallel()

	b, spec := newBuilder(t, nil)
	m := buildOne(t, b, layout.Placement{Kind: layout.KindDotRecess, X: 10, Y: 10})

	assert.True(t, m.IsWatertight())
	bounds := m.Bounds()
	// Sphere centred exactly on the top surface: its lower hemisphere is the
	// cavity left by subtraction.
	assert.InDelta(t, spec.CardThickness-spec.RecessRadius, bounds.Min.Z, 1e-9)
	assert.InDelta(t, spec.CardThickness+spec.RecessRadius, bounds.Max.Z, 1e-9)
}

func TestBuild_BoreRecessPiercesPlate(t *testing.T) {
	t.Parallel()

	b, spec := newBuilder(t, geometry.Params{"counter_recess_style": "bore"})
	m := buildOne(t, b, layout.Placement{Kind: layout.KindDotRecess, X: 10, Y: 10})

	bounds := m.Bounds()
	assert.Less(t, bounds.Min.Z, 0.0)
	assert.Greater(t, bounds.Max.Z, spec.CardThickness)
}

func TestBuild_StartMarkerTriangle(t *testing.T) {
	t.Parallel()

	b, spec := newBuilder(t, nil)
	m := buildOne(t, b, layout.Placement{Kind: layout.KindRowStartMarker, X: 6, Y: 44.4})

	assert.True(t, m.IsWatertight())
	bounds := m.Bounds()
	// Base spans 2×dot_spacing vertically, apex extends dot_spacing toward
	// the text columns (+x), and the prism straddles the surface.
	assert.InDelta(t, 2*spec.DotSpacing, bounds.Max.Y-bounds.Min.Y, 1e-9)
	assert.InDelta(t, 6.0, bounds.Min.X, 1e-9)
	assert.InDelta(t, 6.0+spec.DotSpacing, bounds.Max.X, 1e-9)
	assert.InDelta(t, spec.CardThickness-spec.MarkerDepth, bounds.Min.Z, 1e-9)
	assert.InDelta(t, spec.CardThickness+spec.MarkerDepth, bounds.Max.Z, 1e-9)
}

func TestBuild_StartMarkerMirroredPointsBackward(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nil)
	m := buildOne(t, b, layout.Placement{Kind: layout.KindRowStartMarker, X: 6, Y: 10, Mirrored: true})

	bounds := m.Bounds()
	// Apex now extends −x.
	assert.InDelta(t, 6.0, bounds.Max.X, 1e-9)
	assert.Less(t, bounds.Min.X, 6.0)
	assert.True(t, m.IsWatertight())
}

func TestBuild_EndMarkerRectangleWithoutIndicator(t *testing.T) {
	t.Parallel()

	b, spec := newBuilder(t, nil)
	m := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, X: 84, Y: 44.4})

	assert.True(t, m.IsWatertight())
	bounds := m.Bounds()
	assert.InDelta(t, spec.DotSpacing, bounds.Max.X-bounds.Min.X, 1e-9)
	assert.InDelta(t, 2*spec.DotSpacing, bounds.Max.Y-bounds.Min.Y, 1e-9)
}

func TestBuild_EndMarkerGlyph(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nil)
	rect := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, X: 0, Y: 0})
	glyph := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, X: 0, Y: 0, Indicator: 'B'})

	// A glyph is visibly more complex than the 12-triangle rectangle prism.
	assert.Greater(t, glyph.Len(), rect.Len())
}

func TestBuild_EndMarkerUndefinedGlyphFallsBack(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nil)
	rect := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, X: 0, Y: 0})
	fallback := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, X: 0, Y: 0, Indicator: '§'})

	assert.Equal(t, rect.Len(), fallback.Len())
	assert.InDelta(t, rect.SignedVolume(), fallback.SignedVolume(), 1e-9)
}

func TestBuild_LowercaseIndicatorUsesUppercaseGlyph(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nil)
	upper := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, Indicator: 'B'})
	lower := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, Indicator: 'b'})
	assert.Equal(t, upper.Len(), lower.Len())
}

func TestBuild_AllGlyphsConstruct(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, nil)
	for r := 'A'; r <= 'Z'; r++ {
		m := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, Indicator: r})
		assert.Greater(t, m.Len(), 12, "glyph %q fell back to the rectangle", r)
	}
	for r := '0'; r <= '9'; r++ {
		m := buildOne(t, b, layout.Placement{Kind: layout.KindRowEndMarker, Indicator: r})
		assert.Greater(t, m.Len(), 12, "glyph %q fell back to the rectangle", r)
	}
}

func TestBuild_OnCylinderFrame(t *testing.T) {
	t.Parallel()

	spec, err := geometry.Resolve(geometry.Params{
		"shape":             "cylinder",
		"cylinder_diameter": 40.0,
	})
	require.NoError(t, err)

	b := feature.NewBuilder(spec, frame.Cylinder{Radius: 20.0}, logging.NewNopLogger())
	m, err := b.Build(layout.Placement{Kind: layout.KindDotBoss, X: 0, Y: 5})
	require.NoError(t, err)

	// At θ=0 the boss stands radially outward along +x.
	bounds := m.Bounds()
	assert.InDelta(t, 20.0+spec.DotHeight, bounds.Max.X, 1e-9)
	assert.True(t, m.IsWatertight())
}
