package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/pkg/errors"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	s, err := geometry.Resolve(nil)
	require.NoError(t, err)

	assert.Equal(t, plate.ShapeCard, s.Shape)
	assert.Equal(t, 90.0, s.CardWidth)
	assert.Equal(t, 52.0, s.CardHeight)
	assert.Equal(t, 2.0, s.CardThickness)
	assert.Equal(t, 13, s.GridColumns)
	assert.Equal(t, 4, s.GridRows)
	assert.Equal(t, 7.0, s.CellSpacing)
	assert.Equal(t, 12.0, s.LineSpacing)
	assert.Equal(t, 2.5, s.DotSpacing)
	assert.Equal(t, 0.8, s.DotHatSize)
	assert.Equal(t, plate.RecessHemisphere, s.RecessStyle)
	assert.True(t, s.MirrorCounter)
	assert.False(t, s.MarkersOnEmptyRows)

	// Derived fields.
	assert.Equal(t, 0.8, s.DotTopDiameter)
	assert.InDelta(t, 84.0, s.GridWidth, 1e-12)   // (13-1)*7
	assert.InDelta(t, 36.0, s.GridHeight, 1e-12)  // (4-1)*12
	assert.InDelta(t, 3.0, s.LeftMargin, 1e-12)   // (90-84)/2
	assert.InDelta(t, 8.0, s.TopMargin, 1e-12)    // (52-36)/2
	assert.InDelta(t, 1.2, s.RecessRadius, 1e-12) // (2.0+0.4)/2
	assert.Equal(t, 11, s.Capacity())
}

func TestResolve_BlankAndStringValues(t *testing.T) {
	t.Parallel()

	s, err := geometry.Resolve(geometry.Params{
		"card_width":   "100",
		"card_height":  "  ", // blank → default
		"grid_columns": "11",
		"dot_height":   1.2,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.CardWidth)
	assert.Equal(t, 52.0, s.CardHeight)
	assert.Equal(t, 11, s.GridColumns)
	assert.Equal(t, 1.2, s.DotHeight)
}

func TestResolve_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params geometry.Params
		code   errors.ErrorCode
	}{
		{"not a number", geometry.Params{"card_width": "wide"}, errors.ErrCodeGeometryParamInvalid},
		{"out of range", geometry.Params{"dot_height": -1.0}, errors.ErrCodeGeometryParamRange},
		{"zero exclusive minimum", geometry.Params{"card_thickness": 0}, errors.ErrCodeGeometryParamRange},
		{"fractional count", geometry.Params{"grid_rows": 2.5}, errors.ErrCodeGeometryParamInvalid},
		{"unknown key", geometry.Params{"dot_radius": 1.0}, errors.ErrCodeGeometryParamUnknown},
		{"bad shape", geometry.Params{"shape": "sphere"}, errors.ErrCodeGeometryParamInvalid},
		{"hat wider than base", geometry.Params{"dot_hat_size": 3.0}, errors.ErrCodeGeometryParamRange},
		{"grid too wide", geometry.Params{"card_width": 20.0}, errors.ErrCodeGeometryGridOversized},
		{"grid too tall", geometry.Params{"card_height": 10.0}, errors.ErrCodeGeometryGridOversized},
		{"cutout swallows cylinder", geometry.Params{"shape": "cylinder", "cylinder_diameter": 30.0, "cylinder_height": 52.0, "cell_spacing": 6.0, "cutout_radius": 20.0}, errors.ErrCodeGeometryParamRange},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := geometry.Resolve(tt.params)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestResolve_CylinderSubstrateExtent(t *testing.T) {
	t.Parallel()

	s, err := geometry.Resolve(geometry.Params{
		"shape":             "cylinder",
		"cylinder_diameter": 40.0,
		"cylinder_height":   60.0,
	})
	require.NoError(t, err)

	assert.InDelta(t, 125.66, s.SubstrateWidth(), 0.01) // π·40
	assert.Equal(t, 60.0, s.SubstrateHeight())
	// Margins derive from the unrolled circumference.
	assert.InDelta(t, (s.SubstrateWidth()-84.0)/2, s.LeftMargin, 1e-12)
}

func TestResolve_EmbossDiameterTracksDotDiameter(t *testing.T) {
	t.Parallel()

	s, err := geometry.Resolve(geometry.Params{"dot_base_diameter": 1.6})
	require.NoError(t, err)
	assert.Equal(t, 1.6, s.EmbossDotBaseDiameter)
	assert.InDelta(t, 1.0, s.RecessRadius, 1e-12) // (1.6+0.4)/2

	s, err = geometry.Resolve(geometry.Params{"emboss_dot_base_diameter": 2.4})
	require.NoError(t, err)
	assert.Equal(t, 2.4, s.EmbossDotBaseDiameter)
}

func TestMarginSafe(t *testing.T) {
	t.Parallel()

	s, err := geometry.Resolve(nil)
	require.NoError(t, err)
	// Left margin 3.0 < cell_spacing/2 = 3.5 → unsafe but not fatal.
	assert.False(t, s.MarginSafe())

	s, err = geometry.Resolve(geometry.Params{"card_width": 95.0})
	require.NoError(t, err)
	// Left margin 5.5 ≥ 3.5, top margin 8.0 ≥ 3.5.
	assert.True(t, s.MarginSafe())
}

func TestGridCentering(t *testing.T) {
	t.Parallel()

	// left == right and top == bottom margins by construction whenever the
	// grid fits: margin = (extent − grid)/2 on both sides.
	s, err := geometry.Resolve(geometry.Params{"card_width": 120.0, "card_height": 80.0})
	require.NoError(t, err)
	rightMargin := s.SubstrateWidth() - s.LeftMargin - s.GridWidth
	bottomMargin := s.SubstrateHeight() - s.TopMargin - s.GridHeight
	assert.InDelta(t, s.LeftMargin, rightMargin, 1e-12)
	assert.InDelta(t, s.TopMargin, bottomMargin, 1e-12)
}

func TestDefaultParams_ResolveCleanly(t *testing.T) {
	t.Parallel()

	defaults := geometry.DefaultParams()
	_, err := geometry.Resolve(defaults)
	require.NoError(t, err)
	assert.Len(t, geometry.KnownParams(), len(defaults))
}
