package substrate_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/domain/substrate"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

type fakeDiff struct {
	result *mesh.Mesh
	err    error
	calls  int
}

func (f *fakeDiff) Difference(_ context.Context, base, _ *mesh.Mesh) (*mesh.Mesh, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return base, nil
}

func TestBuild_Card(t *testing.T) {
	t.Parallel()

	spec, err := geometry.Resolve(nil)
	require.NoError(t, err)

	res, err := substrate.Build(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.True(t, res.Mesh.IsWatertight())
	assert.InDelta(t, 90*52*2.0, res.Mesh.SignedVolume(), 1e-6)
}

func cylinderSpec(t *testing.T, extra geometry.Params) *geometry.Spec {
	t.Helper()
	params := geometry.Params{
		"shape":             "cylinder",
		"cylinder_diameter": 40.0,
		"cylinder_height":   60.0,
	}
	for k, v := range extra {
		params[k] = v
	}
	spec, err := geometry.Resolve(params)
	require.NoError(t, err)
	return spec
}

func TestBuild_SolidCylinder(t *testing.T) {
	t.Parallel()

	spec := cylinderSpec(t, nil)
	res, err := substrate.Build(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.True(t, res.Mesh.IsWatertight())

	exact := math.Pi * 20 * 20 * 60
	assert.InDelta(t, exact, res.Mesh.SignedVolume(), exact*0.01)
}

func TestBuild_CylinderCutoutUsesDifferencer(t *testing.T) {
	t.Parallel()

	spec := cylinderSpec(t, geometry.Params{"cutout_radius": 8.0})
	diff := &fakeDiff{}
	res, err := substrate.Build(context.Background(), spec, diff)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, diff.calls)
}

func TestBuild_CylinderCutoutDegradesOnFailure(t *testing.T) {
	t.Parallel()

	spec := cylinderSpec(t, geometry.Params{"cutout_radius": 8.0})
	diff := &fakeDiff{err: errors.New(errors.ErrCodeAssemblyEngineFailed, "boom")}

	res, err := substrate.Build(context.Background(), spec, diff)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	require.NotNil(t, res.Mesh)
	assert.True(t, res.Mesh.IsWatertight()) // solid shell returned unmodified
}

func TestCutoutTool_Dimensions(t *testing.T) {
	t.Parallel()

	spec := cylinderSpec(t, geometry.Params{"cutout_radius": 8.0})
	tool, err := substrate.CutoutTool(spec)
	require.NoError(t, err)
	assert.True(t, tool.IsWatertight())

	b := tool.Bounds()
	// Inscribed radius 8 → circumscribed 8/cos(15°) ≈ 8.28; a vertex lies on
	// the +x axis so the x extent equals the circumscribed diameter.
	circ := 8.0 / math.Cos(math.Pi/12)
	assert.InDelta(t, 2*circ, b.Max.X-b.Min.X, 1e-9)
	// Oversized well past both ends of the 60mm shell.
	assert.Less(t, b.Min.Z, 0.0)
	assert.Greater(t, b.Max.Z, 60.0)
}
