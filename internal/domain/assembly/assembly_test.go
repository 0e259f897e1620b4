package assembly_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/domain/substrate"
)

// The cylinder cutout goes through the same ladder as the main subtraction.
var _ substrate.Differencer = (*assembly.Assembler)(nil)

// stubEngine lets tests script the ladder: failDiff/failUnion make every
// call of that kind fail, failLargeTools fails differences whose tool has
// more than one box worth of triangles (the combined-tool pass).
type stubEngine struct {
	name           string
	failDiff       bool
	failUnion      bool
	failLargeTools bool
	block          bool

	diffCalls  atomic.Int32
	unionCalls atomic.Int32
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Union(ctx context.Context, meshes []*mesh.Mesh) (*mesh.Mesh, error) {
	s.unionCalls.Add(1)
	if s.failUnion {
		return nil, assert.AnError
	}
	out := mesh.New(0)
	for _, m := range meshes {
		out.Append(m)
	}
	return out, nil
}

func (s *stubEngine) Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error) {
	s.diffCalls.Add(1)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.failDiff {
		return nil, assert.AnError
	}
	if s.failLargeTools && tool.Len() > 12 {
		return nil, assert.AnError
	}
	return base.Clone(), nil
}

func boxAt(x float64) *mesh.Mesh {
	m := mesh.Box(2, 2, 2)
	m.Translate(r3.Vec{X: x})
	return m
}

func newAssembler(engines ...assembly.Engine) *assembly.Assembler {
	return assembly.New(engines, assembly.Config{}, nil)
}

func TestAssemble_NoTools(t *testing.T) {
	t.Parallel()
	eng := &stubEngine{name: "bsp"}
	a := newAssembler(eng)

	sub := mesh.Box(20, 20, 2)
	boss := boxAt(30)
	res, err := a.Assemble(context.Background(), sub, []*mesh.Mesh{boss}, nil)
	require.NoError(t, err)

	assert.Equal(t, sub.Len()+boss.Len(), res.Mesh.Len())
	assert.Empty(t, res.Engine)
	assert.False(t, res.Degraded)
	assert.True(t, res.Watertight)
	assert.Zero(t, eng.diffCalls.Load())
}

func TestAssemble_PrimaryEngine(t *testing.T) {
	t.Parallel()
	primary := &stubEngine{name: "bsp"}
	backup := &stubEngine{name: "scanfill"}
	a := newAssembler(primary, backup)

	res, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0), boxAt(10)})
	require.NoError(t, err)

	assert.Equal(t, "bsp", res.Engine)
	assert.False(t, res.Degraded)
	assert.Zero(t, res.SkippedTools)
	assert.Zero(t, backup.diffCalls.Load())
}

func TestAssemble_FallsToSecondEngine(t *testing.T) {
	t.Parallel()
	primary := &stubEngine{name: "bsp", failDiff: true}
	backup := &stubEngine{name: "scanfill"}
	a := newAssembler(primary, backup)

	res, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0)})
	require.NoError(t, err)

	assert.Equal(t, "scanfill", res.Engine)
	assert.True(t, res.Degraded)
	assert.Zero(t, res.SkippedTools)
}

func TestAssemble_PerPrimitiveFallback(t *testing.T) {
	t.Parallel()
	// Both engines reject the combined tool but accept single boxes.
	primary := &stubEngine{name: "bsp", failLargeTools: true}
	backup := &stubEngine{name: "scanfill", failLargeTools: true}
	a := newAssembler(primary, backup)

	res, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0), boxAt(10)})
	require.NoError(t, err)

	assert.Equal(t, "bsp", res.Engine)
	assert.True(t, res.Degraded)
	assert.Zero(t, res.SkippedTools)
}

func TestAssemble_AllEnginesFail(t *testing.T) {
	t.Parallel()
	a := newAssembler(
		&stubEngine{name: "bsp", failDiff: true},
		&stubEngine{name: "scanfill", failDiff: true},
	)

	sub := mesh.Box(20, 20, 2)
	boss := boxAt(30)
	tools := []*mesh.Mesh{boxAt(0), boxAt(10)}
	res, err := a.Assemble(context.Background(), sub, []*mesh.Mesh{boss}, tools)
	require.NoError(t, err, "boolean failure must degrade, not error")

	// The unmodified substrate plus bosses comes back.
	assert.Equal(t, sub.Len()+boss.Len(), res.Mesh.Len())
	assert.Empty(t, res.Engine)
	assert.True(t, res.Degraded)
	assert.Equal(t, len(tools), res.SkippedTools)
	assert.True(t, res.Watertight)
}

func TestAssemble_PerPrimitiveCallPattern(t *testing.T) {
	t.Parallel()
	// One engine, fails the combined pass, then succeeds per primitive.
	eng := &stubEngine{name: "bsp", failLargeTools: true}
	a := newAssembler(eng)

	res, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0), boxAt(10), boxAt(20)})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Zero(t, res.SkippedTools)
	// 1 combined attempt + 3 per-primitive attempts.
	assert.Equal(t, int32(4), eng.diffCalls.Load())
}

func TestAssemble_OverlappingToolsUnioned(t *testing.T) {
	t.Parallel()
	eng := &stubEngine{name: "bsp"}
	a := newAssembler(eng)

	// Two boxes at the same spot overlap; the third is far away.
	_, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0), boxAt(1), boxAt(15)})
	require.NoError(t, err)
	assert.Equal(t, int32(1), eng.unionCalls.Load())
}

func TestAssemble_DisjointToolsConcatenated(t *testing.T) {
	t.Parallel()
	eng := &stubEngine{name: "bsp"}
	a := newAssembler(eng)

	_, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0), boxAt(10), boxAt(20)})
	require.NoError(t, err)
	assert.Zero(t, eng.unionCalls.Load())
	assert.Equal(t, int32(1), eng.diffCalls.Load())
}

func TestAssemble_AttemptTimeout(t *testing.T) {
	t.Parallel()
	slow := &stubEngine{name: "bsp", block: true}
	fast := &stubEngine{name: "scanfill"}
	a := assembly.New([]assembly.Engine{slow, fast},
		assembly.Config{AttemptTimeout: 20 * time.Millisecond}, nil)

	res, err := a.Assemble(context.Background(), mesh.Box(20, 20, 2), nil,
		[]*mesh.Mesh{boxAt(0)})
	require.NoError(t, err)
	assert.Equal(t, "scanfill", res.Engine)
	assert.True(t, res.Degraded)
}

func TestAssemble_CancelledBeforeStart(t *testing.T) {
	t.Parallel()
	a := newAssembler(&stubEngine{name: "bsp"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Assemble(ctx, mesh.Box(20, 20, 2), nil, nil)
	assert.Error(t, err)
}

func TestAssemble_RepairsHoles(t *testing.T) {
	t.Parallel()
	a := newAssembler(&stubEngine{name: "bsp"})

	// Substrate with one face missing: two boundary loops worth of repair.
	sub := mesh.Box(10, 10, 10)
	sub.Triangles = sub.Triangles[:len(sub.Triangles)-2]

	res, err := a.Assemble(context.Background(), sub, nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.True(t, res.Watertight)
	assert.Positive(t, res.RepairedHoles)
}

func TestEngines_ReportsLadderOrder(t *testing.T) {
	t.Parallel()
	a := newAssembler(&stubEngine{name: "bsp"}, &stubEngine{name: "scanfill"})
	assert.Equal(t, []string{"bsp", "scanfill"}, a.Engines())
}
