// Package assembly combines the substrate with the additive and subtractive
// feature sets into one printable solid.  Boolean work is delegated to an
// explicit ordered ladder of Engine strategies; every rung of the ladder
// degrades instead of failing, because the contract is "always return a
// printable solid" — a plate missing a recess beats no plate at all.
package assembly

import (
	"context"
	"time"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

// Engine is one boolean back end.  Implementations are stateless values safe
// for concurrent use; both operations respect ctx cancellation and return an
// error rather than panicking on malformed input.
type Engine interface {
	Name() string
	Union(ctx context.Context, meshes []*mesh.Mesh) (*mesh.Mesh, error)
	Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error)
}

// Result is the assembled plate plus the honesty flags the caller reports:
// which engine produced it, whether any fallback rung was used, and whether
// the final mesh is watertight.
type Result struct {
	Mesh *mesh.Mesh

	// Engine is the name of the engine that produced the subtraction, empty
	// when no subtraction was needed or every engine failed.
	Engine string

	// Degraded is set when anything below the primary path was used: a
	// lower-rung engine, per-primitive fallback, skipped primitives, a
	// skipped cutout, or hole repair.
	Degraded bool

	// Watertight is the final audit verdict, after repair if any.
	Watertight bool

	// SkippedTools counts subtractive primitives dropped by the
	// per-primitive fallback rung.
	SkippedTools int

	// RepairedHoles counts boundary loops closed by the repair pass.
	RepairedHoles int
}

// Config tunes the assembler.
type Config struct {
	// AttemptTimeout bounds each engine attempt.  Zero means no bound.
	AttemptTimeout time.Duration
}

// Assembler runs the boolean ladder.  It owns its engine list — no global
// registry — and is safe for concurrent Assemble calls.
type Assembler struct {
	engines []Engine
	cfg     Config
	log     logging.Logger
}

// New constructs an Assembler over the given ordered engine ladder.
func New(engines []Engine, cfg Config, log logging.Logger) *Assembler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Assembler{engines: engines, cfg: cfg, log: log.Named("assembly")}
}

// Engines exposes the configured ladder order, for logs and the CLI.
func (a *Assembler) Engines() []string {
	names := make([]string, len(a.engines))
	for i, e := range a.engines {
		names[i] = e.Name()
	}
	return names
}

// Difference runs one boolean difference through the engine ladder.  It
// satisfies the substrate builder's Differencer interface for the cylinder
// cutout, which goes through the same ladder as the main subtraction.
func (a *Assembler) Difference(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, error) {
	m, _, err := a.differenceLadder(ctx, base, tool)
	return m, err
}

// Assemble combines substrate, additive features, and subtractive tools into
// the final plate solid.  It never returns an error for boolean failures —
// those degrade — only for a context already dead on arrival.
func (a *Assembler) Assemble(ctx context.Context, sub *mesh.Mesh, additive, subtractive []*mesh.Mesh) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeTimeout, "assembly cancelled before start")
	}

	// Additive bosses sit on the surface by construction and do not overlap
	// each other, so plain concatenation keeps the solid valid without any
	// boolean work.
	solid := sub.Clone()
	for _, m := range additive {
		solid.Append(m)
	}

	res := Result{Mesh: solid}
	if len(subtractive) > 0 {
		a.subtract(ctx, &res, subtractive)
	}

	res.Watertight = res.Mesh.IsWatertight()
	if !res.Watertight {
		if filled := res.Mesh.FillHoles(); filled > 0 {
			res.RepairedHoles = filled
			res.Degraded = true
			res.Watertight = res.Mesh.IsWatertight()
			a.log.Warn("mesh needed hole repair",
				logging.Int("loops_filled", filled),
				logging.Bool("watertight_after", res.Watertight))
		}
	}
	if !res.Watertight {
		// Forward anyway; the caller sees the flag.
		a.log.Warn("final mesh is not watertight",
			logging.Int("boundary_edges", res.Mesh.BoundaryEdgeCount()))
	}
	return res, nil
}

// subtract removes the tool set from res.Mesh, walking the fallback ladder:
// one combined difference per engine, then per-primitive differencing, then
// giving up and leaving the solid unmodified.
func (a *Assembler) subtract(ctx context.Context, res *Result, tools []*mesh.Mesh) {
	tool, unionDegraded := a.combineTools(ctx, tools)
	if tool != nil {
		out, engine, err := a.differenceLadder(ctx, res.Mesh, tool)
		if err == nil {
			res.Mesh = out
			res.Engine = engine
			res.Degraded = res.Degraded || unionDegraded || engine != a.engines[0].Name()
			return
		}
		a.log.Warn("combined difference failed on every engine", logging.Err(err))
	}

	// Per-primitive rung: subtract each tool alone, skip the ones that fail.
	res.Degraded = true
	current := res.Mesh
	subtracted := 0
	for i, t := range tools {
		out, engine, err := a.differenceLadder(ctx, current, t)
		if err != nil {
			res.SkippedTools++
			a.log.Warn("skipping subtractive primitive",
				logging.Int("tool", i),
				logging.Err(err))
			continue
		}
		current = out
		subtracted++
		if res.Engine == "" {
			res.Engine = engine
		}
	}
	if subtracted > 0 {
		res.Mesh = current
		a.log.Warn("per-primitive fallback finished",
			logging.Int("subtracted", subtracted),
			logging.Int("skipped", res.SkippedTools))
		return
	}
	// Final rung: the unmodified substrate (plus bosses) is still a
	// printable plate.
	res.Engine = ""
	res.SkippedTools = len(tools)
	a.log.Error("all subtraction rungs failed; returning unmodified solid",
		logging.Int("tools", len(tools)))
}

// combineTools merges the subtractive primitives into one tool mesh.
// Pairwise-disjoint tools (the common case: braille recesses never touch)
// are concatenated outright; overlapping clusters are boolean-unioned via
// the ladder.  A nil return means even that failed and the caller should go
// straight to per-primitive subtraction.
func (a *Assembler) combineTools(ctx context.Context, tools []*mesh.Mesh) (*mesh.Mesh, bool) {
	clusters := clusterByBounds(tools)
	combined := mesh.New(0)
	degraded := false
	for _, cluster := range clusters {
		if len(cluster) == 1 {
			combined.Append(cluster[0])
			continue
		}
		u, engine, err := a.unionLadder(ctx, cluster)
		if err != nil {
			a.log.Warn("tool cluster union failed on every engine",
				logging.Int("cluster_size", len(cluster)),
				logging.Err(err))
			return nil, true
		}
		if engine != a.engines[0].Name() {
			degraded = true
		}
		combined.Append(u)
	}
	return combined, degraded
}

// differenceLadder tries base − tool on each engine in order.  A timeout
// counts as that engine failing and the ladder advances.
func (a *Assembler) differenceLadder(ctx context.Context, base, tool *mesh.Mesh) (*mesh.Mesh, string, error) {
	if len(a.engines) == 0 {
		return nil, "", errors.New(errors.ErrCodeAssemblyAllEnginesFailed, "no boolean engines configured")
	}
	var lastErr error
	for _, e := range a.engines {
		out, err := a.attempt(ctx, e, func(atx context.Context) (*mesh.Mesh, error) {
			return e.Difference(atx, base, tool)
		})
		if err == nil {
			return out, e.Name(), nil
		}
		lastErr = err
		a.log.Warn("difference engine failed, advancing ladder",
			logging.String("engine", e.Name()),
			logging.Err(err))
	}
	return nil, "", errors.Wrap(lastErr, errors.ErrCodeAssemblyAllEnginesFailed, "difference failed on every engine")
}

func (a *Assembler) unionLadder(ctx context.Context, meshes []*mesh.Mesh) (*mesh.Mesh, string, error) {
	if len(a.engines) == 0 {
		return nil, "", errors.New(errors.ErrCodeAssemblyAllEnginesFailed, "no boolean engines configured")
	}
	var lastErr error
	for _, e := range a.engines {
		out, err := a.attempt(ctx, e, func(atx context.Context) (*mesh.Mesh, error) {
			return e.Union(atx, meshes)
		})
		if err == nil {
			return out, e.Name(), nil
		}
		lastErr = err
		a.log.Warn("union engine failed, advancing ladder",
			logging.String("engine", e.Name()),
			logging.Err(err))
	}
	return nil, "", errors.Wrap(lastErr, errors.ErrCodeAssemblyAllEnginesFailed, "union failed on every engine")
}

// attempt runs one engine operation under the per-attempt timeout, converting
// panics into errors so a crashing engine only costs its rung.
func (a *Assembler) attempt(ctx context.Context, e Engine, op func(context.Context) (*mesh.Mesh, error)) (out *mesh.Mesh, err error) {
	if a.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.AttemptTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Newf(errors.ErrCodeAssemblyEngineFailed,
				"engine %s panicked: %v", e.Name(), r)
		}
	}()
	out, err = op(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAssemblyEngineFailed, e.Name())
	}
	if out == nil || out.IsEmpty() {
		return nil, errors.Newf(errors.ErrCodeAssemblyEngineFailed,
			"engine %s returned an empty mesh", e.Name())
	}
	return out, nil
}

// clusterByBounds groups tools whose bounding boxes touch, using a simple
// union-find over the pairwise overlap graph.  Disjoint clusters can be
// concatenated without a boolean union.
func clusterByBounds(tools []*mesh.Mesh) [][]*mesh.Mesh {
	n := len(tools)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	bounds := make([]mesh.Bounds, n)
	for i, t := range tools {
		bounds[i] = t.Bounds()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if bounds[i].Overlaps(bounds[j]) {
				parent[find(i)] = find(j)
			}
		}
	}
	groups := make(map[int][]*mesh.Mesh)
	order := make([]int, 0, n)
	for i, t := range tools {
		root := find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], t)
	}
	out := make([][]*mesh.Mesh, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}
