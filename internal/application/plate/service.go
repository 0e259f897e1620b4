// Package plate is the application service behind every plate surface: HTTP,
// CLI, and the client SDK all call through here.  It owns the pipeline
// ordering — resolve, parse, plan, build, assemble, export — and translates
// domain failures into coded errors; the domain packages below it stay free
// of transport concerns.
package plate

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/domain/braille"
	"github.com/brailleforge/brailleforge/internal/domain/feature"
	"github.com/brailleforge/brailleforge/internal/domain/frame"
	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/internal/domain/layout"
	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/internal/domain/substrate"
	"github.com/brailleforge/brailleforge/internal/infrastructure/export"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	promx "github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
	"github.com/brailleforge/brailleforge/pkg/errors"
	platetypes "github.com/brailleforge/brailleforge/pkg/types/plate"
)

// fallbackFilename is used when no source line yields a printable name.
const fallbackFilename = "braille_card"

// maxFilenameLen bounds the text-derived part of the download filename.
const maxFilenameLen = 20

// Options tunes the service.
type Options struct {
	// TotalTimeout bounds one whole generation.  Zero means unbounded.
	TotalTimeout time.Duration

	// FeatureWorkers bounds the goroutines building feature meshes.
	// Values below 1 are treated as 1.
	FeatureWorkers int

	// MaxConcurrent bounds in-flight generations across all callers.
	// Values below 1 are treated as 1.
	MaxConcurrent int

	// MaxGridColumns/MaxGridRows cap the requested grid regardless of what
	// the parameter table would allow.
	MaxGridColumns int
	MaxGridRows    int
}

// Service generates braille plates.  Safe for concurrent use.
type Service struct {
	assembler *assembly.Assembler
	opts      Options
	log       logging.Logger
	metrics   *promx.AppMetrics // nil disables recording
	slots     chan struct{}
}

// NewService wires the plate pipeline.  metrics may be nil.
func NewService(asm *assembly.Assembler, opts Options, log logging.Logger, metrics *promx.AppMetrics) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if opts.FeatureWorkers < 1 {
		opts.FeatureWorkers = 1
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &Service{
		assembler: asm,
		opts:      opts,
		log:       log.Named("plate"),
		metrics:   metrics,
		slots:     make(chan struct{}, opts.MaxConcurrent),
	}
}

// Result is one generated plate.
type Result struct {
	// STL is the binary STL encoding of Mesh.
	STL []byte
	// Mesh is the assembled solid, for callers that post-process.
	Mesh *mesh.Mesh
	// Stats summarises the plate.
	Stats platetypes.Stats
}

// Generate runs the full pipeline and returns the encoded plate.
func (s *Service) Generate(ctx context.Context, req platetypes.GenerateRequest) (*Result, error) {
	start := time.Now()
	res, err := s.generate(ctx, req)

	kind, shape := "unknown", "unknown"
	if res != nil {
		kind, shape = string(res.Stats.PlateType), string(res.Stats.Shape)
	}
	if s.metrics != nil {
		placements, triangles := 0, 0
		if res != nil {
			placements = res.Stats.DotBosses + res.Stats.DotRecesses + res.Stats.Markers
			triangles = res.Stats.Triangles
		}
		promx.RecordPlateGenerated(s.metrics, kind, shape, err == nil, time.Since(start), placements, triangles)
		if err != nil {
			promx.RecordError(s.metrics, "plate", errors.GetCode(err).String())
			var capErr *layout.CapacityError
			if stderrors.As(err, &capErr) {
				s.metrics.PlateCapacityRejectsTotal.WithLabelValues(kind).Inc()
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Preview runs the same pipeline but skips STL encoding; the caller gets the
// stats the generate path would have produced.
func (s *Service) Preview(ctx context.Context, req platetypes.GenerateRequest) (platetypes.Stats, error) {
	res, err := s.generateMesh(ctx, req)
	if err != nil {
		return platetypes.Stats{}, err
	}
	return res.Stats, nil
}

func (s *Service) generate(ctx context.Context, req platetypes.GenerateRequest) (*Result, error) {
	res, err := s.generateMesh(ctx, req)
	if err != nil {
		return nil, err
	}

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := export.EncodeSTL(&buf, res.Mesh, strings.TrimSuffix(res.Stats.Filename, ".stl")); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		promx.RecordExport(s.metrics, "stl", time.Since(encodeStart), int64(buf.Len()))
	}
	res.STL = buf.Bytes()
	return res, nil
}

func (s *Service) generateMesh(ctx context.Context, req platetypes.GenerateRequest) (*Result, error) {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeServiceUnavailable, "waiting for a generation slot")
	}

	if s.opts.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TotalTimeout)
		defer cancel()
	}

	kind, err := platetypes.ParseKind(req.PlateType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "plate_type")
	}

	if allBlank(req.Lines) {
		return nil, errors.New(errors.ErrCodeGridInputInvalid, "enter text in at least one line")
	}

	spec, err := geometry.Resolve(req.Settings)
	if err != nil {
		return nil, err
	}
	if err := s.checkLimits(spec); err != nil {
		return nil, err
	}

	grid, err := braille.ParseGrid(req.Lines, req.SourceLines)
	if err != nil {
		return nil, err
	}

	plan, err := layout.Plan(spec, grid, kind)
	if err != nil {
		var capErr *layout.CapacityError
		if stderrors.As(err, &capErr) {
			code := errors.ErrCodeGridCapacityExceeded
			if capErr.Row == 0 {
				code = errors.ErrCodeGridRowsExceeded
			}
			return nil, errors.Wrap(err, code, "plate layout")
		}
		return nil, err
	}

	s.log.Info("planned plate",
		logging.String("plate_type", string(kind)),
		logging.String("shape", string(spec.Shape)),
		logging.Int("rows", plan.Rows),
		logging.Int("cells", plan.Cells),
		logging.Int("placements", len(plan.Placements)))

	mapper := newMapper(spec)
	additive, subtractive, err := s.buildFeatures(ctx, spec, mapper, plan.Placements)
	if err != nil {
		return nil, err
	}

	base, err := substrate.Build(ctx, spec, s.assembler)
	if err != nil {
		return nil, err
	}

	asmStart := time.Now()
	asm, err := s.assembler.Assemble(ctx, base.Mesh, additive, subtractive)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		promx.RecordAssembly(s.metrics, asm.Engine, time.Since(asmStart),
			asm.Degraded || base.Degraded, asm.SkippedTools, asm.RepairedHoles, asm.Watertight)
	}

	stats := buildStats(spec, plan, &asm, base.Degraded, req.SourceLines, kind)
	return &Result{Mesh: asm.Mesh, Stats: stats}, nil
}

func (s *Service) checkLimits(spec *geometry.Spec) error {
	if s.opts.MaxGridColumns > 0 && spec.GridColumns > s.opts.MaxGridColumns {
		return errors.Newf(errors.ErrCodeGeometryParamRange,
			"grid_columns %d exceeds the service limit %d", spec.GridColumns, s.opts.MaxGridColumns)
	}
	if s.opts.MaxGridRows > 0 && spec.GridRows > s.opts.MaxGridRows {
		return errors.Newf(errors.ErrCodeGeometryParamRange,
			"grid_rows %d exceeds the service limit %d", spec.GridRows, s.opts.MaxGridRows)
	}
	return nil
}

// buildFeatures constructs every placement's mesh, fanning the work over a
// bounded worker pool.  Output order matches placement order regardless of
// which worker finished first, keeping exports deterministic.
func (s *Service) buildFeatures(ctx context.Context, spec *geometry.Spec, mapper frame.Mapper, placements []layout.Placement) (additive, subtractive []*mesh.Mesh, err error) {
	builder := feature.NewBuilder(spec, mapper, s.log)
	built := make([]*mesh.Mesh, len(placements))
	errs := make([]error, len(placements))

	workers := s.opts.FeatureWorkers
	if workers > len(placements) {
		workers = len(placements)
	}
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				built[i], errs[i] = builder.Build(placements[i])
			}
		}()
	}
	for i := range placements {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, nil, errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "feature building cancelled")
		}
	}
	close(jobs)
	wg.Wait()

	for i, buildErr := range errs {
		if buildErr != nil {
			return nil, nil, errors.Wrap(buildErr, errors.ErrCodeMeshBuildFailed,
				string(placements[i].Kind))
		}
	}
	for i, m := range built {
		if placements[i].Polarity == layout.Additive {
			additive = append(additive, m)
		} else {
			subtractive = append(subtractive, m)
		}
	}
	return additive, subtractive, nil
}

func newMapper(spec *geometry.Spec) frame.Mapper {
	if spec.Shape == platetypes.ShapeCylinder {
		return frame.Cylinder{
			Radius:     spec.CylinderDiameter / 2,
			SeamOffset: spec.SeamOffsetDeg * math.Pi / 180,
		}
	}
	return frame.Flat{Thickness: spec.CardThickness}
}

func buildStats(spec *geometry.Spec, plan *layout.Layout, asm *assembly.Result, substrateDegraded bool, sources []string, kind platetypes.Kind) platetypes.Stats {
	bosses, recesses := 0, 0
	for _, p := range plan.Placements {
		switch p.Kind {
		case layout.KindDotBoss:
			bosses++
		case layout.KindDotRecess:
			recesses++
		}
	}
	b := asm.Mesh.Bounds()
	return platetypes.Stats{
		PlateType:      kind,
		Shape:          spec.Shape,
		Rows:           plan.Rows,
		Cells:          plan.Cells,
		CapacityPerRow: spec.Capacity(),
		DotBosses:      bosses,
		DotRecesses:    recesses,
		Markers:        plan.Markers,
		Triangles:      asm.Mesh.Len(),
		Degraded:       asm.Degraded || substrateDegraded,
		Watertight:     asm.Watertight,
		Engine:         asm.Engine,
		SkippedTools:   asm.SkippedTools,
		Margins:        spec.Margins(),
		Bounds: platetypes.Bounds{
			Min: [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
			Max: [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
		},
		Filename: Filename(sources, kind),
	}
}

var (
	filenameStrip    = regexp.MustCompile(`[^\w\s-]`)
	filenameCollapse = regexp.MustCompile(`[-\s]+`)
)

// Filename derives the download filename from the first non-empty source
// line: punctuation stripped, runs of spaces and hyphens collapsed to an
// underscore, clipped to 20 characters, with a per-kind suffix.
func Filename(sources []string, kind platetypes.Kind) string {
	base := fallbackFilename
	for _, src := range sources {
		cleaned := filenameStrip.ReplaceAllString(src, "")
		cleaned = filenameCollapse.ReplaceAllString(cleaned, "_")
		cleaned = strings.Trim(cleaned, "_")
		if cleaned == "" {
			continue
		}
		if runes := []rune(cleaned); len(runes) > maxFilenameLen {
			cleaned = string(runes[:maxFilenameLen])
		}
		base = cleaned
		break
	}
	if kind == platetypes.KindCounter {
		return base + "_counter_plate.stl"
	}
	return base + "_braille.stl"
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		for _, r := range line {
			if r != ' ' && r != '⠀' && r != '\t' {
				return false
			}
		}
	}
	return true
}
