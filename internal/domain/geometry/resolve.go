package geometry

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/brailleforge/brailleforge/pkg/errors"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

// Params is the raw parameter map as it arrives from the HTTP body or CLI
// flags.  Values may be numbers, strings, or bools; blank strings and absent
// keys mean "use the default".
type Params map[string]interface{}

// paramDef documents one numeric parameter: its default and its closed-open
// valid range.  The table below is the single source of truth for defaults;
// it is exposed read-only through DefaultParams for documentation endpoints.
type paramDef struct {
	def      float64
	min, max float64
	// minExclusive means the value must be strictly greater than min.
	minExclusive bool
	integer      bool
	assign       func(*Spec, float64)
}

var numericParams = map[string]paramDef{
	"card_width":     {def: 90, min: 0, max: 1000, minExclusive: true, assign: func(s *Spec, v float64) { s.CardWidth = v }},
	"card_height":    {def: 52, min: 0, max: 1000, minExclusive: true, assign: func(s *Spec, v float64) { s.CardHeight = v }},
	"card_thickness": {def: 2.0, min: 0, max: 50, minExclusive: true, assign: func(s *Spec, v float64) { s.CardThickness = v }},

	"grid_columns": {def: 13, min: 3, max: 200, integer: true, assign: func(s *Spec, v float64) { s.GridColumns = int(v) }},
	"grid_rows":    {def: 4, min: 1, max: 100, integer: true, assign: func(s *Spec, v float64) { s.GridRows = int(v) }},
	"cell_spacing": {def: 7.0, min: 0, max: 50, minExclusive: true, assign: func(s *Spec, v float64) { s.CellSpacing = v }},
	"line_spacing": {def: 12.0, min: 0, max: 100, minExclusive: true, assign: func(s *Spec, v float64) { s.LineSpacing = v }},
	"dot_spacing":  {def: 2.5, min: 0, max: 20, minExclusive: true, assign: func(s *Spec, v float64) { s.DotSpacing = v }},

	"dot_base_diameter": {def: 2.0, min: 0, max: 10, minExclusive: true, assign: func(s *Spec, v float64) { s.DotBaseDiameter = v }},
	"dot_hat_size":      {def: 0.8, min: 0, max: 10, minExclusive: true, assign: func(s *Spec, v float64) { s.DotHatSize = v }},
	"dot_height":        {def: 1.4, min: 0, max: 10, minExclusive: true, assign: func(s *Spec, v float64) { s.DotHeight = v }},
	"dot_segments":      {def: 16, min: 8, max: 128, integer: true, assign: func(s *Spec, v float64) { s.DotSegments = int(v) }},

	"braille_x_adjust": {def: 0.1, min: -10, max: 10, assign: func(s *Spec, v float64) { s.BrailleXAdjust = v }},
	"braille_y_adjust": {def: 0.4, min: -10, max: 10, assign: func(s *Spec, v float64) { s.BrailleYAdjust = v }},

	"negative_plate_offset":    {def: 0.4, min: 0, max: 5, assign: func(s *Spec, v float64) { s.NegativePlateOffset = v }},
	"emboss_dot_base_diameter": {def: 0, min: 0, max: 10, assign: func(s *Spec, v float64) { s.EmbossDotBaseDiameter = v }},
	"sphere_subdivisions":      {def: 2, min: 0, max: 4, integer: true, assign: func(s *Spec, v float64) { s.SphereSubdivisions = int(v) }},

	"marker_depth":          {def: 0.6, min: 0, max: 5, minExclusive: true, assign: func(s *Spec, v float64) { s.MarkerDepth = v }},
	"glyph_stroke_fraction": {def: 0.16, min: 0, max: 0.5, minExclusive: true, assign: func(s *Spec, v float64) { s.GlyphStrokeFraction = v }},

	"cylinder_diameter": {def: 30, min: 0, max: 1000, minExclusive: true, assign: func(s *Spec, v float64) { s.CylinderDiameter = v }},
	"cylinder_height":   {def: 52, min: 0, max: 1000, minExclusive: true, assign: func(s *Spec, v float64) { s.CylinderHeight = v }},
	"cylinder_segments": {def: 96, min: 16, max: 512, integer: true, assign: func(s *Spec, v float64) { s.CylinderSegments = int(v) }},
	"seam_offset_deg":   {def: 0, min: -360, max: 360, assign: func(s *Spec, v float64) { s.SeamOffsetDeg = v }},
	"cutout_radius":     {def: 0, min: 0, max: 500, assign: func(s *Spec, v float64) { s.CutoutRadius = v }},
}

var boolParams = map[string]struct {
	def    bool
	assign func(*Spec, bool)
}{
	"mirror_counter":        {def: true, assign: func(s *Spec, v bool) { s.MirrorCounter = v }},
	"markers_on_empty_rows": {def: false, assign: func(s *Spec, v bool) { s.MarkersOnEmptyRows = v }},
}

// enumParams are string-valued parameters with a closed set of values.
var enumParams = map[string]struct {
	def    string
	parse  func(string) (string, error)
	assign func(*Spec, string)
}{
	"shape": {
		def: string(plate.ShapeCard),
		parse: func(v string) (string, error) {
			sh, err := plate.ParseShape(v)
			return string(sh), err
		},
		assign: func(s *Spec, v string) { s.Shape = plate.Shape(v) },
	},
	"counter_recess_style": {
		def: string(plate.RecessHemisphere),
		parse: func(v string) (string, error) {
			st, err := plate.ParseRecessStyle(v)
			return string(st), err
		},
		assign: func(s *Spec, v string) { s.RecessStyle = plate.RecessStyle(v) },
	},
}

// DefaultParams returns the documented default for every known parameter.
// Useful for the CLI's --help output and the API's settings endpoint.
func DefaultParams() map[string]interface{} {
	out := make(map[string]interface{}, len(numericParams)+len(boolParams)+len(enumParams))
	for k, d := range numericParams {
		if d.integer {
			out[k] = int(d.def)
		} else {
			out[k] = d.def
		}
	}
	for k, d := range boolParams {
		out[k] = d.def
	}
	for k, d := range enumParams {
		out[k] = d.def
	}
	return out
}

// KnownParams returns the sorted list of recognised parameter names.
func KnownParams() []string {
	names := make([]string, 0, len(numericParams)+len(boolParams)+len(enumParams))
	for k := range numericParams {
		names = append(names, k)
	}
	for k := range boolParams {
		names = append(names, k)
	}
	for k := range enumParams {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Default resolves a Spec entirely from the documented defaults.
func Default() *Spec {
	s, err := Resolve(nil)
	if err != nil {
		// The default table is validated by tests; a failure here is a
		// programming error in this package.
		panic(fmt.Sprintf("geometry: default params do not resolve: %v", err))
	}
	return s
}

// Resolve validates params against the documented table and returns a fully
// derived Spec.  Absent and blank values fall back to their defaults; present
// values must parse and fall inside their valid range.  Unknown keys are
// rejected so that a typo in a parameter name surfaces as an error rather
// than a silently default-shaped plate.
func Resolve(params Params) (*Spec, error) {
	s := &Spec{}

	for key, def := range numericParams {
		raw, present := lookup(params, key)
		v := def.def
		if present {
			parsed, err := parseNumber(key, raw)
			if err != nil {
				return nil, err
			}
			v = parsed
		}
		if err := checkRange(key, v, def); err != nil {
			return nil, err
		}
		def.assign(s, v)
	}

	for key, def := range boolParams {
		raw, present := lookup(params, key)
		v := def.def
		if present {
			parsed, err := parseBool(key, raw)
			if err != nil {
				return nil, err
			}
			v = parsed
		}
		def.assign(s, v)
	}

	for key, def := range enumParams {
		raw, present := lookup(params, key)
		v := def.def
		if present {
			str, ok := raw.(string)
			if !ok {
				return nil, errors.Newf(errors.ErrCodeGeometryParamInvalid,
					"parameter %q must be a string, got %T", key, raw)
			}
			parsed, err := def.parse(str)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeGeometryParamInvalid,
					fmt.Sprintf("parameter %q", key))
			}
			v = parsed
		}
		def.assign(s, v)
	}

	for key := range params {
		if _, ok := numericParams[key]; ok {
			continue
		}
		if _, ok := boolParams[key]; ok {
			continue
		}
		if _, ok := enumParams[key]; ok {
			continue
		}
		return nil, errors.Newf(errors.ErrCodeGeometryParamUnknown,
			"unknown parameter %q", key)
	}

	// The counter recess tracks the emboss dot unless overridden.
	if s.EmbossDotBaseDiameter == 0 {
		s.EmbossDotBaseDiameter = s.DotBaseDiameter
	}

	if s.DotHatSize > s.DotBaseDiameter {
		return nil, errors.Newf(errors.ErrCodeGeometryParamRange,
			"dot_hat_size %.2fmm must not exceed dot_base_diameter %.2fmm",
			s.DotHatSize, s.DotBaseDiameter)
	}

	if err := s.derive(); err != nil {
		return nil, err
	}
	return s, nil
}

// lookup reports whether the map carries a usable value for key.  nil values
// and blank strings count as absent, mirroring how HTML forms submit empty
// fields.
func lookup(params Params, key string) (interface{}, bool) {
	if params == nil {
		return nil, false
	}
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, false
	}
	if s, isStr := raw.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return raw, true
}

func parseNumber(key string, raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.Newf(errors.ErrCodeGeometryParamInvalid,
				"parameter %q: %q is not a number", key, v)
		}
		return f, nil
	default:
		return 0, errors.Newf(errors.ErrCodeGeometryParamInvalid,
			"parameter %q has unsupported type %T", key, raw)
	}
}

func parseBool(key string, raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, errors.Newf(errors.ErrCodeGeometryParamInvalid,
				"parameter %q: %q is not a boolean", key, v)
		}
		return b, nil
	default:
		return false, errors.Newf(errors.ErrCodeGeometryParamInvalid,
			"parameter %q has unsupported type %T", key, raw)
	}
}

func checkRange(key string, v float64, def paramDef) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Newf(errors.ErrCodeGeometryParamInvalid,
			"parameter %q must be finite", key)
	}
	if def.integer && v != math.Trunc(v) {
		return errors.Newf(errors.ErrCodeGeometryParamInvalid,
			"parameter %q must be an integer, got %v", key, v)
	}
	below := v < def.min || (def.minExclusive && v == def.min)
	if below || v > def.max {
		lo := "["
		if def.minExclusive {
			lo = "("
		}
		return errors.Newf(errors.ErrCodeGeometryParamRange,
			"parameter %q = %v outside valid range %s%v, %v]", key, v, lo, def.min, def.max)
	}
	return nil
}
