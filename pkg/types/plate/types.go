// Package plate defines the transport-level types shared by the HTTP API,
// the CLI, and the Go client SDK.  Domain packages have their own richer
// types; these are the stable wire shapes.
package plate

import (
	"fmt"
	"strings"
)

// Shape selects the substrate geometry.
type Shape string

const (
	ShapeCard     Shape = "card"
	ShapeCylinder Shape = "cylinder"
)

// Kind selects which of the two plates of an embossing pair is generated.
type Kind string

const (
	// KindPositive is the embossing plate: raised dot bosses, recessed markers.
	KindPositive Kind = "positive"
	// KindCounter is the counter plate: recessed dot dimples that the positive
	// plate presses the paper into, plus matching recessed markers.
	KindCounter Kind = "counter"
)

// RecessStyle selects how counter-plate dot recesses are shaped.
type RecessStyle string

const (
	// RecessHemisphere carves a hemispherical dimple into the top surface.
	RecessHemisphere RecessStyle = "hemisphere"
	// RecessBore drills a cylindrical hole through the plate (legacy behavior).
	RecessBore RecessStyle = "bore"
)

// ParseShape converts a wire string into a Shape.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ShapeCard):
		return ShapeCard, nil
	case string(ShapeCylinder):
		return ShapeCylinder, nil
	default:
		return "", fmt.Errorf("unsupported shape %q (want card or cylinder)", s)
	}
}

// ParseKind converts a wire string into a plate Kind.  The legacy API called
// the counter plate the "negative" plate; that spelling is still accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(KindPositive):
		return KindPositive, nil
	case string(KindCounter), "negative":
		return KindCounter, nil
	default:
		return "", fmt.Errorf("unsupported plate type %q (want positive or counter)", s)
	}
}

// ParseRecessStyle converts a wire string into a RecessStyle.
func ParseRecessStyle(s string) (RecessStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RecessHemisphere):
		return RecessHemisphere, nil
	case string(RecessBore), "drill":
		return RecessBore, nil
	default:
		return "", fmt.Errorf("unsupported recess style %q (want hemisphere or bore)", s)
	}
}

// GenerateRequest is the request body for plate generation and preview.
//
// Lines hold Unicode braille (one rune per cell, U+2800..U+28FF); translation
// from natural language happens upstream.  SourceLines optionally carry the
// pre-translation text, used only to derive the row-indicator glyph and the
// download filename.  Settings values may be JSON numbers or strings; absent
// or blank entries fall back to documented defaults.
type GenerateRequest struct {
	Lines       []string               `json:"lines"`
	SourceLines []string               `json:"source_lines,omitempty"`
	PlateType   string                 `json:"plate_type,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

// Margins reports the derived grid margins and whether they clear the
// minimum-safe threshold (half of one cell pitch).
type Margins struct {
	Left float64 `json:"left_mm"`
	Top  float64 `json:"top_mm"`
	Safe bool    `json:"safe"`
}

// Bounds is an axis-aligned bounding box in millimetres.
type Bounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// Stats summarizes a generated (or previewed) plate.
type Stats struct {
	PlateType      Kind    `json:"plate_type"`
	Shape          Shape   `json:"shape"`
	Rows           int     `json:"rows"`
	Cells          int     `json:"cells"`
	CapacityPerRow int     `json:"capacity_per_row"`
	DotBosses      int     `json:"dot_bosses"`
	DotRecesses    int     `json:"dot_recesses"`
	Markers        int     `json:"markers"`
	Triangles      int     `json:"triangles"`
	Degraded       bool    `json:"degraded"`
	Watertight     bool    `json:"watertight"`
	Engine         string  `json:"engine,omitempty"`
	SkippedTools   int     `json:"skipped_tools,omitempty"`
	Margins        Margins `json:"margins"`
	Bounds         Bounds  `json:"bounds"`
	Filename       string  `json:"filename"`
}
