// Package layout plans the physical placement of every plate feature.  It is
// pure math: given a resolved geometry.Spec and a braille.Grid it emits an
// ordered list of Placement values in 2-D plate coordinates (x across the
// plate, y up the plate), shape-agnostic — for a cylinder the x axis is arc
// length along the unrolled shell.  No meshes are built here, which keeps
// every layout rule testable with exact arithmetic.
package layout

import (
	"fmt"

	"github.com/brailleforge/brailleforge/internal/domain/braille"
	"github.com/brailleforge/brailleforge/internal/domain/geometry"
	"github.com/brailleforge/brailleforge/pkg/types/plate"
)

// Kind tags what feature a Placement stands for.
type Kind string

const (
	KindDotBoss        Kind = "dot-boss"
	KindDotRecess      Kind = "dot-recess"
	KindRowStartMarker Kind = "row-start-marker"
	KindRowEndMarker   Kind = "row-end-marker"
)

// Polarity says whether the feature is added to or carved out of the substrate.
type Polarity string

const (
	Additive    Polarity = "additive"
	Subtractive Polarity = "subtractive"
)

// Placement locates one feature on the plate.  X/Y are plate coordinates in
// millimetres; Row/Col/Slot are grid coordinates kept for diagnostics and
// deterministic ordering checks.  Indicator is non-zero only for row-end
// markers whose row has a source-text indicator rune; Mirrored is set on
// marker placements of a mirrored counter plate so the builder can flip the
// marker's pointing direction.
type Placement struct {
	Kind     Kind
	Polarity Polarity
	X, Y     float64
	Row      int
	Col      int // text-cell index; -1 for markers
	Slot     int // dot slot 0–5; -1 for markers
	Indicator rune
	Mirrored bool
}

// Layout is the planned feature set for one plate.
type Layout struct {
	PlateType  plate.Kind
	Placements []Placement

	// Summary counts, tallied during planning.
	Rows      int // populated rows
	Cells     int // non-blank cells
	DotCount  int
	Markers   int
}

// CapacityError reports a grid that exceeds the configured columns or rows.
// Content is never truncated to fit: losing cells silently would emboss a
// different text than the caller asked for, and the caller needs the excess
// count to reflow.
type CapacityError struct {
	Row      int // 1-based row number; 0 when the row count itself overflows
	Cells    int
	Capacity int
	Excess   int
}

func (e *CapacityError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("grid has %d rows but only %d are configured (%d over)",
			e.Cells, e.Capacity, e.Excess)
	}
	return fmt.Sprintf("row %d has %d cells but the grid fits %d per row (%d over)",
		e.Row, e.Cells, e.Capacity, e.Excess)
}

// Plan lays out every feature for one plate of the given kind.
//
// Enumeration order is fixed and deterministic: rows top to bottom; within a
// row the start marker, then text cells left to right with slots 0–5, then
// the end marker.  Downstream mesh indices, and therefore exported files, are
// reproducible run to run.
func Plan(spec *geometry.Spec, grid braille.Grid, kind plate.Kind) (*Layout, error) {
	rows := grid.Rows()
	if len(rows) > spec.GridRows {
		return nil, &CapacityError{
			Cells:    len(rows),
			Capacity: spec.GridRows,
			Excess:   len(rows) - spec.GridRows,
		}
	}
	capacity := spec.Capacity()
	for i, row := range rows {
		if len(row.Cells) > capacity {
			return nil, &CapacityError{
				Row:      i + 1,
				Cells:    len(row.Cells),
				Capacity: capacity,
				Excess:   len(row.Cells) - capacity,
			}
		}
	}

	mirrored := kind == plate.KindCounter && spec.MirrorCounter

	dotKind := KindDotBoss
	dotPolarity := Additive
	if kind == plate.KindCounter {
		dotKind = KindDotRecess
		dotPolarity = Subtractive
	}

	l := &Layout{PlateType: kind}
	for r, row := range rows {
		populated := !row.IsEmpty()
		if populated {
			l.Rows++
		}
		emitMarkers := populated || spec.MarkersOnEmptyRows
		y := rowBaseline(spec, r)

		if emitMarkers {
			l.Placements = append(l.Placements, Placement{
				Kind:     KindRowStartMarker,
				Polarity: Subtractive,
				X:        mirrorX(spec, spec.LeftMargin, mirrored),
				Y:        y,
				Row:      r,
				Col:      -1,
				Slot:     -1,
				Mirrored: mirrored,
			})
			l.Markers++
		}

		for c, cell := range row.Cells {
			if cell.IsEmpty() {
				continue
			}
			l.Cells++
			x := cellBaseline(spec, c)
			for slot := 0; slot < braille.SlotCount; slot++ {
				if !cell.Has(slot) {
					continue
				}
				dx, dy := slotOffset(spec, slot)
				l.Placements = append(l.Placements, Placement{
					Kind:     dotKind,
					Polarity: dotPolarity,
					X:        mirrorX(spec, x+dx, mirrored),
					Y:        y + dy,
					Row:      r,
					Col:      c,
					Slot:     slot,
				})
				l.DotCount++
			}
		}

		if emitMarkers {
			l.Placements = append(l.Placements, Placement{
				Kind:      KindRowEndMarker,
				Polarity:  Subtractive,
				X:         mirrorX(spec, endMarkerX(spec), mirrored),
				Y:         y,
				Row:       r,
				Col:       -1,
				Slot:      -1,
				Indicator: row.Indicator,
				Mirrored:  mirrored,
			})
			l.Markers++
		}
	}
	return l, nil
}

// rowBaseline is the y coordinate of row r's cell centre line, measured from
// the bottom of the plate.  Rows run top-down, hence the subtraction.
func rowBaseline(spec *geometry.Spec, r int) float64 {
	return spec.SubstrateHeight() - spec.TopMargin - float64(r)*spec.LineSpacing + spec.BrailleYAdjust
}

// cellBaseline is the x coordinate of text cell c's centre.  Column 0 of the
// physical grid is the row-start marker, so text cell c occupies grid column
// c+1.
func cellBaseline(spec *geometry.Spec, c int) float64 {
	return spec.LeftMargin + float64(c+1)*spec.CellSpacing + spec.BrailleXAdjust
}

// endMarkerX is the x coordinate of the last grid column, reserved for the
// row-end marker.  Marker anchors take no fine-tune adjust; they align to the
// grid proper so the two plates' markers coincide.
func endMarkerX(spec *geometry.Spec) float64 {
	return spec.LeftMargin + float64(spec.GridColumns-1)*spec.CellSpacing
}

// slotOffset maps a dot slot (0–5) to its offset from the cell baseline.
// Slots 0–2 are the left column top to bottom, 3–5 the right column.
func slotOffset(spec *geometry.Spec, slot int) (dx, dy float64) {
	col := slot / 3 // 0 = left, 1 = right
	row := slot % 3 // 0 = top, 2 = bottom
	if col == 0 {
		dx = -spec.DotSpacing / 2
	} else {
		dx = spec.DotSpacing / 2
	}
	switch row {
	case 0:
		dy = spec.DotSpacing
	case 1:
		dy = 0
	case 2:
		dy = -spec.DotSpacing
	}
	return dx, dy
}

// mirrorX reflects x about the plate's vertical centreline when the counter
// plate is mirrored.  The counter plate is physically flipped face-down onto
// the positive plate, so without the reflection its features would only
// register for left-right symmetric content.
func mirrorX(spec *geometry.Spec, x float64, mirrored bool) float64 {
	if !mirrored {
		return x
	}
	return spec.SubstrateWidth() - x
}
