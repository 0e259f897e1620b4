// Package braille defines the dot-pattern value types consumed by the layout
// engine.  A braille cell is a 2×3 dot template; a DotPattern selects a subset
// of its six slots.  Translation from natural language to braille happens
// upstream — this package only decodes already-translated Unicode braille
// cells (U+2800..U+28FF) into bit masks.
package braille

import (
	"fmt"
	"strings"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

// DotPattern is a 6-bit mask over the slots of one braille cell.  Bit i set
// means the dot at template slot i is present.  Slots 0–2 are the left column
// top to bottom, slots 3–5 the right column top to bottom — the same order the
// Unicode braille block uses for dots 1–6, so a braille codepoint's low six
// bits are directly a DotPattern.
type DotPattern uint8

// SlotCount is the number of dot slots in a six-dot braille cell.
const SlotCount = 6

// slotMask covers the six low bits that carry a valid six-dot pattern.
const slotMask = 0x3F

// Empty is the blank cell (no dots raised).
const Empty DotPattern = 0

// Has reports whether the dot at the given slot (0–5) is present.
func (p DotPattern) Has(slot int) bool {
	if slot < 0 || slot >= SlotCount {
		return false
	}
	return p&(1<<uint(slot)) != 0
}

// Count returns the number of raised dots in the cell.
func (p DotPattern) Count() int {
	n := 0
	for i := 0; i < SlotCount; i++ {
		if p.Has(i) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the cell has no raised dots.
func (p DotPattern) IsEmpty() bool { return p&slotMask == 0 }

// Rune returns the Unicode braille character for the pattern.
func (p DotPattern) Rune() rune { return brailleBase + rune(p&slotMask) }

// String renders the pattern as its Unicode braille character, which keeps
// logs and test failures legible.
func (p DotPattern) String() string { return string(p.Rune()) }

// Unicode braille block boundaries.
const (
	brailleBase rune = 0x2800
	brailleLast rune = 0x28FF
)

// FromRune decodes one Unicode braille character into a DotPattern.  Eight-dot
// cells (bits 6 and 7 set) are rejected: the physical template has six slots
// and silently dropping dots would emboss the wrong character.
func FromRune(r rune) (DotPattern, error) {
	if r < brailleBase || r > brailleLast {
		return 0, errors.Newf(errors.ErrCodeGridInputInvalid,
			"character %q is not a Unicode braille cell", r)
	}
	bits := r - brailleBase
	if bits&^slotMask != 0 {
		return 0, errors.Newf(errors.ErrCodeGridInputInvalid,
			"braille cell %q uses dots 7/8; only six-dot braille is supported", r)
	}
	return DotPattern(bits), nil
}

// FromSlots builds a pattern from a six-element presence array, slot order as
// documented on DotPattern.  Convenient for table-driven tests.
func FromSlots(slots [SlotCount]bool) DotPattern {
	var p DotPattern
	for i, on := range slots {
		if on {
			p |= 1 << uint(i)
		}
	}
	return p
}

// DecodeLine decodes a string of Unicode braille cells into one pattern per
// rune.  Plain spaces are tolerated as blank cells (upstream translators emit
// them between words); any other non-braille rune fails the whole line — a
// line that reaches this layer untranslated is a caller bug, not content.
func DecodeLine(line string) ([]DotPattern, error) {
	runes := []rune(line)
	out := make([]DotPattern, 0, len(runes))
	for i, r := range runes {
		if r == ' ' {
			out = append(out, Empty)
			continue
		}
		p, err := FromRune(r)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeGridInputInvalid,
				"cell %d: %q is not a braille character", i+1, r)
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodeLine is the inverse of DecodeLine, used by preview output and tests.
func EncodeLine(cells []DotPattern) string {
	var b strings.Builder
	b.Grow(len(cells) * 3)
	for _, c := range cells {
		b.WriteRune(c.Rune())
	}
	return b.String()
}

// Row is one line of the grid: its cells in visual left-to-right order plus an
// optional indicator rune carried over from the pre-translation source text.
// The indicator is the only trace of natural language the core ever sees; it
// selects the row-end marker glyph.
type Row struct {
	Cells     []DotPattern
	Indicator rune // 0 when the source line is unknown or empty
}

// IsEmpty reports whether every cell in the row is blank.
func (r Row) IsEmpty() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Grid is the full plate content: rows in visual top-to-bottom order.
// It is constructed once from translated input and never mutated.
type Grid struct {
	rows []Row
}

// NewGrid wraps already-decoded rows into a Grid.
func NewGrid(rows []Row) Grid {
	return Grid{rows: rows}
}

// ParseGrid decodes one Unicode braille string per grid row.  sources may be
// nil or shorter than lines; when present, the first rune of sources[i] becomes
// row i's indicator.  Trailing missing lines are legal and mean empty rows —
// capacity against the configured row count is the layout engine's concern.
func ParseGrid(lines []string, sources []string) (Grid, error) {
	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		cells, err := DecodeLine(strings.TrimRight(line, " "))
		if err != nil {
			return Grid{}, errors.Wrap(err, errors.ErrCodeGridInputInvalid,
				fmt.Sprintf("line %d", i+1))
		}
		row := Row{Cells: cells}
		if i < len(sources) {
			row.Indicator = firstRune(sources[i])
		}
		rows = append(rows, row)
	}
	return Grid{rows: rows}, nil
}

func firstRune(s string) rune {
	for _, r := range strings.TrimSpace(s) {
		return r
	}
	return 0
}

// Rows returns the grid's rows. The slice must not be mutated.
func (g Grid) Rows() []Row { return g.rows }

// RowCount returns the number of rows the grid carries (not the configured
// grid_rows — short input means trailing empty rows).
func (g Grid) RowCount() int { return len(g.rows) }

// CellCount returns the total number of non-blank cells across all rows.
func (g Grid) CellCount() int {
	n := 0
	for _, row := range g.rows {
		for _, c := range row.Cells {
			if !c.IsEmpty() {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether no row carries any raised dot.
func (g Grid) IsEmpty() bool {
	for _, row := range g.rows {
		if !row.IsEmpty() {
			return false
		}
	}
	return true
}
