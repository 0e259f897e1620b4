package csg

import (
	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

// Engines resolves an ordered list of engine names into the boolean fallback
// ladder. Names match the config "assembly.engines" values.
func Engines(names []string) ([]assembly.Engine, error) {
	if len(names) == 0 {
		names = []string{"bsp", "scanfill"}
	}
	engines := make([]assembly.Engine, 0, len(names))
	for _, name := range names {
		switch name {
		case "bsp":
			engines = append(engines, NewBSP())
		case "scanfill":
			engines = append(engines, NewScanFill())
		default:
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown boolean engine %q", name)
		}
	}
	return engines, nil
}
