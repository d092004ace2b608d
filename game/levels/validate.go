package levels

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// MinPlayableDimension is the smallest row and column count a saved level may have
const MinPlayableDimension = 3

// ValidatePlayable applies the rules a level must meet before it can be
// saved: at least 3x3, one or more crates, and as many crates as
// destinations. The parser already guarantees exactly one player. Every
// violated rule is reported.
func ValidatePlayable(g *engine.Grid) error {
	var errs []error

	if g.Rows() < MinPlayableDimension || g.Cols() < MinPlayableDimension {
		errs = append(errs, fmt.Errorf("%w: map must be at least %dx%d, got %dx%d",
			ErrInvalidLevel, MinPlayableDimension, MinPlayableDimension, g.Rows(), g.Cols()))
	}

	crates := len(g.Crates())
	dests := len(g.Destinations())
	if crates == 0 {
		errs = append(errs, fmt.Errorf("%w: map must contain at least one crate", ErrInvalidLevel))
	}
	if crates != dests {
		errs = append(errs, fmt.Errorf("%w: %d crates but %d destinations", ErrInvalidLevel, crates, dests))
	}

	return errors.Join(errs...)
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages holds a summary of the level; otherwise it
// lists the problems that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// ValidateFile parses a level file and applies ValidatePlayable
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	grid, err := engine.LoadMapFile(path)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}

	if err := ValidatePlayable(grid); err != nil {
		result.Valid = false
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				result.Messages = append(result.Messages, e.Error())
			}
		} else {
			result.Messages = append(result.Messages, err.Error())
		}
		return result
	}

	result.Messages = append(result.Messages,
		fmt.Sprintf("%dx%d", grid.Rows(), grid.Cols()),
		fmt.Sprintf("%d crates (%d placed)", len(grid.Crates()), engine.CratesPlaced(grid)),
	)
	if engine.IsDeadlocked(grid) {
		result.Messages = append(result.Messages, "warning: deadlocked at start")
	}
	return result
}
