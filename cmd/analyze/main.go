// Command analyze prints quick, human-readable heuristics about the level
// files in a levels directory. It summarizes dimensions, crate and
// destination counts, crates already placed, and flags levels that start
// deadlocked, are unbalanced or wall off part of the puzzle.
//
// Usage:
//
//	analyze [levels-dir]
//
// The directory defaults to $LEVELS_DIR, then "levels".
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/levels"
)

// LevelStats summarizes one level
type LevelStats struct {
	ID           string
	Name         string
	Rows, Cols   int
	Walls        int
	Floor        int
	Crates       int
	Destinations int
	Placed       int
	Reachable    int

	Balanced          bool
	DeadlockedAtStart bool
	ValidationErr     error

	// Crates and destinations the player can never reach
	Unreachable []engine.Position

	// Sum over unplaced crates of the distance to the nearest open destination
	DistanceEstimate int
}

func main() {
	dir := os.Getenv("LEVELS_DIR")
	if dir == "" {
		dir = "levels"
	}
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := run(dir, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, w io.Writer) error {
	manager, err := levels.NewManager(dir, nil)
	if err != nil {
		return err
	}

	ids, err := manager.Order()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(w, "No levels found in %s\n", dir)
		return nil
	}

	for _, id := range ids {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)

		grid, err := manager.Load(id)
		if err != nil {
			fmt.Fprintf(w, "Error loading level: %v\n", err)
			continue
		}

		name := id
		if info, err := manager.Info(id); err == nil && info.Name != "" {
			name = info.Name
		}

		printStats(w, analyzeLevel(id, name, grid))
	}
	return nil
}

func analyzeLevel(id, name string, g *engine.Grid) LevelStats {
	crates := g.Crates()
	dests := g.Destinations()

	stats := LevelStats{
		ID:                id,
		Name:              name,
		Rows:              g.Rows(),
		Cols:              g.Cols(),
		Walls:             engine.CountCellKind(g, engine.Wall),
		Floor:             engine.CountCellKind(g, engine.Tile) + engine.CountCellKind(g, engine.DestTile),
		Crates:            len(crates),
		Destinations:      len(dests),
		Placed:            engine.CratesPlaced(g),
		Balanced:          len(crates) == len(dests),
		DeadlockedAtStart: engine.IsDeadlocked(g),
		ValidationErr:     levels.ValidatePlayable(g),
	}

	region := reachable(g)
	stats.Reachable = len(region)
	for _, p := range append(crates, dests...) {
		if !region[p] {
			stats.Unreachable = append(stats.Unreachable, p)
		}
	}

	for _, c := range crates {
		if cell, _ := g.CellAt(c); cell.Kind == engine.DestTile {
			continue
		}
		if _, dist, ok := engine.NearestOpenDestination(g, c); ok {
			stats.DistanceEstimate += dist
		}
	}

	return stats
}

// reachable returns the occupiable cells connected to the player, treating
// crates as passable
func reachable(g *engine.Grid) map[engine.Position]bool {
	start := g.Player()
	seen := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range engine.Directions {
			next := p.Add(d)
			if seen[next] {
				continue
			}
			if cell, ok := g.CellAt(next); ok && cell.Occupiable() {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func printStats(w io.Writer, s LevelStats) {
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d walls, %d floor)\n", s.Rows, s.Cols, s.Walls, s.Floor)
	fmt.Fprintf(w, "Crates: %d, Destinations: %d, Placed: %d\n", s.Crates, s.Destinations, s.Placed)
	fmt.Fprintf(w, "Reachable cells: %d\n", s.Reachable)
	fmt.Fprintf(w, "Distance estimate: %d\n", s.DistanceEstimate)

	if s.Balanced {
		fmt.Fprintf(w, "✅ Crates and destinations are balanced\n")
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: %d crates but %d destinations\n", s.Crates, s.Destinations)
	}

	if s.DeadlockedAtStart {
		fmt.Fprintf(w, "⚠️  CRITICAL: level is deadlocked at start\n")
	}

	if len(s.Unreachable) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d crates or destinations are walled off from the player\n", len(s.Unreachable))
		for i, p := range s.Unreachable {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(s.Unreachable)-5)
				break
			}
			fmt.Fprintf(w, "   Unreachable: (%d, %d)\n", p.Row, p.Col)
		}
	}

	if s.ValidationErr != nil {
		fmt.Fprintf(w, "❌ Not playable: %v\n", s.ValidationErr)
	} else {
		fmt.Fprintf(w, "✅ Playable\n")
	}
}
