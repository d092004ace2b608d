package engine

import (
	"errors"
	"io"
)

// Level owns one Grid and the push counter shown to the player. The
// counter tracks every successful move, with or without a crate push.
type Level struct {
	grid   *Grid
	pushes int
}

// Step describes the outcome of a single move
type Step struct {
	Moved  bool      `json:"moved"`
	Pushed bool      `json:"pushed"`
	From   Position  `json:"from"`
	To     Position  `json:"to"`
	Dir    Direction `json:"-"`
}

// NewLevel wraps g with a zeroed push counter
func NewLevel(g *Grid) *Level {
	return &Level{grid: g}
}

// RestoreLevel wraps g with a previously recorded push counter
func RestoreLevel(g *Grid, pushes int) (*Level, error) {
	if g == nil {
		return nil, errors.New("grid cannot be nil")
	}
	if pushes < 0 {
		return nil, errors.New("push count cannot be negative")
	}
	return &Level{grid: g, pushes: pushes}, nil
}

// LoadLevel parses map text from r into a fresh Level
func LoadLevel(r io.Reader) (*Level, error) {
	g, err := LoadMap(r)
	if err != nil {
		return nil, err
	}
	return NewLevel(g), nil
}

// MakeMove moves the player and increments the counter iff the move succeeded
func (l *Level) MakeMove(d Direction) bool {
	return l.Step(d).Moved
}

// Step performs MakeMove and reports whether a crate was pushed along the way
func (l *Level) Step(d Direction) Step {
	g := l.mustGrid()
	step := Step{From: g.Player(), Dir: d}

	pushed := false
	if d.Valid() {
		next, _ := g.CellAt(step.From.Add(d))
		pushed = next.HasCrate()
	}

	step.Moved = g.MovePlayer(d)
	step.To = g.Player()
	if step.Moved {
		l.pushes++
		step.Pushed = pushed
	}
	return step
}

// Grid returns the level's grid for read access
func (l *Level) Grid() *Grid {
	return l.mustGrid()
}

// PushCount returns the number of successful moves since load
func (l *Level) PushCount() int {
	return l.pushes
}

// IsWin reports whether every destination holds a crate
func (l *Level) IsWin() bool {
	return IsWin(l.mustGrid())
}

// IsDeadlocked reports whether no crate can move under the deadlock heuristic
func (l *Level) IsDeadlocked() bool {
	return IsDeadlocked(l.mustGrid())
}

// Status folds the two evaluator checks into one value. A win takes
// precedence over a deadlock.
func (l *Level) Status() Status {
	switch {
	case l.IsWin():
		return StatusWon
	case l.IsDeadlocked():
		return StatusDeadlocked
	default:
		return StatusPlaying
	}
}

func (l *Level) mustGrid() *Grid {
	if l == nil || l.grid == nil {
		panic("engine: level used before a map was loaded")
	}
	return l.grid
}
