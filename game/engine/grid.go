package engine

import (
	"fmt"
	"strings"
)

// Grid is the cell array of a loaded map plus indices over it. Only the
// placement of occupants changes after construction.
type Grid struct {
	rows  int
	cols  int
	cells [][]Cell

	destinations []Position
	crates       []*Occupant
	player       *Occupant
}

func newGrid(rows, cols int) *Grid {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// CellAt returns a copy of the cell at p. ok is false when p is out of bounds.
func (g *Grid) CellAt(p Position) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[p.Row][p.Col], true
}

// Player returns the current player position
func (g *Grid) Player() Position {
	return g.player.Pos
}

// Crates returns the positions of all crates in load order
func (g *Grid) Crates() []Position {
	out := make([]Position, len(g.crates))
	for i, c := range g.crates {
		out[i] = c.Pos
	}
	return out
}

// Destinations returns the positions of all destination cells in row-major order
func (g *Grid) Destinations() []Position {
	out := make([]Position, len(g.destinations))
	copy(out, g.destinations)
	return out
}

// Lines returns the grid as one symbol string per row
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	for r, row := range g.cells {
		var b strings.Builder
		b.Grow(g.cols)
		for _, cell := range row {
			b.WriteRune(cell.Symbol())
		}
		lines[r] = b.String()
	}
	return lines
}

// String renders the grid rows separated by newlines
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// EncodeMap renders g in the map text format accepted by LoadMap
func EncodeMap(g *Grid) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", g.rows, g.cols)
	for _, line := range g.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// place binds o to the occupiable cell at p
func (g *Grid) place(o *Occupant, p Position) {
	g.cells[p.Row][p.Col].Occupant = o
	o.Pos = p
}

// relocate moves o from its current cell to dst
func (g *Grid) relocate(o *Occupant, dst Position) {
	g.cells[o.Pos.Row][o.Pos.Col].Occupant = nil
	g.place(o, dst)
}
