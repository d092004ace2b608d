package engine

// CountCellKind counts the cells of the given kind
func CountCellKind(g *Grid, kind CellKind) int {
	count := 0
	for _, row := range g.cells {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// CratesPlaced counts the crates currently standing on a destination
func CratesPlaced(g *Grid) int {
	placed := 0
	for _, crate := range g.crates {
		if g.cells[crate.Pos.Row][crate.Pos.Col].Kind == DestTile {
			placed++
		}
	}
	return placed
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// NearestOpenDestination returns the empty destination closest to from.
// ok is false when every destination holds a crate.
func NearestOpenDestination(g *Grid, from Position) (pos Position, distance int, ok bool) {
	distance = -1
	for _, d := range g.destinations {
		if g.cells[d.Row][d.Col].HasCrate() {
			continue
		}
		dist := ManhattanDistance(from, d)
		if distance == -1 || dist < distance {
			pos, distance, ok = d, dist, true
		}
	}
	return pos, distance, ok
}
