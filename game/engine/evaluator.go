package engine

// IsWin reports whether every destination holds a crate. A grid without
// destinations is trivially won.
func IsWin(g *Grid) bool {
	for _, p := range g.destinations {
		if !g.cells[p.Row][p.Col].HasCrate() {
			return false
		}
	}
	return true
}

// IsDeadlocked applies the per-crate heuristic: a crate counts as movable
// when both horizontal neighbours or both vertical neighbours are
// occupiable and crate-free. The grid is deadlocked when no crate is
// movable, which includes the zero-crate case. Crates already on a
// destination are not exempt.
func IsDeadlocked(g *Grid) bool {
	for _, crate := range g.crates {
		if crateMovable(g, crate.Pos) {
			return false
		}
	}
	return true
}

func crateMovable(g *Grid, p Position) bool {
	free := func(d Direction) bool {
		return g.IsOccupiableAndNotOccupiedByCrate(p.Add(d))
	}
	canMoveLR := free(Left) && free(Right)
	canMoveUD := free(Up) && free(Down)
	return canMoveLR || canMoveUD
}
