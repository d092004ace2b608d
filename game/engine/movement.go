package engine

// IsOccupiableAndNotOccupiedByCrate reports whether a crate could be pushed
// onto p. It is false out of bounds and on walls. A player standing on p
// does not block it.
func (g *Grid) IsOccupiableAndNotOccupiedByCrate(p Position) bool {
	cell, ok := g.CellAt(p)
	if !ok {
		return false
	}
	return cell.Occupiable() && !cell.HasCrate()
}

// MovePlayer attempts to move the player one cell in direction d, pushing
// at most one crate. It returns true iff the player's position changed.
func (g *Grid) MovePlayer(d Direction) bool {
	if !d.Valid() {
		return false
	}

	dst := g.player.Pos.Add(d)
	cell, ok := g.CellAt(dst)
	if !ok || !cell.Occupiable() {
		return false
	}

	if cell.HasCrate() && !g.moveCrate(cell.Occupant, d) {
		return false
	}

	g.relocate(g.player, dst)
	return true
}

// moveCrate pushes crate one cell in direction d. A second crate behind it
// blocks the push.
func (g *Grid) moveCrate(crate *Occupant, d Direction) bool {
	dst := crate.Pos.Add(d)
	if !g.IsOccupiableAndNotOccupiedByCrate(dst) {
		return false
	}
	g.relocate(crate, dst)
	return true
}

// CanMove reports whether MovePlayer(d) would succeed, without mutating the grid
func (g *Grid) CanMove(d Direction) bool {
	if !d.Valid() {
		return false
	}
	dst := g.player.Pos.Add(d)
	cell, ok := g.CellAt(dst)
	if !ok || !cell.Occupiable() {
		return false
	}
	if cell.HasCrate() {
		return g.IsOccupiableAndNotOccupiedByCrate(dst.Add(d))
	}
	return true
}
