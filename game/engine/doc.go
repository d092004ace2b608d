// Package engine implements the crate-pushing puzzle core.
//
// A map is parsed from text into a Grid of cells (walls, tiles and
// destination tiles) holding at most one occupant each (the player or a
// crate). The player moves one cell at a time and pushes at most one crate.
// A Level wraps a Grid with a move counter and exposes the win and
// deadlock checks.
//
// Map format:
//
//	3 6
//	######
//	#@cC.#
//	######
//
// The header gives the row and column count. Symbols: '.' tile, '#' wall,
// '@' player, '&' player on destination, 'c' crate, '$' crate on
// destination, 'C' destination.
//
// Usage:
//
//	level, err := engine.LoadLevel(strings.NewReader(text))
//	if err != nil {
//		if errors.Is(err, engine.ErrInvalidMap) {
//			// bad symbol, player count or shape
//		}
//		return err
//	}
//
//	level.MakeMove(engine.Right)
//	if level.IsWin() {
//		fmt.Println("solved in", level.PushCount(), "moves")
//	}
//
// The package does no synchronization; callers that share a Level across
// goroutines must serialize access.
package engine
