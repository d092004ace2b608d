package engine

// CellKind identifies the fixed terrain of a grid cell
type CellKind int

const (
	Wall CellKind = iota
	Tile
	DestTile
)

// String returns the lowercase name of the cell kind
func (k CellKind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Tile:
		return "tile"
	case DestTile:
		return "destination"
	default:
		return "unknown"
	}
}

// OccupantKind identifies what stands on an occupiable cell
type OccupantKind int

const (
	Player OccupantKind = iota + 1
	Crate
)

// String returns the lowercase name of the occupant kind
func (k OccupantKind) String() string {
	switch k {
	case Player:
		return "player"
	case Crate:
		return "crate"
	default:
		return "unknown"
	}
}

// Map symbols
const (
	SymbolTile         = '.'
	SymbolWall         = '#'
	SymbolPlayerOnTile = '@'
	SymbolPlayerOnDest = '&'
	SymbolCrateOnTile  = 'c'
	SymbolCrateOnDest  = '$'
	SymbolDest         = 'C'
)

// Position is a (row, column) grid coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns p shifted by the direction's unit offset
func (p Position) Add(d Direction) Position {
	dr, dc := d.Offset()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Occupant is the player or a crate. Pos always equals the coordinate of
// the cell holding it.
type Occupant struct {
	Kind OccupantKind
	Pos  Position
}

// Cell is a single grid cell. Occupant is nil when the cell is empty and
// always nil for walls.
type Cell struct {
	Kind     CellKind
	Occupant *Occupant
}

// Occupiable reports whether the cell can hold an occupant
func (c Cell) Occupiable() bool {
	switch c.Kind {
	case Tile, DestTile:
		return true
	default:
		return false
	}
}

// HasCrate reports whether a crate currently stands on the cell
func (c Cell) HasCrate() bool {
	return c.Occupant != nil && c.Occupant.Kind == Crate
}

// HasPlayer reports whether the player currently stands on the cell
func (c Cell) HasPlayer() bool {
	return c.Occupant != nil && c.Occupant.Kind == Player
}

// Symbol returns the map symbol describing the cell and its occupant
func (c Cell) Symbol() rune {
	switch c.Kind {
	case Wall:
		return SymbolWall
	case DestTile:
		switch {
		case c.HasPlayer():
			return SymbolPlayerOnDest
		case c.HasCrate():
			return SymbolCrateOnDest
		}
		return SymbolDest
	default:
		switch {
		case c.HasPlayer():
			return SymbolPlayerOnTile
		case c.HasCrate():
			return SymbolCrateOnTile
		}
		return SymbolTile
	}
}

// Direction is one of the four movement directions
type Direction int

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

// Directions lists all valid directions in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Offset returns the row and column delta of a unit step. Invalid
// directions return (0, 0).
func (d Direction) Offset() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	default:
		return 0, 0
	}
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// String returns the lowercase direction name
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "invalid"
	}
}

// Status summarizes a level for callers that poll after each move
type Status string

const (
	StatusPlaying    Status = "playing"
	StatusWon        Status = "won"
	StatusDeadlocked Status = "deadlocked"
)
