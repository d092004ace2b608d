package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovePlayer(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		dir        Direction
		moved      bool
		wantPlayer Position
		wantCrates []Position
	}{
		{
			name:       "step onto tile",
			text:       "1 4\n#@.#\n",
			dir:        Right,
			moved:      true,
			wantPlayer: Position{Row: 0, Col: 2},
			wantCrates: []Position{},
		},
		{
			name:       "blocked by wall",
			text:       "1 4\n#@.#\n",
			dir:        Left,
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 1},
			wantCrates: []Position{},
		},
		{
			name:       "out of bounds",
			text:       "1 2\n@.\n",
			dir:        Left,
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 0},
			wantCrates: []Position{},
		},
		{
			name:       "push crate",
			text:       "1 5\n#@c.#\n",
			dir:        Right,
			moved:      true,
			wantPlayer: Position{Row: 0, Col: 2},
			wantCrates: []Position{{Row: 0, Col: 3}},
		},
		{
			name:       "push blocked by wall",
			text:       "1 4\n#@c#\n",
			dir:        Right,
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 1},
			wantCrates: []Position{{Row: 0, Col: 2}},
		},
		{
			name:       "push blocked by second crate",
			text:       "1 6\n#@cc.#\n",
			dir:        Right,
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 1},
			wantCrates: []Position{{Row: 0, Col: 2}, {Row: 0, Col: 3}},
		},
		{
			name:       "push off the edge",
			text:       "1 3\n.@c\n",
			dir:        Right,
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 1},
			wantCrates: []Position{{Row: 0, Col: 2}},
		},
		{
			name:       "push vertically onto destination",
			text:       "4 3\n#@#\n#c#\n#C#\n###\n",
			dir:        Down,
			moved:      true,
			wantPlayer: Position{Row: 1, Col: 1},
			wantCrates: []Position{{Row: 2, Col: 1}},
		},
		{
			name:       "invalid direction",
			text:       "1 3\n.@.\n",
			dir:        Direction(0),
			moved:      false,
			wantPlayer: Position{Row: 0, Col: 1},
			wantCrates: []Position{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustLoad(t, tt.text)
			before := g.String()

			assert.Equal(t, tt.moved, g.CanMove(tt.dir))
			assert.Equal(t, tt.moved, g.MovePlayer(tt.dir))
			assert.Equal(t, tt.wantPlayer, g.Player())
			assert.Equal(t, tt.wantCrates, g.Crates())
			if !tt.moved {
				assert.Equal(t, before, g.String())
			}
			assertConsistent(t, g)
		})
	}
}

func TestMovePlayerKeepsDestinationKind(t *testing.T) {
	g := mustLoad(t, "1 5\n#&$C#\n")

	require.True(t, g.MovePlayer(Right))
	assert.Equal(t, "#C&$#", g.String())
	assert.Len(t, g.Destinations(), 3)
	assertConsistent(t, g)
}

func TestIsOccupiableAndNotOccupiedByCrate(t *testing.T) {
	g := mustLoad(t, "1 5\n#@cC#\n")

	assert.False(t, g.IsOccupiableAndNotOccupiedByCrate(Position{Row: 0, Col: 0}), "wall")
	assert.True(t, g.IsOccupiableAndNotOccupiedByCrate(Position{Row: 0, Col: 1}), "player does not block")
	assert.False(t, g.IsOccupiableAndNotOccupiedByCrate(Position{Row: 0, Col: 2}), "crate")
	assert.True(t, g.IsOccupiableAndNotOccupiedByCrate(Position{Row: 0, Col: 3}), "destination")
	assert.False(t, g.IsOccupiableAndNotOccupiedByCrate(Position{Row: 1, Col: 0}), "out of bounds")
}

// assertConsistent checks that the indices agree with the cell array
func assertConsistent(t *testing.T, g *Grid) {
	t.Helper()

	players := 0
	crates := 0
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			p := Position{Row: r, Col: c}
			cell, _ := g.CellAt(p)
			if cell.Occupant == nil {
				continue
			}
			assert.NotEqual(t, Wall, cell.Kind, "occupant on wall at %v", p)
			assert.Equal(t, p, cell.Occupant.Pos, "occupant position mismatch at %v", p)
			switch cell.Occupant.Kind {
			case Player:
				players++
				assert.Equal(t, p, g.Player())
			case Crate:
				crates++
				assert.Contains(t, g.Crates(), p)
			}
		}
	}
	assert.Equal(t, 1, players)
	assert.Equal(t, len(g.Crates()), crates)
}
