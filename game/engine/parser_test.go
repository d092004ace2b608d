package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, text string) *Grid {
	t.Helper()
	g, err := LoadMapString(text)
	require.NoError(t, err)
	return g
}

func TestParseMapBuildsIndices(t *testing.T) {
	g, err := ParseMap(3, 5, []string{
		"#####",
		"#&c$#",
		"#C..#",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 5, g.Cols())
	assert.Equal(t, Position{Row: 1, Col: 1}, g.Player())
	assert.Equal(t, []Position{{Row: 1, Col: 2}, {Row: 1, Col: 3}}, g.Crates())
	assert.Equal(t, []Position{{Row: 1, Col: 1}, {Row: 1, Col: 3}, {Row: 2, Col: 1}}, g.Destinations())

	cell, ok := g.CellAt(Position{Row: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, DestTile, cell.Kind)
	assert.True(t, cell.HasPlayer())

	cell, _ = g.CellAt(Position{Row: 0, Col: 0})
	assert.Equal(t, Wall, cell.Kind)
	assert.Nil(t, cell.Occupant)
}

func TestParseMapIgnoresExtraColumns(t *testing.T) {
	g, err := ParseMap(1, 3, []string{"#@.xyz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"#@."}, g.Lines())
}

func TestParseMapErrors(t *testing.T) {
	tests := []struct {
		name  string
		rows  int
		cols  int
		lines []string
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown element",
			rows:  2,
			cols:  3,
			lines: []string{"#@#", "#x#"},
			check: func(t *testing.T, err error) {
				var unknown *UnknownElementError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, 'x', unknown.Char)
				assert.Equal(t, Position{Row: 1, Col: 1}, unknown.Pos)
			},
		},
		{
			name:  "no player",
			rows:  1,
			cols:  3,
			lines: []string{"#c#"},
			check: func(t *testing.T, err error) {
				var count *InvalidPlayerCountError
				require.ErrorAs(t, err, &count)
				assert.Equal(t, 0, count.Found)
				assert.Contains(t, err.Error(), "0 players found")
			},
		},
		{
			name:  "two players",
			rows:  1,
			cols:  4,
			lines: []string{"#@&#"},
			check: func(t *testing.T, err error) {
				var count *InvalidPlayerCountError
				require.ErrorAs(t, err, &count)
				assert.Equal(t, 2, count.Found)
				assert.Contains(t, err.Error(), ">1 players found")
			},
		},
		{
			name:  "short row",
			rows:  2,
			cols:  3,
			lines: []string{"#@#", "##"},
			check: func(t *testing.T, err error) {
				var malformed *MalformedMapError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, 3, malformed.Line)
			},
		},
		{
			name:  "missing rows",
			rows:  3,
			cols:  3,
			lines: []string{"#@#"},
			check: func(t *testing.T, err error) {
				var malformed *MalformedMapError
				require.ErrorAs(t, err, &malformed)
			},
		},
		{
			name:  "zero dimensions",
			rows:  0,
			cols:  3,
			lines: nil,
			check: func(t *testing.T, err error) {
				var malformed *MalformedMapError
				require.ErrorAs(t, err, &malformed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseMap(tt.rows, tt.cols, tt.lines)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, ErrInvalidMap))
			tt.check(t, err)
		})
	}
}

func TestLoadMapHeader(t *testing.T) {
	g, err := LoadMap(strings.NewReader("1 5\r\n#@cC#\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "#@cC#", g.String())

	headers := []string{
		"", "3\n###", "a b\n###", "1 b\n###",
		"-1 3\n", "-5 -5\n#\n", "0 5\n#####\n", "3 0\n",
		"999999999 999999999\n",
	}
	for _, text := range headers {
		_, err := LoadMapString(text)
		var malformed *MalformedMapError
		require.ErrorAs(t, err, &malformed, "input %q", text)
		assert.Equal(t, 1, malformed.Line)
	}
}

func TestLoadMapOversized(t *testing.T) {
	t.Run("more rows than the input holds", func(t *testing.T) {
		_, err := LoadMapString("999999999 3\n#@#\n")
		var malformed *MalformedMapError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 3, malformed.Line)
	})

	t.Run("line over the limit", func(t *testing.T) {
		_, err := LoadMapString("1 3\n" + strings.Repeat("#", MaxLineLength+1) + "\n")
		var malformed *MalformedMapError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 2, malformed.Line)
		assert.ErrorIs(t, err, ErrInvalidMap)
		assert.False(t, errors.Is(err, ErrSourceUnavailable))
	})

	t.Run("short rows are rejected before allocating", func(t *testing.T) {
		_, err := ParseMap(1, 1<<40, []string{"#@#"})
		assert.ErrorIs(t, err, ErrInvalidMap)
	})
}

func TestLoadMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 4\n#@c#\n"), 0644))

	g, err := LoadMapFile(path)
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 0, Col: 1}, g.Player())

	_, err = LoadMapFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.False(t, errors.Is(err, ErrInvalidMap))
}

func TestEncodeMapRoundTrip(t *testing.T) {
	text := "3 5\n#####\n#&c$#\n#C.c#\n"
	g := mustLoad(t, text)
	assert.Equal(t, text, EncodeMap(g))
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{
		"up": Up, "W": Up, " down ": Down, "s": Down,
		"Left": Left, "a": Left, "RIGHT": Right, "d": Right,
	}
	for in, want := range tests {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("north")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
