package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseMap builds a Grid from rows lines of at least cols characters each.
// Characters past cols are ignored. Crate and destination counts are not
// balanced here.
func ParseMap(rows, cols int, lines []string) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", rows, cols)}
	}
	if len(lines) < rows {
		return nil, &MalformedMapError{Line: len(lines) + 2, Reason: fmt.Sprintf("expected %d rows, got %d", rows, len(lines))}
	}

	rowRunes := make([][]rune, rows)
	for r := range rowRunes {
		line := []rune(lines[r])
		if len(line) < cols {
			return nil, &MalformedMapError{Line: r + 2, Reason: fmt.Sprintf("row %d has %d columns, expected %d", r, len(line), cols)}
		}
		rowRunes[r] = line
	}

	g := newGrid(rows, cols)
	for r, line := range rowRunes {
		for c := 0; c < cols; c++ {
			if err := g.bind(line[c], Position{Row: r, Col: c}); err != nil {
				return nil, err
			}
		}
	}

	if g.player == nil {
		return nil, &InvalidPlayerCountError{Found: 0}
	}
	return g, nil
}

// bind resolves one map symbol into the cell at p
func (g *Grid) bind(ch rune, p Position) error {
	cell := &g.cells[p.Row][p.Col]
	switch ch {
	case SymbolWall:
		cell.Kind = Wall
	case SymbolTile:
		cell.Kind = Tile
	case SymbolDest:
		cell.Kind = DestTile
	case SymbolPlayerOnTile, SymbolPlayerOnDest:
		if g.player != nil {
			return &InvalidPlayerCountError{Found: 2}
		}
		cell.Kind = Tile
		if ch == SymbolPlayerOnDest {
			cell.Kind = DestTile
		}
		g.player = &Occupant{Kind: Player}
		g.place(g.player, p)
	case SymbolCrateOnTile, SymbolCrateOnDest:
		cell.Kind = Tile
		if ch == SymbolCrateOnDest {
			cell.Kind = DestTile
		}
		crate := &Occupant{Kind: Crate}
		g.place(crate, p)
		g.crates = append(g.crates, crate)
	default:
		return &UnknownElementError{Char: ch, Pos: p}
	}

	if cell.Kind == DestTile {
		g.destinations = append(g.destinations, p)
	}
	return nil
}

// MaxLineLength bounds a single line of map text, header included
const MaxLineLength = 64 * 1024

// LoadMap reads the map text format: a "<rows> <cols>" header followed by
// the rows. Trailing carriage returns are stripped.
func LoadMap(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, scanError(err, 1)
		}
		return nil, &MalformedMapError{Line: 1, Reason: "missing header"}
	}
	rows, cols, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, min(rows, 1024))
	for len(lines) < rows && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, scanError(err, len(lines)+2)
	}

	return ParseMap(rows, cols, lines)
}

// LoadMapString parses map text held in memory
func LoadMapString(text string) (*Grid, error) {
	return LoadMap(strings.NewReader(text))
}

// LoadMapFile opens path and parses it with LoadMap
func LoadMapFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	return LoadMap(f)
}

func parseHeader(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("header must be \"<rows> <cols>\", got %q", line)}
	}
	rows, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("invalid row count %q", fields[0])}
	}
	cols, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("invalid column count %q", fields[1])}
	}
	if rows < 1 || cols < 1 {
		return 0, 0, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", rows, cols)}
	}
	if cols > MaxLineLength {
		return 0, 0, &MalformedMapError{Line: 1, Reason: fmt.Sprintf("column count %d exceeds the %d character line limit", cols, MaxLineLength)}
	}
	return rows, cols, nil
}

// scanError reports an over-long line as malformed content and anything
// else as a read failure
func scanError(err error, line int) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return &MalformedMapError{Line: line, Reason: fmt.Sprintf("line longer than %d characters", MaxLineLength)}
	}
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}
