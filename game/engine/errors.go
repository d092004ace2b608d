package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMap matches every error caused by the content of a map
	ErrInvalidMap = errors.New("invalid map")

	// ErrSourceUnavailable is returned when the map source cannot be read
	ErrSourceUnavailable = errors.New("map source unavailable")

	// ErrInvalidDirection is returned by ParseDirection for unknown input
	ErrInvalidDirection = errors.New("invalid direction")
)

// UnknownElementError reports a character outside the map symbol set
type UnknownElementError struct {
	Char rune
	Pos  Position
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown element %q at row %d, col %d", e.Char, e.Pos.Row, e.Pos.Col)
}

func (e *UnknownElementError) Is(target error) bool {
	return target == ErrInvalidMap
}

// InvalidPlayerCountError reports a map without a player or with more
// than one. Found is 0 or 2; scanning stops at the second player.
type InvalidPlayerCountError struct {
	Found int
}

func (e *InvalidPlayerCountError) Error() string {
	if e.Found == 0 {
		return "invalid number of players: 0 players found"
	}
	return "invalid number of players: >1 players found"
}

func (e *InvalidPlayerCountError) Is(target error) bool {
	return target == ErrInvalidMap
}

// MalformedMapError reports a broken header or missing/short rows.
// Line is 1-based and counts the header.
type MalformedMapError struct {
	Line   int
	Reason string
}

func (e *MalformedMapError) Error() string {
	return fmt.Sprintf("malformed map at line %d: %s", e.Line, e.Reason)
}

func (e *MalformedMapError) Is(target error) bool {
	return target == ErrInvalidMap
}

// ParseDirection maps a textual direction to a Direction. It accepts the
// words up/down/left/right and the keys w/a/s/d, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}
