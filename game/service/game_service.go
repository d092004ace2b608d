package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// MaxBulkMoves caps the moves a single BulkMove call executes
const MaxBulkMoves = 50

var (
	ErrInvalidDirection = engine.ErrInvalidDirection
	ErrLevelNotWon      = errors.New("current level is not solved yet")
	ErrNoNextLevel      = errors.New("no next level")
	ErrNoMoves          = errors.New("no moves provided")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string) (*GameState, error)
	NextLevel(ctx context.Context, sessionID string) (*GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, levelID string) (*LevelDetail, error)
	SaveLevel(ctx context.Context, levelID, text string) (*LevelInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, grid *engine.Grid) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level loading
type LevelManager interface {
	Load(id string) (*engine.Grid, error)
	Source(id string) (string, error)
	Info(id string) (*LevelInfo, error)
	List() ([]*LevelInfo, error)
	First() (string, error)
	Next(id string) (string, bool)
	Save(id, text string) error
}

// Session represents an active game session. Level is replaced wholesale
// on restart or level change.
type Session struct {
	ID             string
	LevelID        string
	Level          *engine.Level
	Restarts       int
	LevelStartedAt time.Time
	History        []MoveRecord
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// ResetLevel installs a freshly loaded grid for levelID and clears the
// per-level counters. Restarts are kept when the level does not change.
func (s *Session) ResetLevel(levelID string, grid *engine.Grid, now time.Time) {
	if levelID != s.LevelID {
		s.Restarts = 0
	}
	s.LevelID = levelID
	s.Level = engine.NewLevel(grid)
	s.LevelStartedAt = now
	s.History = nil
}
