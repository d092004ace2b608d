package service

import (
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string     `json:"id"`
	LevelID        string     `json:"level_id"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	GameState      *GameState `json:"game_state"`
}

// GameState is the rendered view of a session's current level
type GameState struct {
	SessionID      string            `json:"session_id"`
	LevelID        string            `json:"level_id"`
	LevelName      string            `json:"level_name"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	Map            []string          `json:"map"`
	Player         engine.Position   `json:"player"`
	Crates         []engine.Position `json:"crates"`
	Destinations   []engine.Position `json:"destinations"`
	CratesPlaced   int               `json:"crates_placed"`
	Pushes         int               `json:"pushes"`
	Restarts       int               `json:"restarts"`
	ElapsedSeconds int64             `json:"elapsed_seconds"`
	Status         engine.Status     `json:"status"`
	Won            bool              `json:"won"`
	Deadlocked     bool              `json:"deadlocked"`
	PossibleMoves  []string          `json:"possible_moves"`
	NextLevel      string            `json:"next_level,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool            `json:"success"`
	Pushed      bool            `json:"pushed"`
	Direction   string          `json:"direction"`
	From        engine.Position `json:"from"`
	To          engine.Position `json:"to"`
	GameState   *GameState      `json:"game_state"`
	Message     string          `json:"message"`
	Events      []GameEvent     `json:"events,omitempty"`
	AttemptedTo *AttemptInfo    `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	RequestedMoves int          `json:"requested_moves"`
	MovesExecuted  int          `json:"moves_executed"`
	Success        bool         `json:"success"`
	GameState      *GameState   `json:"game_state"`
	Events         []GameEvent  `json:"events"`
	StoppedReason  string       `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string       `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_boundary|blocked_crate|won|deadlocked
	StoppedOnMove  int          `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool         `json:"truncated,omitempty"`
	Limit          int          `json:"limit,omitempty"`
	AttemptedTo    *AttemptInfo `json:"attempted_to,omitempty"`

	StartPos    engine.Position `json:"start_pos"`
	EndPos      engine.Position `json:"end_pos"`
	PushesDelta int             `json:"pushes_delta"`
	CratesMoved int             `json:"crates_moved"`

	Steps []StepInfo `json:"steps,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx    int             `json:"idx"`
	Dir    string          `json:"dir"`
	From   engine.Position `json:"from"`
	To     engine.Position `json:"to"`
	Pushed bool            `json:"pushed,omitempty"`
}

// AttemptInfo details the cell a blocked move tried to enter
type AttemptInfo struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"` // boundary|wall|crate_blocked
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "move", "push", "win", "deadlock", "restart", "next_level"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// MoveRecord is one successful move in a session's history
type MoveRecord struct {
	Index     int             `json:"index"`
	Direction string          `json:"direction"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Pushed    bool            `json:"pushed"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []MoveRecord `json:"moves"`
	TotalMoves  int          `json:"total_moves"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}

// LevelInfo provides information about a level
type LevelInfo struct {
	ID           string          `json:"id"` // The identifier to use for session creation
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Rows         int             `json:"rows"`
	Cols         int             `json:"cols"`
	Crates       int             `json:"crates"`
	Destinations int             `json:"destinations"`
	Player       engine.Position `json:"player"`
}

// LevelDetail is a level with its map
type LevelDetail struct {
	LevelInfo
	Map    []string `json:"map"`
	Source string   `json:"source"`
}
