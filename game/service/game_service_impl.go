package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager, logger *slog.Logger) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		logger:   logger.With("component", "service"),
		now:      time.Now,
	}
}

// CreateSession creates a new game session on levelID, or on the first
// level when levelID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (_ *SessionInfo, err error) {
	_, span := startSpan(ctx, "CreateSession", "")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	levelID = strings.TrimSuffix(strings.TrimSpace(levelID), ".txt")
	if levelID == "" {
		levelID, err = s.levels.First()
		if err != nil {
			return nil, fmt.Errorf("no default level: %w", err)
		}
	}

	grid, err := s.levels.Load(levelID)
	if err != nil {
		// Provide helpful error message with available options
		if available, listErr := s.levels.List(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, lvl := range available {
				ids = append(ids, lvl.ID)
			}
			return nil, fmt.Errorf("failed to load level '%s' (available levels: %v): %w", levelID, ids, err)
		}
		return nil, fmt.Errorf("failed to load level '%s': %w", levelID, err)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", levelID, grid)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.String("level.id", levelID))

	sessionsCreatedTotal.Inc()
	s.logger.Info("session created", "session_id", sess.ID, "level", levelID)

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information. It touches the access time, so
// it takes the write lock.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (_ *SessionInfo, err error) {
	_, span := startSpan(ctx, "GetSession", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) (_ []*SessionInfo, err error) {
	_, span := startSpan(ctx, "ListSessions", "")
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) (err error) {
	_, span := startSpan(ctx, "DeleteSession", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, restart bool) (_ *MoveResult, err error) {
	_, span := startSpan(ctx, "Move", sessionID)
	defer func() { endSpan(span, err) }()

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	// Update last accessed time
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if restart {
		ev, err := s.restartLocked(sess)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	before := sess.Level.Status()
	step := sess.Level.Step(dir)

	result := &MoveResult{
		Success:   step.Moved,
		Pushed:    step.Pushed,
		Direction: dir.String(),
		From:      step.From,
		To:        step.To,
	}

	if step.Moved {
		s.recordStep(sess, step)
		events = append(events, s.stepEvents(sess, step, before)...)
		result.Message = events[len(events)-1].Message
	} else {
		movesTotal.WithLabelValues("blocked").Inc()
		result.AttemptedTo = describeAttempt(sess.Level.Grid(), step.From, dir)
		result.Message = fmt.Sprintf("Cannot move %s: %s", dir, result.AttemptedTo.Reason)
	}

	result.Events = events
	result.GameState = s.buildState(sess)
	span.SetAttributes(
		attribute.String("move.direction", dir.String()),
		attribute.Bool("move.success", step.Moved),
		attribute.Bool("move.pushed", step.Pushed),
	)
	s.logger.Debug("move", "session_id", sess.ID, "direction", dir.String(), "moved", step.Moved, "pushed", step.Pushed)

	// Auto-save session after move
	s.persist(sessionID, "move")

	return result, nil
}

// BulkMove executes multiple moves in sequence. It stops at the first
// blocked move or when a move solves or deadlocks the level.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (_ *BulkMoveResult, err error) {
	_, span := startSpan(ctx, "BulkMove", sessionID)
	defer func() { endSpan(span, err) }()

	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	dirs := make([]engine.Direction, len(moves))
	for i, m := range moves {
		dirs[i], err = engine.ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Success:        true,
		Events:         make([]GameEvent, 0),
	}

	if restart {
		ev, err := s.restartLocked(sess)
		if err != nil {
			return nil, err
		}
		result.Events = append(result.Events, ev)
	}

	// Limit moves to prevent abuse
	if len(dirs) > MaxBulkMoves {
		result.Truncated = true
		result.Limit = MaxBulkMoves
		dirs = dirs[:MaxBulkMoves]
	}

	result.StartPos = sess.Level.Grid().Player()
	startPushes := sess.Level.PushCount()

	for i, dir := range dirs {
		before := sess.Level.Status()
		step := sess.Level.Step(dir)

		if !step.Moved {
			movesTotal.WithLabelValues("blocked").Inc()
			attempt := describeAttempt(sess.Level.Grid(), step.From, dir)
			result.Success = false
			result.AttemptedTo = attempt
			result.StopReasonCode = "blocked_" + attempt.Reason
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s (%s)", i+1, dir, attempt.Reason)
			result.StoppedOnMove = i + 1
			break
		}

		s.recordStep(sess, step)
		result.MovesExecuted++
		if step.Pushed {
			result.CratesMoved++
		}
		result.Steps = append(result.Steps, StepInfo{
			Idx:    i + 1,
			Dir:    dir.String(),
			From:   step.From,
			To:     step.To,
			Pushed: step.Pushed,
		})
		result.Events = append(result.Events, s.stepEvents(sess, step, before)...)

		if after := sess.Level.Status(); after != before && after != engine.StatusPlaying {
			result.StopReasonCode = string(after)
			result.StoppedReason = fmt.Sprintf("level %s after move %d", after, i+1)
			result.StoppedOnMove = i + 1
			break
		}
	}

	result.GameState = s.buildState(sess)
	result.EndPos = result.GameState.Player
	result.PushesDelta = sess.Level.PushCount() - startPushes

	span.SetAttributes(
		attribute.Int("bulk.requested", result.RequestedMoves),
		attribute.Int("bulk.executed", result.MovesExecuted),
	)

	// Auto-save session after bulk moves
	s.persist(sessionID, "bulk move")

	return result, nil
}

// Restart reloads the session's current level from the catalogue
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (_ *GameState, err error) {
	_, span := startSpan(ctx, "Restart", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	if _, err := s.restartLocked(sess); err != nil {
		return nil, err
	}

	s.persist(sessionID, "restart")
	return s.buildState(sess), nil
}

// NextLevel advances a session whose current level is solved
func (s *gameServiceImpl) NextLevel(ctx context.Context, sessionID string) (_ *GameState, err error) {
	_, span := startSpan(ctx, "NextLevel", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if !sess.Level.IsWin() {
		return nil, ErrLevelNotWon
	}

	next, ok := s.levels.Next(sess.LevelID)
	if !ok {
		return nil, fmt.Errorf("%w after '%s'", ErrNoNextLevel, sess.LevelID)
	}

	grid, err := s.levels.Load(next)
	if err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", next, err)
	}

	prev := sess.LevelID
	sess.ResetLevel(next, grid, s.now())
	span.SetAttributes(attribute.String("level.id", next))
	s.logger.Info("advanced to next level", "session_id", sess.ID, "from", prev, "to", next)

	s.persist(sessionID, "next level")
	return s.buildState(sess), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (_ *GameState, err error) {
	_, span := startSpan(ctx, "GetGameState", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.buildState(sess), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (_ *HistoryResponse, err error) {
	_, span := startSpan(ctx, "GetMoveHistory", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	moves := []MoveRecord{}
	if opts.Page > totalPages {
		return &HistoryResponse{
			Moves:       moves,
			TotalMoves:  total,
			Page:        opts.Page,
			PageSize:    opts.Limit,
			TotalPages:  totalPages,
			HasPrevious: true,
		}, nil
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns the level catalogue in play order
func (s *gameServiceImpl) ListLevels(ctx context.Context) (_ []*LevelInfo, err error) {
	_, span := startSpan(ctx, "ListLevels", "")
	defer func() { endSpan(span, err) }()

	return s.levels.List()
}

// GetLevel returns a level with its map
func (s *gameServiceImpl) GetLevel(ctx context.Context, levelID string) (_ *LevelDetail, err error) {
	_, span := startSpan(ctx, "GetLevel", "")
	defer func() { endSpan(span, err) }()

	info, err := s.levels.Info(levelID)
	if err != nil {
		return nil, err
	}
	source, err := s.levels.Source(levelID)
	if err != nil {
		return nil, err
	}
	grid, err := s.levels.Load(levelID)
	if err != nil {
		return nil, err
	}

	return &LevelDetail{LevelInfo: *info, Map: grid.Lines(), Source: source}, nil
}

// SaveLevel stores a new or edited level
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID, text string) (_ *LevelInfo, err error) {
	_, span := startSpan(ctx, "SaveLevel", "")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("level.id", levelID))

	if err := s.levels.Save(levelID, text); err != nil {
		return nil, err
	}
	return s.levels.Info(levelID)
}

// restartLocked replaces the session's grid with a fresh copy of its level.
// Callers hold s.mu.
func (s *gameServiceImpl) restartLocked(sess *Session) (GameEvent, error) {
	grid, err := s.levels.Load(sess.LevelID)
	if err != nil {
		return GameEvent{}, fmt.Errorf("failed to reload level '%s': %w", sess.LevelID, err)
	}

	sess.ResetLevel(sess.LevelID, grid, s.now())
	sess.Restarts++
	restartsTotal.Inc()
	s.logger.Info("level restarted", "session_id", sess.ID, "level", sess.LevelID, "restarts", sess.Restarts)

	return GameEvent{
		Type:      "restart",
		Message:   fmt.Sprintf("Level restarted (restart #%d)", sess.Restarts),
		Timestamp: s.now(),
	}, nil
}

// recordStep appends a successful step to the session history
func (s *gameServiceImpl) recordStep(sess *Session, step engine.Step) {
	movesTotal.WithLabelValues("moved").Inc()
	if step.Pushed {
		pushesTotal.Inc()
	}
	sess.History = append(sess.History, MoveRecord{
		Index:     len(sess.History) + 1,
		Direction: step.Dir.String(),
		From:      step.From,
		To:        step.To,
		Pushed:    step.Pushed,
		Timestamp: s.now(),
	})
}

// stepEvents generates events from a successful step. Win and deadlock
// events fire only when the status changes into them.
func (s *gameServiceImpl) stepEvents(sess *Session, step engine.Step, before engine.Status) []GameEvent {
	now := s.now()
	to := step.To
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", step.Dir, to.Row, to.Col),
		Timestamp: now,
		Position:  &to,
	}}

	if step.Pushed {
		crate := to.Add(step.Dir)
		events = append(events, GameEvent{
			Type:      "push",
			Message:   fmt.Sprintf("Pushed crate to (%d,%d)", crate.Row, crate.Col),
			Timestamp: now,
			Position:  &crate,
		})
	}

	after := sess.Level.Status()
	if after == before {
		return events
	}
	switch after {
	case engine.StatusWon:
		levelsWonTotal.WithLabelValues(sess.LevelID).Inc()
		s.logger.Info("level solved", "session_id", sess.ID, "level", sess.LevelID, "pushes", sess.Level.PushCount())
		events = append(events, GameEvent{
			Type:      "win",
			Message:   fmt.Sprintf("Level solved in %d moves!", sess.Level.PushCount()),
			Timestamp: now,
		})
	case engine.StatusDeadlocked:
		deadlocksTotal.WithLabelValues(sess.LevelID).Inc()
		events = append(events, GameEvent{
			Type:      "deadlock",
			Message:   "Deadlock: no crate can be pushed any more. Restart the level.",
			Timestamp: now,
		})
	}
	return events
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session_id", sessionID, "after", after, "error", err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      s.buildState(sess),
	}
}

func (s *gameServiceImpl) buildState(sess *Session) *GameState {
	level := sess.Level
	g := level.Grid()
	status := level.Status()

	state := &GameState{
		SessionID:      sess.ID,
		LevelID:        sess.LevelID,
		LevelName:      s.levelName(sess.LevelID),
		Rows:           g.Rows(),
		Cols:           g.Cols(),
		Map:            g.Lines(),
		Player:         g.Player(),
		Crates:         g.Crates(),
		Destinations:   g.Destinations(),
		CratesPlaced:   engine.CratesPlaced(g),
		Pushes:         level.PushCount(),
		Restarts:       sess.Restarts,
		ElapsedSeconds: int64(s.now().Sub(sess.LevelStartedAt) / time.Second),
		Status:         status,
		Won:            status == engine.StatusWon,
		Deadlocked:     status == engine.StatusDeadlocked,
		PossibleMoves:  possibleMoves(g),
	}
	if state.Won {
		if next, ok := s.levels.Next(sess.LevelID); ok {
			state.NextLevel = next
		}
	}
	return state
}

func (s *gameServiceImpl) levelName(levelID string) string {
	info, err := s.levels.Info(levelID)
	if err != nil || info.Name == "" {
		return levelID
	}
	return info.Name
}

func possibleMoves(g *engine.Grid) []string {
	moves := make([]string, 0, len(engine.Directions))
	for _, d := range engine.Directions {
		if g.CanMove(d) {
			moves = append(moves, d.String())
		}
	}
	return moves
}

// describeAttempt explains why a move from `from` in direction d was blocked
func describeAttempt(g *engine.Grid, from engine.Position, d engine.Direction) *AttemptInfo {
	target := from.Add(d)
	info := &AttemptInfo{Row: target.Row, Col: target.Col}

	cell, ok := g.CellAt(target)
	switch {
	case !ok:
		info.Kind = "boundary"
		info.Reason = "boundary"
	case cell.Kind == engine.Wall:
		info.Symbol = string(cell.Symbol())
		info.Kind = cell.Kind.String()
		info.Reason = "wall"
	case cell.HasCrate():
		info.Symbol = string(cell.Symbol())
		info.Kind = cell.Kind.String()
		info.Reason = "crate_blocked"
	default:
		info.Symbol = string(cell.Symbol())
		info.Kind = cell.Kind.String()
		info.Reason = "blocked"
	}
	return info
}
