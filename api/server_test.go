package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/levels"
	"github.com/wricardo/mcp-training/sokoban/game/service"
	"github.com/wricardo/mcp-training/sokoban/game/session"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, levelID string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	MoveFunc      func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error)
	BulkMoveFunc  func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error)
	RestartFunc   func(ctx context.Context, sessionID string) (*service.GameState, error)
	NextLevelFunc func(ctx context.Context, sessionID string) (*service.GameState, error)

	GetGameStateFunc   func(ctx context.Context, sessionID string) (*service.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	ListLevelsFunc func(ctx context.Context) ([]*service.LevelInfo, error)
	GetLevelFunc   func(ctx context.Context, levelID string) (*service.LevelDetail, error)
	SaveLevelFunc  func(ctx context.Context, levelID, text string) (*service.LevelInfo, error)
}

func testState(sessionID string) *service.GameState {
	return &service.GameState{
		SessionID: sessionID,
		LevelID:   "first-steps",
		Rows:      5,
		Cols:      7,
		Player:    engine.Position{Row: 2, Col: 2},
		Status:    engine.StatusPlaying,
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, levelID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, levelID)
	}
	if levelID == "" {
		levelID = "first-steps"
	}
	return &service.SessionInfo{ID: "test", LevelID: levelID, CreatedAt: time.Now(), GameState: testState("test")}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, LevelID: "first-steps", GameState: testState(sessionID)}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, restart)
	}
	return &service.MoveResult{Success: true, Direction: direction, GameState: testState(sessionID)}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, restart)
	}
	return &service.BulkMoveResult{
		RequestedMoves: len(moves),
		MovesExecuted:  len(moves),
		Success:        true,
		GameState:      testState(sessionID),
	}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return testState(sessionID), nil
}

func (m *MockGameService) NextLevel(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.NextLevelFunc != nil {
		return m.NextLevelFunc(ctx, sessionID)
	}
	state := testState(sessionID)
	state.LevelID = "two-crates"
	return state, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return testState(sessionID), nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	if m.ListLevelsFunc != nil {
		return m.ListLevelsFunc(ctx)
	}
	return []*service.LevelInfo{{ID: "first-steps", Name: "First Steps", Rows: 5, Cols: 7, Crates: 1, Destinations: 1}}, nil
}

func (m *MockGameService) GetLevel(ctx context.Context, levelID string) (*service.LevelDetail, error) {
	if m.GetLevelFunc != nil {
		return m.GetLevelFunc(ctx, levelID)
	}
	return &service.LevelDetail{LevelInfo: service.LevelInfo{ID: levelID}, Map: []string{"#####"}}, nil
}

func (m *MockGameService) SaveLevel(ctx context.Context, levelID, text string) (*service.LevelInfo, error) {
	if m.SaveLevelFunc != nil {
		return m.SaveLevelFunc(ctx, levelID, text)
	}
	return &service.LevelInfo{ID: levelID}, nil
}

// recordingHub captures broadcasts
type recordingHub struct {
	mu     sync.Mutex
	states map[string][]*service.GameState
}

func newRecordingHub() *recordingHub {
	return &recordingHub{states: make(map[string][]*service.GameState)}
}

func (h *recordingHub) BroadcastToSession(sessionID string, state *service.GameState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[sessionID] = append(h.states[sessionID], state)
}

func (h *recordingHub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	w.Write([]byte("upgraded " + sessionID))
}

func (h *recordingHub) count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.states[sessionID])
}

func setupTestServer(mock *MockGameService) (*Server, *recordingHub) {
	hub := newRecordingHub()
	return NewServer(mock, hub, nil), hub
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
		wantLevel  string
	}{
		{name: "default level", body: nil, wantStatus: http.StatusCreated, wantLevel: "first-steps"},
		{name: "explicit level", body: map[string]string{"level_id": "warehouse"}, wantStatus: http.StatusCreated, wantLevel: "warehouse"},
		{name: "unknown level", body: map[string]string{"level_id": "nope"}, serviceErr: levels.ErrLevelNotFound, wantStatus: http.StatusNotFound},
		{name: "broken level", body: map[string]string{"level_id": "bad"}, serviceErr: engine.ErrInvalidMap, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "{not json", wantStatus: http.StatusBadRequest},
		{name: "level id too long", body: map[string]string{"level_id": strings.Repeat("x", 65)}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{}
			if tt.serviceErr != nil {
				mock.CreateSessionFunc = func(ctx context.Context, levelID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load level '%s': %w", levelID, tt.serviceErr)
				}
			}
			s, _ := setupTestServer(mock)

			w := do(t, s, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusCreated {
				var info service.SessionInfo
				decodeBody(t, w, &info)
				assert.Equal(t, tt.wantLevel, info.LevelID)
			} else {
				var resp map[string]string
				decodeBody(t, w, &resp)
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Hour)},
				{ID: "b", CreatedAt: base.Add(time.Hour), LastAccessedAt: base.Add(time.Hour)},
				{ID: "c", CreatedAt: base.Add(2 * time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
			}, nil
		},
	}
	s, _ := setupTestServer(mock)

	tests := []struct {
		query     string
		wantOrder []string
		wantTotal int
		wantSort  string
		wantOrd   string
	}{
		{query: "", wantOrder: []string{"a", "c", "b"}, wantTotal: 3, wantSort: "accessed", wantOrd: "desc"},
		{query: "?sort=created&order=asc", wantOrder: []string{"a", "b", "c"}, wantTotal: 3, wantSort: "created", wantOrd: "asc"},
		{query: "?sort=created&limit=2", wantOrder: []string{"c", "b"}, wantTotal: 3, wantSort: "created", wantOrd: "desc"},
		{query: "?limit=abc", wantOrder: []string{"a", "c", "b"}, wantTotal: 3, wantSort: "accessed", wantOrd: "desc"},
	}

	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			w := do(t, s, http.MethodGet, "/api/sessions"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
				Sort     string                 `json:"sort"`
				Order    string                 `json:"order"`
			}
			decodeBody(t, w, &resp)

			ids := make([]string, len(resp.Sessions))
			for i, si := range resp.Sessions {
				ids[i] = si.ID
			}
			assert.Equal(t, tt.wantOrder, ids)
			assert.Equal(t, len(tt.wantOrder), resp.Count)
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Equal(t, tt.wantSort, resp.Sort)
			assert.Equal(t, tt.wantOrd, resp.Order)
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id == "missing" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: id}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id == "missing" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	}
	s, _ := setupTestServer(mock)

	w := do(t, s, http.MethodGet, "/api/sessions/ab12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info service.SessionInfo
	decodeBody(t, w, &info)
	assert.Equal(t, "ab12", info.ID)

	w = do(t, s, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodDelete, "/api/sessions/ab12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session ab12 deleted")

	w = do(t, s, http.MethodDelete, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		serviceErr    error
		wantStatus    int
		wantDirection string
		wantRestart   bool
	}{
		{name: "word direction", body: map[string]any{"direction": "up"}, wantStatus: http.StatusOK, wantDirection: "up"},
		{name: "key direction", body: map[string]any{"direction": "d"}, wantStatus: http.StatusOK, wantDirection: "d"},
		{name: "mixed case", body: map[string]any{"direction": " Left "}, wantStatus: http.StatusOK, wantDirection: "left"},
		{name: "with restart", body: map[string]any{"direction": "down", "restart": true}, wantStatus: http.StatusOK, wantDirection: "down", wantRestart: true},
		{name: "invalid direction", body: map[string]any{"direction": "north"}, wantStatus: http.StatusBadRequest},
		{name: "missing direction", body: map[string]any{}, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "{", wantStatus: http.StatusBadRequest},
		{name: "unknown session", body: map[string]any{"direction": "up"}, serviceErr: session.ErrSessionNotFound, wantStatus: http.StatusNotFound},
		{name: "internal failure", body: map[string]any{"direction": "up"}, serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDirection string
			var gotRestart bool
			mock := &MockGameService{
				MoveFunc: func(ctx context.Context, id, direction string, restart bool) (*service.MoveResult, error) {
					gotDirection, gotRestart = direction, restart
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.MoveResult{Success: true, Direction: direction, GameState: testState(id)}, nil
				},
			}
			s, hub := setupTestServer(mock)

			w := do(t, s, http.MethodPost, "/api/sessions/s1/move", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantDirection, gotDirection)
				assert.Equal(t, tt.wantRestart, gotRestart)
				assert.Equal(t, 1, hub.count("s1"))

				var result service.MoveResult
				decodeBody(t, w, &result)
				assert.True(t, result.Success)
			} else {
				assert.Equal(t, 0, hub.count("s1"))
			}
		})
	}
}

func TestMoveBlockedStillBroadcasts(t *testing.T) {
	mock := &MockGameService{
		MoveFunc: func(ctx context.Context, id, direction string, restart bool) (*service.MoveResult, error) {
			return &service.MoveResult{
				Success:     false,
				Direction:   direction,
				GameState:   testState(id),
				AttemptedTo: &service.AttemptInfo{Row: 0, Col: 2, Symbol: "#", Kind: "wall", Reason: "wall"},
			}, nil
		},
	}
	s, hub := setupTestServer(mock)

	w := do(t, s, http.MethodPost, "/api/sessions/s1/move", map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.MoveResult
	decodeBody(t, w, &result)
	assert.False(t, result.Success)
	require.NotNil(t, result.AttemptedTo)
	assert.Equal(t, "wall", result.AttemptedTo.Reason)
	assert.Equal(t, 1, hub.count("s1"))
}

func TestBulkMove(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMoves  []string
	}{
		{name: "valid moves", body: map[string]any{"moves": []string{"up", "W", "left"}}, wantStatus: http.StatusOK, wantMoves: []string{"up", "w", "left"}},
		{name: "empty moves", body: map[string]any{"moves": []string{}}, wantStatus: http.StatusBadRequest},
		{name: "missing moves", body: map[string]any{}, wantStatus: http.StatusBadRequest},
		{name: "one invalid move", body: map[string]any{"moves": []string{"up", "jump"}}, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "[]", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			mock := &MockGameService{
				BulkMoveFunc: func(ctx context.Context, id string, moves []string, restart bool) (*service.BulkMoveResult, error) {
					got = moves
					return &service.BulkMoveResult{RequestedMoves: len(moves), MovesExecuted: len(moves), Success: true, GameState: testState(id)}, nil
				},
			}
			s, hub := setupTestServer(mock)

			w := do(t, s, http.MethodPost, "/api/sessions/s1/bulk-move", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantMoves, got)
				assert.Equal(t, 1, hub.count("s1"))
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestRestartAndNextLevel(t *testing.T) {
	t.Run("restart", func(t *testing.T) {
		s, hub := setupTestServer(&MockGameService{})

		w := do(t, s, http.MethodPost, "/api/sessions/s1/restart", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Message string             `json:"message"`
			State   *service.GameState `json:"state"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "Level restarted", resp.Message)
		require.NotNil(t, resp.State)
		assert.Equal(t, 1, hub.count("s1"))
	})

	t.Run("next level", func(t *testing.T) {
		s, hub := setupTestServer(&MockGameService{})

		w := do(t, s, http.MethodPost, "/api/sessions/s1/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "two-crates")
		assert.Equal(t, 1, hub.count("s1"))
	})

	errCases := []struct {
		err  error
		want int
	}{
		{err: service.ErrLevelNotWon, want: http.StatusConflict},
		{err: fmt.Errorf("%w after 'warehouse'", service.ErrNoNextLevel), want: http.StatusConflict},
		{err: session.ErrSessionNotFound, want: http.StatusNotFound},
	}
	for _, tc := range errCases {
		t.Run("next level "+tc.err.Error(), func(t *testing.T) {
			s, hub := setupTestServer(&MockGameService{
				NextLevelFunc: func(ctx context.Context, id string) (*service.GameState, error) {
					return nil, tc.err
				},
			})

			w := do(t, s, http.MethodPost, "/api/sessions/s1/next", nil)
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, 0, hub.count("s1"))
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{query: "", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{query: "?page=3&limit=5&order=asc", want: service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{query: "?page=-1&limit=zero&order=sideways", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			s, _ := setupTestServer(&MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			})

			w := do(t, s, http.MethodGet, "/api/sessions/s1/history"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetGameState(t *testing.T) {
	s, _ := setupTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, id string) (*service.GameState, error) {
			if id == "gone" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return testState(id), nil
		},
	})

	w := do(t, s, http.MethodGet, "/api/sessions/s1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state service.GameState
	decodeBody(t, w, &state)
	assert.Equal(t, "s1", state.SessionID)
	assert.Equal(t, engine.StatusPlaying, state.Status)

	w = do(t, s, http.MethodGet, "/api/sessions/gone/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLevels(t *testing.T) {
	var savedID, savedText, gotLevel string
	s, _ := setupTestServer(&MockGameService{
		GetLevelFunc: func(ctx context.Context, id string) (*service.LevelDetail, error) {
			gotLevel = id
			if id == "missing" {
				return nil, levels.ErrLevelNotFound
			}
			return &service.LevelDetail{LevelInfo: service.LevelInfo{ID: id}}, nil
		},
		SaveLevelFunc: func(ctx context.Context, id, text string) (*service.LevelInfo, error) {
			savedID, savedText = id, text
			if id == "unbalanced" {
				return nil, fmt.Errorf("%w: 2 crates but 1 destinations", levels.ErrInvalidLevel)
			}
			return &service.LevelInfo{ID: id}, nil
		},
	})

	w := do(t, s, http.MethodGet, "/api/levels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []*service.LevelInfo
	decodeBody(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "first-steps", list[0].ID)

	w = do(t, s, http.MethodGet, "/api/levels/warehouse.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warehouse", gotLevel)

	w = do(t, s, http.MethodGet, "/api/levels/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	text := "3 3\n###\n#@#\n###\n"
	w = do(t, s, http.MethodPost, "/api/levels", map[string]string{"id": "mine", "map": text})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "mine", savedID)
	assert.Equal(t, text, savedText)

	w = do(t, s, http.MethodPost, "/api/levels", map[string]string{"id": "unbalanced", "map": text})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/levels", map[string]string{"map": text})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ID is required")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: session.ErrSessionNotFound, want: http.StatusNotFound},
		{err: levels.ErrLevelNotFound, want: http.StatusNotFound},
		{err: session.ErrSessionAlreadyExists, want: http.StatusConflict},
		{err: service.ErrLevelNotWon, want: http.StatusConflict},
		{err: service.ErrNoNextLevel, want: http.StatusConflict},
		{err: fmt.Errorf("move 2: %w", service.ErrInvalidDirection), want: http.StatusBadRequest},
		{err: service.ErrNoMoves, want: http.StatusBadRequest},
		{err: session.ErrInvalidSessionID, want: http.StatusBadRequest},
		{err: &engine.UnknownElementError{Char: 'x'}, want: http.StatusBadRequest},
		{err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRequestID(t *testing.T) {
	s, _ := setupTestServer(&MockGameService{})

	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupTestServer(&MockGameService{})

	do(t, s, http.MethodGet, "/api/levels", nil)

	w := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sokoban_http_requests_total")
}

func TestWebSocketEndpoint(t *testing.T) {
	s, _ := setupTestServer(&MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id == "missing" {
				return nil, session.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: id}, nil
		},
	})

	w := do(t, s, http.MethodGet, "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/ws?session=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/ws?session=s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upgraded s1", w.Body.String())

	noHub := NewServer(&MockGameService{}, nil, nil)
	w = do(t, noHub, http.MethodGet, "/ws?session=s1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
