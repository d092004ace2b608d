package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

// Version is reported to MCP clients during initialization
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "mcp"),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sokoban",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sokoban - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every crate onto a destination. You (@) can push one crate at a time and can never pull.

AVAILABLE TOOLS:
- create_session: Start a session on a level
- list_sessions / get_session: Inspect sessions
- game_state: Current grid, counters and status
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- restart_level: Reload the current level
- next_level: Advance after solving the level
- move_history: Past moves of the current attempt
- list_levels: Available levels
- game_instructions: Rules and map legend
- describe_cell: What occupies a given (row, col)

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

var directionEnum = []string{"up", "down", "left", "right"}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally on a specific level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"level_id": map[string]any{
					"type":        "string",
					"description": "Level to start on (optional, defaults to the first level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell, pushing a crate if one is in the way",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"direction": map[string]any{
					"type":        "string",
					"enum":        directionEnum,
					"description": "Direction to move",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
				"restart": map[string]any{
					"type":        "boolean",
					"description": "Restart the level before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence. Stops early when blocked, solved or deadlocked.", service.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"moves": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "string",
						"enum": directionEnum,
					},
					"description": "Array of moves",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves",
				},
				"restart": map[string]any{
					"type":        "boolean",
					"description": "Restart the level before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_level",
		Description: "Reload the current level from its initial layout",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_level",
		Description: "Advance to the next level. Only allowed once the current level is solved.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleNextLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for the current attempt",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get game rules and the map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe a single grid cell: its terrain, what stands on it and whether the player could enter it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"row": map[string]any{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
				"col": map[string]any{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if levelID := stringArg(args, "level_id"); levelID != "" {
		body["level_id"] = levelID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		info.ID, info.LevelID, formatGameState(info.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = string(s.GameState.Status)
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Status: %s, Created: %s)\n",
			s.ID, s.LevelID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state service.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	restart, _ := args["restart"].(bool)

	c.logger.Debug("move", "session_id", sessionID, "intent", stringArg(args, "intent"))

	body := map[string]any{
		"direction": stringArg(args, "direction"),
		"restart":   restart,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	movesRaw, _ := args["moves"].([]any)
	restart, _ := args["restart"].(bool)

	c.logger.Debug("bulk move", "session_id", sessionID, "intent", stringArg(args, "intent"))

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]any{
		"moves":   moves,
		"restart": restart,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

type stateResponse struct {
	Message string             `json:"message"`
	State   *service.GameState `json:"state"`
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response stateResponse
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleNextLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response stateResponse
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/next"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list []service.LevelInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/levels", nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, l := range list {
		fmt.Fprintf(&b, "• %s (%s)\n", l.ID, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&b, "  %s\n", l.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Crates: %d\n\n", l.Rows, l.Cols, l.Crates)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Sokoban - Instructions

OBJECTIVE:
Push every crate onto a destination cell. The level is solved the moment
all destinations hold a crate.

MOVEMENT:
• Directions: up, down, left, right (w, a, s, d also work)
• Walking into a crate pushes it one cell, if the cell behind it is free
• You cannot push two crates at once and you can never pull
• Walls and the grid edge block both you and crates
• A blocked move changes nothing and does not count

COORDINATES:
• Positions are (row, col), 0-based, row 0 at the top
• up decreases row, down increases row, left decreases col, right increases col

%s
STATUS:
• playing: keep going
• won: every destination is covered; call next_level to continue
• deadlocked: some crate can no longer move; call restart_level

TIPS:
• A crate pushed into a corner is stuck for good
• Use describe_cell to check a cell before a risky push
• bulk_move runs at most %d moves and stops early when blocked, solved or deadlocked`,
		legend(), service.MaxBulkMoves)

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var state service.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= state.Rows || col < 0 || col >= state.Cols || row >= len(state.Map) {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Grid is %d rows x %d cols (rows 0-%d, cols 0-%d)",
			row, col, state.Rows, state.Cols, state.Rows-1, state.Cols-1)), nil
	}

	line := []rune(state.Map[row])
	if col >= len(line) {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is missing from the map", row, col)), nil
	}
	symbol := line[col]

	return mcp.NewToolResultText(fmt.Sprintf(`Cell at (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Symbol: %c
Contents: %s
Enterable: %s`,
		row, col, symbol, describeSymbol(symbol), enterable(symbol))), nil
}

// describeSymbol names the terrain and occupant behind a map symbol
func describeSymbol(symbol rune) string {
	switch symbol {
	case engine.SymbolWall:
		return "wall"
	case engine.SymbolTile:
		return "empty floor"
	case engine.SymbolDest:
		return "empty destination"
	case engine.SymbolPlayerOnTile:
		return "you, standing on floor"
	case engine.SymbolPlayerOnDest:
		return "you, standing on a destination"
	case engine.SymbolCrateOnTile:
		return "crate on floor"
	case engine.SymbolCrateOnDest:
		return "crate on a destination (placed)"
	default:
		return "unknown"
	}
}

func enterable(symbol rune) string {
	switch symbol {
	case engine.SymbolWall:
		return "no, walls block movement"
	case engine.SymbolCrateOnTile, engine.SymbolCrateOnDest:
		return "only by pushing the crate, if the cell behind it is free"
	case engine.SymbolPlayerOnTile, engine.SymbolPlayerOnDest:
		return "you are here"
	case engine.SymbolTile, engine.SymbolDest:
		return "yes"
	default:
		return "unknown"
	}
}

// Formatting helpers

func legend() string {
	return fmt.Sprintf(`LEGEND:
  %c wall        %c floor
  %c you         %c you on a destination
  %c crate       %c crate on a destination
  %c destination
`,
		engine.SymbolWall, engine.SymbolTile,
		engine.SymbolPlayerOnTile, engine.SymbolPlayerOnDest,
		engine.SymbolCrateOnTile, engine.SymbolCrateOnDest,
		engine.SymbolDest)
}

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		info.ID, info.LevelID,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(info.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	name := state.LevelID
	if state.LevelName != "" && state.LevelName != state.LevelID {
		name = fmt.Sprintf("%s (%s)", state.LevelName, state.LevelID)
	}
	fmt.Fprintf(&b, "Level: %s | Player: (%d,%d) | Crates: %d/%d placed | Pushes: %d | Restarts: %d | Time: %ds\n\n",
		name, state.Player.Row, state.Player.Col,
		state.CratesPlaced, len(state.Destinations),
		state.Pushes, state.Restarts, state.ElapsedSeconds)

	b.WriteString(formatGrid(state.Map, state.Cols))
	b.WriteString("\n")

	switch state.Status {
	case engine.StatusWon:
		b.WriteString("🎉 SOLVED!")
		if state.NextLevel != "" {
			fmt.Fprintf(&b, " Next level: %s (call next_level)", state.NextLevel)
		} else {
			b.WriteString(" That was the last level.")
		}
		b.WriteString("\n")
	case engine.StatusDeadlocked:
		b.WriteString("💀 DEADLOCKED: a crate can no longer move. Call restart_level.\n")
	default:
		if len(state.PossibleMoves) > 0 {
			fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(state.PossibleMoves, ","))
		} else {
			b.WriteString("Possible moves: none\n")
		}
	}

	return b.String()
}

// formatGrid renders map rows with row and column indices
func formatGrid(lines []string, cols int) string {
	var b strings.Builder

	b.WriteString("    ")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&b, "%d", c%10)
	}
	b.WriteString("\n")

	for r, line := range lines {
		fmt.Fprintf(&b, "%3d %s\n", r, line)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Moved %s (%d,%d)→(%d,%d)", result.Direction,
			result.From.Row, result.From.Col, result.To.Row, result.To.Col)
		if result.Pushed {
			b.WriteString(" pushing a crate")
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "✗ Move %s blocked\n", result.Direction)
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) symbol=%s %s (%s)\n", a.Row, a.Col, a.Symbol, a.Kind, a.Reason)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	levelID := ""
	if result.GameState != nil {
		levelID = result.GameState.LevelID
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, levelID)

	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Moved (%d,%d)→(%d,%d), %d pushes\n",
		result.StartPos.Row, result.StartPos.Col, result.EndPos.Row, result.EndPos.Col, result.PushesDelta)

	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) symbol=%s %s (%s)\n", a.Row, a.Col, a.Symbol, a.Kind, a.Reason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			push := ""
			if s.Pushed {
				push = " push"
			}
			fmt.Fprintf(&b, "%2d. %-5s (%d,%d)→(%d,%d)%s\n", s.Idx, s.Dir, s.From.Row, s.From.Col, s.To.Row, s.To.Col, push)
		}
	}

	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	var notable []service.GameEvent
	for _, e := range events {
		if e.Type != "move" {
			notable = append(notable, e)
		}
	}
	if len(notable) == 0 {
		return
	}
	b.WriteString("\nEvents:\n")
	for _, e := range notable {
		fmt.Fprintf(b, "- %s: %s\n", e.Type, e.Message)
	}
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d/%d, %d total):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("No moves yet.\n")
		return b.String()
	}

	for _, m := range history.Moves {
		push := ""
		if m.Pushed {
			push = " push"
		}
		fmt.Fprintf(&b, "#%d %-5s (%d,%d)→(%d,%d)%s\n", m.Index, m.Direction, m.From.Row, m.From.Col, m.To.Row, m.To.Col, push)
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page.\n")
	}
	return b.String()
}
