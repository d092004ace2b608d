// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// The Client does not touch game state directly. Every tool call is proxied
// to the REST API, so an agent and a browser watching the same session see
// identical state.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, restart_level, next_level, move_history
//   - list_levels, game_instructions, describe_cell
//
// Tool results are plain text: the map with row and column indices, the
// counters, the status and the moves currently available.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", logger)
//	server.ServeStdio(client.GetMCPServer())
package mcp
