// Package service provides the business logic layer for the puzzle server.
//
// The service package implements:
//   - Multi-session game management
//   - Move and bulk-move processing with event reporting
//   - Level restarts and progression to the next level
//   - Move history tracking
//   - Level catalogue access and editing
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager loads level maps and knows their play order.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine package. Each session owns its own engine.Level; the service
// serializes access to it. Every operation opens a tracing span and moves,
// pushes, wins, deadlocks and restarts are counted as Prometheus metrics.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	levelMgr, _ := levels.NewManager("levels", logger)
//	gameService := service.NewGameService(sessionMgr, levelMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "first-steps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//
// Sessions are identified by 4-character IDs. A session's push counter,
// restart counter and level timer follow the level: restarting clears the
// pushes and timer, and moving to the next level also clears restarts.
package service
