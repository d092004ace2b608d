// Package session provides session management for the puzzle server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//   - File persistence of sessions
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns one engine.Level together with its level id,
// restart counter and timer.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. IDs are generated with cryptographic randomness and
// checked against both memory and storage.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions")
//	manager := session.NewManagerWithPersistence(persistence, logger)
//
//	sess, err := manager.Create("", "first-steps", grid)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Persistence:
//
// FilePersistence writes one JSON file per session. The grid is stored as
// map text in the same format level files use, so a saved session can be
// inspected and restored with the engine parser alone.
package session
