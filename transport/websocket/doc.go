// Package websocket pushes live game state to browser clients.
//
// A single Hub owns every connection. Clients join a session with
// /ws?session=<id> and receive a JSON Message each time the session's state
// changes:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//
// Incoming frames are read only to keep the connection alive. Moves go
// through the HTTP API, which calls BroadcastToSession afterwards.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// The session map is owned by the Run goroutine. Register, unregister and
// broadcast requests reach it over channels. Broadcasts never block the
// caller; when the queue is full the message is dropped and logged.
package websocket
