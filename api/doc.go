// Package api exposes the game service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                  create ({"level_id": "..."}, optional)
//   - GET    /api/sessions                  list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}             session info with current state
//   - DELETE /api/sessions/{id}             delete
//
// Gameplay:
//   - GET  /api/sessions/{id}/state         current game state
//   - POST /api/sessions/{id}/move          {"direction": "up", "restart": false}
//   - POST /api/sessions/{id}/bulk-move     {"moves": ["up", "left"], "restart": false}
//   - POST /api/sessions/{id}/restart       reload the current level
//   - POST /api/sessions/{id}/next          advance after a win
//   - GET  /api/sessions/{id}/history       ?page=1&limit=20&order=desc
//
// Levels:
//   - GET  /api/levels                      list
//   - GET  /api/levels/{id}                 level with map text
//   - POST /api/levels                      {"id": "...", "map": "<rows> <cols>\n..."}
//
// Plus /ws?session={id} for live updates, /metrics for Prometheus and
// /health.
//
// Directions are up/down/left/right or w/a/s/d, case-insensitive. Errors
// are returned as {"error": "..."}: 404 for unknown sessions and levels,
// 409 when a level cannot be advanced, 400 for bad input and 500 otherwise.
// Every response carries an X-Request-ID header.
package api
