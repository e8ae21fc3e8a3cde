// Package api exposes the tile game over a JSON REST API.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session {config_id}
//   - GET    /api/sessions              list sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         session details
//   - DELETE /api/sessions/{id}         delete a session
//
// Game operations:
//   - GET  /api/sessions/{id}/state      current GameState
//   - POST /api/sessions/{id}/move       {direction: "up|down|left|right"}
//   - POST /api/sessions/{id}/bulk-move  {moves: ["up","left",...]}
//   - POST /api/sessions/{id}/ai-move    {agent: "greedy|random"}
//   - POST /api/sessions/{id}/auto-play  {agent, max_moves, new_game}
//   - POST /api/sessions/{id}/new-game   start over with a fresh board
//   - GET  /api/sessions/{id}/history    ?page=&limit=&order=asc|desc
//
// Configuration:
//   - GET  /api/configs          list configurations
//   - POST /api/configs          save a configuration {config_id?, name, grid_size, ...}
//   - GET  /api/configs/{name}   load one configuration
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}   live updates, see package websocket
//
// A move that leaves the board unchanged is not an error: the response has
// success=false and the board is untouched. Errors are JSON objects
// {"error": "...", "code": N}. Unknown sessions and configs are 404, invalid
// directions, agents and configs are 400.
package api
