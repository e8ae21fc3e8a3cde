// Package websocket pushes live game state to browser or tool clients.
//
// Clients attach to one session with GET /ws?session=<id>. After every
// mutation the API server calls Hub.BroadcastToSession and each client of
// that session receives a JSON Message:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//
// Events are state_update, game_over, new_game and auto_play. The socket is
// read-only from the client's point of view; moves go through REST or MCP.
//
// The Hub owns its client set through a single event loop started with
// Run(ctx). Broadcasts are queued without blocking the caller, and a client
// whose send buffer is full is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	g.Go(func() error { return hub.Run(ctx) })
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
