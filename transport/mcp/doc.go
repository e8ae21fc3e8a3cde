// Package mcp exposes the tile game to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool calls the REST API (package api) and
// renders the JSON response as text, with the board drawn as aligned
// columns and . for empty cells.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, new_game, move_history
//   - ai_move, auto_play (greedy or random agent)
//   - list_configs, game_instructions
//
// Failures from the API come back as tool errors (IsError set) carrying the
// server's error message, never as protocol errors.
//
// The server binary mounts the tools at POST /mcp and, in stdio-mcp mode,
// serves them over stdin and stdout with ServeStdio.
package mcp
