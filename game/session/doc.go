// Package session provides session management for the tile game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique 4-character session ID generation
//   - Expiry of idle sessions against an injectable clock
//   - JSON file persistence with restore through engine.Restore
//
// Core Types:
//
// Manager holds sessions in memory keyed by lower-cased ID and optionally
// writes them through a SessionPersistence. FilePersistence stores one JSON
// file per session that records the config ID and the full game state.
// Expired sessions leave memory but keep their file, so a later Get brings
// them back.
package session
