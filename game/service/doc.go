// Package service provides the business logic layer for the tile game server.
//
// The service package implements:
//   - Multi-session game management
//   - Direction parsing at the boundary
//   - Single, bulk and agent-driven moves
//   - Auto-play runs with a recorded history
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Engines have no locking of their own, so every engine call
// goes through the service, which holds a mutex for the duration of each
// operation. Starting a new game swaps a freshly built engine into the
// session instead of resetting the old one.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left")
//	auto, err := gameService.AutoPlay(ctx, info.ID, "greedy", service.AutoPlayOptions{})
package service
