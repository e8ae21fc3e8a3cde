// Package engine provides the core game logic for the tile merging game.
//
// The engine package implements the game mechanics including:
//   - Sliding and merging tiles in one of four directions
//   - Spawning a 2 or 4 on a random empty cell after each accepted move
//   - Detecting the terminal state where no move can change the board
//   - Game state snapshots, move history and restore from a snapshot
//   - Configuration loading and validation
//
// Core Types:
//
// Move is a pure function from a Board and a Direction to a MoveResult; it
// never spawns and never touches its input, so callers can simulate moves on
// hypothetical boards. GridState owns the authoritative board and score.
// Spawner places new tiles using an injected *rand.Rand. GameEngine ties these
// together behind the Engine interface and exposes Step, the only way a game
// changes.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := game.Step(engine.Left)
//	if !result.Changed {
//		// the board could not move left; try another direction
//	}
//	state := game.GetState()
//
// Game Rules:
//
// A game starts with two tiles on an empty board. Each move slides all tiles
// toward one edge; two equal tiles that meet merge into their sum, which is
// added to the score, and a merged tile does not merge again in the same
// move. A move that changes nothing is rejected and leaves the game as it
// was. The game is over when the board is full and no two neighbours match.
//
// Concurrency:
//
// A GameEngine has no internal locking. Code that shares one across
// goroutines, such as the service package, must serialize calls.
package engine
