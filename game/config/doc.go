// Package config provides configuration management for the tile game.
//
// Game configurations are JSON files in a configs directory, one per file.
// The file name without its extension is the config ID used when creating
// sessions. Each configuration defines:
//   - The board size (2 to 8 cells per side)
//   - The probability that a spawned tile is a 4 instead of a 2
//   - Messages for the welcome, moved, rejected and game over states
//
// Shipped configurations:
//   - classic: the standard 4x4 board
//   - mini: a 3x3 board for short games
//   - grand: a 6x6 board with more frequent fours
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("mini")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Loaded configurations are cached; RefreshCache drops the cache so edits on
// disk are picked up.
package config
