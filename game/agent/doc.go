// Package agent contains automated players for the tile game.
//
// An Agent looks at a board through engine.BoardReader and proposes one
// direction. Agents never mutate the game they inspect; GreedyAgent simulates
// each direction on a copy with engine.Move. Play drives a game with an agent
// until it ends and records every accepted move.
package agent
