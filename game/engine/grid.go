package engine

import "fmt"

// GridState owns the authoritative board and running score of one game.
// Board never hands out its internal slices.
type GridState struct {
	size  int
	board Board
	score int
}

// NewGridState returns an empty size x size grid with a zero score.
func NewGridState(size int) *GridState {
	return &GridState{
		size:  size,
		board: NewBoard(size),
	}
}

// Size returns the edge length of the grid.
func (g *GridState) Size() int {
	return g.size
}

// Board returns a copy of the current board.
func (g *GridState) Board() Board {
	return g.board.Clone()
}

// Score returns the accumulated score.
func (g *GridState) Score() int {
	return g.score
}

// Replace swaps in a new board after checking its structure. The board is
// copied, so later changes by the caller are not observed.
func (g *GridState) Replace(b Board) error {
	if err := ValidateBoard(b, g.size); err != nil {
		return err
	}
	g.board = b.Clone()
	return nil
}

func (g *GridState) addScore(gained int) {
	if gained < 0 {
		panic(fmt.Sprintf("engine: negative score gain %d", gained))
	}
	g.score += gained
}

// view exposes the internal board to package code that only reads it.
func (g *GridState) view() Board {
	return g.board
}

// ValidateBoard checks that b is size x size and every nonzero value is a
// power of two no smaller than 2. Failures wrap ErrInvariantViolation.
func ValidateBoard(b Board, size int) error {
	if len(b) != size {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvariantViolation, size, len(b))
	}
	for r, row := range b {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvariantViolation, r, len(row), size)
		}
		for c, v := range row {
			if v < 0 {
				return fmt.Errorf("%w: negative value %d at (%d,%d)", ErrInvariantViolation, v, r, c)
			}
			if v != 0 && !isTileValue(v) {
				return fmt.Errorf("%w: value %d at (%d,%d) is not a power of two >= 2", ErrInvariantViolation, v, r, c)
			}
		}
	}
	return nil
}

func isTileValue(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
