package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridState_Replace(t *testing.T) {
	grid := NewGridState(3)
	board := Board{{2, 0, 0}, {0, 4, 0}, {0, 0, 2048}}

	require.NoError(t, grid.Replace(board))
	assert.Equal(t, board, grid.Board())

	board[0][0] = 8
	assert.Equal(t, 2, grid.Board()[0][0], "grid must not alias the caller's board")

	copied := grid.Board()
	copied[1][1] = 16
	assert.Equal(t, 4, grid.Board()[1][1], "Board must return a copy")
}

func TestGridState_ReplaceRejectsInvalidBoards(t *testing.T) {
	tests := []struct {
		name  string
		board Board
	}{
		{"too few rows", Board{{0, 0, 0}, {0, 0, 0}}},
		{"ragged row", Board{{0, 0, 0}, {0, 0}, {0, 0, 0}}},
		{"negative value", Board{{0, 0, 0}, {0, -2, 0}, {0, 0, 0}}},
		{"odd value", Board{{0, 0, 0}, {0, 3, 0}, {0, 0, 0}}},
		{"one is not a tile", Board{{1, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
		{"not a power of two", Board{{0, 0, 0}, {0, 12, 0}, {0, 0, 0}}},
		{"nil board", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewGridState(3)
			err := grid.Replace(tt.board)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvariantViolation))
			assert.Equal(t, NewBoard(3), grid.Board(), "failed replace must keep the old board")
		})
	}
}

func TestGridState_Score(t *testing.T) {
	grid := NewGridState(4)
	assert.Zero(t, grid.Score())

	grid.addScore(8)
	grid.addScore(0)
	grid.addScore(16)
	assert.Equal(t, 24, grid.Score())

	assert.Panics(t, func() { grid.addScore(-4) })
}

func TestBoardHelpers(t *testing.T) {
	board := Board{{2, 0}, {0, 128}}

	assert.Equal(t, 2, board.Size())
	assert.Equal(t, 128, board.MaxTile())
	assert.Equal(t, []Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}}, board.EmptyCells())
	assert.True(t, board.Equal(board.Clone()))
	assert.False(t, board.Equal(Board{{2, 0}, {0, 64}}))
	assert.False(t, board.Equal(Board{{2, 0, 0}}))
	assert.Contains(t, board.String(), "128")
}
