package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRow(t *testing.T) {
	tests := []struct {
		name   string
		input  []int
		want   []int
		gained int
	}{
		{"empty row", []int{0, 0, 0, 0}, []int{0, 0, 0, 0}, 0},
		{"no merge needed", []int{2, 4, 8, 16}, []int{2, 4, 8, 16}, 0},
		{"simple merge", []int{2, 2, 0, 0}, []int{4, 0, 0, 0}, 4},
		{"merge across gap", []int{2, 0, 2, 0}, []int{4, 0, 0, 0}, 4},
		{"two merges", []int{2, 2, 4, 4}, []int{4, 8, 0, 0}, 12},
		{"merged tile does not merge again", []int{2, 2, 2, 2}, []int{4, 4, 0, 0}, 8},
		{"three equal values", []int{2, 2, 2, 0}, []int{4, 2, 0, 0}, 4},
		{"leftmost pair merges first", []int{4, 4, 8, 0}, []int{8, 8, 0, 0}, 8},
		{"slide only", []int{0, 0, 2, 0}, []int{2, 0, 0, 0}, 0},
		{"already packed", []int{2, 4, 0, 0}, []int{2, 4, 0, 0}, 0},
		{"longer row", []int{2, 2, 0, 4, 4, 8}, []int{4, 8, 8, 0, 0, 0}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gained := compressRow(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.gained, gained)
		})
	}
}

func TestMove_Directions(t *testing.T) {
	board := Board{
		{2, 0, 0, 2},
		{0, 4, 0, 0},
		{0, 0, 0, 0},
		{2, 0, 0, 0},
	}

	tests := []struct {
		dir    Direction
		want   Board
		gained int
	}{
		{Left, Board{{4, 0, 0, 0}, {4, 0, 0, 0}, {0, 0, 0, 0}, {2, 0, 0, 0}}, 4},
		{Right, Board{{0, 0, 0, 4}, {0, 0, 0, 4}, {0, 0, 0, 0}, {0, 0, 0, 2}}, 4},
		{Up, Board{{4, 4, 0, 2}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, 4},
		{Down, Board{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {4, 4, 0, 2}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			res := Move(board, tt.dir)
			assert.True(t, res.Changed)
			assert.Equal(t, tt.want, res.Board)
			assert.Equal(t, tt.gained, res.Gained)
		})
	}
}

func TestMove_SingleMergePerTile(t *testing.T) {
	board := Board{
		{2, 2, 2, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}

	res := Move(board, Left)
	require.True(t, res.Changed)
	assert.Equal(t, []int{4, 4, 0, 0}, res.Board[0])
	assert.Equal(t, 8, res.Gained)
}

func TestMove_SingleMergePerTileVertical(t *testing.T) {
	board := Board{
		{2, 0, 0, 0},
		{2, 0, 0, 0},
		{2, 0, 0, 0},
		{2, 0, 0, 0},
	}

	res := Move(board, Down)
	require.True(t, res.Changed)
	assert.Equal(t, Board{{0, 0, 0, 0}, {0, 0, 0, 0}, {4, 0, 0, 0}, {4, 0, 0, 0}}, res.Board)
	assert.Equal(t, 8, res.Gained)
}

func TestMove_NoOpDetection(t *testing.T) {
	t.Run("slide counts as change", func(t *testing.T) {
		board := Board{{0, 0, 2, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
		res := Move(board, Left)
		assert.True(t, res.Changed)
		assert.Equal(t, []int{2, 0, 0, 0}, res.Board[0])
		assert.Zero(t, res.Gained)
	})

	t.Run("packed row is unchanged", func(t *testing.T) {
		board := Board{{2, 4, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
		res := Move(board, Left)
		assert.False(t, res.Changed)
		assert.Equal(t, board, res.Board)
		assert.Zero(t, res.Gained)
	})

	t.Run("empty board never changes", func(t *testing.T) {
		board := NewBoard(4)
		for _, d := range AllDirections {
			assert.False(t, Move(board, d).Changed, d.String())
		}
	})
}

func TestMove_IsPure(t *testing.T) {
	board := Board{
		{2, 2, 0, 4},
		{0, 4, 4, 0},
		{8, 0, 8, 2},
		{0, 0, 0, 2},
	}
	original := board.Clone()
	firstRow := &board[0][0]

	for _, d := range AllDirections {
		first := Move(board, d)
		second := Move(board, d)
		assert.Equal(t, first, second, "direction %s", d)
		assert.Equal(t, original, board, "input mutated by %s", d)
		assert.Same(t, firstRow, &board[0][0])
		assert.NotSame(t, &board[0][0], &first.Board[0][0])
	}
}

func TestMove_SmallerBoard(t *testing.T) {
	board := Board{
		{2, 0, 2},
		{0, 0, 0},
		{4, 4, 4},
	}

	res := Move(board, Right)
	assert.Equal(t, Board{{0, 0, 4}, {0, 0, 0}, {0, 4, 8}}, res.Board)
	assert.Equal(t, 12, res.Gained)
}

func TestRotate_RoundTrip(t *testing.T) {
	board := Board{
		{1 << 1, 1 << 2, 1 << 3},
		{1 << 4, 1 << 5, 1 << 6},
		{1 << 7, 1 << 8, 1 << 9},
	}

	for k := 0; k < 4; k++ {
		assert.Equal(t, board, rotate(rotate(board, k), (4-k)%4))
	}
	assert.Equal(t, Board{{8, 64, 512}, {4, 32, 256}, {2, 16, 128}}, rotate(board, 1))
}
