package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

// staticBoard satisfies engine.BoardReader for a fixed board.
type staticBoard engine.Board

func (b staticBoard) Board() engine.Board { return engine.Board(b).Clone() }

func TestNew(t *testing.T) {
	a, err := New("greedy", nil)
	require.NoError(t, err)
	assert.Equal(t, KindGreedy, a.Name())

	a, err = New(" Random ", randutil.New(1))
	require.NoError(t, err)
	assert.Equal(t, KindRandom, a.Name())

	_, err = New("minimax", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAgent))
	assert.Contains(t, err.Error(), "greedy, random")
}

func TestGreedyAgent_Choose(t *testing.T) {
	tests := []struct {
		name  string
		board engine.Board
		want  engine.Direction
	}{
		{
			name:  "left wins a tie with right",
			board: engine.Board{{2, 2, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			want:  engine.Left,
		},
		{
			name:  "up wins a tie with down when left and right are blocked",
			board: engine.Board{{2, 4}, {2, 8}},
			want:  engine.Up,
		},
		{
			name:  "larger gain beats an earlier changing move",
			board: engine.Board{{4, 0}, {4, 2}},
			want:  engine.Up,
		},
		{
			name:  "zero gain move is still a move",
			board: engine.Board{{2, 0}, {0, 0}},
			want:  engine.Right,
		},
		{
			name:  "equal merge gains keep left",
			board: engine.Board{{8, 4, 4, 0}, {2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			want:  engine.Left,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := NewGreedyAgent().Choose(staticBoard(tt.board))
			require.True(t, ok)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestGreedyAgent_NoMoveOnTerminalBoard(t *testing.T) {
	_, ok := NewGreedyAgent().Choose(staticBoard{{2, 4}, {4, 2}})
	assert.False(t, ok)
}

func TestGreedyAgent_DoesNotMutateGame(t *testing.T) {
	game := engine.NewEngineWithDefaults(engine.WithRand(randutil.New(4)))
	before := game.GetState()

	for i := 0; i < 5; i++ {
		_, ok := NewGreedyAgent().Choose(game)
		require.True(t, ok)
	}

	assert.Equal(t, before, game.GetState())
}

func TestRandomAgent_Choose(t *testing.T) {
	seen := map[engine.Direction]bool{}
	a := NewRandomAgent(randutil.New(12))
	b := NewRandomAgent(randutil.New(12))
	board := staticBoard(engine.NewBoard(4))

	for i := 0; i < 200; i++ {
		da, ok := a.Choose(board)
		require.True(t, ok)
		db, _ := b.Choose(board)
		assert.Equal(t, da, db, "same seed must give the same sequence")
		assert.True(t, da.Valid())
		seen[da] = true
	}
	assert.Len(t, seen, 4)
}
