package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

type fixedAgent struct {
	d  engine.Direction
	ok bool
}

func (f fixedAgent) Name() string { return "fixed" }

func (f fixedAgent) Choose(engine.BoardReader) (engine.Direction, bool) { return f.d, f.ok }

func restored(t *testing.T, board engine.Board) *engine.GameEngine {
	t.Helper()
	e, err := engine.Restore(&engine.GameState{Grid: board}, engine.DefaultConfig(len(board)),
		engine.WithRand(randutil.New(1)))
	require.NoError(t, err)
	return e
}

func TestPlay_GreedyUntilGameOver(t *testing.T) {
	game := engine.NewEngineWithDefaults(engine.WithRand(randutil.New(99)))

	res := Play(context.Background(), game, NewGreedyAgent(), PlayOptions{})

	assert.Equal(t, StopGameOver, res.StopReason)
	assert.True(t, res.GameOver)
	assert.Equal(t, KindGreedy, res.Agent)
	assert.Equal(t, game.Score(), res.FinalScore)
	assert.Equal(t, game.Board().MaxTile(), res.MaxTile)
	require.Len(t, res.Steps, res.Moves+1)
	assert.Equal(t, res.Moves, res.Attempts, "greedy never proposes a rejected move")

	assert.Empty(t, res.Steps[0].Direction)
	for i := 1; i < len(res.Steps); i++ {
		assert.Equal(t, i, res.Steps[i].Move)
		assert.Equal(t, res.Steps[i-1].Score+res.Steps[i].Gained, res.Steps[i].Score)
	}
	assert.Equal(t, res.FinalScore, res.Steps[len(res.Steps)-1].Score)
}

func TestPlay_RandomRetriesRejectedMoves(t *testing.T) {
	game := engine.NewEngineWithDefaults(engine.WithRand(randutil.New(5)))

	res := Play(context.Background(), game, NewRandomAgent(randutil.New(6)), PlayOptions{})

	assert.Contains(t, []string{StopGameOver, StopNoProgress}, res.StopReason)
	assert.GreaterOrEqual(t, res.Attempts, res.Moves)
	assert.Len(t, res.Steps, res.Moves+1)
}

func TestPlay_MoveLimit(t *testing.T) {
	game := engine.NewEngineWithDefaults(engine.WithRand(randutil.New(3)))

	res := Play(context.Background(), game, NewGreedyAgent(), PlayOptions{MaxMoves: 5})

	assert.Equal(t, StopMoveLimit, res.StopReason)
	assert.Equal(t, 5, res.Moves)
	assert.False(t, res.GameOver)
}

func TestPlay_NoProgress(t *testing.T) {
	game := restored(t, engine.Board{{2, 0}, {0, 0}})

	res := Play(context.Background(), game, fixedAgent{d: engine.Up, ok: true}, PlayOptions{MaxAttempts: 3})

	assert.Equal(t, StopNoProgress, res.StopReason)
	assert.Equal(t, 3, res.Attempts)
	assert.Zero(t, res.Moves)
	assert.Len(t, game.GetMoveHistory(), 3)
}

func TestPlay_NoMoves(t *testing.T) {
	game := restored(t, engine.Board{{2, 0}, {0, 0}})

	res := Play(context.Background(), game, fixedAgent{}, PlayOptions{})

	assert.Equal(t, StopNoMoves, res.StopReason)
	assert.Zero(t, res.Attempts)
	assert.Len(t, res.Steps, 1)
}

func TestPlay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	game := engine.NewEngineWithDefaults()

	res := Play(ctx, game, NewGreedyAgent(), PlayOptions{})

	assert.Equal(t, StopCancelled, res.StopReason)
	assert.Zero(t, res.Moves)
}

func TestPlay_AlreadyOver(t *testing.T) {
	game := restored(t, engine.Board{{2, 4}, {4, 2}})

	res := Play(context.Background(), game, NewGreedyAgent(), PlayOptions{})

	assert.Equal(t, StopGameOver, res.StopReason)
	assert.True(t, res.GameOver)
	assert.Zero(t, res.Attempts)
}
