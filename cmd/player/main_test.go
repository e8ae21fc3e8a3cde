package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/tilegame/api"
	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/config"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/game/service"
	"github.com/wricardo/mcp-training/tilegame/game/session"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)

	dir := t.TempDir()
	tiny := engine.DefaultConfig(2)
	tiny.Name = "Tiny"
	for name, cfg := range map[string]*engine.GameConfig{
		"classic": engine.DefaultConfig(4),
		"tiny":    tiny,
	} {
		data, err := json.Marshal(cfg)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0644))
	}

	configs, err := config.NewManager(dir)
	require.NoError(t, err)
	sessions := session.NewManager(session.WithLogger(logger))
	svc := service.NewGameService(sessions, configs, service.WithLogger(logger))

	ts := httptest.NewServer(api.NewServer(svc, nil, api.WithLogger(logger)))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient(t *testing.T) {
	ts := newServer(t)
	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	info, err := c.CreateSession(ctx, "tiny")
	require.NoError(t, err)
	require.NotNil(t, info.GameState)
	assert.Equal(t, 2, info.GameState.GridSize)

	state, err := c.State(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.GameState.Grid, state.Grid)

	result, err := c.Move(ctx, info.ID, engine.Left)
	require.NoError(t, err)
	assert.Equal(t, "left", result.Direction)
	assert.Equal(t, 1, result.GameState.TotalMoves)

	fresh, err := c.NewGame(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.TotalMoves)

	_, err = c.State(ctx, "zz99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
	assert.Contains(t, err.Error(), "(404)")

	_, err = c.CreateSession(ctx, "missing")
	assert.Error(t, err)
}

func TestClient_PlainError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).State(context.Background(), "abcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "boom")
}

func TestRun_ReachesTarget(t *testing.T) {
	ts := newServer(t)

	best, err := run(context.Background(), CLI{
		Agent:    "greedy",
		Target:   4,
		Attempts: 5,
		Seed:     3,
	}, NewClient(ts.URL), log.New(io.Discard))

	require.NoError(t, err)
	require.NotNil(t, best)
	assert.GreaterOrEqual(t, best.MaxTile, 4)
	assert.Positive(t, best.Moves)
}

func TestRun_TargetMissed(t *testing.T) {
	ts := newServer(t)

	best, err := run(context.Background(), CLI{
		Config:   "tiny",
		Agent:    "random",
		Target:   1 << 20,
		Attempts: 2,
		Seed:     5,
	}, NewClient(ts.URL), log.New(io.Discard))

	assert.ErrorIs(t, err, errTargetMissed)
	require.NotNil(t, best)
	assert.Positive(t, best.MaxTile)
}

func TestRun_ReusesSession(t *testing.T) {
	ts := newServer(t)
	c := NewClient(ts.URL)
	ctx := context.Background()

	info, err := c.CreateSession(ctx, "tiny")
	require.NoError(t, err)

	_, err = run(ctx, CLI{
		Session:  info.ID,
		Agent:    "greedy",
		Target:   1 << 20,
		Attempts: 1,
	}, c, log.New(io.Discard))
	assert.ErrorIs(t, err, errTargetMissed)

	state, err := c.State(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, state.GameOver)
}

func TestRun_UnknownAgent(t *testing.T) {
	_, err := run(context.Background(), CLI{Agent: "oracle", Attempts: 1}, NewClient("http://127.0.0.1:1"), log.New(io.Discard))
	assert.ErrorIs(t, err, agent.ErrUnknownAgent)
}
