package api

import (
	"context"
	"encoding/json"
	"io"
	rand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/tilegame/game/config"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/game/service"
	"github.com/wricardo/mcp-training/tilegame/game/session"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
	"github.com/wricardo/mcp-training/tilegame/transport/websocket"
)

type stack struct {
	server   *Server
	sessions *session.Manager
	hub      *websocket.Hub
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := log.New(io.Discard)

	dir := t.TempDir()
	tiny := engine.DefaultConfig(2)
	tiny.Name = "Tiny"
	tiny.FourProbability = 1
	for name, cfg := range map[string]*engine.GameConfig{
		"classic": engine.DefaultConfig(engine.DefaultGridSize),
		"tiny":    tiny,
	} {
		data, err := json.Marshal(cfg)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0644))
	}

	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	var seed int64
	sessions := session.NewManager(session.WithLogger(logger))
	svc := service.NewGameService(sessions, configs,
		service.WithLogger(logger),
		service.WithRandSource(func() *rand.Rand {
			seed++
			return randutil.New(seed)
		}))

	hub := websocket.NewHub(websocket.WithLogger(logger))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	return &stack{
		server:   NewServer(svc, hub, WithLogger(logger)),
		sessions: sessions,
		hub:      hub,
	}
}

func (s *stack) create(t *testing.T, configID string) string {
	t.Helper()
	w := do(s.server, "POST", "/api/sessions", map[string]string{"config_id": configID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info service.SessionInfo
	parseResponse(t, w, &info)
	return info.ID
}

func (s *stack) setBoard(t *testing.T, id string, board engine.Board) {
	t.Helper()
	sess, err := s.sessions.Get(id)
	require.NoError(t, err)
	e, err := engine.Restore(&engine.GameState{Grid: board}, sess.Config, engine.WithRand(randutil.New(7)))
	require.NoError(t, err)
	sess.Engine = e
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	s := newStack(t)

	id := s.create(t, "")
	assert.Len(t, id, 4)

	w := do(s.server, "GET", "/api/sessions/"+strings.ToUpper(id)+"/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state engine.GameState
	parseResponse(t, w, &state)
	assert.Equal(t, engine.DefaultGridSize, state.GridSize)
	assert.Equal(t, 2, engine.DefaultGridSize*engine.DefaultGridSize-state.EmptyCells)
	assert.False(t, state.GameOver)

	assert.Equal(t, http.StatusOK, do(s.server, "DELETE", "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s.server, "GET", "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s.server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "up"}).Code)
}

func TestIntegration_MoveMergesAndSpawns(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "")
	s.setBoard(t, id, engine.Board{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	w := do(s.server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "LEFT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.MoveResult
	parseResponse(t, w, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "left", result.Direction)
	assert.Equal(t, 4, result.Gained)
	assert.Equal(t, 4, result.GameState.Grid[0][0])
	assert.Equal(t, 4, result.GameState.Score)
	require.NotNil(t, result.Spawned)

	w = do(s.server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "diagonal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegration_RejectedMoveKeepsBoard(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "")
	board := engine.Board{
		{2, 0, 0, 0},
		{4, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	s.setBoard(t, id, board)

	w := do(s.server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "left"})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.MoveResult
	parseResponse(t, w, &result)
	assert.False(t, result.Success)
	assert.Nil(t, result.Spawned)
	assert.Equal(t, board, result.GameState.Grid)
	assert.Equal(t, 1, result.GameState.TotalMoves)
	assert.Equal(t, 0, result.GameState.AcceptedMoves)
}

func TestIntegration_AgentMoveOnLockedBoard(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "tiny")
	s.setBoard(t, id, engine.Board{
		{2, 4},
		{4, 2},
	})

	w := do(s.server, "POST", "/api/sessions/"+id+"/ai-move", map[string]string{"agent": "greedy"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.AgentMoveResult
	parseResponse(t, w, &result)
	assert.False(t, result.Moved)
	assert.True(t, result.GameOver)
	assert.True(t, result.GameState.GameOver)
}

func TestIntegration_AutoPlayToGameOver(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "tiny")

	w := do(s.server, "POST", "/api/sessions/"+id+"/auto-play", map[string]interface{}{"agent": "greedy", "new_game": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.AutoPlayResult
	parseResponse(t, w, &result)
	assert.True(t, result.GameOver)
	assert.Equal(t, "game_over", result.StopReason)
	require.NotEmpty(t, result.MoveHistory)
	assert.Equal(t, result.MovesExecuted+1, len(result.MoveHistory))
	assert.Equal(t, result.FinalScore, result.GameState.Score)

	// Terminal is absorbing: further moves change nothing.
	w = do(s.server, "POST", "/api/sessions/"+id+"/bulk-move", map[string]interface{}{"moves": []string{"up", "down"}})
	require.Equal(t, http.StatusOK, w.Code)
	var bulk service.BulkMoveResult
	parseResponse(t, w, &bulk)
	assert.Equal(t, 0, bulk.MovesExecuted)
	assert.Equal(t, "game_over", bulk.StopReasonCode)
	assert.Equal(t, result.FinalScore, bulk.GameState.Score)
}

func TestIntegration_NewGameReplacesBoard(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "")

	w := do(s.server, "GET", "/api/sessions/"+id+"/state", nil)
	var before engine.GameState
	parseResponse(t, w, &before)

	do(s.server, "POST", "/api/sessions/"+id+"/bulk-move", map[string]interface{}{"moves": []string{"left", "up", "right", "down"}})

	w = do(s.server, "POST", "/api/sessions/"+id+"/new-game", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		State engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	assert.NotEqual(t, before.GameID, resp.State.GameID)
	assert.Equal(t, 0, resp.State.Score)
	assert.Equal(t, 0, resp.State.TotalMoves)

	w = do(s.server, "GET", "/api/sessions/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	assert.Equal(t, 0, history.TotalMoves)
}

func TestIntegration_WebSocketReceivesMoves(t *testing.T) {
	s := newStack(t)
	id := s.create(t, "")

	ts := httptest.NewServer(s.server)
	defer ts.Close()

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session="+id, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.ClientCount(id) == 1 }, time.Second, 10*time.Millisecond)

	s.setBoard(t, id, engine.Board{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	w := do(s.server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "left"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message websocket.Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, id, message.SessionID)
	assert.Equal(t, websocket.EventStateUpdate, message.Event)
	require.NotNil(t, message.GameState)
	assert.Equal(t, 2, message.GameState.Grid[0][0])

	resp, err := http.Get(ts.URL + "/ws?session=zz99")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
