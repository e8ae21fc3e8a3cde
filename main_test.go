package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tilegame/api"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
)

func testOptions(t *testing.T) options {
	t.Helper()
	return options{
		host:        "localhost",
		port:        8080,
		configDir:   "configs",
		sessionsDir: t.TempDir(),
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Tile Merge Game Server", AppName)
}

func TestCommand_Flags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var got options
		cmd := newCommand()
		cmd.Action = func(ctx context.Context, c *cli.Command) error {
			got = optionsFrom(c)
			return nil
		}
		require.NoError(t, cmd.Run(context.Background(), []string{"tilegame"}))

		assert.Equal(t, "localhost", got.host)
		assert.Equal(t, 8080, got.port)
		assert.Equal(t, "configs", got.configDir)
		assert.Equal(t, "sessions", got.sessionsDir)
		assert.False(t, got.debug)
		assert.False(t, got.ngrokEnabled)
		assert.Equal(t, "localhost:8080", got.addr())
	})

	t.Run("flags and environment", func(t *testing.T) {
		t.Setenv("CONFIG_DIR", "/srv/configs")
		t.Setenv("NGROK_AUTH_TOKEN", "secret")

		var got options
		cmd := newCommand()
		cmd.Action = func(ctx context.Context, c *cli.Command) error {
			got = optionsFrom(c)
			return nil
		}
		require.NoError(t, cmd.Run(context.Background(), []string{"tilegame", "--port", "9090", "--host", "0.0.0.0", "--ngrok"}))

		assert.Equal(t, "0.0.0.0:9090", got.addr())
		assert.Equal(t, "/srv/configs", got.configDir)
		assert.True(t, got.ngrokEnabled)
		assert.Equal(t, "secret", got.ngrokAuth)
	})
}

func TestCommand_UnknownMode(t *testing.T) {
	err := newCommand().Run(context.Background(), []string{"tilegame", "--config-dir", "configs", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "bogus"`)
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svcs, err := initializeServices(testOptions(t), discardLogger())
	require.NoError(t, err)
	require.NotNil(t, svcs.game)

	configs, err := svcs.game.ListConfigs(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(configs), 3)
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t)
	opts.configDir = "/non/existent/path"

	_, err := initializeServices(opts, discardLogger())
	assert.Error(t, err)
}

func TestInitializeServices_ReloadsPersistedSessions(t *testing.T) {
	opts := testOptions(t)

	first, err := initializeServices(opts, discardLogger())
	require.NoError(t, err)
	info, err := first.game.CreateSession(context.Background(), "mini")
	require.NoError(t, err)

	second, err := initializeServices(opts, discardLogger())
	require.NoError(t, err)
	state, err := second.game.GetGameState(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.GridSize)
}

func TestSessionCleanup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	svcs, err := newServices(testOptions(t), mClock, discardLogger())
	require.NoError(t, err)

	_, err = svcs.sessions.Create("", engine.DefaultConfig(4))
	require.NoError(t, err)

	loopCtx, stop := context.WithCancel(ctx)
	w := svcs.sessionCleanup(loopCtx)

	// Idle for exactly the max age is not yet expired.
	for i := 0; i < int(sessionMaxAge/cleanupInterval); i++ {
		mClock.Advance(cleanupInterval).MustWait(ctx)
	}
	assert.Equal(t, 1, svcs.sessions.Count())

	mClock.Advance(cleanupInterval).MustWait(ctx)
	assert.Equal(t, 0, svcs.sessions.Count())

	stop()
	assert.ErrorIs(t, w.Wait(), context.Canceled)
}

func TestFilesystemSync(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := testOptions(t)
	mClock := quartz.NewMock(t)
	svcs, err := newServices(opts, mClock, discardLogger())
	require.NoError(t, err)

	kept, err := svcs.sessions.Create("", engine.DefaultConfig(4))
	require.NoError(t, err)
	removed, err := svcs.sessions.Create("", engine.DefaultConfig(4))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(opts.sessionsDir, removed.ID+".json")))

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	svcs.filesystemSync(loopCtx)

	mClock.Advance(fsSyncInterval).MustWait(ctx)

	assert.Equal(t, 1, svcs.sessions.Count())
	_, err = svcs.sessions.Get(kept.ID)
	assert.NoError(t, err)
	assert.Zero(t, svcs.pruneOrphans())
}

func TestRouter(t *testing.T) {
	svcs, err := initializeServices(testOptions(t), discardLogger())
	require.NoError(t, err)

	apiServer := api.NewServer(svcs.game, nil, api.WithLogger(discardLogger()))
	ts := httptest.NewServer(newRouter(apiServer, "http://127.0.0.1:1", discardLogger()))
	defer ts.Close()

	t.Run("api is mounted at root", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("mcp initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reply struct {
			Result struct {
				ServerInfo struct {
					Name string `json:"name"`
				} `json:"serverInfo"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
		assert.Equal(t, "Tile Merge Game", reply.Result.ServerInfo.Name)
	})

	t.Run("mcp notification", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("mcp requires POST", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/mcp")
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotEqual(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	assert.True(t, apiAvailable(context.Background(), healthy.URL))
	assert.False(t, apiAvailable(context.Background(), "http://127.0.0.1:1"))
}
