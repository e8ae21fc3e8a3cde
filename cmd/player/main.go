// Command player plays against a running tile game server over its REST API.
// A local agent picks every move and the server applies it. Games are
// restarted until one reaches the target tile or the attempts run out.
//
//	go run ./cmd/player --server http://localhost:8080 --agent greedy --target 1024
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

type CLI struct {
	Server   string        `kong:"default='http://localhost:8080',env='TILEGAME_URL',help='Game server base URL'"`
	Config   string        `kong:"help='Configuration ID for the new session (server default when empty)'"`
	Session  string        `kong:"help='Reuse an existing session instead of creating one'"`
	Agent    string        `kong:"default='greedy',enum='greedy,random',help='Agent choosing the moves'"`
	Target   int           `kong:"default='2048',help='Tile value that ends the run successfully'"`
	Attempts int           `kong:"default='10',help='Games to play before giving up'"`
	Seed     int64         `kong:"default='0',help='Seed for the random agent (0 for a random seed)'"`
	Delay    time.Duration `kong:"default='0s',help='Pause between moves, for watching over WebSocket'"`
	Debug    bool          `kong:"default='false',help='Log every move'"`
}

// errTargetMissed is returned when no attempt reached the target tile.
var errTargetMissed = errors.New("target tile not reached")

// GameSummary describes one finished attempt.
type GameSummary struct {
	Attempt  int
	Score    int
	MaxTile  int
	Moves    int
	Rejected int
}

// remoteBoard lets a local agent read the last board the server returned.
type remoteBoard struct {
	state *engine.GameState
}

func (r remoteBoard) Board() engine.Board {
	return r.state.Grid
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("player"),
		kong.Description("Play tile games on a remote server with a local agent"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "player",
	})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	best, err := run(ctx, cli, NewClient(cli.Server), logger)
	if best != nil {
		fmt.Printf("Best game: attempt %d, score %d, max tile %d, %d moves\n", best.Attempt, best.Score, best.MaxTile, best.Moves)
	}
	if err != nil {
		logger.Fatal("run failed", "err", err)
	}
}

// run plays up to cli.Attempts games and returns the best one by max tile,
// then score.
func run(ctx context.Context, cli CLI, c *Client, logger *log.Logger) (*GameSummary, error) {
	seed := cli.Seed
	if seed == 0 {
		seed = randutil.NewRandom().Int64()
	}
	a, err := agent.New(cli.Agent, randutil.New(seed))
	if err != nil {
		return nil, err
	}

	sessionID := cli.Session
	var state *engine.GameState
	if sessionID == "" {
		info, err := c.CreateSession(ctx, cli.Config)
		if err != nil {
			return nil, err
		}
		sessionID, state = info.ID, info.GameState
		logger.Info("created session", "session", sessionID, "config", info.ConfigName)
	} else {
		if state, err = c.State(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	var best *GameSummary
	for attempt := 1; attempt <= cli.Attempts; attempt++ {
		if attempt > 1 || state.GameOver {
			if state, err = c.NewGame(ctx, sessionID); err != nil {
				return best, err
			}
		}

		summary, err := playGame(ctx, c, sessionID, state, a, cli.Delay, logger)
		if err != nil {
			return best, err
		}
		summary.Attempt = attempt
		logger.Info("game finished", "attempt", attempt, "score", summary.Score, "max_tile", summary.MaxTile, "moves", summary.Moves)

		if best == nil || summary.MaxTile > best.MaxTile ||
			(summary.MaxTile == best.MaxTile && summary.Score > best.Score) {
			best = summary
		}
		if summary.MaxTile >= cli.Target {
			logger.Info("target reached", "target", cli.Target, "attempt", attempt)
			return best, nil
		}
	}
	return best, fmt.Errorf("%w: %d after %d attempts", errTargetMissed, cli.Target, cli.Attempts)
}

// playGame sends the agent's moves until the server reports game over.
func playGame(ctx context.Context, c *Client, sessionID string, state *engine.GameState, a agent.Agent, delay time.Duration, logger *log.Logger) (*GameSummary, error) {
	summary := &GameSummary{}
	for !state.GameOver {
		d, ok := a.Choose(remoteBoard{state})
		if !ok {
			break
		}

		result, err := c.Move(ctx, sessionID, d)
		if err != nil {
			return nil, err
		}
		state = result.GameState
		if result.Success {
			summary.Moves++
		} else {
			summary.Rejected++
		}
		logger.Debug("move", "direction", d, "accepted", result.Success, "score", state.Score)

		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	summary.Score = state.Score
	summary.MaxTile = state.MaxTile
	return summary, nil
}
