// Command analyze plays seeded batches of games with the built-in agents and
// reports score and max tile statistics per configuration.
//
//	go run ./cmd/analyze --games 200 --agents greedy,random --configs classic,mini
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/wricardo/mcp-training/tilegame/game/config"
)

type CLI struct {
	ConfigDir string   `kong:"default='configs',help='Directory containing game configurations'"`
	Configs   []string `kong:"help='Configuration IDs to analyze (default: all)'"`
	Agents    []string `kong:"default='greedy,random',help='Agents to run'"`
	Games     int      `kong:"default='100',help='Games per configuration and agent'"`
	Seed      int64    `kong:"default='1',help='Seed of the first game'"`
	MaxMoves  int      `kong:"default='0',help='Accepted moves per game before stopping (0 for no limit)'"`
	Workers   int      `kong:"default='0',help='Concurrent games (0 for one per CPU)'"`
	JSON      bool     `kong:"name='json',help='Print summaries as JSON'"`
	Debug     bool     `kong:"default='false',help='Show debug logs'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("analyze"),
		kong.Description("Play seeded tile games with the built-in agents and summarize the results"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "analyze",
	})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, os.Stdout, logger); err != nil {
		logger.Fatal("analysis failed", "err", err)
	}
}

func run(ctx context.Context, cli CLI, out io.Writer, logger *log.Logger) error {
	jobs, err := buildJobs(cli)
	if err != nil {
		return err
	}

	workers := cli.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	summaries := make([]*Summary, 0, len(jobs))
	for _, job := range jobs {
		start := time.Now()
		summary, err := Run(ctx, job, workers)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", job.ConfigID, job.Agent, err)
		}
		logger.Debug("batch finished", "config", job.ConfigID, "agent", job.Agent, "games", job.Games, "elapsed", time.Since(start))
		summaries = append(summaries, summary)
	}

	if cli.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	return WriteTable(out, summaries)
}

// buildJobs expands the CLI into one job per configuration and agent. Every
// job starts from the same seed so agents face the same spawn sequences.
func buildJobs(cli CLI) ([]Job, error) {
	manager, err := config.NewManager(cli.ConfigDir)
	if err != nil {
		return nil, err
	}

	ids := cli.Configs
	if len(ids) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			ids = append(ids, info.ConfigID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no configurations found in %s", cli.ConfigDir)
	}

	var jobs []Job
	for _, id := range ids {
		cfg, err := manager.LoadConfig(id)
		if err != nil {
			return nil, err
		}
		for _, kind := range cli.Agents {
			jobs = append(jobs, Job{
				ConfigID: id,
				Config:   cfg,
				Agent:    kind,
				Games:    cli.Games,
				Seed:     cli.Seed,
				MaxMoves: cli.MaxMoves,
			})
		}
	}
	return jobs, nil
}
