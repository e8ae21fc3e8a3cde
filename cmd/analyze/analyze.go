package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// GameOutcome is the result of one seeded game.
type GameOutcome struct {
	Seed     int64
	Score    int
	MaxTile  int
	Moves    int
	GameOver bool
	Reason   string
}

// Summary aggregates the outcomes of one agent on one configuration.
type Summary struct {
	Config     string      `json:"config"`
	GridSize   int         `json:"grid_size"`
	Agent      string      `json:"agent"`
	Games      int         `json:"games"`
	MeanScore  float64     `json:"mean_score"`
	MinScore   int         `json:"min_score"`
	MaxScore   int         `json:"max_score"`
	MeanMoves  float64     `json:"mean_moves"`
	BestTile   int         `json:"best_tile"`
	TileCounts map[int]int `json:"tile_counts"` // games per highest tile reached
	Finished   int         `json:"finished"`    // games that reached a locked board
}

// Job describes a batch of games for one configuration and agent.
type Job struct {
	ConfigID string
	Config   *engine.GameConfig
	Agent    string
	Games    int
	Seed     int64
	MaxMoves int
}

// playGame runs one game of job with the given seed. The engine and the agent
// draw from separate generators so random agents do not perturb spawns.
func playGame(ctx context.Context, job Job, seed int64) (GameOutcome, error) {
	game, err := engine.NewEngine(job.Config, engine.WithRand(randutil.New(seed)))
	if err != nil {
		return GameOutcome{}, err
	}
	a, err := agent.New(job.Agent, randutil.New(^seed))
	if err != nil {
		return GameOutcome{}, err
	}

	res := agent.Play(ctx, game, a, agent.PlayOptions{MaxMoves: job.MaxMoves})
	return GameOutcome{
		Seed:     seed,
		Score:    res.FinalScore,
		MaxTile:  res.MaxTile,
		Moves:    res.Moves,
		GameOver: res.GameOver,
		Reason:   res.StopReason,
	}, nil
}

// Run plays every game of job on up to workers goroutines. Game i uses seed
// job.Seed+i, so results do not depend on the worker count.
func Run(ctx context.Context, job Job, workers int) (*Summary, error) {
	if job.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", job.Games)
	}
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]GameOutcome, job.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < job.Games; i++ {
		g.Go(func() error {
			out, err := playGame(ctx, job, job.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(job, outcomes), nil
}

func summarize(job Job, outcomes []GameOutcome) *Summary {
	s := &Summary{
		Config:     job.ConfigID,
		GridSize:   job.Config.GridSize,
		Agent:      job.Agent,
		Games:      len(outcomes),
		TileCounts: make(map[int]int),
	}
	if len(outcomes) == 0 {
		return s
	}

	totalScore, totalMoves := 0, 0
	s.MinScore = outcomes[0].Score
	for _, o := range outcomes {
		totalScore += o.Score
		totalMoves += o.Moves
		s.MinScore = min(s.MinScore, o.Score)
		s.MaxScore = max(s.MaxScore, o.Score)
		s.BestTile = max(s.BestTile, o.MaxTile)
		s.TileCounts[o.MaxTile]++
		if o.GameOver {
			s.Finished++
		}
	}
	s.MeanScore = float64(totalScore) / float64(len(outcomes))
	s.MeanMoves = float64(totalMoves) / float64(len(outcomes))
	return s
}

// WriteTable prints one row per summary followed by each summary's max tile
// distribution.
func WriteTable(out io.Writer, summaries []*Summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFIG\tSIZE\tAGENT\tGAMES\tMEAN SCORE\tMIN\tMAX\tMEAN MOVES\tBEST TILE\tFINISHED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%d\t%.1f\t%d\t%d\t%.1f\t%d\t%d/%d\n",
			s.Config, s.GridSize, s.GridSize, s.Agent, s.Games,
			s.MeanScore, s.MinScore, s.MaxScore, s.MeanMoves, s.BestTile, s.Finished, s.Games)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, s := range summaries {
		fmt.Fprintf(out, "\n%s / %s max tile: %s\n", s.Config, s.Agent, formatTileCounts(s.TileCounts, s.Games))
	}
	return nil
}

func formatTileCounts(counts map[int]int, games int) string {
	tiles := make([]int, 0, len(counts))
	for tile := range counts {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))

	parts := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		parts = append(parts, fmt.Sprintf("%d=%.0f%%", tile, 100*float64(counts[tile])/float64(games)))
	}
	return strings.Join(parts, " ")
}
