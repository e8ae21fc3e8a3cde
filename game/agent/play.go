package agent

import (
	"context"

	"github.com/wricardo/mcp-training/tilegame/game/engine"
)

// DefaultMaxAttempts bounds how often one turn asks the agent again after a
// rejected proposal.
const DefaultMaxAttempts = 10

// Reasons a Play run stops.
const (
	StopGameOver   = "game_over"
	StopNoMoves    = "no_moves"
	StopNoProgress = "no_progress"
	StopMoveLimit  = "move_limit"
	StopCancelled  = "cancelled"
)

// Stepper is the part of a game Play needs.
type Stepper interface {
	engine.BoardReader
	Score() int
	IsTerminal() bool
	Step(d engine.Direction) engine.StepResult
}

// PlayOptions tunes a Play run. Zero values pick the defaults.
type PlayOptions struct {
	MaxAttempts int // proposals per turn, DefaultMaxAttempts when <= 0
	MaxMoves    int // accepted moves before stopping, unlimited when <= 0
}

// PlayStep is one entry of a run's history. The first step has no direction
// and records the starting position.
type PlayStep struct {
	Move      int           `json:"move"`
	Direction string        `json:"direction,omitempty"`
	Gained    int           `json:"gained"`
	Score     int           `json:"score"`
	Board     engine.Board  `json:"board"`
	Spawned   *engine.Spawn `json:"spawned,omitempty"`
}

// PlayResult summarizes a Play run.
type PlayResult struct {
	Agent      string     `json:"agent"`
	Steps      []PlayStep `json:"steps"`
	Moves      int        `json:"moves"`
	Attempts   int        `json:"attempts"`
	FinalScore int        `json:"final_score"`
	MaxTile    int        `json:"max_tile"`
	GameOver   bool       `json:"game_over"`
	StopReason string     `json:"stop_reason"`
}

// Play lets agent a drive game until the game ends, the agent gives up, the move
// limit is reached or ctx is cancelled.
func Play(ctx context.Context, game Stepper, a Agent, opts PlayOptions) PlayResult {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	res := PlayResult{Agent: a.Name()}
	res.Steps = append(res.Steps, PlayStep{Score: game.Score(), Board: game.Board()})

	for {
		if game.IsTerminal() {
			res.StopReason = StopGameOver
			break
		}
		if opts.MaxMoves > 0 && res.Moves >= opts.MaxMoves {
			res.StopReason = StopMoveLimit
			break
		}
		if ctx.Err() != nil {
			res.StopReason = StopCancelled
			break
		}

		reason := turn(game, a, opts.MaxAttempts, &res)
		if reason != "" {
			res.StopReason = reason
			break
		}
	}

	board := game.Board()
	res.FinalScore = game.Score()
	res.MaxTile = board.MaxTile()
	res.GameOver = game.IsTerminal()
	return res
}

// turn asks for proposals until one is accepted. It returns a stop reason
// when the run cannot continue.
func turn(game Stepper, a Agent, maxAttempts int, res *PlayResult) string {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		d, ok := a.Choose(game)
		if !ok {
			return StopNoMoves
		}
		res.Attempts++

		step := game.Step(d)
		if !step.Changed {
			continue
		}
		res.Moves++
		res.Steps = append(res.Steps, PlayStep{
			Move:      res.Moves,
			Direction: d.String(),
			Gained:    step.Gained,
			Score:     game.Score(),
			Board:     game.Board(),
			Spawned:   step.Spawned,
		})
		return ""
	}
	return StopNoProgress
}
