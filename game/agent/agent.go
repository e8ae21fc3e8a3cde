package agent

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

// Agent kinds accepted by New.
const (
	KindRandom = "random"
	KindGreedy = "greedy"
)

// ErrUnknownAgent is returned by New for an unrecognised kind.
var ErrUnknownAgent = errors.New("unknown agent")

// Agent proposes the next direction for a board. ok is false when the agent
// has no move to offer.
type Agent interface {
	Name() string
	Choose(b engine.BoardReader) (d engine.Direction, ok bool)
}

// New builds the agent registered under kind. rng is only used by agents that
// need randomness; nil gives them a process-seeded generator.
func New(kind string, rng *rand.Rand) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindRandom:
		return NewRandomAgent(rng), nil
	case KindGreedy:
		return NewGreedyAgent(), nil
	}
	return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownAgent, kind, strings.Join(Kinds(), ", "))
}

// Kinds lists the agent kinds New understands.
func Kinds() []string {
	kinds := []string{KindRandom, KindGreedy}
	sort.Strings(kinds)
	return kinds
}

// RandomAgent picks one of the four directions uniformly, whether or not it
// changes the board. Play retries when the pick is rejected.
type RandomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a RandomAgent drawing from rng.
func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	if rng == nil {
		rng = randutil.NewRandom()
	}
	return &RandomAgent{rng: rng}
}

func (a *RandomAgent) Name() string { return KindRandom }

// Choose always proposes a direction.
func (a *RandomAgent) Choose(engine.BoardReader) (engine.Direction, bool) {
	return engine.AllDirections[a.rng.IntN(len(engine.AllDirections))], true
}

// greedyOrder is the evaluation order; earlier directions win ties.
var greedyOrder = []engine.Direction{engine.Left, engine.Right, engine.Up, engine.Down}

// GreedyAgent looks one move ahead and takes the direction with the largest
// immediate merge gain among the directions that change the board.
type GreedyAgent struct{}

// NewGreedyAgent returns a GreedyAgent.
func NewGreedyAgent() *GreedyAgent {
	return &GreedyAgent{}
}

func (GreedyAgent) Name() string { return KindGreedy }

// Choose returns false only when no direction changes the board.
func (GreedyAgent) Choose(b engine.BoardReader) (engine.Direction, bool) {
	board := b.Board()
	best, bestGain := engine.Left, -1
	for _, d := range greedyOrder {
		res := engine.Move(board, d)
		if !res.Changed {
			continue
		}
		if res.Gained > bestGain {
			best, bestGain = d, res.Gained
		}
	}
	return best, bestGain >= 0
}
