package engine

import (
	rand "math/rand/v2"

	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

// Spawner places new tiles on empty cells. It is not safe for concurrent use.
type Spawner struct {
	rng             *rand.Rand
	fourProbability float64
}

// NewSpawner returns a spawner drawing from rng. A nil rng is replaced by a
// process-seeded generator.
func NewSpawner(rng *rand.Rand, fourProbability float64) *Spawner {
	if rng == nil {
		rng = randutil.NewRandom()
	}
	return &Spawner{rng: rng, fourProbability: fourProbability}
}

// Spawn returns a copy of b with one new tile on a uniformly chosen empty
// cell: a 4 with the configured probability, otherwise a 2. A full board is
// returned unchanged with a nil Spawn.
func (s *Spawner) Spawn(b Board) (Board, *Spawn) {
	out := b.Clone()
	empty := out.EmptyCells()
	if len(empty) == 0 {
		return out, nil
	}

	pos := empty[s.rng.IntN(len(empty))]
	value := 2
	if s.rng.Float64() < s.fourProbability {
		value = 4
	}
	out[pos.Row][pos.Col] = value

	return out, &Spawn{Row: pos.Row, Col: pos.Col, Value: value}
}
