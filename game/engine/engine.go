package engine

import (
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	GameID() string
	Board() Board
	Score() int
	IsTerminal() bool

	// Movement operations
	Step(d Direction) StepResult
	CanMove(d Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// BoardReader is the read-only view agents need to choose a move.
type BoardReader interface {
	Board() Board
}

// Option customizes a GameEngine.
type Option func(*options)

type options struct {
	rng *rand.Rand
	now func() time.Time
}

// WithRand makes the engine spawn tiles from rng, which makes games
// reproducible when rng is seeded.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithNow overrides the clock used to timestamp history entries.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// GameEngine implements the Engine interface. It holds no lock; callers that
// share one engine across goroutines must serialize access themselves.
type GameEngine struct {
	id       string
	config   *GameConfig
	grid     *GridState
	spawner  *Spawner
	terminal bool
	message  string
	history  []MoveHistoryEntry
	accepted int
	now      func() time.Time
}

// NewEngine creates a game from config and seeds it with two tiles.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := newGameEngine(config, opts)
	for i := 0; i < StartingTiles; i++ {
		e.spawn()
	}
	e.terminal = IsTerminal(e.grid.view())
	e.message = config.Messages.Welcome
	if e.message == "" {
		e.message = defaultWelcome
	}

	return e, nil
}

// NewEngineWithDefaults creates a game on a 4x4 board with the default rules.
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(DefaultGridSize), opts...)
	if err != nil {
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return e
}

// Restore rebuilds an engine from a snapshot. The grid is validated against
// the config and the game-over flag is recomputed from the board.
func Restore(state *GameState, config *GameConfig, opts ...Option) (*GameEngine, error) {
	if state == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if state.Score < 0 {
		return nil, fmt.Errorf("%w: negative score %d", ErrInvariantViolation, state.Score)
	}

	e := newGameEngine(config, opts)
	if err := e.grid.Replace(state.Grid); err != nil {
		return nil, err
	}
	e.grid.addScore(state.Score)
	if state.GameID != "" {
		e.id = state.GameID
	}
	e.history = append([]MoveHistoryEntry(nil), state.MoveHistory...)
	e.accepted = state.AcceptedMoves
	e.message = state.Message
	e.terminal = IsTerminal(e.grid.view())

	return e, nil
}

func newGameEngine(config *GameConfig, opts []Option) *GameEngine {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &GameEngine{
		id:      uuid.NewString(),
		config:  config,
		grid:    NewGridState(config.GridSize),
		spawner: NewSpawner(o.rng, config.FourProbability),
		history: []MoveHistoryEntry{},
		now:     o.now,
	}
}

// GameID identifies this game. A new game always gets a new ID.
func (e *GameEngine) GameID() string {
	return e.id
}

// Board returns a copy of the current board.
func (e *GameEngine) Board() Board {
	return e.grid.Board()
}

// Score returns the current score
func (e *GameEngine) Score() int {
	return e.grid.Score()
}

// IsTerminal reports whether the game is over.
func (e *GameEngine) IsTerminal() bool {
	return e.terminal
}

// Step applies d to the board. The state changes only when the move changes
// the board: the score grows by the merge gain, one tile is spawned and the
// terminal flag is recomputed. A rejected move is not an error.
func (e *GameEngine) Step(d Direction) StepResult {
	if !d.Valid() {
		return StepResult{GameOver: e.terminal}
	}
	if e.terminal {
		return e.reject(d)
	}

	res := Move(e.grid.view(), d)
	if !res.Changed {
		return e.reject(d)
	}

	e.mustReplace(res.Board)
	e.grid.addScore(res.Gained)
	spawned := e.spawn()
	e.terminal = IsTerminal(e.grid.view())
	e.accepted++

	if e.terminal {
		e.message = formatMessage(e.config.Messages.GameOver, defaultGameOver, e.grid.Score())
	} else {
		e.message = formatMessage(e.config.Messages.Moved, defaultMoved, d)
	}
	e.record(d, true, res.Gained, spawned)

	return StepResult{
		Changed:  true,
		Gained:   res.Gained,
		Spawned:  spawned,
		GameOver: e.terminal,
	}
}

// CanMove reports whether d would change the board.
func (e *GameEngine) CanMove(d Direction) bool {
	if e.terminal || !d.Valid() {
		return false
	}
	return Move(e.grid.view(), d).Changed
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, d := range AllDirections {
		if e.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// BulkMove applies moves in order and stops once the game is over.
func (e *GameEngine) BulkMove(moves []Direction) []StepResult {
	results := make([]StepResult, 0, len(moves))
	for _, d := range moves {
		if e.terminal {
			break
		}
		results = append(results, e.Step(d))
	}
	return results
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry(nil), e.history...)
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

// GetState returns a deep copy of the current game state.
func (e *GameEngine) GetState() *GameState {
	board := e.grid.Board()
	return &GameState{
		GameID:        e.id,
		ConfigName:    e.config.Name,
		GridSize:      e.grid.Size(),
		Grid:          board,
		Score:         e.grid.Score(),
		MaxTile:       board.MaxTile(),
		EmptyCells:    len(board.EmptyCells()),
		GameOver:      e.terminal,
		Message:       e.message,
		MoveHistory:   e.GetMoveHistory(),
		TotalMoves:    len(e.history),
		AcceptedMoves: e.accepted,
	}
}

func (e *GameEngine) reject(d Direction) StepResult {
	if e.terminal {
		e.message = formatMessage(e.config.Messages.GameOver, defaultGameOver, e.grid.Score())
	} else {
		e.message = formatMessage(e.config.Messages.Rejected, defaultRejected, d)
	}
	e.record(d, false, 0, nil)
	return StepResult{GameOver: e.terminal}
}

func (e *GameEngine) spawn() *Spawn {
	board, spawned := e.spawner.Spawn(e.grid.view())
	if spawned != nil {
		e.mustReplace(board)
	}
	return spawned
}

// mustReplace installs a board produced by the engine itself. A failure here
// is a bug in the move or spawn code, not a recoverable condition.
func (e *GameEngine) mustReplace(b Board) {
	if err := e.grid.Replace(b); err != nil {
		panic(err)
	}
}

func (e *GameEngine) record(d Direction, changed bool, gained int, spawned *Spawn) {
	e.history = append(e.history, MoveHistoryEntry{
		MoveNumber: len(e.history) + 1,
		Direction:  d,
		Changed:    changed,
		Gained:     gained,
		ScoreAfter: e.grid.Score(),
		Spawned:    spawned,
		Timestamp:  e.now().Unix(),
	})
}
