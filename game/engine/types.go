package engine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Validation constants
	DefaultGridSize        = 4
	MinGridSize            = 2
	MaxGridSize            = 8
	DefaultFourProbability = 0.1
	StartingTiles          = 2
)

var (
	// ErrInvariantViolation signals a board that is not square, has the wrong
	// size, or holds a negative or non-power-of-two tile.
	ErrInvariantViolation = errors.New("board invariant violation")

	// ErrInvalidDirection is returned when a string cannot be parsed into a Direction.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidConfig wraps every GameConfig validation failure.
	ErrInvalidConfig = errors.New("config validation")

	// ErrConfigNotFound is returned when a named config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)

// Direction is one of the four moves a player can make.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// AllDirections lists every direction in declaration order.
var AllDirections = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// ParseDirection converts user input into a Direction. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q (expected up, down, left or right)", ErrInvalidDirection, s)
}

// MarshalText implements encoding.TextMarshaler so directions serialize as words.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Board is a square grid of tile values, indexed [row][col]. Zero is an
// empty cell; every other value is a power of two no smaller than 2.
type Board [][]int

// NewBoard returns an empty size x size board.
func NewBoard(size int) Board {
	b := make(Board, size)
	for i := range b {
		b[i] = make([]int, size)
	}
	return b
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Size returns the number of rows.
func (b Board) Size() int {
	return len(b)
}

// Equal reports whether two boards hold the same values in the same shape.
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if len(b[i]) != len(other[i]) {
			return false
		}
		for j := range b[i] {
			if b[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Position is a cell coordinate on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// EmptyCells returns the positions of all empty cells in row-major order.
func (b Board) EmptyCells() []Position {
	var empty []Position
	for r, row := range b {
		for c, v := range row {
			if v == 0 {
				empty = append(empty, Position{Row: r, Col: c})
			}
		}
	}
	return empty
}

// MaxTile returns the largest tile on the board, or 0 for an empty board.
func (b Board) MaxTile() int {
	best := 0
	for _, row := range b {
		for _, v := range row {
			if v > best {
				best = v
			}
		}
	}
	return best
}

// String renders the board as a bordered text grid.
func (b Board) String() string {
	var sb strings.Builder
	sep := "+" + strings.Repeat("------+", len(b)) + "\n"
	for _, row := range b {
		sb.WriteString(sep)
		for _, v := range row {
			if v == 0 {
				sb.WriteString("|      ")
			} else {
				fmt.Fprintf(&sb, "|%6d", v)
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(sep)
	return sb.String()
}

// MoveResult is the outcome of applying a direction to a board without spawning.
type MoveResult struct {
	Board   Board
	Gained  int
	Changed bool
}

// Spawn records a tile placed by the spawner.
type Spawn struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// StepResult is returned by GameEngine.Step.
type StepResult struct {
	Changed  bool   `json:"changed"`
	Gained   int    `json:"gained"`
	Spawned  *Spawn `json:"spawned,omitempty"`
	GameOver bool   `json:"game_over"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	GridSize        int     `json:"grid_size"`
	FourProbability float64 `json:"four_probability"`
	Messages        struct {
		Welcome  string `json:"welcome"`
		Moved    string `json:"moved"`
		Rejected string `json:"rejected"`
		GameOver string `json:"game_over"`
	} `json:"messages"`
}

// GameState is a serializable snapshot of a game.
type GameState struct {
	GameID        string             `json:"game_id"`
	ConfigName    string             `json:"config_name"`
	GridSize      int                `json:"grid_size"`
	Grid          Board              `json:"grid"`
	Score         int                `json:"score"`
	MaxTile       int                `json:"max_tile"`
	EmptyCells    int                `json:"empty_cells"`
	GameOver      bool               `json:"game_over"`
	Message       string             `json:"message"`
	MoveHistory   []MoveHistoryEntry `json:"move_history"`
	TotalMoves    int                `json:"total_moves"`
	AcceptedMoves int                `json:"accepted_moves"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	MoveNumber int       `json:"move_number"`
	Direction  Direction `json:"direction"`
	Changed    bool      `json:"changed"`
	Gained     int       `json:"gained"`
	ScoreAfter int       `json:"score_after"`
	Spawned    *Spawn    `json:"spawned,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}
