package service

import (
	"time"

	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"` // true when the move changed the board
	Direction string            `json:"direction"`
	Gained    int               `json:"gained"`
	Spawned   *engine.Spawn     `json:"spawned,omitempty"`
	GameOver  bool              `json:"game_over"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	RequestedMoves int  `json:"requested_moves"`
	MovesExecuted  int  `json:"moves_executed"` // moves that changed the board
	MovesAttempted int  `json:"moves_attempted"`
	Success        bool `json:"success"` // false when any attempted move was rejected
	Truncated      bool `json:"truncated,omitempty"`
	Limit          int  `json:"limit,omitempty"`

	StartScore int        `json:"start_score"`
	ScoreDelta int        `json:"score_delta"`
	Steps      []StepInfo `json:"steps"`

	// StopReasonCode is game_over when the game ended before all moves ran.
	StoppedReason  string `json:"stopped_reason,omitempty"`
	StopReasonCode string `json:"stop_reason_code,omitempty"`
	StoppedOnMove  int    `json:"stopped_on_move,omitempty"`

	GameOver      bool              `json:"game_over"`
	Message       string            `json:"message,omitempty"`
	PossibleMoves []string          `json:"possible_moves"`
	GameState     *engine.GameState `json:"game_state"`
}

// StepInfo is a compact record for each attempted move in a bulk call
type StepInfo struct {
	Idx        int           `json:"idx"`
	Dir        string        `json:"dir"`
	Changed    bool          `json:"changed"`
	Gained     int           `json:"gained"`
	ScoreAfter int           `json:"score_after"`
	Spawned    *engine.Spawn `json:"spawned,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "rejected", "merge", "spawn", "game_over", "new_game"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentMoveResult is the outcome of letting an agent make one move.
type AgentMoveResult struct {
	Agent     string            `json:"agent"`
	Moved     bool              `json:"moved"`
	Direction string            `json:"direction,omitempty"`
	Gained    int               `json:"gained"`
	Spawned   *engine.Spawn     `json:"spawned,omitempty"`
	GameOver  bool              `json:"game_over"`
	GameState *engine.GameState `json:"game_state"`
}

// AutoPlayOptions configures an auto-play run.
type AutoPlayOptions struct {
	MaxMoves int  `json:"max_moves"` // 0 plays until the game ends
	NewGame  bool `json:"new_game"`  // start from a fresh board first
}

// AutoPlayResult summarizes an auto-play run and carries its move history.
type AutoPlayResult struct {
	Agent         string            `json:"agent"`
	StopReason    string            `json:"stop_reason"`
	MovesExecuted int               `json:"moves_executed"`
	Attempts      int               `json:"attempts"`
	FinalScore    int               `json:"final_score"`
	MaxTile       int               `json:"max_tile"`
	GameOver      bool              `json:"game_over"`
	MoveHistory   []agent.PlayStep  `json:"move_history"`
	GameState     *engine.GameState `json:"game_state"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string  `json:"filename"`
	ConfigID        string  `json:"config_id"` // The identifier to use for session creation
	Name            string  `json:"name"`      // Display name
	Description     string  `json:"description"`
	GridSize        int     `json:"grid_size"`
	FourProbability float64 `json:"four_probability"`
}
