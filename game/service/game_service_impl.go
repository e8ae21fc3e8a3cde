package service

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
)

const (
	// MaxAutoPlayMoves caps a single auto-play run.
	MaxAutoPlayMoves = 5000
	// MaxBulkMoves caps the directions applied by one bulk move.
	MaxBulkMoves = 50
)

// gameServiceImpl implements the GameService interface. mu serializes all
// access to sessions and their engines, reads included: looking a session up
// stamps its access time.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *log.Logger
	clock    quartz.Clock
	newRand  func() *rand.Rand
	mu       sync.Mutex
}

// Option customizes the game service.
type Option func(*gameServiceImpl)

// WithLogger sets the logger used for persistence warnings and agent runs.
func WithLogger(logger *log.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithClock sets the clock used to time stamp game events.
func WithClock(clock quartz.Clock) Option {
	return func(s *gameServiceImpl) {
		s.clock = clock
	}
}

// WithRandSource supplies the generators handed to new games and random
// agents. Tests use it to make whole sessions reproducible.
func WithRandSource(newRand func() *rand.Rand) Option {
	return func(s *gameServiceImpl) {
		s.newRand = newRand
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.Default(),
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, engine.ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", engine.ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", engine.ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", "session", session.ID, "config", configID, "grid_size", config.GridSize)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Move executes a single move for a session. A move that does not change the
// board is reported with Success false; it is not an error.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	step := sess.Engine.Step(d)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   step.Changed,
		Direction: d.String(),
		Gained:    step.Gained,
		Spawned:   step.Spawned,
		GameOver:  step.GameOver,
		GameState: state,
		Message:   state.Message,
		Events:    stepEvents(s.clock.Now(), d, step, state),
	}

	s.logger.Debug("move", "session", sessionID, "dir", d, "changed", step.Changed, "gained", step.Gained, "score", state.Score)
	s.persist(sessionID, "move")

	return result, nil
}

// BulkMove executes multiple moves in sequence. Every direction is parsed
// before any is applied. Rejected moves do not stop the sequence; the end of
// the game does.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	dirs := make([]engine.Direction, len(moves))
	for i, m := range moves {
		d, err := engine.ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs[i] = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	startScore := sess.Engine.Score()
	result := &BulkMoveResult{
		RequestedMoves: len(dirs),
		Success:        true,
		StartScore:     startScore,
		Steps:          make([]StepInfo, 0, len(dirs)),
	}

	// Limit moves to prevent abuse
	if len(dirs) > MaxBulkMoves {
		result.Truncated = true
		result.Limit = MaxBulkMoves
		dirs = dirs[:MaxBulkMoves]
	}

	for i, d := range dirs {
		if sess.Engine.IsTerminal() {
			result.StoppedReason = fmt.Sprintf("game over before move %d", i+1)
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		step := sess.Engine.Step(d)
		result.MovesAttempted++
		if step.Changed {
			result.MovesExecuted++
		} else {
			result.Success = false
		}
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        d.String(),
			Changed:    step.Changed,
			Gained:     step.Gained,
			ScoreAfter: sess.Engine.Score(),
			Spawned:    step.Spawned,
		})
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.ScoreDelta = endState.Score - startScore
	result.GameOver = endState.GameOver
	result.Message = endState.Message
	result.PossibleMoves = directionNames(sess.Engine.GetPossibleMoves())
	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = "game_over"
	}

	s.logger.Debug("bulk move", "session", sessionID, "executed", result.MovesExecuted, "requested", result.RequestedMoves, "score_delta", result.ScoreDelta)
	s.persist(sessionID, "bulk move")

	return result, nil
}

// AgentMove asks the agent for one proposal and applies it once. A proposal
// that does not change the board is reported with Moved false. When the agent
// has nothing to propose the game is reported as over.
func (s *gameServiceImpl) AgentMove(ctx context.Context, sessionID, agentKind string) (*AgentMoveResult, error) {
	a, err := agent.New(agentKind, s.nextRand())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	result := &AgentMoveResult{Agent: a.Name()}
	if sess.Engine.IsTerminal() {
		result.GameOver = true
		result.GameState = sess.Engine.GetState()
		return result, nil
	}

	d, ok := a.Choose(sess.Engine)
	if !ok {
		result.GameOver = true
		result.GameState = sess.Engine.GetState()
		return result, nil
	}

	step := sess.Engine.Step(d)
	result.Moved = step.Changed
	result.Direction = d.String()
	result.Gained = step.Gained
	result.Spawned = step.Spawned
	result.GameOver = step.GameOver
	result.GameState = sess.Engine.GetState()

	s.logger.Debug("agent move", "session", sessionID, "agent", a.Name(), "moved", result.Moved, "dir", result.Direction)
	s.persist(sessionID, "agent move")

	return result, nil
}

// AutoPlay lets an agent play until the game ends or the move limit is hit.
func (s *gameServiceImpl) AutoPlay(ctx context.Context, sessionID, agentKind string, opts AutoPlayOptions) (*AutoPlayResult, error) {
	a, err := agent.New(agentKind, s.nextRand())
	if err != nil {
		return nil, err
	}
	if opts.MaxMoves <= 0 || opts.MaxMoves > MaxAutoPlayMoves {
		opts.MaxMoves = MaxAutoPlayMoves
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if opts.NewGame {
		if err := s.startNewGame(sess); err != nil {
			return nil, err
		}
	}

	started := s.clock.Now()
	play := agent.Play(ctx, sess.Engine, a, agent.PlayOptions{MaxMoves: opts.MaxMoves})

	s.logger.Info("auto play finished",
		"session", sessionID,
		"agent", a.Name(),
		"moves", play.Moves,
		"score", play.FinalScore,
		"max_tile", play.MaxTile,
		"stop", play.StopReason,
		"elapsed", s.clock.Since(started))
	s.persist(sessionID, "auto play")

	return &AutoPlayResult{
		Agent:         play.Agent,
		StopReason:    play.StopReason,
		MovesExecuted: play.Moves,
		Attempts:      play.Attempts,
		FinalScore:    play.FinalScore,
		MaxTile:       play.MaxTile,
		GameOver:      play.GameOver,
		MoveHistory:   play.Steps,
		GameState:     sess.Engine.GetState(),
	}, nil
}

// NewGame replaces the session's game with a freshly constructed one.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.startNewGame(sess); err != nil {
		return nil, err
	}

	s.persist(sessionID, "new game")
	return sess.Engine.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// lookup fetches a session and marks it as accessed.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn("failed to update last access", "session", sessionID, "err", err)
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

func (s *gameServiceImpl) startNewGame(sess *Session) error {
	var opts []engine.Option
	if rng := s.nextRand(); rng != nil {
		opts = append(opts, engine.WithRand(rng))
	}
	e, err := engine.NewEngine(sess.Config, opts...)
	if err != nil {
		return fmt.Errorf("failed to start new game: %w", err)
	}
	sess.Engine = e
	s.logger.Info("new game", "session", sess.ID, "game", e.GameID())
	return nil
}

// nextRand returns nil unless a source was configured, letting callers fall
// back to their own process-seeded default.
func (s *gameServiceImpl) nextRand() *rand.Rand {
	if s.newRand == nil {
		return nil
	}
	return s.newRand()
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", op, "err", err)
	}
}

// stepEvents describes what one Step did.
func stepEvents(now time.Time, d engine.Direction, step engine.StepResult, state *engine.GameState) []GameEvent {
	var events []GameEvent

	if !step.Changed {
		events = append(events, GameEvent{Type: "rejected", Message: state.Message, Timestamp: now})
	} else {
		events = append(events, GameEvent{Type: "move", Message: fmt.Sprintf("Moved %s", d), Timestamp: now})
		if step.Gained > 0 {
			events = append(events, GameEvent{
				Type:      "merge",
				Message:   fmt.Sprintf("Merged tiles for +%d (score %d)", step.Gained, state.Score),
				Timestamp: now,
			})
		}
		if step.Spawned != nil {
			events = append(events, GameEvent{
				Type:      "spawn",
				Message:   fmt.Sprintf("New %d at (%d,%d)", step.Spawned.Value, step.Spawned.Row, step.Spawned.Col),
				Timestamp: now,
			})
		}
	}

	if step.GameOver {
		events = append(events, GameEvent{Type: "game_over", Message: state.Message, Timestamp: now})
	}
	return events
}

func directionNames(dirs []engine.Direction) []string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return names
}
