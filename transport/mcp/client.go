package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/game/service"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Merge Game",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Merge Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the tiles on a square grid. Two equal tiles that collide merge into
their sum, and the merged value is added to your score. A new 2 or 4 appears
after every move that changes the board. The game ends when no move can
change the board.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional config_id)
- list_sessions / get_session: Inspect sessions
- game_state: Show the board, score and possible moves
- move: One move (up/down/left/right)
- bulk_move: Several moves in order (stops at game over)
- ai_move: Let the greedy or random agent make one move
- auto_play: Let an agent play until the game ends or a move limit
- new_game: Start over with a fresh board in the same session
- move_history: Page through the session's move log
- list_configs: List board configurations
- game_instructions: Full rules and strategy notes`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID (4 hex characters)",
	}
}

func directionEnum() []string {
	return []string{"up", "down", "left", "right"}
}

func agentProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"greedy", "random"},
		"description": "Agent kind (default greedy)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. classic, mini, grand (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and possible moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in one direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum(),
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence", service.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum(),
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ai_move",
		Description: "Let an agent choose and apply one move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"agent":      agentProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleAgentMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_play",
		Description: "Let an agent play until the game ends or max_moves is reached",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"agent":      agentProperty(),
				"max_moves": map[string]interface{}{
					"type":        "number",
					"description": fmt.Sprintf("Move limit, 0 for no limit (capped at %d)", service.MaxAutoPlayMoves),
				},
				"new_game": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a fresh game first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutoPlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a fresh game in the session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the session's move history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Moves per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest (asc) or newest (desc) first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and strategy notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until the input closes.
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments returns the tool call arguments, or an empty map when absent.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, size, over := 0, 0, false
		if s.GameState != nil {
			score, size, over = s.GameState.Score, s.GameState.GridSize, s.GameState.GameOver
		}
		status := "playing"
		if over {
			status = "game over"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %dx%d, Score: %d, %s, Last used: %s)\n",
			s.ID, s.ConfigName, size, size, score, status, s.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, _ := args["direction"].(string)

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, map[string]string{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/bulk-move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	movesRaw, _ := args["moves"].([]interface{})
	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", path, map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleAgentMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/ai-move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	agentKind, _ := args["agent"].(string)

	var result service.AgentMoveResult
	if err := c.apiCall(ctx, "POST", path, map[string]string{"agent": agentKind}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	switch {
	case result.Moved:
		fmt.Fprintf(&b, "%s agent moved %s (+%d)\n", result.Agent, result.Direction, result.Gained)
	case result.Direction != "":
		fmt.Fprintf(&b, "%s agent tried %s, which did not change the board\n", result.Agent, result.Direction)
	default:
		fmt.Fprintf(&b, "%s agent found no move that changes the board\n", result.Agent)
	}
	b.WriteString("\n" + formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/auto-play")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{}
	if agentKind, ok := args["agent"].(string); ok {
		body["agent"] = agentKind
	}
	if maxMoves, ok := args["max_moves"].(float64); ok {
		body["max_moves"] = int(maxMoves)
	}
	if newGame, ok := args["new_game"].(bool); ok {
		body["new_game"] = newGame
	}

	var result service.AutoPlayResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAutoPlayResult(&result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/new-game")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", strconv.Itoa(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", strconv.Itoa(int(limit)))
	}
	if order, ok := args["order"].(string); ok {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, chance of a 4: %.0f%%\n\n",
			config.Name, config.ConfigID, config.Description,
			config.GridSize, config.GridSize, config.FourProbability*100)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Tile Merge Game - Complete Instructions

GAME OBJECTIVE:
Merge tiles to build the largest tile you can (2048 and beyond) and
maximize your score.

BOARD:
A square grid, 4x4 by default (configs range from 2x2 to 8x8). Every cell
is empty (shown as .) or holds a power of two. A new game starts with two
tiles.

MOVEMENT COMMANDS:
• up, down, left, right: every tile slides as far as it can that way.
• Two equal tiles that meet merge into one tile of double the value.
• A tile produced by a merge does not merge again in the same move.
• When three equal tiles line up, the pair nearest the wall merges first.
  [2,2,2,0] moved left becomes [4,2,0,0].
• [2,2,2,2] moved left becomes [4,4,0,0], not [8,0,0,0].

SCORING:
Each merge adds the value of the new tile to the score. [2,2,4,4] moved
left scores 4 + 8 = 12.

SPAWNING:
After a move that changes the board, one new tile appears in a random
empty cell: a 2 most of the time, otherwise a 4 (the chance depends on the
config). A move that changes nothing is rejected: no tile appears and the
move is recorded as unchanged.

GAME OVER:
The game ends when the board is full and no two neighbouring tiles are
equal. After that every move is rejected; start a new game with new_game.

AGENTS:
• greedy: tries left, right, up, down and takes the move with the largest
  immediate merge score (ties go to the earlier direction).
• random: picks any direction at random; rejected picks are retried.
Use ai_move for one agent move or auto_play to let an agent finish a game.

STRATEGY NOTES:
• Keep your largest tile in a corner and build along one edge.
• Avoid the move that pulls your big tile out of its corner.
• bulk_move stops early when the game ends; check possible_moves.

Good luck!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatBoard renders the grid with right-aligned columns and . for empty cells.
func formatBoard(grid engine.Board) string {
	width := 1
	for _, row := range grid {
		for _, v := range row {
			if w := len(strconv.Itoa(v)); w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		for x, v := range row {
			if x > 0 {
				b.WriteString(" ")
			}
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			fmt.Fprintf(&b, "%*s", width, cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d | Max tile: %d | Empty: %d | Moves: %d (%d accepted)\n\n",
		state.Score, state.MaxTile, state.EmptyCells, state.TotalMoves, state.AcceptedMoves)
	b.WriteString(formatBoard(state.Grid))

	if state.GameOver {
		b.WriteString("\nGAME OVER")
	} else if moves := possibleMoves(state.Grid); len(moves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s", strings.Join(moves, ", "))
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

// possibleMoves lists the directions that would change grid.
func possibleMoves(grid engine.Board) []string {
	if len(grid) == 0 {
		return nil
	}
	var moves []string
	for _, d := range engine.AllDirections {
		if engine.Move(grid, d).Changed {
			moves = append(moves, d.String())
		}
	}
	return moves
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Moved %s (+%d)\n", result.Direction, result.Gained)
	} else {
		fmt.Fprintf(&b, "✗ Move %s did not change the board\n", result.Direction)
	}
	if result.Spawned != nil {
		fmt.Fprintf(&b, "New tile: %d at row %d, col %d\n", result.Spawned.Value, result.Spawned.Row, result.Spawned.Col)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Executed %d/%d moves (%d attempted)", result.MovesExecuted, result.RequestedMoves, result.MovesAttempted)
	if result.Truncated {
		fmt.Fprintf(&b, ", truncated to %d", result.Limit)
	}
	fmt.Fprintf(&b, "\nScore: %d → %d (+%d)\n", result.StartScore, result.StartScore+result.ScoreDelta, result.ScoreDelta)

	if len(result.Steps) > 0 {
		b.WriteString("Steps:\n")
		for _, s := range result.Steps {
			mark := "✓"
			if !s.Changed {
				mark = "✗"
			}
			fmt.Fprintf(&b, "  %2d. %-5s %s +%d score=%d\n", s.Idx, s.Dir, mark, s.Gained, s.ScoreAfter)
		}
	}

	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatAutoPlayResult(result *service.AutoPlayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s agent played %d moves (%d attempts), stopped: %s\n",
		result.Agent, result.MovesExecuted, result.Attempts, result.StopReason)
	fmt.Fprintf(&b, "Final score: %d | Max tile: %d\n", result.FinalScore, result.MaxTile)

	// Only the tail of long runs is shown.
	const tail = 10
	steps := result.MoveHistory
	if len(steps) > tail {
		fmt.Fprintf(&b, "Last %d of %d steps:\n", tail, len(steps))
		steps = steps[len(steps)-tail:]
	} else if len(steps) > 0 {
		b.WriteString("Steps:\n")
	}
	for _, s := range steps {
		dir := s.Direction
		if dir == "" {
			dir = "start"
		}
		fmt.Fprintf(&b, "  %4d. %-5s +%d score=%d\n", s.Move, dir, s.Gained, s.Score)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d of %d, %d total moves):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, m := range history.Moves {
		status := "✓"
		if !m.Changed {
			status = "✗"
		}
		fmt.Fprintf(&b, "%4d. %-5s %s +%d score=%d", m.MoveNumber, m.Direction, status, m.Gained, m.ScoreAfter)
		if m.Spawned != nil {
			fmt.Fprintf(&b, " spawn=%d@(%d,%d)", m.Spawned.Value, m.Spawned.Row, m.Spawned.Col)
		}
		b.WriteString("\n")
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page.")
	}
	return b.String()
}
