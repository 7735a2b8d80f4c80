package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/wricardo/mcp-training/gridpath/game/engine"
	"github.com/wricardo/mcp-training/gridpath/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"gridpath",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`gridpath - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session owns a noise-generated grid of weighted cells. Cell weights run
from 0 (cheap) upwards; high weights are impassable. A* finds the cheapest
path from the session anchor to a target, and the path is then drawn and
cleared cell by cell. The last cell of a path becomes the next anchor.

GRID LEGEND (grid_state):
- 0-9: raw cell weight
- #: impassable cell
- @: anchor (where the next path starts)
- *: cell currently painted by the playback

AVAILABLE TOOLS:
- create_session: Create a new session (optional config_id, seed)
- list_sessions / get_session: Inspect sessions
- grid_state: Render the grid with anchor and painted cells
- find_path: Find a path to (end_x, end_y); a new path is rejected while one is playing
- regenerate: Replace the terrain (optional seed)
- cancel_playback: Abort the current playback
- path_history: Past path requests
- list_configs: Available scenarios
- describe_cell: Weight and status of one cell`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new pathfinding session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
				"seed": integerProperty("Terrain seed (optional, random when omitted)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Pathfinding
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Get the current grid, anchor and playback state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGridState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find the cheapest path to a target cell and start its playback",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"end_x":      integerProperty("Target column"),
				"end_y":      integerProperty("Target row"),
				"start_x":    integerProperty("Start column (optional, defaults to the anchor)"),
				"start_y":    integerProperty("Start row (optional, defaults to the anchor)"),
				"diagonal": map[string]interface{}{
					"type":        "boolean",
					"description": "Allow diagonal moves (optional, overrides the config)",
				},
				"heuristic": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.Manhattan), string(engine.Chebyshev)},
					"description": "Distance heuristic (optional, overrides the config)",
				},
				"drain": map[string]interface{}{
					"type":        "boolean",
					"description": "Run the playback to completion immediately",
				},
			},
			Required: []string{"session_id", "end_x", "end_y"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "regenerate",
		Description: "Replace the session terrain with a newly generated grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"seed":       integerProperty("Terrain seed (optional, random when omitted)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRegenerate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_playback",
		Description: "Abort the current path playback and clear painted cells",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancelPlayback)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "path_history",
		Description: "Get the path request history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page":       integerProperty("Page number (default: 1)"),
				"limit":      integerProperty("Entries per page (default: 20)"),
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default: desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePathHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available scenario configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the weight and status of a specific grid cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x":          integerProperty("Column (0-based)"),
				"y":          integerProperty("Row (0-based)"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
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
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID := cast.ToString(args["session_id"])
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID := cast.ToString(args["config_id"]); configID != "" {
		body["config_id"] = configID
	}
	if seed := cast.ToInt64(args["seed"]); seed != 0 {
		body["seed"] = seed
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
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
		requests := 0
		if s.State != nil {
			requests = s.State.PathRequests
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Paths: %d, Created: %s)\n",
			s.ID, s.ConfigID, requests, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The session carries the weight rules needed to mark impassable cells
	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(info.State, info.Config)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.PathRequest{
		End:       engine.Position{X: cast.ToInt(args["end_x"]), Y: cast.ToInt(args["end_y"])},
		Heuristic: cast.ToString(args["heuristic"]),
		Drain:     cast.ToBool(args["drain"]),
	}
	_, hasX := args["start_x"]
	_, hasY := args["start_y"]
	if hasX || hasY {
		if !hasX || !hasY {
			return mcp.NewToolResultError("start_x and start_y must be given together"), nil
		}
		req.Start = &engine.Position{X: cast.ToInt(args["start_x"]), Y: cast.ToInt(args["start_y"])}
	}
	if raw, ok := args["diagonal"]; ok {
		diagonal := cast.ToBool(raw)
		req.Diagonal = &diagonal
	}

	var resp service.PathResponse
	if err := c.apiCall(ctx, "POST", path, req, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResponse(&resp)), nil
}

func (c *Client) handleRegenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/regenerate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]int64{}
	if seed := cast.ToInt64(args["seed"]); seed != 0 {
		body["seed"] = seed
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GridState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var scenario *engine.ScenarioConfig
	if infoPath, err := sessionPath(args, ""); err == nil {
		var info service.SessionInfo
		if c.apiCall(ctx, "GET", infoPath, nil, &info) == nil {
			scenario = info.Config
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.State, scenario))), nil
}

func (c *Client) handleCancelPlayback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/cancel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.PlaybackResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(result.Commands) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing to cancel. Anchor at %s", result.Playback.Anchor)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Playback cancelled, %d cells cleared. Anchor at %s",
		len(result.Commands), result.Playback.Anchor)), nil
}

func (c *Client) handlePathHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		params.Set("order", order)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
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
	for _, cfg := range configs {
		movement := "4-way"
		if cfg.Diagonal {
			movement = "8-way"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Movement: %s, Heuristic: %s\n\n",
			cfg.ConfigID, cfg.Name, cfg.Description, cfg.Width, cfg.Height, movement, cfg.Heuristic.OrDefault())
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	x, y := cast.ToInt(args["x"]), cast.ToInt(args["y"])
	path, err := sessionPath(args, fmt.Sprintf("/cells/%d/%d", x, y))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var cell engine.CellInfo
	if err := c.apiCall(ctx, "GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

// Formatting

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		info.ID, info.ConfigID,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGridState(info.State, info.Config))
}

func formatGridState(state *engine.GridState, scenario *engine.ScenarioConfig) string {
	if state == nil {
		return "No grid state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d | Seed: %d | Generation: %d | Anchor: %s | Playback: %s | Paths: %d\n\n",
		state.Width, state.Height, state.Seed, state.Generation, state.Anchor,
		state.Playback.State, state.PathRequests)

	rules := engine.DefaultWeightRules()
	if scenario != nil {
		rules = scenario.Weights.OrDefault()
	}
	anchor := state.Anchor
	b.WriteString(engine.RenderASCII(state.Grid, rules, state.Playback.Displayed, &anchor))

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatPathResponse(resp *service.PathResponse) string {
	var b strings.Builder
	if !resp.Found {
		fmt.Fprintf(&b, "No path from %s to %s (%d nodes expanded)\n", resp.Record.Start, resp.Record.End, resp.Expanded)
		if resp.Message != "" {
			fmt.Fprintf(&b, "Message: %s\n", resp.Message)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Path %s -> %s: %d cells, cost %d, %d nodes expanded\n",
		resp.Record.Start, resp.Record.End, resp.Length, resp.Cost, resp.Expanded)

	parts := make([]string, len(resp.Steps))
	for i, step := range resp.Steps {
		parts[i] = fmt.Sprintf("(%d,%d)w%d", step.X, step.Y, step.Weight)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")

	if len(resp.Commands) > 0 {
		fmt.Fprintf(&b, "Playback drained: %d commands, anchor now %s\n", len(resp.Commands), resp.Playback.Anchor)
	} else if resp.Armed {
		fmt.Fprintf(&b, "Playback: %s\n", resp.Playback.State)
	}
	if resp.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", resp.Message)
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path History (Page %d/%d) | Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalRequests)

	for _, record := range history.Requests {
		status := "✓"
		if !record.Found {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s -> %s %s cost %d, length %d, %s\n",
			record.RequestNumber, record.Start, record.End, status,
			record.Cost, record.Length, record.Heuristic.OrDefault())
	}

	return b.String()
}

func formatCell(cell *engine.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d)\n", cell.X, cell.Y)
	fmt.Fprintf(&b, "  Cell weight: %d\n", cell.CellWeight)
	if cell.Traversable {
		fmt.Fprintf(&b, "  Traversal weight: %d\n", cell.Weight)
	} else {
		b.WriteString("  Impassable\n")
	}
	fmt.Fprintf(&b, "  Valid target: %t\n", cell.Targetable)
	if cell.Anchor {
		b.WriteString("  This is the anchor\n")
	}
	if cell.Displayed {
		b.WriteString("  Currently painted by playback\n")
	}
	return b.String()
}
