package service

import (
	"time"

	"github.com/wricardo/mcp-training/gridpath/game/engine"
)

// Event types pushed to subscribers
const (
	EventPaint      = string(engine.CommandPaint)
	EventClear      = string(engine.CommandClear)
	EventAnchor     = string(engine.CommandAnchor)
	EventPath       = "path"
	EventRegenerate = "regenerate"
	EventCancel     = "cancel"
)

// SessionInfo provides information about a pathfinding session
type SessionInfo struct {
	ID             string                 `json:"id"`
	ConfigID       string                 `json:"config_id"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	State          *engine.GridState      `json:"state"`
	Config         *engine.ScenarioConfig `json:"config"`
}

// PathRequest asks for a path in a session. Nil Start uses the session
// anchor; Diagonal and Heuristic override the scenario's movement model.
type PathRequest struct {
	Start     *engine.Position `json:"start,omitempty"`
	End       engine.Position  `json:"end"`
	Diagonal  *bool            `json:"diagonal,omitempty"`
	Heuristic string           `json:"heuristic,omitempty"`
	// Drain runs the playback to completion and returns every command
	Drain bool `json:"drain,omitempty"`
}

// PathResponse contains the result of a path request
type PathResponse struct {
	Found    bool                    `json:"found"`
	Armed    bool                    `json:"armed"`
	Steps    []engine.Step           `json:"steps"`
	Cost     int                     `json:"cost"`
	Length   int                     `json:"length"`
	Expanded int                     `json:"expanded"`
	Record   engine.PathRecord       `json:"record"`
	Message  string                  `json:"message"`
	Commands []engine.Command        `json:"commands,omitempty"`
	Playback engine.PlaybackSnapshot `json:"playback"`
}

// PlaybackResult contains the commands emitted by a tick or cancel
type PlaybackResult struct {
	Commands []engine.Command        `json:"commands"`
	Playback engine.PlaybackSnapshot `json:"playback"`
}

// Event represents something that happened in a session
type Event struct {
	Type      string             `json:"type"` // "paint", "clear", "anchor", "path", "regenerate", "cancel"
	SessionID string             `json:"session_id"`
	Message   string             `json:"message,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Command   *engine.Command    `json:"command,omitempty"`
	Record    *engine.PathRecord `json:"record,omitempty"`
	Grid      engine.Grid        `json:"grid,omitempty"`
	Seed      int64              `json:"seed,omitempty"`
}

// HistoryOptions configures path history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a paginated path request log
type HistoryResponse struct {
	Requests      []engine.PathRecord `json:"requests"`
	TotalRequests int                 `json:"total_requests"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"page_size"`
	TotalPages    int                 `json:"total_pages"`
	HasNext       bool                `json:"has_next"`
	HasPrevious   bool                `json:"has_previous"`
}

// ConfigInfo provides information about a scenario configuration
type ConfigInfo struct {
	Filename    string           `json:"filename"`
	ConfigID    string           `json:"config_id"` // The identifier to use for session creation
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Diagonal    bool             `json:"diagonal"`
	Heuristic   engine.Heuristic `json:"heuristic"`
}
