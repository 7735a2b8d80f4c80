package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/gridpath/game/engine"
)

// PathService defines all pathfinding operations exposed to transports
type PathService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string, seed int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Pathfinding
	FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResponse, error)
	Regenerate(ctx context.Context, sessionID string, seed int64) (*engine.GridState, error)

	// Playback
	Tick(ctx context.Context, sessionID string, now time.Duration) (*PlaybackResult, error)
	TickAll(ctx context.Context) int
	CancelPlayback(ctx context.Context, sessionID string) (*PlaybackResult, error)

	// Grid State
	GetGridState(ctx context.Context, sessionID string) (*engine.GridState, error)
	DescribeCell(ctx context.Context, sessionID string, x, y int) (*engine.CellInfo, error)
	GetPathHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.ScenarioConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.ScenarioConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.ScenarioConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles scenario configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.ScenarioConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.ScenarioConfig
	SaveConfig(name string, config *engine.ScenarioConfig) error
}

// EventPublisher receives session events, typically to push them to clients
type EventPublisher interface {
	Publish(event Event)
}

// Session represents an active pathfinding session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.PathEngine
	Config         *engine.ScenarioConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
