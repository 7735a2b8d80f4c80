package session

import (
	"time"

	"github.com/wricardo/mcp-training/gridpath/game/engine"
	"github.com/wricardo/mcp-training/gridpath/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// Grids are not stored; they are rebuilt from the seed on load.
type PersistedSessionData struct {
	ID             string              `json:"id"`
	ConfigID       string              `json:"config_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Seed           int64               `json:"seed"`
	Anchor         engine.Position     `json:"anchor"`
	Generation     int                 `json:"generation"`
	PathRequests   int                 `json:"path_requests"`
	Message        string              `json:"message"`
	History        []engine.PathRecord `json:"history"`
}

// persistedData extracts the storable part of a session
func persistedData(session *service.Session) PersistedSessionData {
	state := session.Engine.GetState()
	return PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Seed:           state.Seed,
		Anchor:         state.Anchor,
		Generation:     state.Generation,
		PathRequests:   state.PathRequests,
		Message:        state.Message,
		History:        state.History,
	}
}

// gridState turns persisted data back into an engine state for SetState
func (d PersistedSessionData) gridState() *engine.GridState {
	return &engine.GridState{
		Seed:         d.Seed,
		Anchor:       d.Anchor,
		Generation:   d.Generation,
		PathRequests: d.PathRequests,
		Message:      d.Message,
		History:      d.History,
	}
}
