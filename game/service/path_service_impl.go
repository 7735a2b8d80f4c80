package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/gridpath/game/engine"
	"github.com/wricardo/mcp-training/gridpath/internal/log"
)

// ErrUnknownHeuristic is returned when a path request names an unsupported heuristic
var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Option configures a path service
type Option func(*pathServiceImpl)

// WithEvents sends session events to the publisher
func WithEvents(events EventPublisher) Option {
	return func(s *pathServiceImpl) {
		s.events = events
	}
}

// WithClock replaces the playback clock. The clock returns the time elapsed
// since an arbitrary fixed origin.
func WithClock(clock func() time.Duration) Option {
	return func(s *pathServiceImpl) {
		s.clock = clock
	}
}

// pathServiceImpl implements the PathService interface
type pathServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	events   EventPublisher
	clock    func() time.Duration
	mu       sync.RWMutex
	// pubMu is taken before mu is released so events leave in lock order
	pubMu sync.Mutex
}

// NewPathService creates a new path service instance
func NewPathService(sessions SessionManager, configs ConfigManager, opts ...Option) PathService {
	started := time.Now()
	s := &pathServiceImpl{
		sessions: sessions,
		configs:  configs,
		clock:    func() time.Duration { return time.Since(started) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new pathfinding session
func (s *pathServiceImpl) CreateSession(ctx context.Context, configID string, seed int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.ScenarioConfig
	var err error
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configID, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configID, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = config.Name
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *pathServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *pathServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
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
func (s *pathServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// FindPath searches for a path from the session anchor (or an explicit start)
// and arms the session playback with it
func (s *pathServiceImpl) FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResponse, error) {
	s.mu.Lock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	engReq := engine.PathRequest{Start: req.Start, End: req.End}
	if req.Diagonal != nil || req.Heuristic != "" {
		opts := sess.Config.SearchOptions()
		if req.Diagonal != nil {
			opts.Diagonal = *req.Diagonal
		}
		if req.Heuristic != "" {
			opts.Heuristic = engine.Heuristic(strings.ToLower(req.Heuristic))
			if !opts.Heuristic.Valid() {
				s.mu.Unlock()
				return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, req.Heuristic)
			}
		}
		engReq.Options = &opts
	}

	outcome, err := sess.Engine.RequestPath(ctx, engReq)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	result := &PathResponse{
		Found:    outcome.Result.Found(),
		Armed:    outcome.Armed,
		Steps:    outcome.Result.Steps,
		Cost:     outcome.Result.Cost,
		Length:   len(outcome.Result.Steps),
		Expanded: outcome.Result.Expanded,
		Record:   outcome.Record,
		Message:  outcome.Message,
	}

	record := outcome.Record
	events := []Event{{
		Type:      EventPath,
		SessionID: sess.ID,
		Message:   outcome.Message,
		Timestamp: time.Now(),
		Record:    &record,
	}}

	if req.Drain && outcome.Armed {
		result.Commands = sess.Engine.Drain(s.clock())
		events = append(events, commandEvents(sess.ID, result.Commands)...)
	}
	result.Playback = sess.Engine.GetState().Playback

	// Auto-save session after path request
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after path request: %v", sessionID, err)
	}

	s.unlockAndPublish(events)

	return result, nil
}

// Regenerate replaces the session grid with fresh terrain
func (s *pathServiceImpl) Regenerate(ctx context.Context, sessionID string, seed int64) (*engine.GridState, error) {
	s.mu.Lock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state, err := sess.Engine.Regenerate(seed)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// Auto-save session after regeneration
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after regenerate: %v", sessionID, err)
	}

	event := Event{
		Type:      EventRegenerate,
		SessionID: sess.ID,
		Message:   state.Message,
		Timestamp: time.Now(),
		Grid:      state.Grid,
		Seed:      state.Seed,
	}

	s.unlockAndPublish([]Event{event})

	return state, nil
}

// Tick advances one session's playback. A zero now uses the service clock.
func (s *pathServiceImpl) Tick(ctx context.Context, sessionID string, now time.Duration) (*PlaybackResult, error) {
	s.mu.Lock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}

	if now <= 0 {
		now = s.clock()
	}

	result := &PlaybackResult{Commands: []engine.Command{}}
	wasIdle := sess.Engine.IsIdle()
	if cmd, ok := sess.Engine.Tick(now); ok {
		result.Commands = append(result.Commands, cmd)
	}
	result.Playback = sess.Engine.GetState().Playback

	if !wasIdle && sess.Engine.IsIdle() {
		if err := s.sessions.Save(sessionID); err != nil {
			log.Warnf("Failed to persist session %s after playback: %v", sessionID, err)
		}
	}

	s.unlockAndPublish(commandEvents(sess.ID, result.Commands))

	return result, nil
}

// TickAll advances the playback of every session once and returns the number
// of commands emitted
func (s *pathServiceImpl) TickAll(ctx context.Context) int {
	s.mu.Lock()

	now := s.clock()
	var events []Event
	for _, sess := range s.sessions.List() {
		if sess.Engine.IsIdle() {
			continue
		}

		if cmd, ok := sess.Engine.Tick(now); ok {
			events = append(events, commandEvents(sess.ID, []engine.Command{cmd})...)
		}

		// Persist the new anchor once the playback has finished
		if sess.Engine.IsIdle() {
			if err := s.sessions.Save(sess.ID); err != nil {
				log.Warnf("Failed to persist session %s after playback: %v", sess.ID, err)
			}
		}
	}

	s.unlockAndPublish(events)

	return len(events)
}

// CancelPlayback aborts a session's playback and rolls back painted cells
func (s *pathServiceImpl) CancelPlayback(ctx context.Context, sessionID string) (*PlaybackResult, error) {
	s.mu.Lock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	wasIdle := sess.Engine.IsIdle()
	cmds := sess.Engine.Cancel()
	if cmds == nil {
		cmds = []engine.Command{}
	}
	state := sess.Engine.GetState()
	result := &PlaybackResult{Commands: cmds, Playback: state.Playback}

	var events []Event
	if !wasIdle {
		events = append(commandEvents(sess.ID, cmds), Event{
			Type:      EventCancel,
			SessionID: sess.ID,
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}

	s.unlockAndPublish(events)

	return result, nil
}

// GetGridState retrieves the current grid state
func (s *pathServiceImpl) GetGridState(ctx context.Context, sessionID string) (*engine.GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// DescribeCell returns weight and status for one cell of a session grid
func (s *pathServiceImpl) DescribeCell(ctx context.Context, sessionID string, x, y int) (*engine.CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return sess.Engine.DescribeCell(x, y)
}

// GetPathHistory returns the paginated path request log
func (s *pathServiceImpl) GetPathHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryLimit {
		opts.Limit = engine.MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var requests []engine.PathRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			requests = append(requests, history[i])
		}
	} else if start < total {
		requests = append(requests, history[start:end]...)
	}

	if requests == nil {
		requests = []engine.PathRecord{}
	}

	return &HistoryResponse{
		Requests:      requests,
		TotalRequests: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ListConfigs returns available scenario configurations
func (s *pathServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific scenario configuration
func (s *pathServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.ScenarioConfig, error) {
	return s.configs.LoadConfig(configID)
}

// SaveConfig saves a scenario configuration to disk
func (s *pathServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.ScenarioConfig) error {
	return s.configs.SaveConfig(configID, config)
}

func (s *pathServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.GetState(),
		Config:         sess.Config,
	}
}

// unlockAndPublish releases s.mu and hands events to the publisher. Events
// of concurrent operations reach the publisher in the order the operations
// held s.mu.
func (s *pathServiceImpl) unlockAndPublish(events []Event) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Unlock()

	if s.events == nil {
		return
	}
	for _, ev := range events {
		s.events.Publish(ev)
	}
}

// commandEvents wraps playback commands as events
func commandEvents(sessionID string, cmds []engine.Command) []Event {
	events := make([]Event, 0, len(cmds))
	for i := range cmds {
		cmd := cmds[i]
		events = append(events, Event{
			Type:      string(cmd.Kind),
			SessionID: sessionID,
			Timestamp: time.Now(),
			Command:   &cmd,
		})
	}
	return events
}
