package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for a pathfinding session
type Engine interface {
	// State management
	GetState() *GridState
	SetState(state *GridState) error
	GetGrid() Grid
	GetAnchor() Position

	// Terrain
	Regenerate(seed int64) (*GridState, error)

	// Search and playback
	RequestPath(ctx context.Context, req PathRequest) (*PathOutcome, error)
	Tick(now time.Duration) (Command, bool)
	Drain(now time.Duration) []Command
	Cancel() []Command
	IsIdle() bool

	// Configuration
	GetConfig() *ScenarioConfig
	SetConfig(config *ScenarioConfig) error

	// History
	GetHistory() []PathRecord
	GetLastRequest() *PathRecord

	// Cells
	DescribeCell(x, y int) (*CellInfo, error)
}

// PathRequest asks for a path to End. A nil Start uses the playback anchor;
// nil Options uses the scenario's movement model.
type PathRequest struct {
	Start   *Position      `json:"start,omitempty"`
	End     Position       `json:"end"`
	Options *SearchOptions `json:"options,omitempty"`
}

// PathOutcome is the result of a path request
type PathOutcome struct {
	Result  *PathResult `json:"result"`
	Record  PathRecord  `json:"record"`
	Armed   bool        `json:"armed"`
	Message string      `json:"message"`
}

// PathEngine implements the Engine interface. It is the explicit session
// object owning the current grid and playback; it is not safe for concurrent use.
type PathEngine struct {
	config    *ScenarioConfig
	generator *Generator
	state     *GridState
	playback  *Playback
}

// NewEngine creates a new engine with the provided configuration and generates its first grid
func NewEngine(config *ScenarioConfig) (*PathEngine, error) {
	return NewEngineWithNoise(config, NewSimplexNoise)
}

// NewEngineWithNoise is NewEngine with a custom noise source
func NewEngineWithNoise(config *ScenarioConfig, noise NoiseFactory) (*PathEngine, error) {
	if err := ValidateScenarioConfig(config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	e := &PathEngine{config: config}
	e.generator = NewGenerator(config.Width, config.Height, config.MinWeight, config.MaxWeight)
	e.generator.NewNoise = noise

	e.state = &GridState{
		ConfigName: config.Name,
		Width:      config.Width,
		Height:     config.Height,
		History:    []PathRecord{},
	}
	if _, err := e.Regenerate(config.Seed); err != nil {
		return nil, err
	}
	e.state.Message = config.Messages.Welcome

	return e, nil
}

// GetState returns a copy of the current state with a fresh playback snapshot.
// The grid and history are shared with the engine and must not be modified.
func (e *PathEngine) GetState() *GridState {
	e.state.Playback = e.playback.Snapshot()
	e.state.Anchor = e.playback.Anchor()
	state := *e.state
	return &state
}

// SetState restores a persisted state. The grid is rebuilt from the stored
// seed; playback always restarts idle at the stored anchor.
func (e *PathEngine) SetState(state *GridState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Seed == 0 {
		return fmt.Errorf("state has no seed to rebuild the grid from")
	}

	grid, _, err := e.generator.Generate(state.Seed)
	if err != nil {
		return err
	}
	if !grid.InBounds(state.Anchor.X, state.Anchor.Y) {
		return fmt.Errorf("%w: anchor %s outside grid", ErrInvalidEndpoint, state.Anchor)
	}

	restored := *state
	restored.Grid = grid
	restored.Width = grid.Width()
	restored.Height = grid.Height()
	restored.Traversable = CountTraversable(grid, e.config.Weights)
	if restored.History == nil {
		restored.History = []PathRecord{}
	}

	e.state = &restored
	e.playback = NewPlayback(state.Anchor, e.config.BaseSpeed(), !e.config.ClearAnchor)
	return nil
}

// GetGrid returns the current grid
func (e *PathEngine) GetGrid() Grid {
	return e.state.Grid
}

// GetAnchor returns where the next path starts
func (e *PathEngine) GetAnchor() Position {
	return e.playback.Anchor()
}

// Regenerate discards the grid and any in-flight playback and builds new terrain
func (e *PathEngine) Regenerate(seed int64) (*GridState, error) {
	grid, used, err := e.generator.Generate(seed)
	if err != nil {
		return nil, err
	}

	e.state.Grid = grid
	e.state.Seed = used
	e.state.Generation++
	e.state.Traversable = CountTraversable(grid, e.config.Weights)
	e.state.LastPathFound = nil
	e.state.Message = e.config.Messages.Regenerated

	e.playback = NewPlayback(e.config.Start, e.config.BaseSpeed(), !e.config.ClearAnchor)

	return e.GetState(), nil
}

// RequestPath searches for a path and arms playback with it. Requests are
// only accepted while idle; an invalid end is rejected before searching.
func (e *PathEngine) RequestPath(ctx context.Context, req PathRequest) (*PathOutcome, error) {
	if !e.playback.IsIdle() {
		e.state.Message = e.config.Messages.Busy
		return nil, ErrPlaybackBusy
	}

	start := e.playback.Anchor()
	if req.Start != nil {
		start = *req.Start
	}

	if err := e.checkTarget(req.End); err != nil {
		e.state.Message = e.config.Messages.InvalidTarget
		return nil, err
	}

	opts := e.config.SearchOptions()
	if req.Options != nil {
		opts = *req.Options
		opts.Heuristic = opts.Heuristic.OrDefault()
	}
	if !opts.Heuristic.Valid() {
		return nil, fmt.Errorf("%w: unknown heuristic %q", ErrInvalidConfig, opts.Heuristic)
	}

	if timeout := e.config.SearchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := SearchContext(ctx, e.state.Grid, start, req.End, opts, e.config.Weights)
	if err != nil {
		return nil, err
	}

	record := e.addToHistory(start, req.End, opts, result)
	found := result.Found()
	e.state.LastPathFound = &found

	outcome := &PathOutcome{Result: result, Record: record}
	if !found {
		e.state.Message = e.config.Messages.NoPath
		outcome.Message = e.state.Message
		return outcome, nil
	}

	if err := e.playback.Arm(result.Steps); err != nil {
		return nil, err
	}
	outcome.Armed = true
	e.state.Message = fmt.Sprintf(e.config.Messages.PathFound, len(result.Steps), result.Cost)
	outcome.Message = e.state.Message

	return outcome, nil
}

// Tick forwards a time tick to the playback
func (e *PathEngine) Tick(now time.Duration) (Command, bool) {
	return e.playback.Tick(now)
}

// Drain completes the current playback immediately
func (e *PathEngine) Drain(now time.Duration) []Command {
	return e.playback.Drain(now)
}

// Cancel aborts the current playback and returns the rollback commands
func (e *PathEngine) Cancel() []Command {
	if e.playback.IsIdle() {
		return nil
	}
	cmds := e.playback.Cancel()
	e.state.Message = e.config.Messages.Cancelled
	return cmds
}

// IsIdle reports whether a new path request would be accepted
func (e *PathEngine) IsIdle() bool {
	return e.playback.IsIdle()
}

// GetConfig returns the current scenario configuration
func (e *PathEngine) GetConfig() *ScenarioConfig {
	return e.config
}

// SetConfig sets a new scenario configuration and regenerates the grid
func (e *PathEngine) SetConfig(config *ScenarioConfig) error {
	if err := ValidateScenarioConfig(config); err != nil {
		return err
	}
	config.ApplyDefaults()

	noise := e.generator.NewNoise
	e.config = config
	e.generator = NewGenerator(config.Width, config.Height, config.MinWeight, config.MaxWeight)
	e.generator.NewNoise = noise

	e.state.ConfigName = config.Name
	e.state.Width = config.Width
	e.state.Height = config.Height
	_, err := e.Regenerate(config.Seed)
	return err
}

// GetHistory returns the path request log
func (e *PathEngine) GetHistory() []PathRecord {
	return e.state.History
}

// GetLastRequest returns the latest path request, or nil if there was none
func (e *PathEngine) GetLastRequest() *PathRecord {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// DescribeCell reports weight and status of one cell
func (e *PathEngine) DescribeCell(x, y int) (*CellInfo, error) {
	if !e.state.Grid.InBounds(x, y) {
		return nil, fmt.Errorf("%w: (%d,%d) is outside the %dx%d grid",
			ErrInvalidEndpoint, x, y, e.state.Grid.Width(), e.state.Grid.Height())
	}

	cell := e.state.Grid[y][x]
	weight, traversable := e.config.Weights.NodeWeight(cell)
	pos := Position{X: x, Y: y}
	return &CellInfo{
		X:           x,
		Y:           y,
		CellWeight:  cell,
		Weight:      weight,
		Traversable: traversable,
		Targetable:  e.checkTarget(pos) == nil,
		Anchor:      pos == e.playback.Anchor(),
		Displayed:   e.playback.IsDisplayed(pos),
	}, nil
}

// checkTarget rejects end cells that are out of bounds, impassable or above the target weight cap
func (e *PathEngine) checkTarget(end Position) error {
	grid := e.state.Grid
	if !grid.InBounds(end.X, end.Y) {
		return fmt.Errorf("%w: end %s is outside the %dx%d grid", ErrInvalidEndpoint, end, grid.Width(), grid.Height())
	}

	cell := grid[end.Y][end.X]
	if _, ok := e.config.Weights.NodeWeight(cell); !ok {
		return fmt.Errorf("%w: end %s is impassable (weight %d)", ErrInvalidEndpoint, end, cell)
	}
	if limit := e.config.TargetMaxWeight; limit != nil && cell > *limit {
		return fmt.Errorf("%w: end %s weight %d exceeds target limit %d", ErrInvalidEndpoint, end, cell, *limit)
	}
	return nil
}

// addToHistory appends a request record to the log
func (e *PathEngine) addToHistory(start, end Position, opts SearchOptions, result *PathResult) PathRecord {
	record := PathRecord{
		ID:            uuid.NewString(),
		RequestNumber: e.state.PathRequests + 1,
		Start:         start,
		End:           end,
		Found:         result.Found(),
		Cost:          result.Cost,
		Length:        len(result.Steps),
		Expanded:      result.Expanded,
		Diagonal:      opts.Diagonal,
		Heuristic:     opts.Heuristic,
		Seed:          e.state.Seed,
		Timestamp:     time.Now().Unix(),
	}
	e.state.History = append(e.state.History, record)
	e.state.PathRequests++
	return record
}
