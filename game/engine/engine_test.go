package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// wallNoise yields cell weight 0 everywhere except a full-height wall of 9s at x == wallX
func wallNoise(wallX int) NoiseFactory {
	return func(seed int64) NoiseField {
		return NoiseFunc(func(x, y float64) float64 {
			if int(x*NoiseScale+0.5) == wallX {
				return 1
			}
			return -1
		})
	}
}

func flatNoise(seed int64) NoiseField {
	return NoiseFunc(func(x, y float64) float64 { return -1 })
}

func createTestConfig() *ScenarioConfig {
	config := DefaultScenarioConfig()
	config.Name = "engine-test"
	config.Width = 5
	config.Height = 5
	config.Seed = 42
	return config
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	e, err := NewEngineWithNoise(config, flatNoise)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	state := e.GetState()
	if state.Width != 5 || state.Height != 5 {
		t.Errorf("Expected 5x5 grid, got %dx%d", state.Width, state.Height)
	}
	if state.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", state.Seed)
	}
	if state.Generation != 1 {
		t.Errorf("Expected generation 1, got %d", state.Generation)
	}
	if state.Traversable != 25 {
		t.Errorf("Expected 25 traversable cells, got %d", state.Traversable)
	}
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.Playback.State != Idle {
		t.Errorf("Expected idle playback, got %s", state.Playback.State)
	}
	if e.GetAnchor() != config.Start {
		t.Errorf("Expected anchor at config start, got %v", e.GetAnchor())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Width = 0

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngine_SimplexDeterminism(t *testing.T) {
	a, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	b, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	ga, gb := a.GetGrid(), b.GetGrid()
	for y := range ga {
		for x := range ga[y] {
			if ga[y][x] != gb[y][x] {
				t.Fatalf("Same seed produced different cell at (%d,%d)", x, y)
			}
		}
	}
}

func TestEngine_RequestPathAndPlayback(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	outcome, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 4, Y: 4}})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if !outcome.Armed {
		t.Fatal("Expected playback to be armed")
	}
	if len(outcome.Result.Steps) != 9 || outcome.Result.Cost != 8 {
		t.Errorf("Expected 9 steps at cost 8, got %d at %d", len(outcome.Result.Steps), outcome.Result.Cost)
	}
	if outcome.Message != "Path found: 9 steps, cost 8" {
		t.Errorf("Unexpected message %q", outcome.Message)
	}
	if outcome.Record.ID == "" || outcome.Record.RequestNumber != 1 {
		t.Errorf("Expected first recorded request with an ID, got %+v", outcome.Record)
	}

	// A second request while drawing is refused without touching state
	_, err = e.RequestPath(context.Background(), PathRequest{End: Position{X: 0, Y: 4}})
	if !errors.Is(err, ErrPlaybackBusy) {
		t.Errorf("Expected ErrPlaybackBusy, got %v", err)
	}
	if len(e.GetHistory()) != 1 {
		t.Errorf("Expected 1 history record, got %d", len(e.GetHistory()))
	}

	cmds := e.Drain(0)
	if len(cmds) != 18 {
		t.Errorf("Expected 18 commands, got %d", len(cmds))
	}
	if !e.IsIdle() {
		t.Error("Expected engine idle after drain")
	}
	if e.GetAnchor() != (Position{X: 4, Y: 4}) {
		t.Errorf("Expected anchor at path end, got %v", e.GetAnchor())
	}

	// The next path starts where the last one ended
	outcome, err = e.RequestPath(context.Background(), PathRequest{End: Position{X: 4, Y: 0}})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if outcome.Record.Start != (Position{X: 4, Y: 4}) {
		t.Errorf("Expected start at previous anchor, got %v", outcome.Record.Start)
	}
	if last := e.GetLastRequest(); last == nil || last.RequestNumber != 2 {
		t.Errorf("Expected last request number 2, got %+v", last)
	}
}

func TestEngine_RequestPathOptions(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	start := Position{X: 0, Y: 0}
	outcome, err := e.RequestPath(context.Background(), PathRequest{
		Start:   &start,
		End:     Position{X: 4, Y: 4},
		Options: &SearchOptions{Diagonal: true, Heuristic: Chebyshev},
	})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if len(outcome.Result.Steps) != 5 || outcome.Result.Cost != 4 {
		t.Errorf("Expected 5 steps at cost 4, got %d at %d", len(outcome.Result.Steps), outcome.Result.Cost)
	}
	if !outcome.Record.Diagonal || outcome.Record.Heuristic != Chebyshev {
		t.Errorf("Expected record to carry the request options, got %+v", outcome.Record)
	}

	e.Cancel()
	_, err = e.RequestPath(context.Background(), PathRequest{
		End:     Position{X: 1, Y: 1},
		Options: &SearchOptions{Heuristic: "euclid"},
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown heuristic, got %v", err)
	}
}

func TestEngine_NoPath(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), wallNoise(2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if e.GetState().Traversable != 20 {
		t.Fatalf("Expected 20 traversable cells, got %d", e.GetState().Traversable)
	}

	outcome, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 4, Y: 4}})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if outcome.Armed || outcome.Result.Found() {
		t.Error("Expected no path across the wall")
	}
	if !e.IsIdle() {
		t.Error("Expected engine to stay idle")
	}
	state := e.GetState()
	if state.LastPathFound == nil || *state.LastPathFound {
		t.Errorf("Expected last_path_found false, got %v", state.LastPathFound)
	}
	if state.Message != e.GetConfig().Messages.NoPath {
		t.Errorf("Expected no-path message, got %q", state.Message)
	}
	if len(state.History) != 1 || state.History[0].Found {
		t.Errorf("Expected one failed request in history, got %+v", state.History)
	}
}

func TestEngine_InvalidTargets(t *testing.T) {
	config := createTestConfig()
	limit := 5
	config.TargetMaxWeight = &limit
	e, err := NewEngineWithNoise(config, wallNoise(2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	tests := []struct {
		name string
		end  Position
	}{
		{"out of bounds", Position{X: 5, Y: 0}},
		{"negative", Position{X: -1, Y: 2}},
		{"impassable", Position{X: 2, Y: 2}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := e.RequestPath(context.Background(), PathRequest{End: test.end})
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Errorf("Expected ErrInvalidEndpoint, got %v", err)
			}
		})
	}

	if len(e.GetHistory()) != 0 {
		t.Errorf("Expected rejected targets to leave no history, got %d", len(e.GetHistory()))
	}
	if !e.IsIdle() {
		t.Error("Expected engine to stay idle")
	}
}

func TestEngine_TargetMaxWeight(t *testing.T) {
	config := createTestConfig()
	limit := 5
	config.TargetMaxWeight = &limit
	// Column 2 is weight 6: expensive but traversable, and above the target cap
	e, err := NewEngineWithNoise(config, func(seed int64) NoiseField {
		return NoiseFunc(func(x, y float64) float64 {
			if int(x*NoiseScale+0.5) == 2 {
				return 1.0/3.0 - 0.01
			}
			return -1
		})
	})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if e.GetGrid()[0][2] != 6 {
		t.Fatalf("Expected column 2 to hold weight 6, got %d", e.GetGrid()[0][2])
	}

	if _, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 2, Y: 3}}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Expected capped target to be rejected, got %v", err)
	}

	outcome, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 4, Y: 0}})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if outcome.Result.Cost != 73 {
		t.Errorf("Expected cost 73 crossing the expensive column, got %d", outcome.Result.Cost)
	}
}

func TestEngine_Cancel(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if cmds := e.Cancel(); cmds != nil {
		t.Errorf("Expected nothing to cancel while idle, got %v", cmds)
	}

	if _, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 0, Y: 3}}); err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	e.Tick(0)
	e.Tick(time.Second)
	e.Tick(2 * time.Second)

	// Three cells painted; the first one is the anchor and stays
	cmds := e.Cancel()
	if len(cmds) != 2 {
		t.Errorf("Expected 2 rollback commands, got %d", len(cmds))
	}
	if !e.IsIdle() {
		t.Error("Expected idle after cancel")
	}
	if e.GetAnchor() != (Position{X: 0, Y: 0}) {
		t.Errorf("Expected anchor unchanged, got %v", e.GetAnchor())
	}
	if e.GetState().Message != e.GetConfig().Messages.Cancelled {
		t.Errorf("Expected cancelled message, got %q", e.GetState().Message)
	}
}

func TestEngine_Regenerate(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if _, err := e.RequestPath(context.Background(), PathRequest{End: Position{X: 3, Y: 3}}); err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	e.Tick(0)

	state, err := e.Regenerate(7)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if state.Seed != 7 || state.Generation != 2 {
		t.Errorf("Expected seed 7 generation 2, got %d/%d", state.Seed, state.Generation)
	}
	if state.Playback.State != Idle || state.Anchor != (Position{}) {
		t.Errorf("Expected playback reset to start, got %+v", state.Playback)
	}
	if state.LastPathFound != nil {
		t.Error("Expected last_path_found cleared")
	}
	if len(state.History) != 1 {
		t.Errorf("Expected history to survive regeneration, got %d", len(state.History))
	}

	state, err = e.Regenerate(0)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if state.Seed == 0 {
		t.Error("Expected a random seed to be drawn")
	}
}

func TestEngine_SetState(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	saved := &GridState{
		ConfigName:   "engine-test",
		Seed:         99,
		Generation:   4,
		Anchor:       Position{X: 2, Y: 3},
		PathRequests: 3,
		History:      []PathRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}
	if err := e.SetState(saved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	state := e.GetState()
	if state.Seed != 99 || state.Generation != 4 || state.PathRequests != 3 {
		t.Errorf("Expected restored counters, got %+v", state)
	}
	if state.Grid.Width() != 5 || state.Traversable != 25 {
		t.Errorf("Expected rebuilt 5x5 grid, got width %d traversable %d", state.Grid.Width(), state.Traversable)
	}
	if e.GetAnchor() != (Position{X: 2, Y: 3}) {
		t.Errorf("Expected restored anchor, got %v", e.GetAnchor())
	}

	if err := e.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	if err := e.SetState(&GridState{Seed: 1, Anchor: Position{X: 9, Y: 9}}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Expected ErrInvalidEndpoint for anchor outside grid, got %v", err)
	}
}

func TestEngine_SetConfig(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	next := createTestConfig()
	next.Name = "bigger"
	next.Width = 12
	next.Height = 9
	if err := e.SetConfig(next); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	state := e.GetState()
	if state.ConfigName != "bigger" || state.Grid.Width() != 12 || state.Grid.Height() != 9 {
		t.Errorf("Expected 12x9 'bigger' grid, got %s %dx%d", state.ConfigName, state.Grid.Width(), state.Grid.Height())
	}

	bad := createTestConfig()
	bad.Heuristic = "nope"
	if err := e.SetConfig(bad); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_DescribeCell(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), wallNoise(2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	info, err := e.DescribeCell(0, 0)
	if err != nil {
		t.Fatalf("DescribeCell failed: %v", err)
	}
	if !info.Traversable || !info.Targetable || !info.Anchor || info.Weight != 1 {
		t.Errorf("Unexpected info for start cell: %+v", info)
	}

	wall, err := e.DescribeCell(2, 1)
	if err != nil {
		t.Fatalf("DescribeCell failed: %v", err)
	}
	if wall.Traversable || wall.Targetable || wall.CellWeight != 9 || wall.Weight != 100 {
		t.Errorf("Unexpected info for wall cell: %+v", wall)
	}

	if _, err := e.DescribeCell(5, 5); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestEngine_SearchTimeout(t *testing.T) {
	e, err := NewEngineWithNoise(createTestConfig(), flatNoise)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.RequestPath(ctx, PathRequest{End: Position{X: 4, Y: 4}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !e.IsIdle() || len(e.GetHistory()) != 0 {
		t.Error("Expected cancelled search to leave state untouched")
	}
}
