package engine

import "testing"

func TestHeuristicEstimate(t *testing.T) {
	from, to := Position{X: 1, Y: 1}, Position{X: 4, Y: 3}

	tests := []struct {
		h    Heuristic
		want int
	}{
		{"", 5},
		{Manhattan, 5},
		{Chebyshev, 3},
	}
	for _, tt := range tests {
		if got := tt.h.Estimate(from, to); got != tt.want {
			t.Errorf("%q.Estimate = %d, want %d", tt.h, got, tt.want)
		}
	}

	if Heuristic("euclid").Valid() {
		t.Error("euclid should not be a valid heuristic")
	}
	if Heuristic("").OrDefault() != Manhattan {
		t.Error("empty heuristic should default to manhattan")
	}
}

func TestTerrainStats(t *testing.T) {
	grid := Grid{
		{0, 3, 8},
		{9, 5, 0},
	}
	rules := DefaultWeightRules()

	// 8 and 9 reach ImpassableAt once offset
	if got := CountTraversable(grid, rules); got != 4 {
		t.Errorf("CountTraversable = %d, want 4", got)
	}

	hist := WeightHistogram(grid)
	if hist[0] != 2 || hist[3] != 1 || hist[8] != 1 || len(hist) != 5 {
		t.Errorf("Unexpected histogram %v", hist)
	}

	pos, dist, ok := FindNearestTraversable(grid, rules, Position{X: 2, Y: 0})
	if !ok || pos != (Position{X: 1, Y: 0}) || dist != 1 {
		t.Errorf("FindNearestTraversable = %v %d %v", pos, dist, ok)
	}

	blocked := Grid{{9, 9}}
	if _, _, ok := FindNearestTraversable(blocked, rules, Position{}); ok {
		t.Error("Expected no traversable cell")
	}
}

func TestRenderASCII(t *testing.T) {
	grid := Grid{
		{0, 1, 8},
		{2, 12, 3},
	}
	rules := WeightRules{Offset: 1, ImpassableAt: 20}
	anchor := Position{X: 2, Y: 1}
	path := []Position{{X: 0, Y: 0}, {X: 1, Y: 0}}

	want := "**8\n2+@\n"
	if got := RenderASCII(grid, rules, path, &anchor); got != want {
		t.Errorf("RenderASCII =\n%s\nwant\n%s", got, want)
	}

	want = "01#\n2#3\n"
	if got := RenderASCII(grid, DefaultWeightRules(), nil, nil); got != want {
		t.Errorf("RenderASCII =\n%s\nwant\n%s", got, want)
	}
}

func TestStepPositions(t *testing.T) {
	steps := []Step{{X: 1, Y: 2, Weight: 3}, {X: 2, Y: 2, Weight: 1}}
	got := StepPositions(steps)
	if len(got) != 2 || got[0] != (Position{X: 1, Y: 2}) || got[1] != (Position{X: 2, Y: 2}) {
		t.Errorf("StepPositions = %v", got)
	}
}

func TestReachableFrom(t *testing.T) {
	// Column 1 is a wall except for its bottom cell
	grid := Grid{
		{0, 9, 0},
		{0, 9, 0},
		{0, 0, 0},
	}
	rules := DefaultWeightRules()

	if got := ReachableFrom(grid, rules, Position{}, SearchOptions{}); got != 7 {
		t.Errorf("ReachableFrom = %d, want 7", got)
	}

	sealed := Grid{
		{0, 9, 0},
		{9, 9, 0},
	}
	if got := ReachableFrom(sealed, rules, Position{}, SearchOptions{}); got != 1 {
		t.Errorf("sealed start: ReachableFrom = %d, want 1", got)
	}

	// Permissive diagonals slip between two walls, strict ones do not
	corner := Grid{
		{0, 9},
		{9, 0},
	}
	if got := ReachableFrom(corner, rules, Position{}, SearchOptions{Diagonal: true}); got != 2 {
		t.Errorf("diagonal: ReachableFrom = %d, want 2", got)
	}
	if got := ReachableFrom(corner, rules, Position{}, SearchOptions{Diagonal: true, NoCornerCutting: true}); got != 1 {
		t.Errorf("no corner cutting: ReachableFrom = %d, want 1", got)
	}

	// An impassable start still counts itself
	if got := ReachableFrom(Grid{{9, 0}}, rules, Position{}, SearchOptions{}); got != 2 {
		t.Errorf("impassable start: ReachableFrom = %d, want 2", got)
	}

	if got := ReachableFrom(grid, rules, Position{X: 5}, SearchOptions{}); got != 0 {
		t.Errorf("out of bounds: ReachableFrom = %d, want 0", got)
	}
}
