package engine

import (
	"fmt"
	"time"
)

// Heuristic names the distance estimate used by the search
type Heuristic string

const (
	Manhattan Heuristic = "manhattan"
	Chebyshev Heuristic = "chebyshev"
)

const (
	// Validation constants
	MinGridSize      = 2
	MaxGridSize      = 256
	MinCellWeight    = 0
	MaxCellWeight    = 99
	MaxHistoryLimit  = 100
	DefaultGridSize  = 40
	DefaultMinWeight = 0
	DefaultMaxWeight = 9

	// NoiseScale divides cell coordinates before sampling so neighbours correlate.
	NoiseScale = 16.0

	// DefaultBaseSpeed is the playback delay per unit of traversal weight.
	DefaultBaseSpeed = 10 * time.Millisecond
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid holds cell weights indexed as grid[y][x]
type Grid [][]int

// Width returns the number of columns
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows
func (g Grid) Height() int {
	return len(g)
}

// InBounds reports whether (x, y) addresses a cell of the grid
func (g Grid) InBounds(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < g.Width()
}

// Validate checks that the grid is non-empty and rectangular
func (g Grid) Validate() error {
	if len(g) == 0 || len(g[0]) == 0 {
		return fmt.Errorf("%w: grid has no cells", ErrMalformedGrid)
	}
	width := len(g[0])
	for y, row := range g {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrMalformedGrid, y, len(row), width)
		}
	}
	return nil
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]int(nil), row...)
	}
	return out
}

// SearchOptions selects the movement model and heuristic
type SearchOptions struct {
	Diagonal  bool      `json:"diagonal" yaml:"diagonal"`
	Heuristic Heuristic `json:"heuristic" yaml:"heuristic"`

	// NoCornerCutting also requires both orthogonal corner cells of a diagonal
	// move to be traversable, not just present in the grid.
	NoCornerCutting bool `json:"no_corner_cutting,omitempty" yaml:"no_corner_cutting,omitempty"`
}

// Step is one cell of a discovered path
type Step struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Weight int `json:"weight"`
}

// Position returns the step coordinates
func (s Step) Position() Position {
	return Position{X: s.X, Y: s.Y}
}

// PathResult is the outcome of a search. An empty Steps slice means no path exists.
type PathResult struct {
	Steps    []Step `json:"steps"`
	Cost     int    `json:"cost"`
	Expanded int    `json:"expanded"`
}

// Found reports whether the search reached the end cell
func (r *PathResult) Found() bool {
	return r != nil && len(r.Steps) > 0
}

// CellInfo describes a single grid cell
type CellInfo struct {
	X           int  `json:"x"`
	Y           int  `json:"y"`
	CellWeight  int  `json:"cell_weight"`
	Weight      int  `json:"weight"`
	Traversable bool `json:"traversable"`
	Targetable  bool `json:"targetable"`
	Anchor      bool `json:"anchor"`
	Displayed   bool `json:"displayed"`
}

// PathRecord is the metadata kept for each path request. The path itself is not retained.
type PathRecord struct {
	ID            string    `json:"id"`
	RequestNumber int       `json:"request_number"`
	Start         Position  `json:"start"`
	End           Position  `json:"end"`
	Found         bool      `json:"found"`
	Cost          int       `json:"cost"`
	Length        int       `json:"length"`
	Expanded      int       `json:"expanded"`
	Diagonal      bool      `json:"diagonal"`
	Heuristic     Heuristic `json:"heuristic"`
	Seed          int64     `json:"seed"`
	Timestamp     int64     `json:"timestamp"`
}

// GridState represents the complete observable state of a session's engine
type GridState struct {
	ConfigName    string           `json:"config_name"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	Seed          int64            `json:"seed"`
	Grid          Grid             `json:"grid"`
	Anchor        Position         `json:"anchor"`
	Playback      PlaybackSnapshot `json:"playback"`
	Message       string           `json:"message"`
	Generation    int              `json:"generation"`
	PathRequests  int              `json:"path_requests"`
	History       []PathRecord     `json:"history"`
	Traversable   int              `json:"traversable_cells"`
	LastPathFound *bool            `json:"last_path_found,omitempty"`
}
