package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig describes one pathfinding scenario: terrain generation,
// movement model and playback pacing
type ScenarioConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	Width     int `json:"width" yaml:"width"`
	Height    int `json:"height" yaml:"height"`
	MinWeight int `json:"min_weight" yaml:"min_weight"`
	MaxWeight int `json:"max_weight" yaml:"max_weight"`

	// Seed fixes the terrain; zero draws a new seed on every generation
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Diagonal        bool      `json:"diagonal" yaml:"diagonal"`
	Heuristic       Heuristic `json:"heuristic" yaml:"heuristic"`
	NoCornerCutting bool      `json:"no_corner_cutting,omitempty" yaml:"no_corner_cutting,omitempty"`

	BaseSpeedMS int         `json:"base_speed_ms" yaml:"base_speed_ms"`
	Weights     WeightRules `json:"weights" yaml:"weights"`
	Start       Position    `json:"start" yaml:"start"`

	// TargetMaxWeight, when set, rejects end cells whose raw weight exceeds it
	TargetMaxWeight *int `json:"target_max_weight,omitempty" yaml:"target_max_weight,omitempty"`

	// ClearAnchor also clears the final cell of a path instead of leaving it painted
	ClearAnchor bool `json:"clear_anchor,omitempty" yaml:"clear_anchor,omitempty"`

	// SearchTimeoutMS bounds a single search; zero means no limit
	SearchTimeoutMS int `json:"search_timeout_ms,omitempty" yaml:"search_timeout_ms,omitempty"`

	Messages struct {
		Welcome       string `json:"welcome" yaml:"welcome"`
		PathFound     string `json:"path_found" yaml:"path_found"`
		NoPath        string `json:"no_path" yaml:"no_path"`
		InvalidTarget string `json:"invalid_target" yaml:"invalid_target"`
		Busy          string `json:"busy" yaml:"busy"`
		Regenerated   string `json:"regenerated" yaml:"regenerated"`
		Cancelled     string `json:"cancelled" yaml:"cancelled"`
	} `json:"messages" yaml:"messages"`
}

// SearchOptions returns the movement model configured for the scenario
func (c *ScenarioConfig) SearchOptions() SearchOptions {
	return SearchOptions{
		Diagonal:        c.Diagonal,
		Heuristic:       c.Heuristic.OrDefault(),
		NoCornerCutting: c.NoCornerCutting,
	}
}

// BaseSpeed returns the playback delay per unit of traversal weight
func (c *ScenarioConfig) BaseSpeed() time.Duration {
	return time.Duration(c.BaseSpeedMS) * time.Millisecond
}

// SearchTimeout returns the per-search deadline, zero for none
func (c *ScenarioConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMS) * time.Millisecond
}

// ApplyDefaults fills unset optional fields
func (c *ScenarioConfig) ApplyDefaults() {
	c.Heuristic = c.Heuristic.OrDefault()
	c.Weights = c.Weights.OrDefault()

	if c.Messages.Welcome == "" {
		c.Messages.Welcome = "Click a water tile to find a path."
	}
	if c.Messages.PathFound == "" {
		c.Messages.PathFound = "Path found: %d steps, cost %d"
	}
	if c.Messages.NoPath == "" {
		c.Messages.NoPath = "No path to the selected tile"
	}
	if c.Messages.InvalidTarget == "" {
		c.Messages.InvalidTarget = "That tile cannot be reached"
	}
	if c.Messages.Busy == "" {
		c.Messages.Busy = "A path is still being drawn"
	}
	if c.Messages.Regenerated == "" {
		c.Messages.Regenerated = "New terrain generated"
	}
	if c.Messages.Cancelled == "" {
		c.Messages.Cancelled = "Path playback cancelled"
	}
}

// ValidateScenarioConfig validates a scenario configuration
func ValidateScenarioConfig(config *ScenarioConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate dimensions
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	// Validate weights
	if config.MinWeight < MinCellWeight || config.MaxWeight > MaxCellWeight {
		return fmt.Errorf("config validation: weights must lie within %d..%d, got %d..%d",
			MinCellWeight, MaxCellWeight, config.MinWeight, config.MaxWeight)
	}
	if config.MinWeight > config.MaxWeight {
		return fmt.Errorf("config validation: min_weight %d exceeds max_weight %d", config.MinWeight, config.MaxWeight)
	}

	rules := config.Weights.OrDefault()
	if config.MinWeight+rules.Offset < 1 {
		return fmt.Errorf("config validation: weights.offset %d gives traversal weights below 1", rules.Offset)
	}
	if rules.ImpassableAt <= 0 {
		return fmt.Errorf("config validation: weights.impassable_at must be positive, got %d", rules.ImpassableAt)
	}
	if rules.ExpensiveFactor < 0 {
		return fmt.Errorf("config validation: weights.expensive_factor must not be negative, got %d", rules.ExpensiveFactor)
	}

	if !config.Heuristic.Valid() {
		return fmt.Errorf("config validation: heuristic must be %q or %q, got %q", Manhattan, Chebyshev, config.Heuristic)
	}

	if config.BaseSpeedMS < 0 {
		return fmt.Errorf("config validation: base_speed_ms must not be negative, got %d", config.BaseSpeedMS)
	}
	if config.SearchTimeoutMS < 0 {
		return fmt.Errorf("config validation: search_timeout_ms must not be negative, got %d", config.SearchTimeoutMS)
	}

	if config.Start.X < 0 || config.Start.X >= config.Width || config.Start.Y < 0 || config.Start.Y >= config.Height {
		return fmt.Errorf("config validation: start %s is outside the %dx%d grid", config.Start, config.Width, config.Height)
	}

	// Validate format strings
	if config.Messages.PathFound != "" && strings.Count(config.Messages.PathFound, "%d") != 2 {
		return fmt.Errorf("config validation: messages.path_found must contain two %%d for length and cost")
	}

	return nil
}

// DecodeScenarioConfig parses a JSON or YAML scenario. The format is taken
// from the file extension; anything but .yaml/.yml is treated as JSON.
func DecodeScenarioConfig(filename string, data []byte) (*ScenarioConfig, error) {
	var config ScenarioConfig

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	if err := ValidateScenarioConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// LoadScenarioConfig loads and validates a scenario file
func LoadScenarioConfig(filename string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeScenarioConfig(filename, data)
}

// DefaultScenarioConfig returns the 40x40 water/land scenario of the browser demo
func DefaultScenarioConfig() *ScenarioConfig {
	maxTarget := 5
	config := &ScenarioConfig{
		Name:            "classic",
		Description:     "40x40 simplex terrain, four-way movement, Manhattan heuristic",
		Width:           DefaultGridSize,
		Height:          DefaultGridSize,
		MinWeight:       DefaultMinWeight,
		MaxWeight:       DefaultMaxWeight,
		Heuristic:       Manhattan,
		BaseSpeedMS:     int(DefaultBaseSpeed / time.Millisecond),
		Weights:         DefaultWeightRules(),
		Start:           Position{X: 0, Y: 0},
		TargetMaxWeight: &maxTarget,
	}
	config.ApplyDefaults()
	return config
}
