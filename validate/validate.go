// Package validate checks scenario preset files before they are served.
// It verifies:
//   - JSON/YAML structure and field ranges
//   - Unique config IDs across file extensions
//   - That generated terrain leaves targetable cells
//   - Connectivity: how much of the grid is reachable from the start cell
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/gridpath/game/engine"
)

// ProbeSeed generates sample terrain for scenarios without a fixed seed
const ProbeSeed int64 = 1

// MinReachableShare is the fraction of traversable cells the start should
// reach without a warning
const MinReachableShare = 0.25

// Stats summarizes the probe terrain of one scenario
type Stats struct {
	Seed        int64 `json:"seed"`
	Cells       int   `json:"cells"`
	Traversable int   `json:"traversable"`
	Targetable  int   `json:"targetable"`
	Reachable   int   `json:"reachable"`
}

// Result captures the outcome of validating a single file.
// Errors make a file invalid; warnings are informational.
type Result struct {
	File     string   `json:"file"`
	ConfigID string   `json:"config_id"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Stats    *Stats   `json:"stats,omitempty"`
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// IsPreset reports whether a file name has a scenario extension
func IsPreset(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// File loads and validates a single scenario file
func File(path string) Result {
	base := filepath.Base(path)
	result := Result{
		File:     base,
		ConfigID: strings.TrimSuffix(base, filepath.Ext(base)),
		Valid:    true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	scenario, err := engine.DecodeScenarioConfig(path, data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	Scenario(scenario, &result)
	return result
}

// Scenario probes the terrain of a decoded scenario and records its findings
// in result. Scenarios with a fixed seed fail on problems that a random seed
// only warns about.
func Scenario(scenario *engine.ScenarioConfig, result *Result) {
	seed := scenario.Seed
	fixed := seed != 0
	if !fixed {
		seed = ProbeSeed
	}
	report := result.warn
	if fixed {
		report = result.fail
	}

	grid, _, err := engine.NewGenerator(scenario.Width, scenario.Height, scenario.MinWeight, scenario.MaxWeight).Generate(seed)
	if err != nil {
		result.fail("Failed to generate terrain: %v", err)
		return
	}

	rules := scenario.Weights.OrDefault()
	stats := &Stats{
		Seed:        seed,
		Cells:       scenario.Width * scenario.Height,
		Traversable: engine.CountTraversable(grid, rules),
	}
	result.Stats = stats

	for _, row := range grid {
		for _, cell := range row {
			if _, ok := rules.NodeWeight(cell); !ok {
				continue
			}
			if scenario.TargetMaxWeight != nil && cell > *scenario.TargetMaxWeight {
				continue
			}
			stats.Targetable++
		}
	}
	stats.Reachable = engine.ReachableFrom(grid, rules, scenario.Start, scenario.SearchOptions())

	if stats.Targetable == 0 {
		report("No targetable cells with seed %d", seed)
		return
	}

	if _, ok := rules.NodeWeight(grid[scenario.Start.Y][scenario.Start.X]); !ok {
		result.warn("Start %s is impassable with seed %d", scenario.Start, seed)
	}

	if stats.Reachable <= 1 {
		report("Start %s is enclosed with seed %d", scenario.Start, seed)
	} else if float64(stats.Reachable) < MinReachableShare*float64(stats.Traversable) {
		result.warn("Only %d of %d traversable cells are reachable from start %s with seed %d",
			stats.Reachable, stats.Traversable, scenario.Start, seed)
	}
}

// Dir validates every scenario file in dir, sorted by file name. A config ID
// defined by more than one file is an error on every file but the first.
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && IsPreset(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	seen := make(map[string]string)
	results := make([]Result, 0, len(names))
	for _, name := range names {
		result := File(filepath.Join(dir, name))
		if first, ok := seen[result.ConfigID]; ok {
			result.fail("Config ID %q is already defined by %s", result.ConfigID, first)
		} else {
			seen[result.ConfigID] = name
		}
		results = append(results, result)
	}

	return results, nil
}

// Summary counts valid and invalid results
func Summary(results []Result) (valid, invalid int) {
	for _, r := range results {
		if r.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}
