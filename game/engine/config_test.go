package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *ScenarioConfig {
	config := DefaultScenarioConfig()
	config.Name = "test"
	config.Width = 10
	config.Height = 8
	return config
}

func TestValidateScenarioConfig_ValidConfig(t *testing.T) {
	if err := ValidateScenarioConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
	if err := ValidateScenarioConfig(DefaultScenarioConfig()); err != nil {
		t.Errorf("Expected default config to be valid, got error: %v", err)
	}
}

func TestValidateScenarioConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *ScenarioConfig)
		want   string
	}{
		{"missing name", func(c *ScenarioConfig) { c.Name = "" }, "name is required"},
		{"width too small", func(c *ScenarioConfig) { c.Width = 1 }, "width must be between"},
		{"height too large", func(c *ScenarioConfig) { c.Height = MaxGridSize + 1 }, "height must be between"},
		{"negative min weight", func(c *ScenarioConfig) { c.MinWeight = -1 }, "weights must lie within"},
		{"inverted weights", func(c *ScenarioConfig) { c.MinWeight = 7; c.MaxWeight = 3 }, "exceeds max_weight"},
		{"zero traversal weight", func(c *ScenarioConfig) { c.Weights.Offset = 0 }, "weights.offset"},
		{"unknown heuristic", func(c *ScenarioConfig) { c.Heuristic = "euclid" }, "heuristic must be"},
		{"negative speed", func(c *ScenarioConfig) { c.BaseSpeedMS = -5 }, "base_speed_ms"},
		{"negative timeout", func(c *ScenarioConfig) { c.SearchTimeoutMS = -1 }, "search_timeout_ms"},
		{"start outside grid", func(c *ScenarioConfig) { c.Start = Position{X: 10, Y: 0} }, "start (10,0) is outside"},
		{"bad path_found format", func(c *ScenarioConfig) { c.Messages.PathFound = "Found %d" }, "path_found"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.modify(config)
			err := ValidateScenarioConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Expected error containing %q, got: %v", test.want, err)
			}
		})
	}
}

func TestDecodeScenarioConfig_JSON(t *testing.T) {
	data := []byte(`{
		"name": "json-test",
		"description": "JSON scenario",
		"width": 12,
		"height": 6,
		"min_weight": 0,
		"max_weight": 9,
		"diagonal": true,
		"heuristic": "chebyshev",
		"base_speed_ms": 5,
		"start": {"x": 2, "y": 3}
	}`)

	config, err := DecodeScenarioConfig("json-test.json", data)
	if err != nil {
		t.Fatalf("Failed to decode JSON config: %v", err)
	}

	if config.Width != 12 || config.Height != 6 {
		t.Errorf("Expected 12x6, got %dx%d", config.Width, config.Height)
	}
	if !config.Diagonal || config.Heuristic != Chebyshev {
		t.Errorf("Expected diagonal chebyshev, got diagonal=%v heuristic=%s", config.Diagonal, config.Heuristic)
	}
	if config.Start != (Position{X: 2, Y: 3}) {
		t.Errorf("Expected start (2,3), got %v", config.Start)
	}
	if config.Weights != DefaultWeightRules() {
		t.Errorf("Expected default weight rules, got %+v", config.Weights)
	}
	if config.Messages.PathFound == "" {
		t.Error("Expected default messages to be applied")
	}
	if config.TargetMaxWeight != nil {
		t.Errorf("Expected no target limit, got %d", *config.TargetMaxWeight)
	}
}

func TestDecodeScenarioConfig_YAML(t *testing.T) {
	data := []byte(`
name: yaml-test
description: YAML scenario
width: 20
height: 20
min_weight: 0
max_weight: 9
heuristic: manhattan
base_speed_ms: 10
target_max_weight: 5
clear_anchor: true
search_timeout_ms: 250
weights:
  offset: 1
  impassable_at: 8
  expensive_above: 5
  expensive_factor: 4
messages:
  path_found: "Route of %d cells costs %d"
`)

	for _, name := range []string{"scenario.yaml", "scenario.YML"} {
		config, err := DecodeScenarioConfig(name, data)
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", name, err)
		}

		if config.Name != "yaml-test" {
			t.Errorf("Expected name yaml-test, got %s", config.Name)
		}
		if config.TargetMaxWeight == nil || *config.TargetMaxWeight != 5 {
			t.Errorf("Expected target_max_weight 5, got %v", config.TargetMaxWeight)
		}
		if !config.ClearAnchor {
			t.Error("Expected clear_anchor to be set")
		}
		if config.SearchTimeout().Milliseconds() != 250 {
			t.Errorf("Expected 250ms timeout, got %v", config.SearchTimeout())
		}
		if config.Weights.ImpassableAt != 8 || config.Weights.ExpensiveFactor != 4 {
			t.Errorf("Unexpected weight rules %+v", config.Weights)
		}
		if config.Messages.PathFound != "Route of %d cells costs %d" {
			t.Errorf("Expected custom path_found message, got %q", config.Messages.PathFound)
		}
		if config.Messages.NoPath == "" {
			t.Error("Expected missing messages to get defaults")
		}
	}
}

func TestDecodeScenarioConfig_Errors(t *testing.T) {
	if _, err := DecodeScenarioConfig("bad.json", []byte(`{"name": `)); err == nil {
		t.Error("Expected parse error for truncated JSON")
	}
	if _, err := DecodeScenarioConfig("bad.yaml", []byte("name: [unclosed")); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}

	_, err := DecodeScenarioConfig("small.json", []byte(`{"name": "small", "width": 1, "height": 1}`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadScenarioConfig(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "scenario.json")
	content := `{"name": "file", "width": 5, "height": 5, "min_weight": 0, "max_weight": 9}`
	if err := os.WriteFile(tempFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadScenarioConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "file" {
		t.Errorf("Expected name file, got %s", config.Name)
	}
	if config.Heuristic != Manhattan {
		t.Errorf("Expected default heuristic manhattan, got %s", config.Heuristic)
	}

	if _, err := LoadScenarioConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestScenarioConfig_Accessors(t *testing.T) {
	config := DefaultScenarioConfig()

	if config.BaseSpeed() != DefaultBaseSpeed {
		t.Errorf("Expected base speed %v, got %v", DefaultBaseSpeed, config.BaseSpeed())
	}
	if config.SearchTimeout() != 0 {
		t.Errorf("Expected no timeout, got %v", config.SearchTimeout())
	}

	opts := config.SearchOptions()
	if opts.Diagonal || opts.Heuristic != Manhattan {
		t.Errorf("Expected four-way manhattan, got %+v", opts)
	}
}
