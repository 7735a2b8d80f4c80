// Package config provides scenario configuration management for gridpath.
//
// The config package handles:
//   - Loading scenario presets from JSON or YAML files
//   - Caching parsed scenarios by ID
//   - Default scenario selection
//   - Scenario discovery and listing
//
// Configuration Format:
//
// Scenarios are stored as .json, .yaml or .yml files in the configs directory.
// The file name without extension is the config ID. Each scenario defines
// grid size, the raw weight range, the noise seed, the movement model,
// playback pacing and the weight rules that turn cell values into traversal
// costs.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scenario, err := manager.LoadConfig("diagonal")
//	defaultScenario := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default scenario is "classic" when present, then the first valid
// preset in the directory, then the built-in 40x40 scenario.
package config
