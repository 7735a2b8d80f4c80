// Package engine provides the core pathfinding logic for gridpath.
//
// The engine package implements:
//   - Seeded noise terrain generation onto weighted grids
//   - A* search with Manhattan or Chebyshev heuristics
//   - Four- or eight-way movement with optional corner-cutting rules
//   - A timed playback state machine that paints and clears a path
//   - Scenario configuration loading (JSON or YAML) and validation
//
// Core Types:
//
// Grid is a row-major matrix of cell weights. WeightRules map a cell weight
// to a traversal weight and decide whether a cell can be entered. Search runs
// A* over a SearchGrid arena of PathNodes and returns a PathResult. Playback
// turns a found path into paint and clear Commands driven by time ticks.
// PathEngine ties a ScenarioConfig, the current grid and the playback
// together as one session.
//
// Usage:
//
//	config := engine.DefaultScenarioConfig()
//	e, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := e.RequestPath(ctx, engine.PathRequest{End: engine.Position{X: 12, Y: 30}})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, cmd := range e.Drain(0) {
//		fmt.Println(cmd.Kind, cmd.X, cmd.Y)
//	}
//
// Terrain:
//
// With the default rules cells 0-5 cost 1-6 to enter, cells 6-7 cost 70-80
// and cells 8 and above are impassable. The final cell of a drawn path stays
// painted and becomes the start of the next request.
package engine
