// Package service provides the business logic layer for gridpath.
//
// The service package implements:
//   - Multi-session management, each session owning one engine
//   - Scenario configuration lookup
//   - Path requests, terrain regeneration and playback control
//   - A frame-driven Animator that ticks every active playback
//   - Event publishing and paginated path request history
//
// Core Interfaces:
//
// PathService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores sessions, ConfigManager loads
// scenario presets and EventPublisher receives paint, clear and regenerate
// events.
//
// Architecture:
//
// The service layer sits between the transports and the engine. All engine
// calls happen under the service mutex, so path requests, regenerations and
// animator ticks are serialized per process. Events are published after the
// mutex is released.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	pathService := service.NewPathService(sessionMgr, configMgr, service.WithEvents(hub))
//
//	go service.NewAnimator(pathService, 0).Run(ctx)
//
//	info, err := pathService.CreateSession(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := pathService.FindPath(ctx, info.ID, service.PathRequest{End: engine.Position{X: 20, Y: 31}})
//
// Sessions:
//
// Sessions are identified by 4-character IDs and keep an independent grid,
// anchor and playback. Only the scenario, seed, anchor and request metadata
// are persisted; grids are rebuilt from the seed.
package service
