// Package websocket provides WebSocket transport for gridpath.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Streaming of playback commands as they are emitted
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns all connections. Each client has a read goroutine that
// only keeps the connection alive and a write goroutine that drains its
// outbound queue. The Hub implements service.EventPublisher, so the path
// service and its animator publish straight into it.
//
// Message Protocol:
//
// Every outbound frame is one JSON Message. The event field is one of:
//   - state_update: full grid state, sent on connect
//   - paint, clear, anchor: one playback command for a cell
//   - path: a path request finished (record holds its metadata)
//   - regenerate: new terrain (grid and seed are set)
//   - cancel: playback was aborted
//
// Clients pick their session with the ?session= query parameter. Messages
// are delivered only to clients of the same session. A client whose queue
// fills up is dropped.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewPathService(sessions, configs, service.WithEvents(hub))
package websocket
