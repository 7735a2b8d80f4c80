// Package mcp provides the Model Context Protocol server for gridpath.
//
// The mcp package implements:
//   - An MCP server for AI agent integration
//   - Tool definitions for session, pathfinding and config operations
//   - Text rendering of grids, paths and history
//
// The server holds no state. Every tool call is proxied to the REST API, so
// the same sessions are visible over HTTP, WebSocket and MCP.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - grid_state: ASCII rendering of weights, anchor and painted cells
//   - find_path: A* from the anchor (or an explicit start) to a target
//   - regenerate: new terrain for a session
//   - cancel_playback: abort an animated path
//   - path_history: paginated path request log
//   - list_configs: available scenarios
//   - describe_cell: weight and status of one cell
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint of the main server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
