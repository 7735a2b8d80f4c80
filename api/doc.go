// Package api provides HTTP REST API handlers for gridpath.
//
// The api package implements:
//   - Session management endpoints
//   - Path requests and playback control
//   - Configuration listing, lookup and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session {config_id?, seed?}
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Sessions for the multi-grid view (configId, sessionIds)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Pathfinding:
//   - GET /api/sessions/{id}/state - Grid, anchor and playback snapshot
//   - POST /api/sessions/{id}/path - Request a path
//   - POST /api/sessions/{id}/regenerate - New terrain {seed?}
//   - POST /api/sessions/{id}/tick - Advance playback {now_ms?}
//   - POST /api/sessions/{id}/cancel - Abort playback
//   - GET /api/sessions/{id}/history - Path request log (page, limit, order)
//   - GET /api/sessions/{id}/cells/{x}/{y} - Describe one cell
//
// Configuration:
//   - GET /api/configs - List available scenarios
//   - GET /api/configs/{name} - Get one scenario
//   - POST /api/configs - Save a scenario (?id= overrides its name)
//
// Streaming:
//   - GET /ws?session={id} - WebSocket command stream
//   - GET /health - Liveness and session count
//
// Path requests are sent as POST with JSON body:
//
//	{
//	  "start": {"x": 0, "y": 0},  // optional, defaults to the session anchor
//	  "end": {"x": 12, "y": 7},
//	  "diagonal": true,           // optional movement override
//	  "heuristic": "chebyshev",   // optional: manhattan|chebyshev
//	  "drain": false              // return every playback command at once
//	}
//
// Error Handling:
//
// Errors are returned as JSON with the matching HTTP status code:
//
//	{
//	  "error": "invalid endpoint: (40,3) is outside the grid",
//	  "code": 400
//	}
//
// Unknown sessions and configs answer 404, invalid endpoints and configs 400,
// a busy playback 409, and a search that hits its timeout 503.
package api
