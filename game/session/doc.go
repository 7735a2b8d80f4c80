// Package session provides session management for gridpath.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Optional file persistence of session metadata
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns one engine built from a private copy of its scenario, so
// sessions never share terrain, anchor or playback.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Persistence:
//
// FilePersistence writes one JSON file per session holding the config ID,
// seed, anchor and path request history. Grids are not stored: loading a
// session regenerates its terrain from the seed and restarts playback idle
// at the stored anchor.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configMgr)
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", configMgr.GetDefault(), 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory. Persisted copies
// remain on disk and are reloaded on the next access.
package session
