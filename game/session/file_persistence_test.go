package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/gridpath/game/config"
	"github.com/wricardo/mcp-training/gridpath/game/engine"
	"github.com/wricardo/mcp-training/gridpath/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager, string) {
	t.Helper()
	tempDir := t.TempDir()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, configManager, tempDir
}

// firstTargetable returns a cell a path request may end on
func firstTargetable(t *testing.T, eng *engine.PathEngine) engine.Position {
	t.Helper()
	grid := eng.GetGrid()
	for y := range grid {
		for x := range grid[y] {
			info, err := eng.DescribeCell(x, y)
			if err == nil && info.Targetable {
				return engine.Position{X: x, Y: y}
			}
		}
	}
	t.Fatal("No targetable cell in grid")
	return engine.Position{}
}

func newTestSession(t *testing.T, configManager *config.Manager, id string, seed int64) *service.Session {
	t.Helper()
	scenario := *configManager.GetDefault()
	scenario.Seed = seed

	eng, err := engine.NewEngine(&scenario)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	return &service.Session{
		ID:             id,
		ConfigID:       "classic",
		Engine:         eng,
		Config:         &scenario,
		CreatedAt:      time.Now().Add(-time.Hour).Round(time.Second),
		LastAccessedAt: time.Now().Round(time.Second),
	}
}

func TestFilePersistence(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)
	session := newTestSession(t, configManager, "test1", 99)

	// Play one path so anchor and history differ from a fresh engine
	target := firstTargetable(t, session.Engine)
	outcome, err := session.Engine.RequestPath(context.Background(), engine.PathRequest{Start: &target, End: target})
	if err != nil {
		t.Fatalf("RequestPath failed: %v", err)
	}
	if !outcome.Armed {
		t.Fatalf("Expected armed playback, got %+v", outcome)
	}
	session.Engine.Drain(time.Second)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loaded.ID != session.ID || loaded.ConfigID != "classic" {
			t.Errorf("Expected %s/classic, got %s/%s", session.ID, loaded.ID, loaded.ConfigID)
		}
		if !loaded.CreatedAt.Equal(session.CreatedAt) {
			t.Errorf("Expected CreatedAt %v, got %v", session.CreatedAt, loaded.CreatedAt)
		}

		want := session.Engine.GetState()
		got := loaded.Engine.GetState()
		if got.Seed != 99 || got.Anchor != target || got.Generation != want.Generation {
			t.Errorf("Expected seed 99 anchor %v generation %d, got %d %v %d",
				target, want.Generation, got.Seed, got.Anchor, got.Generation)
		}
		if got.PathRequests != 1 || len(got.History) != 1 || got.History[0].ID != want.History[0].ID {
			t.Errorf("History not restored: %+v", got.History)
		}
		if got.Playback.State != engine.Idle {
			t.Errorf("Expected idle playback after load, got %s", got.Playback.State)
		}

		// Grid is rebuilt from the seed
		for y := range want.Grid {
			for x := range want.Grid[y] {
				if want.Grid[y][x] != got.Grid[y][x] {
					t.Fatalf("Grid mismatch at (%d,%d): %d vs %d", x, y, want.Grid[y][x], got.Grid[y][x])
				}
			}
		}
	})

	t.Run("Load Non-existent Session", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, configManager, "test2", 7)
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 sessions, got %d: %v", len(ids), ids)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test1"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test1") {
			t.Error("Session file should not exist after delete")
		}
		if err := persistence.Delete("test1"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save Nil Session", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})
}

func TestFilePersistenceLoadErrors(t *testing.T) {
	persistence, _, tempDir := newTestPersistence(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"corrupt json", "{", "unmarshal"},
		{"unknown config", `{"id":"bad","config_id":"missing","seed":3}`, "missing"},
		{"zero seed", `{"id":"bad","config_id":"classic","seed":0}`, "grid state"},
		{"anchor outside grid", `{"id":"bad","config_id":"classic","seed":3,"anchor":{"x":400,"y":0}}`, "grid state"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, "bad.json")
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}
			_, err := persistence.Load("bad")
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestFilePersistenceFileStructure(t *testing.T) {
	persistence, configManager, tempDir := newTestPersistence(t)
	session := newTestSession(t, configManager, "File_Test", 11)

	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// IDs are stored lower-case
	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Session file is not valid JSON: %v", err)
	}

	for _, field := range []string{"id", "config_id", "created_at", "seed", "anchor", "history"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("Session file should contain field %s", field)
		}
	}
	if _, ok := raw["grid"]; ok {
		t.Error("Session file should not contain the grid")
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should be renamed away")
	}
}
