package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestFile_ValidFlatTerrain(t *testing.T) {
	path := writeFile(t, t.TempDir(), "flat.json", `{
		"name": "flat",
		"width": 4,
		"height": 3,
		"min_weight": 2,
		"max_weight": 2,
		"seed": 7
	}`)

	result := File(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, got errors: %v", result.Errors)
	}
	if result.File != "flat.json" || result.ConfigID != "flat" {
		t.Errorf("Unexpected file/config id: %s %s", result.File, result.ConfigID)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}

	stats := result.Stats
	if stats == nil {
		t.Fatal("Expected stats")
	}
	if stats.Seed != 7 || stats.Cells != 12 || stats.Traversable != 12 || stats.Targetable != 12 || stats.Reachable != 12 {
		t.Errorf("Unexpected stats %+v", *stats)
	}
}

func TestFile_NoTargetableCells(t *testing.T) {
	walls := `
name: walls
width: 3
height: 3
min_weight: 9
max_weight: 9
`
	dir := t.TempDir()

	// Without a fixed seed the probe only warns
	result := File(writeFile(t, dir, "walls.yaml", walls))
	if !result.Valid {
		t.Errorf("Expected valid result, got errors: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "No targetable cells") {
		t.Errorf("Expected targetable warning, got %v", result.Warnings)
	}
	if result.Stats == nil || result.Stats.Seed != ProbeSeed {
		t.Errorf("Expected probe seed in stats, got %+v", result.Stats)
	}

	result = File(writeFile(t, dir, "fixed.yml", walls+"seed: 42\n"))
	if result.Valid {
		t.Error("Expected invalid result with a fixed seed")
	}
	if !hasMessage(result.Errors, "No targetable cells with seed 42") {
		t.Errorf("Expected targetable error, got %v", result.Errors)
	}
}

func TestFile_TargetLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "capped.json", `{
		"name": "capped",
		"width": 2,
		"height": 2,
		"min_weight": 4,
		"max_weight": 4,
		"target_max_weight": 3
	}`)

	result := File(path)
	if result.Stats == nil || result.Stats.Targetable != 0 || result.Stats.Traversable != 4 {
		t.Errorf("Unexpected stats %+v", result.Stats)
	}
	if !hasMessage(result.Warnings, "No targetable cells") {
		t.Errorf("Expected targetable warning, got %v", result.Warnings)
	}
}

func TestFile_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"name": "test", invalid json}`)

	result := File(path)
	if result.Valid {
		t.Error("Expected invalid config due to bad JSON")
	}
	if !hasMessage(result.Errors, "failed to parse json config") {
		t.Errorf("Expected parse error, got %v", result.Errors)
	}
	if result.Stats != nil {
		t.Error("Expected no stats for an undecodable file")
	}
}

func TestFile_InvalidRanges(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.json", `{"name": "tiny", "width": 1, "height": 5}`)

	result := File(path)
	if result.Valid {
		t.Error("Expected invalid config for a 1-wide grid")
	}
	if !hasMessage(result.Errors, "width must be between") {
		t.Errorf("Expected width error, got %v", result.Errors)
	}
}

func TestFile_MissingFile(t *testing.T) {
	result := File("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestDir_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	flat := `{"name": "flat", "width": 3, "height": 3, "min_weight": 1, "max_weight": 1}`
	writeFile(t, dir, "flat.json", flat)
	writeFile(t, dir, "flat.yaml", "name: flat\nwidth: 3\nheight: 3\nmin_weight: 1\nmax_weight: 1\n")
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0755); err != nil {
		t.Fatal(err)
	}

	results, err := Dir(dir)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].File != "flat.json" || !results[0].Valid {
		t.Errorf("Expected flat.json first and valid, got %+v", results[0])
	}
	if results[1].Valid || !hasMessage(results[1].Errors, `Config ID "flat" is already defined by flat.json`) {
		t.Errorf("Expected duplicate error on flat.yaml, got %+v", results[1])
	}

	valid, invalid := Summary(results)
	if valid != 1 || invalid != 1 {
		t.Errorf("Summary = %d/%d, want 1/1", valid, invalid)
	}
}

func TestDir_Missing(t *testing.T) {
	if _, err := Dir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestDir_Presets(t *testing.T) {
	results, err := Dir("../configs")
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected bundled presets")
	}

	for _, r := range results {
		// Terrain findings depend on the seed; decoding must always succeed
		if r.Stats == nil {
			t.Errorf("%s failed to decode: %v", r.File, r.Errors)
		}
		if hasMessage(r.Errors, "already defined") {
			t.Errorf("%s: %v", r.File, r.Errors)
		}
	}
}

func TestIsPreset(t *testing.T) {
	tests := map[string]bool{
		"a.json": true,
		"a.YAML": true,
		"a.yml":  true,
		"a.txt":  false,
		"json":   false,
	}
	for name, want := range tests {
		if got := IsPreset(name); got != want {
			t.Errorf("IsPreset(%q) = %v, want %v", name, got, want)
		}
	}
}
