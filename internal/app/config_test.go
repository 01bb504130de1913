package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	defaults := DefaultConfig()
	if config.Window.Scale != defaults.Window.Scale {
		t.Errorf("Expected default scale %d, got %d", defaults.Window.Scale, config.Window.Scale)
	}
	if config.Input.Player1Keys.A != defaults.Input.Player1Keys.A {
		t.Errorf("Expected default A key %q, got %q",
			defaults.Input.Player1Keys.A, config.Input.Player1Keys.A)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famicore.json")
	data := `{"window":{"scale":5},"input":{"player1_keys":{"a":"Space"}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Window.Scale != 5 {
		t.Errorf("Expected scale 5, got %d", config.Window.Scale)
	}
	if config.Input.Player1Keys.A != "Space" {
		t.Errorf("Expected A bound to Space, got %q", config.Input.Player1Keys.A)
	}
	// Untouched fields keep their defaults.
	if config.Input.Player1Keys.B != DefaultConfig().Input.Player1Keys.B {
		t.Errorf("Expected default B binding, got %q", config.Input.Player1Keys.B)
	}
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadConfigClampsScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famicore.json")
	if err := os.WriteFile(path, []byte(`{"window":{"scale":0}}`), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Window.Scale != 1 {
		t.Errorf("Expected scale clamped to 1, got %d", config.Window.Scale)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famicore.json")

	config := DefaultConfig()
	config.Window.Scale = 4
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Window.Scale != 4 {
		t.Errorf("Expected scale 4 after round trip, got %d", loaded.Window.Scale)
	}
}
