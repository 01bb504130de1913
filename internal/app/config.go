// Package app hosts the desktop frontend: configuration, input mapping
// and the Ebitengine game loop.
package app

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all application configuration.
type Config struct {
	Window WindowConfig `json:"window"`
	Video  VideoConfig  `json:"video"`
	Input  InputConfig  `json:"input"`
	Paths  PathsConfig  `json:"paths"`
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Scale      int    `json:"scale"` // NES resolution multiplier
	Fullscreen bool   `json:"fullscreen"`
	Title      string `json:"title"`
}

// VideoConfig contains video rendering configuration.
type VideoConfig struct {
	VSync    bool `json:"vsync"`
	Headless bool `json:"headless"`
}

// InputConfig maps keyboard keys to the two controller ports.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// KeyMapping names the keyboard key bound to each controller button.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// PathsConfig contains file and directory paths.
type PathsConfig struct {
	ROMs     string `json:"roms"`
	SaveData string `json:"save_data"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale: 3,
			Title: "famicore",
		},
		Video: VideoConfig{
			VSync: true,
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up:     "Up",
				Down:   "Down",
				Left:   "Left",
				Right:  "Right",
				A:      "Z",
				B:      "X",
				Start:  "Enter",
				Select: "Shift",
			},
			Player2Keys: KeyMapping{
				Up:     "I",
				Down:   "K",
				Left:   "J",
				Right:  "L",
				A:      "N",
				B:      "M",
				Start:  "P",
				Select: "O",
			},
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. A missing file
// is not an error; the defaults are returned as-is.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if config.Window.Scale < 1 {
		config.Window.Scale = 1
	}
	return config, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
