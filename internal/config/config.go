package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	AppName        = "Streamify"
	AppTagline     = "Terminal music player"
	AppDescription = "A terminal music player with multi-source streaming and equalizer"

	ConfigDir      = ".config/streamify"
	ConfigFileName = "config.yml"

	DefaultVolume = 70
	MinVolume     = 0
	MaxVolume     = 100

	DefaultEQPreset = "flat"

	MinCrossfadeSeconds = 0
	MaxCrossfadeSeconds = 10
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// ClampCrossfade ensures crossfade duration is within [0, 10] seconds.
func ClampCrossfade(seconds float64) float64 {
	if seconds < MinCrossfadeSeconds {
		return MinCrossfadeSeconds
	}
	if seconds > MaxCrossfadeSeconds {
		return MaxCrossfadeSeconds
	}
	return seconds
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/streamify/streamify/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Config struct {
	Volume           int      `yaml:"volume"`
	EQPreset         string   `yaml:"eq_preset"`
	CrossfadeSeconds float64  `yaml:"crossfade_seconds"`
	Gapless          bool     `yaml:"gapless"`
	RadioMode        bool     `yaml:"radio_mode"`
	BackendURL       string   `yaml:"backend_url"`
	Favorites        []string `yaml:"favorites"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Volume = ClampVolume(cfg.Volume)
	cfg.CrossfadeSeconds = ClampCrossfade(cfg.CrossfadeSeconds)
	if cfg.EQPreset == "" {
		cfg.EQPreset = DefaultEQPreset
	}

	return cfg, nil
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Volume:           DefaultVolume,
		EQPreset:         DefaultEQPreset,
		CrossfadeSeconds: 0,
		Gapless:          true,
		RadioMode:        false,
		BackendURL:       "",
		Favorites:        []string{},
	}
}

func (c *Config) IsFavorite(songID string) bool {
	for _, id := range c.Favorites {
		if id == songID {
			return true
		}
	}
	return false
}

func (c *Config) ToggleFavorite(songID string) {
	for i, id := range c.Favorites {
		if id == songID {
			c.Favorites = append(c.Favorites[:i], c.Favorites[i+1:]...)
			return
		}
	}
	c.Favorites = append(c.Favorites, songID)
}

func (c *Config) CleanupFavorites(validSongIDs map[string]bool) {
	cleaned := []string{}
	for _, id := range c.Favorites {
		if validSongIDs[id] {
			cleaned = append(cleaned, id)
		}
	}
	c.Favorites = cleaned
}
