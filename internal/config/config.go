package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kadajett/musicManager/internal/domain"
)

// Config represents the complete configuration for musicman
type Config struct {
	// DataDir is where the state database lives
	DataDir string `mapstructure:"data_dir"`

	// Log configures logging output
	Log LogConfig `mapstructure:"log"`

	// MaxRecentLocations bounds the recent-locations list
	MaxRecentLocations int `mapstructure:"max_recent_locations"`

	// AudioExtensions lists the extensions treated as audio files
	// (lower-case, without the leading dot)
	AudioExtensions []string `mapstructure:"audio_extensions"`

	// DevicePollInterval is the fallback rescan interval for the device
	// watcher on platforms without a watchable mount table
	DevicePollInterval time.Duration `mapstructure:"device_poll_interval"`

	// TransferTempDir is where transfer archives are staged; empty means
	// the OS temp directory
	TransferTempDir string `mapstructure:"transfer_temp_dir"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultAudioExtensions matches the formats the browser recognizes
func DefaultAudioExtensions() []string {
	return []string{"mp3", "flac", "wav", "m4a", "aac", "ogg", "aiff"}
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir cannot be empty", domain.ErrConfigInvalid)
	}
	if c.MaxRecentLocations <= 0 {
		return fmt.Errorf("%w: max_recent_locations must be positive, got %d",
			domain.ErrConfigInvalid, c.MaxRecentLocations)
	}
	if len(c.AudioExtensions) == 0 {
		return fmt.Errorf("%w: audio_extensions cannot be empty", domain.ErrConfigInvalid)
	}
	for _, ext := range c.AudioExtensions {
		if ext == "" || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: audio extension %q must be non-empty without leading dot",
				domain.ErrConfigInvalid, ext)
		}
	}
	if c.DevicePollInterval <= 0 {
		return fmt.Errorf("%w: device_poll_interval must be positive, got %v",
			domain.ErrConfigInvalid, c.DevicePollInterval)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	// Expand ~ to home directory
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	// Expand environment variables
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
