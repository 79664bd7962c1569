package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Kadajett/musicManager/internal/domain"
)

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	// Add user config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "musicman"))
	}

	// Add home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "musicman"))
		paths = append(paths, filepath.Join(homeDir, ".musicman"))
	}

	return paths
}

// setDefaults registers defaults so a missing config file still yields a
// working configuration
func setDefaults(v *viper.Viper) {
	dataDir := "."
	if configDir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(configDir, "musicman")
	}

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("max_recent_locations", 10)
	v.SetDefault("audio_extensions", DefaultAudioExtensions())
	v.SetDefault("device_poll_interval", 2*time.Second)
	v.SetDefault("transfer_temp_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", false)
}

// Load reads and parses a configuration file
// If path is empty, searches default locations for config.yaml; a missing
// file is not an error because every setting has a default
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		// Use specific file
		v.SetConfigFile(path)
	} else {
		// Search default paths
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if path != "" {
				return nil, domain.ErrConfigNotFound
			}
			// No config file anywhere: run on defaults
		} else if os.IsNotExist(err) {
			return nil, domain.ErrConfigNotFound
		} else {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	cfg.DataDir = ExpandPath(cfg.DataDir)
	if cfg.TransferTempDir != "" {
		cfg.TransferTempDir = ExpandPath(cfg.TransferTempDir)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
