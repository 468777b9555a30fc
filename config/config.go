package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/moviedeck/tmdb"
)

const (
	envPrefix = "MOVIEDECK"
	appDir    = ".moviedeck"
)

// Load loads the configuration from file, the environment and a .env file in
// the working directory. Without an explicit path a missing config file is not
// an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, appDir))
		}

		// Check /etc
		v.AddConfigPath("/etc/moviedeck/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Favorites.Path = expandHome(cfg.Favorites.Path)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultFavoritesPath returns the favorites file under the user's home directory
func DefaultFavoritesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "favorites.json"
	}
	return filepath.Join(home, appDir, "favorites.json")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.base_url", tmdb.DefaultBaseURL)
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.token", "")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", 30*time.Second)
	v.SetDefault("tmdb.image_base", tmdb.DefaultImageBase)

	v.SetDefault("catalog.default_sort", tmdb.SortPopular)
	v.SetDefault("favorites.path", DefaultFavoritesPath())

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.metrics", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url is required")
	}

	if (cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here") && cfg.TMDB.Token == "" {
		return fmt.Errorf("tmdb.api_key or tmdb.token must be set")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if !tmdb.ValidSort(cfg.Catalog.DefaultSort) {
		return fmt.Errorf("invalid catalog.default_sort: %s (must be one of %s)",
			cfg.Catalog.DefaultSort, strings.Join(tmdb.SortKeys(), ", "))
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
