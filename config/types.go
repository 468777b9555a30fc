package config

import (
	"strings"
	"time"
)

// Config represents the complete configuration structure
type Config struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Server    ServerConfig    `mapstructure:"server"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Token     string        `mapstructure:"token"`
	Language  string        `mapstructure:"language"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ImageBase string        `mapstructure:"image_base"`
}

// CatalogConfig contains browse settings
type CatalogConfig struct {
	DefaultSort string `mapstructure:"default_sort"`
}

// FavoritesConfig contains settings for the saved movie list
type FavoritesConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Preset resolves name to a named filter expression. Preset names are
// case-insensitive since viper lowercases map keys. Anything that is not a
// preset name is returned unchanged.
func (f FilterConfig) Preset(name string) string {
	if expr, ok := f[name]; ok {
		return expr
	}
	if expr, ok := f[strings.ToLower(name)]; ok {
		return expr
	}
	return name
}
