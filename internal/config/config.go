package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. Levels are separated by "__",
// e.g. BOOKREC_CATALOG__PATH sets catalog.path.
const EnvPrefix = "BOOKREC_"

// CatalogConfig locates the book table.
type CatalogConfig struct {
	Source string `koanf:"source" yaml:"source" validate:"oneof=csv sqlite"`
	Path   string `koanf:"path" yaml:"path" validate:"required"`
}

// IndexConfig selects how genre similarity is computed.
type IndexConfig struct {
	GenreStrategy string `koanf:"genre_strategy" yaml:"genre_strategy" validate:"oneof=vectors shared_window"`
}

// RecommendConfig bounds the number of results per ranking.
type RecommendConfig struct {
	DefaultK int `koanf:"default_k" yaml:"default_k" validate:"min=1"`
	MaxK     int `koanf:"max_k" yaml:"max_k" validate:"min=1,gtefield=DefaultK"`
}

// CoversConfig controls cover art download and rendering.
type CoversConfig struct {
	Enabled     bool  `koanf:"enabled" yaml:"enabled"`
	TimeoutSecs int   `koanf:"timeout_secs" yaml:"timeout_secs" validate:"min=1"`
	Width       int   `koanf:"width" yaml:"width" validate:"min=4,max=200"`
	CacheSize   int   `koanf:"cache_size" yaml:"cache_size" validate:"min=1"`
	MaxBytes    int64 `koanf:"max_bytes" yaml:"max_bytes" validate:"min=1024"`
}

// PresenterConfig tunes book listings.
type PresenterConfig struct {
	BlurbSentences int `koanf:"blurb_sentences" yaml:"blurb_sentences" validate:"min=0,max=10"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string `koanf:"addr" yaml:"addr" validate:"required"`
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"min=0"`
}

// LogConfig configures the process logger. An empty File means stderr
// (or discard in the TUI).
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=json console"`
	File   string `koanf:"file" yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog   CatalogConfig   `koanf:"catalog" yaml:"catalog"`
	Index     IndexConfig     `koanf:"index" yaml:"index"`
	Recommend RecommendConfig `koanf:"recommend" yaml:"recommend"`
	Covers    CoversConfig    `koanf:"covers" yaml:"covers"`
	Presenter PresenterConfig `koanf:"presenter" yaml:"presenter"`
	Server    ServerConfig    `koanf:"server" yaml:"server"`
	Log       LogConfig       `koanf:"log" yaml:"log"`
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *AppConfig) Validate() error {
	return validate.Struct(c)
}

// Load layers defaults, the YAML file at path (skipped if it does not exist) and
// BOOKREC_ environment variables, then validates the result.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/bookrec/config.yaml.
// If neither exists, it writes defaults to ~/.config/bookrec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BOOKREC_COVERS__TIMEOUT_SECS -> covers.timeout_secs
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bookrec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Catalog:   CatalogConfig{Source: "csv", Path: "book_data.csv"},
		Index:     IndexConfig{GenreStrategy: "vectors"},
		Recommend: RecommendConfig{DefaultK: 5, MaxK: 100},
		Covers: CoversConfig{
			Enabled:     true,
			TimeoutSecs: 10,
			Width:       32,
			CacheSize:   128,
			MaxBytes:    5 << 20,
		},
		Presenter: PresenterConfig{BlurbSentences: 2},
		Server:    ServerConfig{Addr: ":8080", RateLimitPerMinute: 120},
		Log:       LogConfig{Level: "info", Format: "console"},
	}
}
