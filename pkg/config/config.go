// Package config loads blockmondrian settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/blockmondrian/config.toml (falling
// back to ~/.config) unless a path is given explicitly. A missing file is not
// an error: [Default] values apply. Command-line flags override whatever the
// file sets.
//
// Example file:
//
//	thresholds = [0.01, 0.1, 1, 10, 100, 1000, 10000, 100000, 1000000]
//
//	[api]
//	base_url = "https://blockchain.info"
//	timeout = "30s"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[render]
//	width = 1024
//	height = 1024
//	style = "spectrum"
//
//	[server]
//	max_dimension = 4096
package config

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockmondrian/pkg/classify"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

const appName = "blockmondrian"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full settings tree.
type Config struct {
	Thresholds []float64    `toml:"thresholds"`
	API        APIConfig    `toml:"api"`
	Cache      CacheConfig  `toml:"cache"`
	Render     RenderConfig `toml:"render"`
	Server     ServerConfig `toml:"server"`
}

// APIConfig configures the block data source.
type APIConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"` // file backend; empty means the XDG cache dir
	TTL     time.Duration `toml:"ttl"`
	Scope   string        `toml:"scope"` // prefix for pipeline keys, e.g. "staging:"
	Redis   RedisConfig   `toml:"redis"`
}

// RedisConfig addresses the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Padding float64  `toml:"padding"`
	Style   string   `toml:"style"`
	Color   string   `toml:"color"`
	Formats []string `toml:"formats"`
}

// ServerConfig configures `blockmondrian serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	RenderLimit  time.Duration `toml:"render_timeout"`
	MaxDimension float64       `toml:"max_dimension"` // largest accepted width or height; 0 disables
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Thresholds: append([]float64(nil), classify.DefaultThresholds...),
		API: APIConfig{
			BaseURL: "https://blockchain.info",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     24 * time.Hour,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"},
		},
		Render: RenderConfig{
			Width:   1024,
			Height:  1024,
			Padding: mosaic.DefaultPadding,
			Style:   styles.NameSolid,
			Color:   styles.DefaultColor,
			Formats: []string{"svg"},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
			RenderLimit:  time.Minute,
			MaxDimension: 4096,
		},
	}
}

// DefaultPath returns the config file location following XDG conventions.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over [Default]. An empty path means [DefaultPath]; a
// missing file at the default location yields the defaults, while a missing
// explicit path is FILE_NOT_FOUND. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return Default(), bmerrors.Wrap(bmerrors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Default(), nil
		}
		return Default(), bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), bmerrors.New(bmerrors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// PipelineOptions returns render and layout defaults as pipeline options,
// with no value source set.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Thresholds: append([]float64(nil), c.Thresholds...),
		Width:      c.Render.Width,
		Height:     c.Render.Height,
		Padding:    pipeline.Float(c.Render.Padding),
		Style:      c.Render.Style,
		Color:      c.Render.Color,
		Formats:    append([]string(nil), c.Render.Formats...),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := classify.Thresholds(c.Thresholds).Validate(); err != nil {
		return err
	}
	if err := bmerrors.ValidateURL(c.API.BaseURL); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return bmerrors.New(bmerrors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
		}
	default:
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if err := bmerrors.ValidateDimensions(c.Render.Width, c.Render.Height); err != nil {
		return err
	}
	if err := bmerrors.ValidatePadding(c.Render.Padding); err != nil {
		return err
	}
	if _, err := styles.Parse(c.Render.Style, c.Render.Color); err != nil {
		return err
	}
	if math.IsNaN(c.Server.MaxDimension) || c.Server.MaxDimension < 0 {
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "server.max_dimension must be non-negative, got %g", c.Server.MaxDimension)
	}
	return nil
}
