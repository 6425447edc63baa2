// Package config provides configuration management for FrontNote using
// Viper for loading from files, environment variables and command-line
// flags.
//
// The configuration file is .frontnote.yml in the working directory.
// Environment variables use the FRONTNOTE_ prefix with dots replaced by
// underscores, for example FRONTNOTE_SERVER_PORT.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/frontnote/internal/errors"
)

const (
	// FileName is the default configuration file name.
	FileName = ".frontnote.yml"
	// EnvPrefix is the prefix for environment overrides.
	EnvPrefix = "FRONTNOTE"
	// DefaultOverview is the overview markdown read when none is configured.
	DefaultOverview = "styleguide.md"

	UnterminatedIgnore = "ignore"
	UnterminatedWarn   = "warn"

	maxDefaultWorkers = 8
)

type Config struct {
	Title            string   `mapstructure:"title"`
	Files            []string `mapstructure:"files"`
	Exclude          []string `mapstructure:"exclude"`
	Overview         string   `mapstructure:"overview"`
	Template         string   `mapstructure:"template"`
	IncludeAssetPath []string `mapstructure:"include_asset_path"`
	CSS              []string `mapstructure:"css"`
	Script           []string `mapstructure:"script"`
	Out              string   `mapstructure:"out"`
	Verbose          bool     `mapstructure:"verbose"`
	Clean            bool     `mapstructure:"clean"`
	Cache            bool     `mapstructure:"cache"`
	CachePath        string   `mapstructure:"cache_path"`
	Unterminated     string   `mapstructure:"unterminated"`
	LineBreak        string   `mapstructure:"line_break"`
	Workers          int      `mapstructure:"workers"`

	Server ServerConfig `mapstructure:"server"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Log    LogConfig    `mapstructure:"log"`

	// OverviewExplicit is true when the overview path came from the user
	// rather than DefaultOverview. A missing explicit overview is an error.
	OverviewExplicit bool `mapstructure:"-"`
	// TargetFiles holds CLI arguments; when set they replace Files.
	TargetFiles []string `mapstructure:"-"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Open bool   `mapstructure:"open"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default values on v. The overview key is left
// unset so that Load can tell a configured overview from the default one.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("title", "StyleGuide")
	v.SetDefault("files", []string{"**/*.css"})
	v.SetDefault("exclude", []string{"node_modules/**", ".git/**"})
	v.SetDefault("template", "")
	v.SetDefault("include_asset_path", []string{"assets/**/*"})
	v.SetDefault("css", []string{"./style.css"})
	v.SetDefault("script", []string{})
	v.SetDefault("out", "./guide")
	v.SetDefault("verbose", false)
	v.SetDefault("clean", false)
	v.SetDefault("cache", true)
	v.SetDefault("cache_path", filepath.Join(".frontnote", "cache.db"))
	v.SetDefault("unterminated", UnterminatedIgnore)
	v.SetDefault("line_break", "<br>")
	v.SetDefault("workers", 0)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.open", false)
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals, completes and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}

	if config.Overview == "" {
		config.Overview = DefaultOverview
	} else {
		config.OverviewExplicit = true
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	out, err := filepath.Abs(config.Out)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	config.Out = out

	return &config, nil
}

// Patterns returns the file patterns to scan: the CLI targets when given,
// otherwise the configured files.
func (c *Config) Patterns() []string {
	if len(c.TargetFiles) > 0 {
		return c.TargetFiles
	}
	return c.Files
}

// EffectiveWorkers returns the worker count, NumCPU capped at 8 when unset.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU()
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}

// WarnUnterminated reports whether unterminated blocks should be logged.
func (c *Config) WarnUnterminated() bool {
	return c.Unterminated == UnterminatedWarn
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
