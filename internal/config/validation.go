package config

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/logging"
)

// validateConfig checks every field and reports all problems at once.
func validateConfig(config *Config) error {
	var vec errors.ValidationErrorCollection

	if strings.TrimSpace(config.Out) == "" {
		vec.AddField("out", config.Out, "output directory must not be empty")
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		vec.AddField("server.port", config.Server.Port, "port is not in valid range 0-65535",
			"use 0 to let the system pick a free port")
	}

	if config.Server.Host != "" && strings.ContainsAny(config.Server.Host, " \t;&|$`<>\"'\\") {
		vec.AddField("server.host", config.Server.Host, "host contains invalid characters")
	}

	switch config.Unterminated {
	case UnterminatedIgnore, UnterminatedWarn:
	default:
		vec.AddField("unterminated", config.Unterminated, "unknown policy",
			"use "+UnterminatedIgnore+" or "+UnterminatedWarn)
	}

	if config.LineBreak == "" {
		vec.AddField("line_break", config.LineBreak, "line break marker must not be empty")
	}

	if config.Workers < 0 {
		vec.AddField("workers", config.Workers, "worker count must not be negative")
	}

	if config.Watch.Debounce < 0 {
		vec.AddField("watch.debounce", config.Watch.Debounce, "debounce must not be negative")
	}

	if config.Cache && strings.TrimSpace(config.CachePath) == "" {
		vec.AddField("cache_path", config.CachePath, "cache path must not be empty when the cache is enabled",
			"set cache: false to disable the cache")
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		vec.AddField("log.level", config.Log.Level, err.Error(), "use debug, info, warn or error")
	}

	if config.Log.Format != "" && config.Log.Format != "text" && config.Log.Format != "json" {
		vec.AddField("log.format", config.Log.Format, "unknown log format", "use text or json")
	}

	validatePatterns(&vec, "files", config.Files)
	validatePatterns(&vec, "exclude", config.Exclude)
	validatePatterns(&vec, "include_asset_path", config.IncludeAssetPath)

	if fe := vec.ToFrontNoteError(); fe != nil {
		return fe
	}
	return nil
}

func validatePatterns(vec *errors.ValidationErrorCollection, field string, patterns []string) {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			vec.AddField(field, pattern, "pattern must not be empty")
			continue
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			vec.AddField(field, pattern, "invalid glob pattern: "+err.Error())
		}
	}
}
