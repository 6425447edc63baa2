// Package version reports the FrontNote build, from -ldflags when set and
// from the module build info otherwise.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// These variables are set at build time using -ldflags, for example
//
//	-X github.com/conneroisu/frontnote/internal/version.Version=v0.3.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	// BuildTime is RFC3339.
	BuildTime = "unknown"
)

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	Dirty     bool      `json:"dirty" yaml:"dirty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
}

var (
	once   sync.Once
	cached Info
)

// Get returns the build information. It is computed once.
func Get() Info {
	once.Do(func() {
		info, _ := debug.ReadBuildInfo()
		cached = resolve(Version, GitCommit, BuildTime, info)
	})
	return cached
}

// resolve merges linker-provided values with the module build info.
func resolve(version, commit, built string, info *debug.BuildInfo) Info {
	result := Info{
		Version:   version,
		GitCommit: commit,
		BuildTime: parseTime(built),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if result.Version == "" {
		result.Version = "dev"
	}
	if result.GitCommit == "" {
		result.GitCommit = unknown
	}
	if info == nil {
		return result
	}

	if result.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		result.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if result.GitCommit == unknown {
				result.GitCommit = setting.Value
			}
		case "vcs.time":
			if result.BuildTime.IsZero() {
				result.BuildTime = parseTime(setting.Value)
			}
		case "vcs.modified":
			result.Dirty = setting.Value == "true"
		}
	}
	return result
}

// Short returns the version with an abbreviated commit, e.g.
// "v0.3.0 (1a2b3c4)" or "dev-1a2b3c4".
func (i Info) Short() string {
	if i.GitCommit == unknown || len(i.GitCommit) < 7 {
		return i.Version
	}
	commit := i.GitCommit[:7]
	if i.Version == "dev" {
		return "dev-" + commit
	}
	return fmt.Sprintf("%s (%s)", i.Version, commit)
}

// Detailed returns one "Key: value" line per known field.
func (i Info) Detailed() string {
	parts := []string{"Version: " + i.Version}
	if i.GitCommit != unknown {
		commit := "Commit: " + i.GitCommit
		if i.Dirty {
			commit += " (dirty)"
		}
		parts = append(parts, commit)
	}
	if !i.BuildTime.IsZero() {
		parts = append(parts, "Built: "+i.BuildTime.Format(time.RFC3339))
	}
	parts = append(parts, "Go: "+i.GoVersion, "Platform: "+i.Platform)
	return strings.Join(parts, "\n")
}

// IsRelease reports whether the binary carries a real version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !strings.HasPrefix(i.Version, "dev-")
}

// Banner is the text of the console start line.
func Banner() string {
	return "FrontNote - " + Get().Short()
}

// parseTime accepts RFC3339 and a few common variants; anything else is
// the zero time.
func parseTime(s string) time.Time {
	if s == "" || s == unknown {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
