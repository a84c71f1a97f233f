// Package version provides build-time version information for epinio-e2e.
// These variables are set at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags
var (
	// Version is the semantic version (e.g., "v1.2.0") or "dev"
	Version = "dev"

	// GitCommit is the short git commit SHA
	GitCommit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info contains structured version information, including the versions of
// the browser backends compiled in.
type Info struct {
	Version    string `json:"version" yaml:"version"`
	GitCommit  string `json:"git_commit" yaml:"git_commit"`
	BuildDate  string `json:"build_date" yaml:"build_date"`
	GoVersion  string `json:"go_version" yaml:"go_version"`
	Playwright string `json:"playwright,omitempty" yaml:"playwright,omitempty"`
	Chromedp   string `json:"chromedp,omitempty" yaml:"chromedp,omitempty"`
}

var backends = map[string]func(*Info, string){
	"github.com/playwright-community/playwright-go": func(i *Info, v string) { i.Playwright = v },
	"github.com/chromedp/chromedp":                  func(i *Info, v string) { i.Chromedp = v },
}

// GetInfo returns the current version info.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if set, ok := backends[dep.Path]; ok {
				set(&info, dep.Version)
			}
		}
	}
	return info
}

// String returns a human-readable version string, e.g. "v1.2.0 (abc1234)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Full returns the full version string with all details.
func Full() string {
	return fmt.Sprintf("%s (%s) built %s with %s", Version, GitCommit, BuildDate, runtime.Version())
}
