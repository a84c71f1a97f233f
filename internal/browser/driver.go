// Package browser hides the browser-automation backend behind a small set
// of primitives (navigate, click, type, wait, read) used by the step
// library. Every wait is bounded by the configured timeout.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Driver is the command set the step library consumes.
type Driver interface {
	Visit(ctx context.Context, path string) error
	URL(ctx context.Context) (string, error)
	WaitURL(ctx context.Context, contains string) error
	Back(ctx context.Context) error
	Reload(ctx context.Context) error

	Click(ctx context.Context, t Target) error
	Fill(ctx context.Context, t Target, value string) error
	Press(ctx context.Context, t Target, key string) error
	Check(ctx context.Context, t Target) error
	SetFiles(ctx context.Context, t Target, files ...string) error

	WaitVisible(ctx context.Context, t Target) error
	WaitHidden(ctx context.Context, t Target) error
	WaitText(ctx context.Context, t Target, text string) error
	WaitCount(ctx context.Context, t Target, n int) error

	Text(ctx context.Context, t Target) (string, error)
	Count(ctx context.Context, t Target) (int, error)
	Attribute(ctx context.Context, t Target, name string) (string, error)

	// Download clicks trigger and returns the path of the saved file in dir.
	Download(ctx context.Context, trigger Target, dir string) (string, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Options configures a backend.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Headless  bool
	SlowMo    time.Duration
	VideosDir string
	// RemoteURL points chromedp at an already running browser.
	RemoteURL string
}

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

// New starts the named backend.
func New(name string, opts Options, log *zap.Logger) (Driver, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	switch name {
	case "", DriverPlaywright:
		return NewPlaywright(opts, log)
	case DriverChromedp:
		return NewChromedp(opts, log)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", name)
	}
}

func absoluteURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func waitFor(opts Options, t Target) time.Duration {
	if d := t.Timeout(); d > 0 {
		return d
	}
	return opts.Timeout
}
