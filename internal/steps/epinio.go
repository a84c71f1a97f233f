// Package steps is the catalogue of named Epinio console actions. Every
// operation validates its parameters, drives the browser through
// browser.Driver and returns the first failed wait as an error.
package steps

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

const (
	// UIRancher selects the Rancher dashboard extension flavour.
	UIRancher = "rancher"

	// DefaultNamespace is created by Epinio on install.
	DefaultNamespace = "workspace"

	longWait   = 20 * time.Second
	deleteWait = 60 * time.Second
	deployWait = 5 * time.Minute
)

// Settings are the run-level values steps need.
type Settings struct {
	UI           string
	Cluster      string
	SystemDomain string
	Username     string
	Password     string
	FixturesDir  string
	DownloadsDir string
	Namespace    string
}

// ClusterView reports Epinio namespaces as the cluster sees them.
type ClusterView interface {
	Count(ctx context.Context) (int, error)
	WaitCount(ctx context.Context, n int, timeout time.Duration) error
}

// RouteProber fetches an application route.
type RouteProber interface {
	Probe(ctx context.Context, url string) (status int, body string, err error)
}

// Option configures an Epinio step library.
type Option func(*Epinio)

// WithCluster enables namespace cross-checks against the cluster.
func WithCluster(c ClusterView) Option {
	return func(e *Epinio) { e.cluster = c }
}

// WithProber enables route access checks in CheckApp.
func WithProber(p RouteProber) Option {
	return func(e *Epinio) { e.prober = p }
}

// Epinio runs steps against one browser session.
type Epinio struct {
	d        browser.Driver
	cfg      Settings
	log      *zap.Logger
	validate *validator.Validate
	cluster  ClusterView
	prober   RouteProber
}

// New returns a step library driving d. A nil log discards output.
func New(d browser.Driver, cfg Settings, log *zap.Logger, opts ...Option) *Epinio {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.FixturesDir == "" {
		cfg.FixturesDir = "fixtures"
	}
	if cfg.DownloadsDir == "" {
		cfg.DownloadsDir = "downloads"
	}
	e := &Epinio{
		d:        d,
		cfg:      cfg,
		log:      log.Named("steps"),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy logging with the extra fields.
func (e *Epinio) With(fields ...zap.Field) *Epinio {
	c := *e
	c.log = e.log.With(fields...)
	return &c
}

func (e *Epinio) Driver() browser.Driver { return e.d }

func (e *Epinio) Settings() Settings { return e.cfg }

func (e *Epinio) rancher() bool { return e.cfg.UI == UIRancher }

// route returns the console path of an Epinio resource list.
func (e *Epinio) route(resource string) string {
	if e.rancher() {
		return "/dashboard/epinio/c/" + e.cfg.Cluster + "/" + resource
	}
	return "/epinio/c/default/" + resource
}

func (e *Epinio) fixture(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.cfg.FixturesDir, name)
}

// defaultRoute is the route Epinio assigns to an app without a custom one.
func (e *Epinio) defaultRoute(app string) string {
	if e.cfg.SystemDomain == "" {
		return app
	}
	return app + "." + strings.TrimPrefix(e.cfg.SystemDomain, ".")
}

func (e *Epinio) namespace(ns string) string {
	if ns == "" {
		return e.cfg.Namespace
	}
	return ns
}
