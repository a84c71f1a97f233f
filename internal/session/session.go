// Package session opens everything one suite run needs: a browser, the
// optional cluster view, the step library and the dispatcher.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
	"github.com/epinio/epinio-e2e/internal/cluster"
	"github.com/epinio/epinio-e2e/internal/config"
	"github.com/epinio/epinio-e2e/internal/scenario"
	"github.com/epinio/epinio-e2e/internal/steps"
)

// Session owns one browser for the length of a run.
type Session struct {
	RunID      string
	Config     *config.Config
	Driver     browser.Driver
	Epinio     *steps.Epinio
	Dispatcher *scenario.Dispatcher
	log        *zap.Logger
}

type options struct {
	driver    browser.Driver
	cluster   steps.ClusterView
	observers []scenario.Observer
	runID     string
}

type Option func(*options)

// WithDriver uses d instead of starting the configured backend.
func WithDriver(d browser.Driver) Option {
	return func(o *options) { o.driver = d }
}

// WithCluster replaces the kubeconfig-based cluster view.
func WithCluster(c steps.ClusterView) Option {
	return func(o *options) { o.cluster = c }
}

func WithObserver(obs scenario.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Open resolves the base URL, starts the browser and wires the step
// library. The caller must Close the session.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*Session, error) {
	o := &options{runID: uuid.NewString()}
	for _, opt := range opts {
		opt(o)
	}
	log = log.With(zap.String("run_id", o.runID))

	baseURL := cfg.ResolveBaseURL(ctx, log)

	d := o.driver
	if d == nil {
		bopts := browser.Options{
			BaseURL:   baseURL,
			Timeout:   cfg.Browser.Timeout,
			Headless:  cfg.Browser.Headless,
			SlowMo:    cfg.Browser.SlowMo,
			RemoteURL: cfg.Browser.RemoteURL,
		}
		if cfg.Browser.Videos {
			bopts.VideosDir = filepath.Join(cfg.Browser.ArtifactsDir, o.runID, "videos")
		}
		var err error
		if d, err = browser.New(cfg.Browser.Driver, bopts, log); err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	}

	stepOpts := []steps.Option{steps.WithProber(steps.NewHTTPProber(cfg.Browser.Timeout, log))}
	view := o.cluster
	if view == nil && cfg.Kube.Enabled {
		ns, err := cluster.FromKubeconfig(cfg.Kube.Kubeconfig)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		view = ns
	}
	if view != nil {
		stepOpts = append(stepOpts, steps.WithCluster(view))
	}

	e := steps.New(d, steps.Settings{
		UI:           cfg.UI,
		Cluster:      cfg.Cluster,
		SystemDomain: cfg.SystemDomain,
		Username:     cfg.Username,
		Password:     cfg.Password,
		FixturesDir:  cfg.FixturesDir,
		DownloadsDir: cfg.Browser.DownloadsDir,
	}, log, stepOpts...)

	dopts := []scenario.DispatcherOption{
		scenario.WithRunID(o.runID),
		scenario.WithObserver(scenario.LogObserver{Log: log.Named("scenario")}),
	}
	for _, obs := range o.observers {
		dopts = append(dopts, scenario.WithObserver(obs))
	}
	if cfg.Browser.Screenshots {
		dopts = append(dopts, scenario.WithArtifacts(cfg.Browser.ArtifactsDir))
	}
	reg := scenario.NewRegistry(scenario.Params{SystemDomain: cfg.SystemDomain})

	log.Info("session opened",
		zap.String("base_url", baseURL), zap.String("driver", cfg.Browser.Driver),
		zap.String("ui", cfg.UI), zap.Bool("cluster_checks", view != nil))

	return &Session{
		RunID:      o.runID,
		Config:     cfg,
		Driver:     d,
		Epinio:     e,
		Dispatcher: scenario.NewDispatcher(reg, e, log, dopts...),
		log:        log,
	}, nil
}

// Login signs in with the configured credentials and waits for the console.
func (s *Session) Login(ctx context.Context) error {
	return s.Epinio.LoginAndLand(ctx, "", "")
}

// RunCases logs in once and runs each label of suite in order. Every case
// runs even when a previous one failed; the failures are joined.
func (s *Session) RunCases(ctx context.Context, suite string, labels ...string) error {
	if err := s.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	var errs []error
	for _, label := range labels {
		if err := s.Dispatcher.Run(ctx, suite, label); err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Session) Close() error {
	s.log.Info("closing session")
	return s.Driver.Close()
}
