package scenario

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/steps"
)

// Dispatcher runs registry cases against one step library session.
type Dispatcher struct {
	reg          *Registry
	epinio       *steps.Epinio
	log          *zap.Logger
	observers    []Observer
	runID        string
	artifactsDir string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithObserver adds o to the observers notified of every step and case.
func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) DispatcherOption {
	return func(d *Dispatcher) { d.runID = id }
}

// WithArtifacts saves a screenshot under dir when a case fails.
func WithArtifacts(dir string) DispatcherOption {
	return func(d *Dispatcher) { d.artifactsDir = dir }
}

// NewDispatcher returns a dispatcher running cases of reg on e. Each
// dispatcher gets a fresh run id unless WithRunID is given.
func NewDispatcher(reg *Registry, e *steps.Epinio, log *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		reg:    reg,
		epinio: e,
		log:    log.Named("scenario"),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) RunID() string { return d.runID }

// Run executes the steps of suite/label in order and then the suite
// cleanup, which only runs when every step passed. The first failure is
// returned as a *StepError.
func (d *Dispatcher) Run(ctx context.Context, suite, label string) error {
	s, c, err := d.reg.Case(suite, label)
	if err != nil {
		return err
	}

	e := d.epinio.With(zap.String("run_id", d.runID), zap.String("suite", suite), zap.String("case", label))
	d.log.Info("running case", zap.String("run_id", d.runID), zap.String("suite", suite), zap.String("case", label), zap.Int("steps", len(c.Steps)))

	start := time.Now()
	err = d.runSteps(ctx, e, s, c)
	if err != nil {
		d.screenshot(ctx, e, suite, label)
	}
	for _, o := range d.observers {
		o.CaseDone(CaseEvent{RunID: d.runID, Suite: suite, Case: label, Duration: time.Since(start), Err: err})
	}
	return err
}

func (d *Dispatcher) runSteps(ctx context.Context, e *steps.Epinio, s *Suite, c *Case) error {
	for i, st := range c.Steps {
		if err := d.runStep(ctx, e, s.Name, c.Label, i, st, false); err != nil {
			return err
		}
	}
	if s.Cleanup == nil {
		return nil
	}
	return d.runStep(ctx, e, s.Name, c.Label, len(c.Steps), *s.Cleanup, true)
}

func (d *Dispatcher) runStep(ctx context.Context, e *steps.Epinio, suite, label string, i int, st Step, cleanup bool) error {
	if err := ctx.Err(); err != nil {
		return &StepError{Suite: suite, Case: label, Index: i, Step: st.Name, Err: err}
	}
	start := time.Now()
	err := st.Do(ctx, e.With(zap.String("step", st.Name), zap.String("args", st.Arg)))
	for _, o := range d.observers {
		o.StepDone(StepEvent{
			RunID: d.runID, Suite: suite, Case: label, Index: i, Step: st.Name,
			Cleanup: cleanup, Duration: time.Since(start), Err: err,
		})
	}
	if err != nil {
		return &StepError{Suite: suite, Case: label, Index: i, Step: st.Name, Err: err}
	}
	return nil
}

// screenshot failures are logged and never replace the case error.
func (d *Dispatcher) screenshot(ctx context.Context, e *steps.Epinio, suite, label string) {
	if d.artifactsDir == "" {
		return
	}
	path := ScreenshotPath(d.artifactsDir, d.runID, suite, label)
	if err := e.Driver().Screenshot(context.WithoutCancel(ctx), path); err != nil {
		d.log.Warn("failed to save screenshot", zap.String("path", path), zap.Error(err))
		return
	}
	d.log.Info("saved screenshot", zap.String("path", path))
}

// ScreenshotPath is where a failed case's screenshot is written.
func ScreenshotPath(dir, runID, suite, label string) string {
	return filepath.Join(dir, runID, suite+"_"+label+".png")
}
