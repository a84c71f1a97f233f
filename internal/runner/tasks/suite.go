package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/runner"
)

// CaseRunner runs cases of one suite in a fresh browser session.
type CaseRunner interface {
	RunCases(ctx context.Context, suite string, labels ...string) error
	Close() error
}

// Opener starts the session used by one scheduled run.
type Opener func(ctx context.Context) (CaseRunner, error)

// SuiteTask runs every case of a suite on a schedule.
type SuiteTask struct {
	suite    string
	labels   []string
	schedule string
	timeout  time.Duration
	open     Opener
	after    func() error
	logger   *zap.Logger
}

// SuiteOption configures a SuiteTask.
type SuiteOption func(*SuiteTask)

// AfterRun is called once the session is closed, whatever the outcome.
func AfterRun(fn func() error) SuiteOption {
	return func(t *SuiteTask) { t.after = fn }
}

// NewSuiteTask creates a task for suite with the given case labels.
func NewSuiteTask(suite string, labels []string, schedule string, timeout time.Duration, open Opener, log *zap.Logger, opts ...SuiteOption) runner.Task {
	if log == nil {
		log = zap.NewNop()
	}
	t := &SuiteTask{
		suite:    suite,
		labels:   labels,
		schedule: schedule,
		timeout:  timeout,
		open:     open,
		logger:   log.Named("suite-task").With(zap.String("suite", suite)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task name
func (t *SuiteTask) Name() string {
	return "suite:" + t.suite
}

// Schedule returns the cron expression the task runs on.
func (t *SuiteTask) Schedule() string {
	return t.schedule
}

// Timeout bounds one run of the suite.
func (t *SuiteTask) Timeout() time.Duration {
	return t.timeout
}

// Run opens a session, runs the cases and closes the session.
func (t *SuiteTask) Run(ctx context.Context) (err error) {
	if len(t.labels) == 0 {
		t.logger.Info("no cases to run, skipping")
		return nil
	}
	defer func() {
		if t.after != nil {
			if aerr := t.after(); aerr != nil {
				err = errors.Join(err, fmt.Errorf("after run: %w", aerr))
			}
		}
	}()

	s, err := t.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			t.logger.Warn("failed to close session", zap.Error(cerr))
		}
	}()

	t.logger.Info("running suite", zap.Strings("cases", t.labels))
	if err := s.RunCases(ctx, t.suite, t.labels...); err != nil {
		return fmt.Errorf("suite %s: %w", t.suite, err)
	}
	return nil
}
