package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/config"
	"github.com/epinio/epinio-e2e/internal/metrics"
	"github.com/epinio/epinio-e2e/internal/runner"
	"github.com/epinio/epinio-e2e/internal/runner/tasks"
	"github.com/epinio/epinio-e2e/internal/scenario"
	"github.com/epinio/epinio-e2e/internal/session"
)

var onceFlag bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the configured suites on the configured cron schedule",
	Long: `schedule runs every suite listed under schedule.suites each time
schedule.cron fires (six fields, seconds first). Suites run one at a time,
and a tick is skipped while the previous run of the same suite is still
going or waiting. SIGINT or SIGTERM stops the scheduler after the running
suite finishes.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&onceFlag, "once", false, "Run every scheduled suite once and exit")
}

// buildTasks registers one task per scheduled suite. Metrics accumulate
// in m across runs and are written after each one.
func buildTasks(cfg *config.Config, log *zap.Logger, m *metrics.Collector) (*runner.TaskRegistry, error) {
	reg := scenario.NewRegistry(scenario.Params{SystemDomain: cfg.SystemDomain})
	tr := runner.NewTaskRegistry()
	for _, suite := range cfg.Schedule.Suites {
		labels, err := reg.Labels(suite)
		if err != nil {
			return nil, err
		}
		open := func(ctx context.Context) (tasks.CaseRunner, error) {
			s, err := session.Open(ctx, cfg, log, session.WithObserver(m))
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		task := tasks.NewSuiteTask(suite, labels, cfg.Schedule.Cron, cfg.Schedule.Timeout, open, log,
			tasks.AfterRun(func() error { return m.WriteTextfile(cfg.Metrics.Textfile) }))
		if err := tr.Register(task); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Schedule.Cron == "" && !onceFlag {
		return fmt.Errorf("schedule.cron is not set")
	}
	tr, err := buildTasks(cfg, log, metrics.New())
	if err != nil {
		return err
	}
	r := runner.NewRunner(tr, log)

	if onceFlag {
		var errs []error
		for _, name := range tr.Names() {
			errs = append(errs, r.RunNow(cmd.Context(), name))
		}
		return errors.Join(errs...)
	}

	err = r.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
