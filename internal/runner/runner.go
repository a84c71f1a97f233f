package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner executes scheduled suite runs one at a time. A task whose tick
// fires while another task runs waits for it. A tick that fires while the
// previous run of the same task is still going or waiting is skipped.
type Runner struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *zap.Logger
	running  sync.Mutex
}

// NewRunner creates a new task runner
func NewRunner(registry *TaskRegistry, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("runner")
	cl := cronLogger{log: log}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		registry: registry,
		logger:   log,
	}
}

// Start schedules every registered task and blocks until a signal arrives
// or ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("starting task runner")

	tasks := r.registry.Tasks()
	for _, task := range tasks {
		name := task.Name()
		r.logger.Info("registering task", zap.String("task", name), zap.String("schedule", task.Schedule()))

		_, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
	}

	r.cron.Start()
	r.logger.Info("task runner started", zap.Int("tasks", len(tasks)))

	return r.waitForShutdown(ctx)
}

// RunNow executes the named task once, outside the schedule.
func (r *Runner) RunNow(ctx context.Context, name string) error {
	task, ok := r.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return r.executeTask(ctx, task)
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) error {
	r.running.Lock()
	defer r.running.Unlock()
	if err := ctx.Err(); err != nil {
		r.logger.Info("task not started", zap.String("task", task.Name()), zap.Error(err))
		return err
	}

	taskCtx := ctx
	if d := task.Timeout(); d > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	r.logger.Info("executing task", zap.String("task", task.Name()))

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		r.logger.Error("task failed", zap.String("task", task.Name()), zap.Duration("duration", duration), zap.Error(err))
	} else {
		r.logger.Info("task completed", zap.String("task", task.Name()), zap.Duration("duration", duration))
	}
	return err
}

// Stop gracefully shuts down the runner
func (r *Runner) Stop() {
	r.logger.Info("stopping task runner")

	// Stop accepting new ticks, then wait for running tasks.
	<-r.cron.Stop().Done()

	r.logger.Info("task runner stopped")
}

// waitForShutdown waits for termination signals
func (r *Runner) waitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		r.logger.Info("received signal", zap.String("signal", sig.String()))
		r.Stop()
		return nil
	case <-ctx.Done():
		r.logger.Info("context cancelled")
		r.Stop()
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
