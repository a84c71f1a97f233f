package scenario

import (
	"time"

	"go.uber.org/zap"
)

// StepEvent is reported after every step, cleanup included.
type StepEvent struct {
	RunID    string
	Suite    string
	Case     string
	Index    int
	Step     string
	Cleanup  bool
	Duration time.Duration
	Err      error
}

// CaseEvent is reported once per Run after the case has stopped.
type CaseEvent struct {
	RunID    string
	Suite    string
	Case     string
	Duration time.Duration
	Err      error
}

// Observer receives step and case outcomes.
type Observer interface {
	StepDone(StepEvent)
	CaseDone(CaseEvent)
}

// LogObserver writes outcomes to a zap logger.
type LogObserver struct {
	Log *zap.Logger
}

func (o LogObserver) StepDone(ev StepEvent) {
	fields := []zap.Field{
		zap.String("run_id", ev.RunID),
		zap.String("suite", ev.Suite),
		zap.String("case", ev.Case),
		zap.Int("index", ev.Index),
		zap.String("step", ev.Step),
		zap.Duration("duration", ev.Duration),
	}
	if ev.Cleanup {
		fields = append(fields, zap.Bool("cleanup", true))
	}
	if ev.Err != nil {
		o.Log.Error("step failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	o.Log.Info("step passed", fields...)
}

func (o LogObserver) CaseDone(ev CaseEvent) {
	fields := []zap.Field{
		zap.String("run_id", ev.RunID),
		zap.String("suite", ev.Suite),
		zap.String("case", ev.Case),
		zap.Duration("duration", ev.Duration),
	}
	if ev.Err != nil {
		o.Log.Error("case failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	o.Log.Info("case passed", fields...)
}
