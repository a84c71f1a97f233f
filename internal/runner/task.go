package runner

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Task is one scheduled job, in practice a suite run.
type Task interface {
	Name() string
	// Schedule is a six-field cron expression, seconds first.
	Schedule() string
	Run(ctx context.Context) error
	// Timeout bounds one run; zero leaves only the parent context.
	Timeout() time.Duration
}

// TaskRegistry keeps tasks in registration order.
type TaskRegistry struct {
	order  []Task
	byName map[string]Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{byName: make(map[string]Task)}
}

// Register adds task. Names must be unique.
func (r *TaskRegistry) Register(task Task) error {
	if _, dup := r.byName[task.Name()]; dup {
		return fmt.Errorf("task %s registered twice", task.Name())
	}
	r.byName[task.Name()] = task
	r.order = append(r.order, task)
	return nil
}

func (r *TaskRegistry) Get(name string) (Task, bool) {
	task, ok := r.byName[name]
	return task, ok
}

// Tasks returns the tasks in registration order.
func (r *TaskRegistry) Tasks() []Task {
	return append([]Task(nil), r.order...)
}

// Names returns the registered task names sorted.
func (r *TaskRegistry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}
