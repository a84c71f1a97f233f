package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeRunner struct {
	suite  string
	labels []string
	err    error
	closed bool
}

func (f *fakeRunner) RunCases(_ context.Context, suite string, labels ...string) error {
	f.suite, f.labels = suite, labels
	return f.err
}

func (f *fakeRunner) Close() error {
	f.closed = true
	return nil
}

func TestSuiteTask(t *testing.T) {
	fr := &fakeRunner{}
	afterCalls := 0
	task := NewSuiteTask("namespaces", []string{"newNamespace", "namespaceFilter"}, "0 0 * * * *", time.Hour,
		func(context.Context) (CaseRunner, error) { return fr, nil },
		zaptest.NewLogger(t),
		AfterRun(func() error { afterCalls++; return nil }))

	assert.Equal(t, "suite:namespaces", task.Name())
	assert.Equal(t, "0 0 * * * *", task.Schedule())
	assert.Equal(t, time.Hour, task.Timeout())

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, "namespaces", fr.suite)
	assert.Equal(t, []string{"newNamespace", "namespaceFilter"}, fr.labels)
	assert.True(t, fr.closed)
	assert.Equal(t, 1, afterCalls)
}

func TestSuiteTaskFailure(t *testing.T) {
	boom := errors.New("boom")
	fr := &fakeRunner{err: boom}
	afterErr := errors.New("textfile not writable")
	task := NewSuiteTask("applications", []string{"customRoute"}, "@hourly", 0,
		func(context.Context) (CaseRunner, error) { return fr, nil },
		zaptest.NewLogger(t),
		AfterRun(func() error { return afterErr }))

	err := task.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, afterErr)
	assert.Contains(t, err.Error(), "suite applications")
	assert.True(t, fr.closed, "session closed after a failure")
}

func TestSuiteTaskOpenFailure(t *testing.T) {
	task := NewSuiteTask("applications", []string{"customRoute"}, "@hourly", 0,
		func(context.Context) (CaseRunner, error) { return nil, errors.New("no browser") },
		zaptest.NewLogger(t))

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open session")
}

func TestSuiteTaskWithoutCases(t *testing.T) {
	opened := false
	task := NewSuiteTask("applications", nil, "@hourly", 0,
		func(context.Context) (CaseRunner, error) { opened = true; return &fakeRunner{}, nil },
		zaptest.NewLogger(t))

	require.NoError(t, task.Run(context.Background()))
	assert.False(t, opened)
}
