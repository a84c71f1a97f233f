// Package scenario maps a suite and a case label to an ordered list of
// step library calls and runs them.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/epinio/epinio-e2e/internal/steps"
)

// ErrUnknownCase is returned for a suite or label the registry does not know.
var ErrUnknownCase = errors.New("unknown test case")

// Suite names.
const (
	Applications   = "applications"
	Configurations = "configurations"
	Namespaces     = "namespaces"
	Connection     = "connection"
)

// Step is one named call into the step library. Arg summarizes the fixed
// arguments the call is bound to.
type Step struct {
	Name string
	Arg  string
	Do   func(ctx context.Context, e *steps.Epinio) error
}

func step(name, arg string, do func(ctx context.Context, e *steps.Epinio) error) Step {
	return Step{Name: name, Arg: arg, Do: do}
}

// String renders the step as Name(Arg).
func (s Step) String() string {
	return s.Name + "(" + s.Arg + ")"
}

// Case is one labeled sequence of steps.
type Case struct {
	Label string
	Steps []Step
}

// Suite owns its cases and the cleanup step that runs after a successful
// case. Constants are the fixed names the cases use.
type Suite struct {
	Name      string
	Constants map[string]string
	Cases     []Case
	Cleanup   *Step
}

// Labels returns the case labels in declaration order.
func (s *Suite) Labels() []string {
	labels := make([]string, 0, len(s.Cases))
	for _, c := range s.Cases {
		labels = append(labels, c.Label)
	}
	return labels
}

func (s *Suite) lookup(label string) (*Case, bool) {
	for i := range s.Cases {
		if s.Cases[i].Label == label {
			return &s.Cases[i], true
		}
	}
	return nil, false
}

// Params are run-level values that case constants derive from.
type Params struct {
	SystemDomain string
}

// Registry holds every suite known to the dispatcher.
type Registry struct {
	suites map[string]*Suite
}

// NewRegistry builds the built-in suites.
func NewRegistry(p Params) *Registry {
	r := &Registry{suites: map[string]*Suite{}}
	for _, s := range []*Suite{
		applicationsSuite(p),
		configurationsSuite(),
		namespacesSuite(),
		connectionSuite(),
	} {
		r.Add(s)
	}
	return r
}

// Add registers s, replacing a suite with the same name.
func (r *Registry) Add(s *Suite) {
	r.suites[s.Name] = s
}

// Suite returns the named suite or ErrUnknownCase.
func (r *Registry) Suite(name string) (*Suite, error) {
	s, ok := r.suites[name]
	if !ok {
		return nil, fmt.Errorf("%w: suite %q", ErrUnknownCase, name)
	}
	return s, nil
}

// Suites returns the suite names sorted.
func (r *Registry) Suites() []string {
	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Labels returns the case labels of suite in declaration order.
func (r *Registry) Labels(suite string) ([]string, error) {
	s, err := r.Suite(suite)
	if err != nil {
		return nil, err
	}
	return s.Labels(), nil
}

// Case resolves suite and label.
func (r *Registry) Case(suite, label string) (*Suite, *Case, error) {
	s, err := r.Suite(suite)
	if err != nil {
		return nil, nil, err
	}
	c, ok := s.lookup(label)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrUnknownCase, suite, label)
	}
	return s, c, nil
}

// StepError reports the step that stopped a case. Index is zero-based;
// the cleanup step has the index following the last case step.
type StepError struct {
	Suite string
	Case  string
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s/%s: step %d (%s) failed: %v", e.Suite, e.Case, e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
