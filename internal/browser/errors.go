package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is wrapped by every assertion that gave up waiting.
	ErrTimeout = errors.New("timed out")
	// ErrMismatch is wrapped when the page answered but with the wrong state.
	ErrMismatch = errors.New("unexpected page state")
	// ErrUnsupported is returned by drivers lacking a primitive.
	ErrUnsupported = errors.New("not supported by driver")
)

// AssertionError is the single failure kind of the suite: an element did
// not reach the expected state within the bounded wait.
type AssertionError struct {
	Target Target
	Expect string
	Err    error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s to be %s: %v", e.Target, e.Expect, e.Err)
}

func (e *AssertionError) Unwrap() error { return e.Err }

// Mismatch builds an AssertionError for a value read back from the page.
func Mismatch(t Target, want, got string) error {
	return &AssertionError{
		Target: t,
		Expect: want,
		Err:    fmt.Errorf("%w: got %q", ErrMismatch, got),
	}
}

// IsAssertion reports whether err carries an AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
