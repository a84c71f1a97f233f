package helpers

import (
	"context"
	"fmt"

	"github.com/epinio/epinio-e2e/internal/browser"
	"github.com/epinio/epinio-e2e/internal/steps"
)

// Credential is one username/password pair of a login table.
type Credential struct {
	Username string
	Password string
	Kind     string
}

// ExpectLoginAccepted submits c and asserts the console landed.
func ExpectLoginAccepted(ctx context.Context, e *steps.Epinio, c Credential) error {
	if err := e.Login(ctx, c.Username, c.Password); err != nil {
		return err
	}
	if err := e.ExpectNoText(ctx, steps.TextInvalidLogin); err != nil {
		return fmt.Errorf("login as %q rejected: %w", c.Username, err)
	}
	return e.Driver().WaitVisible(ctx, browser.Text("Applications"))
}

// ExpectLoginRejected submits c and asserts the error banner.
func ExpectLoginRejected(ctx context.Context, e *steps.Epinio, c Credential) error {
	if err := e.Login(ctx, c.Username, c.Password); err != nil {
		return err
	}
	if err := e.ExpectText(ctx, steps.TextInvalidLogin); err != nil {
		return fmt.Errorf("login as %q not rejected: %w", c.Username, err)
	}
	return nil
}

// Logout clears the session cookies by visiting the logout route.
func Logout(ctx context.Context, e *steps.Epinio) error {
	return e.Visit(ctx, "/auth/logout")
}
