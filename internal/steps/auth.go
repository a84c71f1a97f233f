package steps

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// Texts shown by the login pages.
const (
	TextInvalidLogin    = "Invalid username or password. Please try again."
	TextInvalidDexLogin = "Invalid Email Address and password"
	TextWelcome         = "Welcome to Epinio"
	textFirstVisit      = "your first time visiting Rancher"
)

const loginPath = "/auth/login"

// Login submits the login form. Empty credentials fall back to the
// configured user. The outcome is left for the caller to assert.
func (e *Epinio) Login(ctx context.Context, username, password string) error {
	if username == "" {
		username, password = e.cfg.Username, e.cfg.Password
	}
	e.log.Info("login", zap.String("username", username))

	if err := e.d.Visit(ctx, loginPath); err != nil {
		return fmt.Errorf("failed to navigate to login: %w", err)
	}
	if e.rancher() {
		// Rancher asks for the local user only after choosing the provider.
		n, err := e.d.Count(ctx, browser.Sel(selUsername))
		if err != nil {
			return err
		}
		if n == 0 {
			if err := e.ClickButton(ctx, "Use a Local User"); err != nil {
				return err
			}
		}
	}
	if err := e.d.Fill(ctx, browser.Sel(selUsername).Within(longWait), username); err != nil {
		return fmt.Errorf("username input not found: %w", err)
	}
	if err := e.d.Fill(ctx, browser.Sel(selPassword), password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := e.d.Click(ctx, browser.Sel(selLoginSubmit)); err != nil {
		return fmt.Errorf("failed to click submit: %w", err)
	}
	return nil
}

// LoginAndLand logs in and waits for the Applications entry of the side
// navigation.
func (e *Epinio) LoginAndLand(ctx context.Context, username, password string) error {
	if err := e.Login(ctx, username, password); err != nil {
		return err
	}
	return e.d.WaitVisible(ctx, browser.Text("Applications").Within(longWait))
}

// FirstLogin walks the Rancher bootstrap screens: bootstrap password, new
// admin password, EULA.
func (e *Epinio) FirstLogin(ctx context.Context) error {
	e.log.Info("rancher first login")
	pw := browser.Sel(selPassword)
	if err := e.d.Fill(ctx, pw.Within(longWait), e.cfg.Password); err != nil {
		return fmt.Errorf("bootstrap password input not found: %w", err)
	}
	if err := e.ClickButton(ctx, "Log in with Local User"); err != nil {
		return err
	}
	if err := e.ExpectText(ctx, "Welcome to Rancher"); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Text("Set a specific password to use")); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if err := e.d.Fill(ctx, pw.Nth(i), e.cfg.Password); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
	}
	if err := e.d.Check(ctx, browser.Sel(".checkbox-container").Contains("I agree").Forced()); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Continue"); err != nil {
		return err
	}
	return e.d.WaitURL(ctx, "/dashboard")
}

// RunFirstConnectionTest runs FirstLogin only on a fresh Rancher.
func (e *Epinio) RunFirstConnectionTest(ctx context.Context) error {
	if err := e.d.Visit(ctx, loginPath); err != nil {
		return err
	}
	text, err := e.d.Text(ctx, browser.Sel("body").Within(longWait))
	if err != nil {
		return err
	}
	if strings.Contains(text, textFirstVisit) {
		return e.FirstLogin(ctx)
	}
	e.log.Info("rancher already initialized, no need to handle first login")
	return nil
}

// DexLogin authenticates through the Dex connector. With checkLandingPage
// it also grants access and waits for the Epinio console.
func (e *Epinio) DexLogin(ctx context.Context, username, password string, checkLandingPage bool) error {
	e.log.Info("dex login", zap.String("username", username))
	if err := e.d.Visit(ctx, loginPath); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Log in with Dex"); err != nil {
		return err
	}
	if err := e.d.Fill(ctx, browser.Sel(selDexLogin).Within(longWait), username); err != nil {
		return fmt.Errorf("dex login input not found: %w", err)
	}
	if err := e.d.Fill(ctx, browser.Sel(selDexPassword), password); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selDexSubmit)); err != nil {
		return err
	}
	if !checkLandingPage {
		return nil
	}
	if err := e.d.Click(ctx, browser.Sel(selDexGrant).Contains("Grant Access").Within(longWait)); err != nil {
		return err
	}
	return e.d.WaitVisible(ctx, browser.Text("Applications").Within(longWait))
}
