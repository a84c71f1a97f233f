package steps

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// ExpectWelcome waits for the dashboard heading shown when no namespace
// exists yet.
func (e *Epinio) ExpectWelcome(ctx context.Context) error {
	if err := e.d.WaitVisible(ctx, browser.Sel(selHeadTitle).Contains(TextWelcome).Within(longWait)); err != nil {
		return fmt.Errorf("welcome heading not shown: %w", err)
	}
	return nil
}

// CheckDashboardResources compares the dashboard cards with want. With a
// cluster view the namespace figure is also checked against the cluster.
func (e *Epinio) CheckDashboardResources(ctx context.Context, want DashboardExpectation) error {
	if err := e.check(want); err != nil {
		return err
	}
	e.log.Info("check dashboard",
		zap.String("namespaces", want.NamespaceNumber),
		zap.String("apps", want.AppNumber),
		zap.String("running", want.RunningApps),
		zap.String("services", want.ServicesNumber))

	if err := e.ClickEpinioMenu(ctx, "Dashboard"); err != nil {
		return err
	}
	namespaces := browser.Sel(selDashCard).Contains("Namespaces").Within(longWait)
	apps := browser.Sel(selDashCard).Contains("Applications").Within(longWait)
	services := browser.Sel(selDashCard).Contains("Services").Within(longWait)

	if want.NamespaceNumber != "" {
		if err := e.d.WaitText(ctx, namespaces.Find(selDashCardCount), want.NamespaceNumber); err != nil {
			return err
		}
		if err := e.crossCheckNamespaces(ctx, want.NamespaceNumber); err != nil {
			return err
		}
	}
	for i, ns := range want.NewestNamespaces {
		if err := e.d.WaitText(ctx, namespaces.Find(selDashNamespace).Nth(i), ns); err != nil {
			return err
		}
	}
	if want.AppNumber != "" {
		if err := e.d.WaitText(ctx, apps.Find(selDashCardCount), want.AppNumber); err != nil {
			return err
		}
	}
	if want.RunningApps != "" {
		if err := e.d.WaitText(ctx, apps.Find(selDashCardDetail), want.RunningApps+" running"); err != nil {
			return err
		}
	}
	if want.ServicesNumber != "" {
		if err := e.d.WaitText(ctx, services.Find(selDashCardCount), want.ServicesNumber); err != nil {
			return err
		}
	}
	return nil
}

func (e *Epinio) crossCheckNamespaces(ctx context.Context, want string) error {
	if e.cluster == nil {
		return nil
	}
	n, err := strconv.Atoi(want)
	if err != nil {
		return fmt.Errorf("%w: namespace number %q", ErrInvalidSpec, want)
	}
	got, err := e.cluster.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count cluster namespaces: %w", err)
	}
	if got != n {
		return browser.Mismatch(browser.Sel("cluster namespaces"), strconv.Itoa(n), strconv.Itoa(got))
	}
	return nil
}
