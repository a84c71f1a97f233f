package steps

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// navGroups are the side navigation groups and the entries each reveals.
var navGroups = []struct {
	group   string
	entries []string
}{
	{"Services", []string{"Instances", "Catalog"}},
	{"Advanced", []string{"Configurations", "Application Templates"}},
}

var navEntries = []string{"Dashboard", "Applications", "Namespaces"}

// OpenIfClosed opens the Rancher top-level menu.
func (e *Epinio) OpenIfClosed(ctx context.Context) error {
	n, err := e.d.Count(ctx, browser.Sel(selTopMenuOpen))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return e.d.Click(ctx, browser.Sel(selTopMenuToggle).Within(longWait))
}

// EpinioIcon waits for the Epinio entry in the Rancher top-level menu.
func (e *Epinio) EpinioIcon(ctx context.Context) error {
	return e.d.WaitVisible(ctx, browser.Sel(selEpinioIcon).Within(longWait))
}

// AccessEpinioMenu opens the Epinio extension and picks cluster.
func (e *Epinio) AccessEpinioMenu(ctx context.Context, cluster string) error {
	e.log.Info("access epinio menu", zap.String("cluster", cluster))
	if err := e.d.Click(ctx, browser.Sel(selTopMenuOption).Contains("Epinio")); err != nil {
		return err
	}
	if err := e.d.WaitURL(ctx, "/epinio"); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selClusterListRow).Contains(cluster).Within(longWait)); err != nil {
		return fmt.Errorf("epinio instance %s not listed: %w", cluster, err)
	}
	return e.d.WaitVisible(ctx, browser.Sel(selSideNavLabel).Contains("Applications").Within(longWait))
}

// CheckEpinioNav asserts every side navigation entry is reachable.
func (e *Epinio) CheckEpinioNav(ctx context.Context) error {
	e.log.Info("check epinio nav")
	for _, label := range navEntries {
		if err := e.d.WaitVisible(ctx, browser.Sel(selSideNavLabel).Contains(label).Within(longWait)); err != nil {
			return err
		}
	}
	for _, g := range navGroups {
		if err := e.ClickMenuGroup(ctx, g.group); err != nil {
			return err
		}
		for _, label := range g.entries {
			if err := e.d.WaitVisible(ctx, browser.Sel(selSideNavLabel).Contains(label)); err != nil {
				return err
			}
		}
	}
	return e.ClickEpinioMenu(ctx, "Applications")
}
