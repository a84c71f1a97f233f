package steps

import (
	"context"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// OpenNamespacesFilter goes to location and opens the namespace filter.
func (e *Epinio) OpenNamespacesFilter(ctx context.Context, location string) error {
	e.log.Info("open namespaces filter", zap.String("location", location))
	if err := e.ClickEpinioMenu(ctx, location); err != nil {
		return err
	}
	return e.openFilter(ctx)
}

func (e *Epinio) openFilter(ctx context.Context) error {
	n, err := e.d.Count(ctx, browser.Sel(selNsFilterOpen))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := e.d.Click(ctx, browser.Sel(selNsFilter).Within(longWait)); err != nil {
		return err
	}
	return e.d.WaitVisible(ctx, browser.Sel(selNsFilterOpen))
}

// FilterNamespacesAndCheck toggles one namespace in the filter and checks
// the listing follows.
func (e *Epinio) FilterNamespacesAndCheck(ctx context.Context, f FilterCheck) error {
	if err := e.check(f); err != nil {
		return err
	}
	e.log.Info("filter namespace", zap.String("namespace", f.Namespace), zap.Bool("filter_out", f.FilterOut))
	if err := e.openFilter(ctx); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selNsOption).Contains(f.Namespace)); err != nil {
		return err
	}
	chip := browser.Sel(selNsFilterValues).Contains(f.Namespace)
	if f.FilterOut {
		if err := e.d.WaitHidden(ctx, chip); err != nil {
			return err
		}
	} else if err := e.d.WaitVisible(ctx, chip); err != nil {
		return err
	}
	if f.ElementName == "" {
		return nil
	}
	row := browser.Sel(selTableRow).Contains(f.ElementName).Within(longWait)
	if f.FilterOut {
		return e.d.WaitHidden(ctx, row)
	}
	return e.d.WaitVisible(ctx, row)
}

// CheckOutcomeFilteredNamespaces asserts how many namespaces are selected
// in the filter and how many rows the listing shows.
func (e *Epinio) CheckOutcomeFilteredNamespaces(ctx context.Context, o FilterOutcome) error {
	if err := e.check(o); err != nil {
		return err
	}
	if err := e.d.WaitCount(ctx, browser.Sel(selNsFilterValues).Within(longWait), o.ExpectedFilteredNamespaces); err != nil {
		return err
	}
	if err := e.d.WaitCount(ctx, browser.Sel(selTableRow).Within(longWait), o.ExpectedElements); err != nil {
		return err
	}
	if o.ExpectedElementName == "" {
		return nil
	}
	return e.d.WaitVisible(ctx, browser.Sel(selTableRow).Contains(o.ExpectedElementName))
}
