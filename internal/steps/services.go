package steps

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// CreateService instantiates a catalog service and waits for it to deploy.
func (e *Epinio) CreateService(ctx context.Context, s ServiceSpec) error {
	if err := e.check(s, "Name", "CatalogType"); err != nil {
		return err
	}
	e.log.Info("create service", zap.String("service", s.Name), zap.String("catalog", s.CatalogType))
	return e.createService(ctx, s, false)
}

// CreateServiceAndBindOneStep creates a service already bound to AppName.
func (e *Epinio) CreateServiceAndBindOneStep(ctx context.Context, s ServiceSpec) error {
	if err := e.check(s, "Name", "CatalogType", "AppName"); err != nil {
		return err
	}
	e.log.Info("create and bind service",
		zap.String("service", s.Name),
		zap.String("catalog", s.CatalogType),
		zap.String("app", s.AppName))
	return e.createService(ctx, s, true)
}

func (e *Epinio) createService(ctx context.Context, s ServiceSpec, bind bool) error {
	if err := e.d.Visit(ctx, e.route("services")); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	if err := e.pick(ctx, selCatalogSelect, s.CatalogType); err != nil {
		return fmt.Errorf("catalog %s not offered: %w", s.CatalogType, err)
	}
	if err := e.TypeValue(ctx, "Name", s.Name); err != nil {
		return err
	}
	if bind {
		if err := e.pick(ctx, selServiceApps, s.AppName); err != nil {
			return err
		}
	}
	if err := e.saveForm(ctx, "Create"); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(s.Name).Within(deployWait)
	if err := e.d.WaitText(ctx, row.Find(selRowState), "Deployed"); err != nil {
		return fmt.Errorf("service %s did not deploy: %w", s.Name, err)
	}
	if bind {
		return e.d.WaitText(ctx, row.Find(selServiceBoundTo), s.AppName)
	}
	return nil
}

func (e *Epinio) DeleteService(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required", "service"); err != nil {
		return err
	}
	e.log.Info("delete service", zap.String("service", name))
	return e.deleteRow(ctx, ResourceServices, name, false)
}

// BindServiceFromServicesPage binds or unbinds AppName from the service
// edit form depending on BindingOption.
func (e *Epinio) BindServiceFromServicesPage(ctx context.Context, s ServiceSpec) error {
	if err := e.check(s, "Name", "AppName", "BindingOption"); err != nil {
		return err
	}
	e.log.Info("service binding",
		zap.String("service", s.Name),
		zap.String("app", s.AppName),
		zap.String("option", s.BindingOption))

	if err := e.rowAction(ctx, ResourceServices, s.Name, "Edit"); err != nil {
		return err
	}
	if s.BindingOption == Bind {
		if err := e.pick(ctx, selServiceApps, s.AppName); err != nil {
			return err
		}
	} else {
		chip := browser.Sel(selServiceApps).Find(selSelectedChip).Contains(s.AppName).Within(longWait)
		if err := e.d.Click(ctx, chip.Find(selChipDeselect)); err != nil {
			return fmt.Errorf("service %s not bound to %s: %w", s.Name, s.AppName, err)
		}
	}
	if err := e.saveForm(ctx, "Save"); err != nil {
		return err
	}
	bound := browser.Sel(selTableRow).Contains(s.Name).Find(selServiceBoundTo).Contains(s.AppName).Within(deployWait)
	if s.BindingOption == Bind {
		return e.d.WaitVisible(ctx, bound)
	}
	return e.d.WaitHidden(ctx, bound)
}
