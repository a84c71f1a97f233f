package steps

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// Values written into configurations created by the suite.
const (
	configKey         = "myvar"
	configValue       = "myvalue"
	configEditedValue = "myvalue-edited"
	configFromFile    = "config_values.env"
	configUploadFile  = "config_upload.txt"
	configUploadKey   = "upload"
)

// CreateConfiguration creates a configuration from typed values, a key
// value file (FromFile) or an uploaded value (FromFileUpload).
func (e *Epinio) CreateConfiguration(ctx context.Context, c ConfigurationSpec) error {
	if err := e.check(c); err != nil {
		return err
	}
	e.log.Info("create configuration",
		zap.String("configuration", c.Name),
		zap.String("namespace", e.namespace(c.Namespace)),
		zap.Bool("from_file", c.FromFile),
		zap.Bool("upload", c.FromFileUpload))

	if err := e.d.Visit(ctx, e.route("configurations")); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	if c.Namespace != "" {
		if err := e.pick(ctx, selNamespaceDrop, c.Namespace); err != nil {
			return err
		}
	}
	if err := e.TypeValue(ctx, "Name", c.Name); err != nil {
		return err
	}

	var err error
	switch {
	case c.FromFile:
		err = e.d.SetFiles(ctx, browser.Sel(selEnvReadFile), e.fixture(configFromFile))
	case c.FromFileUpload:
		if err = e.d.Fill(ctx, browser.Sel(selEnvKey), configUploadKey); err == nil {
			err = e.d.SetFiles(ctx, browser.Sel(selUploadValue), e.fixture(configUploadFile))
		}
	default:
		if err = e.d.Fill(ctx, browser.Sel(selEnvKey), configKey); err == nil {
			err = e.d.Fill(ctx, browser.Sel(selEnvValue), configValue)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to set values of %s: %w", c.Name, err)
	}

	if err := e.saveForm(ctx, "Create"); err != nil {
		return err
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(selTableRow).Contains(c.Name).Within(longWait)); err != nil {
		return fmt.Errorf("configuration %s not listed after create: %w", c.Name, err)
	}
	return nil
}

// EditConfiguration changes the first value of a configuration.
func (e *Epinio) EditConfiguration(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required", "configuration"); err != nil {
		return err
	}
	e.log.Info("edit configuration", zap.String("configuration", name))
	if err := e.rowAction(ctx, ResourceConfigurations, name, "Edit Config"); err != nil {
		return err
	}
	if err := e.d.Fill(ctx, browser.Sel(selEnvValue).Within(longWait), configEditedValue); err != nil {
		return err
	}
	if err := e.saveForm(ctx, "Save"); err != nil {
		return err
	}
	return e.d.WaitVisible(ctx, browser.Sel(selTableRow).Contains(name).Within(longWait))
}

func (e *Epinio) DeleteConfiguration(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required", "configuration"); err != nil {
		return err
	}
	e.log.Info("delete configuration", zap.String("configuration", name))
	return e.deleteRow(ctx, ResourceConfigurations, name, false)
}

// BindConfiguration binds config to app from the app edit form.
func (e *Epinio) BindConfiguration(ctx context.Context, app, config string) error {
	e.log.Info("bind configuration", zap.String("app", app), zap.String("configuration", config))
	if err := e.editAppConfigurations(ctx, app); err != nil {
		return err
	}
	if err := e.pick(ctx, selConfigsSelect, config); err != nil {
		return err
	}
	if err := e.saveForm(ctx, "Save"); err != nil {
		return err
	}
	return e.waitRunning(ctx, app)
}

// UnbindConfiguration removes config from the app bindings.
func (e *Epinio) UnbindConfiguration(ctx context.Context, app, config string) error {
	e.log.Info("unbind configuration", zap.String("app", app), zap.String("configuration", config))
	if err := e.editAppConfigurations(ctx, app); err != nil {
		return err
	}
	chip := browser.Sel(selConfigsSelect).Find(selSelectedChip).Contains(config).Within(longWait)
	if err := e.d.Click(ctx, chip.Find(selChipDeselect)); err != nil {
		return fmt.Errorf("configuration %s not bound to %s: %w", config, app, err)
	}
	if err := e.saveForm(ctx, "Save"); err != nil {
		return err
	}
	return e.waitRunning(ctx, app)
}

func (e *Epinio) editAppConfigurations(ctx context.Context, app string) error {
	if err := e.rowAction(ctx, ResourceApplications, app, "Edit Config"); err != nil {
		return err
	}
	return e.d.Click(ctx, browser.Sel(selAppTab).Contains("Configurations").Within(longWait))
}
