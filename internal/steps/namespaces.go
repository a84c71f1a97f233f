package steps

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// CreateNamespace creates name from the namespaces list.
func (e *Epinio) CreateNamespace(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required,hostname_rfc1123", "namespace"); err != nil {
		return err
	}
	e.log.Info("create namespace", zap.String("namespace", name))
	if err := e.d.Visit(ctx, e.route("namespaces")); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	if err := e.TypeValue(ctx, "Name", name); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selModalPrimary).Contains("Create").Within(longWait)); err != nil {
		return err
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(selTableRow).Contains(name).Within(longWait)); err != nil {
		return fmt.Errorf("namespace %s not listed after create: %w", name, err)
	}
	return nil
}

// DeleteNamespace deletes a namespace. When AppName is set the removal
// prompt must warn about that app.
func (e *Epinio) DeleteNamespace(ctx context.Context, ns NamespaceSpec) error {
	if err := e.check(ns); err != nil {
		return err
	}
	e.log.Info("delete namespace", zap.String("namespace", ns.Name), zap.String("app", ns.AppName))
	if err := e.d.Visit(ctx, e.route("namespaces")); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(ns.Name).Within(longWait)
	if err := e.d.Click(ctx, row.Find(selRowCheckbox)); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Delete"); err != nil {
		return err
	}
	if ns.AppName != "" {
		if err := e.d.WaitText(ctx, browser.Sel(selPromptRemove).Within(longWait), ns.AppName); err != nil {
			return err
		}
	}
	if err := e.confirmRemoval(ctx, ns.Name); err != nil {
		return err
	}
	if err := e.d.WaitHidden(ctx, row.Within(deleteWait)); err != nil {
		return fmt.Errorf("namespace %s still listed after delete: %w", ns.Name, err)
	}
	return nil
}

// CreateNamespaceFromResource picks "Create a New Namespace" in the
// namespace selector of the open create form and types name.
func (e *Epinio) CreateNamespaceFromResource(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required,hostname_rfc1123", "namespace"); err != nil {
		return err
	}
	e.log.Info("create namespace from resource", zap.String("namespace", name))
	if err := e.pick(ctx, selNamespaceDrop, "Create a New Namespace"); err != nil {
		return err
	}
	input := browser.Sel(selNamespaceInput).Within(longWait)
	if err := e.d.Fill(ctx, input, name); err != nil {
		return err
	}
	if err := e.d.Press(ctx, input, "Tab"); err != nil {
		return err
	}
	return e.d.WaitVisible(ctx, input)
}
