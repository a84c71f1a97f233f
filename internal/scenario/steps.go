package scenario

import (
	"context"
	"strconv"
	"strings"

	"github.com/epinio/epinio-e2e/internal/manifest"
	"github.com/epinio/epinio-e2e/internal/steps"
)

// Constructors binding step library calls to fixed arguments.

func args(parts ...string) string {
	return strings.Join(parts, " ")
}

func createApp(a steps.AppSpec) Step {
	name := a.Name
	if name == "" {
		name = a.ManifestName
	}
	return step("CreateApp", args(name, string(a.SourceType)), func(ctx context.Context, e *steps.Epinio) error { return e.CreateApp(ctx, a) })
}

func checkApp(c steps.AppCheck) Step {
	return step("CheckApp", c.Name, func(ctx context.Context, e *steps.Epinio) error { return e.CheckApp(ctx, c) })
}

func deleteApp(name string) Step {
	return step("DeleteApp", name, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteApp(ctx, name) })
}

func deleteAppIfExists(name string) Step {
	return step("DeleteAppIfExists", name, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteAppIfExists(ctx, name) })
}

func restartApp(name string) Step {
	return step("RestartApp", name, func(ctx context.Context, e *steps.Epinio) error { return e.RestartApp(ctx, name) })
}

func rebuildApp(name string) Step {
	return step("RebuildApp", name, func(ctx context.Context, e *steps.Epinio) error { return e.RebuildApp(ctx, name) })
}

func showAppLog(name string) Step {
	return step("ShowAppLog", name, func(ctx context.Context, e *steps.Epinio) error { return e.ShowAppLog(ctx, name) })
}

func showAppShell(name string) Step {
	return step("ShowAppShell", name, func(ctx context.Context, e *steps.Epinio) error { return e.ShowAppShell(ctx, name) })
}

func redeployFromCommit(commit string) Step {
	return step("RedeployFromCommit", commit, func(ctx context.Context, e *steps.Epinio) error { return e.RedeployFromCommit(ctx, commit) })
}

func updateAppSource(a steps.AppSpec) Step {
	return step("UpdateAppSource", args(a.Name, string(a.SourceType)), func(ctx context.Context, e *steps.Epinio) error {
		return e.UpdateAppSource(ctx, a)
	})
}

// download exports name; want is checked against a manifest export.
func download(name string, kind steps.ExportType, want manifest.Expectation) Step {
	return step("DownloadManifestChartsAndImages", args(name, string(kind)), func(ctx context.Context, e *steps.Epinio) error {
		_, err := e.DownloadManifestChartsAndImages(ctx, name, kind, want)
		return err
	})
}

func findExtractCheck(name string, kind steps.ExportType) Step {
	return step("FindExtractCheck", args(name, string(kind)), func(ctx context.Context, e *steps.Epinio) error {
		return e.FindExtractCheck(ctx, name, kind, manifest.Expectation{})
	})
}

func createConfiguration(c steps.ConfigurationSpec) Step {
	return step("CreateConfiguration", c.Name, func(ctx context.Context, e *steps.Epinio) error { return e.CreateConfiguration(ctx, c) })
}

func editConfiguration(name string) Step {
	return step("EditConfiguration", name, func(ctx context.Context, e *steps.Epinio) error { return e.EditConfiguration(ctx, name) })
}

func deleteConfiguration(name string) Step {
	return step("DeleteConfiguration", name, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteConfiguration(ctx, name) })
}

func bindConfiguration(app, config string) Step {
	return step("BindConfiguration", args(app, config), func(ctx context.Context, e *steps.Epinio) error {
		return e.BindConfiguration(ctx, app, config)
	})
}

func unbindConfiguration(app, config string) Step {
	return step("UnbindConfiguration", args(app, config), func(ctx context.Context, e *steps.Epinio) error {
		return e.UnbindConfiguration(ctx, app, config)
	})
}

func createService(s steps.ServiceSpec) Step {
	return step("CreateService", args(s.Name, s.CatalogType), func(ctx context.Context, e *steps.Epinio) error { return e.CreateService(ctx, s) })
}

func createServiceAndBind(s steps.ServiceSpec) Step {
	return step("CreateServiceAndBindOneStep", args(s.Name, s.CatalogType, s.AppName), func(ctx context.Context, e *steps.Epinio) error {
		return e.CreateServiceAndBindOneStep(ctx, s)
	})
}

func deleteService(name string) Step {
	return step("DeleteService", name, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteService(ctx, name) })
}

func bindFromServicesPage(s steps.ServiceSpec) Step {
	return step("BindServiceFromServicesPage", args(s.BindingOption, s.Name, s.AppName), func(ctx context.Context, e *steps.Epinio) error {
		return e.BindServiceFromServicesPage(ctx, s)
	})
}

func deleteAll(resource string) Step {
	return step("DeleteAll", resource, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteAll(ctx, resource) })
}

func countAndVerify(locator string, n int, text1, text2 string) Step {
	return step("CountAndVerifyElements", args(strconv.Itoa(n), text1, text2), func(ctx context.Context, e *steps.Epinio) error {
		return e.CountAndVerifyElements(ctx, locator, n, text1, text2)
	})
}

func dashboard(want steps.DashboardExpectation) Step {
	return step("CheckDashboardResources", "", func(ctx context.Context, e *steps.Epinio) error { return e.CheckDashboardResources(ctx, want) })
}

func createNamespace(name string) Step {
	return step("CreateNamespace", name, func(ctx context.Context, e *steps.Epinio) error { return e.CreateNamespace(ctx, name) })
}

func deleteNamespace(ns steps.NamespaceSpec) Step {
	return step("DeleteNamespace", ns.Name, func(ctx context.Context, e *steps.Epinio) error { return e.DeleteNamespace(ctx, ns) })
}

func namespaceFromResource(name string) Step {
	return step("CreateNamespaceFromResource", name, func(ctx context.Context, e *steps.Epinio) error {
		return e.CreateNamespaceFromResource(ctx, name)
	})
}

func openNamespacesFilter(location string) Step {
	return step("OpenNamespacesFilter", location, func(ctx context.Context, e *steps.Epinio) error {
		return e.OpenNamespacesFilter(ctx, location)
	})
}

func filterNamespaces(f steps.FilterCheck) Step {
	arg := args(f.Namespace, f.ElementName)
	if f.FilterOut {
		arg = args("-"+f.Namespace, f.ElementName)
	}
	return step("FilterNamespacesAndCheck", strings.TrimSpace(arg), func(ctx context.Context, e *steps.Epinio) error {
		return e.FilterNamespacesAndCheck(ctx, f)
	})
}

func filterOutcome(o steps.FilterOutcome) Step {
	arg := args(strconv.Itoa(o.ExpectedFilteredNamespaces), strconv.Itoa(o.ExpectedElements), o.ExpectedElementName)
	return step("CheckOutcomeFilteredNamespaces", strings.TrimSpace(arg), func(ctx context.Context, e *steps.Epinio) error {
		return e.CheckOutcomeFilteredNamespaces(ctx, o)
	})
}

func clickEpinioMenu(label string) Step {
	return step("ClickEpinioMenu", label, func(ctx context.Context, e *steps.Epinio) error { return e.ClickEpinioMenu(ctx, label) })
}

func clickMenuGroup(label string) Step {
	return step("ClickMenuGroup", label, func(ctx context.Context, e *steps.Epinio) error { return e.ClickMenuGroup(ctx, label) })
}

func expandMenuGroup(i int) Step {
	return step("ExpandMenuGroup", strconv.Itoa(i), func(ctx context.Context, e *steps.Epinio) error { return e.ExpandMenuGroup(ctx, i) })
}

func clickButton(label string) Step {
	return step("ClickButton", label, func(ctx context.Context, e *steps.Epinio) error { return e.ClickButton(ctx, label) })
}

func clickText(text string) Step {
	return step("ClickText", text, func(ctx context.Context, e *steps.Epinio) error { return e.ClickText(ctx, text) })
}

func firstConnection() Step {
	return step("RunFirstConnectionTest", "", func(ctx context.Context, e *steps.Epinio) error { return e.RunFirstConnectionTest(ctx) })
}
