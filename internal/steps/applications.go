package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
	"github.com/epinio/epinio-e2e/internal/export"
	"github.com/epinio/epinio-e2e/internal/manifest"
)

// Environment variable every env fixture defines. CheckApp looks for it.
const (
	EnvVarName  = "TEST_VAR"
	envVarValue = "epinio-e2e"
)

// ManifestFile is the name the exported manifest is stored under in the
// downloads dir.
const ManifestFile = "manifest.yaml"

var envFixtures = map[EnvVars]string{
	VarsFile:      "env_vars.env",
	VarsGoExample: "go_example.env",
	VarsWordpress: "wordpress.env",
}

// CreateApp pushes an application through the create wizard and waits for
// the deployment to finish. With ManifestName set the name, route,
// instances, variables and configurations come from that manifest.
func (e *Epinio) CreateApp(ctx context.Context, app AppSpec) error {
	if err := e.check(app); err != nil {
		return err
	}
	name := app.Name
	if app.ManifestName != "" {
		m, err := manifest.Load(e.download(app.ManifestName))
		if err != nil {
			return err
		}
		name = m.Name
	}
	log := e.log.With(zap.String("app", name), zap.String("source", string(app.SourceType)))
	log.Info("create app")

	if err := e.d.Visit(ctx, e.route("applications")); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	if app.ManifestName != "" {
		if err := e.d.SetFiles(ctx, browser.Sel(selManifestInput).Within(longWait), e.download(app.ManifestName)); err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
	}
	if err := e.chooseSource(ctx, app); err != nil {
		return err
	}
	if err := e.next(ctx); err != nil {
		return err
	}
	if app.ManifestName == "" {
		if err := e.fillAppInfo(ctx, app); err != nil {
			return err
		}
	}
	if err := e.next(ctx); err != nil {
		return err
	}
	if app.ConfigurationName != "" {
		if err := e.pick(ctx, selConfigsSelect, app.ConfigurationName); err != nil {
			return err
		}
	}
	if app.ServiceName != "" {
		if err := e.pick(ctx, selServicesSelect, app.ServiceName); err != nil {
			return err
		}
	}
	if err := e.d.Click(ctx, browser.Sel(selWizardNext).Contains("Create")); err != nil {
		return err
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(selDeployDone).Contains("Success").Within(deployWait)); err != nil {
		return fmt.Errorf("app %s did not deploy: %w", name, err)
	}
	if err := e.ClickButton(ctx, "Done"); err != nil {
		return err
	}
	log.Info("app deployed")
	return e.d.WaitVisible(ctx, browser.Sel(selTableRow).Contains(name).Within(longWait))
}

func (e *Epinio) next(ctx context.Context) error {
	return e.d.Click(ctx, browser.Sel(selWizardNext).Contains("Next").Within(longWait))
}

// chooseSource fills the source step of the wizard.
func (e *Epinio) chooseSource(ctx context.Context, app AppSpec) error {
	if err := e.pick(ctx, selSourceType, string(app.SourceType)); err != nil {
		return fmt.Errorf("failed to choose source %s: %w", app.SourceType, err)
	}
	var err error
	switch app.SourceType {
	case SourceArchive, SourceFolder:
		err = e.d.SetFiles(ctx, browser.Sel(selArchiveInput).Within(longWait), e.fixture(app.Archive))
	case SourceContainer:
		err = e.d.Fill(ctx, browser.Sel(selImageInput).Within(longWait), app.Archive)
	case SourceGitURL:
		branch := app.GitBranch
		if branch == "" {
			branch = "main"
		}
		if err = e.d.Fill(ctx, browser.Sel(selGitURLInput).Within(longWait), app.Archive); err == nil {
			err = e.d.Fill(ctx, browser.Sel(selGitBranchInput), branch)
		}
	case SourceGitHub, SourceGitLab:
		err = e.chooseGitRepo(ctx, app)
	}
	if err != nil {
		return err
	}
	if app.CustomPaketoImage == "" && app.CustomApplicationChart == "" {
		return nil
	}
	if err := e.d.Click(ctx, browser.Sel(selAdvanced)); err != nil {
		return err
	}
	if app.CustomPaketoImage != "" {
		if err := e.d.Fill(ctx, browser.Sel(selBuilderImage), app.CustomPaketoImage); err != nil {
			return err
		}
	}
	if app.CustomApplicationChart != "" {
		if err := e.pick(ctx, selAppChart, strings.TrimSpace(app.CustomApplicationChart)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Epinio) chooseGitRepo(ctx context.Context, app AppSpec) error {
	if err := e.d.Fill(ctx, browser.Sel(selGitUsername).Within(longWait), app.GitUsername); err != nil {
		return err
	}
	if err := e.pick(ctx, selGitRepo, app.GitRepo); err != nil {
		return fmt.Errorf("repository %s not offered: %w", app.GitRepo, err)
	}
	if err := e.pick(ctx, selGitBranch, app.GitBranch); err != nil {
		return fmt.Errorf("branch %s not offered: %w", app.GitBranch, err)
	}
	return e.d.Click(ctx, browser.Sel(selGitCommit).Contains(app.GitCommit).Within(longWait))
}

// fillAppInfo fills the information step of the wizard.
func (e *Epinio) fillAppInfo(ctx context.Context, app AppSpec) error {
	if err := e.TypeValue(ctx, "Name", app.Name); err != nil {
		return err
	}
	if app.Namespace != "" {
		if err := e.pick(ctx, selNamespaceDrop, app.Namespace); err != nil {
			return err
		}
	}
	if app.Instances > 0 {
		if err := e.d.Fill(ctx, browser.Sel(selInstances), strconv.Itoa(app.Instances)); err != nil {
			return err
		}
	}
	if app.Route != "" {
		if err := e.d.Click(ctx, browser.Sel(selRouteAdd)); err != nil {
			return err
		}
		if err := e.d.Fill(ctx, browser.Sel(selRouteInput), app.Route); err != nil {
			return err
		}
	}
	return e.addVars(ctx, app.AddVar)
}

func (e *Epinio) addVars(ctx context.Context, vars EnvVars) error {
	switch vars {
	case "":
		return nil
	case VarsUI:
		if err := e.d.Click(ctx, browser.Sel(selEnvAdd)); err != nil {
			return err
		}
		if err := e.d.Fill(ctx, browser.Sel(selEnvKey), EnvVarName); err != nil {
			return err
		}
		return e.d.Fill(ctx, browser.Sel(selEnvValue), envVarValue)
	default:
		return e.d.SetFiles(ctx, browser.Sel(selEnvReadFile), e.fixture(envFixtures[vars]))
	}
}

// openApp shows the detail page of an application.
func (e *Epinio) openApp(ctx context.Context, name string) error {
	if err := e.d.Visit(ctx, e.route("applications")); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(name).Within(longWait)
	if err := e.d.Click(ctx, row.Find("td a").Contains(name)); err != nil {
		return fmt.Errorf("app %s not listed: %w", name, err)
	}
	return e.d.WaitText(ctx, browser.Sel(selAppDetailHeader).Within(longWait), name)
}

// CheckApp waits for the app to run and asserts the details in c.
func (e *Epinio) CheckApp(ctx context.Context, c AppCheck) error {
	if err := e.check(c); err != nil {
		return err
	}
	e.log.Info("check app", zap.String("app", c.Name))

	if err := e.d.Visit(ctx, e.route("applications")); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(c.Name).Within(longWait)
	if err := e.d.WaitText(ctx, row.Find(selRowState).Within(deployWait), "Running"); err != nil {
		return fmt.Errorf("app %s is not running: %w", c.Name, err)
	}
	if err := e.openApp(ctx, c.Name); err != nil {
		return err
	}
	if err := e.d.WaitText(ctx, browser.Sel(selAppNamespace), e.namespace(c.Namespace)); err != nil {
		return err
	}
	if c.Instances > 0 {
		if err := e.d.WaitText(ctx, browser.Sel(selAppInstances).Within(deployWait), strconv.Itoa(c.Instances)); err != nil {
			return err
		}
	}
	route := c.Route
	if route == "" {
		route = e.defaultRoute(c.Name)
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(selAppRoutes).Contains(route)); err != nil {
		return err
	}
	if err := e.probeRoute(ctx, route, c); err != nil {
		return err
	}
	if c.CheckCommit != "" {
		if err := e.d.WaitText(ctx, browser.Sel(selAppCommit), c.CheckCommit); err != nil {
			return err
		}
	}
	if c.CheckIcon != "" {
		if err := e.d.WaitVisible(ctx, browser.Sel(selAppSourceIcon+".icon-"+c.CheckIcon)); err != nil {
			return err
		}
	}
	noConfig := browser.Sel(selAppConfigsPanel).Contains("No configuration")
	if c.CheckConfiguration {
		if err := e.d.WaitHidden(ctx, noConfig); err != nil {
			return err
		}
	} else if err := e.d.WaitVisible(ctx, noConfig); err != nil {
		return err
	}
	if c.ServiceName != "" {
		if err := e.d.WaitVisible(ctx, browser.Sel(selAppServicesPanel).Contains(c.ServiceName)); err != nil {
			return err
		}
	}
	if c.CheckVar {
		if err := e.d.Click(ctx, browser.Sel(selAppTab).Contains("Environment Variables")); err != nil {
			return err
		}
		if err := e.d.WaitVisible(ctx, browser.Sel(selAppEnvRow).Contains(EnvVarName)); err != nil {
			return fmt.Errorf("variable %s not set on %s: %w", EnvVarName, c.Name, err)
		}
	}
	return nil
}

// probeRoute fetches the app route unless disabled. CheckCreatedApp is
// searched for in the page body even when the status is not checked.
func (e *Epinio) probeRoute(ctx context.Context, route string, c AppCheck) error {
	if e.prober == nil || (c.DontCheckRouteAccess && c.CheckCreatedApp == "") {
		return nil
	}
	url := "https://" + route
	status, body, err := e.prober.Probe(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	target := browser.Sel(url)
	if !c.DontCheckRouteAccess && status != 200 {
		return browser.Mismatch(target, "answering 200", strconv.Itoa(status))
	}
	if c.CheckCreatedApp != "" && !strings.Contains(strings.ToLower(body), strings.ToLower(c.CheckCreatedApp)) {
		return browser.Mismatch(target, "serving "+c.CheckCreatedApp, fmt.Sprintf("%d bytes without it", len(body)))
	}
	return nil
}

// DeleteApp deletes an application that must be listed.
func (e *Epinio) DeleteApp(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required", "app"); err != nil {
		return err
	}
	e.log.Info("delete app", zap.String("app", name))
	return e.deleteRow(ctx, ResourceApplications, name, false)
}

// DeleteAppIfExists deletes an application when it is listed and skips it
// otherwise.
func (e *Epinio) DeleteAppIfExists(ctx context.Context, name string) error {
	if err := e.checkVar(name, "required", "app"); err != nil {
		return err
	}
	e.log.Info("delete app if listed", zap.String("app", name))
	return e.deleteRow(ctx, ResourceApplications, name, true)
}

func (e *Epinio) waitRunning(ctx context.Context, name string) error {
	row := browser.Sel(selTableRow).Contains(name).Within(longWait)
	return e.d.WaitText(ctx, row.Find(selRowState).Within(deployWait), "Running")
}

func (e *Epinio) RestartApp(ctx context.Context, name string) error {
	e.log.Info("restart app", zap.String("app", name))
	if err := e.rowAction(ctx, ResourceApplications, name, "Restart"); err != nil {
		return err
	}
	return e.waitRunning(ctx, name)
}

func (e *Epinio) RebuildApp(ctx context.Context, name string) error {
	e.log.Info("rebuild app", zap.String("app", name))
	if err := e.rowAction(ctx, ResourceApplications, name, "Rebuild"); err != nil {
		return err
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(selLogsBody).Within(longWait)); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selWindowClose)); err != nil {
		return err
	}
	return e.waitRunning(ctx, name)
}

// ShowAppLog opens the application log window and closes it again.
func (e *Epinio) ShowAppLog(ctx context.Context, name string) error {
	return e.showWindow(ctx, name, "App Logs", selLogsBody)
}

// ShowAppShell opens a shell into the app and closes it again.
func (e *Epinio) ShowAppShell(ctx context.Context, name string) error {
	return e.showWindow(ctx, name, "App Shell", selShell)
}

func (e *Epinio) showWindow(ctx context.Context, name, action, body string) error {
	e.log.Info("show app window", zap.String("app", name), zap.String("window", action))
	if err := e.rowAction(ctx, ResourceApplications, name, action); err != nil {
		return err
	}
	if err := e.d.WaitVisible(ctx, browser.Sel(body).Within(longWait)); err != nil {
		return fmt.Errorf("%s window did not open: %w", action, err)
	}
	return e.d.Click(ctx, browser.Sel(selWindowClose))
}

// RedeployFromCommit redeploys the open app from one of its git commits.
func (e *Epinio) RedeployFromCommit(ctx context.Context, commit string) error {
	if err := e.checkVar(commit, "required,hexadecimal", "commit"); err != nil {
		return err
	}
	e.log.Info("redeploy from commit", zap.String("commit", commit))
	if err := e.d.WaitVisible(ctx, browser.Sel(selAppDetailHeader).Within(longWait)); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selAppTab).Contains("Git")); err != nil {
		return err
	}
	row := browser.Sel(selCommitRow).Contains(commit).Within(longWait)
	if err := e.d.Click(ctx, row.Find(selActionMenu)); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selActionItem).Contains("Deploy")); err != nil {
		return err
	}
	return e.d.WaitText(ctx, browser.Sel(selAppState).Within(deployWait), "Running")
}

// UpdateAppSource replaces the sources of an existing app.
func (e *Epinio) UpdateAppSource(ctx context.Context, app AppSpec) error {
	if err := e.check(app); err != nil {
		return err
	}
	e.log.Info("update app source", zap.String("app", app.Name), zap.String("source", string(app.SourceType)))
	if err := e.rowAction(ctx, ResourceApplications, app.Name, "Edit Config"); err != nil {
		return err
	}
	if err := e.d.Click(ctx, browser.Sel(selAppTab).Contains("Source").Within(longWait)); err != nil {
		return err
	}
	if err := e.chooseSource(ctx, app); err != nil {
		return err
	}
	if err := e.saveForm(ctx, "Save"); err != nil {
		return err
	}
	return e.waitRunning(ctx, app.Name)
}

func (e *Epinio) download(name string) string {
	return filepath.Join(e.cfg.DownloadsDir, name)
}

// DownloadManifestChartsAndImages exports an app. A manifest export is
// also stored as ManifestFile and checked against want, whose Name
// defaults to name.
func (e *Epinio) DownloadManifestChartsAndImages(ctx context.Context, name string, kind ExportType, want manifest.Expectation) (string, error) {
	if err := e.checkVar(kind, "epinio_export", "export type"); err != nil {
		return "", err
	}
	e.log.Info("export app", zap.String("app", name), zap.String("type", string(kind)))
	if err := e.rowAction(ctx, ResourceApplications, name, "Export App"); err != nil {
		return "", err
	}
	if err := e.d.Click(ctx, browser.Sel(selExportType).Contains(string(kind)).Within(longWait)); err != nil {
		return "", err
	}
	path, err := e.d.Download(ctx, browser.Sel(selExportButton).Within(deployWait), e.cfg.DownloadsDir)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", name, err)
	}
	e.log.Info("export downloaded", zap.String("path", path))
	if kind != ExportManifest {
		return path, nil
	}
	stored := e.download(ManifestFile)
	if path != stored {
		if err := copyFile(path, stored); err != nil {
			return "", err
		}
	}
	m, err := manifest.Load(stored)
	if err != nil {
		return "", err
	}
	if err := m.Check(expectFor(name, want)); err != nil {
		return "", err
	}
	return stored, nil
}

// FindExtractCheck inspects what DownloadManifestChartsAndImages saved.
// want applies to manifest exports only.
func (e *Epinio) FindExtractCheck(ctx context.Context, name string, kind ExportType, want manifest.Expectation) error {
	if err := e.checkVar(kind, "epinio_export", "export type"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if kind == ExportManifest {
		m, err := manifest.Load(e.download(ManifestFile))
		if err != nil {
			return err
		}
		return m.Check(expectFor(name, want))
	}
	archive, err := export.FindArchive(e.cfg.DownloadsDir, name)
	if err != nil {
		return err
	}
	dest := e.download(name + "-export")
	if err := export.Extract(archive, dest); err != nil {
		return err
	}
	contents, err := export.CheckChartAndImages(dest)
	if err != nil {
		return err
	}
	e.log.Info("export checked", zap.Strings("charts", contents.Charts), zap.Strings("images", contents.Images))
	return nil
}

func expectFor(name string, want manifest.Expectation) manifest.Expectation {
	if want.Name == "" {
		want.Name = name
	}
	return want
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to store %s: %w", dst, err)
	}
	return out.Close()
}
