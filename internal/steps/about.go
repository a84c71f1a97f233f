package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// binariesCount is the number of CLI builds offered on the About page.
const binariesCount = 6

const releasesURL = "github.com/epinio/epinio/releases"

// AboutPage runs the selected About page checks. Except for the version
// comparison it expects the About page to be open.
func (e *Epinio) AboutPage(ctx context.Context, opts AboutOptions) error {
	e.log.Info("about page",
		zap.Bool("compare_version", opts.CompareVersionVsMainPage),
		zap.Bool("binaries", opts.CheckBinariesNumber),
		zap.Bool("download", opts.DownloadBinaries),
		zap.Bool("see_all", opts.CheckSeeAllPackagePage))

	if opts.CompareVersionVsMainPage {
		if err := e.compareVersions(ctx); err != nil {
			return err
		}
	}
	if opts.CheckBinariesNumber {
		if err := e.d.WaitCount(ctx, browser.Sel(selBinaryRow).Within(longWait), binariesCount); err != nil {
			return err
		}
	}
	if opts.DownloadBinaries {
		if err := e.downloadBinaries(ctx); err != nil {
			return err
		}
	}
	if opts.CheckSeeAllPackagePage {
		link := browser.Sel(selSeeAllPackage).Contains("See all packages").Within(longWait)
		href, err := e.d.Attribute(ctx, link, "href")
		if err != nil {
			return err
		}
		if !strings.Contains(href, releasesURL) {
			return browser.Mismatch(link, "linking to "+releasesURL, href)
		}
	}
	return nil
}

// compareVersions reads the version in the dashboard footer, follows it
// and expects the About page to show the same one.
func (e *Epinio) compareVersions(ctx context.Context) error {
	if err := e.d.Visit(ctx, e.route("dashboard")); err != nil {
		return err
	}
	footer := browser.Sel(selMainVersion).Within(longWait)
	shown, err := e.d.Text(ctx, footer)
	if err != nil {
		return err
	}
	shown = strings.TrimSpace(shown)
	if err := e.d.Click(ctx, footer); err != nil {
		return err
	}
	if err := e.d.WaitURL(ctx, "/about"); err != nil {
		return err
	}
	about := browser.Sel(selAboutVersion).Within(longWait)
	if err := e.d.WaitText(ctx, about, strings.TrimPrefix(shown, "v")); err != nil {
		return fmt.Errorf("about page version differs from %s: %w", shown, err)
	}
	return nil
}

func (e *Epinio) downloadBinaries(ctx context.Context) error {
	dir := filepath.Join(e.cfg.DownloadsDir, "binaries")
	for i := 0; i < binariesCount; i++ {
		link := browser.Sel(selBinaryRow).Nth(i).Find(selBinaryLink)
		path, err := e.d.Download(ctx, link.Within(deployWait), dir)
		if err != nil {
			return fmt.Errorf("failed to download binary %d: %w", i, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("downloaded binary missing: %w", err)
		}
		if info.Size() == 0 {
			return browser.Mismatch(link, "a non-empty download", path)
		}
		e.log.Info("binary downloaded", zap.String("path", path), zap.Int64("bytes", info.Size()))
	}
	return nil
}
