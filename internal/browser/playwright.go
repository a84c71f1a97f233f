package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Playwright drives Chromium through playwright-go.
type Playwright struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
	opts    Options
	log     *zap.Logger
}

// NewPlaywright installs (unless PLAYWRIGHT_PREINSTALLED=1) and starts
// playwright, then opens one page in a fresh context.
func NewPlaywright(opts Options, log *zap.Logger) (*Playwright, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Playwright{opts: opts, log: log.Named("playwright")}

	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		// Driver/browser version drift: reinstall once and retry.
		_ = playwright.Install()
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	p.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	p.browser = browser

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1280, Height: 720},
		AcceptDownloads:   playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if opts.VideosDir != "" {
		ctxOpts.RecordVideo = &playwright.RecordVideo{Dir: opts.VideosDir}
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	p.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	p.page = page
	p.expect = playwright.NewPlaywrightAssertions(float64(opts.Timeout.Milliseconds()))
	return p, nil
}

func (p *Playwright) ms(t Target) *float64 {
	return playwright.Float(float64(waitFor(p.opts, t).Milliseconds()))
}

// locate builds the locator chain. With all set the last segment is left
// unrestricted so it can be counted.
func (p *Playwright) locate(t Target, all bool) playwright.Locator {
	var loc playwright.Locator
	segs := t.Segments()
	for i, s := range segs {
		var next playwright.Locator
		switch {
		case s.Selector == "" && loc == nil:
			next = p.page.GetByText(s.Text)
		case s.Selector == "":
			next = loc.GetByText(s.Text)
		case loc == nil:
			next = p.page.Locator(s.Selector)
		default:
			next = loc.Locator(s.Selector)
		}
		if s.Selector != "" && s.Text != "" {
			next = next.Filter(playwright.LocatorFilterOptions{HasText: s.Text})
		}
		switch {
		case s.Indexed:
			next = next.Nth(s.Index)
		case i < len(segs)-1 || !all:
			next = next.First()
		}
		loc = next
	}
	return loc
}

func (p *Playwright) fail(t Target, expect string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		err = fmt.Errorf("%w after %s: %v", ErrTimeout, waitFor(p.opts, t), err)
	}
	return &AssertionError{Target: t, Expect: expect, Err: err}
}

func (p *Playwright) Visit(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := absoluteURL(p.opts.BaseURL, path)
	p.log.Debug("visit", zap.String("url", url))
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Playwright) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Playwright) WaitURL(ctx context.Context, contains string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	re := regexp.MustCompile(regexp.QuoteMeta(contains))
	if err := p.expect.Page(p.page).ToHaveURL(re); err != nil {
		return &AssertionError{Target: Sel("location"), Expect: "containing " + contains, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	return nil
}

func (p *Playwright) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.GoBack(); err != nil {
		return fmt.Errorf("failed to go back: %w", err)
	}
	return nil
}

func (p *Playwright) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Reload(); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return nil
}

func (p *Playwright) Click(ctx context.Context, t Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "clickable", p.locate(t, false).Click(playwright.LocatorClickOptions{
		Timeout: p.ms(t),
		Force:   playwright.Bool(t.Force()),
	}))
}

func (p *Playwright) Fill(ctx context.Context, t Target, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "editable", p.locate(t, false).Fill(value, playwright.LocatorFillOptions{
		Timeout: p.ms(t),
		Force:   playwright.Bool(t.Force()),
	}))
}

func (p *Playwright) Press(ctx context.Context, t Target, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "focusable", p.locate(t, false).Press(key, playwright.LocatorPressOptions{Timeout: p.ms(t)}))
}

func (p *Playwright) Check(ctx context.Context, t Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "checkable", p.locate(t, false).Check(playwright.LocatorCheckOptions{
		Timeout: p.ms(t),
		Force:   playwright.Bool(t.Force()),
	}))
}

func (p *Playwright) SetFiles(ctx context.Context, t Target, files ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "a file input", p.locate(t, false).SetInputFiles(files, playwright.LocatorSetInputFilesOptions{Timeout: p.ms(t)}))
}

func (p *Playwright) WaitVisible(ctx context.Context, t Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "visible", p.locate(t, false).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: p.ms(t),
	}))
}

func (p *Playwright) WaitHidden(ctx context.Context, t Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail(t, "hidden", p.locate(t, false).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: p.ms(t),
	}))
}

func (p *Playwright) WaitText(ctx context.Context, t Target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.expect.Locator(p.locate(t, false)).ToContainText(text, playwright.LocatorAssertionsToContainTextOptions{Timeout: p.ms(t)})
	if err != nil {
		return &AssertionError{Target: t, Expect: fmt.Sprintf("containing %q", text), Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	return nil
}

func (p *Playwright) WaitCount(ctx context.Context, t Target, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.expect.Locator(p.locate(t, true)).ToHaveCount(n, playwright.LocatorAssertionsToHaveCountOptions{Timeout: p.ms(t)})
	if err != nil {
		return &AssertionError{Target: t, Expect: fmt.Sprintf("%d elements", n), Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	return nil
}

func (p *Playwright) Text(ctx context.Context, t Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s, err := p.locate(t, false).InnerText(playwright.LocatorInnerTextOptions{Timeout: p.ms(t)})
	return s, p.fail(t, "readable", err)
}

func (p *Playwright) Count(ctx context.Context, t Target) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.locate(t, true).Count()
	return n, p.fail(t, "countable", err)
}

func (p *Playwright) Attribute(ctx context.Context, t Target, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := p.locate(t, false).GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: p.ms(t)})
	return v, p.fail(t, "carrying "+name, err)
}

func (p *Playwright) Download(ctx context.Context, trigger Target, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads dir: %w", err)
	}
	dl, err := p.page.ExpectDownload(func() error {
		return p.locate(trigger, false).Click(playwright.LocatorClickOptions{Timeout: p.ms(trigger)})
	}, playwright.PageExpectDownloadOptions{Timeout: p.ms(trigger)})
	if err != nil {
		return "", p.fail(trigger, "starting a download", err)
	}
	path := filepath.Join(dir, dl.SuggestedFilename())
	if err := dl.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save download %s: %w", path, err)
	}
	p.log.Info("download saved", zap.String("path", path))
	return path, nil
}

func (p *Playwright) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if _, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return nil
}

// Close releases page, context, browser and the playwright driver.
func (p *Playwright) Close() error {
	var errs []error
	if p.page != nil {
		errs = append(errs, p.page.Close())
	}
	if p.context != nil {
		errs = append(errs, p.context.Close())
	}
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
	}
	if p.pw != nil {
		errs = append(errs, p.pw.Stop())
	}
	return errors.Join(errs...)
}
