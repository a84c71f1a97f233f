package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

const pollInterval = 200 * time.Millisecond

// matchJS resolves a segment chain against the DOM. Text-only segments
// select the deepest elements containing the text.
const matchJS = `(function(chain){
  let roots = [document];
  let found = [];
  for (let i = 0; i < chain.length; i++) {
    const s = chain[i];
    found = [];
    for (const r of roots) {
      let nodes = Array.from(r.querySelectorAll(s.sel || '*'));
      if (s.text) {
        nodes = nodes.filter(n => (n.textContent || '').includes(s.text));
        if (!s.sel) {
          nodes = nodes.filter(n => !Array.from(n.children).some(c => (c.textContent || '').includes(s.text)));
        }
      }
      found.push(...nodes);
    }
    if (s.indexed) {
      found = found[s.idx] ? [found[s.idx]] : [];
    } else if (i < chain.length - 1) {
      found = found.slice(0, 1);
    }
    roots = found;
  }
  return found;
})(%s)`

// Chromedp drives a Chrome instance over the DevTools protocol, either a
// local headless one or a remote debugging endpoint.
type Chromedp struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
	log     *zap.Logger
	marks   atomic.Int64
}

// NewChromedp allocates a browser and opens one tab.
func NewChromedp(opts Options, log *zap.Logger) (*Chromedp, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chromedp{opts: opts, log: log.Named("chromedp")}

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.WindowSize(1280, 720),
		)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}
	sugar := c.log.Sugar()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(sugar.Debugf), chromedp.WithErrorf(sugar.Errorf))
	c.ctx = tabCtx
	c.cancels = []context.CancelFunc{cancelTab, cancelAlloc}

	if err := chromedp.Run(tabCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("could not start chrome: %w", err)
	}
	return c, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (c *Chromedp) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}

func (c *Chromedp) fail(t Target, expect string, err error) error {
	if err == nil {
		return nil
	}
	if IsAssertion(err) {
		return err
	}
	return &AssertionError{Target: t, Expect: expect, Err: err}
}

func chainJSON(t Target) string {
	b, _ := json.Marshal(t.Segments())
	return string(b)
}

// mark polls until the target matches and tags the element with a
// unique attribute, returning a CSS selector for it.
func (c *Chromedp) mark(ctx context.Context, t Target) (string, error) {
	segs := t.Segments()
	if len(segs) == 1 && segs[0].Text == "" && !segs[0].Indexed {
		return segs[0].Selector, nil
	}
	id := strconv.FormatInt(c.marks.Add(1), 10)
	script := fmt.Sprintf(`(function(){
  const els = %s;
  if (els.length === 0) return false;
  els[0].setAttribute('data-e2e-mark', %q);
  return true;
})()`, fmt.Sprintf(matchJS, chainJSON(t)), id)

	sel := fmt.Sprintf(`[data-e2e-mark="%s"]`, id)
	err := c.run(ctx, waitFor(c.opts, t), chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			var ok bool
			if err := chromedp.Evaluate(script, &ok).Do(ctx); err == nil && ok {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}))
	return sel, c.fail(t, "present", err)
}

func (c *Chromedp) count(ctx context.Context, t Target, visibleOnly bool) (int, error) {
	filter := ""
	if visibleOnly {
		filter = `.filter(e => e.offsetParent !== null || getComputedStyle(e).position === 'fixed')`
	}
	script := fmt.Sprintf(matchJS, chainJSON(t)) + filter + `.length`
	var n int
	err := c.run(ctx, c.opts.Timeout, chromedp.Evaluate(script, &n))
	return n, err
}

// poll re-evaluates cond until it holds or the target's wait elapses.
func (c *Chromedp) poll(ctx context.Context, t Target, cond func(context.Context) (bool, string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(waitFor(c.opts, t))
	var last string
	for {
		ok, got, err := cond(ctx)
		if err == nil && ok {
			return nil
		}
		last = got
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s (last seen %q)", ErrTimeout, waitFor(c.opts, t), last)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (c *Chromedp) Visit(ctx context.Context, path string) error {
	url := absoluteURL(c.opts.BaseURL, path)
	c.log.Debug("visit", zap.String("url", url))
	if err := c.run(ctx, c.opts.Timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (c *Chromedp) URL(ctx context.Context) (string, error) {
	var loc string
	err := c.run(ctx, c.opts.Timeout, chromedp.Location(&loc))
	return loc, err
}

func (c *Chromedp) WaitURL(ctx context.Context, contains string) error {
	t := Sel("location")
	err := c.poll(ctx, t, func(ctx context.Context) (bool, string, error) {
		u, err := c.URL(ctx)
		return strings.Contains(u, contains), u, err
	})
	return c.fail(t, "containing "+contains, err)
}

func (c *Chromedp) Back(ctx context.Context) error {
	return c.run(ctx, c.opts.Timeout, chromedp.NavigateBack())
}

func (c *Chromedp) Reload(ctx context.Context) error {
	return c.run(ctx, c.opts.Timeout, chromedp.Reload())
}

func (c *Chromedp) Click(ctx context.Context, t Target) error {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return err
	}
	if t.Force() {
		js := fmt.Sprintf(`document.querySelector(%q).click()`, sel)
		return c.fail(t, "clickable", c.run(ctx, waitFor(c.opts, t), chromedp.Evaluate(js, nil)))
	}
	return c.fail(t, "clickable", c.run(ctx, waitFor(c.opts, t), chromedp.Click(sel, chromedp.ByQuery)))
}

func (c *Chromedp) Fill(ctx context.Context, t Target, value string) error {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return err
	}
	return c.fail(t, "editable", c.run(ctx, waitFor(c.opts, t),
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	))
}

var keyNames = map[string]string{
	"Enter":  kb.Enter,
	"Escape": kb.Escape,
	"Tab":    kb.Tab,
}

func (c *Chromedp) Press(ctx context.Context, t Target, key string) error {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return err
	}
	if k, ok := keyNames[key]; ok {
		key = k
	}
	return c.fail(t, "focusable", c.run(ctx, waitFor(c.opts, t), chromedp.SendKeys(sel, key, chromedp.ByQuery)))
}

func (c *Chromedp) Check(ctx context.Context, t Target) error {
	return c.Click(ctx, t)
}

func (c *Chromedp) SetFiles(ctx context.Context, t Target, files ...string) error {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return err
	}
	return c.fail(t, "a file input", c.run(ctx, waitFor(c.opts, t), chromedp.SetUploadFiles(sel, files, chromedp.ByQuery)))
}

func (c *Chromedp) WaitVisible(ctx context.Context, t Target) error {
	err := c.poll(ctx, t, func(ctx context.Context) (bool, string, error) {
		n, err := c.count(ctx, t, true)
		return n > 0, strconv.Itoa(n), err
	})
	return c.fail(t, "visible", err)
}

func (c *Chromedp) WaitHidden(ctx context.Context, t Target) error {
	err := c.poll(ctx, t, func(ctx context.Context) (bool, string, error) {
		n, err := c.count(ctx, t, true)
		return n == 0, strconv.Itoa(n), err
	})
	return c.fail(t, "hidden", err)
}

func (c *Chromedp) WaitText(ctx context.Context, t Target, text string) error {
	err := c.poll(ctx, t, func(ctx context.Context) (bool, string, error) {
		got, err := c.Text(ctx, t)
		return strings.Contains(got, text), got, err
	})
	return c.fail(t, fmt.Sprintf("containing %q", text), err)
}

func (c *Chromedp) WaitCount(ctx context.Context, t Target, n int) error {
	err := c.poll(ctx, t, func(ctx context.Context) (bool, string, error) {
		got, err := c.count(ctx, t, false)
		return got == n, strconv.Itoa(got), err
	})
	return c.fail(t, fmt.Sprintf("%d elements", n), err)
}

func (c *Chromedp) Text(ctx context.Context, t Target) (string, error) {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return "", err
	}
	var s string
	err = c.run(ctx, waitFor(c.opts, t), chromedp.Text(sel, &s, chromedp.ByQuery))
	return s, c.fail(t, "readable", err)
}

func (c *Chromedp) Count(ctx context.Context, t Target) (int, error) {
	n, err := c.count(ctx, t, false)
	return n, c.fail(t, "countable", err)
}

func (c *Chromedp) Attribute(ctx context.Context, t Target, name string) (string, error) {
	sel, err := c.mark(ctx, t)
	if err != nil {
		return "", err
	}
	var v string
	var ok bool
	err = c.run(ctx, waitFor(c.opts, t), chromedp.AttributeValue(sel, name, &v, &ok, chromedp.ByQuery))
	return v, c.fail(t, "carrying "+name, err)
}

// Download lets Chrome save into dir and polls it for the first new,
// fully written file.
func (c *Chromedp) Download(ctx context.Context, trigger Target, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	before := map[string]bool{}
	if entries, err := os.ReadDir(abs); err == nil {
		for _, e := range entries {
			before[e.Name()] = true
		}
	}
	if err := c.run(ctx, c.opts.Timeout,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).WithDownloadPath(abs),
	); err != nil {
		return "", fmt.Errorf("failed to set download behavior: %w", err)
	}
	if err := c.Click(ctx, trigger); err != nil {
		return "", err
	}

	var path string
	err = c.poll(ctx, trigger, func(context.Context) (bool, string, error) {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return false, "", err
		}
		for _, e := range entries {
			name := e.Name()
			if before[name] || e.IsDir() || strings.HasSuffix(name, ".crdownload") {
				continue
			}
			path = filepath.Join(abs, name)
			return true, name, nil
		}
		return false, "", nil
	})
	if err != nil {
		return "", c.fail(trigger, "starting a download", err)
	}
	c.log.Info("download saved", zap.String("path", path))
	return path, nil
}

func (c *Chromedp) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := c.run(ctx, c.opts.Timeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	return nil
}

func (c *Chromedp) Close() error {
	for _, cancel := range c.cancels {
		cancel()
	}
	return nil
}
