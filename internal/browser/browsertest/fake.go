// Package browsertest provides a scriptable in-memory browser.Driver that
// records every primitive it receives.
package browsertest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// Call is one recorded driver primitive.
type Call struct {
	Op     string
	Target string
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return c.Op + " " + c.Target
	}
	return fmt.Sprintf("%s %s %q", c.Op, c.Target, c.Arg)
}

type rule struct {
	op  string
	sub string
	err error
}

// Fake answers every wait successfully unless scripted otherwise. Scripted
// state matches targets whose String() contains the registered substring:
// the longest substring wins for texts, counts and attributes, the most
// recent FailOn rule wins for failures.
type Fake struct {
	mu         sync.Mutex
	base       string
	url        string
	calls      []Call
	texts      map[string]string
	counts     map[string]int
	attrs      map[string]map[string]string
	failures   []rule
	download   func(dir string) (string, error)
	screenshot []string
}

// New returns a Fake whose relative visits resolve against base.
func New(base string) *Fake {
	return &Fake{
		base:   base,
		texts:  map[string]string{},
		counts: map[string]int{},
		attrs:  map[string]map[string]string{},
	}
}

// SetText scripts the text of targets containing sub.
func (f *Fake) SetText(sub, text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[sub] = text
	return f
}

// SetCount scripts how many elements match targets containing sub. A count
// of zero also makes WaitVisible on them fail.
func (f *Fake) SetCount(sub string, n int) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[sub] = n
	return f
}

// SetAttribute scripts attribute name of targets containing sub.
func (f *Fake) SetAttribute(sub, name, value string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attrs[name] == nil {
		f.attrs[name] = map[string]string{}
	}
	f.attrs[name][sub] = value
	return f
}

// FailOn makes op (or any op for "*") fail on targets containing sub.
func (f *Fake) FailOn(op, sub string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, rule{op: op, sub: sub, err: err})
	return f
}

// OnDownload sets the function producing the downloaded file.
func (f *Fake) OnDownload(fn func(dir string) (string, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.download = fn
	return f
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Ops returns the recorded calls rendered as strings.
func (f *Fake) Ops() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Reset clears recorded calls but keeps scripted state.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Screenshots lists the paths passed to Screenshot.
func (f *Fake) Screenshots() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.screenshot...)
}

func longest[V any](m map[string]V, key string) (V, bool) {
	var best string
	var val V
	found := false
	for sub, v := range m {
		if strings.Contains(key, sub) && (!found || len(sub) > len(best)) {
			best, val, found = sub, v, true
		}
	}
	return val, found
}

func (f *Fake) record(ctx context.Context, op string, t browser.Target, arg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.String()
	f.calls = append(f.calls, Call{Op: op, Target: key, Arg: arg})
	for i := len(f.failures) - 1; i >= 0; i-- {
		r := f.failures[i]
		if (r.op == "*" || r.op == op) && strings.Contains(key, r.sub) {
			return &browser.AssertionError{Target: t, Expect: op, Err: r.err}
		}
	}
	return nil
}

func (f *Fake) count(key string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return longest(f.counts, key)
}

func (f *Fake) text(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return longest(f.texts, key)
}

func (f *Fake) Visit(ctx context.Context, path string) error {
	if err := f.record(ctx, "Visit", browser.Sel(path), ""); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(path, "http") {
		f.url = path
	} else {
		f.url = strings.TrimRight(f.base, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return nil
}

func (f *Fake) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *Fake) WaitURL(ctx context.Context, contains string) error {
	return f.record(ctx, "WaitURL", browser.Sel("location"), contains)
}

func (f *Fake) Back(ctx context.Context) error {
	return f.record(ctx, "Back", browser.Sel("history"), "")
}

func (f *Fake) Reload(ctx context.Context) error {
	return f.record(ctx, "Reload", browser.Sel("page"), "")
}

func (f *Fake) Click(ctx context.Context, t browser.Target) error {
	return f.record(ctx, "Click", t, "")
}

func (f *Fake) Fill(ctx context.Context, t browser.Target, value string) error {
	return f.record(ctx, "Fill", t, value)
}

func (f *Fake) Press(ctx context.Context, t browser.Target, key string) error {
	return f.record(ctx, "Press", t, key)
}

func (f *Fake) Check(ctx context.Context, t browser.Target) error {
	return f.record(ctx, "Check", t, "")
}

func (f *Fake) SetFiles(ctx context.Context, t browser.Target, files ...string) error {
	return f.record(ctx, "SetFiles", t, strings.Join(files, ","))
}

func (f *Fake) WaitVisible(ctx context.Context, t browser.Target) error {
	if err := f.record(ctx, "WaitVisible", t, ""); err != nil {
		return err
	}
	if n, ok := f.count(t.String()); ok && n == 0 {
		return &browser.AssertionError{Target: t, Expect: "visible", Err: browser.ErrTimeout}
	}
	return nil
}

func (f *Fake) WaitHidden(ctx context.Context, t browser.Target) error {
	if err := f.record(ctx, "WaitHidden", t, ""); err != nil {
		return err
	}
	if n, ok := f.count(t.String()); ok && n > 0 {
		return &browser.AssertionError{Target: t, Expect: "hidden", Err: browser.ErrTimeout}
	}
	return nil
}

func (f *Fake) WaitText(ctx context.Context, t browser.Target, text string) error {
	if err := f.record(ctx, "WaitText", t, text); err != nil {
		return err
	}
	if got, ok := f.text(t.String()); ok && !strings.Contains(got, text) {
		return browser.Mismatch(t, fmt.Sprintf("containing %q", text), got)
	}
	return nil
}

func (f *Fake) WaitCount(ctx context.Context, t browser.Target, n int) error {
	if err := f.record(ctx, "WaitCount", t, fmt.Sprint(n)); err != nil {
		return err
	}
	if got, ok := f.count(t.String()); ok && got != n {
		return browser.Mismatch(t, fmt.Sprintf("%d elements", n), fmt.Sprint(got))
	}
	return nil
}

func (f *Fake) Text(ctx context.Context, t browser.Target) (string, error) {
	if err := f.record(ctx, "Text", t, ""); err != nil {
		return "", err
	}
	got, _ := f.text(t.String())
	return got, nil
}

// Count defaults to one match for unscripted targets.
func (f *Fake) Count(ctx context.Context, t browser.Target) (int, error) {
	if err := f.record(ctx, "Count", t, ""); err != nil {
		return 0, err
	}
	if n, ok := f.count(t.String()); ok {
		return n, nil
	}
	return 1, nil
}

func (f *Fake) Attribute(ctx context.Context, t browser.Target, name string) (string, error) {
	if err := f.record(ctx, "Attribute", t, name); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, _ := longest(f.attrs[name], t.String())
	return v, nil
}

// Download writes an empty file named after the trigger unless OnDownload
// provides one.
func (f *Fake) Download(ctx context.Context, trigger browser.Target, dir string) (string, error) {
	if err := f.record(ctx, "Download", trigger, dir); err != nil {
		return "", err
	}
	f.mu.Lock()
	fn := f.download
	f.mu.Unlock()
	if fn != nil {
		return fn(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "download.bin")
	return path, os.WriteFile(path, nil, 0o644)
}

func (f *Fake) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshot = append(f.screenshot, path)
	return nil
}

func (f *Fake) Close() error { return nil }

var _ browser.Driver = (*Fake)(nil)
