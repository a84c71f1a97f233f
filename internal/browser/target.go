package browser

import (
	"fmt"
	"strings"
	"time"
)

// Target addresses an element on the page. It is a chain of segments,
// each one searched inside the match of the previous one.
type Target struct {
	segments []Segment
	timeout  time.Duration
	force    bool
}

// Sel starts a target from a CSS selector.
func Sel(selector string) Target {
	return Target{segments: []Segment{{Selector: selector}}}
}

// Text starts a target matching the deepest element containing text.
func Text(text string) Target {
	return Target{segments: []Segment{{Text: text}}}
}

// Contains keeps only elements of the last segment containing text.
func (t Target) Contains(text string) Target {
	t = t.clone()
	t.segments[len(t.segments)-1].Text = text
	return t
}

// Nth picks the i-th element (0-based) of the last segment.
func (t Target) Nth(i int) Target {
	t = t.clone()
	last := &t.segments[len(t.segments)-1]
	last.Index = i
	last.Indexed = true
	return t
}

// Find descends into the current match with a nested selector.
func (t Target) Find(selector string) Target {
	t = t.clone()
	t.segments = append(t.segments, Segment{Selector: selector})
	return t
}

// Within overrides the driver's default wait for this target.
func (t Target) Within(d time.Duration) Target {
	t = t.clone()
	t.timeout = d
	return t
}

// Forced clicks without waiting for actionability checks.
func (t Target) Forced() Target {
	t = t.clone()
	t.force = true
	return t
}

// Timeout reports the override set by Within, or zero.
func (t Target) Timeout() time.Duration { return t.timeout }

// Force reports whether Forced was applied.
func (t Target) Force() bool { return t.force }

// Segments returns a copy of the selector chain.
func (t Target) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Segment is one link in a Target chain.
type Segment struct {
	Selector string `json:"sel"`
	Text     string `json:"text"`
	Index    int    `json:"idx"`
	Indexed  bool   `json:"indexed"`
}

func (t Target) clone() Target {
	c := t
	c.segments = append([]Segment(nil), t.segments...)
	if len(c.segments) == 0 {
		c.segments = []Segment{{}}
	}
	return c
}

func (t Target) String() string {
	parts := make([]string, 0, len(t.segments))
	for _, s := range t.segments {
		var b strings.Builder
		switch {
		case s.Selector == "" && s.Text != "":
			fmt.Fprintf(&b, "text=%q", s.Text)
		case s.Text != "":
			fmt.Fprintf(&b, "%s:has-text(%q)", s.Selector, s.Text)
		default:
			b.WriteString(s.Selector)
		}
		if s.Indexed {
			fmt.Fprintf(&b, ":nth(%d)", s.Index)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " >> ")
}
