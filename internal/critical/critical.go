// Package critical splits a stylesheet into the rules needed to paint the
// first screen of a page and the remainder.
//
// There is no browser involved: the page is laid out with a coarse block-flow
// model (text wraps at a fixed glyph width, replaced elements take their
// declared or a default height) and an element counts as above the fold when
// its top edge sits inside the viewport. Selectors are matched against those
// elements with cascadia.
package critical

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/sitepipe/sitepipe/internal/stylesheet"
)

type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) String() string { return fmt.Sprintf("%dx%d", v.Width, v.Height) }

// DefaultViewports are the mobile, tablet and desktop sizes every page is
// analysed at.
var DefaultViewports = []Viewport{
	{Width: 320, Height: 480},
	{Width: 768, Height: 1024},
	{Width: 1280, Height: 1024},
}

// DefaultIgnore never become critical, wherever they render.
var DefaultIgnore = []string{"footer-icon", "icon-", "phone-number"}

type Options struct {
	Viewports []Viewport
	// Ignore patterns are matched against the selector text.
	Ignore []*regexp.Regexp
}

// CompileIgnore turns plain patterns into regular expressions.
func CompileIgnore(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("error compiling ignore pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// DefaultOptions returns the three default viewports and ignore patterns.
func DefaultOptions() Options {
	ignore, _ := CompileIgnore(DefaultIgnore)
	return Options{Viewports: DefaultViewports, Ignore: ignore}
}

type Result struct {
	Critical   *stylesheet.Sheet
	Uncritical *stylesheet.Sheet
	// Visible is the number of distinct elements above the fold at any
	// viewport.
	Visible int
}

// Extract analyses page against sheet. Every selector lands in exactly one
// of the two result sheets; at-rules other than grouping ones stay with the
// uncritical remainder.
func Extract(page []byte, sheet *stylesheet.Sheet, opts Options) (*Result, error) {
	if len(opts.Viewports) == 0 {
		return nil, fmt.Errorf("no viewports given")
	}
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("error parsing page: %w", err)
	}

	visible := map[*html.Node]bool{}
	for _, vp := range opts.Viewports {
		for _, n := range aboveFold(doc, vp) {
			visible[n] = true
		}
	}
	nodes := make([]*html.Node, 0, len(visible))
	// Keep document order so matching is reproducible.
	walk(doc, func(n *html.Node) {
		if visible[n] {
			nodes = append(nodes, n)
		}
	})

	compiled := map[string]cascadia.Sel{}
	isCritical := func(sel stylesheet.Selector) bool {
		for _, re := range opts.Ignore {
			if re.MatchString(sel.String()) {
				return false
			}
		}
		structural := sel.Structural()
		if structural == "" {
			return true
		}
		s, ok := compiled[structural]
		if !ok {
			c, err := cascadia.Parse(structural)
			if err != nil {
				compiled[structural] = nil
				return false
			}
			s = c
			compiled[structural] = s
		}
		if s == nil {
			return false
		}
		for _, n := range nodes {
			if s.Match(n) {
				return true
			}
		}
		return false
	}

	crit, rest := sheet.Split(isCritical)
	return &Result{Critical: crit, Uncritical: rest, Visible: len(nodes)}, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
