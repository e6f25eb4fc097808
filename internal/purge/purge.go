// Package purge removes style rules whose selectors reference class names,
// ids or element names that never occur in a set of content files.
package purge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sitepipe/sitepipe/internal/stylesheet"
)

// ErrNoContent is returned when the content patterns match no files. Purging
// against nothing would empty the stylesheet.
var ErrNoContent = errors.New("no content files matched")

var wordRegex = regexp.MustCompile(`[A-Za-z0-9_-]+`)

// Words is the set of candidate names found in content.
type Words map[string]struct{}

// Add extracts every word-like run from content.
func (w Words) Add(content []byte) {
	for _, m := range wordRegex.FindAll(content, -1) {
		w[string(m)] = struct{}{}
	}
}

func (w Words) Has(name string) bool {
	_, ok := w[name]
	return ok
}

// CollectWords reads every file under root matching one of patterns
// (doublestar syntax, slash separated, relative to root).
func CollectWords(root string, patterns []string) (Words, []string, error) {
	fsys := os.DirFS(root)
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, nil, fmt.Errorf("error matching content pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoContent, patterns)
	}
	sort.Strings(files)

	words := Words{}
	for _, f := range files {
		content, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading content file %s: %w", f, err)
		}
		words.Add(content)
	}
	return words, files, nil
}

// Purger decides which selectors are in use.
type Purger struct {
	words Words
	allow map[string]struct{}
}

// New returns a Purger over words. Selectors naming any class or id in allow
// always survive.
func New(words Words, allow []string) *Purger {
	a := make(map[string]struct{}, len(allow))
	for _, name := range allow {
		a[name] = struct{}{}
	}
	return &Purger{words: words, allow: a}
}

// Used reports whether sel must be kept.
func (p *Purger) Used(sel stylesheet.Selector) bool {
	if p.allowed(sel) {
		return true
	}
	for _, c := range sel.Classes() {
		if !p.words.Has(c) {
			return false
		}
	}
	for _, id := range sel.IDs() {
		if !p.words.Has(id) {
			return false
		}
	}
	for _, tag := range sel.Tags() {
		if !p.words.Has(tag) {
			return false
		}
	}
	return true
}

func (p *Purger) allowed(sel stylesheet.Selector) bool {
	for _, c := range sel.Classes() {
		if _, ok := p.allow[c]; ok {
			return true
		}
	}
	for _, id := range sel.IDs() {
		if _, ok := p.allow[id]; ok {
			return true
		}
	}
	return false
}

// Purge splits sheet into the kept and the removed rules.
func (p *Purger) Purge(sheet *stylesheet.Sheet) (kept, removed *stylesheet.Sheet) {
	removed, kept = sheet.Split(func(sel stylesheet.Selector) bool {
		return !p.Used(sel)
	})
	return kept, removed
}
