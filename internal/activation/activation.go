// Package activation ships the blog's page activation script and renders the
// per-section snippet that calls its entry point.
package activation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptName is the file name the activation script is installed under in
// the scripts source directory.
const ScriptName = "index.blog.ts"

// EntryPoint is the global the script exposes.
const EntryPoint = "ChicioCodingBlog"

//go:embed index.blog.ts
var script []byte

// Script returns the activation script source.
func Script() []byte {
	return append([]byte(nil), script...)
}

// Widgets are the load-time behaviours in the order they run.
var Widgets = []string{"service-worker", "cookie-consent", "pull-to-refresh", "youtube", "disqus"}

// Section configures the init call for pages of one section.
type Section struct {
	Name          string
	Category      string
	PullToRefresh bool
}

// RenderInit returns an inline script calling the entry point. It has to be
// included after the bundle's script tag.
func RenderInit(s Section) (string, error) {
	if s.Category == "" {
		return "", fmt.Errorf("section %q has no tracking category", s.Name)
	}
	category, err := json.Marshal(s.Category)
	if err != nil {
		return "", fmt.Errorf("error encoding tracking category: %w", err)
	}
	return fmt.Sprintf("<script>%s.init(%s, %t)</script>\n", EntryPoint, category, s.PullToRefresh), nil
}

// IncludeName is the include fragment written for s.
func IncludeName(s Section) string {
	return "activation-" + s.Name + ".html"
}

// WriteInclude renders s into dir.
func WriteInclude(dir string, s Section) (string, error) {
	snippet, err := RenderInit(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating include directory: %w", err)
	}
	path := filepath.Join(dir, IncludeName(s))
	if err := os.WriteFile(path, []byte(snippet), 0644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}

// ErrExists is returned by WriteScript when the script is already installed.
var ErrExists = errors.New("activation script already exists")

// WriteScript installs the script into dir unless it exists and overwrite is
// false.
func WriteScript(dir string, overwrite bool) (string, error) {
	path := filepath.Join(dir, ScriptName)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, ErrExists
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating script directory: %w", err)
	}
	if err := os.WriteFile(path, script, 0644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}
