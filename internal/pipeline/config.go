package pipeline

import (
	"path/filepath"
	"runtime"

	"github.com/sitepipe/sitepipe/internal/activation"
	"github.com/sitepipe/sitepipe/internal/bundle"
	"github.com/sitepipe/sitepipe/internal/critical"
	"github.com/sitepipe/sitepipe/internal/imageopt"
	"github.com/sitepipe/sitepipe/internal/sass"
	"github.com/sitepipe/sitepipe/internal/subproc"
)

// Config is passed to every task. Nothing in the pipeline reads process-wide
// state; the production switch lives here only.
type Config struct {
	/*
		RootDir is the site root: the directory holding the _css, _js and
		_images sources, the generator script and the generated _site. It is
		cleaned and made absolute before use, so "." is fine.
	*/
	RootDir string

	Production bool

	// Concurrency bounds the tasks running at once within a stage. Zero
	// means GOMAXPROCS.
	Concurrency int

	Dirs        Dirs
	Groups      []Group
	Scripts     []Script
	Activations []activation.Section

	// Generator is run three times by a full build and twice by a watch
	// rebuild.
	Generator subproc.Command
	// Precache is run once per section with the section name appended.
	Precache subproc.Command

	Viewports []critical.Viewport
	Ignore    []string
	Images    imageopt.Options

	// WatchIgnore holds doublestar patterns, matched against absolute paths,
	// for files the watcher never reacts to.
	WatchIgnore []string

	Compiler sass.Compiler
	Bundler  bundle.Bundler
	Runner   subproc.Runner
	Logger   Logger
}

// Dirs are relative to RootDir.
type Dirs struct {
	Styles   string
	Scripts  string
	Images   string
	Fonts    string
	Models   string
	Assets   string
	Site     string
	Includes string
	// Deps holds the dependencies-<section>.html revision sources.
	Deps  string
	State string
}

func DefaultDirs() Dirs {
	return Dirs{
		Styles:   "_css",
		Scripts:  "_js",
		Images:   "_images",
		Fonts:    "_fonts",
		Models:   "_models",
		Assets:   "assets",
		Site:     "_site",
		Includes: "_includes",
		Deps:     ".",
		State:    ".sitepipe",
	}
}

// DefaultConfig returns the blog's pipeline with the real tool adapters.
func DefaultConfig(rootDir string) *Config {
	return &Config{
		RootDir:     rootDir,
		Dirs:        DefaultDirs(),
		Groups:      DefaultGroups(),
		Scripts:     DefaultScripts(),
		Activations: DefaultActivations(),
		Generator:   subproc.Command{Name: "./_scripts/build.sh"},
		Precache:    subproc.Command{Name: "./_scripts/generate-service-worker-urls.sh"},
		Viewports:   critical.DefaultViewports,
		Ignore:      critical.DefaultIgnore,
		Images:      imageopt.DefaultOptions(),
		WatchIgnore: DefaultWatchIgnore(),
		Compiler:    sass.Libsass{},
		Bundler:     bundle.Esbuild{},
		Runner:      subproc.Exec{},
		Logger:      NewLogger("sitepipe", false),
	}
}

// DefaultWatchIgnore skips editor swap and backup files.
func DefaultWatchIgnore() []string {
	return []string{"**/.#*", "**/*~", "**/*.swp"}
}

func (c *Config) getCleanRootDir() string {
	root := filepath.Clean(c.RootDir)
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

func (c *Config) path(parts ...string) string {
	return filepath.Join(append([]string{c.getCleanRootDir()}, parts...)...)
}

func (c *Config) stylesheetSource(g Group) string {
	return c.path(c.Dirs.Styles, g.Stylesheet+".scss")
}

func (c *Config) stylesheetOutput(g Group) string {
	return c.path(c.Dirs.Assets, "styles", g.Stylesheet+".css")
}

// generatedStylesheet is the copy the generator placed in the site dir.
func (c *Config) generatedStylesheet(g Group) string {
	return c.path(c.Dirs.Site, c.Dirs.Assets, "styles", g.Stylesheet+".css")
}

func (c *Config) criticalOutput(g Group) string {
	return c.path(c.Dirs.Includes, g.CriticalInclude+".css")
}

func (c *Config) concurrency() int64 {
	if c.Concurrency > 0 {
		return int64(c.Concurrency)
	}
	return int64(runtime.GOMAXPROCS(0))
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return NewLogger("sitepipe", false)
	}
	return c.Logger
}
