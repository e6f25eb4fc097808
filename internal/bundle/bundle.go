// Package bundle bundles browser script entry points with esbuild.
package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Entry is one script entry point. Name is the output base name without
// extension; the bundle is written to <Outdir>/<Name>.min.js.
type Entry struct {
	Name   string
	Source string
}

type Options struct {
	Production bool
	Outdir     string
	// Root is the working directory relative paths resolve against.
	Root string
}

type Result struct {
	Outputs  []string
	Warnings []string
}

// Bundler builds every entry in a single invocation.
type Bundler interface {
	Bundle(entries []Entry, opts Options) (*Result, error)
}

// ErrBundle wraps every esbuild error message of a failed run.
var ErrBundle = errors.New("bundling failed")

// Esbuild is the esbuild-backed Bundler.
type Esbuild struct{}

func (Esbuild) Bundle(entries []Entry, opts Options) (*Result, error) {
	if len(entries) == 0 {
		return &Result{}, nil
	}
	result := api.Build(BuildOptions(entries, opts))
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, formatMessage(m))
		}
		return nil, fmt.Errorf("%w:\n%s", ErrBundle, strings.Join(msgs, "\n"))
	}

	out := &Result{}
	for _, f := range result.OutputFiles {
		out.Outputs = append(out.Outputs, f.Path)
	}
	// Production builds stay quiet about performance hints.
	if !opts.Production {
		for _, m := range result.Warnings {
			out.Warnings = append(out.Warnings, formatMessage(m))
		}
	}
	return out, nil
}

// BuildOptions maps entries and the production switch onto esbuild options.
func BuildOptions(entries []Entry, opts Options) api.BuildOptions {
	points := make([]api.EntryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, api.EntryPoint{InputPath: e.Source, OutputPath: e.Name + ".min"})
	}
	mode := "development"
	if opts.Production {
		mode = "production"
	}
	return api.BuildOptions{
		EntryPointsAdvanced: points,
		AbsWorkingDir:       opts.Root,
		Outdir:              opts.Outdir,
		Bundle:              true,
		Write:               true,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2017,
		Sourcemap:           api.SourceMapNone,
		LogLevel:            api.LogLevelSilent,
		MinifyWhitespace:    opts.Production,
		MinifyIdentifiers:   opts.Production,
		MinifySyntax:        opts.Production,
		Define:              map[string]string{"process.env.NODE_ENV": `"` + mode + `"`},
	}
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
