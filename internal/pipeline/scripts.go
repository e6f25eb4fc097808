package pipeline

import (
	"context"
	"path/filepath"

	"github.com/sitepipe/sitepipe/internal/bundle"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) scriptsTask() taskgraph.Task {
	var outputs []string
	for _, s := range c.Scripts {
		outputs = append(outputs, slash(c.Dirs.Assets, "js", s.Name+".min.js"))
	}
	return taskgraph.Task{
		Name:    string(KindScripts),
		Kind:    KindScripts,
		Inputs:  []string{slash(c.Dirs.Scripts, "**", "*")},
		Outputs: outputs,
		Run:     c.bundleScripts,
	}
}

// bundleScripts bundles every entry point in one bundler run. Any error
// fails the whole task.
func (c *Config) bundleScripts(ctx context.Context) error {
	entries := make([]bundle.Entry, 0, len(c.Scripts))
	for _, s := range c.Scripts {
		entries = append(entries, bundle.Entry{
			Name:   s.Name,
			Source: filepath.Join(c.path(c.Dirs.Scripts), s.Source),
		})
	}
	res, err := c.Bundler.Bundle(entries, bundle.Options{
		Production: c.Production,
		Outdir:     c.path(c.Dirs.Assets, "js"),
		Root:       c.getCleanRootDir(),
	})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		c.logger().Warningf("scripts: %s", w)
	}
	return nil
}
