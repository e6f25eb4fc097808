package pipeline

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/revision"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) revisionTask(section string) taskgraph.Task {
	name := "dependencies-" + section + ".html"
	return taskgraph.Task{
		Name:    taskName(KindRevision, section),
		Kind:    KindRevision,
		Inputs:  []string{slash(c.Dirs.Deps, name), slash(c.Dirs.Assets, "**", "*")},
		Outputs: []string{slash(c.Dirs.Includes, name)},
		Run: func(ctx context.Context) error {
			return c.revise(section)
		},
	}
}

// revise stamps the section's dependency fragment with the current content
// hash of every asset it references.
func (c *Config) revise(section string) error {
	name := "dependencies-" + section + ".html"
	refs, err := revision.File(c.getCleanRootDir(), c.path(c.Dirs.Deps, name), c.path(c.Dirs.Includes, name))
	if err != nil {
		return err
	}
	for _, r := range refs {
		c.logger().Debugf("revision:%s: %s?rev=%s", section, r.URL, r.Rev)
	}
	return nil
}
