package pipeline

import (
	"context"
	"strings"

	"github.com/sitepipe/sitepipe/internal/subproc"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) generateTask(kind taskgraph.Kind) taskgraph.Task {
	return taskgraph.Task{
		Name:    taskName(kind, ""),
		Kind:    kind,
		Inputs:  []string{slash(c.Dirs.Assets, "**", "*"), slash(c.Dirs.Includes, "**", "*")},
		Outputs: []string{slash(c.Dirs.Site, "**", "*")},
		Run: func(ctx context.Context) error {
			return c.runCommand(ctx, c.Generator)
		},
	}
}

func (c *Config) serviceWorkerURLsTask(section string) taskgraph.Task {
	return taskgraph.Task{
		Name:   taskName(KindServiceWorkerURLs, section),
		Kind:   KindServiceWorkerURLs,
		Inputs: []string{slash(c.Dirs.Includes, "dependencies-"+section+".html")},
		Run: func(ctx context.Context) error {
			cmd := c.Precache
			cmd.Args = append(append([]string{}, cmd.Args...), section)
			return c.runCommand(ctx, cmd)
		},
	}
}

// runCommand runs cmd in the site root and blocks until it exits. The build
// mode is passed on in SITEPIPE_ENV.
func (c *Config) runCommand(ctx context.Context, cmd subproc.Command) error {
	if cmd.Dir == "" {
		cmd.Dir = c.getCleanRootDir()
	}
	mode := "development"
	if c.Production {
		mode = productionVal
	}
	cmd.Env = append(append([]string{}, cmd.Env...), envKey+"="+mode)
	out, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if s := strings.TrimSpace(string(out)); s != "" {
		c.logger().Debugf("%s: %s", cmd, s)
	}
	return nil
}
