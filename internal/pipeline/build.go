package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

// Build runs every task and leaves a deployable site behind.
func (c *Config) Build(ctx context.Context) error {
	g, err := c.FullPlan()
	if err != nil {
		return fmt.Errorf("error building task graph: %w", err)
	}
	return c.run(ctx, "build", g)
}

// RebuildStyles runs the style-only plan for the named groups.
func (c *Config) RebuildStyles(ctx context.Context, groups []string) error {
	g, err := c.WatchPlan(groups)
	if err != nil {
		return fmt.Errorf("error building watch plan: %w", err)
	}
	return c.run(ctx, "rebuild", g)
}

// RunKinds runs the tasks of the given kinds on their own, without the
// tasks they normally wait for.
func (c *Config) RunKinds(ctx context.Context, kinds []string) error {
	g, err := c.KindPlan(kinds)
	if err != nil {
		return fmt.Errorf("error selecting tasks: %w", err)
	}
	return c.run(ctx, "run "+strings.Join(kinds, ","), g)
}

func (c *Config) run(ctx context.Context, label string, g *taskgraph.Graph) error {
	log := c.logger()
	mode := "development"
	if c.Production {
		mode = "production"
	}
	log.Infof("%s: %d task(s) in %d stage(s), %s mode", label, g.Len(), len(g.Stages()), mode)

	start := time.Now()
	exec := taskgraph.Executor{
		Limit: c.concurrency(),
		OnStart: func(t taskgraph.Task) {
			log.Debugf("%s started", t.Name)
		},
		OnFinish: func(t taskgraph.Task, elapsed time.Duration, err error) {
			if err != nil {
				log.Errorf("%s failed after %s: %v", t.Name, elapsed.Round(time.Millisecond), err)
				return
			}
			log.Infof("%s done in %s", t.Name, elapsed.Round(time.Millisecond))
		},
	}
	if err := exec.Run(ctx, g); err != nil {
		return err
	}
	Successf(log, "%s finished in %s", label, time.Since(start).Round(time.Millisecond))
	return nil
}
