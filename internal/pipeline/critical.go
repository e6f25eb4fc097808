package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitepipe/sitepipe/internal/critical"
	"github.com/sitepipe/sitepipe/internal/stylesheet"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) criticalTask(g Group) taskgraph.Task {
	return taskgraph.Task{
		Name:  taskName(KindCritical, g.Name),
		Kind:  KindCritical,
		Group: g.Name,
		Inputs: []string{
			slash(c.Dirs.Site, g.Page),
			slash(c.Dirs.Assets, "styles", g.Stylesheet+".css"),
		},
		Outputs: []string{
			slash(c.Dirs.Assets, "styles", g.Stylesheet+".css"),
			slash(c.Dirs.Includes, g.CriticalInclude+".css"),
		},
		Run: func(ctx context.Context) error {
			// A failing pair is skipped; the build goes on.
			if err := c.extractCritical(g); err != nil {
				c.logger().Warningf("critical:%s: skipped: %v", g.Name, err)
			}
			return nil
		},
	}
}

func (c *Config) criticalOptions() (critical.Options, error) {
	ignore, err := critical.CompileIgnore(c.Ignore)
	if err != nil {
		return critical.Options{}, err
	}
	viewports := c.Viewports
	if len(viewports) == 0 {
		viewports = critical.DefaultViewports
	}
	return critical.Options{Viewports: viewports, Ignore: ignore}, nil
}

// extractCritical writes the above-the-fold rules of the group's page to the
// critical include and the remainder back over the stylesheet. Nothing is
// written unless both outputs can be produced.
func (c *Config) extractCritical(g Group) error {
	opts, err := c.criticalOptions()
	if err != nil {
		return err
	}
	page, err := os.ReadFile(c.path(c.Dirs.Site, filepath.FromSlash(g.Page)))
	if err != nil {
		return fmt.Errorf("error reading page: %w", err)
	}
	src, err := os.ReadFile(c.stylesheetOutput(g))
	if err != nil {
		return fmt.Errorf("error reading stylesheet: %w", err)
	}
	sheet, err := stylesheet.Parse(src)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", g.Stylesheet, err)
	}

	res, err := critical.Extract(page, sheet, opts)
	if err != nil {
		return err
	}
	criticalCSS, err := c.renderCSS(res.Critical)
	if err != nil {
		return err
	}
	uncriticalCSS, err := c.renderCSS(res.Uncritical)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.path(c.Dirs.Includes), 0755); err != nil {
		return fmt.Errorf("error creating include directory: %w", err)
	}
	if err := os.WriteFile(c.criticalOutput(g), criticalCSS, 0644); err != nil {
		return fmt.Errorf("error writing critical include: %w", err)
	}
	if err := os.WriteFile(c.stylesheetOutput(g), uncriticalCSS, 0644); err != nil {
		return fmt.Errorf("error writing uncritical stylesheet: %w", err)
	}

	c.logger().Debugf("critical:%s: %d visible element(s), %d critical rule(s)", g.Name, res.Visible, res.Critical.Rules())
	return nil
}
