package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/sitepipe/sitepipe/internal/purge"
	"github.com/sitepipe/sitepipe/internal/stylesheet"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) purgeTask(g Group) taskgraph.Task {
	inputs := []string{slash(c.Dirs.Site, c.Dirs.Assets, "styles", g.Stylesheet+".css")}
	for _, p := range g.Content {
		inputs = append(inputs, slash(c.Dirs.Site, p))
	}
	return taskgraph.Task{
		Name:    taskName(KindPurge, g.Name),
		Kind:    KindPurge,
		Group:   g.Name,
		Inputs:  inputs,
		Outputs: []string{slash(c.Dirs.Assets, "styles", g.Stylesheet+".css")},
		Run: func(ctx context.Context) error {
			return c.purgeGroup(g)
		},
	}
}

// purgeGroup reads the stylesheet the generator published, drops the rules
// the group's pages and bundle never reference and writes the result over
// the compiled stylesheet.
func (c *Config) purgeGroup(g Group) error {
	src, err := os.ReadFile(c.generatedStylesheet(g))
	if err != nil {
		return fmt.Errorf("error reading generated stylesheet: %w", err)
	}
	sheet, err := stylesheet.Parse(src)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", g.Stylesheet, err)
	}

	words, files, err := purge.CollectWords(c.path(c.Dirs.Site), g.Content)
	if err != nil {
		return err
	}

	kept, removed := purge.New(words, g.Allow).Purge(sheet)
	out, err := c.renderCSS(kept)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.stylesheetOutput(g), out, 0644); err != nil {
		return fmt.Errorf("error writing purged stylesheet: %w", err)
	}

	c.logger().Debugf("purge:%s: %d content file(s), kept %d rule(s), removed %d", g.Name, len(files), kept.Rules(), removed.Rules())
	return nil
}
