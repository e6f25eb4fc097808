package pipeline

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/sass"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) stylesTask(g Group) taskgraph.Task {
	return taskgraph.Task{
		Name:    taskName(KindStyles, g.Name),
		Kind:    KindStyles,
		Group:   g.Name,
		Inputs:  []string{slash(c.Dirs.Styles, "**", "*.scss")},
		Outputs: []string{slash(c.Dirs.Assets, "styles", g.Stylesheet+".css")},
		Run: func(ctx context.Context) error {
			return c.compileStyles(g)
		},
	}
}

// compileStyles compiles the group's entry point. Compressed output in
// production, nested otherwise.
func (c *Config) compileStyles(g Group) error {
	opts := sass.Options{
		Compressed:   c.Production,
		IncludePaths: []string{c.path(c.Dirs.Styles)},
	}
	return sass.CompileFile(c.Compiler, c.stylesheetSource(g), c.stylesheetOutput(g), opts)
}
