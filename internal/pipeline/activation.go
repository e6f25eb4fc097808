package pipeline

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/activation"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) activationTask(s activation.Section) taskgraph.Task {
	return taskgraph.Task{
		Name:    taskName(KindActivation, s.Name),
		Kind:    KindActivation,
		Outputs: []string{slash(c.Dirs.Includes, activation.IncludeName(s))},
		Run: func(ctx context.Context) error {
			_, err := activation.WriteInclude(c.path(c.Dirs.Includes), s)
			return err
		},
	}
}

// InstallActivationScript writes the page activation script into the
// scripts source dir.
func (c *Config) InstallActivationScript(overwrite bool) (string, error) {
	return activation.WriteScript(c.path(c.Dirs.Scripts), overwrite)
}
