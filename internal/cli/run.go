package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitepipe/sitepipe/internal/pipeline"
)

func newRunCmd(opts *options) *cobra.Command {
	kinds := make([]string, 0, len(pipeline.Kinds))
	for _, k := range pipeline.Kinds {
		kinds = append(kinds, string(k))
	}
	return &cobra.Command{
		Use:   "run <kind>...",
		Short: "Run only the tasks of the given kinds",
		Long: fmt.Sprintf("Run only the tasks of the given kinds, skipping the tasks they "+
			"normally wait for.\n\nKinds: %s", strings.Join(kinds, ", ")),
		Example:   "  sitepipe run scripts\n  sitepipe run copy --production",
		Args:      cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return cfg.RunKinds(cmd.Context(), args)
		},
	}
}
