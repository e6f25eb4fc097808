package cli

import (
	"github.com/spf13/cobra"
)

func newBuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run the full pipeline and leave a deployable site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return cfg.Build(cmd.Context())
		},
	}
}
