package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var buildFirst bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the styles of changed groups until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if buildFirst {
				if err := cfg.Build(ctx); err != nil {
					return err
				}
			}
			printInfo(cmd.ErrOrStderr(), "Press Ctrl+C to stop")
			return cfg.Watch(ctx)
		},
	}
	cmd.Flags().BoolVar(&buildFirst, "build", false, "run a full build before watching")
	return cmd
}
