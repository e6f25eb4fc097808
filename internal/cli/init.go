package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitepipe/sitepipe/internal/activation"
)

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install the page activation script into the scripts directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			path, err := cfg.InstallActivationScript(force)
			if errors.Is(err, activation.ErrExists) {
				printWarning(cmd.ErrOrStderr(), "%s already exists, use --force to overwrite", path)
				return nil
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "wrote %s", path)
			printKeyValue(cmd.OutOrStdout(), "widgets", strings.Join(activation.Widgets, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing script")
	return cmd
}
