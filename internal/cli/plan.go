package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func newPlanCmd(opts *options) *cobra.Command {
	var watchGroups []string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the stages a build or a watch rebuild would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			var g *taskgraph.Graph
			if len(watchGroups) > 0 {
				g, err = cfg.WatchPlan(watchGroups)
			} else {
				g, err = cfg.FullPlan()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, stage := range g.Stages() {
				names := make([]string, 0, len(stage))
				for _, t := range stage {
					names = append(names, t.Name)
				}
				printKeyValue(out, fmt.Sprintf("stage %d", i), strings.Join(names, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&watchGroups, "watch", nil, "show the rebuild plan for these groups")
	return cmd
}
