package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [profiles...]",
		Short: "Plan chunks for the given profiles and write their manifests",
		Long: "Plan builds the module graph for each requested profile, assigns " +
			"modules to chunks according to the configured cache groups and size " +
			"thresholds, and writes one manifest per profile into the output " +
			"directory. Without arguments every configured profile is planned.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Plan(cmd.Context(), args)
		},
	}
}
