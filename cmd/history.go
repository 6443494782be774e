package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/presentation"
)

var (
	historyLimit  int
	historyBuild  string
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded builds from the catalog",
	Long: `Show the builds recorded by 'roster watch', newest first. With --build,
list the artifacts one build published.

Examples:
  roster history
  roster history --limit 5 -o table
  roster history --build 3f1c2d9e-...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), historyOutput)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd.Context(), cfg, serviceOptions{catalog: true})
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		if historyBuild != "" {
			recs, err := rt.service.BuildArtifacts(cmd.Context(), historyBuild)
			if err != nil {
				return err
			}
			return formatter.FormatArtifacts(presentation.FromArtifactRecords(recs))
		}

		builds, err := rt.service.History(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return formatter.FormatBuilds(presentation.FromBuildRecords(builds))
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum builds to show (0 for all)")
	historyCmd.Flags().StringVar(&historyBuild, "build", "", "List the artifacts of one build")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", presentation.FormatJSON, "Output format: json or table")
	rootCmd.AddCommand(historyCmd)
}
