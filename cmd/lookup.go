package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/presentation"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

var lookupOutput string

var lookupCmd = &cobra.Command{
	Use:   "lookup <role> <key>",
	Short: "Show one artifact by role and key",
	Long: `Show one published artifact. Domain classes are keyed by their
decapitalized name; every other role by its full name.

Examples:
  roster lookup domain book
  roster lookup handler app.BookController -o table
  roster lookup datasource app.MainDataSource`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := registry.ParseRole(args[0])
		if err != nil {
			return err
		}
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), lookupOutput)
		if err != nil {
			return err
		}

		rt, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		a, err := rt.service.Lookup(role, args[1])
		if err != nil {
			return err
		}
		return formatter.FormatArtifact(presentation.FromArtifact(role, args[1], a))
	},
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", presentation.FormatJSON, "Output format: json or table")
	rootCmd.AddCommand(lookupCmd)
}
