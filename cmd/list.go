package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/presentation"
	appreg "github.com/zjrosen/roster/internal/registry/application"
)

var (
	listRoles  []string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published artifacts",
	Long: `Build the registry from the source directory and list the published
artifacts, role by role in classification order, ordered by key.

Examples:
  # Every artifact as JSON
  roster list

  # Only handlers and flows as a table
  roster list --role handler --role flow -o table

  # Parse specific fields with jq
  roster list | jq '.[].full_name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := appreg.ParseRoles(listRoles)
		if err != nil {
			return err
		}
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), listOutput)
		if err != nil {
			return err
		}

		rt, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		reg, err := rt.service.Current()
		if err != nil {
			return err
		}
		return formatter.FormatArtifacts(presentation.FromRegistry(reg, roles...))
	},
}

func init() {
	listCmd.Flags().StringArrayVarP(&listRoles, "role", "r", nil, "Filter by role: domain, handler, flow, datasource, service (repeatable)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", presentation.FormatJSON, "Output format: json or table")
	rootCmd.AddCommand(listCmd)
}
