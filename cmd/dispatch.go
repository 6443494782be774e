package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/presentation"
)

var dispatchOutput string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <uri>",
	Short: "Resolve a URI to its request handler",
	Long: `Resolve a URI to the first published request handler that maps it, and
the action that serves it.

Examples:
  roster dispatch /book
  roster dispatch '/book/show?id=1' -o table`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), dispatchOutput)
		if err != nil {
			return err
		}

		rt, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		h, err := rt.service.Dispatch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return formatter.FormatDispatch(presentation.FromDispatch(args[0], h))
	},
}

func init() {
	dispatchCmd.Flags().StringVarP(&dispatchOutput, "output", "o", presentation.FormatJSON, "Output format: json or table")
	rootCmd.AddCommand(dispatchCmd)
}
