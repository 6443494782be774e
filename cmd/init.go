package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/presentation"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default config file to .roster/config.yaml, or to the
file named by --config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := presentation.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		path := configPath()

		if _, err := os.Stat(path); err == nil && !initForce {
			return p.Error("Config file already exists", fmt.Errorf("%s", path),
				"Use --force to overwrite it")
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return p.Error("Could not write config", err)
		}
		p.Success("Wrote %s", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
