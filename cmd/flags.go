package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/presentation"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Show or change feature flags",
}

var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feature flags and their values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := flags.New(cfg.Flags)
		for _, name := range r.Names() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", name, r.Enabled(name))
		}
		return nil
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "set <name=bool>...",
	Short: "Set feature flags in the config file",
	Long: `Set one or more feature flags in the config file. Other sections of the
file keep their comments and formatting.

Examples:
  roster flags set strict-names=true
  roster flags set dispatch-cache=false catalog=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := presentation.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

		values := flags.New(cfg.Flags).All()
		for _, arg := range args {
			name, raw, ok := strings.Cut(arg, "=")
			if !ok {
				return p.Error("Invalid flag assignment", fmt.Errorf("%q", arg), "Use name=true or name=false")
			}
			if !flags.Known(name) {
				return p.Error("Unknown flag", fmt.Errorf("%q", name), "Run 'roster flags list' to see known flags")
			}
			enabled, err := strconv.ParseBool(raw)
			if err != nil {
				return p.Error("Invalid flag value", fmt.Errorf("%s: %w", name, err))
			}
			values[name] = enabled
		}

		path := configPath()
		if err := config.SaveFlags(path, values); err != nil {
			return p.Error("Could not save flags", err)
		}
		cfg.Flags = values
		p.Success("Saved flags to %s", path)
		return nil
	},
}

func init() {
	flagsCmd.AddCommand(flagsListCmd, flagsSetCmd)
	rootCmd.AddCommand(flagsCmd)
}
