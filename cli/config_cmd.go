package cli

import (
	"fmt"

	"github.com/javanhut/archived/internal/colors"
	"github.com/javanhut/archived/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set archived configuration options.

Configuration can be set at two levels:
- Global (~/.archived.toml) - applies everywhere
- Local (./.archived.toml) - applies to the current directory only

Examples:
  archived config color.ui false
  archived config --global replay.debounce 500ms
  archived config --list
  archived config replay.dump`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Use global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	// Handle --list flag
	if configList {
		return listConfig(cmd)
	}

	// Handle get value (1 arg)
	if len(args) == 1 {
		return getConfigValue(cmd, args[0])
	}

	// Handle set value (2 args)
	if len(args) == 2 {
		return setConfigValue(cmd, args[0], args[1], configGlobal)
	}

	// Invalid usage
	return fmt.Errorf("invalid usage. See: archived config --help")
}

func listConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, colors.SectionHeader("Configuration:"))
	for _, key := range config.Keys() {
		value, err := config.GetValue(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s = %s\n", key, colors.InfoText(value))
	}
	return nil
}

func getConfigValue(cmd *cobra.Command, key string) error {
	value, err := config.GetValue(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func setConfigValue(cmd *cobra.Command, key, value string, global bool) error {
	if err := config.SetValue(key, value, global); err != nil {
		return err
	}

	scope := "local"
	if global {
		scope = "global"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s config: %s = %s\n",
		colors.SuccessText("Set"),
		scope,
		colors.Bold(key),
		colors.InfoText(value))
	return nil
}
