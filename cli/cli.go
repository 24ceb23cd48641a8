package cli

import (
	"os"

	"github.com/javanhut/archived/internal/colors"
	"github.com/javanhut/archived/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "archived",
	Short: "archived replays versioned accumulator scenarios",
	Long: `archived drives a versioned accumulator: a value changed only by increments,
with snapshots from which the change up to now can be computed later.
Scenarios script increments, snapshots, resets and the expected results.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	cfgFile  string
	verbose  bool
	noColor  bool
	settings config.Config
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .archived.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every replayed check")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(configCmd)
}

// loadSettings reads the layered configuration and applies it to the
// process-wide output settings.
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if verbose {
		cfg.Log.Verbose = true
	}
	if noColor || !cfg.Color.UI {
		colors.SetColorEnabled(false)
	}
	settings = cfg
	return nil
}
