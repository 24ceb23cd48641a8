package cli

import (
	"log"

	"github.com/javanhut/archived/internal/scenario"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in smoke scenario",
	Long: `Runs the built-in smoke scenario: 13 incremented by 3, 4, 7, 9, 4, 5, 7 and 94
with a snapshot before every increment, followed by clear-history and reset
checks.

Examples:
  archived demo
  archived demo --dump
  archived demo --export smoke.toml.zst`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var (
	demoDump   bool
	demoExport string
)

func init() {
	demoCmd.Flags().BoolVar(&demoDump, "dump", false, "dump the full report")
	demoCmd.Flags().StringVar(&demoExport, "export", "", "write the scenario to a file (zstd-compressed if it ends in .zst)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	s := scenario.Smoke()
	data, err := scenario.Encode(s)
	if err != nil {
		return err
	}
	s.Digest = scenario.Digest(data)

	if demoExport != "" {
		if err := scenario.Write(demoExport, s); err != nil {
			return err
		}
		log.Printf("Exported scenario %s to %s", s.Name, demoExport)
	}

	report, err := scenario.Run(s)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report, demoDump || settings.Replay.Dump)
	return checkReport(report)
}
