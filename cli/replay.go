package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/javanhut/archived/internal/scenario"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario>",
	Short: "Replay a scenario file",
	Long: `Loads a TOML scenario (plain or zstd-compressed), replays it against a fresh
archive and checks every expectation.

Examples:
  archived replay smoke.toml
  archived replay --watch smoke.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayDump  bool
	replayWatch bool
)

func init() {
	replayCmd.Flags().BoolVar(&replayDump, "dump", false, "dump the full report")
	replayCmd.Flags().BoolVarP(&replayWatch, "watch", "w", false, "replay again whenever the file changes")
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !replayWatch {
		return replayOnce(cmd, path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := scenario.NewWatcher(path, settings.Replay.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	if err := replayOnce(cmd, path); err != nil {
		log.Printf("Warning: %v", err)
	}
	log.Printf("Watching %s for changes (Ctrl-C to stop)", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := replayOnce(cmd, path); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
}

func replayOnce(cmd *cobra.Command, path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if settings.Log.Verbose {
		log.Printf("Replaying %d steps from %s", len(s.Steps), s.Source)
	}

	report, err := scenario.Run(s)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report, replayDump || settings.Replay.Dump)
	return checkReport(report)
}
