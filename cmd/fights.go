package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/fightstats/internal/export"
	"github.com/sells-group/fightstats/internal/pipeline"
)

var (
	fightsEvent  string
	fightsOut    string
	fightsFormat string
	fightsStrict bool
)

var fightsCmd = &cobra.Command{
	Use:   "fights",
	Short: "Scrape one event card and export its fight records",
	Long:  "Reads the event page given by --event, assembles every bout on it concurrently and exports the records. Bouts that fail are logged and skipped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sc, err := initScraper(cfg)
		if err != nil {
			return err
		}

		_, results, err := sc.EventFights(ctx, fightsEvent)
		if err != nil {
			return err
		}

		records := pipeline.Records(results)
		if err := writeTable(cmd.OutOrStdout(), export.Fights(records), fightsOut, fightsFormat, sc.RunID()); err != nil {
			return err
		}
		if failed := len(results) - len(records); failed > 0 && fightsStrict {
			return fmt.Errorf("%d of %d fights failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	fightsCmd.Flags().StringVar(&fightsEvent, "event", "", "event details page URL")
	fightsCmd.Flags().StringVar(&fightsOut, "out", "", `output file, "-" for stdout (default: export dir)`)
	fightsCmd.Flags().StringVar(&fightsFormat, "format", "", "csv, jsonl or xlsx (default from config)")
	fightsCmd.Flags().BoolVar(&fightsStrict, "strict", false, "exit non-zero when any fight fails")
	_ = fightsCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(fightsCmd)
}
