package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fightstats/internal/export"
)

var (
	eventsStart    string
	eventsMaxPages int
	eventsOut      string
	eventsFormat   string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Walk the completed-events listing and export event summaries",
	Long:  "Follows the listing's next-page links from --start until the last page, exporting every event row. A walk cut short by a fetch failure still exports what it collected, then exits non-zero.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("max-pages") {
			cfg.Walk.MaxPages = eventsMaxPages
		}
		sc, err := initScraper(cfg)
		if err != nil {
			return err
		}

		start := eventsStart
		if start == "" {
			start = cfg.Source.EventsURL
		}

		res, walkErr := sc.Events(ctx, start)
		if res == nil {
			return eris.Wrap(walkErr, "events")
		}

		zap.L().Info("events walked",
			zap.String("start", start),
			zap.Int("pages", res.Pages),
			zap.Int("events", len(res.Events)),
			zap.Bool("partial", res.Partial),
		)

		if err := writeTable(cmd.OutOrStdout(), export.Events(res.Events), eventsOut, eventsFormat, sc.RunID()); err != nil {
			return err
		}
		if walkErr != nil {
			return fmt.Errorf("partial walk after %d pages: %w", res.Pages, walkErr)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsStart, "start", "", "first listing page (default from config)")
	eventsCmd.Flags().IntVar(&eventsMaxPages, "max-pages", 0, "stop after N pages, 0 for no limit (default from config)")
	eventsCmd.Flags().StringVar(&eventsOut, "out", "", `output file, "-" for stdout (default: export dir)`)
	eventsCmd.Flags().StringVar(&eventsFormat, "format", "", "csv, jsonl or xlsx (default from config)")
	rootCmd.AddCommand(eventsCmd)
}
