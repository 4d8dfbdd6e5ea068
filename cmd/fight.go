package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sells-group/fightstats/internal/model"
)

var (
	fightURL  string
	fightFlat bool
)

var fightCmd = &cobra.Command{
	Use:   "fight",
	Short: "Scrape one fight page and print its record as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := initScraper(cfg)
		if err != nil {
			return err
		}

		rec, err := sc.Fight(cmd.Context(), model.FightLink{Link: fightURL}, model.EventSummary{})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if fightFlat {
			return enc.Encode(rec.Flatten())
		}
		return enc.Encode(rec)
	},
}

func init() {
	fightCmd.Flags().StringVar(&fightURL, "url", "", "fight details page URL")
	fightCmd.Flags().BoolVar(&fightFlat, "flat", false, "print the flattened columns instead of the nested record")
	_ = fightCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(fightCmd)
}
