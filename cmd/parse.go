package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
)

var (
	parseInline   bool
	parseKind     string
	parseEncoding string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Normalize text fragments without fetching anything",
}

var parseBlockCmd = &cobra.Command{
	Use:   "block TOKEN...",
	Short: `Parse "Label:" value tokens into an ordered block`,
	Example: `  fightstats parse block "Method:" "KO/TKO" "Round:" "1" "Time:" "3:14"
  fightstats parse block --inline "Date: April 13, 2024" "Location: Las Vegas"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			block *model.LabeledBlock
			err   error
		)
		if parseInline {
			block, err = normalize.ParseInlineBlock(args)
		} else {
			block, err = normalize.ParseBlockStrings(args)
		}
		if err != nil {
			return eris.Wrap(err, "parse block")
		}
		return printJSON(cmd, block)
	},
}

var parseStatCmd = &cobra.Command{
	Use:     "stat VALUE...",
	Short:   "Parse compound stat strings of one kind",
	Example: `  fightstats parse stat --kind landed_of "17 of 29" "4 of 17"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.ColumnKind(parseKind)
		if !kind.Valid() || kind == model.ColumnText {
			return fmt.Errorf("unknown stat kind %q (valid: landed_of, percent, count, duration)", parseKind)
		}
		out := make([]model.CompoundStat, 0, len(args))
		for _, a := range args {
			s, err := normalize.ParseStat(kind, a)
			if err != nil {
				return eris.Wrapf(err, "parse stat %q", a)
			}
			out = append(out, s)
		}
		return printJSON(cmd, out)
	},
}

var parseRowCmd = &cobra.Command{
	Use:     "row HEADER=CELL...",
	Short:   "Split a two-fighter table row into one row per fighter",
	Example: `  fightstats parse row "Fighter=Alex Pereira  Jamahal Hill" "KD=1  0"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc, err := normalize.ParseEncoding(parseEncoding)
		if err != nil {
			return err
		}
		cells := make([]model.Cell, 0, len(args))
		for _, a := range args {
			header, text, ok := strings.Cut(a, "=")
			if !ok || header == "" {
				return fmt.Errorf("cell %q is not HEADER=TEXT", a)
			}
			cells = append(cells, model.Cell{Header: header, Text: text})
		}
		f1, f2, err := normalize.PairRow(cells, normalize.PairOptions{Encoding: enc})
		if err != nil {
			return eris.Wrap(err, "parse row")
		}
		return printJSON(cmd, [2]model.FighterRow{f1, f2})
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	parseBlockCmd.Flags().BoolVar(&parseInline, "inline", false, `tokens are "Label: value" lines`)
	parseStatCmd.Flags().StringVar(&parseKind, "kind", string(model.ColumnLandedOf), "landed_of, percent, count or duration")
	parseRowCmd.Flags().StringVar(&parseEncoding, "encoding", "double_space", "double_space or positional")

	parseCmd.AddCommand(parseBlockCmd, parseStatCmd, parseRowCmd)
	rootCmd.AddCommand(parseCmd)
}
