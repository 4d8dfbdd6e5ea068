package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
)

// Encoding selects how a two-fighter cell is laid out. Source pages are not
// consistent, so callers pick one explicitly instead of letting the pairer
// guess.
type Encoding int

const (
	// EncodingDoubleSpace cells hold "A  B": two values separated by a run of
	// two or more spaces.
	EncodingDoubleSpace Encoding = iota + 1
	// EncodingPositional cells hold a flat token list split at a known point.
	EncodingPositional
)

// String returns the config name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingDoubleSpace:
		return "double_space"
	case EncodingPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ParseEncoding converts a config value into an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double_space", "double-space", "":
		return EncodingDoubleSpace, nil
	case "positional":
		return EncodingPositional, nil
	default:
		return 0, eris.Errorf("unknown cell encoding: %q (valid: double_space, positional)", s)
	}
}

// PairOptions configures PairRow. SplitPoints gives, per column header, how
// many leading sub-tokens belong to the first fighter under positional
// encoding. Headers are matched by SnakeKey.
type PairOptions struct {
	Encoding    Encoding
	SplitPoints map[string]int
}

// PairRow splits one table row holding both fighters' values into two
// aligned FighterRows. The first cell carries the two fighter names.
func PairRow(cells []model.Cell, opts PairOptions) (model.FighterRow, model.FighterRow, error) {
	if len(cells) == 0 {
		return model.FighterRow{}, model.FighterRow{}, model.NewParseError(model.ErrEmptyInput, "", "row has no cells")
	}
	if opts.Encoding == 0 {
		opts.Encoding = EncodingDoubleSpace
	}
	splits := make(map[string]int, len(opts.SplitPoints))
	for h, n := range opts.SplitPoints {
		splits[model.SnakeKey(h)] = n
	}

	first := model.FighterRow{Corner: 1, Cells: make([]model.RowCell, 0, len(cells))}
	second := model.FighterRow{Corner: 2, Cells: make([]model.RowCell, 0, len(cells))}

	for i, c := range cells {
		var (
			a, b string
			err  error
		)
		switch opts.Encoding {
		case EncodingDoubleSpace:
			a, b, err = splitDoubleSpace(c)
		case EncodingPositional:
			a, b, err = splitPositional(c, splits)
		default:
			return model.FighterRow{}, model.FighterRow{}, eris.Errorf("pair row: unsupported encoding %d", opts.Encoding)
		}
		if err != nil {
			return model.FighterRow{}, model.FighterRow{}, err
		}
		if i == 0 {
			first.Name, second.Name = a, b
		}
		first.Cells = append(first.Cells, model.RowCell{Header: c.Header, Value: a})
		second.Cells = append(second.Cells, model.RowCell{Header: c.Header, Value: b})
	}
	return first, second, nil
}

func splitDoubleSpace(c model.Cell) (string, string, error) {
	parts, err := Split(c.Text, 2, DoubleSpace)
	if err != nil {
		return "", "", scopeToColumn(err, c.Header)
	}
	return parts[0], parts[1], nil
}

func splitPositional(c model.Cell, splits map[string]int) (string, string, error) {
	tokens := c.Tokens
	if tokens == nil {
		tokens = strings.Fields(c.Text)
	}
	trimmed := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	raw := c.Text
	if raw == "" {
		raw = strings.Join(c.Tokens, " ")
	}

	at, explicit := splits[model.SnakeKey(c.Header)]
	if !explicit {
		if len(trimmed)%2 != 0 {
			return "", "", model.NewParseError(model.ErrUnbalancedRow, raw,
				fmt.Sprintf("odd token count %d and no split point", len(trimmed))).WithField(c.Header)
		}
		at = len(trimmed) / 2
	}
	if at <= 0 || at >= len(trimmed) {
		return "", "", model.NewParseError(model.ErrUnbalancedRow, raw,
			fmt.Sprintf("split point %d outside %d tokens", at, len(trimmed))).WithField(c.Header)
	}
	return strings.Join(trimmed[:at], " "), strings.Join(trimmed[at:], " "), nil
}

func scopeToColumn(err error, header string) error {
	var pe *model.ParseError
	if errors.As(err, &pe) {
		return pe.WithField(header)
	}
	return err
}
