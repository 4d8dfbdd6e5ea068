package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sells-group/fightstats/internal/model"
)

// DefaultRequiredLabels must be present and non-empty in every fight block.
var DefaultRequiredLabels = []string{"method", "round", "time"}

// Assembler merges a fight's detail block, paired table rows and event
// metadata into one FightRecord. An Assembler is immutable after
// construction and safe for concurrent use.
type Assembler struct {
	columns  ColumnKinds
	required []string
	lenient  bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithColumnKinds replaces the column kind table.
func WithColumnKinds(c ColumnKinds) Option {
	return func(a *Assembler) {
		if c != nil {
			a.columns = c
		}
	}
}

// WithRequiredLabels replaces the mandatory block labels.
func WithRequiredLabels(labels ...string) Option {
	return func(a *Assembler) {
		if len(labels) > 0 {
			a.required = append([]string(nil), labels...)
		}
	}
}

// WithLenient keeps unparsable stat cells as unparsed values carrying a
// reason instead of failing the record.
func WithLenient(lenient bool) Option {
	return func(a *Assembler) { a.lenient = lenient }
}

// NewAssembler creates an Assembler with the default column table and
// required labels.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		columns:  DefaultColumnKinds(),
		required: DefaultRequiredLabels,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assemble builds the FightRecord for one fight. rows are the totals table
// rows for fighter 1 and fighter 2.
func (a *Assembler) Assemble(block *model.LabeledBlock, rows [2]model.FighterRow, meta model.EventMeta) (*model.FightRecord, error) {
	// The record keeps its own copy so later appends by the caller cannot
	// drift it away from the flattened fields.
	block = block.Clone()
	for _, label := range a.required {
		if v, ok := block.Get(label); !ok || strings.TrimSpace(v) == "" {
			return nil, &model.ParseError{
				Kind:  model.ErrMissingRequiredField,
				Raw:   strings.Join(block.Labels(), ", "),
				Field: model.SnakeKey(label),
				Msg:   fmt.Sprintf("block has no %q value", label),
			}
		}
	}

	stats, err := a.ParseRows(rows)
	if err != nil {
		return nil, err
	}

	res1, res2, err := ResolveOutcomes(meta.Markers[0], meta.Markers[1])
	if err != nil {
		return nil, err
	}

	return &model.FightRecord{
		Event:          meta,
		Fighter1:       stats[0],
		Fighter2:       stats[1],
		Details:        block,
		Fields:         flattenBlock(block),
		Fighter1Result: res1,
		Fighter2Result: res2,
	}, nil
}

// ParseRows applies the column table to both fighters' rows. The first cell
// of each row holds the fighter name and is not parsed.
func (a *Assembler) ParseRows(rows [2]model.FighterRow) ([2]model.FighterStats, error) {
	return a.parseRows(rows, a.columns.Kind)
}

// ParseCountRows parses every column of both rows as a plain count. The
// landed-by-target and landed-by-position charts carry bare numbers under
// headers the column table treats as landed/attempted.
func (a *Assembler) ParseCountRows(rows [2]model.FighterRow) ([2]model.FighterStats, error) {
	return a.parseRows(rows, func(string) model.ColumnKind { return model.ColumnCount })
}

func (a *Assembler) parseRows(rows [2]model.FighterRow, kindOf func(header string) model.ColumnKind) ([2]model.FighterStats, error) {
	var out [2]model.FighterStats
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			return out, &model.ParseError{
				Kind:  model.ErrMissingRequiredField,
				Field: fmt.Sprintf("fighter_%d", i+1),
				Msg:   "row has no fighter name",
			}
		}
		stats, err := a.parseRow(row, kindOf)
		if err != nil {
			return out, err
		}
		out[i] = model.FighterStats{Row: copyRow(row), Stats: stats}
	}
	return out, nil
}

// AssembleRounds parses the per-round table rows.
func (a *Assembler) AssembleRounds(rounds []model.RoundRows) ([]model.RoundStats, error) {
	out := make([]model.RoundStats, 0, len(rounds))
	for _, r := range rounds {
		stats, err := a.ParseRows(r.Rows)
		if err != nil {
			var pe *model.ParseError
			if errors.As(err, &pe) {
				c := *pe
				c.Msg = strings.TrimSpace(fmt.Sprintf("round %d: %s", r.Round, c.Msg))
				return nil, &c
			}
			return nil, err
		}
		out = append(out, model.RoundStats{Round: r.Round, Fighter1: stats[0], Fighter2: stats[1]})
	}
	return out, nil
}

func (a *Assembler) parseRow(row model.FighterRow, kindOf func(string) model.ColumnKind) ([]model.ParsedStat, error) {
	if len(row.Cells) <= 1 {
		return nil, nil
	}
	stats := make([]model.ParsedStat, 0, len(row.Cells)-1)
	for _, cell := range row.Cells[1:] {
		kind := kindOf(cell.Header)
		ps := model.ParsedStat{
			Column: cell.Header,
			Field:  model.SnakeKey(cell.Header),
			Kind:   kind,
		}
		if kind == model.ColumnText {
			ps.Text = cell.Value
			stats = append(stats, ps)
			continue
		}
		stat, err := ParseStat(kind, cell.Value)
		if err != nil {
			var pe *model.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			if !a.lenient {
				return nil, pe.WithField(ps.Field)
			}
			stat = model.Unparsed(cell.Value, pe.Kind)
		}
		ps.Stat = stat
		stats = append(stats, ps)
	}
	return stats, nil
}

// flattenBlock turns every label into a lower_snake_case field. The details
// commentary is carried verbatim.
func flattenBlock(block *model.LabeledBlock) []model.Field {
	entries := block.Entries()
	fields := make([]model.Field, 0, len(entries))
	for _, e := range entries {
		name := model.SnakeKey(e.Label)
		if name == "" {
			continue
		}
		fields = append(fields, model.Field{Name: name, Value: e.Value})
	}
	return fields
}

func copyRow(r model.FighterRow) model.FighterRow {
	c := r
	c.Cells = append([]model.RowCell(nil), r.Cells...)
	return c
}

// ResolveOutcomes derives both fighters' results from the raw markers. A
// win on one side is a loss on the other and vice versa. No markers at all
// means a draw. D and NC apply to both fighters. Contradicting or unknown
// markers are a ConflictingOutcome error.
func ResolveOutcomes(marker1, marker2 string) (model.Outcome, model.Outcome, error) {
	m1, err := parseMarker(marker1)
	if err != nil {
		return "", "", err
	}
	m2, err := parseMarker(marker2)
	if err != nil {
		return "", "", err
	}

	switch {
	case m1 == "" && m2 == "":
		return model.OutcomeDraw, model.OutcomeDraw, nil
	case m1 == model.OutcomeWin && (m2 == "" || m2 == model.OutcomeLoss):
		return model.OutcomeWin, model.OutcomeLoss, nil
	case m2 == model.OutcomeWin && (m1 == "" || m1 == model.OutcomeLoss):
		return model.OutcomeLoss, model.OutcomeWin, nil
	case m1 == model.OutcomeLoss && m2 == "":
		return model.OutcomeLoss, model.OutcomeWin, nil
	case m2 == model.OutcomeLoss && m1 == "":
		return model.OutcomeWin, model.OutcomeLoss, nil
	case (m1 == model.OutcomeDraw || m1 == model.OutcomeNoContest) && (m2 == "" || m2 == m1):
		return m1, m1, nil
	case (m2 == model.OutcomeDraw || m2 == model.OutcomeNoContest) && m1 == "":
		return m2, m2, nil
	default:
		return "", "", model.NewParseError(model.ErrConflictingOutcome, marker1+"/"+marker2, "markers contradict each other")
	}
}

func parseMarker(s string) (model.Outcome, error) {
	switch o := model.Outcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case "", model.OutcomeWin, model.OutcomeLoss, model.OutcomeDraw, model.OutcomeNoContest:
		return o, nil
	default:
		return "", model.NewParseError(model.ErrConflictingOutcome, s, "unknown result marker")
	}
}
