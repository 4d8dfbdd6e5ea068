package normalize

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fightstats/internal/model"
)

func fightBlock(t *testing.T) *model.LabeledBlock {
	t.Helper()
	block, err := ParseBlockStrings([]string{
		"Method:", "KO/TKO",
		"Round:", "1",
		"Time:", "3:14",
		"Time format:", "5 Rnd (5-5-5-5-5)",
		"Referee:", "Marc Goddard",
		"Details:", "Punch to Head At Distance",
	})
	require.NoError(t, err)
	return block
}

func pairedTotals(t *testing.T) [2]model.FighterRow {
	t.Helper()
	f1, f2, err := PairRow(totalsRow(), PairOptions{Encoding: EncodingDoubleSpace})
	require.NoError(t, err)
	return [2]model.FighterRow{f1, f2}
}

func TestAssemble(t *testing.T) {
	meta := model.EventMeta{
		EventName:   "UFC 300: Pereira vs. Hill",
		EventDate:   "April 13, 2024",
		Location:    "Las Vegas, Nevada, USA",
		WeightClass: "UFC Light Heavyweight Title Bout",
		Markers:     [2]string{"W", ""},
	}
	rec, err := NewAssembler().Assemble(fightBlock(t), pairedTotals(t), meta)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeWin, rec.Fighter1Result)
	assert.Equal(t, model.OutcomeLoss, rec.Fighter2Result)
	assert.Equal(t, "Alex Pereira", rec.Fighter1.Row.Name)
	assert.Equal(t, meta, rec.Event)

	names := make([]string, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"method", "round", "time", "time_format", "referee", "details"}, names)
	v, _ := rec.Field("time_format")
	assert.Equal(t, "5 Rnd (5-5-5-5-5)", v)

	kd, ok := rec.Fighter1.Stat("kd")
	require.True(t, ok)
	assert.Equal(t, model.Count(1), kd.Stat)

	sig, ok := rec.Fighter1.Stat("sig_str")
	require.True(t, ok)
	assert.Equal(t, model.LandedOf(3, 5), sig.Stat)

	pct, ok := rec.Fighter2.Stat("sig_str_pct")
	require.True(t, ok)
	assert.InDelta(t, 0.5, pct.Stat.Fraction, 1e-12)

	td, ok := rec.Fighter2.Stat("td_pct")
	require.True(t, ok)
	assert.Equal(t, model.Percent(0), td.Stat)

	ctrl, ok := rec.Fighter1.Stat("ctrl")
	require.True(t, ok)
	assert.Equal(t, 12, ctrl.Stat.Seconds)

	_, ok = rec.Fighter1.Stat("fighter")
	assert.False(t, ok, "name column is not a stat")
}

func TestAssemble_Idempotent(t *testing.T) {
	a := NewAssembler()
	block := fightBlock(t)
	rows := pairedTotals(t)
	meta := model.EventMeta{EventName: "UFC 1", Markers: [2]string{"", "W"}}

	first, err := a.Assemble(block, rows, meta)
	require.NoError(t, err)
	second, err := a.Assemble(block, rows, meta)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first.Flatten(), second.Flatten())
}

func TestAssemble_MissingRequiredField(t *testing.T) {
	block, err := ParseBlockStrings([]string{"Method:", "KO/TKO", "Time:", "1:45"})
	require.NoError(t, err)

	_, err = NewAssembler().Assemble(block, pairedTotals(t), model.EventMeta{})
	pe := requireKind(t, err, model.ErrMissingRequiredField)
	assert.Equal(t, "round", pe.Field)

	empty, err := ParseBlockStrings([]string{"Method:", "Round:", "2", "Time:", "1:45"})
	require.NoError(t, err)
	_, err = NewAssembler().Assemble(empty, pairedTotals(t), model.EventMeta{})
	pe = requireKind(t, err, model.ErrMissingRequiredField)
	assert.Equal(t, "method", pe.Field)

	_, err = NewAssembler().Assemble(nil, pairedTotals(t), model.EventMeta{})
	requireKind(t, err, model.ErrMissingRequiredField)
}

func TestAssemble_CustomRequiredLabels(t *testing.T) {
	block, err := ParseBlockStrings([]string{"Method:", "DQ"})
	require.NoError(t, err)
	rec, err := NewAssembler(WithRequiredLabels("method")).Assemble(block, pairedTotals(t), model.EventMeta{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeDraw, rec.Fighter1Result)
}

func TestAssemble_MalformedStatAbortsRecord(t *testing.T) {
	cells := totalsRow()
	cells[2].Text = "3 from 5  1 of 2"
	f1, f2, err := PairRow(cells, PairOptions{})
	require.NoError(t, err)

	_, err = NewAssembler().Assemble(fightBlock(t), [2]model.FighterRow{f1, f2}, model.EventMeta{})
	pe := requireKind(t, err, model.ErrMalformedCompound)
	assert.Equal(t, "sig_str", pe.Field)
	assert.Equal(t, "3 from 5", pe.Raw)
}

func TestAssemble_LenientKeepsUnparsed(t *testing.T) {
	cells := totalsRow()
	cells[3].Text = "n/a  50%"
	f1, f2, err := PairRow(cells, PairOptions{})
	require.NoError(t, err)

	rec, err := NewAssembler(WithLenient(true)).Assemble(fightBlock(t), [2]model.FighterRow{f1, f2}, model.EventMeta{})
	require.NoError(t, err)
	pct, ok := rec.Fighter1.Stat("sig_str_pct")
	require.True(t, ok)
	assert.Equal(t, model.Unparsed("n/a", model.ErrMalformedPercentage), pct.Stat)
}

func TestAssemble_HeaderVariants(t *testing.T) {
	cells := []model.Cell{
		{Header: "Fighter", Text: "A  B"},
		{Header: "Sig_Strike", Text: "10 of 20  5 of 9"},
		{Header: "Sig_Strike_Percent", Text: "50%  55%"},
		{Header: "Sub_Attempts", Text: "1  0"},
	}
	f1, f2, err := PairRow(cells, PairOptions{})
	require.NoError(t, err)
	stats, err := NewAssembler().ParseRows([2]model.FighterRow{f1, f2})
	require.NoError(t, err)

	s, _ := stats[1].Stat("sig_strike")
	assert.Equal(t, model.LandedOf(5, 9), s.Stat)
	s, _ = stats[0].Stat("sig_strike_percent")
	assert.InDelta(t, 0.5, s.Stat.Fraction, 1e-12)
	s, _ = stats[0].Stat("sub_attempts")
	assert.Equal(t, model.Count(1), s.Stat)
}

func TestAssemble_MissingFighterName(t *testing.T) {
	rows := pairedTotals(t)
	rows[1].Name = " "
	_, err := NewAssembler().Assemble(fightBlock(t), rows, model.EventMeta{})
	pe := requireKind(t, err, model.ErrMissingRequiredField)
	assert.Equal(t, "fighter_2", pe.Field)
}

func TestAssembleRounds(t *testing.T) {
	a := NewAssembler()
	var rounds []model.RoundRows
	for i := 1; i <= 2; i++ {
		f1, f2, err := PairRow(totalsRow(), PairOptions{})
		require.NoError(t, err)
		rounds = append(rounds, model.RoundRows{Round: i, Rows: [2]model.FighterRow{f1, f2}})
	}
	got, err := a.AssembleRounds(rounds)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].Round)
	s, _ := got[1].Fighter2.Stat("sig_str")
	assert.Equal(t, model.LandedOf(1, 2), s.Stat)

	bad := rounds[1]
	bad.Rows[0].Cells = append([]model.RowCell(nil), bad.Rows[0].Cells...)
	bad.Rows[0].Cells[2].Value = "x"
	_, err = a.AssembleRounds([]model.RoundRows{rounds[0], bad})
	pe := requireKind(t, err, model.ErrMalformedCompound)
	assert.Contains(t, pe.Msg, "round 2")
}

func chartRows(t *testing.T, head string) [2]model.FighterRow {
	t.Helper()
	f1, f2, err := PairRow([]model.Cell{
		{Header: "Fighter", Text: "Alex Pereira  Jamahal Hill"},
		{Header: "Head", Text: head},
		{Header: "Body", Text: "3  4"},
		{Header: "Leg", Text: "6  0"},
	}, PairOptions{})
	require.NoError(t, err)
	return [2]model.FighterRow{f1, f2}
}

func TestParseCountRows(t *testing.T) {
	got, err := NewAssembler().ParseCountRows(chartRows(t, "37  21"))
	require.NoError(t, err)

	s, ok := got[0].Stat("head")
	require.True(t, ok)
	assert.Equal(t, model.ColumnCount, s.Kind)
	assert.Equal(t, model.Count(37), s.Stat)
	s, _ = got[1].Stat("body")
	assert.Equal(t, model.Count(4), s.Stat)
	s, _ = got[1].Stat("leg")
	assert.Equal(t, model.Count(0), s.Stat)
	assert.Equal(t, "Jamahal Hill", got[1].Row.Name)
}

func TestParseCountRows_Malformed(t *testing.T) {
	_, err := NewAssembler().ParseCountRows(chartRows(t, "37  x"))
	pe := requireKind(t, err, model.ErrMalformedCompound)
	assert.Equal(t, "head", pe.Field)

	got, err := NewAssembler(WithLenient(true)).ParseCountRows(chartRows(t, "37  x"))
	require.NoError(t, err)
	s, _ := got[1].Stat("head")
	assert.Equal(t, model.StatUnparsed, s.Stat.Kind)
	assert.Equal(t, "x", s.Stat.Raw)
}

func TestAssemble_ConcurrentUse(t *testing.T) {
	a := NewAssembler()
	block := fightBlock(t)
	rows := pairedTotals(t)

	results := make([]*model.FightRecord, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := a.Assemble(block, rows, model.EventMeta{Markers: [2]string{"L", ""}})
			if err == nil {
				results[i] = rec
			}
		}()
	}
	wg.Wait()
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0], r)
	}
}

func TestResolveOutcomes(t *testing.T) {
	tests := []struct {
		m1, m2     string
		want1      model.Outcome
		want2      model.Outcome
		wantErrKnd model.ErrorKind
	}{
		{"W", "", model.OutcomeWin, model.OutcomeLoss, ""},
		{"", "W", model.OutcomeLoss, model.OutcomeWin, ""},
		{"W", "L", model.OutcomeWin, model.OutcomeLoss, ""},
		{"l", "w", model.OutcomeLoss, model.OutcomeWin, ""},
		{"L", "", model.OutcomeLoss, model.OutcomeWin, ""},
		{"", "L", model.OutcomeWin, model.OutcomeLoss, ""},
		{"", "", model.OutcomeDraw, model.OutcomeDraw, ""},
		{"D", "D", model.OutcomeDraw, model.OutcomeDraw, ""},
		{"NC", "NC", model.OutcomeNoContest, model.OutcomeNoContest, ""},
		{"", "NC", model.OutcomeNoContest, model.OutcomeNoContest, ""},
		{"W", "W", "", "", model.ErrConflictingOutcome},
		{"L", "L", "", "", model.ErrConflictingOutcome},
		{"D", "W", "", "", model.ErrConflictingOutcome},
		{"X", "", "", "", model.ErrConflictingOutcome},
	}
	for _, tt := range tests {
		r1, r2, err := ResolveOutcomes(tt.m1, tt.m2)
		if tt.wantErrKnd != "" {
			requireKind(t, err, tt.wantErrKnd)
			continue
		}
		require.NoError(t, err, "%q/%q", tt.m1, tt.m2)
		assert.Equal(t, tt.want1, r1, "%q/%q", tt.m1, tt.m2)
		assert.Equal(t, tt.want2, r2, "%q/%q", tt.m1, tt.m2)
	}
}

func TestColumnKinds(t *testing.T) {
	c := DefaultColumnKinds()
	assert.Equal(t, model.ColumnLandedOf, c.Kind("Sig. str."))
	assert.Equal(t, model.ColumnPercent, c.Kind("Sig. str. %"))
	assert.Equal(t, model.ColumnCount, c.Kind("Sub. att"))
	assert.Equal(t, model.ColumnDuration, c.Kind("Ctrl"))
	assert.Equal(t, model.ColumnText, c.Kind("Unknown column"))

	merged := c.Merge(ColumnKinds{"Pass %": model.ColumnPercent})
	assert.Equal(t, model.ColumnPercent, merged.Kind("pass %"))
	assert.Equal(t, model.ColumnText, c.Kind("pass %"), "merge must not mutate the receiver")
}

func TestLoadColumnKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
columns:
  "Sig. Strikes Landed": landed_of
  "Ctrl": text
`), 0o644))

	c, err := LoadColumnKinds(path)
	require.NoError(t, err)
	assert.Equal(t, model.ColumnLandedOf, c.Kind("Sig. Strikes Landed"))
	assert.Equal(t, model.ColumnText, c.Kind("Ctrl"))
	assert.Equal(t, model.ColumnLandedOf, c.Kind("Td"))

	_, err = ParseColumnKinds([]byte("columns:\n  KD: ratio\n"))
	assert.Error(t, err)

	_, err = LoadColumnKinds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
