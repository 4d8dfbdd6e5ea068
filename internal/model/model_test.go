package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Method", "method"},
		{"  Time   format ", "time format"},
		{"REFEREE", "referee"},
		{"Time format", "time format"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "input %q", tt.in)
	}
}

func TestSnakeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Time format", "time_format"},
		{"Sig. str.", "sig_str"},
		{"Sig. str. %", "sig_str_pct"},
		{"Sig_Strike_Percent", "sig_strike_percent"},
		{"Td %", "td_pct"},
		{"Sub. att", "sub_att"},
		{"KD", "kd"},
		{"Method", "method"},
		{"Round/Time", "round_time"},
		{"...", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SnakeKey(tt.in), "input %q", tt.in)
	}
}

func TestLabeledBlock_AppendJoinsRepeatedLabels(t *testing.T) {
	b := NewLabeledBlock()
	b.Append("Method", "KO/TKO")
	b.Declare("Round")
	b.Append("method", "Punches")
	b.Append("", "dropped")

	assert.Equal(t, []string{"method", "round"}, b.Labels())
	v, ok := b.Get("METHOD")
	require.True(t, ok)
	assert.Equal(t, "KO/TKO Punches", v)

	v, ok = b.Get("round")
	require.True(t, ok)
	assert.Empty(t, v)

	_, ok = b.Get("referee")
	assert.False(t, ok)
}

func TestLabeledBlock_ZeroValueAndNil(t *testing.T) {
	var b LabeledBlock
	b.Append("Time", "1:45")
	assert.Equal(t, 1, b.Len())

	var nilBlock *LabeledBlock
	assert.Equal(t, 0, nilBlock.Len())
	assert.Nil(t, nilBlock.Labels())
	_, ok := nilBlock.Get("time")
	assert.False(t, ok)
}

func TestLabeledBlock_MarshalJSONKeepsOrder(t *testing.T) {
	b := NewLabeledBlock()
	b.Append("Time", "1:45")
	b.Append("Method", "KO/TKO")

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"time","value":"1:45"},{"label":"method","value":"KO/TKO"}]`, string(data))

	empty, err := json.Marshal(NewLabeledBlock())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestLabeledBlock_CloneIsIndependent(t *testing.T) {
	b := NewLabeledBlock()
	b.Append("Method", "KO/TKO")
	b.Declare("Round")

	c := b.Clone()
	b.Append("method", "tampered")
	b.Append("Referee", "Herb Dean")

	v, _ := c.Get("method")
	assert.Equal(t, "KO/TKO", v)
	assert.Equal(t, []string{"method", "round"}, c.Labels())

	c.Append("round", "2")
	v, _ = b.Get("round")
	assert.Empty(t, v)

	var nilBlock *LabeledBlock
	assert.Equal(t, 0, nilBlock.Clone().Len())
}

func TestCompoundStat_String(t *testing.T) {
	assert.Equal(t, "3 of 5", LandedOf(3, 5).String())
	assert.Equal(t, "45%", Percent(0.45).String())
	assert.Equal(t, "57%", Percent(0.57).String())
	assert.Equal(t, "0%", Percent(0).String())
	assert.Equal(t, "2", Count(2).String())
	assert.Equal(t, "1:05", Duration(65).String())
	assert.Equal(t, "n/a", Unparsed("n/a", ErrMalformedCompound).String())
}

func TestCompoundStat_MarshalJSONKeepsZeroFields(t *testing.T) {
	tests := []struct {
		name string
		stat CompoundStat
		want string
	}{
		{"zero percent", Percent(0), `{"kind":"percent","fraction":0}`},
		{"nothing landed", LandedOf(0, 5), `{"kind":"landed_of","landed":0,"attempted":5}`},
		{"zero count", Count(0), `{"kind":"count","count":0}`},
		{"zero duration", Duration(0), `{"kind":"duration","seconds":0}`},
		{"unparsed", Unparsed("", ErrEmptyInput), `{"kind":"unparsed","raw":"","reason":"empty_input"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.stat)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	data, err := json.Marshal(ParsedStat{Column: "Sig. str. %", Field: "sig_str_pct", Kind: ColumnPercent, Stat: Percent(0)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stat":{"kind":"percent","fraction":0}`)
}

func TestColumnKind_Valid(t *testing.T) {
	assert.True(t, ColumnLandedOf.Valid())
	assert.True(t, ColumnText.Valid())
	assert.False(t, ColumnKind("ratio").Valid())
}

func TestParseError(t *testing.T) {
	err := NewParseError(ErrMalformedCompound, "3 from 5", "missing separator").WithField("sig_str")
	assert.Equal(t, `malformed_compound [sig_str]: missing separator (raw "3 from 5")`, err.Error())

	var target *ParseError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, ErrMalformedCompound, target.Kind)
	assert.Equal(t, "3 from 5", target.Raw)
}

func TestFightRecord_Flatten(t *testing.T) {
	rec := &FightRecord{
		Event: EventMeta{EventName: "UFC 300", EventDate: "April 13, 2024", WeightClass: "Light Heavyweight Bout"},
		Fighter1: FighterStats{
			Row: FighterRow{Corner: 1, Name: "Alex Pereira"},
			Stats: []ParsedStat{
				{Column: "KD", Field: "kd", Kind: ColumnCount, Stat: Count(1)},
				{Column: "Sig. str.", Field: "sig_str", Kind: ColumnLandedOf, Stat: LandedOf(22, 37)},
				{Column: "Sig. str. %", Field: "sig_str_pct", Kind: ColumnPercent, Stat: Percent(0.59)},
				{Column: "Ctrl", Field: "ctrl", Kind: ColumnDuration, Stat: Duration(12)},
			},
		},
		Fighter2: FighterStats{
			Row: FighterRow{Corner: 2, Name: "Jamahal Hill"},
			Stats: []ParsedStat{
				{Column: "Notes", Field: "notes", Kind: ColumnText, Text: "none"},
			},
		},
		Fields:         []Field{{Name: "method", Value: "KO/TKO"}},
		Fighter1Result: OutcomeWin,
		Fighter2Result: OutcomeLoss,
	}

	got := map[string]string{}
	var names []string
	for _, f := range rec.Flatten() {
		got[f.Name] = f.Value
		names = append(names, f.Name)
	}

	assert.Equal(t, "event_name", names[0])
	assert.Equal(t, "Alex Pereira", got["fighter_1"])
	assert.Equal(t, "W", got["fighter_1_res"])
	assert.Equal(t, "L", got["fighter_2_res"])
	assert.Equal(t, "KO/TKO", got["method"])
	assert.Equal(t, "1", got["fighter_1_kd"])
	assert.Equal(t, "22", got["fighter_1_sig_str_landed"])
	assert.Equal(t, "37", got["fighter_1_sig_str_attempted"])
	assert.Equal(t, "0.59", got["fighter_1_sig_str_pct"])
	assert.Equal(t, "12", got["fighter_1_ctrl_seconds"])
	assert.Equal(t, "none", got["fighter_2_notes"])

	v, ok := rec.Field("method")
	require.True(t, ok)
	assert.Equal(t, "KO/TKO", v)
}

func TestFightRecord_FlattenDetailCollisions(t *testing.T) {
	rec := &FightRecord{
		Event: EventMeta{Location: "Las Vegas, Nevada, USA"},
		Fields: []Field{
			{Name: "location", Value: "Octagon 2"},
			{Name: "block_location", Value: "taken"},
			{Name: "fighter_1", Value: "corner note"},
			{Name: "method", Value: "Decision - Unanimous"},
		},
	}

	got := map[string]string{}
	counts := map[string]int{}
	for _, f := range rec.Flatten() {
		got[f.Name] = f.Value
		counts[f.Name]++
	}
	for name, n := range counts {
		assert.Equal(t, 1, n, "column %s emitted more than once", name)
	}
	assert.Equal(t, "Las Vegas, Nevada, USA", got["location"])
	assert.Equal(t, "Octagon 2", got["block_location"])
	assert.Equal(t, "corner note", got["block_fighter_1"])
	assert.Equal(t, "", got["fighter_1"])
	assert.Equal(t, "Decision - Unanimous", got["method"])
}

func TestFightRecord_FlattenCharts(t *testing.T) {
	pair := func(head1, head2 int) *[2]FighterStats {
		return &[2]FighterStats{
			{Stats: []ParsedStat{{Column: "Head", Field: "head", Kind: ColumnCount, Stat: Count(head1)}}},
			{Stats: []ParsedStat{{Column: "Head", Field: "head", Kind: ColumnCount, Stat: Count(head2)}}},
		}
	}
	rec := &FightRecord{LandedByTarget: pair(37, 21), LandedByPosition: pair(40, 19)}

	got := map[string]string{}
	for _, f := range rec.Flatten() {
		got[f.Name] = f.Value
	}
	assert.Equal(t, "37", got["fighter_1_target_head"])
	assert.Equal(t, "21", got["fighter_2_target_head"])
	assert.Equal(t, "40", got["fighter_1_position_head"])
	assert.Equal(t, "19", got["fighter_2_position_head"])
}

func TestEventSummary_Flatten(t *testing.T) {
	e := EventSummary{Name: "UFC 300", Date: "April 13, 2024", Location: "Las Vegas, Nevada, USA", Link: "http://x/e1"}
	fields := e.Flatten()
	require.Len(t, fields, 4)
	assert.Equal(t, Field{Name: "link", Value: "http://x/e1"}, fields[3])
}

func TestTokens(t *testing.T) {
	toks := Tokens("Method:", "KO/TKO")
	require.Len(t, toks, 2)
	assert.Equal(t, RawToken{Text: "KO/TKO", Index: 1}, toks[1])
}
