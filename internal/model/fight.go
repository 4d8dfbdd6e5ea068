package model

import "strconv"

// Cell is one raw table cell as supplied by the page collaborator. Tokens
// holds the cell's sub-fragments (one per paragraph) when they are known.
type Cell struct {
	Header string   `json:"header"`
	Text   string   `json:"text"`
	Tokens []string `json:"tokens,omitempty"`
}

// RowCell is one fighter's slice of a Cell.
type RowCell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// FighterRow is one fighter's statistics for one table row. Corner is 1 or 2.
type FighterRow struct {
	Corner int       `json:"corner"`
	Name   string    `json:"fighter_name"`
	Cells  []RowCell `json:"cells"`
}

// Value returns the raw cell text for header.
func (r FighterRow) Value(header string) (string, bool) {
	for _, c := range r.Cells {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Outcome is a fighter's result letter.
type Outcome string

const (
	OutcomeWin       Outcome = "W"
	OutcomeLoss      Outcome = "L"
	OutcomeDraw      Outcome = "D"
	OutcomeNoContest Outcome = "NC"
)

// EventMeta is the event and fight context the collaborator supplies
// alongside the fight fragments. Markers are the raw result letters shown
// next to each fighter, empty when absent.
type EventMeta struct {
	EventName   string    `json:"event_name"`
	EventDate   string    `json:"event_date"`
	Location    string    `json:"location"`
	EventLink   string    `json:"event_link"`
	FightLink   string    `json:"fight_link"`
	WeightClass string    `json:"weight_class"`
	Bonuses     []string  `json:"bonuses,omitempty"`
	Markers     [2]string `json:"markers"`
}

// ParsedStat is a column value after compound-stat parsing. Field is the
// snake-case column key.
type ParsedStat struct {
	Column string       `json:"column"`
	Field  string       `json:"field"`
	Kind   ColumnKind   `json:"kind"`
	Text   string       `json:"text,omitempty"`
	Stat   CompoundStat `json:"stat"`
}

// FighterStats is one fighter's raw row and its parsed columns.
type FighterStats struct {
	Row   FighterRow   `json:"row"`
	Stats []ParsedStat `json:"stats"`
}

// Stat returns the parsed stat stored under a snake-case field name.
func (f FighterStats) Stat(field string) (ParsedStat, bool) {
	for _, s := range f.Stats {
		if s.Field == field {
			return s, true
		}
	}
	return ParsedStat{}, false
}

// Field is one flat, named output column.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RoundRows are the two raw fighter rows of one per-round table row.
type RoundRows struct {
	Round int           `json:"round"`
	Rows  [2]FighterRow `json:"rows"`
}

// RoundStats are both fighters' parsed statistics for one round.
type RoundStats struct {
	Round    int          `json:"round"`
	Fighter1 FighterStats `json:"fighter_1"`
	Fighter2 FighterStats `json:"fighter_2"`
}

// FightRecord is the normalized record of one fight.
type FightRecord struct {
	Event              EventMeta        `json:"event"`
	Fighter1           FighterStats     `json:"fighter_1"`
	Fighter2           FighterStats     `json:"fighter_2"`
	Details            *LabeledBlock    `json:"details"`
	Fields             []Field          `json:"fields"`
	Fighter1Result     Outcome          `json:"fighter_1_res"`
	Fighter2Result     Outcome          `json:"fighter_2_res"`
	SignificantStrikes *[2]FighterStats `json:"significant_strikes,omitempty"`
	LandedByTarget     *[2]FighterStats `json:"landed_by_target,omitempty"`
	LandedByPosition   *[2]FighterStats `json:"landed_by_position,omitempty"`
	Rounds             []RoundStats     `json:"rounds,omitempty"`
}

// Field returns the flat detail field called name.
func (r *FightRecord) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Flatten returns the record as ordered lower_snake_case columns suitable
// for any columnar sink. Landed/attempted stats expand into _landed and
// _attempted columns. A detail field whose name collides with a fixed
// column is emitted as block_<name>, and dropped if that is taken too.
func (r *FightRecord) Flatten() []Field {
	out := []Field{
		{Name: "event_name", Value: r.Event.EventName},
		{Name: "event_date", Value: r.Event.EventDate},
		{Name: "location", Value: r.Event.Location},
		{Name: "weight_class", Value: r.Event.WeightClass},
		{Name: "fight_link", Value: r.Event.FightLink},
		{Name: "fighter_1", Value: r.Fighter1.Row.Name},
		{Name: "fighter_2", Value: r.Fighter2.Row.Name},
		{Name: "fighter_1_res", Value: string(r.Fighter1Result)},
		{Name: "fighter_2_res", Value: string(r.Fighter2Result)},
	}
	seen := make(map[string]bool, len(out)+len(r.Fields))
	for _, f := range out {
		seen[f.Name] = true
	}
	for _, f := range r.Fields {
		if seen[f.Name] {
			f.Name = "block_" + f.Name
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	out = append(out, flattenStats("fighter_1_", r.Fighter1.Stats)...)
	out = append(out, flattenStats("fighter_2_", r.Fighter2.Stats)...)
	out = appendPair(out, "ss_", r.SignificantStrikes)
	out = appendPair(out, "target_", r.LandedByTarget)
	out = appendPair(out, "position_", r.LandedByPosition)
	return out
}

func appendPair(out []Field, infix string, pair *[2]FighterStats) []Field {
	if pair == nil {
		return out
	}
	out = append(out, flattenStats("fighter_1_"+infix, pair[0].Stats)...)
	return append(out, flattenStats("fighter_2_"+infix, pair[1].Stats)...)
}

func flattenStats(prefix string, stats []ParsedStat) []Field {
	var out []Field
	for _, s := range stats {
		name := prefix + s.Field
		switch s.Stat.Kind {
		case StatLandedOf:
			out = append(out,
				Field{Name: name + "_landed", Value: strconv.Itoa(s.Stat.Landed)},
				Field{Name: name + "_attempted", Value: strconv.Itoa(s.Stat.Attempted)},
			)
		case StatPercent:
			out = append(out, Field{Name: name, Value: strconv.FormatFloat(s.Stat.Fraction, 'f', -1, 64)})
		case StatCount:
			out = append(out, Field{Name: name, Value: strconv.Itoa(s.Stat.Count)})
		case StatDuration:
			out = append(out, Field{Name: name + "_seconds", Value: strconv.Itoa(s.Stat.Seconds)})
		case StatUnparsed:
			out = append(out, Field{Name: name, Value: s.Stat.Raw})
		default:
			out = append(out, Field{Name: name, Value: s.Text})
		}
	}
	return out
}
