package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ColumnKind tells the assembler how to interpret a table column.
type ColumnKind string

const (
	ColumnText     ColumnKind = "text"
	ColumnLandedOf ColumnKind = "landed_of"
	ColumnPercent  ColumnKind = "percent"
	ColumnCount    ColumnKind = "count"
	ColumnDuration ColumnKind = "duration"
)

// Valid reports whether k is a known column kind.
func (k ColumnKind) Valid() bool {
	switch k {
	case ColumnText, ColumnLandedOf, ColumnPercent, ColumnCount, ColumnDuration:
		return true
	}
	return false
}

// StatKind is the variant tag of a CompoundStat.
type StatKind string

const (
	StatLandedOf StatKind = "landed_of"
	StatPercent  StatKind = "percent"
	StatCount    StatKind = "count"
	StatDuration StatKind = "duration"
	StatUnparsed StatKind = "unparsed"
)

// CompoundStat is a parsed statistic. Only the fields of its Kind are set,
// and only those are encoded, zero values included.
type CompoundStat struct {
	Kind      StatKind  `json:"kind"`
	Landed    int       `json:"landed,omitempty"`
	Attempted int       `json:"attempted,omitempty"`
	Fraction  float64   `json:"fraction,omitempty"`
	Count     int       `json:"count,omitempty"`
	Seconds   int       `json:"seconds,omitempty"`
	Raw       string    `json:"raw,omitempty"`
	Reason    ErrorKind `json:"reason,omitempty"`
}

// LandedOf builds a landed/attempted stat.
func LandedOf(landed, attempted int) CompoundStat {
	return CompoundStat{Kind: StatLandedOf, Landed: landed, Attempted: attempted}
}

// Percent builds a fraction stat.
func Percent(fraction float64) CompoundStat {
	return CompoundStat{Kind: StatPercent, Fraction: fraction}
}

// Count builds a plain counter stat.
func Count(n int) CompoundStat {
	return CompoundStat{Kind: StatCount, Count: n}
}

// Duration builds an elapsed-time stat in seconds.
func Duration(seconds int) CompoundStat {
	return CompoundStat{Kind: StatDuration, Seconds: seconds}
}

// Unparsed keeps raw text that failed to parse together with the reason.
func Unparsed(raw string, reason ErrorKind) CompoundStat {
	return CompoundStat{Kind: StatUnparsed, Raw: raw, Reason: reason}
}

// String renders the stat in the format it was parsed from.
func (s CompoundStat) String() string {
	switch s.Kind {
	case StatLandedOf:
		return fmt.Sprintf("%d of %d", s.Landed, s.Attempted)
	case StatPercent:
		// Rounding absorbs float noise from the *100 so "57%" renders back
		// as "57%" and not "56.99999999999999%".
		pct := math.Round(s.Fraction*100*1e9) / 1e9
		return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
	case StatCount:
		return strconv.Itoa(s.Count)
	case StatDuration:
		return fmt.Sprintf("%d:%02d", s.Seconds/60, s.Seconds%60)
	default:
		return s.Raw
	}
}

// MarshalJSON always writes the fields of the active kind so a zero reading
// ("0 of 5", "---") stays distinguishable from a missing one.
func (s CompoundStat) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatLandedOf:
		return json.Marshal(struct {
			Kind      StatKind `json:"kind"`
			Landed    int      `json:"landed"`
			Attempted int      `json:"attempted"`
		}{s.Kind, s.Landed, s.Attempted})
	case StatPercent:
		return json.Marshal(struct {
			Kind     StatKind `json:"kind"`
			Fraction float64  `json:"fraction"`
		}{s.Kind, s.Fraction})
	case StatCount:
		return json.Marshal(struct {
			Kind  StatKind `json:"kind"`
			Count int      `json:"count"`
		}{s.Kind, s.Count})
	case StatDuration:
		return json.Marshal(struct {
			Kind    StatKind `json:"kind"`
			Seconds int      `json:"seconds"`
		}{s.Kind, s.Seconds})
	case StatUnparsed:
		return json.Marshal(struct {
			Kind   StatKind  `json:"kind"`
			Raw    string    `json:"raw"`
			Reason ErrorKind `json:"reason"`
		}{s.Kind, s.Raw, s.Reason})
	default:
		return json.Marshal(struct {
			Kind StatKind `json:"kind"`
		}{s.Kind})
	}
}
