package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/fightstats/internal/model"
)

// NoData is the sentinel the source prints when a ratio has no attempts.
const NoData = "---"

// ParseLandedOfAttempted parses "<landed> of <attempted>". Both sides must be
// unsigned base-10 integers and attempted must not be below landed.
func ParseLandedOfAttempted(s string) (model.CompoundStat, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), " of ")
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, `missing " of " separator`)
	}
	landed, ok := parseUint(left)
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "landed is not a number")
	}
	attempted, ok := parseUint(right)
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "attempted is not a number")
	}
	if landed > attempted {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "landed exceeds attempted")
	}
	return model.LandedOf(landed, attempted), nil
}

// ParsePercentage parses "NN%" into a fraction in [0,1]. The no-data
// sentinel "---" maps to 0.
func ParsePercentage(s string) (model.CompoundStat, error) {
	t := strings.TrimSpace(s)
	if t == NoData {
		return model.Percent(0), nil
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	if t == "" || strings.ContainsAny(t, "+-eExX_") {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedPercentage, s, "not a percentage")
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedPercentage, s, "not a percentage")
	}
	if v > 100 {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedPercentage, s, "percentage above 100")
	}
	return model.Percent(v / 100), nil
}

// ParseCount parses a plain non-negative counter such as knockdowns or
// submission attempts. "---" maps to 0.
func ParseCount(s string) (model.CompoundStat, error) {
	t := strings.TrimSpace(s)
	if t == NoData {
		return model.Count(0), nil
	}
	n, ok := parseUint(t)
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "not a count")
	}
	return model.Count(n), nil
}

// ParseDuration parses an "M:SS" control or fight time into seconds. "--"
// and "---" map to 0.
func ParseDuration(s string) (model.CompoundStat, error) {
	t := strings.TrimSpace(s)
	if t == "--" || t == NoData {
		return model.Duration(0), nil
	}
	m, sec, ok := strings.Cut(t, ":")
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, `missing ":" separator`)
	}
	minutes, ok := parseUint(m)
	if !ok {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "minutes is not a number")
	}
	seconds, ok := parseUint(sec)
	if !ok || len(sec) != 2 || seconds > 59 {
		return model.CompoundStat{}, model.NewParseError(model.ErrMalformedCompound, s, "seconds must be 00-59")
	}
	return model.Duration(minutes*60 + seconds), nil
}

// ParseStat dispatches on the column kind. Text columns yield a zero stat.
func ParseStat(kind model.ColumnKind, s string) (model.CompoundStat, error) {
	switch kind {
	case model.ColumnLandedOf:
		return ParseLandedOfAttempted(s)
	case model.ColumnPercent:
		return ParsePercentage(s)
	case model.ColumnCount:
		return ParseCount(s)
	case model.ColumnDuration:
		return ParseDuration(s)
	default:
		return model.CompoundStat{}, nil
	}
}

// parseUint accepts only ASCII digits, so signs and spaces are rejected.
func parseUint(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
