package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fightstats/internal/model"
)

// ColumnKinds maps snake-case column keys to how their values are parsed.
// Headers vary between pages ("Sig. str." vs "Sig_Strike"), so the table
// carries every known spelling.
type ColumnKinds map[string]model.ColumnKind

// DefaultColumnKinds covers the fight details tables and the summary
// table layout.
func DefaultColumnKinds() ColumnKinds {
	return ColumnKinds{
		"fighter": model.ColumnText,

		"kd":           model.ColumnCount,
		"sub_att":      model.ColumnCount,
		"sub_attempts": model.ColumnCount,
		"rev":          model.ColumnCount,
		"pass":         model.ColumnCount,

		"sig_str":       model.ColumnLandedOf,
		"sig_strike":    model.ColumnLandedOf,
		"total_str":     model.ColumnLandedOf,
		"total_strikes": model.ColumnLandedOf,
		"td":            model.ColumnLandedOf,
		"head":          model.ColumnLandedOf,
		"body":          model.ColumnLandedOf,
		"leg":           model.ColumnLandedOf,
		"distance":      model.ColumnLandedOf,
		"clinch":        model.ColumnLandedOf,
		"ground":        model.ColumnLandedOf,

		"sig_str_pct":        model.ColumnPercent,
		"sig_strike_percent": model.ColumnPercent,
		"td_pct":             model.ColumnPercent,
		"td_percent":         model.ColumnPercent,

		"ctrl":         model.ColumnDuration,
		"control":      model.ColumnDuration,
		"control_time": model.ColumnDuration,
	}
}

// Kind returns the kind for a raw header, defaulting to text.
func (c ColumnKinds) Kind(header string) model.ColumnKind {
	if k, ok := c[model.SnakeKey(header)]; ok {
		return k
	}
	return model.ColumnText
}

// Merge returns a copy of c with other's entries layered on top. Keys in
// other are normalized with SnakeKey.
func (c ColumnKinds) Merge(other ColumnKinds) ColumnKinds {
	out := make(ColumnKinds, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[model.SnakeKey(k)] = v
	}
	return out
}

// columnKindsFile is the on-disk override layout:
//
//	columns:
//	  "Sig. str.": landed_of
//	  "Ctrl": duration
type columnKindsFile struct {
	Columns map[string]string `yaml:"columns"`
}

// LoadColumnKinds reads a YAML override file and merges it over the
// defaults.
func LoadColumnKinds(path string) (ColumnKinds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read column kinds %s", path)
	}
	return ParseColumnKinds(data)
}

// ParseColumnKinds parses YAML override bytes and merges them over the
// defaults.
func ParseColumnKinds(data []byte) (ColumnKinds, error) {
	var f columnKindsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "normalize: parse column kinds")
	}
	overrides := make(ColumnKinds, len(f.Columns))
	for header, kind := range f.Columns {
		k := model.ColumnKind(kind)
		if !k.Valid() {
			return nil, eris.Errorf("normalize: column %q has unknown kind %q", header, kind)
		}
		overrides[header] = k
	}
	return DefaultColumnKinds().Merge(overrides), nil
}
