package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel folds case, applies NFKC (so non-breaking spaces become
// spaces) and collapses inner whitespace. A trailing colon is not removed.
func NormalizeLabel(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// cases.Caser is stateful; build one per call so this stays safe to use
	// from concurrent assemblies.
	return cases.Fold().String(s)
}

// SnakeKey turns a label or column header into a lower_snake_case field
// name: "Time format" -> "time_format", "Sig. str. %" -> "sig_str_pct".
func SnakeKey(s string) string {
	s = NormalizeLabel(s)
	s = strings.ReplaceAll(s, "%", " pct ")

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
