// Package normalize turns loosely delimited text fragments scraped from
// fight statistics pages into typed records. Everything in it is pure: no
// I/O, no shared state, safe to call from concurrent goroutines.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/fightstats/internal/model"
)

// SplitRule cuts a merged value into fragments.
type SplitRule interface {
	split(s string, n int) []string
}

// RunRule splits on runs of at least Min consecutive Sep runes. Only the
// first n-1 runs are used, so a later run shows up inside the last fragment.
type RunRule struct {
	Sep rune
	Min int
}

func (r RunRule) split(s string, n int) []string {
	var out []string
	rest := s
	for len(out) < n-1 {
		start, end := findRun(rest, r.Sep, r.Min)
		if start < 0 {
			break
		}
		out = append(out, rest[:start])
		rest = rest[end:]
	}
	return append(out, rest)
}

// findRun returns the byte span of the first run of minRun or more sep runes.
func findRun(s string, sep rune, minRun int) (int, int) {
	width := utf8.RuneLen(sep)
	for i := 0; i < len(s); {
		if !strings.HasPrefix(s[i:], string(sep)) {
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			continue
		}
		j := i
		count := 0
		for strings.HasPrefix(s[j:], string(sep)) {
			j += width
			count++
		}
		if count >= minRun {
			return i, j
		}
		i = j
	}
	return -1, -1
}

// DelimiterRule splits on a literal delimiter.
type DelimiterRule struct {
	Delim string
}

func (r DelimiterRule) split(s string, n int) []string {
	return strings.SplitN(s, r.Delim, n)
}

// WidthRule cuts fixed rune widths off the front. The last fragment takes
// whatever remains.
type WidthRule struct {
	Widths []int
}

func (r WidthRule) split(s string, n int) []string {
	runes := []rune(s)
	var out []string
	pos := 0
	for i := 0; i < n-1 && i < len(r.Widths); i++ {
		end := pos + r.Widths[i]
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[pos:end]))
		pos = end
	}
	return append(out, string(runes[pos:]))
}

// DoubleSpace is the rule for cells holding two values separated by two or
// more spaces.
var DoubleSpace SplitRule = RunRule{Sep: ' ', Min: 2}

// Split trims s, cuts it into exactly n trimmed fragments with rule, and
// fails with UnbalancedRow when the fragment count is not n or a fragment
// is empty. A last fragment that still contains a match of rule counts as
// an extra fragment.
func Split(s string, n int, rule SplitRule) ([]string, error) {
	if n < 1 {
		return nil, model.NewParseError(model.ErrUnbalancedRow, s, fmt.Sprintf("invalid fragment count %d", n))
	}
	trimmed := strings.TrimSpace(s)
	parts := rule.split(trimmed, n)
	if len(parts) != n {
		return nil, model.NewParseError(model.ErrUnbalancedRow, s,
			fmt.Sprintf("expected %d fragments, got %d", n, len(parts)))
	}
	if extra := rule.split(strings.TrimSpace(parts[n-1]), 2); len(extra) > 1 {
		if _, ok := rule.(WidthRule); !ok {
			return nil, model.NewParseError(model.ErrUnbalancedRow, s,
				fmt.Sprintf("expected %d fragments, got more", n))
		}
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, model.NewParseError(model.ErrUnbalancedRow, s,
				fmt.Sprintf("fragment %d is empty", i+1))
		}
	}
	return parts, nil
}
