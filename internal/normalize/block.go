package normalize

import (
	"strings"
	"unicode"

	"github.com/sells-group/fightstats/internal/model"
)

// LabelDelim marks a token as a label.
const LabelDelim = ":"

// DetailsLabel holds free-text commentary. It is flushed like any other
// label and never split further.
const DetailsLabel = "details"

// ParseBlock reads a colon-delimited key/value token stream. A token ending
// in ":" starts a new label; following tokens accumulate as its value until
// the next label. Tokens before the first label are dropped. Labels are
// recorded when first seen, so a label with no values is kept with an empty
// value.
func ParseBlock(tokens []model.RawToken) (*model.LabeledBlock, error) {
	if len(tokens) == 0 {
		return nil, model.NewParseError(model.ErrEmptyInput, "", "no tokens")
	}

	block := model.NewLabeledBlock()
	var (
		current string
		values  []string
	)
	flush := func() {
		if current != "" && len(values) > 0 {
			block.Append(current, strings.Join(values, " "))
		}
		values = values[:0]
	}

	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		if label, ok := labelOf(text); ok {
			flush()
			current = label
			block.Declare(current)
			continue
		}
		if current == "" {
			continue
		}
		values = append(values, text)
	}
	flush()

	return block, nil
}

// ParseBlockStrings is ParseBlock over plain strings.
func ParseBlockStrings(texts []string) (*model.LabeledBlock, error) {
	return ParseBlock(model.Tokens(texts...))
}

// ParseInlineBlock reads fragments shaped "Label: value", one label per
// fragment, splitting on the first colon. Fragments without a colon, or
// whose text before the colon has no letters ("1:45"), extend the previous
// label's value. It follows the same block invariants as
// ParseBlock.
func ParseInlineBlock(lines []string) (*model.LabeledBlock, error) {
	if len(lines) == 0 {
		return nil, model.NewParseError(model.ErrEmptyInput, "", "no lines")
	}

	block := model.NewLabeledBlock()
	current := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, LabelDelim)
		if ok && strings.IndexFunc(label, unicode.IsLetter) >= 0 {
			current = label
			block.Declare(current)
			block.Append(current, strings.TrimSpace(value))
			continue
		}
		if current != "" {
			block.Append(current, line)
		}
	}
	return block, nil
}

// labelOf reports whether text is a label token and returns it without the
// delimiter. A bare ":" is not a label.
func labelOf(text string) (string, bool) {
	if !strings.HasSuffix(text, LabelDelim) {
		return "", false
	}
	label := strings.TrimSpace(strings.TrimSuffix(text, LabelDelim))
	if model.NormalizeLabel(label) == "" {
		return "", false
	}
	return label, true
}
