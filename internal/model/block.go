package model

import "encoding/json"

// RawToken is one text fragment extracted from a markup node, in document
// order. Text may still carry surrounding whitespace.
type RawToken struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Tokens wraps plain strings as RawTokens numbered by position.
func Tokens(texts ...string) []RawToken {
	out := make([]RawToken, len(texts))
	for i, t := range texts {
		out[i] = RawToken{Text: t, Index: i}
	}
	return out
}

// BlockEntry is one label and its accumulated value.
type BlockEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LabeledBlock is an ordered label to value mapping. Labels are stored in
// NormalizeLabel form, keep first-seen order, and a repeated label extends
// its value instead of replacing it.
type LabeledBlock struct {
	entries []BlockEntry
	index   map[string]int
}

// NewLabeledBlock returns an empty block.
func NewLabeledBlock() *LabeledBlock {
	return &LabeledBlock{index: make(map[string]int)}
}

// Declare records label with an empty value if it has not been seen.
// Empty labels are ignored.
func (b *LabeledBlock) Declare(label string) {
	label = NormalizeLabel(label)
	if label == "" {
		return
	}
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if _, ok := b.index[label]; ok {
		return
	}
	b.index[label] = len(b.entries)
	b.entries = append(b.entries, BlockEntry{Label: label})
}

// Append adds value to label, joining with one space if the label already
// holds text.
func (b *LabeledBlock) Append(label, value string) {
	label = NormalizeLabel(label)
	if label == "" {
		return
	}
	b.Declare(label)
	i := b.index[label]
	if value == "" {
		return
	}
	if b.entries[i].Value == "" {
		b.entries[i].Value = value
		return
	}
	b.entries[i].Value += " " + value
}

// Clone returns an independent copy of b. A nil block clones to an empty
// one.
func (b *LabeledBlock) Clone() *LabeledBlock {
	c := NewLabeledBlock()
	for _, e := range b.Entries() {
		c.index[e.Label] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Get returns the value for label.
func (b *LabeledBlock) Get(label string) (string, bool) {
	if b == nil {
		return "", false
	}
	i, ok := b.index[NormalizeLabel(label)]
	if !ok {
		return "", false
	}
	return b.entries[i].Value, true
}

// Labels returns the labels in first-seen order.
func (b *LabeledBlock) Labels() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of the entries in first-seen order.
func (b *LabeledBlock) Entries() []BlockEntry {
	if b == nil {
		return nil
	}
	out := make([]BlockEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of labels.
func (b *LabeledBlock) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Map returns the block as a plain map. Order is lost.
func (b *LabeledBlock) Map() map[string]string {
	out := make(map[string]string, b.Len())
	for _, e := range b.Entries() {
		out[e.Label] = e.Value
	}
	return out
}

// MarshalJSON encodes the block as its ordered entry list.
func (b *LabeledBlock) MarshalJSON() ([]byte, error) {
	entries := b.Entries()
	if entries == nil {
		entries = []BlockEntry{}
	}
	return json.Marshal(entries)
}
