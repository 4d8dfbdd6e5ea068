package model

import "fmt"

// ErrorKind classifies a normalization or fetch failure.
type ErrorKind string

const (
	ErrEmptyInput           ErrorKind = "empty_input"
	ErrUnbalancedRow        ErrorKind = "unbalanced_row"
	ErrMalformedCompound    ErrorKind = "malformed_compound"
	ErrMalformedPercentage  ErrorKind = "malformed_percentage"
	ErrMissingRequiredField ErrorKind = "missing_required_field"
	ErrConflictingOutcome   ErrorKind = "conflicting_outcome"
	ErrFetchFailure         ErrorKind = "fetch_failure"
)

// ParseError is the tagged failure value returned by the normalization
// pipeline. Raw always holds the text that could not be normalized.
type ParseError struct {
	Kind  ErrorKind `json:"kind"`
	Raw   string    `json:"raw"`
	Field string    `json:"field,omitempty"`
	Msg   string    `json:"message,omitempty"`
}

// NewParseError builds a ParseError for the given kind and raw input.
func NewParseError(kind ErrorKind, raw, msg string) *ParseError {
	return &ParseError{Kind: kind, Raw: raw, Msg: msg}
}

func (e *ParseError) Error() string {
	s := string(e.Kind)
	if e.Field != "" {
		s += " [" + e.Field + "]"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return fmt.Sprintf("%s (raw %q)", s, e.Raw)
}

// WithField returns a copy of e scoped to a column or label name.
func (e *ParseError) WithField(field string) *ParseError {
	c := *e
	c.Field = field
	return &c
}
