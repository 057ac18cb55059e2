package dataset

import (
	"errors"
	"fmt"
)

// ErrEmpty indicates the input had no header row at all.
var ErrEmpty = errors.New("dataset is empty")

// ErrNoRows indicates a header row without any data rows.
var ErrNoRows = errors.New("dataset has a header but no data rows")

// ParseError reports malformed tabular input with its position.
type ParseError struct {
	Name   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	loc := ""
	switch {
	case e.Line > 0 && e.Column > 0:
		loc = fmt.Sprintf(" (line %d, column %d)", e.Line, e.Column)
	case e.Line > 0:
		loc = fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Name != "" {
		return fmt.Sprintf("malformed input %s%s: %v", e.Name, loc, e.Err)
	}
	return fmt.Sprintf("malformed input%s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsInputError reports whether err was caused by the user's file rather than
// by the program.
func IsInputError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) || errors.Is(err, ErrEmpty) || errors.Is(err, ErrNoRows)
}
