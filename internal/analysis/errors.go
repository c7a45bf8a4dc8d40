package analysis

import (
	"fmt"
	"strings"
)

// MalformedInputError reports a dataset that cannot be used: missing header,
// inconsistent rows, an absent required column or an unparseable cell.
type MalformedInputError struct {
	Source string
	Row    int // 1-based data row; 0 when not row specific
	Column string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e == nil {
		return "malformed input"
	}
	var b strings.Builder
	b.WriteString("malformed input")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	b.WriteString(": ")
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, "column %q: ", e.Column)
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MalformedInputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func malformed(source, reason string) *MalformedInputError {
	return &MalformedInputError{Source: source, Reason: reason}
}
