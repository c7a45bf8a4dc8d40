package chart

import "fmt"

// RenderError reports a chart that could not be produced.
type RenderError struct {
	Chart  string
	Path   string
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e == nil {
		return "render error"
	}
	msg := fmt.Sprintf("render %q: %s", e.Chart, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
