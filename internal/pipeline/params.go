package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/report"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parameters is the operator input bundle of one run.
type Parameters struct {
	Name       string `validate:"required,max=200"`
	Supervisor string `validate:"required,max=200"`
	Course     string `validate:"required,max=200"`
	Date       string `validate:"required,max=100"`
	Recipient  string `validate:"omitempty,email"`
}

// Metadata is the report header block for these parameters.
func (p Parameters) Metadata() report.Metadata {
	return report.Metadata{Name: p.Name, Supervisor: p.Supervisor, Course: p.Course, Date: p.Date}
}

// Validate checks the bundle. Failures are reported as malformed input.
func (p Parameters) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Supervisor = strings.TrimSpace(p.Supervisor)
	p.Course = strings.TrimSpace(p.Course)
	p.Date = strings.TrimSpace(p.Date)
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &analysis.MalformedInputError{
			Source: "parameters",
			Column: fe.Field(),
			Reason: fmt.Sprintf("failed %q check", fe.Tag()),
			Err:    err,
		}
	}
	return &analysis.MalformedInputError{Source: "parameters", Reason: "invalid", Err: err}
}

// Source is the uploaded dataset: a stream plus the file name that selects
// its format.
type Source struct {
	Name   string
	Reader io.Reader
}
