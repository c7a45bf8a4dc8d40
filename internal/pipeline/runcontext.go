package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/KaramelBytes/fluidreport/internal/chart"
	"github.com/KaramelBytes/fluidreport/internal/report"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// DefaultOutputName is the report file name inside the working directory.
const DefaultOutputName = "data_report.docx"

// RunContext holds the file-system and rendering policy of one run. Every
// path the pipeline writes is derived from it.
type RunContext struct {
	WorkDir        string
	ChartDir       string // defaults to WorkDir
	OutputName     string // defaults to DefaultOutputName
	DPI            int
	ParallelCharts bool
}

// NewRunContext creates an isolated run-<uuid> directory under base so that
// concurrent runs never share chart or report paths.
func NewRunContext(base string) (RunContext, error) {
	if base == "" {
		base = "."
	}
	dir := filepath.Join(base, "run-"+uuid.NewString())
	if err := utils.EnsureDir(dir); err != nil {
		return RunContext{}, &IOError{Op: "create run directory", Path: dir, Err: err}
	}
	return RunContext{WorkDir: dir}, nil
}

func (rc RunContext) withDefaults() RunContext {
	if rc.WorkDir == "" {
		rc.WorkDir = "."
	}
	if rc.ChartDir == "" {
		rc.ChartDir = rc.WorkDir
	}
	if rc.OutputName == "" {
		rc.OutputName = DefaultOutputName
	}
	if rc.DPI <= 0 {
		rc.DPI = chart.DefaultDPI
	}
	return rc
}

// OutputPath is where the finished report is saved.
func (rc RunContext) OutputPath() string {
	rc = rc.withDefaults()
	return filepath.Join(rc.WorkDir, rc.OutputName)
}

// ChartPath is the image path owned by one relationship.
func (rc RunContext) ChartPath(rel report.Relationship) string {
	rc = rc.withDefaults()
	return filepath.Join(rc.ChartDir, rel.Image())
}

func (rc RunContext) validate() error {
	if filepath.Base(rc.OutputName) != rc.OutputName {
		return fmt.Errorf("output name %q must not contain directories", rc.OutputName)
	}
	return nil
}
