package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	cfgpkg "github.com/KaramelBytes/fluidreport/internal/config"
	"github.com/KaramelBytes/fluidreport/internal/delivery"
	"github.com/KaramelBytes/fluidreport/internal/pipeline"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// runOptions are the file-system settings of a CLI run after config and
// flag precedence is applied.
type runOptions struct {
	WorkDir  string
	Output   string
	DPI      int
	Parallel bool
	Isolate  bool
}

func runContextFor(o runOptions) (pipeline.RunContext, error) {
	base := o.WorkDir
	if base == "" {
		base = "."
	}
	base, err := utils.ExpandHome(base)
	if err != nil {
		return pipeline.RunContext{}, err
	}
	var rc pipeline.RunContext
	if o.Isolate {
		rc, err = pipeline.NewRunContext(base)
		if err != nil {
			return pipeline.RunContext{}, err
		}
	} else {
		if err := utils.EnsureDir(base); err != nil {
			return pipeline.RunContext{}, &pipeline.IOError{Op: "create work directory", Path: base, Err: err}
		}
		rc.WorkDir = base
	}
	if o.Output != "" && filepath.Base(o.Output) != o.Output {
		return pipeline.RunContext{}, fmt.Errorf("invalid --output %q: a file name, no directories (use --work-dir)", o.Output)
	}
	rc.OutputName = o.Output
	rc.DPI = o.DPI
	rc.ParallelCharts = o.Parallel
	return rc, nil
}

// newSender returns nil when no SMTP host is configured.
func newSender(c *cfgpkg.Global) (delivery.Sender, error) {
	if c == nil || c.SMTPHost == "" {
		return nil, nil
	}
	s, err := delivery.NewSMTPSender(delivery.SMTPConfig{
		Host: c.SMTPHost,
		Port: c.SMTPPort,
		From: c.SMTPFrom,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func deliveryOutcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, pipeline.ErrDeliverySkipped):
		return "skipped"
	default:
		return "failed: " + err.Error()
	}
}

func printResult(w io.Writer, res *pipeline.Result, delivery string, asJSON bool) error {
	if asJSON {
		out := map[string]any{
			"path":     res.Path,
			"rows":     res.Rows,
			"charts":   len(res.Charts),
			"summary":  res.Summary.Rows(),
			"duration": res.Duration.Round(time.Millisecond).String(),
		}
		if delivery != "" {
			out["delivery"] = delivery
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	}
	fmt.Fprintf(w, "✓ Report saved to %s (%d rows, %d charts, %s)\n",
		res.Path, res.Rows, len(res.Charts), res.Duration.Round(time.Millisecond))
	switch {
	case delivery == "":
	case delivery == "sent":
		fmt.Fprintln(w, "✓ Report mailed")
	default:
		fmt.Fprintf(w, "⚠ Delivery %s\n", delivery)
	}
	return nil
}
