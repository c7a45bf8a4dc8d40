package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/docx"
	"github.com/KaramelBytes/fluidreport/internal/report"
)

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func execCmd(args ...string) error {
	// Reset sticky flags that may persist Changed state across invocations
	for _, c := range []*cobra.Command{generateCmd, statsCmd, inspectCmd, serveCmd} {
		c.Flags().VisitAll(func(fl *pflag.Flag) {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		})
	}
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() {
		os.Setenv("HOME", oldHome)
		cfg = nil
	})
	os.Setenv("HOME", home)
	cfg = nil
	return home
}

func writeLabCSV(t *testing.T, dir string) string {
	t.Helper()
	hdr := make([]string, len(analysis.RequiredFields))
	for i, f := range analysis.RequiredFields {
		hdr[i] = f.Header()
	}
	body := strings.Join(hdr, ",") + "\n1,0.5,10,0.1,1000\n2,1.0,20,0.1,1000\n3,1.5,35,0.1,1000\n"
	path := filepath.Join(dir, "lab.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_GenerateInspectStats(t *testing.T) {
	home := isolateHome(t)
	data := writeLabCSV(t, home)
	out := filepath.Join(home, "out")

	runCmd(t, "generate", data,
		"-n", "Ada Lovelace", "-s", "Babbage", "-c", "CHEG 315", "-d", "2024-12-01",
		"-w", out, "--dpi", "20")

	reportPath := filepath.Join(out, "data_report.docx")
	doc, err := docx.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if doc.Len() != report.SectionCount() {
		t.Fatalf("expected %d sections, got %d", report.SectionCount(), doc.Len())
	}
	if !strings.Contains(doc.Text(), "Ada Lovelace") {
		t.Fatalf("metadata missing from report text")
	}

	runCmd(t, "inspect", reportPath)

	md := filepath.Join(home, "stats.md")
	xlsx := filepath.Join(home, "stats.xlsx")
	runCmd(t, "stats", data, "-o", md, "--xlsx", xlsx)
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	if !strings.Contains(string(b), "| mean | 2 |") {
		t.Fatalf("unexpected stats markdown:\n%s", b)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
}

func TestCLI_GenerateRejectsMissingParameters(t *testing.T) {
	home := isolateHome(t)
	data := writeLabCSV(t, home)
	err := execCmd("generate", data, "-n", "Ada", "-w", filepath.Join(home, "out"))
	if err == nil {
		t.Fatalf("expected error for missing supervisor, course and date")
	}
	if _, statErr := os.Stat(filepath.Join(home, "out", "data_report.docx")); !os.IsNotExist(statErr) {
		t.Fatalf("no report should be written on invalid parameters")
	}
}

func TestCLI_GenerateSkipsDeliveryWithoutSMTP(t *testing.T) {
	home := isolateHome(t)
	data := writeLabCSV(t, home)
	runCmd(t, "generate", data,
		"-n", "Ada", "-s", "Babbage", "-c", "CHEG 315", "-d", "2024-12-01",
		"--to", "babbage@example.edu", "-w", home, "--isolate", "--dpi", "20")

	runs, err := filepath.Glob(filepath.Join(home, "run-*", "data_report.docx"))
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one isolated report, got %v (%v)", runs, err)
	}
}

func TestCLI_GenerateRejectsOversizedDPI(t *testing.T) {
	home := isolateHome(t)
	data := writeLabCSV(t, home)
	out := filepath.Join(home, "out")

	err := execCmd("generate", data,
		"-n", "Ada", "-s", "Babbage", "-c", "CHEG 315", "-d", "2024-12-01",
		"-w", out, "--dpi", "5000")
	if err == nil || !strings.Contains(err.Error(), "--dpi") {
		t.Fatalf("expected --dpi error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "data_report.docx")); !os.IsNotExist(err) {
		t.Fatalf("no report should be written, stat err=%v", err)
	}
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "chart_dpi", "72")
	runCmd(t, "config", "set", "log_format", "json")
	b, err := os.ReadFile(filepath.Join(home, ".fluidreport", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "chart_dpi: 72") || !strings.Contains(string(b), "log_format: json") {
		t.Fatalf("unexpected config file:\n%s", b)
	}
	if err := execCmd("config", "set", "chart_dpi", "0"); err == nil {
		t.Fatalf("expected invalid chart_dpi to be rejected")
	}
	if err := execCmd("config", "set", "chart_dpi", "5000"); err == nil {
		t.Fatalf("expected oversized chart_dpi to be rejected")
	}
	if err := execCmd("config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
	runCmd(t, "config", "show")
}
