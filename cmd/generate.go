package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/fluidreport/internal/config"
	"github.com/KaramelBytes/fluidreport/internal/pipeline"
)

var (
	genName       string
	genSupervisor string
	genCourse     string
	genDate       string
	genTo         string
	genWorkDir    string
	genOutput     string
	genDPI        int
	genParallel   bool
	genIsolate    bool
	genJSON       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <data-file>",
	Short: "Generate the lab report from a CSV, TSV or XLSX data file",
	Example: `  fluidreport generate lab.csv --name "Ada Lovelace" --supervisor "Dr. Babbage" \
      --course "CHEG 315" --date 2024-12-01
  fluidreport generate lab.xlsx -n Ada -s Babbage -c "CHEG 315" -d 2024-12-01 --to babbage@example.edu
  fluidreport generate lab.csv -n Ada -s Babbage -c "CHEG 315" -d 2024-12-01 --isolate --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		opts := runOptions{
			WorkDir:  c.WorkDir,
			Output:   c.OutputName,
			DPI:      c.ChartDPI,
			Parallel: c.ParallelCharts,
			Isolate:  genIsolate,
		}
		// flags provided in this invocation override config
		cmd.Flags().Visit(func(fl *pflag.Flag) {
			switch fl.Name {
			case "work-dir":
				opts.WorkDir = genWorkDir
			case "output":
				opts.Output = genOutput
			case "dpi":
				opts.DPI = genDPI
			case "parallel":
				opts.Parallel = genParallel
			}
		})
		if opts.DPI <= 0 || opts.DPI > cfgpkg.MaxChartDPI {
			return fmt.Errorf("invalid --dpi %d (1-%d)", opts.DPI, cfgpkg.MaxChartDPI)
		}
		rc, err := runContextFor(opts)
		if err != nil {
			return err
		}

		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open data file: %w", err)
		}
		defer f.Close()

		params := pipeline.Parameters{
			Name:       genName,
			Supervisor: genSupervisor,
			Course:     genCourse,
			Date:       genDate,
			Recipient:  genTo,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		p := pipeline.New()
		res, err := p.Execute(ctx, rc, params, pipeline.Source{Name: filepath.Base(path), Reader: f})
		if err != nil {
			return err
		}

		delivery := ""
		if params.Recipient != "" {
			sender, err := newSender(c)
			if err != nil {
				return err
			}
			delivery = deliveryOutcome(p.Deliver(ctx, sender, params, res.Path))
		}
		return printResult(cmd.OutOrStdout(), res, delivery, genJSON)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "student name (required)")
	generateCmd.Flags().StringVarP(&genSupervisor, "supervisor", "s", "", "professor or supervisor name (required)")
	generateCmd.Flags().StringVarP(&genCourse, "course", "c", "", "course title (required)")
	generateCmd.Flags().StringVarP(&genDate, "date", "d", "", "due date as free text (required)")
	generateCmd.Flags().StringVar(&genTo, "to", "", "mail the report to this address (needs smtp_host and FLUIDREPORT_SMTP_* credentials)")
	generateCmd.Flags().StringVarP(&genWorkDir, "work-dir", "w", "", "directory for charts and the report (overrides config)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "report file name (overrides config)")
	generateCmd.Flags().IntVar(&genDPI, "dpi", 0, "chart resolution in dots per inch (overrides config)")
	generateCmd.Flags().BoolVar(&genParallel, "parallel", false, "render charts concurrently (overrides config)")
	generateCmd.Flags().BoolVar(&genIsolate, "isolate", false, "write into a fresh run-<id> directory under the work dir")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the result as JSON")
}
