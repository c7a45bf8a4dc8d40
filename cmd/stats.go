package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

var (
	statsOutputPath string
	statsXLSXPath   string
)

var statsCmd = &cobra.Command{
	Use:   "stats <data-file>",
	Short: "Print descriptive statistics of a data file without building a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := analysis.LoadFile(args[0])
		if err != nil {
			return err
		}
		table := analysis.Summarize(ds)
		md := table.Markdown()
		out := cmd.OutOrStdout()
		if len(ds.Skipped) > 0 {
			fmt.Fprintf(out, "⚠ Skipped non-numeric columns: %s\n", strings.Join(ds.Skipped, ", "))
		}

		written := false
		if statsOutputPath != "" {
			if err := utils.SafeWriteFile(statsOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote statistics to %s\n", statsOutputPath)
			written = true
		}
		if statsXLSXPath != "" {
			if err := utils.SafeWrite(statsXLSXPath, table.WriteXLSX); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote workbook to %s\n", statsXLSXPath)
			written = true
		}
		if !written {
			fmt.Fprintln(out, md)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsOutputPath, "output", "o", "", "optional path to write the statistics (Markdown)")
	statsCmd.Flags().StringVar(&statsXLSXPath, "xlsx", "", "optional path to write the statistics as an XLSX workbook")
}
