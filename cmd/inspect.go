package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fluidreport/internal/docx"
)

var inspectText bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <report.docx>",
	Short: "Print the section outline of a generated report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docx.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if inspectText {
			fmt.Fprintln(out, doc.Text())
			return nil
		}
		for i, s := range doc.Sections {
			fmt.Fprintf(out, "%3d  %-9s %s\n", i+1, s.Kind, describeSection(s))
		}
		fmt.Fprintf(out, "✓ %d sections\n", doc.Len())
		return nil
	},
}

func describeSection(s docx.Section) string {
	switch s.Kind {
	case docx.KindHeading:
		return fmt.Sprintf("[%d] %s", s.Level, s.Text)
	case docx.KindTable:
		cols := 0
		if len(s.Rows) > 0 {
			cols = len(s.Rows[0])
		}
		return fmt.Sprintf("%dx%d", len(s.Rows), cols)
	case docx.KindImage:
		return fmt.Sprintf("%s (%.1fin)", s.Image, s.Width)
	case docx.KindPageBreak:
		return ""
	default:
		text := s.Text
		if len(text) > 60 {
			text = strings.TrimSpace(text[:57]) + "..."
		}
		return text
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectText, "text", false, "print the plain text instead of the outline")
}
