package report

import (
	"fmt"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/docx"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// ImageWidth is the display width of every chart, in inches.
const ImageWidth = 6.0

// Metadata is the operator-supplied header block.
type Metadata struct {
	Name       string
	Supervisor string
	Course     string
	Date       string
}

// ChartRef binds a rendered chart file to its relationship key.
type ChartRef struct {
	Key  string
	Path string
}

// CompositionError reports a document that cannot be assembled.
type CompositionError struct {
	Relationship string
	Path         string
	Reason       string
}

func (e *CompositionError) Error() string {
	if e == nil {
		return "composition error"
	}
	if e.Relationship == "" {
		return "compose report: " + e.Reason
	}
	if e.Path == "" {
		return fmt.Sprintf("compose report: %s: %s", e.Relationship, e.Reason)
	}
	return fmt.Sprintf("compose report: %s (%s): %s", e.Relationship, e.Path, e.Reason)
}

// Compose builds the report document. charts must name every relationship in
// order and each file must exist. A nil summary is computed from ds.
func Compose(meta Metadata, ds *analysis.Dataset, summary *analysis.SummaryTable, charts []ChartRef) (*docx.Document, error) {
	if len(charts) != len(relationships) {
		return nil, &CompositionError{Reason: fmt.Sprintf("expected %d charts, got %d", len(relationships), len(charts))}
	}
	for i, rel := range relationships {
		ref := charts[i]
		if ref.Key != rel.Key {
			return nil, &CompositionError{Relationship: rel.Key, Reason: fmt.Sprintf("chart %d is %q", i+1, ref.Key)}
		}
		if !utils.FileExists(ref.Path) {
			return nil, &CompositionError{Relationship: rel.Key, Path: ref.Path, Reason: "chart image not found"}
		}
	}
	if summary == nil {
		if ds == nil {
			return nil, &CompositionError{Reason: "no dataset or summary"}
		}
		summary = analysis.Summarize(ds)
	}

	doc := docx.New()
	doc.AddParagraph(meta.Name)
	doc.AddParagraph(meta.Supervisor)
	doc.AddParagraph(meta.Course)
	doc.AddParagraph(meta.Date)

	doc.AddHeading(ReportTitle, 1)
	doc.AddHeading(headingIntroduction, 2)
	for _, p := range introduction {
		doc.AddParagraph(p)
	}

	doc.AddHeading(headingSummary, 2)
	doc.AddTable(summary.Rows())

	for i, rel := range relationships {
		if rel.PageBreakBefore {
			doc.AddPageBreak()
		}
		doc.AddHeading(rel.Heading+":", 2)
		doc.AddParagraph(plotLabel)
		doc.AddPicture(charts[i].Path, ImageWidth)
		n := rel.Narrative
		doc.AddParagraph(n.Law)
		doc.AddAlignedParagraph(n.Equation, docx.AlignCenter)
		doc.AddParagraph(n.Derivation)
		for _, p := range n.Discussion {
			doc.AddParagraph(p)
		}
	}

	for _, c := range closing {
		doc.AddHeading(c.Heading, 2)
		doc.AddParagraph(c.Text)
	}
	return doc, nil
}
