// Package docx builds and reads minimal WordprocessingML (.docx) documents:
// headings, paragraphs, grid tables, inline PNG/JPEG pictures and page breaks.
package docx

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// Kind is the type of a top-level document section.
type Kind int

const (
	KindHeading Kind = iota
	KindParagraph
	KindTable
	KindImage
	KindPageBreak
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindPageBreak:
		return "page-break"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Align is a paragraph justification.
type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
	AlignRight  Align = "right"
	AlignBoth   Align = "both"
)

// Section is one top-level block of the document body.
type Section struct {
	Kind  Kind
	Level int // heading level; 0 is the Title style
	Text  string
	Align Align
	// Rows holds table cells; the first row is the header row.
	Rows [][]string
	// Image is a file path when building and the media part name when read back.
	Image string
	Width float64 // display width in inches
}

// Document is an ordered list of sections, built incrementally and written
// out in one pass.
type Document struct {
	Sections []Section
}

// New returns an empty document.
func New() *Document { return &Document{} }

// AddHeading appends a heading; level 0 uses the Title style, 1-9 HeadingN.
func (d *Document) AddHeading(text string, level int) {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}
	d.Sections = append(d.Sections, Section{Kind: KindHeading, Level: level, Text: text})
}

// AddParagraph appends a left-aligned body paragraph.
func (d *Document) AddParagraph(text string) {
	d.AddAlignedParagraph(text, AlignLeft)
}

// AddAlignedParagraph appends a body paragraph with the given justification.
func (d *Document) AddAlignedParagraph(text string, a Align) {
	d.Sections = append(d.Sections, Section{Kind: KindParagraph, Text: text, Align: a})
}

// AddTable appends a grid table. Rows are copied; ragged rows are padded
// to the widest row when written.
func (d *Document) AddTable(rows [][]string) {
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	d.Sections = append(d.Sections, Section{Kind: KindTable, Rows: cp})
}

// AddPicture appends an inline picture scaled to widthInches. The file is
// read when the document is written.
func (d *Document) AddPicture(path string, widthInches float64) {
	d.Sections = append(d.Sections, Section{Kind: KindImage, Image: path, Width: widthInches})
}

// AddPageBreak appends a hard page break.
func (d *Document) AddPageBreak() {
	d.Sections = append(d.Sections, Section{Kind: KindPageBreak})
}

// Len returns the number of top-level sections.
func (d *Document) Len() int { return len(d.Sections) }

// Kinds returns the section kinds in order.
func (d *Document) Kinds() []Kind {
	out := make([]Kind, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Kind
	}
	return out
}

// Save writes the document to path atomically.
func (d *Document) Save(path string) error {
	return utils.SafeWrite(path, d.Write)
}

// Text renders the document as plain text, one line per paragraph or heading
// and tab-separated table rows.
func (d *Document) Text() string {
	var b strings.Builder
	for _, s := range d.Sections {
		switch s.Kind {
		case KindHeading, KindParagraph:
			b.WriteString(s.Text)
			b.WriteByte('\n')
		case KindTable:
			for _, r := range s.Rows {
				b.WriteString(strings.Join(r, "\t"))
				b.WriteByte('\n')
			}
		case KindImage:
			fmt.Fprintf(&b, "[image %s]\n", s.Image)
		case KindPageBreak:
			b.WriteString("\f\n")
		}
	}
	return b.String()
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := d.Write(cw)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
