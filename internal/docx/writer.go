package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
	gdx "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/stypes"
)

// EMUPerInch converts inches to DrawingML English Metric Units.
const EMUPerInch = 914400

const tableStyle = "TableGrid"

// Write encodes the document as a .docx zip archive. Picture files are read
// and measured here; a missing or undecodable picture fails the write.
func (d *Document) Write(w io.Writer) error {
	rd, err := d.build()
	if err != nil {
		return err
	}
	if err := rd.Write(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// build lays the sections out on a fresh document from the default template.
func (d *Document) build() (*gdx.RootDoc, error) {
	rd, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new docx: %w", err)
	}
	for _, s := range d.Sections {
		switch s.Kind {
		case KindHeading:
			p, err := rd.AddHeading(s.Text, uint(s.Level))
			if err != nil {
				return nil, fmt.Errorf("heading %q: %w", s.Text, err)
			}
			justify(p, s.Align)
		case KindParagraph:
			justify(rd.AddParagraph(s.Text), s.Align)
		case KindTable:
			addTable(rd, s.Rows)
		case KindImage:
			if err := addPicture(rd, s); err != nil {
				return nil, err
			}
		case KindPageBreak:
			rd.AddPageBreak()
		}
	}
	return rd, nil
}

func justify(p *gdx.Paragraph, a Align) {
	if a != AlignLeft {
		p.Justification(stypes.Justification(a))
	}
}

// addTable writes a grid table with a bold header row; ragged rows are
// padded to the widest row.
func addTable(rd *gdx.RootDoc, rows [][]string) {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	tbl := rd.AddTable()
	tbl.Style(tableStyle)
	for ri, r := range rows {
		row := tbl.AddRow()
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(r) {
				text = r[c]
			}
			cell := row.AddCell()
			if ri == 0 {
				cell.AddEmptyPara().AddText(text).Bold(true)
				continue
			}
			cell.AddParagraph(text)
		}
	}
}

// addPicture embeds an image at s.Width inches, keeping its aspect ratio.
func addPicture(rd *gdx.RootDoc, s Section) error {
	data, err := os.ReadFile(s.Image)
	if err != nil {
		return fmt.Errorf("read picture: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode picture %s: %w", filepath.Base(s.Image), err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decode picture %s: empty image", filepath.Base(s.Image))
	}
	width := s.Width
	if width <= 0 {
		width = 6
	}
	height := width * float64(cfg.Height) / float64(cfg.Width)
	if _, err := rd.AddPicture(s.Image, units.Inch(width), units.Inch(height)); err != nil {
		return fmt.Errorf("embed picture %s: %w", filepath.Base(s.Image), err)
	}
	return nil
}
