package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// ErrNoDocumentPart is returned for archives without word/document.xml.
var ErrNoDocumentPart = errors.New("document.xml not found in DOCX")

// ReadFile opens a .docx file and reads its body back into sections.
func ReadFile(p string) (*Document, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return Read(b)
}

// ExtractText returns the plain text of a .docx archive.
func ExtractText(content []byte) (string, error) {
	d, err := Read(content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(d.Text()), nil
}

// Read parses a .docx archive. Headings, paragraphs, tables, pictures and page
// breaks that are direct children of the body become sections; pictures carry
// their media part name and display width.
func Read(content []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	docXML, err := readPart(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if docXML == nil {
		return nil, ErrNoDocumentPart
	}
	rels := map[string]string{}
	if relXML, err := readPart(zr, "word/_rels/document.xml.rels"); err != nil {
		return nil, err
	} else if relXML != nil {
		if rels, err = parseRels(relXML); err != nil {
			return nil, err
		}
	}
	return parseBody(docXML, rels)
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path.Base(name), err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path.Base(name), err)
		}
		return b, nil
	}
	return nil, nil
}

func parseRels(b []byte) (map[string]string, error) {
	var doc struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	out := make(map[string]string, len(doc.Rels))
	for _, r := range doc.Rels {
		out[r.ID] = path.Join("word", r.Target)
	}
	return out, nil
}

type paraState struct {
	style     string
	align     Align
	text      strings.Builder
	drawing   bool
	pageBreak bool
	cx        int64
	embed     string
}

func parseBody(docXML []byte, rels map[string]string) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	doc := New()

	var (
		para     *paraState
		inText   bool
		tblDepth int
		rows     [][]string
		row      []string
		cell     *strings.Builder
	)
	attr := func(se xml.StartElement, local string) string {
		for _, a := range se.Attr {
			if a.Name.Local == local {
				return a.Value
			}
		}
		return ""
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					rows = nil
				}
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell = &strings.Builder{}
				}
			case "p":
				if tblDepth == 0 {
					para = &paraState{}
				} else if cell != nil && cell.Len() > 0 {
					cell.WriteByte('\n')
				}
			case "pStyle":
				if para != nil && tblDepth == 0 {
					para.style = attr(t, "val")
				}
			case "jc":
				if para != nil && tblDepth == 0 {
					para.align = Align(attr(t, "val"))
				}
			case "t":
				inText = true
			case "tab":
				writeText(para, cell, tblDepth, "\t")
			case "br":
				if para != nil && tblDepth == 0 && attr(t, "type") == "page" {
					para.pageBreak = true
				}
			case "drawing":
				if para != nil && tblDepth == 0 {
					para.drawing = true
				}
			case "extent":
				if para != nil && tblDepth == 0 {
					para.cx, _ = strconv.ParseInt(attr(t, "cx"), 10, 64)
				}
			case "blip":
				if para != nil && tblDepth == 0 {
					para.embed = attr(t, "embed")
				}
			}
		case xml.CharData:
			if inText {
				writeText(para, cell, tblDepth, string(t))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tblDepth == 0 && para != nil {
					doc.Sections = append(doc.Sections, para.section(rels))
					para = nil
				}
			case "tc":
				if tblDepth == 1 && cell != nil {
					row = append(row, cell.String())
					cell = nil
				}
			case "tr":
				if tblDepth == 1 {
					rows = append(rows, row)
				}
			case "tbl":
				tblDepth--
				if tblDepth == 0 {
					doc.Sections = append(doc.Sections, Section{Kind: KindTable, Rows: rows})
				}
			}
		}
	}
	return doc, nil
}

func writeText(para *paraState, cell *strings.Builder, tblDepth int, s string) {
	if tblDepth > 0 {
		if cell != nil {
			cell.WriteString(s)
		}
		return
	}
	if para != nil {
		para.text.WriteString(s)
	}
}

func (p *paraState) section(rels map[string]string) Section {
	text := p.text.String()
	switch {
	case p.drawing:
		img := rels[p.embed]
		if img == "" {
			img = p.embed
		}
		return Section{Kind: KindImage, Image: img, Width: float64(p.cx) / EMUPerInch}
	case p.pageBreak && text == "":
		return Section{Kind: KindPageBreak}
	case p.style == "Title":
		return Section{Kind: KindHeading, Level: 0, Text: text, Align: p.align}
	case strings.HasPrefix(p.style, "Heading"):
		lvl, err := strconv.Atoi(strings.TrimPrefix(p.style, "Heading"))
		if err != nil {
			lvl = 1
		}
		return Section{Kind: KindHeading, Level: lvl, Text: text, Align: p.align}
	default:
		return Section{Kind: KindParagraph, Text: text, Align: p.align}
	}
}
