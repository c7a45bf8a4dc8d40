package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a workbook and loads one sheet the same way Load reads a CSV.
// An empty sheetName selects the first sheet.
func LoadXLSX(r io.Reader, name, sheetName string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedInputError{Source: name, Reason: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, malformed(name, "workbook has no sheets")
	}
	sheet := sheets[0]
	if sheetName != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, malformed(name, fmt.Sprintf("sheet %q not found (available: %s)", sheetName, strings.Join(sheets, ", ")))
		}
	}
	// raw values, so number formats like "#,##0" do not leak into parsing
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedInputError{Source: name, Reason: fmt.Sprintf("read sheet %q", sheet), Err: err}
	}
	if len(rows) == 0 {
		return nil, malformed(name, "missing header row")
	}
	header := rows[0]
	var data [][]string
	for i, rec := range rows[1:] {
		if blankRow(rec) {
			continue
		}
		// GetRows trims trailing empty cells, pad back to header width
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		if len(rec) > len(header) {
			return nil, &MalformedInputError{
				Source: name,
				Row:    i + 1,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(rec)),
			}
		}
		data = append(data, rec)
	}
	return build(name, header, data)
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
