package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column is one named numeric series of a dataset.
type Column struct {
	Header string // trimmed header text; repeats carry a ".N" suffix
	Base   string // header without symbol and unit suffixes
	Symbol string
	Unit   string
	Values []float64
}

// Dataset is the in-memory table loaded from an uploaded measurement file.
// Every column has the same length; row i of each column is one observation.
type Dataset struct {
	Name    string
	Columns []Column
	// Skipped lists optional columns dropped because they were not numeric.
	Skipped []string

	fields map[Field]int
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Column looks a column up by its exact header text.
func (d *Dataset) Column(header string) (*Column, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Columns {
		if d.Columns[i].Header == header {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Field returns the column bound to a required measurement.
func (d *Dataset) Field(f Field) (*Column, bool) {
	if d == nil {
		return nil, false
	}
	idx, ok := d.fields[f]
	if !ok || idx < 0 || idx >= len(d.Columns) {
		return nil, false
	}
	return &d.Columns[idx], true
}

// Headers returns the column headers in file order.
func (d *Dataset) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Header
	}
	return out
}

// LoadFile opens a CSV, TSV or XLSX file and loads it with Load or LoadXLSX.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read loads an uploaded stream, choosing the format from name: ".xlsx" is
// read with LoadXLSX, anything else as delimited text.
func Read(r io.Reader, name string) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return LoadXLSX(r, name, "")
	}
	return Load(r, name)
}

// Load parses a CSV stream with a header row. name is used for error messages
// and to pick the delimiter (".tsv" selects tabs).
func Load(r io.Reader, name string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = sniffDelimiter(name)
	cr.TrimLeadingSpace = true
	// 0: every record must match the header's field count
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed(name, "missing header row")
		}
		return nil, &MalformedInputError{Source: name, Reason: "read header", Err: err}
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
				return nil, &MalformedInputError{
					Source: name,
					Row:    len(rows) + 1,
					Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(rec)),
				}
			}
			return nil, &MalformedInputError{Source: name, Row: len(rows) + 1, Reason: "read row", Err: err}
		}
		rows = append(rows, rec)
	}
	return build(name, header, rows)
}

// build validates the raw table and converts it to a Dataset.
func build(name string, header []string, rows [][]string) (*Dataset, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	empty := true
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			empty = false
			break
		}
	}
	if len(header) == 0 || empty {
		return nil, malformed(name, "missing header row")
	}

	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	dedupeHeaders(header)

	type parsedHeader struct{ base, symbol, unit string }
	parsed := make([]parsedHeader, len(header))
	for i := range header {
		b, s, u := splitHeader(header[i])
		parsed[i] = parsedHeader{base: b, symbol: s, unit: u}
	}

	fields := make(map[Field]int, len(RequiredFields))
	required := make(map[int]Field, len(RequiredFields))
	for _, f := range RequiredFields {
		idx := -1
		// exact template header first, then a base-name match
		for i, h := range header {
			if _, taken := required[i]; taken {
				continue
			}
			if h == f.Header() {
				idx = i
				break
			}
		}
		if idx < 0 {
			for i := range header {
				if _, taken := required[i]; taken {
					continue
				}
				if f.matches(header[i], parsed[i].base) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return nil, &MalformedInputError{Source: name, Column: f.Header(), Reason: "required column not found"}
		}
		fields[f] = idx
		required[idx] = f
	}
	if len(rows) == 0 {
		return nil, &MalformedInputError{Source: name, Column: header[fields[RequiredFields[0]]], Reason: "required column is empty"}
	}

	ds := &Dataset{Name: name, fields: make(map[Field]int, len(fields))}
	for j, h := range header {
		_, isRequired := required[j]
		vals := make([]float64, 0, len(rows))
		ok := true
		for i, rec := range rows {
			if len(rec) != len(header) {
				return nil, &MalformedInputError{
					Source: name,
					Row:    i + 1,
					Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(rec)),
				}
			}
			x, err := parseNumeric(rec[j])
			if err != nil {
				if isRequired {
					return nil, &MalformedInputError{Source: name, Row: i + 1, Column: h, Reason: fmt.Sprintf("non-numeric value %q", rec[j]), Err: err}
				}
				ok = false
				break
			}
			vals = append(vals, x)
		}
		if !ok {
			ds.Skipped = append(ds.Skipped, h)
			continue
		}
		if isRequired {
			ds.fields[required[j]] = len(ds.Columns)
		}
		ds.Columns = append(ds.Columns, Column{
			Header: h,
			Base:   parsed[j].base,
			Symbol: parsed[j].symbol,
			Unit:   parsed[j].unit,
			Values: vals,
		})
	}
	return ds, nil
}

// dedupeHeaders renames repeated headers in place: "Trial", "Trial" becomes
// "Trial", "Trial.1". A generated name that is already taken moves on to
// the next suffix.
func dedupeHeaders(header []string) {
	counts := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
			n = counts[name]
		}
		header[i] = name
		counts[name] = n + 1
	}
}

var errNotFinite = errors.New("value is not finite")

func parseNumeric(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
