package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Statistic names, in table order.
const (
	StatCount = "count"
	StatMean  = "mean"
	StatStd   = "std"
	StatMin   = "min"
	StatP25   = "25%"
	StatP50   = "50%"
	StatP75   = "75%"
	StatMax   = "max"
)

// StatNames lists every statistic Summarize computes, in row order.
var StatNames = []string{StatCount, StatMean, StatStd, StatMin, StatP25, StatP50, StatP75, StatMax}

// SummaryTable maps statistic name to column header to value.
type SummaryTable struct {
	Stats   []string
	Columns []string
	Values  map[string]map[string]float64
}

// Summarize computes descriptive statistics for every dataset column. The
// standard deviation uses the n-1 divisor and is NaN for fewer than two values;
// percentiles interpolate linearly between order statistics.
func Summarize(ds *Dataset) *SummaryTable {
	t := &SummaryTable{
		Stats:  append([]string(nil), StatNames...),
		Values: make(map[string]map[string]float64, len(StatNames)),
	}
	for _, s := range StatNames {
		t.Values[s] = map[string]float64{}
	}
	if ds == nil {
		return t
	}
	for _, c := range ds.Columns {
		t.Columns = append(t.Columns, c.Header)
		for stat, v := range describe(c.Values) {
			t.Values[stat][c.Header] = v
		}
	}
	return t
}

// Value returns one cell of the table; ok is false for unknown names.
func (t *SummaryTable) Value(stat, column string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	row, ok := t.Values[stat]
	if !ok {
		return 0, false
	}
	v, ok := row[column]
	return v, ok
}

// Rows renders the table as text cells: a header row of "Statistic" plus the
// column names, then one row per statistic.
func (t *SummaryTable) Rows() [][]string {
	out := make([][]string, 0, len(t.Stats)+1)
	hdr := append([]string{"Statistic"}, t.Columns...)
	out = append(out, hdr)
	for _, s := range t.Stats {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, s)
		for _, c := range t.Columns {
			row = append(row, Format(t.Values[s][c]))
		}
		out = append(out, row)
	}
	return out
}

// Format renders a statistic with the shortest exact representation.
func Format(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Markdown renders a compact table suitable for terminals or standalone docs.
func (t *SummaryTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY STATISTICS]\n")
	rows := t.Rows()
	for i, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", len(row)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteXLSX writes the table to a single-sheet workbook.
func (t *SummaryTable) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for r, row := range t.Rows() {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			var v any = val
			if r > 0 && c > 0 {
				// numbers stay numeric in the sheet; NaN has no cell type
				if x := t.Values[t.Stats[r-1]][t.Columns[c-1]]; !math.IsNaN(x) {
					v = x
				}
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func describe(vals []float64) map[string]float64 {
	out := map[string]float64{StatCount: float64(len(vals))}
	if len(vals) == 0 {
		for _, s := range StatNames[1:] {
			out[s] = math.NaN()
		}
		return out
	}
	// Welford update
	var n int
	var mean, m2 float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range vals {
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	out[StatMean] = mean
	out[StatStd] = math.NaN()
	if n > 1 {
		out[StatStd] = math.Sqrt(m2 / float64(n-1))
	}
	out[StatMin] = lo
	out[StatMax] = hi

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	out[StatP25] = quantile(sorted, 0.25)
	out[StatP50] = quantile(sorted, 0.50)
	out[StatP75] = quantile(sorted, 0.75)
	return out
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	v := sorted[lo] + w*(sorted[hi]-sorted[lo])
	// keep rounding from stepping outside the bracketing order statistics
	return math.Min(math.Max(v, sorted[lo]), sorted[hi])
}
