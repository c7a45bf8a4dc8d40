package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/delivery"
	"github.com/KaramelBytes/fluidreport/internal/docx"
	"github.com/KaramelBytes/fluidreport/internal/report"
)

var params = Parameters{
	Name:       "Ada Lovelace",
	Supervisor: "Babbage",
	Course:     "CHEG 315 Fluid Mechanics Lab",
	Date:       "2024-12-01",
	Recipient:  "babbage@example.edu",
}

func header() string {
	hdr := make([]string, len(analysis.RequiredFields))
	for i, f := range analysis.RequiredFields {
		hdr[i] = f.Header()
	}
	return strings.Join(hdr, ",")
}

func csvSource(body string) Source {
	return Source{Name: "lab.csv", Reader: strings.NewReader(header() + "\n" + body)}
}

const twoRows = "1,0.5,10,0.1,1000\n2,1.0,20,0.1,1000\n"

func newRunContext(t *testing.T) RunContext {
	t.Helper()
	rc, err := NewRunContext(t.TempDir())
	require.NoError(t, err)
	rc.DPI = 20
	return rc
}

func pngs(t *testing.T, dir string) []string {
	t.Helper()
	m, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	return m
}

func TestRunTwoRowDataset(t *testing.T) {
	rc := newRunContext(t)
	out, err := Run(context.Background(), rc, params, csvSource(twoRows))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rc.WorkDir, DefaultOutputName), out)

	for _, rel := range report.Relationships() {
		assert.FileExists(t, rc.ChartPath(rel))
	}
	assert.Len(t, pngs(t, rc.WorkDir), 5)

	doc, err := docx.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, report.SectionCount(), doc.Len())

	var table *docx.Section
	for i := range doc.Sections {
		if doc.Sections[i].Kind == docx.KindTable {
			table = &doc.Sections[i]
			break
		}
	}
	require.NotNil(t, table)
	require.Equal(t, "Statistic", table.Rows[0][0])
	assert.Equal(t, analysis.Velocity.Header(), table.Rows[0][1])
	assert.Equal(t, []string{"mean", "1.5", "0.75", "15", "0.1", "1000"}, table.Rows[2])
}

func TestRunMissingColumnRendersNothing(t *testing.T) {
	rc := newRunContext(t)
	hdr := strings.Replace(header(), analysis.PipeDiameter.Header(), "Temperature [C]", 1)
	src := Source{Name: "lab.csv", Reader: strings.NewReader(hdr + "\n" + twoRows)}

	_, err := Run(context.Background(), rc, params, src)
	var me *analysis.MalformedInputError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, analysis.PipeDiameter.Header(), me.Column)
	assert.True(t, IsInputError(err))
	assert.Empty(t, pngs(t, rc.WorkDir))
	assert.NoFileExists(t, rc.OutputPath())
}

func TestRunNonNumericCellFailsBeforeCharts(t *testing.T) {
	rc := newRunContext(t)
	_, err := Run(context.Background(), rc, params, csvSource("1,0.5,abc,0.1,1000\n"))
	var me *analysis.MalformedInputError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, err.Error(), `"abc"`)
	assert.Empty(t, pngs(t, rc.WorkDir))
	assert.NoFileExists(t, rc.OutputPath())
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	rc := newRunContext(t)
	bad := params
	bad.Name = "  "
	_, err := Run(context.Background(), rc, bad, csvSource(twoRows))
	var me *analysis.MalformedInputError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Name", me.Column)

	bad = params
	bad.Recipient = "not-an-address"
	_, err = Run(context.Background(), rc, bad, csvSource(twoRows))
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Recipient", me.Column)

	bad.Recipient = ""
	_, err = Run(context.Background(), rc, bad, Source{Name: "x.csv"})
	require.ErrorAs(t, err, &me)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	seq := newRunContext(t)
	par := newRunContext(t)
	par.ParallelCharts = true

	p := New()
	a, err := p.Execute(context.Background(), seq, params, csvSource(twoRows))
	require.NoError(t, err)
	b, err := p.Execute(context.Background(), par, params, csvSource(twoRows))
	require.NoError(t, err)

	require.Len(t, b.Charts, 5)
	for i := range a.Charts {
		assert.Equal(t, a.Charts[i].Key, b.Charts[i].Key)
		assert.Equal(t, filepath.Base(a.Charts[i].Path), filepath.Base(b.Charts[i].Path))
	}
	da, err := docx.ReadFile(a.Path)
	require.NoError(t, err)
	db, err := docx.ReadFile(b.Path)
	require.NoError(t, err)
	assert.Equal(t, da.Kinds(), db.Kinds())
}

func TestRunContextsAreIsolated(t *testing.T) {
	base := t.TempDir()
	a, err := NewRunContext(base)
	require.NoError(t, err)
	b, err := NewRunContext(base)
	require.NoError(t, err)
	assert.NotEqual(t, a.WorkDir, b.WorkDir)
	assert.True(t, strings.HasPrefix(filepath.Base(a.WorkDir), "run-"))

	rel := report.Relationships()[0]
	assert.NotEqual(t, a.ChartPath(rel), b.ChartPath(rel))
	assert.NotEqual(t, a.OutputPath(), b.OutputPath())
}

func TestRunReplacesStaleCharts(t *testing.T) {
	rc := newRunContext(t)
	rel := report.Relationships()[3]
	require.NoError(t, os.WriteFile(rc.ChartPath(rel), []byte("stale"), 0o644))

	_, err := Run(context.Background(), rc, params, csvSource(twoRows))
	require.NoError(t, err)
	b, err := os.ReadFile(rc.ChartPath(rel))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "\x89PNG"))
}

func TestRunChartFailureRemovesRenderedCharts(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		rc := newRunContext(t)
		rc.ParallelCharts = parallel
		// a non-empty directory where the fourth chart goes makes its write fail
		blocked := rc.ChartPath(report.Relationships()[3])
		require.NoError(t, os.MkdirAll(filepath.Join(blocked, "keep"), 0o755))

		_, err := Run(context.Background(), rc, params, csvSource(twoRows))
		require.Error(t, err)
		assert.Empty(t, pngs(t, rc.ChartDir), "parallel=%v", parallel)
		assert.NoFileExists(t, rc.OutputPath())
		assert.DirExists(t, blocked)
	}
}

func TestRunCancelledBeforeRenderStopsAtSummary(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rc := newRunContext(t)
	_, err := New(WithTracer(tp.Tracer("test"))).Run(ctx, rc, params, csvSource(twoRows))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pngs(t, rc.ChartDir))

	names := map[string]bool{}
	for _, s := range sr.Ended() {
		names[s.Name()] = true
	}
	assert.True(t, names["pipeline.summarize"])
	assert.False(t, names["pipeline.render"])
}

func TestRunSaveFailureIsIOError(t *testing.T) {
	rc := newRunContext(t)
	// a directory where the report should go makes the final rename fail
	require.NoError(t, os.Mkdir(rc.OutputPath(), 0o755))

	_, err := Run(context.Background(), rc, params, csvSource(twoRows))
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, rc.OutputPath(), ioe.Path)
	assert.False(t, IsInputError(err))
}

func TestRunOutputNameWithDirectoryRejected(t *testing.T) {
	rc := newRunContext(t)
	rc.OutputName = "../escape.docx"
	_, err := Run(context.Background(), rc, params, csvSource(twoRows))
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
}

func TestRunRecordsStageSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	p := New(WithTracer(tp.Tracer("test")))
	_, err := p.Run(context.Background(), newRunContext(t), params, csvSource(twoRows))
	require.NoError(t, err)

	counts := map[string]int{}
	for _, s := range sr.Ended() {
		counts[s.Name()]++
	}
	assert.Equal(t, 1, counts["pipeline.run"])
	assert.Equal(t, 1, counts["pipeline.load"])
	assert.Equal(t, 1, counts["pipeline.summarize"])
	assert.Equal(t, 1, counts["pipeline.render"])
	assert.Equal(t, 5, counts["chart.render"])
	assert.Equal(t, 1, counts["pipeline.compose"])
	assert.Equal(t, 1, counts["pipeline.save"])
}

type fakeSender struct {
	sent []delivery.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m delivery.Message) error {
	f.sent = append(f.sent, m)
	return f.err
}

func TestDeliver(t *testing.T) {
	rc := newRunContext(t)
	p := New()
	out, err := p.Run(context.Background(), rc, params, csvSource(twoRows))
	require.NoError(t, err)

	fs := &fakeSender{}
	require.NoError(t, p.Deliver(context.Background(), fs, params, out))
	require.Len(t, fs.sent, 1)
	assert.Equal(t, "babbage@example.edu", fs.sent[0].To)
	assert.Equal(t, "Ada Lovelace - Final Lab Report", fs.sent[0].Subject)
	assert.Equal(t, out, fs.sent[0].Attachment)
}

func TestDeliverFailureKeepsReport(t *testing.T) {
	rc := newRunContext(t)
	p := New()
	out, err := p.Run(context.Background(), rc, params, csvSource(twoRows))
	require.NoError(t, err)

	boom := errors.New("smtp down")
	err = p.Deliver(context.Background(), &fakeSender{err: boom}, params, out)
	assert.ErrorIs(t, err, boom)
	assert.FileExists(t, out)
}

func TestDeliverSkipped(t *testing.T) {
	p := New()
	noRecipient := params
	noRecipient.Recipient = ""
	fs := &fakeSender{}
	assert.ErrorIs(t, p.Deliver(context.Background(), fs, noRecipient, "r.docx"), ErrDeliverySkipped)
	assert.ErrorIs(t, p.Deliver(context.Background(), nil, params, "r.docx"), ErrDeliverySkipped)
	assert.Empty(t, fs.sent)
}
