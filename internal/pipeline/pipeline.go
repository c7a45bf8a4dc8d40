// Package pipeline sequences loading, statistics, chart rendering, document
// composition and saving into one report run.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/chart"
	"github.com/KaramelBytes/fluidreport/internal/docx"
	"github.com/KaramelBytes/fluidreport/internal/report"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

const tracerName = "github.com/KaramelBytes/fluidreport/internal/pipeline"

// Result describes a completed run.
type Result struct {
	Path     string
	Rows     int
	Charts   []report.ChartRef
	Summary  *analysis.SummaryTable
	Duration time.Duration
}

// Pipeline runs reports. It holds no per-run state and is safe for
// concurrent use with distinct RunContexts.
type Pipeline struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// New returns a pipeline using the global logger and tracer provider unless
// overridden.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default(), tracer: otel.Tracer(tracerName)}
	for _, o := range opts {
		o(p)
	}
	p.logger = p.logger.With(slog.String("component", "pipeline"))
	return p
}

// Run is New().Run.
func Run(ctx context.Context, rc RunContext, params Parameters, src Source) (string, error) {
	return New().Run(ctx, rc, params, src)
}

// Run produces the report and returns its path. Any stage error is returned
// unchanged and nothing is saved.
func (p *Pipeline) Run(ctx context.Context, rc RunContext, params Parameters, src Source) (string, error) {
	res, err := p.Execute(ctx, rc, params, src)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// Execute is Run with the details of the finished run.
func (p *Pipeline) Execute(ctx context.Context, rc RunContext, params Parameters, src Source) (*Result, error) {
	start := time.Now()
	rc = rc.withDefaults()
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("fluidreport.source", src.Name),
		attribute.String("fluidreport.work_dir", rc.WorkDir),
	))
	defer span.End()

	res, err := p.execute(ctx, rc, params, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "report failed",
			slog.String("source", src.Name),
			slog.String("error", err.Error()))
		return nil, err
	}
	res.Duration = time.Since(start)
	p.logger.InfoContext(ctx, "report generated",
		slog.String("path", res.Path),
		slog.Int("rows", res.Rows),
		slog.Duration("duration", res.Duration))
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, rc RunContext, params Parameters, src Source) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := rc.validate(); err != nil {
		return nil, &IOError{Op: "plan output", Path: rc.OutputName, Err: err}
	}
	if src.Reader == nil {
		return nil, &analysis.MalformedInputError{Source: src.Name, Reason: "no file provided"}
	}

	var ds *analysis.Dataset
	err := p.stage(ctx, "load", func(context.Context) error {
		var err error
		ds, err = analysis.Read(src.Reader, src.Name)
		return err
	})
	if err != nil {
		return nil, err
	}

	var summary *analysis.SummaryTable
	if err := p.stage(ctx, "summarize", func(ctx context.Context) error {
		summary = analysis.Summarize(ds)
		return ctx.Err()
	}); err != nil {
		return nil, err
	}

	for _, dir := range []string{rc.WorkDir, rc.ChartDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, &IOError{Op: "create directory", Path: dir, Err: err}
		}
	}

	var charts []report.ChartRef
	err = p.stage(ctx, "render", func(ctx context.Context) error {
		var err error
		charts, err = p.renderCharts(ctx, rc, ds)
		return err
	})
	if err != nil {
		return nil, err
	}

	var doc *docx.Document
	err = p.stage(ctx, "compose", func(context.Context) error {
		var err error
		doc, err = report.Compose(params.Metadata(), ds, summary, charts)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := rc.OutputPath()
	err = p.stage(ctx, "save", func(context.Context) error {
		if err := doc.Save(out); err != nil {
			return &IOError{Op: "save report", Path: out, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Path: out, Rows: ds.Rows(), Charts: charts, Summary: summary}, nil
}

// renderCharts draws every relationship into its own path. Results keep the
// configured order whether rendering runs sequentially or in parallel.
func (p *Pipeline) renderCharts(ctx context.Context, rc RunContext, ds *analysis.Dataset) ([]report.ChartRef, error) {
	rels := report.Relationships()
	refs := make([]report.ChartRef, len(rels))
	r := chart.Renderer{DPI: rc.DPI}

	renderOne := func(ctx context.Context, i int) error {
		rel := rels[i]
		_, span := p.tracer.Start(ctx, "chart.render", trace.WithAttributes(attribute.String("fluidreport.chart", rel.Key)))
		defer span.End()
		path, err := r.Render(ds, rel.Chart, rc.ChartPath(rel))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		refs[i] = report.ChartRef{Key: rel.Key, Path: path}
		p.logger.DebugContext(ctx, "chart rendered", slog.String("chart", rel.Key), slog.String("path", path))
		return nil
	}

	if !rc.ParallelCharts {
		for i := range rels {
			if err := ctx.Err(); err != nil {
				p.discardCharts(ctx, refs)
				return nil, err
			}
			if err := renderOne(ctx, i); err != nil {
				p.discardCharts(ctx, refs)
				return nil, err
			}
		}
		return refs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range rels {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return renderOne(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		p.discardCharts(ctx, refs)
		return nil, err
	}
	return refs, nil
}

// discardCharts removes the charts of a failed render so a run never leaves
// a partial set behind.
func (p *Pipeline) discardCharts(ctx context.Context, refs []report.ChartRef) {
	for _, ref := range refs {
		if ref.Path == "" {
			continue
		}
		if err := utils.RemoveIfExists(ref.Path); err != nil {
			p.logger.WarnContext(ctx, "remove partial chart", slog.String("path", ref.Path), slog.String("error", err.Error()))
		}
	}
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// IsInputError reports whether err was caused by the operator's input rather
// than by the system.
func IsInputError(err error) bool {
	var me *analysis.MalformedInputError
	return errors.As(err, &me)
}
