package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/chart"
	"github.com/KaramelBytes/fluidreport/internal/pipeline"
	"github.com/KaramelBytes/fluidreport/internal/report"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Delivery states reported in the X-Delivery header.
const (
	deliverySent    = "sent"
	deliverySkipped = "skipped"
	deliveryFailed  = "failed"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

type reportResponse struct {
	Run      string     `json:"run"`
	Report   string     `json:"report"`
	Rows     int        `json:"rows"`
	Charts   []string   `json:"charts"`
	Summary  [][]string `json:"summary"`
	Delivery string     `json:"delivery"`
	Duration string     `json:"duration"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, uploadForm)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", fmt.Errorf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "bad_request", fmt.Errorf("parse form: %w", err))
		return
	}
	params := pipeline.Parameters{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Supervisor: strings.TrimSpace(r.FormValue("supervisor")),
		Course:     strings.TrimSpace(r.FormValue("course")),
		Date:       strings.TrimSpace(r.FormValue("date")),
		Recipient:  strings.TrimSpace(r.FormValue("email")),
	}
	file, fh, err := r.FormFile("file")
	if err != nil {
		s.metrics.reports.WithLabelValues(outcomeRejected).Inc()
		s.fail(w, r, &analysis.MalformedInputError{Source: "form", Column: "file", Reason: "no file uploaded", Err: err})
		return
	}
	defer file.Close()

	rc, err := pipeline.NewRunContext(s.cfg.WorkDir)
	if err != nil {
		s.metrics.reports.WithLabelValues(outcomeFailed).Inc()
		s.fail(w, r, err)
		return
	}
	rc.OutputName = s.cfg.OutputName
	rc.DPI = s.cfg.DPI
	rc.ParallelCharts = s.cfg.ParallelCharts
	if !s.cfg.KeepRuns {
		defer func() {
			if err := os.RemoveAll(rc.WorkDir); err != nil {
				s.logger.WarnContext(r.Context(), "remove run directory", slog.String("dir", rc.WorkDir), slog.String("error", err.Error()))
			}
		}()
	}

	res, err := s.pipeline.Execute(r.Context(), rc, params, pipeline.Source{Name: filepath.Base(fh.Filename), Reader: file})
	if err != nil {
		outcome := outcomeFailed
		if pipeline.IsInputError(err) {
			outcome = outcomeRejected
		}
		s.metrics.reports.WithLabelValues(outcome).Inc()
		s.fail(w, r, err)
		return
	}
	s.metrics.reports.WithLabelValues(outcomeOK).Inc()
	s.metrics.duration.Observe(res.Duration.Seconds())

	status := s.deliver(r.Context(), params, res.Path)
	s.metrics.deliveries.WithLabelValues(status).Inc()
	w.Header().Set("X-Delivery", status)

	if wantsJSON(r) {
		charts := make([]string, len(res.Charts))
		for i, c := range res.Charts {
			charts[i] = filepath.Base(c.Path)
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, reportResponse{
			Run:      filepath.Base(rc.WorkDir),
			Report:   filepath.Base(res.Path),
			Rows:     res.Rows,
			Charts:   charts,
			Summary:  res.Summary.Rows(),
			Delivery: status,
			Duration: res.Duration.Round(time.Millisecond).String(),
		})
		return
	}
	s.streamReport(w, r, res.Path)
}

func (s *Server) deliver(ctx context.Context, params pipeline.Parameters, path string) string {
	err := s.pipeline.Deliver(ctx, s.sender, params, path)
	switch {
	case err == nil:
		return deliverySent
	case errors.Is(err, pipeline.ErrDeliverySkipped):
		return deliverySkipped
	default:
		return deliveryFailed
	}
}

func (s *Server) streamReport(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.fail(w, r, &pipeline.IOError{Op: "open report", Path: path, Err: err})
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprint(info.Size()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.WarnContext(r.Context(), "stream report", slog.String("error", err.Error()))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	s.writeError(w, r, status, kind, err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", slog.String("kind", kind), slog.String("error", err.Error()))
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Error:     err.Error(),
		Kind:      kind,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// classify maps pipeline error kinds to HTTP status codes.
func classify(err error) (int, string) {
	var (
		me *analysis.MalformedInputError
		re *chart.RenderError
		ce *report.CompositionError
		ie *pipeline.IOError
	)
	switch {
	case errors.As(err, &me):
		return http.StatusUnprocessableEntity, "malformed_input"
	case errors.As(err, &re):
		return http.StatusInternalServerError, "render"
	case errors.As(err, &ce):
		return http.StatusInternalServerError, "composition"
	case errors.As(err, &ie):
		return http.StatusInternalServerError, "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

const uploadForm = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Data Analysis Report Generator for Fluid Dynamics Experiment</title>
<style>
body { font-family: sans-serif; max-width: 36rem; margin: 2rem auto; }
label { display: block; margin-top: 1rem; }
input { width: 100%; padding: .4rem; }
button { margin-top: 1.5rem; padding: .5rem 1.5rem; }
</style>
</head>
<body>
<h1>Data Analysis Report Generator for Fluid Dynamics Experiment</h1>
<p>Upload a CSV file to generate a data analysis report as a Word document.</p>
<form method="post" action="/reports" enctype="multipart/form-data">
<label>Name <input name="name" placeholder="Your Name Here" required></label>
<label>Professor <input name="supervisor" placeholder="Professor Name Here" required></label>
<label>Course <input name="course" placeholder="Course Title Here" required></label>
<label>Date <input name="date" placeholder="Due Date Here" required></label>
<label>Professor Email <input name="email" type="email" placeholder="professor@email.com"></label>
<label>Upload your CSV file <input name="file" type="file" accept=".csv,.tsv,.xlsx" required></label>
<button type="submit">Generate report</button>
</form>
</body>
</html>
`
