package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/delivery"
)

type fakeSender struct {
	sent []delivery.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m delivery.Message) error {
	f.sent = append(f.sent, m)
	return f.err
}

func csvBody() string {
	hdr := make([]string, len(analysis.RequiredFields))
	for i, f := range analysis.RequiredFields {
		hdr[i] = f.Header()
	}
	return strings.Join(hdr, ",") + "\n1,0.5,10,0.1,1000\n2,1.0,20,0.1,1000\n"
}

func newTestServer(t *testing.T, sender delivery.Sender, keep bool) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	return New(Config{WorkDir: dir, DPI: 20, KeepRuns: keep}, nil, sender, nil), dir
}

func upload(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formFields() map[string]string {
	return map[string]string{
		"name":       "Ada Lovelace",
		"supervisor": "Babbage",
		"course":     "CHEG 315",
		"date":       "2024-12-01",
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestFormPage(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `action="/reports"`)
}

func TestCreateReportStreamsDocument(t *testing.T) {
	s, dir := newTestServer(t, nil, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, formFields(), "lab.csv", csvBody()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="data_report.docx"`)
	assert.Equal(t, deliverySkipped, rec.Header().Get("X-Delivery"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "run directory should be removed")
}

func TestCreateReportKeepRuns(t *testing.T) {
	s, dir := newTestServer(t, nil, true)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, formFields(), "lab.csv", csvBody()))
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "run-"))
}

func TestCreateReportJSON(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	req := upload(t, formFields(), "lab.csv", csvBody())
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Rows)
	assert.Len(t, resp.Charts, 5)
	assert.Equal(t, "data_report.docx", resp.Report)
	assert.Equal(t, deliverySkipped, resp.Delivery)
	require.NotEmpty(t, resp.Summary)
	assert.Equal(t, "Statistic", resp.Summary[0][0])
}

func TestCreateReportDelivers(t *testing.T) {
	fs := &fakeSender{}
	s, _ := newTestServer(t, fs, false)
	fields := formFields()
	fields["email"] = "babbage@example.edu"
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, fields, "lab.csv", csvBody()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, deliverySent, rec.Header().Get("X-Delivery"))
	require.Len(t, fs.sent, 1)
	assert.Equal(t, "babbage@example.edu", fs.sent[0].To)
}

func TestCreateReportDeliveryFailureStillReturnsReport(t *testing.T) {
	fs := &fakeSender{err: errors.New("smtp down")}
	s, _ := newTestServer(t, fs, false)
	fields := formFields()
	fields["email"] = "babbage@example.edu"
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, fields, "lab.csv", csvBody()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, deliveryFailed, rec.Header().Get("X-Delivery"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestCreateReportMalformedInput(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	body := strings.Replace(csvBody(), "0.5", "abc", 1)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, formFields(), "lab.csv", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "malformed_input", resp.Kind)
	assert.Contains(t, resp.Error, "abc")
	assert.NotEmpty(t, resp.RequestID)
}

func TestCreateReportMissingFile(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, formFields(), "", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateReportMissingParameter(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	fields := formFields()
	delete(fields, "supervisor")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, fields, "lab.csv", csvBody()))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Supervisor")
}

func TestMetricsCountOutcomes(t *testing.T) {
	s, _ := newTestServer(t, nil, false)
	s.ServeHTTP(httptest.NewRecorder(), upload(t, formFields(), "lab.csv", csvBody()))
	s.ServeHTTP(httptest.NewRecorder(), upload(t, formFields(), "lab.csv", "nonsense\n"))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `fluidreport_reports_total{outcome="ok"} 1`)
	assert.Contains(t, out, `fluidreport_reports_total{outcome="rejected"} 1`)
	assert.Contains(t, out, `fluidreport_deliveries_total{outcome="skipped"} 1`)
	assert.Contains(t, out, "fluidreport_report_duration_seconds_count 1")
}

func TestClassify(t *testing.T) {
	code, kind := classify(&analysis.MalformedInputError{Reason: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "malformed_input", kind)

	code, kind = classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal", kind)
}
