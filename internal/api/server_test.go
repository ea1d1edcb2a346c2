package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docrender/internal/config"
	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/pipeline"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/google/go-cmp/cmp"
)

const testKey = "test-key"

const contractJSON = `[{"children": [
  {"type": "h1", "children": [{"text": "Services Agreement"}]},
  {"type": "block", "title": "Parties", "children": [
    {"type": "p", "children": [{"text": "PARTIES\nAcme Corp\n123 Main St"}]}
  ]},
  {"type": "clause", "title": "Key Details", "children": [
    {"type": "p", "children": [{"text": "Supplier: Acme"}]}
  ]}
]}]`

const contractText = "Services Agreement\nPARTIES\nAcme Corp\n123 Main St\n1. Key Details\nSupplier: Acme\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		DefaultFormat:  "json",
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
		req.Header.Set("Authorization", tt.header)
		rec := do(t, s, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, rec.Code)
		}
	}
}

func TestRender_Text(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/render?format=text", strings.NewReader(contractJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != contractText {
		t.Errorf("unexpected output:\n%s", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestRender_DefaultFormatIsJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(contractJSON)))

	var units []render.Unit
	decodeJSON(t, rec, &units)
	if diff := cmp.Diff(strings.Split(strings.TrimSuffix(contractText, "\n"), "\n"), render.Lines(units)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_YAML(t *testing.T) {
	s := newTestServer(t)
	yamlDoc := "- children:\n" +
		"    - type: clause\n" +
		"      title: Definitions\n" +
		"      children:\n" +
		"        - type: p\n" +
		"          children:\n" +
		"            - text: Services\n" +
		"              bold: true\n"
	req := httptest.NewRequest(http.MethodPost, "/api/render?format=text", strings.NewReader(yamlDoc))
	req.Header.Set("Content-Type", "application/yaml; charset=utf-8")
	rec := do(t, s, req)

	if got := rec.Body.String(); got != "2. Definitions\nServices\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRender_MalformedRendersEmpty(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{"{oops", "[]", `{"children": []}`} {
		rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Errorf("%q: expected 200, got %d", body, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("%q: expected empty rendering, got %q", body, got)
		}
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/render?format=rtf", strings.NewReader(contractJSON)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestImport_Markdown(t *testing.T) {
	s := newTestServer(t)
	md := "# Services Agreement\n\n## Key Details\n\nSupplier: **Acme**\n"
	rec := do(t, s, uploadRequest(t, "/api/import", "contract.md", md, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	doc, err := doctree.DecodeBytes(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	want := []string{"Services Agreement", "1. Key Details", "Supplier: Acme"}
	if diff := cmp.Diff(want, render.Lines(render.Document(doc))); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_UnsupportedExtension(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, uploadRequest(t, "/api/import", "sheet.xlsx", "x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/formats", nil))

	var resp struct {
		Inputs  []string `json:"input_extensions"`
		Outputs []string `json:"output_formats"`
		Default string   `json:"default_format"`
	}
	decodeJSON(t, rec, &resp)
	if diff := cmp.Diff([]string{"ansi", "docx", "html", "json", "markdown", "text"}, resp.Outputs); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Inputs) != 11 || resp.Inputs[0] != ".csv" {
		t.Errorf("unexpected inputs %v", resp.Inputs)
	}
	if resp.Default != "json" {
		t.Errorf("unexpected default %q", resp.Default)
	}
}

func TestConvert_Flow(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, uploadRequest(t, "/api/convert", "contract.json", contractJSON, map[string]string{"format": "md"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		Format  string `json:"format"`
		PollURL string `json:"poll_url"`
	}
	decodeJSON(t, rec, &accepted)
	if accepted.Format != "markdown" {
		t.Errorf("expected canonical format, got %q", accepted.Format)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		var status struct {
			Status string `json:"status"`
		}
		decodeJSON(t, rec, &status)
		if status.Status == string(pipeline.StatusCompleted) {
			break
		}
		if status.Status == string(pipeline.StatusFailed) || time.Now().After(deadline) {
			t.Fatalf("job did not complete: %s", rec.Body.String())
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/convert/"+accepted.JobID+"/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="contract.md"` {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "# Services Agreement\n\n## PARTIES\n") {
		t.Errorf("unexpected markdown:\n%s", rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs?status=completed", nil))
	var list struct {
		Jobs []pipeline.JobSnapshot `json:"jobs"`
	}
	decodeJSON(t, rec, &list)
	if len(list.Jobs) != 1 || list.Jobs[0].ID != accepted.JobID {
		t.Errorf("expected the completed job in the list, got %+v", list.Jobs)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats struct {
		Jobs    map[string]int            `json:"jobs"`
		Latency map[string]map[string]any `json:"latency"`
	}
	decodeJSON(t, rec, &stats)
	if stats.Jobs["completed"] != 1 {
		t.Errorf("expected one completed job, got %v", stats.Jobs)
	}
	if _, ok := stats.Latency[pipeline.PhaseTotal]; !ok {
		t.Errorf("expected total latency, got %v", stats.Latency)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/convert/"+accepted.JobID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected delete to succeed, got %d", rec.Code)
	}
	rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestConvert_FailedResult(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, uploadRequest(t, "/api/convert", "broken.json", "{", map[string]string{"format": "text"}))
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decodeJSON(t, rec, &accepted)

	job := s.orchestrator.GetJob(accepted.JobID)
	deadline := time.Now().Add(5 * time.Second)
	for !job.Snapshot().Status.Finished() {
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/convert/"+accepted.JobID+"/result", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestConvert_UnknownFormat(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, uploadRequest(t, "/api/convert", "contract.json", contractJSON, map[string]string{"format": "rtf"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestConvert_UnknownJob(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/convert/nope/status", "/api/convert/nope/result"} {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"contract.json", "contract.json"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{"a..b.md", "a_b.md"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
