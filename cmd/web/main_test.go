package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"seqpipe/internal/pipeline"
)

func writeTestDB(t *testing.T, analyses []pipeline.Analysis) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.json")
	if err := writeDatabase(path, analyses); err != nil {
		t.Fatalf("failed to write test database: %v", err)
	}
	return path
}

func TestExtractRole(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := extractRole(r); got != "guest" {
		t.Fatalf("expected guest, got %q", got)
	}
	r.Header.Set("X-User-Role", "admin")
	if got := extractRole(r); got != "admin" {
		t.Fatalf("expected admin, got %q", got)
	}
}

func TestReportHandler(t *testing.T) {
	db := writeTestDB(t, []pipeline.Analysis{{Input: "NM_000939.4", Precursor: "MKRAAAAAAAA"}})
	h := reportHandler(db)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/report/NM_000939.4", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "MKRAAAAAAAA") {
		t.Fatalf("report missing precursor:\n%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/report/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown analysis, got %d", w.Code)
	}
}

func TestAnalyzeHandler(t *testing.T) {
	db := filepath.Join(t.TempDir(), "database.json")
	h := analyzeHandler(db)

	form := url.Values{"sequence": {"MKAAAAKRCCCCCCCC"}, "name": {"pasted"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	analyses, err := readDatabase(db)
	if err != nil {
		t.Fatalf("database not written: %v", err)
	}
	if len(analyses) != 1 || analyses[0].Input != "pasted" {
		t.Fatalf("unexpected database contents: %#v", analyses)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("sequence=123%21%21"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid sequence, got %d", w.Code)
	}
}

func TestApiAnalysisHandler(t *testing.T) {
	db := writeTestDB(t, []pipeline.Analysis{{Input: "NM_000939.4"}})
	h := apiAnalysisHandler(db)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/analysis/NM_000939.4", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NM_000939.4") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestLoadTemplates(t *testing.T) {
	if err := loadTemplates(filepath.Join("..", "..", "web", "templates")); err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	if templates.Lookup("base.html") == nil || templates.Lookup("detail.html") == nil {
		t.Fatalf("expected base.html and detail.html to be parsed")
	}
}
