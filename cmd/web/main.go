package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"seqpipe/internal/esmfold"
	"seqpipe/internal/pipeline"
	"seqpipe/internal/report"
)

// AnalysesPage is used to render the base page and to carry query state
type AnalysesPage struct {
	Analyses []pipeline.Analysis
	Query    string
	Sort     string
	Role     string
}

var templates *template.Template

// dbMu serializes read-modify-write cycles on database.json
var dbMu sync.Mutex

func loadTemplates(dir string) error {
	t := template.New("")
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".html") {
			if _, err := t.ParseFiles(path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	templates = t
	return nil
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		duration := time.Since(start)
		logger.Printf("%s - %s %s %d %dB %s %q",
			r.RemoteAddr, r.Method, r.URL.RequestURI(), srw.status, srw.written, duration, r.UserAgent())
	})
}

// readDatabase reads and unmarshals the JSON file at path
func readDatabase(path string) ([]pipeline.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a []pipeline.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func writeDatabase(path string, analyses []pipeline.Analysis) error {
	out, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func findAnalysis(analyses []pipeline.Analysis, input string) int {
	for i, a := range analyses {
		if a.Input == input {
			return i
		}
	}
	return -1
}

func indexHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ler database e passar para o template para renderizar a lista inicialmente
		analyses, err := readDatabase(dbPath)
		if err != nil {
			log.Printf("warning: failed to read database for index: %v", err)
			analyses = []pipeline.Analysis{}
		}
		page := AnalysesPage{Analyses: analyses, Query: r.URL.Query().Get("q"), Sort: r.URL.Query().Get("sort"), Role: extractRole(r)}
		if err := templates.ExecuteTemplate(w, "base.html", page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// extractRole determines the visitor role from headers, query or cookie.
// Reasonable defaults: header X-User-Role, query param 'role', cookie 'role', else 'guest'.
func extractRole(r *http.Request) string {
	if role := strings.TrimSpace(r.Header.Get("X-User-Role")); role != "" {
		return role
	}
	if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
		return role
	}
	if c, err := r.Cookie("role"); err == nil {
		if role := strings.TrimSpace(c.Value); role != "" {
			return role
		}
	}
	return "guest"
}

func analysesHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analyses, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		sortMode := r.URL.Query().Get("sort")

		// filter
		filtered := make([]pipeline.Analysis, 0, len(analyses))
		for _, a := range analyses {
			if q == "" {
				filtered = append(filtered, a)
				continue
			}
			desc := ""
			if a.Record != nil {
				desc = a.Record.Description
			}
			if strings.Contains(strings.ToLower(a.Input), q) || strings.Contains(strings.ToLower(desc), q) {
				filtered = append(filtered, a)
			}
		}

		// sort
		switch sortMode {
		case "precursor":
			sort.Slice(filtered, func(i, j int) bool { return len(filtered[i].Precursor) > len(filtered[j].Precursor) })
		case "candidates":
			sort.Slice(filtered, func(i, j int) bool { return len(filtered[i].Candidates) > len(filtered[j].Candidates) })
		default:
			sort.Slice(filtered, func(i, j int) bool {
				return strings.ToLower(filtered[i].Input) < strings.ToLower(filtered[j].Input)
			})
		}

		// render fragment (send only the slice)
		if err := templates.ExecuteTemplate(w, "analyses.html", filtered); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func analysisHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 3 || parts[2] == "" {
			http.Error(w, "missing analysis", http.StatusBadRequest)
			return
		}
		input := parts[2]
		analyses, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		idx := findAnalysis(analyses, input)
		if idx < 0 {
			http.Error(w, "analysis not found", http.StatusNotFound)
			return
		}
		found := &analyses[idx]
		// Se requisição for HX (fragment), renderiza apenas o fragmento; caso contrário, renderiza página inteira
		if r.Header.Get("HX-Request") == "true" || r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
			if err := templates.ExecuteTemplate(w, "detail.html", found); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		if err := templates.ExecuteTemplate(w, "analysis_page.html", found); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// reportHandler serves the plain-text report for one analysis as a download
func reportHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 3 || parts[2] == "" {
			http.Error(w, "missing analysis", http.StatusBadRequest)
			return
		}
		input := parts[2]
		analyses, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		idx := findAnalysis(analyses, input)
		if idx < 0 {
			http.Error(w, "analysis not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", input+"-report.txt"))
		_, _ = io.WriteString(w, report.Text(&analyses[idx]))
	}
}

// analyzeHandler runs the pipeline on pasted sequence text and appends the
// result to database.json (simple read-modify-write).
func analyzeHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		text := r.FormValue("sequence")
		if strings.TrimSpace(text) == "" {
			http.Error(w, "missing sequence", http.StatusBadRequest)
			return
		}
		a, err := pipeline.AnalyzeRaw(text, pipeline.Options{})
		if err != nil {
			http.Error(w, fmt.Sprintf("analysis failed: %v", err), http.StatusUnprocessableEntity)
			return
		}
		name := strings.TrimSpace(r.FormValue("name"))
		if name != "" {
			a.Input = name
		} else {
			a.Input = fmt.Sprintf("pasted-%d", time.Now().Unix())
		}

		dbMu.Lock()
		analyses, err := readDatabase(dbPath)
		if err != nil && !os.IsNotExist(err) {
			dbMu.Unlock()
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		analyses = append(analyses, *a)
		werr := writeDatabase(dbPath, analyses)
		dbMu.Unlock()
		if werr != nil {
			log.Printf("warning: failed to write database.json: %v", werr)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(a)
	}
}

// predictSubmitHandler folds the analysis' precursor with ESMFold in the
// background and records a prediction job while it runs.
func predictSubmitHandler(dbPath, esmfoldBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "missing analysis", http.StatusBadRequest)
			return
		}
		input := parts[3]
		analyses, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		idx := findAnalysis(analyses, input)
		if idx < 0 {
			http.Error(w, "analysis not found", http.StatusNotFound)
			return
		}
		precursor := analyses[idx].Precursor
		if len(precursor) < esmfold.MinSequenceLength {
			http.Error(w, fmt.Sprintf("precursor muito curto para predição (%d aa, mínimo %d)", len(precursor), esmfold.MinSequenceLength), http.StatusBadRequest)
			return
		}

		job := PredictionJob{
			ID:        fmt.Sprintf("job-%d", time.Now().UnixNano()),
			Input:     input,
			State:     "queued",
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := upsertJob(job); err != nil {
			http.Error(w, fmt.Sprintf("failed to record job: %v", err), http.StatusInternalServerError)
			return
		}

		go runPrediction(dbPath, esmfoldBase, job, precursor)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": job.ID, "state": job.State})
	}
}

// runPrediction executes one ESMFold call and persists both the job state
// and, on success, the structure summary back into the database.
func runPrediction(dbPath, esmfoldBase string, job PredictionJob, precursor string) {
	job.State = "running"
	job.UpdatedAt = time.Now().UTC()
	_ = upsertJob(job)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	text, err := esmfold.Predict(ctx, esmfoldBase, precursor)
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.State = "error"
		job.Message = err.Error()
		_ = upsertJob(job)
		return
	}

	dbMu.Lock()
	analyses, rerr := readDatabase(dbPath)
	if rerr == nil {
		if idx := findAnalysis(analyses, job.Input); idx >= 0 {
			pipeline.AttachStructure(&analyses[idx], text)
			if werr := writeDatabase(dbPath, analyses); werr != nil {
				log.Printf("warning: failed to write database.json: %v", werr)
			}
		}
	}
	dbMu.Unlock()

	job.State = "done"
	_ = upsertJob(job)
}

// upsertJob replaces the job with the same ID, or appends it.
func upsertJob(job PredictionJob) error {
	jobs, err := loadJobs(jobsPath)
	if err != nil {
		return err
	}
	found := false
	for i := range jobs {
		if jobs[i].ID == job.ID {
			jobs[i] = job
			found = true
			break
		}
	}
	if !found {
		jobs = append(jobs, job)
	}
	return saveJobs(jobsPath, jobs)
}

// jobsHandler shows a simple table of prediction jobs
func jobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := loadJobs(jobsPath)
		if err != nil {
			http.Error(w, "failed to load jobs", http.StatusInternalServerError)
			return
		}
		if err := templates.ExecuteTemplate(w, "jobs.html", jobs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// apiAnalysisHandler returns JSON for a single analysis
func apiAnalysisHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "missing analysis", http.StatusBadRequest)
			return
		}
		input := parts[3]
		analyses, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		idx := findAnalysis(analyses, input)
		if idx < 0 {
			http.Error(w, "analysis not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(analyses[idx])
	}
}

// apiJobsHandler returns the JSON list of prediction jobs
func apiJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := loadJobs(jobsPath)
		if err != nil {
			http.Error(w, "failed to load jobs", http.StatusInternalServerError)
			return
		}
		if jobs == nil {
			jobs = []PredictionJob{}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(jobs)
	}
}

func main() {
	addr := flag.String("addr", ":8080", "endereço HTTP para servir")
	dbPath := flag.String("db", "database.json", "caminho para database.json")
	templatesDir := flag.String("templates", "web/templates", "diretório de templates HTML")
	esmfoldBase := flag.String("esmfold-base", esmfold.DefaultBaseURL, "URL base da API ESMFold")
	jobsStoreFlag := flag.String("jobs-store", "json", "jobs persistence backend: json or sqlite")
	jobsPathFlag := flag.String("jobs-path", "jobs.json", "path to jobs file (json) or database (sqlite)")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stdout only")
	flag.Parse()

	if err := loadTemplates(*templatesDir); err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}
	if err := initJobsStore(*jobsStoreFlag, *jobsPathFlag); err != nil {
		log.Fatalf("failed to initialize jobs store: %v", err)
	}

	// prepare mux so we can wrap with middleware
	mux := http.NewServeMux()
	fs := http.FileServer(http.Dir("web/static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))
	mux.HandleFunc("/", indexHandler(*dbPath))
	mux.HandleFunc("/analyses", analysesHandler(*dbPath))
	mux.HandleFunc("/analysis/", analysisHandler(*dbPath))
	mux.HandleFunc("/report/", reportHandler(*dbPath))
	mux.HandleFunc("/analyze", analyzeHandler(*dbPath))
	mux.HandleFunc("/predict/submit/", predictSubmitHandler(*dbPath, *esmfoldBase))
	mux.HandleFunc("/jobs", jobsHandler())
	// API endpoints for SPA-like interactions
	mux.HandleFunc("/api/analysis/", apiAnalysisHandler(*dbPath))
	mux.HandleFunc("/api/jobs", apiJobsHandler())

	// configure logger
	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.New(out, "seqpipe: ", log.LstdFlags)

	// wrap mux with logging middleware
	handler := loggingMiddleware(logger, mux)

	srv := &http.Server{Addr: *addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second}
	fmt.Printf("serving HTMX UI at http://%s/ (db=%s)\n", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
