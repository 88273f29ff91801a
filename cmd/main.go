package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"seqpipe/internal/config"
	"seqpipe/internal/esmfold"
	"seqpipe/internal/ncbi"
	"seqpipe/internal/pipeline"
	"seqpipe/internal/rcsb"

	"github.com/charmbracelet/log"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

func main() {
	// CLI flags
	accFlag := flag.String("acc", "", "comma-separated NCBI nucleotide accessions to fetch and analyze")
	inputFlag := flag.String("in", "", "input file path (GenBank flat file, FASTA or bare sequence)")
	outputFlag := flag.String("out", "database.json", "output JSON file path")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	structureFlag := flag.String("structure", "", "RCSB PDB id to fetch and attach to the first analysis")
	predictFlag := flag.Bool("predict", false, "submit the top precursor of each analysis to ESMFold and attach the prediction")
	minORF := flag.Int("min-orf", 0, "minimum ORF length in residues (default 25)")
	minPeptide := flag.Int("min-peptide", 0, "minimum mature peptide length in residues (default 8)")
	dryRun := flag.Bool("dry-run", false, "perform a dry run without writing outputs or calling prediction services")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("seqpipe", version)
		return
	}

	// load config (optional file)
	cfg, _ := config.LoadConfig(*configFlag)

	// merge CLI flags into config (flags override config when provided)
	if *inputFlag != "" {
		cfg.InputFile = *inputFlag
	}
	if *outputFlag != "" {
		cfg.OutputJSON = *outputFlag
	}
	if *minORF > 0 {
		cfg.MinORFLength = *minORF
	}
	if *minPeptide > 0 {
		cfg.MinPeptideLength = *minPeptide
	}
	accessions := append([]string(nil), cfg.Accessions...)
	for _, a := range strings.Split(*accFlag, ",") {
		if a = strings.TrimSpace(a); a != "" {
			accessions = append(accessions, a)
		}
	}

	// configure logger output
	var loggerOut io.Writer = os.Stderr
	var logFileHandle *os.File
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
			logFileHandle = f
			// keep file handle open until program exit
			defer func() { _ = logFileHandle.Close() }()
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	// create logger backed by the timestamping writer and expose Fd so charm.log can detect TTY
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	logger := log.New(termW)

	// apply log level from flags/config (flags override config)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			logger.SetLevel(log.DebugLevel)
		case "info", "":
			logger.SetLevel(log.InfoLevel)
		case "warn", "warning":
			logger.SetLevel(log.WarnLevel)
		case "error":
			logger.SetLevel(log.ErrorLevel)
		default:
			logger.SetLevel(log.InfoLevel)
			logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
		}
	}

	logger.Debug("loaded config", "input_file", cfg.InputFile, "output_json", cfg.OutputJSON, "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "accessions", len(accessions))
	if cfg.LogFile != "" && logFileHandle == nil {
		logger.Warn("log_file specified but could not be opened; logging to stderr only", "path", cfg.LogFile)
	}
	logger.Info("starting seqpipe", "accessions", len(accessions), "input_file", cfg.InputFile, "output_json", cfg.OutputJSON, "ncbi_cache_path", cfg.NcbiCachePath, "ncbi_cache_ttl_secs", cfg.NcbiCacheTTLSecs)

	// apply ncbi config
	if cfg.NcbiCachePath != "" {
		absPath, aerr := filepath.Abs(cfg.NcbiCachePath)
		if aerr == nil {
			ncbi.SetCacheFilePath(absPath)
			logger.Info("ncbi cache path set from config (absolute)", "path", absPath)
		} else {
			ncbi.SetCacheFilePath(cfg.NcbiCachePath)
			logger.Info("ncbi cache path set from config", "path", cfg.NcbiCachePath)
		}
		defer ncbi.FlushCache()
	}
	if cfg.NcbiApiKey != "" {
		// set the API key directly from config.json (config-only mode)
		os.Setenv("NCBI_API_KEY", cfg.NcbiApiKey)
		logger.Info("ncbi api key set from config.json (value not logged)")
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		ncbi.SetCacheTTLSeconds(cfg.NcbiCacheTTLSecs)
	}

	opts := pipeline.Options{MinORFLength: cfg.MinORFLength, MinPeptideLength: cfg.MinPeptideLength}

	var analyses []*pipeline.Analysis

	// local input file first: GenBank text runs the full annotated pass,
	// anything else is treated as pasted raw sequence
	if cfg.InputFile != "" {
		data, err := os.ReadFile(cfg.InputFile)
		if err != nil {
			logger.Fatal("failed to read input file", "path", cfg.InputFile, "err", err)
		}
		content := string(data)
		var a *pipeline.Analysis
		if looksLikeGenBank(content) {
			a, err = pipeline.AnalyzeRecord(content, opts)
		} else {
			a, err = pipeline.AnalyzeRaw(content, opts)
		}
		if err != nil {
			logger.Fatal("analysis failed", "path", cfg.InputFile, "err", err)
		}
		a.Input = cfg.InputFile
		logger.Info("analyzed input file", "path", cfg.InputFile, "candidates", len(a.Candidates))
		analyses = append(analyses, a)
	}

	// fetch and analyze remote accessions with a small worker pool,
	// rate limited so NCBI stays friendly
	if len(accessions) > 0 {
		concurrency := cfg.NcbiConcurrency
		if concurrency <= 0 {
			concurrency = 4
		}
		qps := cfg.NcbiQPS
		if qps <= 0 {
			qps = 3
		}
		logger.Info("starting ncbi lookup", "accessions", len(accessions), "concurrency", concurrency, "qps", qps)

		ticker := time.NewTicker(time.Second / time.Duration(qps))
		defer ticker.Stop()

		tasks := make(chan string)
		results := make(chan *pipeline.Analysis, len(accessions))

		var wg sync.WaitGroup
		for i := 0; i < concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for acc := range tasks {
					<-ticker.C
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					text, err := ncbi.FetchRecord(ctx, acc)
					cancel()
					if err != nil {
						logger.Warn("ncbi fetch failed", "accession", acc, "err", err)
						continue
					}
					a, err := pipeline.AnalyzeRecord(text, opts)
					if err != nil {
						logger.Warn("analysis failed", "accession", acc, "err", err)
						continue
					}
					a.Input = acc
					logger.Info("analyzed record", "accession", acc, "candidates", len(a.Candidates), "cds", a.Record.CDSCount)
					results <- a
				}
			}()
		}

		go func() {
			for _, acc := range accessions {
				tasks <- acc
			}
			close(tasks)
		}()

		wg.Wait()
		close(results)
		var fetched []*pipeline.Analysis
		for a := range results {
			fetched = append(fetched, a)
		}
		// workers finish out of order; keep the requested order in the output
		sort.SliceStable(fetched, func(i, j int) bool {
			return accessionIndex(accessions, fetched[i].Input) < accessionIndex(accessions, fetched[j].Input)
		})
		analyses = append(analyses, fetched...)
	}

	if len(analyses) == 0 {
		logger.Fatal("nothing to analyze; provide -in or -acc")
	}

	// attach an experimental structure to the first analysis when requested
	if *structureFlag != "" {
		id, err := rcsb.ValidateID(*structureFlag)
		if err != nil {
			logger.Fatal("invalid structure id", "id", *structureFlag, "err", err)
		}
		if *dryRun {
			logger.Info("dry-run: skipping rcsb fetch", "id", id)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			text, err := rcsb.FetchStructure(ctx, id)
			cancel()
			if err != nil {
				logger.Error("rcsb fetch failed", "id", id, "err", err)
			} else {
				pipeline.AttachStructure(analyses[0], text)
				logger.Info("attached structure", "id", id, "chains", analyses[0].Structure.ChainCount)
			}
		}
	}

	// fold precursors when requested
	if *predictFlag {
		baseURL := cfg.EsmfoldBaseURL
		if baseURL == "" {
			baseURL = esmfold.DefaultBaseURL
		}
		for _, a := range analyses {
			if a.Precursor == "" {
				continue
			}
			if len(a.Precursor) < esmfold.MinSequenceLength {
				logger.Warn("precursor too short for prediction", "input", a.Input, "length", len(a.Precursor))
				continue
			}
			if *dryRun {
				logger.Info("dry-run: skipping esmfold prediction", "input", a.Input)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			text, err := esmfold.Predict(ctx, baseURL, a.Precursor)
			cancel()
			if err != nil {
				logger.Error("esmfold prediction failed", "input", a.Input, "err", err)
				continue
			}
			pipeline.AttachStructure(a, text)
			if a.Confidence != nil {
				logger.Info("prediction attached", "input", a.Input, "mean_plddt", fmt.Sprintf("%.1f", a.Confidence.Mean))
			} else {
				logger.Info("prediction attached", "input", a.Input)
			}
		}
	}

	jsonData, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		logger.Fatal("json marshal failed", "err", err)
	}
	outPath := "database.json"
	if cfg.OutputJSON != "" {
		outPath = cfg.OutputJSON
	}

	if *dryRun {
		logger.Info("dry-run: would write output JSON", "path", outPath, "analyses", len(analyses))
	} else {
		if err := os.WriteFile(outPath, jsonData, 0o644); err != nil {
			logger.Error("failed to write output JSON", "path", outPath, "err", err)
		} else {
			logger.Info("wrote output JSON", "path", outPath, "analyses", len(analyses))
		}
	}
}

// looksLikeGenBank reports whether the text starts with GenBank flat-file
// fields rather than FASTA or bare sequence.
func looksLikeGenBank(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.HasPrefix(line, "LOCUS") || strings.HasPrefix(line, "DEFINITION") ||
			strings.HasPrefix(line, "ACCESSION") || strings.HasPrefix(line, "FEATURES")
	}
	return false
}

func accessionIndex(accessions []string, acc string) int {
	for i, a := range accessions {
		if a == acc {
			return i
		}
	}
	return len(accessions)
}
