package ncbi

// Package ncbi fetches GenBank flat-file records from the NCBI efetch
// endpoint. Responses are cached on disk as JSON with a TTL so repeated
// pipeline runs do not hammer the API. Parsing of the fetched text lives
// in internal/genbank; this package only moves bytes.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const efetchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi?db=nuccore&id=%s&rettype=gb&retmode=text"

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 20 * time.Second}

type cachedEntry struct {
	Record      string `json:"record"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheFilePath string
	cacheTTLSecs  int64
)

// SetCacheFilePath overrides the on-disk cache location.
func SetCacheFilePath(path string) {
	cacheMu.Lock()
	cacheFilePath = path
	cache = nil
	cacheLoaded = false
	cacheMu.Unlock()
}

// SetCacheTTLSeconds overrides the cache TTL. Zero falls back to the
// NCBI_CACHE_TTL_SECONDS environment variable, then to 7 days.
func SetCacheTTLSeconds(secs int64) {
	cacheMu.Lock()
	cacheTTLSecs = secs
	cacheMu.Unlock()
}

// FlushCache writes the in-memory cache to disk.
func FlushCache() {
	saveCache()
}

func cacheTTL() int64 {
	cacheMu.RLock()
	ttl := cacheTTLSecs
	cacheMu.RUnlock()
	if ttl != 0 {
		return ttl
	}
	if s := os.Getenv("NCBI_CACHE_TTL_SECONDS"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return int64(7 * 24 * 3600)
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "seqpipe")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "ncbi_cache.json")
	}
	return filepath.Join(os.TempDir(), "seqpipe_ncbi_cache.json")
}

func loadCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheLoaded {
		return
	}
	path := defaultCachePath()
	cache = make(map[string]cachedEntry)
	data, err := os.ReadFile(path)
	if err != nil {
		cacheLoaded = true
		return
	}
	_ = json.Unmarshal(data, &cache)
	cacheLoaded = true
}

func saveCache() {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	if cache == nil {
		return
	}
	path := defaultCachePath()
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, b, 0o644)
}

func getCached(acc string) (string, bool) {
	loadCache()
	ttl := cacheTTL()
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	e, ok := cache[acc]
	if !ok {
		return "", false
	}
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return "", false
	}
	return e.Record, true
}

func setCached(acc, record string) {
	if acc == "" || record == "" {
		return
	}
	loadCache()
	cacheMu.Lock()
	cache[acc] = cachedEntry{Record: record, RetrievedAt: time.Now().Unix()}
	cacheMu.Unlock()
	saveCache()
}

// FetchRecord fetches the GenBank flat-file record for the given
// nucleotide accession and returns the raw text as-is; callers parse it
// with internal/genbank. Retries on 429, honoring Retry-After.
func FetchRecord(ctx context.Context, accession string) (string, error) {
	if accession == "" {
		return "", fmt.Errorf("ncbi: empty accession")
	}
	if v, ok := getCached(accession); ok {
		return v, nil
	}

	base := efetchBase
	if apiKey := os.Getenv("NCBI_API_KEY"); apiKey != "" {
		base += "&api_key=" + apiKey
	}
	url := fmt.Sprintf(base, accession)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "seqpipe-fetcher/1.0")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			sleepCtx(ctx, time.Duration(attempt*300)*time.Millisecond)
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		switch {
		case resp.StatusCode == 200:
			if readErr != nil {
				return "", readErr
			}
			text := string(body)
			setCached(accession, text)
			return text, nil
		case resp.StatusCode == 429:
			lastErr = fmt.Errorf("ncbi efetch returned 429")
			sleepCtx(ctx, retryAfter(resp, attempt))
		default:
			return "", fmt.Errorf("ncbi efetch returned status %d: %s", resp.StatusCode, string(body))
		}
	}
	return "", lastErr
}

// retryAfter reads the Retry-After header, falling back to a backoff
// proportional to the attempt number.
func retryAfter(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(attempt*500) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
