package ncbi

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

const cannedRecord = `LOCUS       FAKE_ACC        12 bp
VERSION     FAKE_ACC.1
ORIGIN
        1 atgaaaccct ag
//
`

func useTempCache(t *testing.T) {
	t.Helper()
	SetCacheFilePath(filepath.Join(t.TempDir(), "ncbi_cache.json"))
	SetCacheTTLSeconds(0)
}

func TestFetchRecord(t *testing.T) {
	useTempCache(t)
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.RawQuery, "id=FAKE_ACC") {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(cannedRecord)),
			Header:     make(http.Header),
		}, nil
	})}

	got, err := FetchRecord(context.Background(), "FAKE_ACC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cannedRecord {
		t.Fatalf("unexpected record text: %q", got)
	}

	// second call must be served from cache, not HTTP
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("HTTP should not be called on cached fetch")
		return nil, nil
	})}
	got2, err := FetchRecord(context.Background(), "FAKE_ACC")
	if err != nil {
		t.Fatalf("unexpected error on cached fetch: %v", err)
	}
	if got2 != cannedRecord {
		t.Fatalf("expected cached record, got %q", got2)
	}
}

func TestFetchRecordRetryAndRetryAfter(t *testing.T) {
	useTempCache(t)
	calls := 0
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			h := make(http.Header)
			h.Set("Retry-After", "1")
			return &http.Response{StatusCode: 429, Body: io.NopCloser(strings.NewReader("")), Header: h}, nil
		}
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(cannedRecord)), Header: make(http.Header)}, nil
	})}

	start := time.Now()
	got, err := FetchRecord(context.Background(), "RACC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cannedRecord {
		t.Fatalf("unexpected record: %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	if time.Since(start) < time.Second {
		t.Fatalf("expected at least 1s wait due to Retry-After, elapsed %v", time.Since(start))
	}
}

func TestFetchRecordHardFailure(t *testing.T) {
	useTempCache(t)
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("boom")), Header: make(http.Header)}, nil
	})}
	if _, err := FetchRecord(context.Background(), "X"); err == nil {
		t.Fatalf("expected error on 500 response")
	}
}

func TestFetchRecordEmptyAccession(t *testing.T) {
	if _, err := FetchRecord(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty accession")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	SetCacheFilePath(filepath.Join(t.TempDir(), "ncbi_cache.json"))
	SetCacheTTLSeconds(1)
	loadCache()
	cacheMu.Lock()
	cache["OLDACC"] = cachedEntry{Record: "OLD", RetrievedAt: time.Now().Unix() - 100000}
	cacheMu.Unlock()

	if v, ok := getCached("OLDACC"); ok || v != "" {
		t.Fatalf("expected OLDACC to be expired, got %q (ok=%v)", v, ok)
	}
}
