package rcsb

// Package rcsb downloads experimental structure files from the RCSB PDB
// archive by 4-character entry ID.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const downloadBase = "https://files.rcsb.org/download/%s.pdb"

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// ValidateID normalizes a PDB entry ID and checks the 4-character format:
// a digit followed by three alphanumerics.
func ValidateID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) != 4 {
		return "", fmt.Errorf("rcsb: PDB ID must be 4 characters, got %q", id)
	}
	if id[0] < '0' || id[0] > '9' {
		return "", fmt.Errorf("rcsb: PDB ID must start with a digit, got %q", id)
	}
	for i := 1; i < 4; i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", fmt.Errorf("rcsb: invalid character %q in PDB ID %q", c, id)
		}
	}
	return id, nil
}

// FetchStructure downloads the PDB-format file for the given entry ID and
// returns the raw text; callers parse it with internal/pdb.
func FetchStructure(ctx context.Context, id string) (string, error) {
	id, err := ValidateID(id)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf(downloadBase, id)

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
			return string(body), nil
		case resp.StatusCode == 404:
			return "", fmt.Errorf("rcsb: no structure found for %s", id)
		default:
			lastErr = fmt.Errorf("rcsb: fetch returned status %d", resp.StatusCode)
			sleepCtx(ctx, time.Duration(attempt*300)*time.Millisecond)
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
