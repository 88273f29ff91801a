package esmfold

// Package esmfold submits an amino-acid sequence to the ESMFold prediction
// API and returns the predicted structure as PDB-format text. Predicted
// structures carry per-residue pLDDT confidence in the B-factor column,
// which internal/pdb.Confidence summarizes.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public ESMFold Atlas fold endpoint.
const DefaultBaseURL = "https://api.esmatlas.com/foldSequence/v1/pdb/"

// MinSequenceLength is the predictor's minimum residue count. Callers
// should validate input with sequence.ValidateProtein using this floor.
const MinSequenceLength = 16

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Predict submits seq for folding and returns the predicted PDB text.
// baseURL falls back to DefaultBaseURL when empty. The sequence is sent
// as-is; validation is the caller's responsibility.
func Predict(ctx context.Context, baseURL, seq string) (string, error) {
	if seq == "" {
		return "", fmt.Errorf("esmfold: empty sequence")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL, strings.NewReader(seq))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("esmfold predict failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	text := string(body)
	if !strings.Contains(text, "ATOM") {
		return "", fmt.Errorf("esmfold: response does not look like a PDB structure")
	}
	return text, nil
}
