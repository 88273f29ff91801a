package esmfold

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestPredict(t *testing.T) {
	const pdbText = "ATOM      1  N   MET A   1      11.104   6.134  -6.504  1.00 90.00\n"
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != "POST" {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "MKVLRSTAAAPLLWGGHH" {
			t.Fatalf("unexpected request body: %q", body)
		}
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(pdbText)),
			Header:     make(http.Header),
		}, nil
	})}

	got, err := Predict(context.Background(), "", "MKVLRSTAAAPLLWGGHH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != pdbText {
		t.Fatalf("unexpected structure: %q", got)
	}
}

func TestPredictRejectedSubmission(t *testing.T) {
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 400,
			Status:     "400 Bad Request",
			Body:       io.NopCloser(strings.NewReader("sequence too short")),
			Header:     make(http.Header),
		}, nil
	})}
	if _, err := Predict(context.Background(), "", "MKV"); err == nil {
		t.Fatalf("expected error on rejected submission")
	}
}

func TestPredictNonStructureResponse(t *testing.T) {
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader("<html>maintenance</html>")),
			Header:     make(http.Header),
		}, nil
	})}
	if _, err := Predict(context.Background(), "", "MKVLRSTAAAPLLWGGHH"); err == nil {
		t.Fatalf("expected error for non-PDB response")
	}
}

func TestPredictEmptySequence(t *testing.T) {
	if _, err := Predict(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error for empty sequence")
	}
}
