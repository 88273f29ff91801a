package sequence

import (
	"strings"
	"testing"
)

func TestClassifyDNA(t *testing.T) {
	seq, typ, err := Classify("atg caa\nTTT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq != "ATGCAATTT" || typ != DNA {
		t.Fatalf("unexpected result: %q %v", seq, typ)
	}
}

func TestClassifyRNA(t *testing.T) {
	seq, typ, err := Classify("augc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq != "AUGC" || typ != RNA {
		t.Fatalf("unexpected result: %q %v", seq, typ)
	}
}

func TestClassifyMixedTU(t *testing.T) {
	if _, _, err := Classify("ATGU"); err == nil {
		t.Fatalf("expected error for sequence containing both T and U")
	}
}

func TestClassifyBadSymbol(t *testing.T) {
	if _, _, err := Classify("ATGN"); err == nil {
		t.Fatalf("expected error for symbol outside DNA alphabet")
	}
}

func TestClassifyEmpty(t *testing.T) {
	if _, _, err := Classify("  \n\t "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestValidateProtein(t *testing.T) {
	got, err := ValidateProtein(" mkv lrx ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "MKVLRX" {
		t.Fatalf("unexpected sequence: %q", got)
	}
}

func TestValidateProteinBadSymbol(t *testing.T) {
	if _, err := ValidateProtein("MKV*", 0); err == nil {
		t.Fatalf("expected error for stop symbol in protein input")
	}
}

func TestValidateProteinMinLength(t *testing.T) {
	if _, err := ValidateProtein("MKVLR", 16); err == nil {
		t.Fatalf("expected error for sequence below minimum length")
	}
	if _, err := ValidateProtein(strings.Repeat("M", 16), 16); err != nil {
		t.Fatalf("unexpected error at exact minimum: %v", err)
	}
}
