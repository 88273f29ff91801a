package sequence

// Package sequence normalizes and classifies raw sequence text. It is the
// single validation gate before translation; downstream packages assume
// their input already passed Classify or ValidateProtein.

import (
	"fmt"
	"strings"
	"unicode"
)

// Type identifies the nucleotide alphabet of a classified sequence.
type Type int

const (
	DNA Type = iota
	RNA
)

func (t Type) String() string {
	if t == RNA {
		return "RNA"
	}
	return "DNA"
}

// proteinAlphabet is the IUPAC extended amino-acid alphabet: the 20
// canonical residues plus ambiguity and placeholder codes.
const proteinAlphabet = "ACDEFGHIKLMNPQRSTVWYBJOUXZ"

// Normalize strips all whitespace from s and upper-cases it.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Classify normalizes raw text and decides whether it is DNA or RNA.
// The presence of U marks RNA, T marks DNA; a sequence containing both is
// ambiguous and rejected. Any symbol outside the four permitted for the
// detected type is rejected, as is input that is empty after normalization.
func Classify(raw string) (string, Type, error) {
	seq := Normalize(raw)
	if seq == "" {
		return "", DNA, fmt.Errorf("empty sequence")
	}

	hasT := strings.ContainsRune(seq, 'T')
	hasU := strings.ContainsRune(seq, 'U')
	if hasT && hasU {
		return "", DNA, fmt.Errorf("sequence contains both T and U; cannot classify as DNA or RNA")
	}

	typ := DNA
	alphabet := "ACGT"
	if hasU {
		typ = RNA
		alphabet = "ACGU"
	}
	for i := 0; i < len(seq); i++ {
		if !strings.ContainsRune(alphabet, rune(seq[i])) {
			return "", typ, fmt.Errorf("invalid %s symbol %q at position %d", typ, seq[i], i+1)
		}
	}
	return seq, typ, nil
}

// ValidateProtein normalizes raw text and checks that every character is a
// valid amino-acid code. minLen enforces a caller-supplied floor (for
// example a structure predictor's minimum residue count); pass 0 to skip.
func ValidateProtein(raw string, minLen int) (string, error) {
	seq := Normalize(raw)
	if seq == "" {
		return "", fmt.Errorf("empty protein sequence")
	}
	for i := 0; i < len(seq); i++ {
		if !strings.ContainsRune(proteinAlphabet, rune(seq[i])) {
			return "", fmt.Errorf("invalid amino-acid symbol %q at position %d", seq[i], i+1)
		}
	}
	if minLen > 0 && len(seq) < minLen {
		return "", fmt.Errorf("protein sequence too short: %d residues, minimum %d", len(seq), minLen)
	}
	return seq, nil
}
