package report

import (
	"strings"
	"testing"

	"seqpipe/internal/cleave"
	"seqpipe/internal/pdb"
	"seqpipe/internal/pipeline"
	"seqpipe/internal/rank"
)

func TestTextSections(t *testing.T) {
	res := 1.9
	a := &pipeline.Analysis{
		Input: "NM_000939.4",
		Record: &pipeline.RecordSummary{
			Accession:      "NM_000939.4",
			Description:    "proopiomelanocortin",
			SequenceType:   "DNA",
			SequenceLength: 120,
			CDSCount:       1,
		},
		Candidates: []rank.Candidate{
			{ID: "candidate-1", Sequence: "MKRAAAAAAAA", Length: 11, Score: 5061, SourceKind: rank.SourceCDS, Label: "POMC", Evidence: "CDS 1..36"},
		},
		Precursor: "MKRAAAAAAAA",
		Peptides: &cleave.Report{
			Precursor:         "MKRAAAAAAAA",
			MinFragmentLength: 8,
			Sites:             []cleave.Site{{Motif: "KR", Start: 2, End: 3}},
			Fragments:         []cleave.Fragment{{Sequence: "AAAAAAAA", Start: 4, End: 11, Length: 8}},
		},
		Structure: &pipeline.StructureSummary{
			Title:      "PREDICTED FOLD",
			Organism:   "HOMO SAPIENS",
			Method:     "X-RAY DIFFRACTION",
			Resolution: &res,
			ChainCount: 1,
		},
		Confidence: &pdb.ConfidenceStats{AtomCount: 4, ResidueCount: 2, Mean: 85, Min: 80, Max: 90, VeryHigh: 1, Confident: 1},
	}

	out := Text(a)
	for _, want := range []string{
		"input: NM_000939.4",
		"[record]",
		"sequence: 120 nt (DNA)",
		"[candidates]",
		"candidate-1  score=5061  len=11  source=cds_translation  POMC",
		"evidence: CDS 1..36",
		"[precursor]",
		"MKRAAAAAAAA",
		"[cleavage]",
		"site KR at 2-3",
		"fragment 4-11 (8 aa): AAAAAAAA",
		"[structure]",
		"resolution: 1.90 A",
		"[confidence]",
		"pLDDT mean 85.0, min 80.0, max 90.0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestTextMinimal(t *testing.T) {
	out := Text(&pipeline.Analysis{Input: "raw input"})
	if !strings.Contains(out, "input: raw input") {
		t.Fatalf("unexpected report: %s", out)
	}
	for _, absent := range []string{"[record]", "[candidates]", "[structure]", "[confidence]"} {
		if strings.Contains(out, absent) {
			t.Fatalf("empty analysis should not render %s:\n%s", absent, out)
		}
	}
}

func TestWrapSequence(t *testing.T) {
	lines := wrapSequence(strings.Repeat("A", 130), 60)
	if len(lines) != 3 || len(lines[0]) != 60 || len(lines[2]) != 10 {
		t.Fatalf("unexpected wrapping: %d lines %v", len(lines), lines)
	}
	if wrapSequence("", 60) != nil {
		t.Fatalf("empty sequence should wrap to nil")
	}
}
