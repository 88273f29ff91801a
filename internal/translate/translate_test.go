package translate

import (
	"testing"

	"seqpipe/internal/sequence"
)

func TestReverseComplementDNA(t *testing.T) {
	got := ReverseComplement("ATGC", sequence.DNA)
	if got != "GCAT" {
		t.Fatalf("expected GCAT, got %q", got)
	}
}

func TestReverseComplementRNA(t *testing.T) {
	got := ReverseComplement("AUGC", sequence.RNA)
	if got != "GCAU" {
		t.Fatalf("expected GCAU, got %q", got)
	}
}

func TestDoubleReverseComplementIdentity(t *testing.T) {
	seqs := []string{"ATG", "ATGAAACCCTAG", "GATTACA", "A", "ACGTACGTACGT"}
	for _, s := range seqs {
		rc2 := ReverseComplement(ReverseComplement(s, sequence.DNA), sequence.DNA)
		if Translate(rc2, sequence.DNA) != Translate(s, sequence.DNA) {
			t.Fatalf("double reverse complement changed translation for %q", s)
		}
	}
}

func TestTranslateStandardCode(t *testing.T) {
	got := Translate("ATGAAACCCTAG", sequence.DNA)
	if got != "MKP*" {
		t.Fatalf("expected MKP*, got %q", got)
	}
}

func TestTranslateRNA(t *testing.T) {
	got := Translate("AUGAAACCCUAG", sequence.RNA)
	if got != "MKP*" {
		t.Fatalf("expected MKP*, got %q", got)
	}
}

func TestTranslateDropsPartialCodon(t *testing.T) {
	// 7 symbols: two full codons, one trailing symbol dropped
	got := Translate("ATGAAAC", sequence.DNA)
	if got != "MK" {
		t.Fatalf("expected MK, got %q", got)
	}
}

func TestSixFramesCount(t *testing.T) {
	frames := SixFrames("ATGAAACCCTAG", sequence.DNA)
	labels := map[string]bool{}
	for _, f := range frames {
		labels[f.Label] = true
	}
	for _, want := range []string{"+1", "+2", "+3", "-1", "-2", "-3"} {
		if !labels[want] {
			t.Fatalf("missing frame %s", want)
		}
	}
	if frames[0].Protein != "MKP*" {
		t.Fatalf("unexpected +1 translation: %q", frames[0].Protein)
	}
}

func TestSixFramesNoPartialCodons(t *testing.T) {
	// length 13, not divisible by 3: every frame length must be floor(n/3)
	seq := "ATGAAACCCTAGG"
	frames := SixFrames(seq, sequence.DNA)
	for _, f := range frames {
		if len(f.Protein) != (len(seq)-f.Offset)/3 {
			t.Fatalf("frame %s has %d residues for %d usable symbols",
				f.Label, len(f.Protein), len(seq)-f.Offset)
		}
	}
}

func TestFindORFsTwoSegments(t *testing.T) {
	frames := [6]Frame{{Label: "+1", Protein: "MKV*MAT*"}}
	orfs := FindORFs(frames, 2)
	if len(orfs) != 2 {
		t.Fatalf("expected 2 ORFs, got %d: %+v", len(orfs), orfs)
	}
	got := map[string]bool{orfs[0].Sequence: true, orfs[1].Sequence: true}
	if !got["MKV"] || !got["MAT"] {
		t.Fatalf("expected MKV and MAT, got %+v", orfs)
	}
}

func TestFindORFsOverlappingCandidates(t *testing.T) {
	// the inner M opens a second, overlapping candidate
	frames := [6]Frame{{Label: "+1", Protein: "MAMBB*"}}
	orfs := FindORFs(frames, 1)
	if len(orfs) != 2 {
		t.Fatalf("expected 2 overlapping candidates, got %d: %+v", len(orfs), orfs)
	}
	if orfs[0].Sequence != "MAMBB" || orfs[1].Sequence != "MBB" {
		t.Fatalf("unexpected candidates: %+v", orfs)
	}
}

func TestFindORFsUnterminatedNotEmitted(t *testing.T) {
	frames := [6]Frame{{Label: "+1", Protein: "MKVLR"}}
	if orfs := FindORFs(frames, 0); len(orfs) != 0 {
		t.Fatalf("expected no ORFs without a stop, got %+v", orfs)
	}
}

func TestFindORFsMinLength(t *testing.T) {
	frames := [6]Frame{{Label: "+1", Protein: "MKV*"}}
	// length 3 is at the minimum and therefore discarded
	if orfs := FindORFs(frames, 3); len(orfs) != 0 {
		t.Fatalf("expected candidate at minimum length to be discarded, got %+v", orfs)
	}
}

func TestFindORFsSortedLongestFirst(t *testing.T) {
	frames := [6]Frame{
		{Label: "+1", Protein: "MKV*"},
		{Label: "-2", Protein: "MKVLRST*"},
	}
	orfs := FindORFs(frames, 1)
	if len(orfs) != 2 || len(orfs[0].Sequence) < len(orfs[1].Sequence) {
		t.Fatalf("expected longest-first ordering, got %+v", orfs)
	}
	if orfs[0].Frame != "-2" {
		t.Fatalf("expected longest candidate from frame -2, got %+v", orfs[0])
	}
}
