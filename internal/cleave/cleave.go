package cleave

// Package cleave scans a precursor protein for dibasic cleavage motifs
// (pairs of the basic residues R and K) and partitions the precursor into
// mature peptide fragments at the motif boundaries. This is a screening
// heuristic for peptide-hormone precursors, not a proteolysis model.

import (
	"regexp"

	"seqpipe/internal/sequence"
)

// DefaultMinFragmentLength is the fragment length floor used when the
// caller passes a non-positive minimum.
const DefaultMinFragmentLength = 8

// dibasicRun matches one or more back-to-back dibasic motifs, so KRRR is a
// single four-residue site rather than two overlapping ones.
var dibasicRun = regexp.MustCompile(`(?:RR|KR|RK|KK)+`)

// Site is one cleavage site. Start and End are 1-indexed inclusive
// positions into the precursor.
type Site struct {
	Motif string `json:"motif"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Fragment is a mature peptide candidate between cleavage boundaries.
// PrecedingCleavage and FollowingCleavage are the adjacent motifs, empty at
// the precursor's termini.
type Fragment struct {
	Sequence          string `json:"sequence"`
	Start             int    `json:"start"`
	End               int    `json:"end"`
	Length            int    `json:"length"`
	PrecedingCleavage string `json:"preceding_cleavage,omitempty"`
	FollowingCleavage string `json:"following_cleavage,omitempty"`
}

// Report holds the outcome of a cleavage scan.
type Report struct {
	Precursor         string     `json:"precursor"`
	MinFragmentLength int        `json:"min_fragment_length"`
	Sites             []Site     `json:"sites,omitempty"`
	Fragments         []Fragment `json:"fragments,omitempty"`
}

// Analyze scans the precursor left to right for maximal non-overlapping
// dibasic runs and partitions it at the resulting boundaries. Fragments
// shorter than minLen are dropped; fragments are reported N- to C-terminal.
// An empty precursor yields an empty report, not an error.
func Analyze(precursor string, minLen int) Report {
	if minLen <= 0 {
		minLen = DefaultMinFragmentLength
	}
	seq := sequence.Normalize(precursor)
	report := Report{Precursor: seq, MinFragmentLength: minLen}
	if seq == "" {
		return report
	}

	matches := dibasicRun.FindAllStringIndex(seq, -1)
	for _, m := range matches {
		report.Sites = append(report.Sites, Site{
			Motif: seq[m[0]:m[1]],
			Start: m[0] + 1,
			End:   m[1],
		})
	}

	emit := func(start, end int, before, after string) {
		if end-start < minLen {
			return
		}
		report.Fragments = append(report.Fragments, Fragment{
			Sequence:          seq[start:end],
			Start:             start + 1,
			End:               end,
			Length:            end - start,
			PrecedingCleavage: before,
			FollowingCleavage: after,
		})
	}

	prevEnd := 0
	prevMotif := ""
	for _, s := range report.Sites {
		emit(prevEnd, s.Start-1, prevMotif, s.Motif)
		prevEnd = s.End
		prevMotif = s.Motif
	}
	emit(prevEnd, len(seq), prevMotif, "")
	return report
}
