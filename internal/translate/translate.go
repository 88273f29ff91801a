package translate

// Package translate turns classified nucleotide sequences into amino-acid
// strings: single-frame translation, all six reading frames, and an open
// reading frame scan over the translated frames. Input is expected to have
// passed sequence.Classify already; this package does not re-validate.

import (
	"sort"
	"strings"

	"seqpipe/internal/sequence"
)

// Frame is one translated reading frame. Label is "+1".."+3" for the
// forward strand and "-1".."-3" for the reverse complement.
type Frame struct {
	Label   string
	Offset  int
	Reverse bool
	Protein string
}

// ORF is a start/stop-delimited candidate protein found in a frame.
type ORF struct {
	Sequence string
	Frame    string
}

// ReverseComplement reverses seq and pairs each symbol with its complement.
// The pairing partner of A depends on the alphabet (T for DNA, U for RNA).
func ReverseComplement(seq string, typ sequence.Type) string {
	pairA := byte('T')
	if typ == sequence.RNA {
		pairA = 'U'
	}
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		var c byte
		switch seq[len(seq)-1-i] {
		case 'A':
			c = pairA
		case 'T', 'U':
			c = 'A'
		case 'C':
			c = 'G'
		case 'G':
			c = 'C'
		default:
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// Translate translates seq in frame 0 using the standard genetic code,
// mapping stop codons to '*'. A trailing partial codon is dropped.
func Translate(seq string, typ sequence.Type) string {
	table := dnaCodons
	if typ == sequence.RNA {
		table = rnaCodons
	}
	var b strings.Builder
	b.Grow(len(seq) / 3)
	for i := 0; i+3 <= len(seq); i += 3 {
		aa, ok := table[seq[i:i+3]]
		if !ok {
			aa = 'X'
		}
		b.WriteByte(aa)
	}
	return b.String()
}

// SixFrames translates seq in all six reading frames: forward at offsets
// 0, 1, 2 and reverse complement at offsets 0, 1, 2.
func SixFrames(seq string, typ sequence.Type) [6]Frame {
	var frames [6]Frame
	rc := ReverseComplement(seq, typ)
	labels := [3]string{"1", "2", "3"}
	for off := 0; off < 3; off++ {
		fwd := seq
		rev := rc
		if off < len(fwd) {
			fwd = fwd[off:]
		} else {
			fwd = ""
		}
		if off < len(rev) {
			rev = rev[off:]
		} else {
			rev = ""
		}
		frames[off] = Frame{
			Label:   "+" + labels[off],
			Offset:  off,
			Protein: Translate(fwd, typ),
		}
		frames[off+3] = Frame{
			Label:   "-" + labels[off],
			Offset:  off,
			Reverse: true,
			Protein: Translate(rev, typ),
		}
	}
	return frames
}

// FindORFs scans each translated frame for candidate proteins. Every M
// opens an independent candidate, so candidates within a stop-delimited
// segment may overlap; each non-stop residue extends all open candidates
// and a stop emits and clears them all. Candidates at or below minLen are
// discarded. The surviving candidates from all six frames are returned
// sorted longest-first.
func FindORFs(frames [6]Frame, minLen int) []ORF {
	var orfs []ORF
	for _, f := range frames {
		var active [][]byte
		for i := 0; i < len(f.Protein); i++ {
			aa := f.Protein[i]
			if aa == '*' {
				for _, cand := range active {
					if len(cand) > minLen {
						orfs = append(orfs, ORF{Sequence: string(cand), Frame: f.Label})
					}
				}
				active = nil
				continue
			}
			if aa == 'M' {
				active = append(active, nil)
			}
			for j := range active {
				active[j] = append(active[j], aa)
			}
		}
		// candidates still open at the frame's end are unterminated and
		// not emitted
	}
	sort.SliceStable(orfs, func(i, j int) bool {
		return len(orfs[i].Sequence) > len(orfs[j].Sequence)
	})
	return orfs
}
