package report

// Package report renders an analysis as plain text for download or for
// piping into other tools. The layout is stable line-oriented text, one
// section per populated part of the analysis.

import (
	"fmt"
	"strings"
	"time"

	"seqpipe/internal/pipeline"
)

// Text renders the analysis as a plain-text report.
func Text(a *pipeline.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "seqpipe analysis report\n")
	fmt.Fprintf(&b, "input: %s\n", a.Input)
	if !a.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "generated: %s\n", a.GeneratedAt.Format(time.RFC3339))
	}

	if r := a.Record; r != nil {
		b.WriteString("\n[record]\n")
		fmt.Fprintf(&b, "accession: %s\n", r.Accession)
		if r.Description != "" {
			fmt.Fprintf(&b, "description: %s\n", r.Description)
		}
		fmt.Fprintf(&b, "sequence: %d nt (%s)\n", r.SequenceLength, r.SequenceType)
		fmt.Fprintf(&b, "annotated CDS features: %d\n", r.CDSCount)
	}

	if len(a.Candidates) > 0 {
		b.WriteString("\n[candidates]\n")
		for _, c := range a.Candidates {
			fmt.Fprintf(&b, "%s  score=%d  len=%d  source=%s  %s\n", c.ID, c.Score, c.Length, c.SourceKind, c.Label)
			if c.Evidence != "" {
				fmt.Fprintf(&b, "  evidence: %s\n", c.Evidence)
			}
			for _, line := range wrapSequence(c.Sequence, 60) {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}

	if a.Precursor != "" {
		b.WriteString("\n[precursor]\n")
		for _, line := range wrapSequence(a.Precursor, 60) {
			fmt.Fprintf(&b, "%s\n", line)
		}
	}

	if p := a.Peptides; p != nil {
		b.WriteString("\n[cleavage]\n")
		fmt.Fprintf(&b, "minimum fragment length: %d\n", p.MinFragmentLength)
		if len(p.Sites) == 0 {
			b.WriteString("no dibasic sites found\n")
		}
		for _, s := range p.Sites {
			fmt.Fprintf(&b, "site %s at %d-%d\n", s.Motif, s.Start, s.End)
		}
		for _, f := range p.Fragments {
			fmt.Fprintf(&b, "fragment %d-%d (%d aa): %s\n", f.Start, f.End, f.Length, f.Sequence)
		}
	}

	if s := a.Structure; s != nil {
		b.WriteString("\n[structure]\n")
		fmt.Fprintf(&b, "title: %s\n", s.Title)
		if s.Organism != "" {
			fmt.Fprintf(&b, "organism: %s\n", s.Organism)
		}
		if s.Classification != "" {
			fmt.Fprintf(&b, "classification: %s\n", s.Classification)
		}
		if s.Method != "" {
			fmt.Fprintf(&b, "method: %s\n", s.Method)
		}
		if s.Resolution != nil {
			fmt.Fprintf(&b, "resolution: %.2f A\n", *s.Resolution)
		}
		fmt.Fprintf(&b, "chains: %d\n", s.ChainCount)
	}

	if c := a.Confidence; c != nil {
		b.WriteString("\n[confidence]\n")
		fmt.Fprintf(&b, "residues: %d (from %d atoms)\n", c.ResidueCount, c.AtomCount)
		fmt.Fprintf(&b, "pLDDT mean %.1f, min %.1f, max %.1f\n", c.Mean, c.Min, c.Max)
		fmt.Fprintf(&b, "very high (>=90): %d\n", c.VeryHigh)
		fmt.Fprintf(&b, "confident (70-90): %d\n", c.Confident)
		fmt.Fprintf(&b, "low (50-70): %d\n", c.Low)
		fmt.Fprintf(&b, "very low (<50): %d\n", c.VeryLow)
	}

	return b.String()
}

func wrapSequence(seq string, width int) []string {
	if seq == "" {
		return nil
	}
	var lines []string
	for len(seq) > width {
		lines = append(lines, seq[:width])
		seq = seq[width:]
	}
	return append(lines, seq)
}
