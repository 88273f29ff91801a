package rank

// Package rank merges protein candidates from annotated CDS translations,
// the record-level translation and six-frame ORF scans into one scored,
// de-duplicated list. Annotation evidence outranks raw length: a short CDS
// translation still sorts above a long unannotated ORF.

import (
	"fmt"
	"sort"
	"strings"

	"seqpipe/internal/genbank"
	"seqpipe/internal/sequence"
	"seqpipe/internal/translate"
)

// Source identifies the provenance stream a candidate came from.
type Source string

const (
	SourceCDS  Source = "cds_translation"
	SourceNCBI Source = "ncbi_translation"
	SourceORF  Source = "orf_frame"
)

// Score bases per provenance stream. Each candidate adds its length, and
// CDS translations carrying a protein_id add an extra bonus.
const (
	cdsBase        = 5000
	ncbiBase       = 3500
	orfBase        = 1000
	proteinIDBonus = 50
)

// Candidate is one ranked protein candidate. IDs are assigned after
// sorting and are session-local: when scores tie, a rerun may map the same
// sequence to a different ID.
type Candidate struct {
	ID          string `json:"id"`
	Sequence    string `json:"sequence"`
	Length      int    `json:"length"`
	Score       int    `json:"score"`
	SourceKind  Source `json:"source_kind"`
	Label       string `json:"label"`
	Evidence    string `json:"evidence"`
	CDSLocation string `json:"cds_location,omitempty"`
	Gene        string `json:"gene,omitempty"`
	Product     string `json:"product,omitempty"`
	ProteinID   string `json:"protein_id,omitempty"`
}

// Rank merges the three provenance streams into one ordered list. Two
// candidates sharing a normalized sequence collapse into one: the
// higher-scoring candidate keeps its metadata, absent fields fall back to
// the other's, and evidence strings are concatenated rather than dropped.
// recordTranslation is the record-level translation (empty to skip).
func Rank(cds []genbank.CdsFeature, recordTranslation string, orfs []translate.ORF) []Candidate {
	byKey := map[string]*Candidate{}
	var order []string

	add := func(c Candidate) {
		key := sequence.Normalize(c.Sequence)
		if key == "" {
			return
		}
		c.Sequence = key
		c.Length = len(key)
		existing, ok := byKey[key]
		if !ok {
			cc := c
			byKey[key] = &cc
			order = append(order, key)
			return
		}
		*existing = merge(*existing, c)
	}

	for i, f := range cds {
		if f.Translation == "" {
			continue
		}
		score := cdsBase + len(f.Translation)
		if f.ProteinID != "" {
			score += proteinIDBonus
		}
		add(Candidate{
			Sequence:    f.Translation,
			Score:       score,
			SourceKind:  SourceCDS,
			Label:       cdsLabel(f, i),
			Evidence:    fmt.Sprintf("annotated CDS %s", f.Location),
			CDSLocation: f.Location,
			Gene:        f.Gene,
			Product:     f.Product,
			ProteinID:   f.ProteinID,
		})
	}

	if recordTranslation != "" {
		add(Candidate{
			Sequence:   recordTranslation,
			Score:      ncbiBase + len(sequence.Normalize(recordTranslation)),
			SourceKind: SourceNCBI,
			Label:      "record translation",
			Evidence:   "record-level translation",
		})
	}

	for _, orf := range orfs {
		add(Candidate{
			Sequence:   orf.Sequence,
			Score:      orfBase + len(orf.Sequence),
			SourceKind: SourceORF,
			Label:      fmt.Sprintf("ORF frame %s", orf.Frame),
			Evidence:   fmt.Sprintf("six-frame ORF scan, frame %s", orf.Frame),
		})
	}

	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Length > out[j].Length
	})
	for i := range out {
		out[i].ID = fmt.Sprintf("candidate-%d", i+1)
	}
	return out
}

// merge resolves two candidates with the same normalized sequence. The
// higher score wins every field; nil-ish fields fall back to the loser's.
func merge(a, b Candidate) Candidate {
	win, lose := a, b
	if b.Score > a.Score {
		win, lose = b, a
	}
	if win.Gene == "" {
		win.Gene = lose.Gene
	}
	if win.Product == "" {
		win.Product = lose.Product
	}
	if win.ProteinID == "" {
		win.ProteinID = lose.ProteinID
	}
	if win.CDSLocation == "" {
		win.CDSLocation = lose.CDSLocation
	}
	win.Evidence = joinEvidence(win.Evidence, lose.Evidence)
	return win
}

// joinEvidence concatenates evidence strings with '|', dropping duplicates.
func joinEvidence(a, b string) string {
	seen := map[string]bool{}
	var parts []string
	for _, s := range append(strings.Split(a, "|"), strings.Split(b, "|")...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	return strings.Join(parts, "|")
}

func cdsLabel(f genbank.CdsFeature, i int) string {
	switch {
	case f.Product != "":
		return f.Product
	case f.Gene != "":
		return f.Gene
	}
	return fmt.Sprintf("CDS %d", i+1)
}
