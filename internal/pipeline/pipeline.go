package pipeline

// Package pipeline composes the parsing and scoring packages into one
// analysis pass: nucleotide record or raw text in, ranked candidates,
// mature-peptide report and optional structure confidence out. Everything
// here is pure; fetching record or structure text is the caller's job.

import (
	"fmt"
	"strings"
	"time"

	"seqpipe/internal/cleave"
	"seqpipe/internal/fasta"
	"seqpipe/internal/genbank"
	"seqpipe/internal/pdb"
	"seqpipe/internal/rank"
	"seqpipe/internal/sequence"
	"seqpipe/internal/translate"
)

// Defaults for the scan thresholds when Options leaves them unset.
const (
	DefaultMinORFLength     = 25
	DefaultMinPeptideLength = cleave.DefaultMinFragmentLength
)

// Options tunes an analysis pass.
type Options struct {
	MinORFLength     int
	MinPeptideLength int
}

func (o Options) withDefaults() Options {
	if o.MinORFLength <= 0 {
		o.MinORFLength = DefaultMinORFLength
	}
	if o.MinPeptideLength <= 0 {
		o.MinPeptideLength = DefaultMinPeptideLength
	}
	return o
}

// RecordSummary is the part of a parsed nucleotide record kept in the
// analysis output.
type RecordSummary struct {
	Accession      string `json:"accession"`
	Description    string `json:"description,omitempty"`
	SequenceType   string `json:"sequence_type"`
	SequenceLength int    `json:"sequence_length"`
	CDSCount       int    `json:"cds_count"`
}

// StructureSummary is the part of a parsed structure kept in the analysis
// output.
type StructureSummary struct {
	Title          string   `json:"title"`
	Organism       string   `json:"organism,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Method         string   `json:"method,omitempty"`
	Resolution     *float64 `json:"resolution,omitempty"`
	ChainCount     int      `json:"chain_count"`
}

// Analysis is the value record one pipeline pass produces. It is what
// gets serialized into database.json and rendered by the TUI and web UIs.
type Analysis struct {
	Input       string               `json:"input"`
	Record      *RecordSummary       `json:"record,omitempty"`
	Candidates  []rank.Candidate     `json:"candidates,omitempty"`
	Precursor   string               `json:"precursor,omitempty"`
	Peptides    *cleave.Report       `json:"peptides,omitempty"`
	Structure   *StructureSummary    `json:"structure,omitempty"`
	Confidence  *pdb.ConfidenceStats `json:"confidence,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// AnalyzeRecord runs the full pass over GenBank flat-file text: parse,
// six-frame translation, ORF scan, candidate ranking and cleavage of the
// top-ranked precursor.
func AnalyzeRecord(text string, opts Options) (*Analysis, error) {
	opts = opts.withDefaults()
	rec, err := genbank.Parse(text)
	if err != nil {
		return nil, err
	}

	frames := translate.SixFrames(rec.Sequence, rec.SequenceType)
	orfs := translate.FindORFs(frames, opts.MinORFLength)

	// the whole-record frame +1 translation joins the ranked streams with
	// stop symbols dropped, so a record that is one clean CDS dedupes
	// against its own annotation
	whole := strings.ReplaceAll(translate.Translate(rec.Sequence, rec.SequenceType), "*", "")
	candidates := rank.Rank(rec.CDS, whole, orfs)

	a := &Analysis{
		Input: rec.Accession,
		Record: &RecordSummary{
			Accession:      rec.Accession,
			Description:    rec.Description,
			SequenceType:   rec.SequenceType.String(),
			SequenceLength: len(rec.Sequence),
			CDSCount:       len(rec.CDS),
		},
		Candidates:  candidates,
		GeneratedAt: time.Now().UTC(),
	}
	if len(candidates) > 0 {
		a.Precursor = candidates[0].Sequence
		report := cleave.Analyze(a.Precursor, opts.MinPeptideLength)
		a.Peptides = &report
	}
	return a, nil
}

// AnalyzeRaw runs the pass over user-pasted text, which may be bare
// sequence or FASTA and either nucleotide or protein. Nucleotide input
// goes through the six-frame scan; protein input is treated directly as
// the precursor.
func AnalyzeRaw(input string, opts Options) (*Analysis, error) {
	opts = opts.withDefaults()
	raw := fasta.Sequence(input)
	if raw == "" {
		return nil, fmt.Errorf("pipeline: no sequence in input")
	}

	a := &Analysis{Input: "raw input", GeneratedAt: time.Now().UTC()}

	seq, typ, nErr := sequence.Classify(raw)
	if nErr == nil {
		frames := translate.SixFrames(seq, typ)
		orfs := translate.FindORFs(frames, opts.MinORFLength)
		a.Candidates = rank.Rank(nil, "", orfs)
		if len(a.Candidates) == 0 {
			return nil, fmt.Errorf("pipeline: no ORF of at least %d residues in %s input", opts.MinORFLength, typ)
		}
		a.Precursor = a.Candidates[0].Sequence
	} else {
		prot, pErr := sequence.ValidateProtein(raw, 0)
		if pErr != nil {
			return nil, fmt.Errorf("pipeline: input is neither nucleotide (%v) nor protein (%v)", nErr, pErr)
		}
		a.Precursor = prot
	}

	report := cleave.Analyze(a.Precursor, opts.MinPeptideLength)
	a.Peptides = &report
	return a, nil
}

// AttachStructure parses structure-file text and fills the analysis'
// structure summary and confidence statistics. Missing confidence data
// leaves Confidence nil, which renderers treat as "not a prediction".
func AttachStructure(a *Analysis, structureText string) {
	s := pdb.Parse(structureText)
	a.Structure = &StructureSummary{
		Title:          s.Title,
		Organism:       s.Organism,
		Classification: s.Classification,
		Method:         s.Method,
		Resolution:     s.Resolution,
		ChainCount:     len(s.Chains),
	}
	a.Confidence = pdb.Confidence(structureText)
}
