package genbank

// Package genbank parses nucleotide records in the GenBank/INSDC flat-file
// format: field-per-line header entries, a FEATURES table with fixed-column
// qualifier continuation lines, and an ORIGIN sequence block. Only the
// pieces the pipeline consumes are parsed; everything except the sequence
// itself is optional.

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"seqpipe/internal/sequence"
)

// Fixed column widths of the FEATURES table. A feature key (CDS, gene, ...)
// starts at column 5; qualifier lines are indented to column 21.
const (
	featureIndent   = 5
	qualifierIndent = 21
)

// PlaceholderAccession is used when a record carries neither a VERSION nor
// an ACCESSION line. A missing accession never blocks parsing.
const PlaceholderAccession = "UNKNOWN"

// CdsFeature is one annotated coding region. All fields except Location
// may be empty.
type CdsFeature struct {
	Location         string `json:"location"`
	Gene             string `json:"gene,omitempty"`
	Product          string `json:"product,omitempty"`
	ProteinID        string `json:"protein_id,omitempty"`
	Translation      string `json:"translation,omitempty"`
	CodonStart       int    `json:"codon_start,omitempty"`
	TranslationTable int    `json:"translation_table,omitempty"`
}

// Record is a parsed nucleotide record.
type Record struct {
	Accession    string        `json:"accession"`
	Description  string        `json:"description,omitempty"`
	Sequence     string        `json:"sequence"`
	SequenceType sequence.Type `json:"-"`
	CDS          []CdsFeature  `json:"cds,omitempty"`
}

// PrimaryCDS returns the first CDS carrying a translation, falling back to
// the first CDS present, or nil when the record has none.
func (r *Record) PrimaryCDS() *CdsFeature {
	for i := range r.CDS {
		if r.CDS[i].Translation != "" {
			return &r.CDS[i]
		}
	}
	if len(r.CDS) > 0 {
		return &r.CDS[0]
	}
	return nil
}

// Parse reads a GenBank flat-file record. A missing or invalid ORIGIN
// sequence is the only fatal condition; all other fields degrade to empty
// values.
func Parse(text string) (*Record, error) {
	rec := &Record{}

	var featureLines []string
	var originLines []string
	var definition []string
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "//" {
			section = ""
			continue
		}

		// a non-blank character in column 0 starts a new top-level field
		if len(line) > 0 && line[0] != ' ' {
			fields := strings.Fields(line)
			key := fields[0]
			switch key {
			case "DEFINITION":
				section = "DEFINITION"
				definition = append(definition, strings.TrimSpace(line[len(key):]))
			case "ACCESSION":
				section = ""
				if rec.Accession == "" && len(fields) > 1 {
					rec.Accession = fields[1]
				}
			case "VERSION":
				section = ""
				if len(fields) > 1 {
					rec.Accession = fields[1]
				}
			case "FEATURES":
				section = "FEATURES"
			case "ORIGIN":
				section = "ORIGIN"
			default:
				section = ""
			}
			continue
		}

		switch section {
		case "DEFINITION":
			definition = append(definition, strings.TrimSpace(line))
		case "FEATURES":
			featureLines = append(featureLines, line)
		case "ORIGIN":
			originLines = append(originLines, line)
		}
	}

	rec.Description = strings.TrimSuffix(strings.Join(definition, " "), ".")
	if rec.Accession == "" {
		rec.Accession = PlaceholderAccession
	}

	if len(originLines) == 0 {
		return nil, fmt.Errorf("genbank: record has no ORIGIN sequence block")
	}
	raw := stripNonLetters(strings.Join(originLines, ""))
	seq, typ, err := sequence.Classify(raw)
	if err != nil {
		return nil, fmt.Errorf("genbank: invalid ORIGIN sequence: %w", err)
	}
	rec.Sequence = seq
	rec.SequenceType = typ

	rec.CDS = parseCDS(featureLines)
	return rec, nil
}

// stripNonLetters removes position numbers, whitespace and any other
// non-letter characters from an ORIGIN block and upper-cases the rest.
func stripNonLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// parseCDS splits the FEATURES block into top-level feature entries and
// extracts one CdsFeature per CDS entry, in document order.
func parseCDS(lines []string) []CdsFeature {
	var features []CdsFeature
	var entry []string
	key := ""

	flush := func() {
		if key == "CDS" && len(entry) > 0 {
			features = append(features, parseOneCDS(entry))
		}
		entry = nil
	}

	for _, line := range lines {
		if len(line) > featureIndent && line[featureIndent] != ' ' && strings.TrimSpace(line[:featureIndent]) == "" {
			flush()
			fields := strings.Fields(line)
			key = fields[0]
			entry = append(entry, line)
			continue
		}
		entry = append(entry, line)
	}
	flush()
	return features
}

// parseOneCDS splits a CDS entry body into qualifier name/value pairs. A
// value line without a '/' prefix at the qualifier column continues the
// previous qualifier's value.
func parseOneCDS(entry []string) CdsFeature {
	cds := CdsFeature{}

	// the first line carries the location, possibly continued until the
	// first qualifier line
	var loc []string
	i := 0
	for ; i < len(entry); i++ {
		trimmed := strings.TrimSpace(entry[i])
		if strings.HasPrefix(trimmed, "/") {
			break
		}
		if i == 0 {
			fields := strings.Fields(trimmed)
			if len(fields) > 1 {
				loc = append(loc, fields[1])
			}
		} else {
			loc = append(loc, trimmed)
		}
	}
	cds.Location = strings.Join(loc, "")

	name := ""
	value := ""
	assign := func() {
		if name == "" {
			return
		}
		setQualifier(&cds, name, cleanQualifier(name, value))
		name, value = "", ""
	}
	for ; i < len(entry); i++ {
		trimmed := strings.TrimSpace(entry[i])
		if strings.HasPrefix(trimmed, "/") {
			assign()
			body := trimmed[1:]
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				name = body[:eq]
				value = body[eq+1:]
			} else {
				name = body
				value = ""
			}
			continue
		}
		// continuation of the previous qualifier's value
		value += " " + trimmed
	}
	assign()
	return cds
}

// cleanQualifier strips one leading and one trailing quote and collapses
// internal whitespace. The translation qualifier is a line-wrapped
// amino-acid string, so it additionally keeps only letters and '*'.
func cleanQualifier(name, value string) string {
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	value = strings.Join(strings.Fields(value), " ")
	if name == "translation" {
		var b strings.Builder
		b.Grow(len(value))
		for i := 0; i < len(value); i++ {
			c := value[i]
			switch {
			case c >= 'a' && c <= 'z':
				b.WriteByte(c - 'a' + 'A')
			case (c >= 'A' && c <= 'Z') || c == '*':
				b.WriteByte(c)
			}
		}
		value = b.String()
	}
	return value
}

func setQualifier(cds *CdsFeature, name, value string) {
	switch name {
	case "gene":
		cds.Gene = value
	case "product":
		cds.Product = value
	case "protein_id":
		cds.ProteinID = value
	case "translation":
		cds.Translation = value
	case "codon_start":
		if n, err := strconv.Atoi(value); err == nil {
			cds.CodonStart = n
		}
	case "transl_table":
		if n, err := strconv.Atoi(value); err == nil {
			cds.TranslationTable = n
		}
	}
}
