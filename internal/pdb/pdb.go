package pdb

// Package pdb parses structure files in the fixed-column PDB format. All
// metadata fields are optional: a file with only coordinates still parses
// to a usable Structure. Confidence extraction over ATOM B-factors lives
// in confidence.go.

import (
	"bufio"
	"strconv"
	"strings"
)

// DefaultTitle is used when a structure file carries no TITLE records.
const DefaultTitle = "Untitled structure"

// Chain is one SEQRES chain, reduced to a one-letter amino-acid sequence.
type Chain struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// Structure holds the metadata and per-chain sequences of a parsed file.
// Absent fields are empty strings; Resolution is nil when no REMARK 2
// resolution record exists.
type Structure struct {
	Title          string   `json:"title"`
	Organism       string   `json:"organism,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Method         string   `json:"method,omitempty"`
	Resolution     *float64 `json:"resolution,omitempty"`
	Chains         []Chain  `json:"chains,omitempty"`
}

// Chain returns the chain with the given identifier, or nil.
func (s *Structure) Chain(id string) *Chain {
	for i := range s.Chains {
		if s.Chains[i].ID == id {
			return &s.Chains[i]
		}
	}
	return nil
}

// Parse reads a PDB-format structure file. No field absence is an error.
func Parse(text string) *Structure {
	s := &Structure{}

	var titleParts []string
	var sourceLines []string
	chainSeqs := map[string][]byte{}
	var chainOrder []string

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		switch strings.TrimSpace(line[:6]) {
		case "HEADER":
			if len(line) > 10 {
				s.Classification = strings.TrimSpace(sliceCols(line, 10, 50))
			}
		case "TITLE":
			// columns 0-9 are the record name and continuation number
			if len(line) > 10 {
				titleParts = append(titleParts, strings.TrimSpace(line[10:]))
			}
		case "SOURCE":
			if len(line) > 10 {
				sourceLines = append(sourceLines, strings.TrimSpace(line[10:]))
			}
		case "EXPDTA":
			if len(line) > 10 && s.Method == "" {
				s.Method = strings.TrimSpace(line[10:])
			}
		case "REMARK":
			parseResolution(s, line)
		case "SEQRES":
			parseSeqres(line, chainSeqs, &chainOrder)
		}
	}

	s.Title = strings.Join(titleParts, " ")
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	s.Organism = findOrganism(sourceLines)

	for _, id := range chainOrder {
		s.Chains = append(s.Chains, Chain{ID: id, Sequence: string(chainSeqs[id])})
	}
	return s
}

// parseResolution reads the numeric Angstrom value from the
// "REMARK   2 RESOLUTION." record.
func parseResolution(s *Structure, line string) {
	if s.Resolution != nil || !strings.HasPrefix(line, "REMARK   2 RESOLUTION.") {
		return
	}
	rest := line[len("REMARK   2 RESOLUTION."):]
	for _, f := range strings.Fields(rest) {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			s.Resolution = &v
			return
		}
	}
}

// parseSeqres groups three-letter residue codes by the chain identifier in
// column 11. Residues are in columns 19-21, 23-25, ..., 67-69.
func parseSeqres(line string, chainSeqs map[string][]byte, order *[]string) {
	if len(line) < 12 {
		return
	}
	id := strings.TrimSpace(line[11:12])
	if id == "" {
		id = "_"
	}
	if _, seen := chainSeqs[id]; !seen {
		*order = append(*order, id)
	}
	for i := 19; i+3 <= len(line); i += 4 {
		code := strings.TrimSpace(line[i : i+3])
		if code == "" {
			continue
		}
		chainSeqs[id] = append(chainSeqs[id], abbrevToOne(code))
	}
}

// findOrganism reads SOURCE lines for an ORGANISM_SCIENTIFIC qualifier,
// first per line and then over the joined block to handle values split
// across continuations.
func findOrganism(lines []string) string {
	// per-line first; a line whose value lacks the ';' terminator is
	// continued on the next SOURCE line, so it is left to the joined pass
	for _, l := range lines {
		if v := organismFrom(l, true); v != "" {
			return v
		}
	}
	return organismFrom(strings.Join(lines, " "), false)
}

func organismFrom(s string, requireTerminator bool) string {
	const tag = "ORGANISM_SCIENTIFIC:"
	i := strings.Index(s, tag)
	if i < 0 {
		return ""
	}
	v := s[i+len(tag):]
	j := strings.IndexByte(v, ';')
	if j < 0 {
		if requireTerminator {
			return ""
		}
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(v[:j])
}

// sliceCols slices line by fixed columns, tolerating short lines.
func sliceCols(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
