package pdb

import (
	"bufio"
	"strconv"
	"strings"
)

// ConfidenceStats summarizes per-residue confidence scores read from the
// B-factor column of a predicted structure (pLDDT convention). Bucket
// thresholds are >=90, >=70, >=50 and below.
type ConfidenceStats struct {
	AtomCount    int     `json:"atom_count"`
	ResidueCount int     `json:"residue_count"`
	Mean         float64 `json:"mean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	VeryHigh     int     `json:"very_high"`
	Confident    int     `json:"confident"`
	Low          int     `json:"low"`
	VeryLow      int     `json:"very_low"`
}

type residueKey struct {
	chain   byte
	seq     string
	insCode byte
}

// Confidence reads the B-factor column of ATOM records as a per-atom
// confidence score, averages within each (chain, residue number, insertion
// code) group and computes summary statistics over residues. It returns
// nil when the text contains no parseable ATOM B-factor data; absence of
// confidence data is a normal outcome for experimental structures.
func Confidence(text string) *ConfidenceStats {
	sums := map[residueKey]float64{}
	counts := map[residueKey]int{}
	var order []residueKey
	atoms := 0

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 66 || !strings.HasPrefix(line, "ATOM") {
			continue
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
		if err != nil {
			continue
		}
		key := residueKey{
			chain:   line[21],
			seq:     strings.TrimSpace(line[22:26]),
			insCode: line[26],
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		sums[key] += b
		counts[key]++
		atoms++
	}

	if atoms == 0 {
		return nil
	}

	stats := &ConfidenceStats{AtomCount: atoms, ResidueCount: len(order)}
	total := 0.0
	for i, key := range order {
		score := sums[key] / float64(counts[key])
		total += score
		if i == 0 || score < stats.Min {
			stats.Min = score
		}
		if i == 0 || score > stats.Max {
			stats.Max = score
		}
		switch {
		case score >= 90:
			stats.VeryHigh++
		case score >= 70:
			stats.Confident++
		case score >= 50:
			stats.Low++
		default:
			stats.VeryLow++
		}
	}
	stats.Mean = total / float64(len(order))
	return stats
}
