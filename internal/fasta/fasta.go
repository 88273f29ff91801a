package fasta

// Package fasta contains minimal helpers to parse FASTA formatted data.
// Pipeline input pasted into a form or read from a file may arrive either
// as bare sequence text or as FASTA records; parsing stays simple and
// conservative.

import (
	"bufio"
	"io"
	"strings"
)

// Record is a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// Parse reads FASTA records from r. Lines beginning with '>' denote
// headers; sequence lines are concatenated. Input without any header is
// returned as a single record with an empty header.
func Parse(r io.Reader) []Record {
	scanner := bufio.NewScanner(r)
	var records []Record
	var current Record
	seen := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ">") {
			if seen {
				records = append(records, current)
			}
			current = Record{Header: line[1:]}
			seen = true
		} else if line != "" {
			current.Sequence += line
			seen = true
		}
	}
	if seen {
		records = append(records, current)
	}
	return records
}

// Sequence extracts the first sequence from pasted text, tolerating an
// optional FASTA header. Returns an empty string when there is none.
func Sequence(text string) string {
	records := Parse(strings.NewReader(text))
	if len(records) == 0 {
		return ""
	}
	return records[0].Sequence
}
