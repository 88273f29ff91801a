package cleave

import "testing"

func TestAnalyzeTwoSites(t *testing.T) {
	// spaces are stripped before scanning
	report := Analyze("AAAAKRBBBBBB RRCCCC", 4)
	if len(report.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %+v", report.Sites)
	}
	kr, rr := report.Sites[0], report.Sites[1]
	if kr.Motif != "KR" || kr.Start != 5 || kr.End != 6 {
		t.Fatalf("unexpected first site: %+v", kr)
	}
	if rr.Motif != "RR" || rr.Start != 13 || rr.End != 14 {
		t.Fatalf("unexpected second site: %+v", rr)
	}

	if len(report.Fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %+v", report.Fragments)
	}
	want := []struct {
		seq        string
		start, end int
		before     string
		after      string
	}{
		{"AAAA", 1, 4, "", "KR"},
		{"BBBBBB", 7, 12, "KR", "RR"},
		{"CCCC", 15, 18, "RR", ""},
	}
	for i, w := range want {
		f := report.Fragments[i]
		if f.Sequence != w.seq || f.Start != w.start || f.End != w.end {
			t.Fatalf("fragment %d: %+v", i, f)
		}
		if f.Length != len(w.seq) {
			t.Fatalf("fragment %d length: %+v", i, f)
		}
		if f.PrecedingCleavage != w.before || f.FollowingCleavage != w.after {
			t.Fatalf("fragment %d motifs: %+v", i, f)
		}
	}
}

func TestAnalyzeMotifRun(t *testing.T) {
	// back-to-back motifs collapse into a single maximal site
	report := Analyze("AAAAAAAAKRKRBBBBBBBB", 8)
	if len(report.Sites) != 1 {
		t.Fatalf("expected 1 site, got %+v", report.Sites)
	}
	s := report.Sites[0]
	if s.Motif != "KRKR" || s.Start != 9 || s.End != 12 {
		t.Fatalf("unexpected site: %+v", s)
	}
	if len(report.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %+v", report.Fragments)
	}
}

func TestAnalyzeMinLengthFilter(t *testing.T) {
	report := Analyze("AAKRBBBBBBBB", 8)
	if len(report.Fragments) != 1 || report.Fragments[0].Sequence != "BBBBBBBB" {
		t.Fatalf("expected only the long fragment, got %+v", report.Fragments)
	}
}

func TestAnalyzeDefaultMinimum(t *testing.T) {
	report := Analyze("AAAAAAA", 0)
	if report.MinFragmentLength != DefaultMinFragmentLength {
		t.Fatalf("expected default minimum, got %d", report.MinFragmentLength)
	}
	// seven residues is below the default floor of eight
	if len(report.Fragments) != 0 {
		t.Fatalf("expected no fragments, got %+v", report.Fragments)
	}
}

func TestAnalyzeNoSites(t *testing.T) {
	report := Analyze("AAAAAAAAAA", 8)
	if len(report.Sites) != 0 {
		t.Fatalf("expected no sites, got %+v", report.Sites)
	}
	if len(report.Fragments) != 1 || report.Fragments[0].Sequence != "AAAAAAAAAA" {
		t.Fatalf("expected whole precursor as one fragment, got %+v", report.Fragments)
	}
	f := report.Fragments[0]
	if f.PrecedingCleavage != "" || f.FollowingCleavage != "" {
		t.Fatalf("expected empty terminal motifs, got %+v", f)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report := Analyze("   ", 8)
	if len(report.Sites) != 0 || len(report.Fragments) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
