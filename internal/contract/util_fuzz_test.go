package contract

import (
	"strings"
	"testing"
)

// FuzzParseHistoryLine fuzzes the rev-list --timestamp parser with arbitrary lines.
func FuzzParseHistoryLine(f *testing.F) {
	seeds := []string{
		"1577880000 " + strings.Repeat("a", 40),
		"-1 " + strings.Repeat("b", 64),
		"",
		"not a line",
		"99999999999999999999 " + strings.Repeat("c", 40),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		rec, err := ParseHistoryLine(line)
		if err == nil && ValidateCommitID(rec.ID) != nil {
			t.Fatalf("accepted invalid id %q from %q", rec.ID, line)
		}
	})
}

// FuzzParseBatchCheckLine fuzzes the cat-file --batch-check parser with arbitrary lines.
func FuzzParseBatchCheckLine(f *testing.F) {
	seeds := []string{
		strings.Repeat("1", 40) + " blob 12",
		strings.Repeat("1", 40) + " missing",
		strings.Repeat("1", 40) + " tree -1",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, line string) {
		_, _ = ParseBatchCheckLine(line)
	})
}
