package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/inheritance"
)

// Summary accumulates allele counts per inheritance pattern across analyses.
type Summary struct {
	analyses int
	skipped  int
	input    int
	retained int
	counts   map[inheritance.Pattern]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[inheritance.Pattern]int)}
}

// Add records one analysis result.
func (s *Summary) Add(res *familyfilter.Result) {
	s.analyses++
	if res.Skipped {
		s.skipped++
	}
	s.input += len(res.Input)
	s.retained += len(res.Retained)
	for p, set := range res.Matches {
		s.counts[p] += len(set)
	}
}

// Counts returns the number of matched alleles per pattern.
func (s *Summary) Counts() map[inheritance.Pattern]int {
	return s.counts
}

// Retained returns the total number of retained alleles.
func (s *Summary) Retained() int {
	return s.retained
}

// WriteSummary writes totals and pattern counts to the given writer.
func (s *Summary) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\nInheritance Filter Summary (%d analyses, %d skipped):\n", s.analyses, s.skipped)
	fmt.Fprintf(w, "  %-32s%d\n", "input alleles", s.input)
	fmt.Fprintf(w, "  %-32s%d\n", "retained alleles", s.retained)

	// Sort patterns by count descending
	type patternCount struct {
		pattern inheritance.Pattern
		count   int
	}
	var sorted []patternCount
	for p, n := range s.counts {
		sorted = append(sorted, patternCount{p, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].pattern < sorted[j].pattern
	})

	if len(sorted) > 0 {
		fmt.Fprintf(w, "\n  Patterns:\n")
	}
	for _, pc := range sorted {
		fmt.Fprintf(w, "    %-30s%d\n", pc.pattern, pc.count)
	}
}
