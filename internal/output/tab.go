// Package output provides inheritance filter result formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/genotype"
)

// TabWriter writes one line per input allele in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Analysis",
			"Allele",
			"Location",
			"Type",
			"Proband",
			"Father",
			"Mother",
			"Patterns",
			"Retained",
			"DeNovo_probability",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes every input allele of a result, ordered by allele id.
// Skipped analyses have no genotype table, so their calls print as "-".
func (tw *TabWriter) Write(res *familyfilter.Result) error {
	analysis := strconv.FormatInt(res.AnalysisID, 10)

	for _, id := range res.Input.Sorted() {
		location, variantType := "-", "-"
		proband, father, mother := "-", "-", "-"
		if res.Table != nil {
			if row, ok := res.Table.Row(id); ok {
				location = row.Allele.Location()
				if row.Allele.Type != "" {
					variantType = string(row.Allele.Type)
				}
				proband = zygosity(row, res.Trio.Proband.ID)
				father = zygosity(row, res.Trio.Father.ID)
				mother = zygosity(row, res.Trio.Mother.ID)
			}
		}

		patterns := "-"
		if ps := res.Patterns(id); len(ps) > 0 {
			names := make([]string, len(ps))
			for i, p := range ps {
				names[i] = string(p)
			}
			patterns = strings.Join(names, ",")
		}

		retained := "NO"
		if res.Retained.Has(id) {
			retained = "YES"
		}

		probability := "-"
		if p, ok := res.DenovoProbabilities[id]; ok {
			probability = p.String()
		}

		values := []string{
			analysis,
			strconv.FormatInt(id, 10),
			location,
			variantType,
			proband,
			father,
			mother,
			patterns,
			retained,
			probability,
		}
		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func zygosity(row *genotype.Row, sampleID string) string {
	e, ok := row.Samples[sampleID]
	if !ok {
		return "-"
	}
	return e.Zygosity.String()
}
