package vcf

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/inheritance"
)

// ImportOptions controls how variants are turned into genotype records.
type ImportOptions struct {
	Build         genome.Build
	FirstAlleleID int64    // id given to the first allele; later alleles count up
	Samples       []string // samples to import; all header samples when empty
	PassOnly      bool     // skip lines whose FILTER is not PASS or "."
}

// Import holds the alleles, calls and transcript annotations read from a VCF.
type Import struct {
	AlleleIDs   []int64
	Alleles     map[int64]genome.Allele
	Records     []genotype.Record
	Transcripts inheritance.Annotations
	Skipped     int // ALTs skipped (symbolic, missing or filtered)
}

// ReadGenotypes reads every variant from p, splitting multi-allelic lines so
// each ALT becomes an allele with one record per selected sample.
func ReadGenotypes(p *Parser, opts ImportOptions) (*Import, error) {
	columns, err := sampleColumns(p.SampleNames(), opts.Samples)
	if err != nil {
		return nil, err
	}

	csq := newCSQIndex(p.CSQFields())
	next := opts.FirstAlleleID
	if next == 0 {
		next = 1
	}

	imp := &Import{
		Alleles:     make(map[int64]genome.Allele),
		Transcripts: inheritance.Annotations{},
	}

	for {
		line, err := p.Next()
		if err != nil {
			return nil, err
		}
		if line == nil {
			break
		}
		if opts.PassOnly && line.Filter != "PASS" && line.Filter != "." {
			imp.Skipped += line.NumAlts
			continue
		}

		alleles := csqAlleles(line.Ref, line.Alt)
		for _, v := range SplitMultiAllelic(line) {
			if v.Alt == "." || v.Alt == "*" || strings.HasPrefix(v.Alt, "<") {
				imp.Skipped++
				continue
			}

			start, end := v.Interval()
			allele := genome.Allele{
				ID:    next,
				Chrom: v.NormalizeChrom(),
				Start: start,
				End:   end,
				Build: opts.Build,
				Type:  v.Type(),
			}
			next++

			for _, col := range columns {
				call, err := v.Call(col.index)
				if err != nil {
					return nil, &ParseError{Line: p.LineNumber(), Message: fmt.Sprintf("sample %s: %v", col.name, err)}
				}
				imp.Records = append(imp.Records, genotype.Record{
					Allele:      allele,
					SampleID:    col.name,
					Zygosity:    call.Zygosity,
					Likelihoods: call.Likelihoods,
				})
			}

			imp.AlleleIDs = append(imp.AlleleIDs, allele.ID)
			imp.Alleles[allele.ID] = allele
			if ts := csq.transcripts(v, alleles[v.AltIndex-1]); len(ts) > 0 {
				imp.Transcripts[allele.ID] = ts
			}
		}
	}

	return imp, nil
}

type sampleColumn struct {
	name  string
	index int
}

func sampleColumns(header, wanted []string) ([]sampleColumn, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	if len(wanted) == 0 {
		wanted = header
	}
	cols := make([]sampleColumn, 0, len(wanted))
	for _, name := range wanted {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("sample %s not in VCF header", name)
		}
		cols = append(cols, sampleColumn{name: name, index: i})
	}
	return cols, nil
}

// csqIndex locates the sub-fields of VEP-style CSQ entries.
type csqIndex struct {
	allele, feature, symbol int
}

func newCSQIndex(fields []string) csqIndex {
	idx := csqIndex{allele: -1, feature: -1, symbol: -1}
	for i, f := range fields {
		switch f {
		case "Allele":
			idx.allele = i
		case "Feature":
			idx.feature = i
		case "SYMBOL":
			idx.symbol = i
		}
	}
	return idx
}

// transcripts returns the CSQ transcripts annotated for v.Alt. On
// multi-allelic lines entries are matched on the CSQ Allele sub-field against
// allele, the CSQ form of v.Alt; on biallelic lines every entry belongs to the
// single ALT.
func (c csqIndex) transcripts(v *Variant, allele string) []inheritance.Transcript {
	if c.feature < 0 {
		return nil
	}
	raw, ok := v.Info["CSQ"].(string)
	if !ok {
		return nil
	}

	var out []inheritance.Transcript
	seen := make(map[string]bool)
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(entry, "|")
		if v.NumAlts > 1 && c.allele >= 0 && (c.allele >= len(parts) || parts[c.allele] != allele) {
			continue
		}
		if c.feature >= len(parts) || parts[c.feature] == "" || seen[parts[c.feature]] {
			continue
		}
		t := inheritance.Transcript{Name: parts[c.feature]}
		if c.symbol >= 0 && c.symbol < len(parts) {
			t.Symbol = parts[c.symbol]
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out
}

// csqAlleles returns the CSQ Allele value for each ALT in alts. When REF and
// every ALT share their first base it is dropped from each, and an allele
// left empty is written "-".
func csqAlleles(ref, alts string) []string {
	out := strings.Split(alts, ",")
	if ref == "" {
		return out
	}
	first := ref[0]
	for _, alt := range out {
		if alt == "" || alt[0] != first {
			return out
		}
	}
	for i, alt := range out {
		if out[i] = alt[1:]; out[i] == "" {
			out[i] = "-"
		}
	}
	return out
}
