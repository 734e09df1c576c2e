// Package vcf reads multi-sample VCF files into per-allele genotype records.
package vcf

import (
	"github.com/inodb/vibe-trio/internal/genome"
)

// Variant represents a single VCF data line, or one ALT of it after splitting.
type Variant struct {
	Chrom  string                 // Chromosome name (e.g., "12", "chr12")
	Pos    int64                  // 1-based genomic position
	ID     string                 // Variant identifier (e.g., rs ID)
	Ref    string                 // Reference allele
	Alt    string                 // Alternate allele (single allele after splitting)
	Qual   float64                // Quality score
	Filter string                 // Filter status (PASS or filter name)
	Info   map[string]interface{} // INFO field key-value pairs

	// Format holds the FORMAT keys and Samples the matching per-sample values,
	// in header sample order.
	Format  []string
	Samples [][]string

	// AltIndex is the 1-based index of Alt in the original ALT column and
	// NumAlts the number of ALTs on that line. Both are 1 for biallelic lines.
	AltIndex int
	NumAlts  int
}

// Type classifies the variant from its REF and ALT sequences.
func (v *Variant) Type() genome.VariantType {
	return genome.ClassifyVariant(v.Ref, v.Alt)
}

// Interval returns the 0-based half-open interval covered by the REF allele.
func (v *Variant) Interval() (start, end int64) {
	start = v.Pos - 1
	return start, start + int64(len(v.Ref))
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return genome.NormalizeChrom(v.Chrom)
}

// SampleField returns a FORMAT value for the i-th sample, or "" when the key
// or the value is absent.
func (v *Variant) SampleField(i int, key string) string {
	if i < 0 || i >= len(v.Samples) {
		return ""
	}
	for k, name := range v.Format {
		if name == key {
			if k < len(v.Samples[i]) {
				return v.Samples[i][k]
			}
			return ""
		}
	}
	return ""
}
