// Package genome provides allele coordinates and reference-build aware region logic.
package genome

import (
	"fmt"
	"strings"
)

// Build identifies a reference genome assembly.
type Build string

// Supported and recognised reference builds.
const (
	GRCh37 Build = "GRCh37"
	GRCh38 Build = "GRCh38"
)

// ParseBuild normalizes a build name (case-insensitive, "hg19" accepted as GRCh37).
// Unrecognised names are returned unchanged.
func ParseBuild(s string) Build {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grch37", "hg19", "b37":
		return GRCh37
	case "grch38", "hg38":
		return GRCh38
	}
	return Build(s)
}

// VariantType classifies the kind of sequence change an allele represents.
type VariantType string

// Variant types.
const (
	SNP       VariantType = "SNP"
	Insertion VariantType = "insertion"
	Deletion  VariantType = "deletion"
	Indel     VariantType = "indel"
	MNV       VariantType = "MNV"
)

// ClassifyVariant derives the variant type from reference and alternate sequences.
func ClassifyVariant(ref, alt string) VariantType {
	switch {
	case len(ref) == 1 && len(alt) == 1:
		return SNP
	case len(ref) == len(alt):
		return MNV
	case len(ref) < len(alt) && strings.HasPrefix(alt, ref):
		return Insertion
	case len(ref) > len(alt) && strings.HasPrefix(ref, alt):
		return Deletion
	default:
		return Indel
	}
}

// Allele is a single alternate allele at a genomic location.
type Allele struct {
	ID    int64       // Allele identifier, unique within a snapshot
	Chrom string      // Chromosome without "chr" prefix (e.g., "X", "12")
	Start int64       // 0-based start (inclusive)
	End   int64       // 0-based end (exclusive)
	Build Build       // Reference genome build
	Type  VariantType // SNP, indel, ...
}

// XMinusPAR reports whether the allele lies on chromosome X outside the
// pseudoautosomal regions.
func (a Allele) XMinusPAR() (bool, error) {
	return IsXMinusPAR(a.Chrom, a.Start, a.End, a.Build)
}

// Location formats the allele as chrom:start-end using 1-based inclusive coordinates.
func (a Allele) Location() string {
	return fmt.Sprintf("%s:%d-%d", a.Chrom, a.Start+1, a.End)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		return chrom[3:]
	}
	return chrom
}
