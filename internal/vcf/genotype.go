package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-trio/internal/genotype"
)

// Call is one sample's genotype for the Alt of a (split) variant.
type Call struct {
	Zygosity    genotype.Zygosity
	Likelihoods []float64 // [0/0, 0/a, a/a] or [0, a] for haploid calls; nil if absent
}

// Call returns the i-th sample's call for v.Alt. Zygosity counts the copies
// of this ALT in GT: none is Reference, one is Heterozygous (Homozygous for a
// haploid call), two is Homozygous. A missing GT or missing allele is
// NoCoverage.
func (v *Variant) Call(i int) (Call, error) {
	var c Call
	z, err := zygosity(v.SampleField(i, "GT"), v.AltIndex)
	if err != nil {
		return c, err
	}
	c.Zygosity = z

	c.Likelihoods, err = likelihoods(v.SampleField(i, "PL"), v.AltIndex, v.NumAlts)
	if err != nil {
		return c, err
	}
	return c, nil
}

func zygosity(gt string, altIndex int) (genotype.Zygosity, error) {
	if gt == "" || gt == "." {
		return genotype.NoCoverage, nil
	}

	alleles := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	if len(alleles) == 0 || len(alleles) > 2 {
		return 0, fmt.Errorf("unsupported genotype %q", gt)
	}

	copies := 0
	for _, a := range alleles {
		if a == "." {
			return genotype.NoCoverage, nil
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return 0, fmt.Errorf("invalid genotype %q", gt)
		}
		if n == altIndex {
			copies++
		}
	}

	switch {
	case copies == 0:
		return genotype.Reference, nil
	case len(alleles) == 1 || copies == 2:
		return genotype.Homozygous, nil
	default:
		return genotype.Heterozygous, nil
	}
}

// likelihoods picks the PL entries for reference, heterozygous and
// homozygous genotypes of one ALT. Diploid PL vectors are ordered by VCF
// genotype index, so 0/0, 0/a and a/a sit at 0, a(a+1)/2 and a(a+1)/2+a.
func likelihoods(pl string, altIndex, numAlts int) ([]float64, error) {
	if pl == "" || pl == "." {
		return nil, nil
	}

	parts := strings.Split(pl, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		if p == "." {
			return nil, nil
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PL %q", pl)
		}
		values[i] = f
	}

	a := altIndex
	switch len(values) {
	case (numAlts + 1) * (numAlts + 2) / 2:
		het := a * (a + 1) / 2
		return []float64{values[0], values[het], values[het+a]}, nil
	case numAlts + 1:
		return []float64{values[0], values[a]}, nil
	}
	return nil, fmt.Errorf("PL %q has %d values for %d alternate alleles", pl, len(values), numAlts)
}
