package denovo

import (
	"fmt"

	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

func diploidState(z genotype.Zygosity) (int, error) {
	switch z {
	case genotype.Reference:
		return 0, nil
	case genotype.Heterozygous:
		return 1, nil
	case genotype.Homozygous:
		return 2, nil
	}
	return 0, fmt.Errorf("no genotype state for %s", z)
}

func hemizygousState(z genotype.Zygosity) (int, error) {
	switch z {
	case genotype.Reference:
		return 0, nil
	case genotype.Homozygous:
		return 1, nil
	}
	return 0, fmt.Errorf("no hemizygous genotype state for %s", z)
}

// ModeFor maps a trio row's zygosity calls to genotype state indices.
// The father, and a male proband, use hemizygous states on X outside PAR.
func ModeFor(r genotype.TrioRow) ([3]int, error) {
	var mode [3]int
	var err error

	fatherState := diploidState
	childState := diploidState
	if r.XMinusPAR {
		fatherState = hemizygousState
		if r.Proband.Sex == pedigree.Male {
			childState = hemizygousState
		}
	}

	if mode[0], err = fatherState(r.Father.Zygosity); err != nil {
		return mode, fmt.Errorf("father: %w", err)
	}
	if mode[1], err = diploidState(r.Mother.Zygosity); err != nil {
		return mode, fmt.Errorf("mother: %w", err)
	}
	if mode[2], err = childState(r.Proband.Zygosity); err != nil {
		return mode, fmt.Errorf("proband: %w", err)
	}
	return mode, nil
}

// ForRow computes the de novo posterior for a trio row matched as de novo.
// Rows where any trio member lacks likelihoods are not computable.
func (c *Calculator) ForRow(r genotype.TrioRow) (Result, error) {
	if len(r.Father.Likelihoods) == 0 || len(r.Mother.Likelihoods) == 0 || len(r.Proband.Likelihoods) == 0 {
		return NotComputable, nil
	}

	mode, err := ModeFor(r)
	if err != nil {
		return Result{}, fmt.Errorf("allele %d: %w", r.AlleleID, err)
	}

	res, err := c.Probability(Input{
		Father:      r.Father.Likelihoods,
		Mother:      r.Mother.Likelihoods,
		Child:       r.Proband.Likelihoods,
		XMinusPAR:   r.XMinusPAR,
		ProbandMale: r.Proband.Sex == pedigree.Male,
		Mode:        mode,
	})
	if err != nil {
		return Result{}, fmt.Errorf("allele %d: %w", r.AlleleID, err)
	}
	return res, nil
}
