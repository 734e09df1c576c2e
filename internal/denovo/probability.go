// Package denovo computes posterior de novo probabilities from trio genotype likelihoods.
//
// The model follows the de novo computation in FILTUS (Vigeland et al.,
// Bioinformatics 2016): Hardy-Weinberg genotype priors for the parents, a
// Mendelian transmission model with a small mutation prior, and phred-scaled
// genotype likelihoods for all three trio members. The posterior of the called
// genotype combination is its relative likelihood normalized over every
// combination of father, mother and child genotype states.
package denovo

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

const (
	DefaultAlleleFrequency = 0.1
	DefaultMutationPrior   = 1e-8
)

// genotypeState is an unordered pair of alleles (0 = ref, 1 = alt), or a
// single allele when haploid.
type genotypeState struct {
	a, b    int
	haploid bool
}

func (g genotypeState) carries(allele int) bool {
	return g.a == allele || (!g.haploid && g.b == allele)
}

func (g genotypeState) homozygous() bool {
	return g.haploid || g.a == g.b
}

var (
	diploidStates = []genotypeState{{a: 0, b: 0}, {a: 0, b: 1}, {a: 1, b: 1}}
	haploidStates = []genotypeState{{a: 0, haploid: true}, {a: 1, haploid: true}}
)

// Input holds one allele's trio likelihoods and the called genotype states.
//
// Likelihood vectors are phred-scaled in the order [0/0, 0/1, 1/1]. On X
// outside PAR the father's vector, and a male child's vector, are hemizygous:
// either already two entries [0, 1] or three entries whose heterozygous
// entry is dropped.
//
// Mode holds the called state indices for father, mother and child. Hemizygous
// members index {0 = ref, 1 = alt}; diploid members {0 = 0/0, 1 = 0/1, 2 = 1/1}.
type Input struct {
	Father      []float64
	Mother      []float64
	Child       []float64
	XMinusPAR   bool
	ProbandMale bool
	Mode        [3]int
}

// Result is a posterior probability, or not computable when likelihoods are absent.
type Result struct {
	Probability float64
	Computable  bool
}

// NotComputable is reported when any trio member lacks genotype likelihoods.
var NotComputable = Result{}

func (r Result) String() string {
	if !r.Computable {
		return "-"
	}
	return strconv.FormatFloat(r.Probability, 'g', 6, 64)
}

// ConsistencyError signals a called child state equal to a parental state.
// Such an allele should never have been matched as de novo.
type ConsistencyError struct {
	Mode [3]int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("de novo consistency: child state %d is not unique in mode %v", e.Mode[2], e.Mode)
}

// Calculator computes de novo posteriors for a fixed allele frequency and
// mutation prior. It is safe for concurrent use.
type Calculator struct {
	mutationPrior float64
	diploidPrior  []float64 // log10 Hardy-Weinberg priors for 0/0, 0/1, 1/1
	haploidPrior  []float64 // log10 priors for 0, 1
}

// NewCalculator creates a Calculator. Both arguments must lie in (0, 1).
func NewCalculator(alleleFrequency, mutationPrior float64) (*Calculator, error) {
	if !(alleleFrequency > 0 && alleleFrequency < 1) {
		return nil, fmt.Errorf("allele frequency %v outside (0, 1)", alleleFrequency)
	}
	if !(mutationPrior > 0 && mutationPrior < 1) {
		return nil, fmt.Errorf("mutation prior %v outside (0, 1)", mutationPrior)
	}

	logRef := math.Log10(1 - alleleFrequency)
	logAlt := math.Log10(alleleFrequency)
	return &Calculator{
		mutationPrior: mutationPrior,
		diploidPrior:  []float64{2 * logRef, math.Log10(2) + logRef + logAlt, 2 * logAlt},
		haploidPrior:  []float64{logRef, logAlt},
	}, nil
}

// Probability returns the posterior probability of in.Mode.
func (c *Calculator) Probability(in Input) (Result, error) {
	if len(in.Father) == 0 || len(in.Mother) == 0 || len(in.Child) == 0 {
		return NotComputable, nil
	}

	mode := in.Mode
	if mode[2] == mode[0] || mode[2] == mode[1] {
		return Result{}, &ConsistencyError{Mode: mode}
	}

	m, err := c.newModel(in)
	if err != nil {
		return Result{}, err
	}
	if err := m.checkMode(mode); err != nil {
		return Result{}, err
	}

	observed, total := m.relativeLikelihoods(mode)
	if !(total > 0) || math.IsInf(total, 0) {
		return Result{}, fmt.Errorf("de novo likelihood total %v is not positive and finite", total)
	}
	return Result{Probability: observed / total, Computable: true}, nil
}

// model is the genotype state space and priors for one allele.
type model struct {
	calc         *Calculator
	plFather     []float64
	plMother     []float64
	plChild      []float64
	fatherStates []genotypeState
	motherStates []genotypeState
	childStates  []genotypeState
	fatherPrior  []float64
	motherPrior  []float64
	xMinusPAR    bool
	probandMale  bool
}

func (c *Calculator) newModel(in Input) (*model, error) {
	m := &model{
		calc:         c,
		plMother:     in.Mother,
		plFather:     in.Father,
		plChild:      in.Child,
		motherStates: diploidStates,
		fatherStates: diploidStates,
		childStates:  diploidStates,
		motherPrior:  c.diploidPrior,
		fatherPrior:  c.diploidPrior,
		xMinusPAR:    in.XMinusPAR,
		probandMale:  in.ProbandMale,
	}

	var err error
	if in.XMinusPAR {
		m.fatherStates = haploidStates
		m.fatherPrior = c.haploidPrior
		if m.plFather, err = hemizygous(in.Father); err != nil {
			return nil, fmt.Errorf("father likelihoods: %w", err)
		}
		if in.ProbandMale {
			m.childStates = haploidStates
			if m.plChild, err = hemizygous(in.Child); err != nil {
				return nil, fmt.Errorf("child likelihoods: %w", err)
			}
		}
	}

	if len(m.plFather) != len(m.fatherStates) {
		return nil, fmt.Errorf("father likelihoods: expected %d values, got %d", len(m.fatherStates), len(m.plFather))
	}
	if len(m.plMother) != len(m.motherStates) {
		return nil, fmt.Errorf("mother likelihoods: expected %d values, got %d", len(m.motherStates), len(m.plMother))
	}
	if len(m.plChild) != len(m.childStates) {
		return nil, fmt.Errorf("child likelihoods: expected %d values, got %d", len(m.childStates), len(m.plChild))
	}

	m.plFather = normalized(m.plFather)
	m.plMother = normalized(m.plMother)
	m.plChild = normalized(m.plChild)
	return m, nil
}

// normalized returns pl shifted so its smallest value is 0. The shift scales
// every term of the posterior by the same factor.
func normalized(pl []float64) []float64 {
	low := slices.Min(pl)
	if low == 0 {
		return pl
	}
	out := make([]float64, len(pl))
	for i, v := range pl {
		out[i] = v - low
	}
	return out
}

// hemizygous drops the heterozygous entry from a diploid likelihood vector.
func hemizygous(pl []float64) ([]float64, error) {
	switch len(pl) {
	case 2:
		return pl, nil
	case 3:
		return []float64{pl[0], pl[2]}, nil
	}
	return nil, fmt.Errorf("expected 2 or 3 values, got %d", len(pl))
}

func (m *model) checkMode(mode [3]int) error {
	if mode[0] < 0 || mode[0] >= len(m.fatherStates) {
		return fmt.Errorf("father state %d out of range", mode[0])
	}
	if mode[1] < 0 || mode[1] >= len(m.motherStates) {
		return fmt.Errorf("mother state %d out of range", mode[1])
	}
	if mode[2] < 0 || mode[2] >= len(m.childStates) {
		return fmt.Errorf("child state %d out of range", mode[2])
	}
	return nil
}

// relativeLikelihoods returns the relative likelihood of mode and the sum over
// all genotype combinations.
func (m *model) relativeLikelihoods(mode [3]int) (observed, total float64) {
	for f := range m.fatherStates {
		for mo := range m.motherStates {
			for c := range m.childStates {
				total += m.relativeLikelihood(f, mo, c)
			}
		}
	}
	return m.relativeLikelihood(mode[0], mode[1], mode[2]), total
}

func (m *model) relativeLikelihood(f, mo, c int) float64 {
	l := m.fatherPrior[f] + m.motherPrior[mo] +
		math.Log10(m.trioTransmit(m.fatherStates[f], m.motherStates[mo], m.childStates[c])) -
		(m.plFather[f]+m.plMother[mo]+m.plChild[c])/10
	return math.Pow(10, l)
}

// trioTransmit is the probability of the child's genotype given the parents'.
func (m *model) trioTransmit(father, mother, child genotypeState) float64 {
	if m.xMinusPAR && m.probandMale {
		// A son receives no X from his father.
		return m.transmitMother(mother, child.a)
	}
	if child.homozygous() {
		return m.transmitFather(father, child.a) * m.transmitMother(mother, child.a)
	}
	// Two identical terms rather than the two orderings; posteriors are pinned to this.
	return m.transmitFather(father, child.a)*m.transmitMother(mother, child.b) +
		m.transmitFather(father, child.a)*m.transmitMother(mother, child.b)
}

func (m *model) transmitFather(father genotypeState, allele int) float64 {
	if m.xMinusPAR {
		// Single paternal X goes to every daughter.
		if father.a == allele {
			return 1 - m.calc.mutationPrior
		}
		return m.calc.mutationPrior
	}
	return m.calc.singleTransmit(father, allele)
}

func (m *model) transmitMother(mother genotypeState, allele int) float64 {
	return m.calc.singleTransmit(mother, allele)
}

// singleTransmit is the probability that a diploid parent passes allele on.
func (c *Calculator) singleTransmit(parent genotypeState, allele int) float64 {
	switch {
	case parent.carries(allele) && parent.homozygous():
		return 1 - c.mutationPrior
	case parent.carries(allele):
		return 0.5
	default:
		return c.mutationPrior
	}
}
