package inheritance

import (
	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

const (
	ref = genotype.Reference
	het = genotype.Heterozygous
	hom = genotype.Homozygous
	noc = genotype.NoCoverage
)

// Pattern names an inheritance explanation.
type Pattern string

const (
	PatternDeNovo               Pattern = "denovo"
	PatternAutosomalRecessive   Pattern = "autosomal_recessive_homozygous"
	PatternXLinkedRecessive     Pattern = "xlinked_recessive_homozygous"
	PatternCompoundHeterozygous Pattern = "compound_heterozygous"
)

// DeNovoPredicate matches trio genotypes that are only explained by a new
// mutation in the proband. Parents without coverage never match.
//
// Autosomal (and PAR):
//
//	0/0 + 0/0 = 0/1
//	0/0 + 0/0 = 1/1
//	0/0 + 0/1 = 1/1
//	0/1 + 0/0 = 1/1
//
// X outside PAR, male proband:
//
//	0 + 0/0 = 1
//
// X outside PAR, female proband:
//
//	0 + 0/0 = 0/1
//	0 + 0/0 = 1/1
//	0 + 0/1 = 1/1
var DeNovoPredicate = And(
	Not(FatherIs(noc)),
	Not(MotherIs(noc)),
	Or(
		And(
			Not(XMinusPAR),
			Or(
				And(ProbandIs(het, hom), FatherIs(ref), MotherIs(ref)),
				And(ProbandIs(hom), Or(
					And(FatherIs(het), MotherIs(ref)),
					And(FatherIs(ref), MotherIs(het)),
				)),
			),
		),
		And(
			XMinusPAR,
			Or(
				And(ProbandSex(pedigree.Male), ProbandIs(hom), FatherIs(ref), MotherIs(ref)),
				And(ProbandSex(pedigree.Female), FatherIs(ref), Or(
					And(ProbandIs(het, hom), MotherIs(ref)),
					And(ProbandIs(hom), MotherIs(het)),
				)),
			),
		),
	),
)

// AutosomalRecessivePredicate matches a homozygous proband with two
// heterozygous parents, on autosomes or inside PAR.
var AutosomalRecessivePredicate = And(
	ProbandIs(hom),
	FatherIs(het),
	MotherIs(het),
	Not(XMinusPAR),
)

// XLinkedRecessivePredicate matches a homozygous (or hemizygous) proband with a
// heterozygous mother and reference father, on X outside PAR.
var XLinkedRecessivePredicate = And(
	ProbandIs(hom),
	FatherIs(ref),
	MotherIs(het),
	XMinusPAR,
)

// DeNovo returns alleles matching DeNovoPredicate.
func DeNovo(rows []genotype.TrioRow) AlleleSet {
	return Select(rows, DeNovoPredicate)
}

// AutosomalRecessiveHomozygous returns alleles matching AutosomalRecessivePredicate.
func AutosomalRecessiveHomozygous(rows []genotype.TrioRow) AlleleSet {
	return Select(rows, AutosomalRecessivePredicate)
}

// XLinkedRecessiveHomozygous returns alleles matching XLinkedRecessivePredicate.
func XLinkedRecessiveHomozygous(rows []genotype.TrioRow) AlleleSet {
	return Select(rows, XLinkedRecessivePredicate)
}
