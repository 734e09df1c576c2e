package inheritance

import (
	"regexp"

	"github.com/inodb/vibe-trio/internal/genotype"
)

// Transcript associates an allele with a transcript and its gene symbol.
type Transcript struct {
	Name   string // e.g. NM_000059.3
	Symbol string // e.g. BRCA2
}

// GeneLookup returns the transcripts an allele is annotated on.
type GeneLookup interface {
	Transcripts(alleleID int64) []Transcript
}

// Annotations is an in-memory GeneLookup.
type Annotations map[int64][]Transcript

// Transcripts implements GeneLookup.
func (a Annotations) Transcripts(alleleID int64) []Transcript {
	return a[alleleID]
}

// CompoundCandidatePredicate selects alleles heterozygous in the proband and
// heterozygous in exactly one parent, not homozygous in either parent.
// Parents without coverage satisfy neither side and are excluded.
var CompoundCandidatePredicate = And(
	ProbandIs(het),
	Not(FatherIs(hom)),
	Not(MotherIs(hom)),
	Or(
		And(FatherIs(het), MotherIs(ref)),
		And(FatherIs(ref), MotherIs(het)),
	),
)

type geneSupport struct {
	alleles  AlleleSet
	paternal bool
	maternal bool
}

// CompoundHeterozygous returns alleles in genes that carry at least two
// candidate alleles with at least one transmitted from each parent
// (Kamphans et al. 2013, rules 1-5, without de novo support).
//
// Gene symbols come from transcripts whose name matches inclusion; a nil
// inclusion pattern accepts every transcript. An allele may count towards
// several genes.
func CompoundHeterozygous(rows []genotype.TrioRow, genes GeneLookup, inclusion *regexp.Regexp) AlleleSet {
	bySymbol := make(map[string]*geneSupport)

	for _, r := range rows {
		if !CompoundCandidatePredicate(r) {
			continue
		}
		for _, tx := range genes.Transcripts(r.AlleleID) {
			if tx.Symbol == "" {
				continue
			}
			if inclusion != nil && !inclusion.MatchString(tx.Name) {
				continue
			}
			g, ok := bySymbol[tx.Symbol]
			if !ok {
				g = &geneSupport{alleles: make(AlleleSet)}
				bySymbol[tx.Symbol] = g
			}
			g.alleles.Add(r.AlleleID)
			if r.Father.Zygosity == het {
				g.paternal = true
			}
			if r.Mother.Zygosity == het {
				g.maternal = true
			}
		}
	}

	out := make(AlleleSet)
	for _, g := range bySymbol {
		if len(g.alleles) < 2 || !g.paternal || !g.maternal {
			continue
		}
		for id := range g.alleles {
			out.Add(id)
		}
	}
	return out
}
