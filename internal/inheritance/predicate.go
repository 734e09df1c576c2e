// Package inheritance matches trio genotype rows against Mendelian inheritance patterns.
package inheritance

import (
	"slices"

	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

// AlleleSet is a set of allele ids.
type AlleleSet map[int64]struct{}

// NewAlleleSet creates a set holding ids.
func NewAlleleSet(ids ...int64) AlleleSet {
	s := make(AlleleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s AlleleSet) Add(id int64) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s AlleleSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set with the members of s and every other set.
func (s AlleleSet) Union(others ...AlleleSet) AlleleSet {
	out := make(AlleleSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s not in other.
func (s AlleleSet) Difference(other AlleleSet) AlleleSet {
	out := make(AlleleSet, len(s))
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s AlleleSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Predicate is a boolean test over a trio row.
type Predicate func(r genotype.TrioRow) bool

// And is true when every predicate is true.
func And(ps ...Predicate) Predicate {
	return func(r genotype.TrioRow) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Or is true when any predicate is true.
func Or(ps ...Predicate) Predicate {
	return func(r genotype.TrioRow) bool {
		for _, p := range ps {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(r genotype.TrioRow) bool { return !p(r) }
}

// ProbandIs matches when the proband's zygosity is one of zs.
func ProbandIs(zs ...genotype.Zygosity) Predicate {
	return func(r genotype.TrioRow) bool { return slices.Contains(zs, r.Proband.Zygosity) }
}

// FatherIs matches when the father's zygosity is one of zs.
func FatherIs(zs ...genotype.Zygosity) Predicate {
	return func(r genotype.TrioRow) bool { return slices.Contains(zs, r.Father.Zygosity) }
}

// MotherIs matches when the mother's zygosity is one of zs.
func MotherIs(zs ...genotype.Zygosity) Predicate {
	return func(r genotype.TrioRow) bool { return slices.Contains(zs, r.Mother.Zygosity) }
}

// ProbandSex matches on the proband's sex.
func ProbandSex(s pedigree.Sex) Predicate {
	return func(r genotype.TrioRow) bool { return r.Proband.Sex == s }
}

// XMinusPAR matches rows on chromosome X outside the pseudoautosomal regions.
func XMinusPAR(r genotype.TrioRow) bool {
	return r.XMinusPAR
}

// Select returns the ids of rows satisfying p.
func Select(rows []genotype.TrioRow, p Predicate) AlleleSet {
	out := make(AlleleSet)
	for _, r := range rows {
		if p(r) {
			out.Add(r.AlleleID)
		}
	}
	return out
}
