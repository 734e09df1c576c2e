// Package pedigree describes family members and validates trio shape.
package pedigree

import (
	"fmt"
	"strings"
)

// Sex of a pedigree member.
type Sex int

const (
	SexUnknown Sex = iota
	Male
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return "Unknown"
	}
}

// ParseSex accepts "Male"/"Female" (any case), "M"/"F" and PED codes "1"/"2".
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1":
		return Male
	case "female", "f", "2":
		return Female
	}
	return SexUnknown
}

// Member is a sequenced individual in a pedigree.
type Member struct {
	ID       string // Sample identifier
	Sex      Sex
	Affected bool
	Proband  bool
	FatherID string // Empty if not part of the pedigree
	MotherID string // Empty if not part of the pedigree
}

// Pedigree is the set of members sequenced in one analysis.
type Pedigree struct {
	Members []Member
}

// Member returns the member with the given identifier.
func (p *Pedigree) Member(id string) (Member, bool) {
	for _, m := range p.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// Trio names the proband and both parents of a validated pedigree.
type Trio struct {
	Proband Member
	Father  Member
	Mother  Member
}

// Siblings returns members that are neither the proband nor one of its parents.
func (t Trio) Siblings(p *Pedigree) []Member {
	var out []Member
	for _, m := range p.Members {
		if m.ID == t.Proband.ID || m.ID == t.Father.ID || m.ID == t.Mother.ID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ShapeError explains why a pedigree cannot be evaluated as a trio.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "pedigree shape: " + e.Reason
}

// Trio validates the pedigree shape expected by inheritance filtering: exactly
// one member flagged both proband and affected, with both parents, where both
// parents are members of the pedigree and unaffected. Siblings are allowed.
func (p *Pedigree) Trio() (Trio, error) {
	var probands []Member
	for _, m := range p.Members {
		if m.Proband && m.Affected {
			probands = append(probands, m)
		}
	}
	if len(probands) != 1 {
		return Trio{}, &ShapeError{Reason: fmt.Sprintf("expected exactly one affected proband, found %d", len(probands))}
	}

	proband := probands[0]
	if proband.FatherID == "" || proband.MotherID == "" {
		return Trio{}, &ShapeError{Reason: fmt.Sprintf("proband %s is missing a parent", proband.ID)}
	}

	father, ok := p.Member(proband.FatherID)
	if !ok {
		return Trio{}, &ShapeError{Reason: fmt.Sprintf("father %s not in pedigree", proband.FatherID)}
	}
	mother, ok := p.Member(proband.MotherID)
	if !ok {
		return Trio{}, &ShapeError{Reason: fmt.Sprintf("mother %s not in pedigree", proband.MotherID)}
	}
	if father.Affected || mother.Affected {
		return Trio{}, &ShapeError{Reason: "parents must be unaffected"}
	}

	return Trio{Proband: proband, Father: father, Mother: mother}, nil
}
