// Package genotype builds per-allele, per-member genotype tables for a pedigree.
package genotype

import (
	"fmt"
	"strings"
)

// Zygosity is the called genotype class of one sample at one allele.
// Hemizygous alternate calls (male, X outside PAR) are reported as Homozygous.
type Zygosity int

const (
	Reference Zygosity = iota
	Heterozygous
	Homozygous
	NoCoverage
)

func (z Zygosity) String() string {
	switch z {
	case Reference:
		return "Reference"
	case Heterozygous:
		return "Heterozygous"
	case Homozygous:
		return "Homozygous"
	case NoCoverage:
		return "No coverage"
	default:
		return fmt.Sprintf("Zygosity(%d)", int(z))
	}
}

// ParseZygosity parses the names produced by String, case-insensitively.
func ParseZygosity(s string) (Zygosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference":
		return Reference, nil
	case "heterozygous":
		return Heterozygous, nil
	case "homozygous":
		return Homozygous, nil
	case "no coverage", "nocoverage":
		return NoCoverage, nil
	}
	return 0, fmt.Errorf("unknown zygosity %q", s)
}
