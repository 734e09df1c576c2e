package genome

import "fmt"

// Pseudoautosomal region boundaries on chromosome X (GRCh37).
//
//	PAR1 X:60001-2699520
//	PAR2 X:154931044-155260560
const (
	PAR1Start = 60001
	PAR1End   = 2699520
	PAR2Start = 154931044
	PAR2End   = 155260560
)

// UnsupportedReferenceError is returned when region logic is asked to work on
// a build whose PAR boundaries are not known.
type UnsupportedReferenceError struct {
	Build Build
}

func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("unsupported reference build %q: PAR boundaries are only defined for %s", e.Build, GRCh37)
}

// IsXMinusPAR reports whether the half-open interval [start, end) lies on
// chromosome X and entirely outside PAR1 and PAR2. Any overlap with a PAR
// makes the interval pseudoautosomal.
//
// Only GRCh37 is supported; any other build yields an UnsupportedReferenceError
// regardless of chromosome.
func IsXMinusPAR(chrom string, start, end int64, build Build) (bool, error) {
	if build != GRCh37 {
		return false, &UnsupportedReferenceError{Build: build}
	}
	if NormalizeChrom(chrom) != "X" {
		return false, nil
	}

	// 0-based positions compared against 1-based boundaries.
	switch {
	case end <= PAR1Start:
		return true, nil
	case start > PAR1End && end <= PAR2Start:
		return true, nil
	case start > PAR2End:
		return true, nil
	}
	return false, nil
}
