package familyfilter

import (
	"fmt"
	"regexp"
	"runtime"

	"github.com/inodb/vibe-trio/internal/denovo"
)

// DefaultTranscriptInclusion restricts compound heterozygous gene mapping to RefSeq transcripts.
const DefaultTranscriptInclusion = `^NM_`

// Config holds the tunable parameters of the family filter.
type Config struct {
	AlleleFrequency     float64 // population allele frequency used for genotype priors
	MutationPrior       float64 // per-transmission de novo mutation probability
	TranscriptInclusion string  // regexp selecting transcripts for gene mapping; empty accepts all
	Workers             int     // analyses evaluated concurrently by FilterAll
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AlleleFrequency:     denovo.DefaultAlleleFrequency,
		MutationPrior:       denovo.DefaultMutationPrior,
		TranscriptInclusion: DefaultTranscriptInclusion,
		Workers:             runtime.NumCPU(),
	}
}

// Validate checks ranges and compiles the transcript pattern.
func (c Config) Validate() error {
	_, err := c.inclusionRegexp()
	if err != nil {
		return err
	}
	if !(c.AlleleFrequency > 0 && c.AlleleFrequency < 1) {
		return fmt.Errorf("allele frequency %v outside (0, 1)", c.AlleleFrequency)
	}
	if !(c.MutationPrior > 0 && c.MutationPrior < 1) {
		return fmt.Errorf("mutation prior %v outside (0, 1)", c.MutationPrior)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c Config) inclusionRegexp() (*regexp.Regexp, error) {
	if c.TranscriptInclusion == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.TranscriptInclusion)
	if err != nil {
		return nil, fmt.Errorf("transcript inclusion pattern: %w", err)
	}
	return re, nil
}
