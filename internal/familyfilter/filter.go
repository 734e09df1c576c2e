// Package familyfilter removes alleles explained by Mendelian inheritance from
// an analysis' candidate set and scores apparent de novo events.
package familyfilter

import (
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/inodb/vibe-trio/internal/denovo"
	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/inheritance"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

// Analysis is the immutable input snapshot for one analysis.
type Analysis struct {
	ID        int64
	AlleleIDs []int64
	Pedigree  *pedigree.Pedigree
	Records   []genotype.Record
	Genes     inheritance.GeneLookup
}

// Result is the outcome of filtering one analysis.
type Result struct {
	AnalysisID int64
	Input      inheritance.AlleleSet
	Retained   inheritance.AlleleSet

	// Skipped is set when the pedigree is not a valid trio; Retained then
	// equals Input.
	Skipped    bool
	SkipReason string

	Matches             map[inheritance.Pattern]inheritance.AlleleSet
	DenovoProbabilities map[int64]denovo.Result
	Table               *genotype.Table // nil when skipped
	Trio                pedigree.Trio
}

// Patterns returns the patterns that matched an allele, in reporting order.
func (r *Result) Patterns(alleleID int64) []inheritance.Pattern {
	var out []inheritance.Pattern
	for _, p := range patternOrder {
		if r.Matches[p].Has(alleleID) {
			out = append(out, p)
		}
	}
	return out
}

var patternOrder = []inheritance.Pattern{
	inheritance.PatternDeNovo,
	inheritance.PatternAutosomalRecessive,
	inheritance.PatternXLinkedRecessive,
	inheritance.PatternCompoundHeterozygous,
}

// Filter evaluates analyses against the inheritance patterns.
// It holds no per-analysis state and is safe for concurrent use.
type Filter struct {
	cfg       Config
	inclusion *regexp.Regexp
	calc      *denovo.Calculator
	logger    *zap.Logger
}

// New creates a Filter from a validated configuration.
func New(cfg Config) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	inclusion, err := cfg.inclusionRegexp()
	if err != nil {
		return nil, err
	}
	calc, err := denovo.NewCalculator(cfg.AlleleFrequency, cfg.MutationPrior)
	if err != nil {
		return nil, err
	}
	return &Filter{
		cfg:       cfg,
		inclusion: inclusion,
		calc:      calc,
		logger:    zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for warning and debug messages.
func (f *Filter) SetLogger(l *zap.Logger) {
	f.logger = l
}

// FilterAnalysis filters one analysis. A pedigree that is not a valid trio is
// not an error: the full input set is retained and the result is marked skipped.
func (f *Filter) FilterAnalysis(a *Analysis) (*Result, error) {
	res := &Result{
		AnalysisID: a.ID,
		Input:      inheritance.NewAlleleSet(a.AlleleIDs...),
	}

	ped := a.Pedigree
	if ped == nil {
		ped = &pedigree.Pedigree{}
	}
	trio, err := ped.Trio()
	if err != nil {
		var shapeErr *pedigree.ShapeError
		if !errors.As(err, &shapeErr) {
			return nil, fmt.Errorf("analysis %d: %w", a.ID, err)
		}
		f.logger.Warn("inheritance filter skipped",
			zap.Int64("analysis", a.ID),
			zap.String("reason", shapeErr.Reason))
		res.Skipped = true
		res.SkipReason = shapeErr.Reason
		res.Retained = res.Input.Union()
		return res, nil
	}

	table, err := genotype.BuildTable(a.AlleleIDs, ped, a.Records)
	if err != nil {
		return nil, fmt.Errorf("analysis %d: %w", a.ID, err)
	}
	res.Table = table
	res.Trio = trio

	var genes inheritance.GeneLookup = inheritance.Annotations{}
	if a.Genes != nil {
		genes = a.Genes
	}

	rows := table.TrioRows(trio)
	res.Matches = map[inheritance.Pattern]inheritance.AlleleSet{
		inheritance.PatternDeNovo:               inheritance.DeNovo(rows),
		inheritance.PatternAutosomalRecessive:   inheritance.AutosomalRecessiveHomozygous(rows),
		inheritance.PatternXLinkedRecessive:     inheritance.XLinkedRecessiveHomozygous(rows),
		inheritance.PatternCompoundHeterozygous: inheritance.CompoundHeterozygous(rows, genes, f.inclusion),
	}

	explained := inheritance.NewAlleleSet()
	for _, p := range patternOrder {
		explained = explained.Union(res.Matches[p])
	}
	res.Retained = res.Input.Difference(explained)

	denovoSet := res.Matches[inheritance.PatternDeNovo]
	res.DenovoProbabilities = make(map[int64]denovo.Result, len(denovoSet))
	for _, r := range rows {
		if !denovoSet.Has(r.AlleleID) {
			continue
		}
		p, err := f.calc.ForRow(r)
		if err != nil {
			return nil, fmt.Errorf("analysis %d: de novo probability: %w", a.ID, err)
		}
		res.DenovoProbabilities[r.AlleleID] = p
	}

	f.logger.Debug("inheritance filter applied",
		zap.Int64("analysis", a.ID),
		zap.Int("input", len(res.Input)),
		zap.Int("retained", len(res.Retained)),
		zap.Int("denovo", len(denovoSet)),
		zap.Int("autosomal_recessive", len(res.Matches[inheritance.PatternAutosomalRecessive])),
		zap.Int("xlinked_recessive", len(res.Matches[inheritance.PatternXLinkedRecessive])),
		zap.Int("compound_heterozygous", len(res.Matches[inheritance.PatternCompoundHeterozygous])))

	return res, nil
}
