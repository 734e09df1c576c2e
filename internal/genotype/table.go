package genotype

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

// Record is one genotype call for a sample at an allele, joined with the
// allele's coordinates. Likelihoods are phred-scaled in the order
// [hom-ref, het, hom-alt], or [ref, alt] for hemizygous calls; nil means absent.
type Record struct {
	Allele      genome.Allele
	SampleID    string
	Zygosity    Zygosity
	Likelihoods []float64
}

// Entry is the per-member cell of a table row.
type Entry struct {
	Zygosity    Zygosity
	Sex         pedigree.Sex
	Likelihoods []float64
}

// Row holds every pedigree member's call at one allele.
type Row struct {
	Allele    genome.Allele
	XMinusPAR bool
	Samples   map[string]Entry
}

// TrioRow is a row projected onto the proband and parents.
type TrioRow struct {
	AlleleID  int64
	XMinusPAR bool
	Proband   Entry
	Father    Entry
	Mother    Entry
}

// Table is an immutable snapshot of genotype calls for one analysis.
type Table struct {
	rows []*Row // sorted by allele id
}

// TableError reports a violation of the one-call-per-(allele, member) invariant
// or otherwise inconsistent input records.
type TableError struct {
	AlleleID int64
	SampleID string
	Message  string
}

func (e *TableError) Error() string {
	if e.SampleID != "" {
		return fmt.Sprintf("genotype table: allele %d, sample %s: %s", e.AlleleID, e.SampleID, e.Message)
	}
	return fmt.Sprintf("genotype table: allele %d: %s", e.AlleleID, e.Message)
}

// BuildTable assembles the genotype table for the given allele universe.
// Records for alleles outside the universe or samples outside the pedigree
// are ignored. Every (allele, member) pair must have exactly one record.
func BuildTable(alleleIDs []int64, ped *pedigree.Pedigree, records []Record) (*Table, error) {
	rows := make(map[int64]*Row, len(alleleIDs))
	for _, id := range alleleIDs {
		if _, dup := rows[id]; dup {
			continue
		}
		rows[id] = &Row{Samples: make(map[string]Entry, len(ped.Members))}
	}

	members := make(map[string]pedigree.Member, len(ped.Members))
	for _, m := range ped.Members {
		members[m.ID] = m
	}

	seenAllele := make(map[int64]bool, len(rows))
	for _, r := range records {
		row, ok := rows[r.Allele.ID]
		if !ok {
			continue
		}
		m, ok := members[r.SampleID]
		if !ok {
			continue
		}

		if !seenAllele[r.Allele.ID] {
			row.Allele = r.Allele
			seenAllele[r.Allele.ID] = true
		} else if row.Allele != r.Allele {
			return nil, &TableError{AlleleID: r.Allele.ID, SampleID: r.SampleID, Message: "conflicting allele coordinates"}
		}

		if _, dup := row.Samples[r.SampleID]; dup {
			return nil, &TableError{AlleleID: r.Allele.ID, SampleID: r.SampleID, Message: "duplicate genotype call"}
		}
		row.Samples[r.SampleID] = Entry{
			Zygosity:    r.Zygosity,
			Sex:         m.Sex,
			Likelihoods: slices.Clone(r.Likelihoods),
		}
	}

	t := &Table{rows: make([]*Row, 0, len(rows))}
	for id, row := range rows {
		if !seenAllele[id] {
			return nil, &TableError{AlleleID: id, Message: "no genotype calls"}
		}
		for _, m := range ped.Members {
			if _, ok := row.Samples[m.ID]; !ok {
				return nil, &TableError{AlleleID: id, SampleID: m.ID, Message: "missing genotype call"}
			}
		}

		xMinusPAR, err := row.Allele.XMinusPAR()
		if err != nil {
			return nil, fmt.Errorf("classify allele %d: %w", id, err)
		}
		row.XMinusPAR = xMinusPAR
		t.rows = append(t.rows, row)
	}

	slices.SortFunc(t.rows, func(a, b *Row) int {
		return cmp.Compare(a.Allele.ID, b.Allele.ID)
	})

	return t, nil
}

// Len returns the number of alleles in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the table rows ordered by allele id.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Row returns the row for an allele.
func (t *Table) Row(alleleID int64) (*Row, bool) {
	i, found := slices.BinarySearchFunc(t.rows, alleleID, func(r *Row, id int64) int {
		return cmp.Compare(r.Allele.ID, id)
	})
	if !found {
		return nil, false
	}
	return t.rows[i], true
}

// TrioRows projects every row onto the trio's members.
func (t *Table) TrioRows(trio pedigree.Trio) []TrioRow {
	out := make([]TrioRow, len(t.rows))
	for i, r := range t.rows {
		out[i] = TrioRow{
			AlleleID:  r.Allele.ID,
			XMinusPAR: r.XMinusPAR,
			Proband:   r.Samples[trio.Proband.ID],
			Father:    r.Samples[trio.Father.ID],
			Mother:    r.Samples[trio.Mother.ID],
		}
	}
	return out
}
