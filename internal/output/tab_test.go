package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/inheritance"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

func filteredResult(t *testing.T) *familyfilter.Result {
	t.Helper()
	ped := &pedigree.Pedigree{Members: []pedigree.Member{
		{ID: "child", Sex: pedigree.Female, Affected: true, Proband: true, FatherID: "dad", MotherID: "mum"},
		{ID: "dad", Sex: pedigree.Male},
		{ID: "mum", Sex: pedigree.Female},
	}}

	call := func(a genome.Allele, sample string, z genotype.Zygosity) genotype.Record {
		pl := map[genotype.Zygosity][]float64{
			genotype.Reference:    {0, 30, 300},
			genotype.Heterozygous: {300, 0, 300},
			genotype.Homozygous:   {300, 30, 0},
		}[z]
		return genotype.Record{Allele: a, SampleID: sample, Zygosity: z, Likelihoods: pl}
	}

	denovo := genome.Allele{ID: 1, Chrom: "1", Start: 999, End: 1000, Build: genome.GRCh37, Type: genome.SNP}
	inherited := genome.Allele{ID: 2, Chrom: "3", Start: 4999, End: 5002, Build: genome.GRCh37, Type: genome.Deletion}
	records := []genotype.Record{
		call(denovo, "child", genotype.Homozygous),
		call(denovo, "dad", genotype.Reference),
		call(denovo, "mum", genotype.Reference),
		call(inherited, "child", genotype.Heterozygous),
		call(inherited, "dad", genotype.Heterozygous),
		call(inherited, "mum", genotype.Heterozygous),
	}

	f, err := familyfilter.New(familyfilter.DefaultConfig())
	require.NoError(t, err)
	res, err := f.FilterAnalysis(&familyfilter.Analysis{
		ID: 9, AlleleIDs: []int64{2, 1}, Pedigree: ped, Records: records,
	})
	require.NoError(t, err)
	return res
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	for _, col := range []string{"#Analysis", "Allele", "Location", "Patterns", "Retained", "DeNovo_probability"} {
		assert.Contains(t, header, col)
	}
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(filteredResult(t)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	first := strings.Split(lines[1], "\t")
	require.Len(t, first, 10)
	assert.Equal(t, "9", first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "1:1000-1000", first[2])
	assert.Equal(t, "SNP", first[3])
	assert.Equal(t, "Homozygous", first[4])
	assert.Equal(t, "Reference", first[5])
	assert.Equal(t, string(inheritance.PatternDeNovo), first[7])
	assert.Equal(t, "NO", first[8])
	assert.Equal(t, "4.26231e-10", first[9])

	second := strings.Split(lines[2], "\t")
	assert.Equal(t, "2", second[1])
	assert.Equal(t, "3:5000-5002", second[2])
	assert.Equal(t, "deletion", second[3])
	assert.Equal(t, "-", second[7])
	assert.Equal(t, "YES", second[8])
	assert.Equal(t, "-", second[9])
}

func TestTabWriter_WriteSkipped(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	res := &familyfilter.Result{
		AnalysisID: 3,
		Input:      inheritance.NewAlleleSet(5),
		Retained:   inheritance.NewAlleleSet(5),
		Skipped:    true,
	}
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	assert.Equal(t, "3\t5\t-\t-\t-\t-\t-\t-\tYES\t-\n", buf.String())
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Add(filteredResult(t))
	s.Add(&familyfilter.Result{
		Input:    inheritance.NewAlleleSet(1, 2, 3),
		Retained: inheritance.NewAlleleSet(1, 2, 3),
		Skipped:  true,
	})

	assert.Equal(t, 4, s.Retained())
	assert.Equal(t, 1, s.Counts()[inheritance.PatternDeNovo])

	var buf bytes.Buffer
	s.WriteSummary(&buf)
	out := buf.String()
	assert.Contains(t, out, "2 analyses, 1 skipped")
	assert.Contains(t, out, "denovo")
	assert.Contains(t, out, "retained alleles")
}
