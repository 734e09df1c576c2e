package genotype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

func testPedigree() *pedigree.Pedigree {
	return &pedigree.Pedigree{Members: []pedigree.Member{
		{ID: "Proband", Sex: pedigree.Female, Affected: true, Proband: true, FatherID: "Father", MotherID: "Mother"},
		{ID: "Father", Sex: pedigree.Male},
		{ID: "Mother", Sex: pedigree.Female},
	}}
}

func autosomal(id int64) genome.Allele {
	return genome.Allele{ID: id, Chrom: "1", Start: 1000 + id, End: 1001 + id, Build: genome.GRCh37, Type: genome.SNP}
}

func trioRecords(a genome.Allele, proband, father, mother Zygosity) []Record {
	return []Record{
		{Allele: a, SampleID: "Proband", Zygosity: proband, Likelihoods: []float64{300, 0, 300}},
		{Allele: a, SampleID: "Father", Zygosity: father, Likelihoods: []float64{0, 30, 300}},
		{Allele: a, SampleID: "Mother", Zygosity: mother, Likelihoods: []float64{0, 30, 300}},
	}
}

func TestBuildTable(t *testing.T) {
	ped := testPedigree()
	xAllele := genome.Allele{ID: 2, Chrom: "X", Start: 31000000, End: 31000001, Build: genome.GRCh37}

	var records []Record
	records = append(records, trioRecords(autosomal(3), Heterozygous, Reference, Reference)...)
	records = append(records, trioRecords(xAllele, Homozygous, Reference, Heterozygous)...)
	// Outside the requested universe.
	records = append(records, trioRecords(autosomal(99), Heterozygous, Reference, Reference)...)

	table, err := BuildTable([]int64{3, 2}, ped, records)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	rows := table.Rows()
	assert.Equal(t, int64(2), rows[0].Allele.ID)
	assert.True(t, rows[0].XMinusPAR)
	assert.Equal(t, int64(3), rows[1].Allele.ID)
	assert.False(t, rows[1].XMinusPAR)

	row, ok := table.Row(3)
	require.True(t, ok)
	assert.Equal(t, Heterozygous, row.Samples["Proband"].Zygosity)
	assert.Equal(t, pedigree.Male, row.Samples["Father"].Sex)

	_, ok = table.Row(99)
	assert.False(t, ok)

	trio, err := ped.Trio()
	require.NoError(t, err)
	trioRows := table.TrioRows(trio)
	require.Len(t, trioRows, 2)
	assert.Equal(t, Homozygous, trioRows[0].Proband.Zygosity)
	assert.Equal(t, Heterozygous, trioRows[0].Mother.Zygosity)
	assert.Equal(t, pedigree.Female, trioRows[0].Proband.Sex)
}

func TestBuildTable_LikelihoodsCopied(t *testing.T) {
	records := trioRecords(autosomal(1), Heterozygous, Reference, Reference)
	table, err := BuildTable([]int64{1}, testPedigree(), records)
	require.NoError(t, err)

	records[0].Likelihoods[0] = -1
	row, _ := table.Row(1)
	assert.Equal(t, []float64{300, 0, 300}, row.Samples["Proband"].Likelihoods)
}

func TestBuildTable_Errors(t *testing.T) {
	ped := testPedigree()

	t.Run("missing call", func(t *testing.T) {
		records := trioRecords(autosomal(1), Heterozygous, Reference, Reference)[:2]
		_, err := BuildTable([]int64{1}, ped, records)
		var tableErr *TableError
		require.True(t, errors.As(err, &tableErr))
		assert.Equal(t, "Mother", tableErr.SampleID)
	})

	t.Run("duplicate call", func(t *testing.T) {
		records := trioRecords(autosomal(1), Heterozygous, Reference, Reference)
		records = append(records, records[0])
		_, err := BuildTable([]int64{1}, ped, records)
		var tableErr *TableError
		require.True(t, errors.As(err, &tableErr))
		assert.Contains(t, tableErr.Error(), "duplicate")
	})

	t.Run("allele without calls", func(t *testing.T) {
		records := trioRecords(autosomal(1), Heterozygous, Reference, Reference)
		_, err := BuildTable([]int64{1, 5}, ped, records)
		var tableErr *TableError
		require.True(t, errors.As(err, &tableErr))
		assert.Equal(t, int64(5), tableErr.AlleleID)
	})

	t.Run("unsupported build", func(t *testing.T) {
		a := autosomal(1)
		a.Build = genome.GRCh38
		_, err := BuildTable([]int64{1}, ped, trioRecords(a, Heterozygous, Reference, Reference))
		var refErr *genome.UnsupportedReferenceError
		require.True(t, errors.As(err, &refErr))
	})

	t.Run("conflicting coordinates", func(t *testing.T) {
		records := trioRecords(autosomal(1), Heterozygous, Reference, Reference)
		records[2].Allele.Start++
		_, err := BuildTable([]int64{1}, ped, records)
		var tableErr *TableError
		require.True(t, errors.As(err, &tableErr))
	})
}

func TestZygosity(t *testing.T) {
	for _, z := range []Zygosity{Reference, Heterozygous, Homozygous, NoCoverage} {
		parsed, err := ParseZygosity(z.String())
		require.NoError(t, err)
		assert.Equal(t, z, parsed)
	}
	_, err := ParseZygosity("triploid")
	assert.Error(t, err)
}
