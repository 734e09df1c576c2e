package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/genotype"
)

func TestVariant_TypeAndInterval(t *testing.T) {
	tests := []struct {
		name       string
		ref, alt   string
		wantType   genome.VariantType
		start, end int64
	}{
		{"SNV", "A", "G", genome.SNP, 99, 100},
		{"deletion", "ATG", "A", genome.Deletion, 99, 102},
		{"insertion", "A", "AT", genome.Insertion, 99, 100},
		{"MNV", "AT", "GC", genome.MNV, 99, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Chrom: "chr7", Pos: 100, Ref: tt.ref, Alt: tt.alt}
			assert.Equal(t, tt.wantType, v.Type())
			start, end := v.Interval()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, "7", v.NormalizeChrom())
		})
	}
}

func TestZygosity(t *testing.T) {
	tests := []struct {
		gt       string
		altIndex int
		want     genotype.Zygosity
	}{
		{"0/0", 1, genotype.Reference},
		{"0/1", 1, genotype.Heterozygous},
		{"1|0", 1, genotype.Heterozygous},
		{"1/1", 1, genotype.Homozygous},
		{"1/2", 1, genotype.Heterozygous},
		{"1/2", 2, genotype.Heterozygous},
		{"0/2", 1, genotype.Reference},
		{"2/2", 2, genotype.Homozygous},
		{"1", 1, genotype.Homozygous},
		{"0", 1, genotype.Reference},
		{"./.", 1, genotype.NoCoverage},
		{"./1", 1, genotype.NoCoverage},
		{".", 1, genotype.NoCoverage},
		{"", 1, genotype.NoCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.gt, func(t *testing.T) {
			got, err := zygosity(tt.gt, tt.altIndex)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := zygosity("0/1/1", 1)
	assert.Error(t, err)
	_, err = zygosity("a/b", 1)
	assert.Error(t, err)
}

func TestLikelihoods(t *testing.T) {
	tests := []struct {
		name              string
		pl                string
		altIndex, numAlts int
		want              []float64
	}{
		{"biallelic", "10,0,200", 1, 1, []float64{10, 0, 200}},
		{"first of two", "0,10,20,30,40,50", 1, 2, []float64{0, 10, 20}},
		// 0/0=0, 0/1=1, 1/1=2, 0/2=3, 1/2=4, 2/2=5
		{"second of two", "0,10,20,30,40,50", 2, 2, []float64{0, 30, 50}},
		// 0/3=6, 3/3=9
		{"third of three", "0,1,2,3,4,5,6,7,8,9", 3, 3, []float64{0, 6, 9}},
		{"haploid", "300,0", 1, 1, []float64{300, 0}},
		{"haploid second of two", "0,10,20", 2, 2, []float64{0, 20}},
		{"missing", ".", 1, 1, nil},
		{"absent", "", 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := likelihoods(tt.pl, tt.altIndex, tt.numAlts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := likelihoods("0,1,2,3", 1, 1)
	assert.Error(t, err)
	_, err = likelihoods("0,x,2", 1, 1)
	assert.Error(t, err)
}
