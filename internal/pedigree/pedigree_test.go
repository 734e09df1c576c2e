package pedigree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trioPedigree() *Pedigree {
	return &Pedigree{Members: []Member{
		{ID: "Proband", Sex: Male, Affected: true, Proband: true, FatherID: "Father", MotherID: "Mother"},
		{ID: "Father", Sex: Male},
		{ID: "Mother", Sex: Female},
	}}
}

func TestTrio_Valid(t *testing.T) {
	p := trioPedigree()
	p.Members = append(p.Members, Member{ID: "Sister", Sex: Female, FatherID: "Father", MotherID: "Mother"})

	trio, err := p.Trio()
	require.NoError(t, err)
	assert.Equal(t, "Proband", trio.Proband.ID)
	assert.Equal(t, "Father", trio.Father.ID)
	assert.Equal(t, "Mother", trio.Mother.ID)

	sibs := trio.Siblings(p)
	require.Len(t, sibs, 1)
	assert.Equal(t, "Sister", sibs[0].ID)
}

func TestTrio_UnaffectedProbandFlagIgnored(t *testing.T) {
	p := trioPedigree()
	p.Members = append(p.Members, Member{ID: "Sister", Sex: Female, Proband: true, FatherID: "Father", MotherID: "Mother"})

	trio, err := p.Trio()
	require.NoError(t, err)
	assert.Equal(t, "Proband", trio.Proband.ID)
}

func TestTrio_InvalidShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Pedigree)
	}{
		{"no proband", func(p *Pedigree) { p.Members[0].Proband = false }},
		{"two affected probands", func(p *Pedigree) {
			p.Members = append(p.Members, Member{ID: "Brother", Sex: Male, Affected: true, Proband: true, FatherID: "Father", MotherID: "Mother"})
		}},
		{"unaffected proband", func(p *Pedigree) { p.Members[0].Affected = false }},
		{"missing father id", func(p *Pedigree) { p.Members[0].FatherID = "" }},
		{"missing mother id", func(p *Pedigree) { p.Members[0].MotherID = "" }},
		{"father not sequenced", func(p *Pedigree) { p.Members[0].FatherID = "Other" }},
		{"affected father", func(p *Pedigree) { p.Members[1].Affected = true }},
		{"affected mother", func(p *Pedigree) { p.Members[2].Affected = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := trioPedigree()
			tt.mutate(p)
			_, err := p.Trio()
			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr))
			assert.NotEmpty(t, shapeErr.Reason)
		})
	}
}

func TestParseSex(t *testing.T) {
	assert.Equal(t, Male, ParseSex("Male"))
	assert.Equal(t, Male, ParseSex("1"))
	assert.Equal(t, Female, ParseSex("f"))
	assert.Equal(t, Female, ParseSex("2"))
	assert.Equal(t, SexUnknown, ParseSex("0"))
	assert.Equal(t, "Female", Female.String())
}

const trioPED = `# family individual father mother sex phenotype
FAM1 kid dad mom 1 2
FAM1 dad 0 0 1 1
FAM1 mom 0 0 2 1
`

func TestParsePED_AutoProband(t *testing.T) {
	p, err := ParsePED(strings.NewReader(trioPED), "")
	require.NoError(t, err)
	require.Len(t, p.Members, 3)

	trio, err := p.Trio()
	require.NoError(t, err)
	assert.Equal(t, "kid", trio.Proband.ID)
	assert.Equal(t, Male, trio.Proband.Sex)
	assert.Equal(t, "dad", trio.Father.ID)
	assert.Equal(t, Female, trio.Mother.Sex)
}

func TestParsePED_ExplicitProband(t *testing.T) {
	input := trioPED + "FAM1 sis dad mom 2 2\n"

	// Two affected children: no automatic choice.
	p, err := ParsePED(strings.NewReader(input), "")
	require.NoError(t, err)
	_, err = p.Trio()
	assert.Error(t, err)

	p, err = ParsePED(strings.NewReader(input), "sis")
	require.NoError(t, err)
	trio, err := p.Trio()
	require.NoError(t, err)
	assert.Equal(t, "sis", trio.Proband.ID)
}

func TestParsePED_Errors(t *testing.T) {
	_, err := ParsePED(strings.NewReader("FAM1 kid dad\n"), "")
	assert.Error(t, err)

	_, err = ParsePED(strings.NewReader(trioPED+"FAM1 dad 0 0 1 1\n"), "")
	assert.Error(t, err)

	_, err = ParsePED(strings.NewReader(trioPED), "nobody")
	assert.Error(t, err)

	_, err = LoadPED("/nonexistent/family.ped", "")
	assert.Error(t, err)
}
