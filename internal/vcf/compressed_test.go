package vcf

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-trio/internal/genome"
)

// compressTrioFile writes testdata/trio.vcf through newWriter into a temp file.
func compressTrioFile(t *testing.T, newWriter func(io.Writer) io.WriteCloser) string {
	t.Helper()
	data, err := os.ReadFile(findTestFile(t, "trio.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trio.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := newWriter(f)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

func TestNewParser_Compressed(t *testing.T) {
	tests := []struct {
		name      string
		newWriter func(io.Writer) io.WriteCloser
		bgzipped  bool
	}{
		{"bgzf", func(w io.Writer) io.WriteCloser { return bgzf.NewWriter(w, 1) }, true},
		{"gzip", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := compressTrioFile(t, tt.newWriter)

			parser, err := NewParser(path)
			require.NoError(t, err)
			defer parser.Close()
			assert.Equal(t, tt.bgzipped, parser.bgzfReader != nil)
			assert.Equal(t, []string{"child", "dad", "mum"}, parser.SampleNames())

			imp, err := ReadGenotypes(parser, ImportOptions{Build: genome.GRCh37})
			require.NoError(t, err)
			assert.Len(t, imp.AlleleIDs, 7)
		})
	}
}

func TestIsBGZF(t *testing.T) {
	assert.False(t, isBGZF(nil))
	assert.False(t, isBGZF([]byte("##fileformat=VCFv4.2")))
	assert.True(t, isGzip([]byte{0x1f, 0x8b}))
	assert.False(t, isBGZF([]byte{0x1f, 0x8b, 8, 0, 0, 0, 0, 0, 0, 0xff, 0, 0, 0, 0}))
	assert.True(t, isBGZF([]byte{0x1f, 0x8b, 8, 4, 0, 0, 0, 0, 0, 0xff, 6, 0, 'B', 'C'}))
}
