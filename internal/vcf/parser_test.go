package vcf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const header = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tchild\tdad\tmum\n"

func TestParser_TrioFile(t *testing.T) {
	testFile := findTestFile(t, "trio.vcf")

	parser, err := NewParser(testFile)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	names := parser.SampleNames()
	if strings.Join(names, ",") != "child,dad,mum" {
		t.Errorf("SampleNames() = %v", names)
	}

	fields := parser.CSQFields()
	if len(fields) != 8 || fields[3] != "SYMBOL" || fields[6] != "Feature" {
		t.Errorf("CSQFields() = %v", fields)
	}

	count := 0
	for {
		v, err := parser.Next()
		if err != nil {
			t.Fatalf("Error reading variant: %v", err)
		}
		if v == nil {
			break
		}
		if len(v.Samples) != 3 {
			t.Errorf("line %d: expected 3 samples, got %d", parser.LineNumber(), len(v.Samples))
		}
		count++
	}

	if count != 6 {
		t.Errorf("Expected 6 variants, got %d", count)
	}
}

func TestParser_Header(t *testing.T) {
	testFile := findTestFile(t, "trio.vcf")

	parser, err := NewParser(testFile)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	hasFileformat := false
	hasChromLine := false
	for _, line := range parser.Header() {
		if line == "##fileformat=VCFv4.2" {
			hasFileformat = true
		}
		if strings.HasPrefix(line, "#CHROM") {
			hasChromLine = true
		}
	}

	if !hasFileformat {
		t.Error("Missing ##fileformat header")
	}
	if !hasChromLine {
		t.Error("Missing #CHROM header line")
	}
}

func TestParser_SampleFields(t *testing.T) {
	input := header + "1\t100\trs1\tA\tG\t30\tPASS\tDP=20;SOMATIC\tGT:PL\t0/1:30,0,40\t0/0:0,20,200\t./.:.\n"

	parser, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	v, err := parser.Next()
	if err != nil || v == nil {
		t.Fatalf("Next() = %v, %v", v, err)
	}

	if v.Info["DP"] != "20" || v.Info["SOMATIC"] != true {
		t.Errorf("Info = %v", v.Info)
	}
	if got := v.SampleField(0, "GT"); got != "0/1" {
		t.Errorf("SampleField(0, GT) = %q", got)
	}
	if got := v.SampleField(1, "PL"); got != "0,20,200" {
		t.Errorf("SampleField(1, PL) = %q", got)
	}
	if got := v.SampleField(2, "DP"); got != "" {
		t.Errorf("SampleField(2, DP) = %q, want empty", got)
	}
	if got := v.SampleField(5, "GT"); got != "" {
		t.Errorf("SampleField(5, GT) = %q, want empty", got)
	}
	if v.AltIndex != 1 || v.NumAlts != 1 {
		t.Errorf("AltIndex, NumAlts = %d, %d", v.AltIndex, v.NumAlts)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", header + "1\t100\t.\tA\n"},
		{"bad position", header + "1\tabc\t.\tA\tG\t.\t.\t.\n"},
		{"sample count mismatch", header + "1\t100\t.\tA\tG\t.\t.\t.\tGT\t0/1\t0/0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Failed to create parser: %v", err)
			}
			_, err = parser.Next()
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Line != 3 {
				t.Errorf("Line = %d, want 3", parseErr.Line)
			}
		})
	}

	if _, err := NewParserFromReader(strings.NewReader("1\t100\t.\tA\tG\n")); err == nil {
		t.Error("expected error for missing #CHROM header")
	}
}

func TestSplitMultiAllelic(t *testing.T) {
	tests := []struct {
		name     string
		alt      string
		expected int
	}{
		{"single allele", "C", 1},
		{"two alleles", "C,T", 2},
		{"three alleles", "C,T,G", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{
				Chrom:    "12",
				Pos:      100,
				Ref:      "A",
				Alt:      tt.alt,
				AltIndex: 1,
				NumAlts:  strings.Count(tt.alt, ",") + 1,
			}

			variants := SplitMultiAllelic(v)
			if len(variants) != tt.expected {
				t.Errorf("Expected %d variants, got %d", tt.expected, len(variants))
			}

			for i, split := range variants {
				if strings.Contains(split.Alt, ",") {
					t.Errorf("Split variant should not contain comma in alt: %s", split.Alt)
				}
				if split.AltIndex != i+1 || split.NumAlts != tt.expected {
					t.Errorf("split %d: AltIndex=%d NumAlts=%d", i, split.AltIndex, split.NumAlts)
				}
			}
		})
	}
}

func TestParseCSQFormat(t *testing.T) {
	line := `##INFO=<ID=CSQ,Number=.,Type=String,Description="Consequence annotations. Format: Allele|SYMBOL|Feature">`
	got := parseCSQFormat(line)
	if strings.Join(got, ",") != "Allele,SYMBOL,Feature" {
		t.Errorf("parseCSQFormat() = %v", got)
	}
	if parseCSQFormat(`##INFO=<ID=CSQ,Number=.>`) != nil {
		t.Error("expected nil without Format")
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
