package pedigree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadPED reads a six-column PED file. See ParsePED.
func LoadPED(path, probandID string) (*Pedigree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ped file: %w", err)
	}
	defer f.Close()

	return ParsePED(f, probandID)
}

// ParsePED parses PED records (family, individual, father, mother, sex,
// phenotype). A parent of "0" is missing; phenotype "2" is affected.
//
// If probandID is empty the proband is the single affected member with both
// parents present. When no unique such member exists no proband is flagged,
// and Trio will later reject the pedigree.
func ParsePED(r io.Reader, probandID string) (*Pedigree, error) {
	scanner := bufio.NewScanner(r)
	ped := &Pedigree{}
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("ped line %d: expected 6 columns, found %d", lineNumber, len(fields))
		}

		m := Member{
			ID:       fields[1],
			FatherID: parentID(fields[2]),
			MotherID: parentID(fields[3]),
			Sex:      ParseSex(fields[4]),
			Affected: fields[5] == "2",
		}
		if _, dup := ped.Member(m.ID); dup {
			return nil, fmt.Errorf("ped line %d: duplicate individual %s", lineNumber, m.ID)
		}
		ped.Members = append(ped.Members, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ped: %w", err)
	}

	if probandID != "" {
		found := false
		for i := range ped.Members {
			if ped.Members[i].ID == probandID {
				ped.Members[i].Proband = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("proband %s not found in ped", probandID)
		}
		return ped, nil
	}

	candidate := -1
	for i, m := range ped.Members {
		if m.Affected && m.FatherID != "" && m.MotherID != "" {
			if candidate >= 0 {
				return ped, nil
			}
			candidate = i
		}
	}
	if candidate >= 0 {
		ped.Members[candidate].Proband = true
	}
	return ped, nil
}

func parentID(s string) string {
	if s == "0" || s == "." {
		return ""
	}
	return s
}
