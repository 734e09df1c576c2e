package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/genotype"
	"github.com/inodb/vibe-trio/internal/inheritance"
	"github.com/inodb/vibe-trio/internal/pedigree"
)

// SaveAnalysis stores an analysis snapshot, replacing any previous analysis
// with the same id in one transaction. Alleles and transcripts shared with
// other analyses are stored once. The source fingerprint may be zero.
func (s *Store) SaveAnalysis(ctx context.Context, a *familyfilter.Analysis, build genome.Build, source FileFingerprint) error {
	return s.inConnTx(ctx, func(conn *sql.Conn) error {
		if err := deleteAnalysis(ctx, conn, a.ID); err != nil {
			return err
		}
		if err := saveSnapshot(ctx, conn, a, build, source); err != nil {
			return err
		}
		return appendCalls(ctx, conn, a.ID, a.Records)
	})
}

func saveSnapshot(ctx context.Context, tx execer, a *familyfilter.Analysis, build genome.Build, source FileFingerprint) error {
	var modTime any
	if !source.ModTime.IsZero() {
		modTime = source.ModTime.UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analysis VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, string(build), nullString(source.Path), source.Size, modTime, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert analysis %d: %w", a.ID, err)
	}

	if a.Pedigree != nil {
		for _, m := range a.Pedigree.Members {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sample VALUES (?, ?, ?, ?, ?, ?, ?)`,
				a.ID, m.ID, m.Sex.String(), m.Affected, m.Proband, nullString(m.FatherID), nullString(m.MotherID),
			); err != nil {
				return fmt.Errorf("insert sample %s: %w", m.ID, err)
			}
		}
	}

	alleles := make(map[int64]genome.Allele)
	for _, r := range a.Records {
		alleles[r.Allele.ID] = r.Allele
	}

	for _, id := range a.AlleleIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_allele VALUES (?, ?) ON CONFLICT DO NOTHING`, a.ID, id,
		); err != nil {
			return fmt.Errorf("insert analysis allele %d: %w", id, err)
		}

		if al, ok := alleles[id]; ok {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO allele VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
				al.ID, al.Chrom, al.Start, al.End, string(al.Build), string(al.Type),
			); err != nil {
				return fmt.Errorf("insert allele %d: %w", id, err)
			}
		}

		if a.Genes == nil {
			continue
		}
		for _, t := range a.Genes.Transcripts(id) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transcript VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, id, t.Name, t.Symbol,
			); err != nil {
				return fmt.Errorf("insert transcript %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// appendCalls batch-inserts genotype calls using the Appender API.
func appendCalls(ctx context.Context, conn *sql.Conn, analysisID int64, records []genotype.Record) error {
	if len(records) == 0 {
		return nil
	}
	return appendRows(conn, "genotype_call", func(app *goduckdb.Appender) error {
		for _, r := range records {
			plRef, plHet, plHom, err := encodeLikelihoods(r.Likelihoods)
			if err != nil {
				return fmt.Errorf("allele %d, sample %s: %w", r.Allele.ID, r.SampleID, err)
			}
			if err := app.AppendRow(
				analysisID, r.Allele.ID, r.SampleID, r.Zygosity.String(), plRef, plHet, plHom,
			); err != nil {
				return fmt.Errorf("append genotype call: %w", err)
			}
		}
		return nil
	})
}

// appendRows runs fn against an appender for table on conn and flushes it.
func appendRows(conn *sql.Conn, table string, fn func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// DeleteAnalysis removes an analysis with its samples, calls and results.
// Alleles and transcripts are left in place for other analyses.
func (s *Store) DeleteAnalysis(ctx context.Context, analysisID int64) error {
	return s.inConnTx(ctx, func(conn *sql.Conn) error {
		return deleteAnalysis(ctx, conn, analysisID)
	})
}

func deleteAnalysis(ctx context.Context, tx execer, analysisID int64) error {
	for _, stmt := range []string{
		`DELETE FROM filter_result WHERE analysis_id = ?`,
		`DELETE FROM genotype_call WHERE analysis_id = ?`,
		`DELETE FROM analysis_allele WHERE analysis_id = ?`,
		`DELETE FROM sample WHERE analysis_id = ?`,
		`DELETE FROM analysis WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, analysisID); err != nil {
			return fmt.Errorf("delete analysis %d: %w", analysisID, err)
		}
	}
	return nil
}

// NextAnalysisID returns one more than the largest stored analysis id.
func (s *Store) NextAnalysisID(ctx context.Context) (int64, error) {
	return s.nextID(ctx, `SELECT coalesce(max(id), 0) + 1 FROM analysis`)
}

// NextAlleleID returns one more than the largest stored allele id.
func (s *Store) NextAlleleID(ctx context.Context) (int64, error) {
	return s.nextID(ctx, `SELECT coalesce(max(id), 0) + 1 FROM allele`)
}

func (s *Store) nextID(ctx context.Context, query string) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return id, nil
}

// LoadAnalysis reads one analysis inside a single transaction, so every
// query sees the same committed state. It implements familyfilter.Source.
func (s *Store) LoadAnalysis(ctx context.Context, analysisID int64) (*familyfilter.Analysis, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) > 0 FROM analysis WHERE id = ?`, analysisID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query analysis %d: %w", analysisID, err)
	}
	if !exists {
		return nil, fmt.Errorf("analysis %d not found", analysisID)
	}

	a := &familyfilter.Analysis{ID: analysisID}
	if a.AlleleIDs, err = loadAlleleIDs(ctx, tx, analysisID); err != nil {
		return nil, err
	}
	if a.Pedigree, err = loadPedigree(ctx, tx, analysisID); err != nil {
		return nil, err
	}
	if a.Records, err = loadRecords(ctx, tx, analysisID); err != nil {
		return nil, err
	}
	genes, err := loadTranscripts(ctx, tx, analysisID)
	if err != nil {
		return nil, err
	}
	a.Genes = genes
	return a, nil
}

func loadAlleleIDs(ctx context.Context, q queryer, analysisID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT allele_id FROM analysis_allele WHERE analysis_id = ? ORDER BY allele_id`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query alleles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan allele id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alleles: %w", err)
	}
	return ids, nil
}

func loadPedigree(ctx context.Context, q queryer, analysisID int64) (*pedigree.Pedigree, error) {
	rows, err := q.QueryContext(ctx, `SELECT
		identifier, sex, affected, proband, father_id, mother_id
		FROM sample WHERE analysis_id = ? ORDER BY identifier`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	ped := &pedigree.Pedigree{}
	for rows.Next() {
		var m pedigree.Member
		var sex string
		var father, mother sql.NullString
		if err := rows.Scan(&m.ID, &sex, &m.Affected, &m.Proband, &father, &mother); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		m.Sex = pedigree.ParseSex(sex)
		m.FatherID = father.String
		m.MotherID = mother.String
		ped.Members = append(ped.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return ped, nil
}

func loadRecords(ctx context.Context, q queryer, analysisID int64) ([]genotype.Record, error) {
	rows, err := q.QueryContext(ctx, `SELECT
		a.id, a.chrom, a.start_pos, a.end_pos, a.build, a.variant_type,
		g.sample, g.zygosity, g.pl_ref, g.pl_het, g.pl_hom
		FROM genotype_call g
		JOIN allele a ON a.id = g.allele_id
		WHERE g.analysis_id = ?
		ORDER BY a.id, g.sample`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query genotype calls: %w", err)
	}
	defer rows.Close()

	var records []genotype.Record
	for rows.Next() {
		var r genotype.Record
		var build, variantType, zygosity string
		var plRef, plHet, plHom sql.NullFloat64
		if err := rows.Scan(
			&r.Allele.ID, &r.Allele.Chrom, &r.Allele.Start, &r.Allele.End, &build, &variantType,
			&r.SampleID, &zygosity, &plRef, &plHet, &plHom,
		); err != nil {
			return nil, fmt.Errorf("scan genotype call: %w", err)
		}
		r.Allele.Build = genome.Build(build)
		r.Allele.Type = genome.VariantType(variantType)
		z, err := genotype.ParseZygosity(zygosity)
		if err != nil {
			return nil, fmt.Errorf("allele %d, sample %s: %w", r.Allele.ID, r.SampleID, err)
		}
		r.Zygosity = z
		r.Likelihoods = decodeLikelihoods(plRef, plHet, plHom)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotype calls: %w", err)
	}
	return records, nil
}

func loadTranscripts(ctx context.Context, q queryer, analysisID int64) (inheritance.Annotations, error) {
	rows, err := q.QueryContext(ctx, `SELECT
		t.allele_id, t.name, t.symbol
		FROM transcript t
		JOIN analysis_allele aa ON aa.allele_id = t.allele_id
		WHERE aa.analysis_id = ?
		ORDER BY t.allele_id, t.name`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	genes := inheritance.Annotations{}
	for rows.Next() {
		var id int64
		var t inheritance.Transcript
		var symbol sql.NullString
		if err := rows.Scan(&id, &t.Name, &symbol); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.Symbol = symbol.String
		genes[id] = append(genes[id], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return genes, nil
}

// encodeLikelihoods maps a likelihood vector onto the pl_ref, pl_het and
// pl_hom columns. Hemizygous [ref, alt] vectors leave pl_het NULL.
func encodeLikelihoods(pl []float64) (ref, het, hom any, err error) {
	switch len(pl) {
	case 0:
		return nil, nil, nil, nil
	case 2:
		return pl[0], nil, pl[1], nil
	case 3:
		return pl[0], pl[1], pl[2], nil
	}
	return nil, nil, nil, fmt.Errorf("unexpected %d genotype likelihoods", len(pl))
}

func decodeLikelihoods(ref, het, hom sql.NullFloat64) []float64 {
	switch {
	case ref.Valid && het.Valid && hom.Valid:
		return []float64{ref.Float64, het.Float64, hom.Float64}
	case ref.Valid && hom.Valid:
		return []float64{ref.Float64, hom.Float64}
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
