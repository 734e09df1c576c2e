package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inodb/vibe-trio/internal/genome"
)

// FileFingerprint holds stat-based identity for an imported file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// AnalysisInfo describes a stored analysis.
type AnalysisInfo struct {
	ID         int64
	Build      genome.Build
	Source     FileFingerprint
	ImportedAt time.Time
	Alleles    int
}

// Analyses lists stored analyses ordered by id.
func (s *Store) Analyses(ctx context.Context) ([]AnalysisInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		a.id, a.build, a.source_path, a.source_size, a.source_modtime, a.imported_at,
		(SELECT count(*) FROM analysis_allele aa WHERE aa.analysis_id = a.id)
		FROM analysis a
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisInfo
	for rows.Next() {
		var info AnalysisInfo
		var build string
		var path sql.NullString
		var size sql.NullInt64
		var modTime, importedAt sql.NullTime
		if err := rows.Scan(&info.ID, &build, &path, &size, &modTime, &importedAt, &info.Alleles); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		info.Build = genome.Build(build)
		info.Source = FileFingerprint{Path: path.String, Size: size.Int64, ModTime: modTime.Time}
		info.ImportedAt = importedAt.Time
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

// SourceUnchanged reports whether the analysis was imported from a file with
// the given fingerprint, so re-importing it can be skipped.
func (s *Store) SourceUnchanged(ctx context.Context, analysisID int64, fp FileFingerprint) (bool, error) {
	var path sql.NullString
	var size sql.NullInt64
	var modTime sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT source_path, source_size, source_modtime FROM analysis WHERE id = ?`, analysisID,
	).Scan(&path, &size, &modTime)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query analysis %d: %w", analysisID, err)
	}
	if !path.Valid || !modTime.Valid {
		return false, nil
	}
	return path.String == fp.Path && size.Int64 == fp.Size &&
		modTime.Time.Equal(fp.ModTime.Truncate(time.Microsecond)), nil
}
