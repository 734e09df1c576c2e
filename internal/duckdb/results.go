package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/inheritance"
)

// StoredResult is one row of the filter_result table.
type StoredResult struct {
	AnalysisID int64
	AlleleID   int64
	Retained   bool
	Skipped    bool
	Patterns   []inheritance.Pattern

	// DenovoProbability is NULL unless the allele matched the de novo pattern
	// with likelihoods for the whole trio.
	DenovoProbability sql.NullFloat64
}

// WriteResults replaces the stored filter results of an analysis with one row
// per input allele, using the Appender API inside one transaction.
func (s *Store) WriteResults(ctx context.Context, res *familyfilter.Result) error {
	return s.inConnTx(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM filter_result WHERE analysis_id = ?`, res.AnalysisID,
		); err != nil {
			return fmt.Errorf("clear results of analysis %d: %w", res.AnalysisID, err)
		}
		if len(res.Input) == 0 {
			return nil
		}

		return appendRows(conn, "filter_result", func(app *goduckdb.Appender) error {
			for _, id := range res.Input.Sorted() {
				var names []string
				for _, p := range res.Patterns(id) {
					names = append(names, string(p))
				}

				var prob any
				if p, ok := res.DenovoProbabilities[id]; ok && p.Computable {
					prob = p.Probability
				}

				if err := app.AppendRow(
					res.AnalysisID, id, res.Retained.Has(id), res.Skipped, strings.Join(names, ","), prob,
				); err != nil {
					return fmt.Errorf("append filter result: %w", err)
				}
			}
			return nil
		})
	})
}

// Results reads back the stored filter results of an analysis, ordered by allele id.
func (s *Store) Results(ctx context.Context, analysisID int64) ([]StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		analysis_id, allele_id, retained, skipped, patterns, denovo_probability
		FROM filter_result
		WHERE analysis_id = ?
		ORDER BY allele_id`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var patterns string
		if err := rows.Scan(&r.AnalysisID, &r.AlleleID, &r.Retained, &r.Skipped, &patterns, &r.DenovoProbability); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if patterns != "" {
			for _, p := range strings.Split(patterns, ",") {
				r.Patterns = append(r.Patterns, inheritance.Pattern(p))
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// RetainedAlleles returns the ids of alleles retained by the last stored filter run.
func (s *Store) RetainedAlleles(ctx context.Context, analysisID int64) (inheritance.AlleleSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT allele_id FROM filter_result WHERE analysis_id = ? AND retained`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query retained alleles: %w", err)
	}
	defer rows.Close()

	set := inheritance.NewAlleleSet()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan retained allele: %w", err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retained alleles: %w", err)
	}
	return set, nil
}
