// Package duckdb persists analyses (pedigree, alleles, genotype calls and
// transcript annotations) and inheritance filter results in DuckDB.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding analysis snapshots and results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis (
		id BIGINT PRIMARY KEY,
		build VARCHAR,
		source_path VARCHAR,
		source_size BIGINT,
		source_modtime TIMESTAMP,
		imported_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sample (
		analysis_id BIGINT,
		identifier VARCHAR,
		sex VARCHAR,
		affected BOOLEAN,
		proband BOOLEAN,
		father_id VARCHAR,
		mother_id VARCHAR,
		PRIMARY KEY (analysis_id, identifier)
	)`,
	`CREATE TABLE IF NOT EXISTS allele (
		id BIGINT PRIMARY KEY,
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		build VARCHAR,
		variant_type VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_allele (
		analysis_id BIGINT,
		allele_id BIGINT,
		PRIMARY KEY (analysis_id, allele_id)
	)`,
	`CREATE TABLE IF NOT EXISTS genotype_call (
		analysis_id BIGINT,
		allele_id BIGINT,
		sample VARCHAR,
		zygosity VARCHAR,
		pl_ref DOUBLE,
		pl_het DOUBLE,
		pl_hom DOUBLE,
		PRIMARY KEY (analysis_id, allele_id, sample)
	)`,
	`CREATE TABLE IF NOT EXISTS transcript (
		allele_id BIGINT,
		name VARCHAR,
		symbol VARCHAR,
		PRIMARY KEY (allele_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS filter_result (
		analysis_id BIGINT,
		allele_id BIGINT,
		retained BOOLEAN,
		skipped BOOLEAN,
		patterns VARCHAR,
		denovo_probability DOUBLE,
		PRIMARY KEY (analysis_id, allele_id)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execer and queryer are satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inConnTx runs fn on a single connection inside an explicit transaction.
// Appenders created on that connection write into the same transaction, so
// statements and appended rows commit or roll back together.
func (s *Store) inConnTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `BEGIN TRANSACTION`); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(conn); err != nil {
		if _, rbErr := conn.ExecContext(context.WithoutCancel(ctx), `ROLLBACK`); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if _, err := conn.ExecContext(ctx, `COMMIT`); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
