// Package snapshot persists the derived result of a pipeline run to a
// DuckDB database file, for the chart renderer and any downstream reader.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jonboulle/clockwork"

	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/pipeline"
)

type Store struct {
	log   *slog.Logger
	db    *sql.DB
	clock clockwork.Clock
}

// Open creates or replaces the snapshot database at path. A nil clock uses
// the real clock.
func Open(log *slog.Logger, path string, clock clockwork.Clock) (*Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	// The snapshot is a full replacement, not an append.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove previous snapshot: %w", err)
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	return &Store{log: log, db: db, clock: clock}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Write persists the per-capita table, the aggregates, and the run metadata
// in a single transaction.
func (s *Store) Write(ctx context.Context, res pipeline.Result, cfg config.Config) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ddl := []string{
		`CREATE TABLE per_capita (
			country VARCHAR, region VARCHAR, level VARCHAR, year INTEGER,
			gdp DOUBLE, population DOUBLE, per_capita DOUBLE
		)`,
		`CREATE TABLE aggregates (
			key VARCHAR, scope VARCHAR, weighted DOUBLE, record_count INTEGER,
			sum_gdp DOUBLE, sum_population DOUBLE
		)`,
		`CREATE TABLE run_info (
			year INTEGER,
			claim_country VARCHAR, claim_level VARCHAR, capital_prefix VARCHAR,
			reference_country VARCHAR, reference_region VARCHAR, reference_level VARCHAR,
			reference_value DOUBLE, aggregate_excluding_capital DOUBLE,
			difference DOUBLE, claim_holds BOOLEAN, records_below INTEGER,
			generated_at TIMESTAMP
		)`,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create snapshot schema: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO per_capita (country, region, level, year, gdp, population, per_capita)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare per_capita insert: %w", err)
	}
	defer insert.Close()
	for _, r := range res.PerCapita {
		if _, err := insert.ExecContext(ctx, r.Country, r.Region, string(r.Level), r.Year, r.GDP, r.Population, r.PerCapita); err != nil {
			return fmt.Errorf("failed to insert per_capita row: %w", err)
		}
	}

	for _, g := range res.National {
		if err := s.insertAggregate(ctx, tx, g, "national"); err != nil {
			return err
		}
	}
	if err := s.insertAggregate(ctx, tx, res.ExcludingCapital, "excluding_capital"); err != nil {
		return err
	}

	c := res.Comparison
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_info VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Year,
		cfg.ClaimCountry, string(cfg.ClaimLevel), cfg.CapitalPrefixes[cfg.ClaimCountry],
		cfg.Reference.Country, cfg.Reference.Region, string(c.ReferenceLevel),
		c.Reference, c.Aggregate, c.Difference, c.ClaimHolds, c.RecordsBelow,
		s.clock.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert run_info: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.log.Debug("wrote snapshot", "per_capita_rows", len(res.PerCapita), "aggregates", len(res.National)+1)
	return nil
}

func (s *Store) insertAggregate(ctx context.Context, tx *sql.Tx, g pipeline.AggregateGroup, scope string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO aggregates (key, scope, weighted, record_count, sum_gdp, sum_population)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.Key, scope, g.Weighted, g.Count, g.SumGDP, g.SumPopulation); err != nil {
		return fmt.Errorf("failed to insert aggregate %s/%s: %w", scope, g.Key, err)
	}
	return nil
}
