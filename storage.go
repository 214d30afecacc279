package main

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Storage keeps run parameters and measurements in a results database shared between runs.
type Storage struct {
	db     *sql.DB
	target string
}

var remoteSchemes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

// StorageDriver picks libsql for remote URLs (auth goes into the authToken query parameter) and sqlite for local files.
func StorageDriver(target string) string {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(target, scheme) {
			return "libsql"
		}
	}
	return "sqlite"
}

func OpenStorage(ctx context.Context, target string) (*Storage, error) {
	driver := StorageDriver(target)
	db, err := sql.Open(driver, target)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %v storage: %w", driver, err)
	}
	return &Storage{db: db, target: target}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) InitResultsDb(ctx context.Context, run string, meta map[string]any) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS parameters (
		run TEXT,
		name TEXT,
		value TEXT,
		PRIMARY KEY (run, name)
	)`)
	if err != nil {
		return err
	}
	parameters := make([]any, 0)
	parameters = append(parameters, run, "time", time.Now().Format("2006-01-02 15:04:05"))
	for key, value := range meta {
		parameters = append(parameters, run, key, fmt.Sprintf("%v", value))
	}
	placeholders := strings.Join(slices.Repeat([]string{"(?, ?, ?)"}, len(parameters)/3), ", ")
	_, err = s.db.ExecContext(
		ctx,
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS measurements (
		run TEXT,
		runner TEXT,
		dataset TEXT,
		name TEXT,
		query TEXT,
		measurement TEXT,
		iterations REAL,
		value REAL,
		PRIMARY KEY (run, runner, dataset, name, measurement)
	)`)
	if err != nil {
		return err
	}
	Logger.Infof("initialized results database for run %v with meta %v", run, meta)
	return nil
}

func (s *Storage) UpdateBenchmarkDb(ctx context.Context, run string, runner string, dataset string, measurements []Measurement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, measurement := range measurements {
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO measurements VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			run,
			runner,
			dataset,
			measurement.Name,
			measurement.Query,
			"total_time_ms",
			1,
			measurement.Milliseconds(),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) WrittenQueries(ctx context.Context, run string, dataset string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM measurements WHERE run = ? AND dataset = ?", run, dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]float64, 0)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		results[name] = value
	}
	return results, rows.Err()
}
